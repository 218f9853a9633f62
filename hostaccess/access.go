// Copyright 2026 The Databank Authors
// This file is part of Databank.
//
// Databank is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Databank is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Databank. If not, see <http://www.gnu.org/licenses/>.

// Package hostaccess adapts a BankCluster plus a slot map to the host's six
// primary bank-access operations (query/load/count/write/touch/delete),
// for hosts that want direct calls instead of fulfiller's FulfillResult
// indirection.
package hostaccess

import (
	"github.com/Blackfall-Labs/databank/bridge"
	"github.com/Blackfall-Labs/databank/cluster"
	"github.com/Blackfall-Labs/databank/dberr"
	"github.com/Blackfall-Labs/databank/fulfiller"
	"github.com/Blackfall-Labs/databank/types"
)

// ClusterBankAccess is the narrow adapter a host virtual machine drives
// once per tick. It resolves a slot to a BankId via slots, then delegates
// to the underlying cluster.
type ClusterBankAccess struct {
	Cluster *cluster.BankCluster
	Slots   *fulfiller.BankSlotMap
	Tick    uint64
}

// New constructs a ClusterBankAccess bound to c and slots, starting at
// tick 0.
func New(c *cluster.BankCluster, slots *fulfiller.BankSlotMap) *ClusterBankAccess {
	return &ClusterBankAccess{Cluster: c, Slots: slots}
}

// Advance moves the access's internal tick forward; subsequent writes and
// touches are stamped with the new value.
func (a *ClusterBankAccess) Advance(tick uint64) {
	a.Tick = tick
}

func (a *ClusterBankAccess) resolveBank(slot uint8) (types.BankId, error) {
	id, ok := a.Slots.Resolve(slot)
	if !ok {
		return 0, dberr.BankNotFound(stringerUint8(slot))
	}
	return id, nil
}

type stringerUint8 uint8

func (s stringerUint8) String() string { return "slot" }

// Query runs a sparse query against the bank bound to slot, returning
// query_as_i32 results packed as [count, score, hi, lo, ...].
func (a *ClusterBankAccess) Query(slot uint8, query []int32, topK int) ([]int32, error) {
	bankId, err := a.resolveBank(slot)
	if err != nil {
		return nil, err
	}
	b := a.Cluster.Get(bankId)
	if b == nil {
		return nil, dberr.BankNotFound(bankId)
	}
	hits := b.QuerySparse(bridge.I32ToSignals(query), topK)
	return bridge.QueryResultsToI32(hits), nil
}

// Load returns the vector stored at the given EntryId in the bank bound to
// slot.
func (a *ClusterBankAccess) Load(slot uint8, entryHi, entryLo int32) ([]int32, error) {
	bankId, err := a.resolveBank(slot)
	if err != nil {
		return nil, err
	}
	b := a.Cluster.Get(bankId)
	if b == nil {
		return nil, dberr.BankNotFound(bankId)
	}
	id := bridge.I32PairToEntryId(entryHi, entryLo)
	e := b.Get(id)
	if e == nil {
		return nil, dberr.EntryNotFound(id)
	}
	return bridge.SignalsToI32(e.Vector), nil
}

// Count returns the entry count of the bank bound to slot.
func (a *ClusterBankAccess) Count(slot uint8) (int32, error) {
	bankId, err := a.resolveBank(slot)
	if err != nil {
		return 0, err
	}
	b := a.Cluster.Get(bankId)
	if b == nil {
		return 0, dberr.BankNotFound(bankId)
	}
	return int32(b.EntryCount()), nil
}

// Write inserts vector as a new Hot entry into the bank bound to slot.
func (a *ClusterBankAccess) Write(slot uint8, vector []int32) (hi, lo int32, err error) {
	bankId, err := a.resolveBank(slot)
	if err != nil {
		return 0, 0, err
	}
	b := a.Cluster.Get(bankId)
	if b == nil {
		return 0, 0, dberr.BankNotFound(bankId)
	}
	id, insertErr := b.Insert(bridge.I32ToSignals(vector), types.Hot, a.Tick)
	if insertErr != nil {
		return 0, 0, insertErr
	}
	hi, lo = bridge.EntryIdToI32Pair(id)
	return hi, lo, nil
}

// Touch records an access on the given entry at the access's current
// tick.
func (a *ClusterBankAccess) Touch(slot uint8, entryHi, entryLo int32) error {
	bankId, err := a.resolveBank(slot)
	if err != nil {
		return err
	}
	b := a.Cluster.Get(bankId)
	if b == nil {
		return dberr.BankNotFound(bankId)
	}
	id := bridge.I32PairToEntryId(entryHi, entryLo)
	e := b.Get(id)
	if e == nil {
		return dberr.EntryNotFound(id)
	}
	e.Touch(a.Tick)
	return nil
}

// Delete removes the given entry, reporting whether it existed.
func (a *ClusterBankAccess) Delete(slot uint8, entryHi, entryLo int32) (bool, error) {
	bankId, err := a.resolveBank(slot)
	if err != nil {
		return false, err
	}
	b := a.Cluster.Get(bankId)
	if b == nil {
		return false, dberr.BankNotFound(bankId)
	}
	id := bridge.I32PairToEntryId(entryHi, entryLo)
	return b.Remove(id) != nil, nil
}
