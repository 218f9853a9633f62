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

// Package fulfiller implements the host-facing DomainOp surface: a fixed
// 256-slot table binding byte slots to global bank identities, and a
// stateless fulfiller that resolves a slot and delegates to the cluster.
package fulfiller

import (
	"github.com/Blackfall-Labs/databank/bridge"
	"github.com/Blackfall-Labs/databank/cluster"
	"github.com/Blackfall-Labs/databank/types"
)

// BankSlotMap binds up to 256 host-side byte slots to global BankIds.
type BankSlotMap struct {
	slots [256]*types.BankId
}

// Bind assigns slot to id.
func (m *BankSlotMap) Bind(slot uint8, id types.BankId) {
	v := id
	m.slots[slot] = &v
}

// Unbind clears slot.
func (m *BankSlotMap) Unbind(slot uint8) {
	m.slots[slot] = nil
}

// Resolve returns the BankId bound to slot, if any.
func (m *BankSlotMap) Resolve(slot uint8) (types.BankId, bool) {
	v := m.slots[slot]
	if v == nil {
		return 0, false
	}
	return *v, true
}

// SlotOf performs the reverse lookup: the first slot bound to id, scanning
// all 256 slots linearly (the table is small and fixed-size, so a linear
// scan is simpler and just as fast as an auxiliary reverse index).
func (m *BankSlotMap) SlotOf(id types.BankId) (int, bool) {
	for i, v := range m.slots {
		if v != nil && *v == id {
			return i, true
		}
	}
	return 0, false
}

// FulfillResult is the sum-type response a DomainOp produces for the host.
type FulfillResult struct {
	Kind          FulfillKind
	RegisterIndex int
	Data          []int32
	Shape         []int
	ErrorMessage  string
}

// FulfillKind discriminates FulfillResult's variants.
type FulfillKind uint8

const (
	FulfillOk FulfillKind = iota
	FulfillWriteRegister
	FulfillError
)

func ok() FulfillResult {
	return FulfillResult{Kind: FulfillOk}
}

func writeRegister(index int, data []int32, shape []int) FulfillResult {
	return FulfillResult{Kind: FulfillWriteRegister, RegisterIndex: index, Data: data, Shape: shape}
}

func fail(message string) FulfillResult {
	return FulfillResult{Kind: FulfillError, ErrorMessage: message}
}

// BankFulfiller is a stateless dispatcher: every method resolves a slot via
// slots and delegates to c.
type BankFulfiller struct{}

func resolve(slots *BankSlotMap, slot uint8) (types.BankId, error) {
	id, ok := slots.Resolve(slot)
	if !ok {
		return 0, errUnboundSlot(slot)
	}
	return id, nil
}

type unboundSlotError struct{ slot uint8 }

func (e unboundSlotError) Error() string { return "unbound slot" }

func errUnboundSlot(slot uint8) error { return unboundSlotError{slot: slot} }

// Query runs a sparse query against the bank bound to slot.
func (BankFulfiller) Query(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, query []int32, topK int) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	hits := b.QuerySparse(bridge.I32ToSignals(query), topK)
	return writeRegister(0, bridge.QueryResultsToI32(hits), []int{len(hits), 3})
}

// Write inserts vector as a new entry into the bank bound to slot.
func (BankFulfiller) Write(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, vector []int32, tick uint64) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	id, insertErr := b.Insert(bridge.I32ToSignals(vector), types.Hot, tick)
	if insertErr != nil {
		return fail(insertErr.Error())
	}
	hi, lo := bridge.EntryIdToI32Pair(id)
	return writeRegister(0, []int32{hi, lo}, []int{2})
}

// Load reads back the vector stored at (entryHi, entryLo) in the bank
// bound to slot.
func (BankFulfiller) Load(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, entryHi, entryLo int32) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	id := bridge.I32PairToEntryId(entryHi, entryLo)
	e := b.Get(id)
	if e == nil {
		return fail("entry not found")
	}
	return writeRegister(0, bridge.SignalsToI32(e.Vector), []int{len(e.Vector)})
}

// Link draws an edge. sourceData is [fromHi, fromLo, toSlot, toHi, toLo,
// weight]; weight is clamped to [0,255] and an unrecognized edge type
// defaults to RelatedTo.
func (BankFulfiller) Link(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, edgeType types.EdgeType, sourceData []int32, tick uint64) FulfillResult {
	if !edgeType.Valid() {
		edgeType = types.RelatedTo
	}
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	if len(sourceData) < 6 {
		return fail("malformed link payload")
	}
	fromEntry := bridge.I32PairToEntryId(sourceData[0], sourceData[1])
	toSlot := uint8(sourceData[2])
	toBank, err := resolve(slots, toSlot)
	if err != nil {
		return fail(err.Error())
	}
	toEntry := bridge.I32PairToEntryId(sourceData[3], sourceData[4])
	weight := sourceData[5]
	if weight < 0 {
		weight = 0
	}
	if weight > 255 {
		weight = 255
	}
	from := types.BankRef{Bank: bankId, Entry: fromEntry}
	to := types.BankRef{Bank: toBank, Entry: toEntry}
	if linkErr := c.Link(from, to, edgeType, uint8(weight), tick); linkErr != nil {
		return fail(linkErr.Error())
	}
	return ok()
}

// Traverse performs a breadth-first walk and packs the result, resolving
// each target bank back to its bound slot.
func (BankFulfiller) Traverse(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, entryHi, entryLo int32, edgeType types.EdgeType, depth int) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	start := types.BankRef{Bank: bankId, Entry: bridge.I32PairToEntryId(entryHi, entryLo)}
	refs := c.Traverse(start, edgeType, depth)
	data := bridge.TraverseResultsToI32(refs, slots.SlotOf)
	return writeRegister(0, data, []int{len(refs), 3})
}

// Touch records an access on the given entry.
func (BankFulfiller) Touch(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, entryHi, entryLo int32, tick uint64) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	e := b.Get(bridge.I32PairToEntryId(entryHi, entryLo))
	if e == nil {
		return fail("entry not found")
	}
	e.Touch(tick)
	return ok()
}

// Delete removes the given entry.
func (BankFulfiller) Delete(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, entryHi, entryLo int32) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	removed := b.Remove(bridge.I32PairToEntryId(entryHi, entryLo)) != nil
	if !removed {
		return fail("entry not found")
	}
	return ok()
}

// Promote steps the given entry one level colder.
func (BankFulfiller) Promote(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, entryHi, entryLo int32) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	b.PromoteEntry(bridge.I32PairToEntryId(entryHi, entryLo))
	return ok()
}

// Demote steps the given entry one level warmer.
func (BankFulfiller) Demote(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, entryHi, entryLo int32) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	b.DemoteEntry(bridge.I32PairToEntryId(entryHi, entryLo))
	return ok()
}

// Evict removes the n lowest-scoring entries from the bank bound to slot.
func (BankFulfiller) Evict(c *cluster.BankCluster, slots *BankSlotMap, slot uint8, n int, tick uint64) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	evicted := b.EvictN(n, tick)
	return writeRegister(0, []int32{int32(evicted)}, []int{1})
}

// Compact rebuilds the index and reverse-edge map of the bank bound to
// slot.
func (BankFulfiller) Compact(c *cluster.BankCluster, slots *BankSlotMap, slot uint8) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	b.Compact()
	return ok()
}

// Count returns the entry count of the bank bound to slot.
func (BankFulfiller) Count(c *cluster.BankCluster, slots *BankSlotMap, slot uint8) FulfillResult {
	bankId, err := resolve(slots, slot)
	if err != nil {
		return fail(err.Error())
	}
	b := c.Get(bankId)
	if b == nil {
		return fail("bank not found")
	}
	return writeRegister(0, []int32{int32(b.EntryCount())}, []int{1})
}
