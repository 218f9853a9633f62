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

// Package bridge converts between the host's 32-bit integer registers and
// the core's native types. It contains no similarity, indexing, or
// persistence logic — only lossless-where-possible, lossy-where-documented
// conversion.
package bridge

import (
	"github.com/Blackfall-Labs/databank/index"
	"github.com/Blackfall-Labs/databank/types"
)

// SignalsToI32 converts a signal vector into its signed integer
// interpretation, one int32 per signal.
func SignalsToI32(vector []types.Signal) []int32 {
	out := make([]int32, len(vector))
	for i, s := range vector {
		out[i] = s.Value()
	}
	return out
}

// I32ToSignals converts a slice of registers into a signal vector, clamping
// each value into [-255, 255] per SignalFromValue's documented lossy
// contract.
func I32ToSignals(values []int32) []types.Signal {
	out := make([]types.Signal, len(values))
	for i, v := range values {
		out[i] = types.SignalFromValue(v)
	}
	return out
}

// EntryIdToI32Pair splits a 64-bit EntryId into an ordered (hi, lo) pair of
// 32-bit registers.
func EntryIdToI32Pair(id types.EntryId) (hi, lo int32) {
	u := uint64(id)
	return int32(u >> 32), int32(u & 0xFFFFFFFF)
}

// I32PairToEntryId reassembles an EntryId from an (hi, lo) register pair.
func I32PairToEntryId(hi, lo int32) types.EntryId {
	return types.EntryId(uint64(uint32(hi))<<32 | uint64(uint32(lo)))
}

// BankRefToI32Slice packs a BankRef as [bank_hi, bank_lo, entry_hi,
// entry_lo].
func BankRefToI32Slice(ref types.BankRef) []int32 {
	bankHi, bankLo := EntryIdToI32Pair(types.EntryId(ref.Bank))
	entryHi, entryLo := EntryIdToI32Pair(ref.Entry)
	return []int32{bankHi, bankLo, entryHi, entryLo}
}

// QueryResultsToI32 packs query hits as
// [count, score0, hi0, lo0, score1, hi1, lo1, ...].
func QueryResultsToI32(hits []index.ScoredEntry) []int32 {
	out := make([]int32, 0, 1+3*len(hits))
	out = append(out, int32(len(hits)))
	for _, h := range hits {
		hi, lo := EntryIdToI32Pair(h.Id)
		out = append(out, h.Score, hi, lo)
	}
	return out
}

// TraverseResultsToI32 packs traversal hits as
// [count, slot0, hi0, lo0, slot1, hi1, lo1, ...], given a function that
// resolves a BankId to its bound slot. Refs whose bank has no bound slot
// are omitted.
func TraverseResultsToI32(refs []types.BankRef, slotOf func(types.BankId) (int, bool)) []int32 {
	out := []int32{0}
	count := int32(0)
	for _, ref := range refs {
		slot, ok := slotOf(ref.Bank)
		if !ok {
			continue
		}
		hi, lo := EntryIdToI32Pair(ref.Entry)
		out = append(out, int32(slot), hi, lo)
		count++
	}
	out[0] = count
	return out
}
