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

package fulfiller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Blackfall-Labs/databank/bank"
	"github.com/Blackfall-Labs/databank/cluster"
	"github.com/Blackfall-Labs/databank/types"
)

func TestSlotMapBindResolveUnbind(t *testing.T) {
	var slots BankSlotMap
	slots.Bind(3, 42)
	id, ok := slots.Resolve(3)
	require.True(t, ok)
	require.Equal(t, types.BankId(42), id)

	slot, ok := slots.SlotOf(42)
	require.True(t, ok)
	require.Equal(t, 3, slot)

	slots.Unbind(3)
	_, ok = slots.Resolve(3)
	require.False(t, ok)
}

func TestFulfillerRoundTripMatchesDirectBank(t *testing.T) {
	c := cluster.New()
	b := c.GetOrCreate(1, "region", types.DefaultBankConfig(2))
	var slots BankSlotMap
	slots.Bind(0, 1)

	var f BankFulfiller
	writeResult := f.Write(c, &slots, 0, []int32{200, -50}, 0)
	require.Equal(t, FulfillWriteRegister, writeResult.Kind)
	require.Len(t, writeResult.Data, 2)
	entryId := entryIdFromResult(writeResult)

	queryResult := f.Query(c, &slots, 0, []int32{200, -50}, 1)
	require.Equal(t, FulfillWriteRegister, queryResult.Kind)
	require.Equal(t, int32(1), queryResult.Data[0])

	require.Equal(t, FulfillOk, f.Touch(c, &slots, 0, int32(entryId>>32), int32(entryId&0xFFFFFFFF), 7).Kind)
	require.Equal(t, FulfillOk, f.Promote(c, &slots, 0, int32(entryId>>32), int32(entryId&0xFFFFFFFF)).Kind)

	directBank := c.Get(1)
	require.Equal(t, b.EntryCount(), directBank.EntryCount())
	require.Equal(t, types.Warm, directBank.Get(types.EntryId(entryId)).Temperature)

	countResult := f.Count(c, &slots, 0)
	require.Equal(t, int32(1), countResult.Data[0])
}

func entryIdFromResult(r FulfillResult) uint64 {
	hi := uint32(r.Data[0])
	lo := uint32(r.Data[1])
	return uint64(hi)<<32 | uint64(lo)
}

func TestFulfillerUnboundSlotFails(t *testing.T) {
	c := cluster.New()
	var slots BankSlotMap
	var f BankFulfiller
	result := f.Count(c, &slots, 5)
	require.Equal(t, FulfillError, result.Kind)
}

func TestFulfillerLinkAndTraverse(t *testing.T) {
	c := cluster.New()
	a := c.GetOrCreate(1, "A", types.DefaultBankConfig(1))
	bk := c.GetOrCreate(2, "B", types.DefaultBankConfig(1))
	var slots BankSlotMap
	slots.Bind(0, 1)
	slots.Bind(1, 2)

	aId, _ := a.Insert([]types.Signal{{Polarity: 1, Magnitude: 10}}, types.Hot, 0)
	bId, _ := bk.Insert([]types.Signal{{Polarity: 1, Magnitude: 20}}, types.Hot, 0)

	var f BankFulfiller
	aHi, aLo := int32(uint64(aId)>>32), int32(uint64(aId)&0xFFFFFFFF)
	bHi, bLo := int32(uint64(bId)>>32), int32(uint64(bId)&0xFFFFFFFF)
	linkResult := f.Link(c, &slots, 0, types.RelatedTo, []int32{aHi, aLo, 1, bHi, bLo, 200}, 0)
	require.Equal(t, FulfillOk, linkResult.Kind)

	traverseResult := f.Traverse(c, &slots, 0, aHi, aLo, types.RelatedTo, 1)
	require.Equal(t, FulfillWriteRegister, traverseResult.Kind)
	require.Equal(t, int32(1), traverseResult.Data[0])
	require.Equal(t, int32(1), traverseResult.Data[1])

	_ = bank.New
}
