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

package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Blackfall-Labs/databank/index"
	"github.com/Blackfall-Labs/databank/types"
)

func TestSignalI32RoundTrip(t *testing.T) {
	values := []int32{0, 255, -255, 128, -1}
	signals := I32ToSignals(values)
	back := SignalsToI32(signals)
	require.Equal(t, values, back)
}

func TestEntryIdPairRoundTripZero(t *testing.T) {
	hi, lo := EntryIdToI32Pair(0)
	require.Equal(t, types.EntryId(0), I32PairToEntryId(hi, lo))
}

func TestEntryIdPairRoundTripMax(t *testing.T) {
	max := types.EntryId(^uint64(0))
	hi, lo := EntryIdToI32Pair(max)
	require.Equal(t, max, I32PairToEntryId(hi, lo))
}

func TestQueryResultsToI32(t *testing.T) {
	hits := []index.ScoredEntry{
		{Id: types.NewEntryId(1, 0), Score: 200},
		{Id: types.NewEntryId(2, 0), Score: 100},
	}
	packed := QueryResultsToI32(hits)
	require.Equal(t, int32(2), packed[0])
	require.Len(t, packed, 1+3*2)
}

func TestTraverseResultsToI32SkipsUnboundSlots(t *testing.T) {
	refs := []types.BankRef{
		{Bank: 1, Entry: types.NewEntryId(1, 0)},
		{Bank: 2, Entry: types.NewEntryId(2, 0)},
	}
	packed := TraverseResultsToI32(refs, func(id types.BankId) (int, bool) {
		if id == 1 {
			return 7, true
		}
		return 0, false
	})
	require.Equal(t, int32(1), packed[0])
	require.Equal(t, int32(7), packed[1])
}
