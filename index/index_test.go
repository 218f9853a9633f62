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

package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Blackfall-Labs/databank/entry"
	"github.com/Blackfall-Labs/databank/types"
)

func mkEntry(id types.EntryId, values ...int32) *entry.BankEntry {
	vec := make([]types.Signal, len(values))
	for i, v := range values {
		vec[i] = types.SignalFromValue(v)
	}
	return entry.New(id, vec, 0, types.Hot, 0)
}

func TestBruteForceQueryEmpty(t *testing.T) {
	require.Nil(t, BruteForceQuery(nil, map[types.EntryId]*entry.BankEntry{}, 5))
}

func TestBruteForceQueryTopK(t *testing.T) {
	entries := map[types.EntryId]*entry.BankEntry{
		1: mkEntry(1, 200, 200),
		2: mkEntry(2, -200, -200),
		3: mkEntry(3, 190, 195),
	}
	query := []types.Signal{types.SignalFromValue(200), types.SignalFromValue(200)}
	results := BruteForceQuery(query, entries, 2)
	require.Len(t, results, 2)
	require.GreaterOrEqual(t, results[0].Score, results[1].Score)
	require.Equal(t, types.EntryId(1), results[0].Id)
}

func TestBruteForceIndexIsStateless(t *testing.T) {
	idx := NewBruteForceIndex()
	idx.Insert(1, nil)
	idx.Remove(1)
	idx.Rebuild(nil)
	entries := map[types.EntryId]*entry.BankEntry{1: mkEntry(1, 100)}
	results := idx.Query([]types.Signal{types.SignalFromValue(100)}, entries, 1)
	require.Len(t, results, 1)
}
