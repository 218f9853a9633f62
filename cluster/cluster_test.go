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

package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Blackfall-Labs/databank/types"
)

func vec(values ...int32) []types.Signal {
	out := make([]types.Signal, len(values))
	for i, v := range values {
		out[i] = types.SignalFromValue(v)
	}
	return out
}

func TestLinkAndTraverse(t *testing.T) {
	c := New()
	a := c.GetOrCreate(1, "A", types.DefaultBankConfig(1))
	b := c.GetOrCreate(2, "B", types.DefaultBankConfig(1))
	cc := c.GetOrCreate(3, "C", types.DefaultBankConfig(1))

	aId, _ := a.Insert(vec(1), types.Hot, 0)
	bId, _ := b.Insert(vec(2), types.Hot, 0)
	cId, _ := cc.Insert(vec(3), types.Hot, 0)

	refA := types.BankRef{Bank: 1, Entry: aId}
	refB := types.BankRef{Bank: 2, Entry: bId}
	refC := types.BankRef{Bank: 3, Entry: cId}

	require.NoError(t, c.Link(refA, refB, types.RelatedTo, 200, 0))
	require.NoError(t, c.Link(refB, refC, types.RelatedTo, 200, 0))

	require.Equal(t, []types.BankRef{refB}, c.Traverse(refA, types.RelatedTo, 1))
	require.Equal(t, []types.BankRef{refB, refC}, c.Traverse(refA, types.RelatedTo, 2))
	require.Empty(t, c.Traverse(refA, types.LooksLike, 2))
	require.Empty(t, c.Traverse(refA, types.RelatedTo, 0))
}

func TestLinkUnknownBank(t *testing.T) {
	c := New()
	err := c.Link(types.BankRef{Bank: 99}, types.BankRef{Bank: 1}, types.RelatedTo, 1, 0)
	require.Error(t, err)
}

func TestQueryAllNormalizesAcrossBanks(t *testing.T) {
	c := New()
	a := c.GetOrCreate(1, "A", types.DefaultBankConfig(2))
	b := c.GetOrCreate(2, "B", types.DefaultBankConfig(2))
	for i := 0; i < 5; i++ {
		a.Insert(vec(int32(i*40), int32(i*40)), types.Hot, 0)
		b.Insert(vec(int32(i*4), int32(i*4)), types.Hot, 0)
	}
	query := vec(200, 200)
	results := c.QueryAll([]BankQuery{{Bank: 1, Query: query}, {Bank: 2, Query: query}}, 3)
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		require.GreaterOrEqual(t, results[i-1].NormalizedScore, results[i].NormalizedScore)
	}
}

func TestQueryByPrefix(t *testing.T) {
	c := New()
	a := c.GetOrCreate(1, "region.visual", types.DefaultBankConfig(1))
	other := c.GetOrCreate(2, "other.audio", types.DefaultBankConfig(1))
	a.Insert(vec(200), types.Hot, 0)
	other.Insert(vec(200), types.Hot, 0)

	results := c.QueryByPrefix("region.", vec(200), 5)
	for _, r := range results {
		require.Equal(t, types.BankId(1), r.Bank)
	}
}

func TestFlushAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := New()
	b := c.GetOrCreate(1, "region", types.DefaultBankConfig(2))
	b.Insert(vec(100, -50), types.Hot, 0)
	b.Config.PersistAfterMutations = 1

	count, err := c.FlushDirty(context.Background(), dir, 0)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	c2 := New()
	require.NoError(t, c2.LoadAll(dir))
	loaded := c2.GetByName("region")
	require.NotNil(t, loaded)
	require.Equal(t, 1, loaded.EntryCount())
}

func TestLoadWithJournalReplay(t *testing.T) {
	dir := t.TempDir()
	c := New()
	require.NoError(t, c.LoadWithJournal(dir))
	b := c.GetOrCreate(1, "region", types.DefaultBankConfig(1))
	_, err := b.Insert(vec(10), types.Hot, 0)
	require.NoError(t, err)
	b.Config.PersistAfterMutations = 1
	count, err := c.FlushDirtyWithJournal(context.Background(), dir, 0)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// A second mutation lands only in the journal (not yet flushed).
	require.NoError(t, c.Journal().AppendInsert(1, types.NewEntryId(1, 0), 1, types.Hot, vec(20)))

	c2 := New()
	require.NoError(t, c2.LoadWithJournal(dir))
	loaded := c2.Get(1)
	require.NotNil(t, loaded)
	require.Equal(t, 2, loaded.EntryCount())
}
