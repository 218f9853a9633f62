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

// Package index defines the VectorIndex capability and its brute-force
// implementation. DataBank selects one VectorIndex implementation at
// construction time (see package ivf for the approximate alternative).
package index

import (
	"sort"

	"github.com/Blackfall-Labs/databank/entry"
	"github.com/Blackfall-Labs/databank/similarity"
	"github.com/Blackfall-Labs/databank/types"
)

// ScoredEntry is one query hit.
type ScoredEntry struct {
	Id    types.EntryId
	Score int32
}

// VectorIndex is the capability a DataBank delegates similarity search to.
// Implementations are not required to be safe for concurrent use; the
// surrounding bank owns all synchronization (there is none, per the
// single-threaded cooperative model).
type VectorIndex interface {
	Insert(id types.EntryId, vector []types.Signal)
	Remove(id types.EntryId)
	Query(query []types.Signal, entries map[types.EntryId]*entry.BankEntry, topK int) []ScoredEntry
	Rebuild(entries map[types.EntryId]*entry.BankEntry)
}

// BruteForceIndex scores every candidate entry on every query. It carries
// no state of its own; insert/remove/rebuild are no-ops because Query
// always scans the live entry map directly.
type BruteForceIndex struct{}

// NewBruteForceIndex constructs a stateless brute-force index.
func NewBruteForceIndex() *BruteForceIndex {
	return &BruteForceIndex{}
}

func (b *BruteForceIndex) Insert(types.EntryId, []types.Signal) {}
func (b *BruteForceIndex) Remove(types.EntryId)                 {}
func (b *BruteForceIndex) Rebuild(map[types.EntryId]*entry.BankEntry) {}

// Query scores every entry in entries against query and returns the top
// topK descending by score.
func (b *BruteForceIndex) Query(query []types.Signal, entries map[types.EntryId]*entry.BankEntry, topK int) []ScoredEntry {
	return BruteForceQuery(query, entries, topK)
}

// BruteForceQuery is the shared brute-force scan used directly by
// BruteForceIndex and as the IVF fallback path when no centroids exist.
func BruteForceQuery(query []types.Signal, entries map[types.EntryId]*entry.BankEntry, topK int) []ScoredEntry {
	if topK <= 0 || len(entries) == 0 {
		return nil
	}
	results := make([]ScoredEntry, 0, len(entries))
	for id, e := range entries {
		score := similarity.SparseCosine(query, e.Vector)
		results = append(results, ScoredEntry{Id: id, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
