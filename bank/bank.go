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

// Package bank implements DataBank: the owner of one region's entries, its
// vector index, and its reverse-edge map.
package bank

import (
	"sort"

	"github.com/google/btree"

	"github.com/Blackfall-Labs/databank/dberr"
	"github.com/Blackfall-Labs/databank/entry"
	"github.com/Blackfall-Labs/databank/index"
	"github.com/Blackfall-Labs/databank/ivf"
	"github.com/Blackfall-Labs/databank/types"
)

// DataBank owns every entry belonging to one region, the vector index
// chosen for it, and the reverse-edge map used for local edge lookups.
type DataBank struct {
	Id     types.BankId
	Name   string
	Config types.BankConfig

	entries map[types.EntryId]*entry.BankEntry
	nextSeq uint32
	idx     index.VectorIndex
	reverse map[types.EntryId][]types.ReverseEdge

	dirty                bool
	mutationsSincePersist uint32
	lastPersistTick       uint64
}

// New constructs an empty DataBank with the index implementation named by
// config.IndexKind.
func New(id types.BankId, name string, config types.BankConfig) *DataBank {
	return &DataBank{
		Id:      id,
		Name:    name,
		Config:  config,
		entries: make(map[types.EntryId]*entry.BankEntry),
		idx:     newIndex(config),
		reverse: make(map[types.EntryId][]types.ReverseEdge),
	}
}

func newIndex(config types.BankConfig) index.VectorIndex {
	switch config.IndexKind {
	case types.IndexIVF:
		k := config.IVF.K
		if k < 1 {
			k = 1
		}
		nprobe := config.IVF.NProbe
		if nprobe < 1 {
			nprobe = 1
		}
		return ivf.New(k, nprobe)
	default:
		return index.NewBruteForceIndex()
	}
}

// EntryCount returns the number of entries currently stored.
func (b *DataBank) EntryCount() int {
	return len(b.entries)
}

// IsDirty reports whether mutations have occurred since the last persist.
func (b *DataBank) IsDirty() bool {
	return b.dirty
}

// MutationsSincePersist returns the mutation counter used by ShouldPersist.
func (b *DataBank) MutationsSincePersist() uint32 {
	return b.mutationsSincePersist
}

// LastPersistTick returns the tick at which the bank was last marked
// persisted.
func (b *DataBank) LastPersistTick() uint64 {
	return b.lastPersistTick
}

// Entries exposes the live entry map read-only by convention; callers must
// not mutate it outside DataBank's own methods.
func (b *DataBank) Entries() map[types.EntryId]*entry.BankEntry {
	return b.entries
}

func (b *DataBank) markDirty() {
	b.dirty = true
	b.mutationsSincePersist++
}

// Insert stores vector as a new entry, evicting the least-valuable entry
// first if the bank is at capacity.
func (b *DataBank) Insert(vector []types.Signal, temperature types.Temperature, tick uint64) (types.EntryId, error) {
	if len(vector) != int(b.Config.VectorWidth) {
		return 0, dberr.VectorWidthMismatch(int(b.Config.VectorWidth), len(vector))
	}
	if uint32(len(b.entries)) >= b.Config.MaxEntries {
		if b.EvictN(1, tick) == 0 {
			return 0, dberr.BankFull(b.Config.MaxEntries)
		}
	}
	if uint32(len(b.entries)) >= b.Config.MaxEntries {
		return 0, dberr.BankFull(b.Config.MaxEntries)
	}
	id := b.allocateEntryId(tick)
	e := entry.New(id, vector, b.Id, temperature, tick)
	b.entries[id] = e
	b.idx.Insert(id, vector)
	b.markDirty()
	return id, nil
}

func (b *DataBank) allocateEntryId(tick uint64) types.EntryId {
	seq := b.nextSeq
	b.nextSeq = (b.nextSeq + 1) & 0x3FFFFF
	return types.NewEntryId(int64(tick), seq)
}

// Get returns the entry with id, or nil if absent.
func (b *DataBank) Get(id types.EntryId) *entry.BankEntry {
	return b.entries[id]
}

// Remove deletes the entry with id from the entry map, index, and reverse
// edge map, returning it if it existed.
func (b *DataBank) Remove(id types.EntryId) *entry.BankEntry {
	e, ok := b.entries[id]
	if !ok {
		return nil
	}
	delete(b.entries, id)
	delete(b.reverse, id)
	b.idx.Remove(id)
	b.markDirty()
	return e
}

// QuerySparse scores query against every stored entry (or the index's
// restricted candidate set) and returns up to topK results descending by
// score.
func (b *DataBank) QuerySparse(query []types.Signal, topK int) []index.ScoredEntry {
	return b.idx.Query(query, b.entries, topK)
}

// AddEdge appends edge to the entry identified by from and records the
// reverse mapping keyed by the edge's target entry.
func (b *DataBank) AddEdge(from types.EntryId, edge types.Edge) error {
	e, ok := b.entries[from]
	if !ok {
		return dberr.EntryNotFound(from)
	}
	if err := e.AddEdge(edge, b.Config.MaxEdgesPerEntry); err != nil {
		return err
	}
	source := types.BankRef{Bank: b.Id, Entry: from}
	b.reverse[edge.Target.Entry] = append(b.reverse[edge.Target.Entry], types.ReverseEdge{Source: source, Type: edge.Type})
	b.markDirty()
	return nil
}

// EdgesFrom returns the edges stored on entry id, or nil if absent.
func (b *DataBank) EdgesFrom(id types.EntryId) []types.Edge {
	e, ok := b.entries[id]
	if !ok {
		return nil
	}
	return e.Edges
}

// ReverseEdges returns the edges pointing at entry id from within this
// bank, or nil if none.
func (b *DataBank) ReverseEdges(id types.EntryId) []types.ReverseEdge {
	return b.reverse[id]
}

// PromoteEntry steps id one level colder, returning whether it changed.
func (b *DataBank) PromoteEntry(id types.EntryId) bool {
	e, ok := b.entries[id]
	if !ok {
		return false
	}
	changed := e.Promote()
	if changed {
		b.markDirty()
	}
	return changed
}

// DemoteEntry steps id one level warmer, returning whether it changed.
func (b *DataBank) DemoteEntry(id types.EntryId) bool {
	e, ok := b.entries[id]
	if !ok {
		return false
	}
	changed := e.Demote()
	if changed {
		b.markDirty()
	}
	return changed
}

// ConsolidationPass promotes every eligible entry, returning the count
// promoted.
func (b *DataBank) ConsolidationPass(tick uint64, minAccesses uint32, minAgeTicks uint64) int {
	count := 0
	for _, e := range b.entries {
		if e.PromotionEligible(tick, minAccesses, minAgeTicks) && e.Promote() {
			count++
		}
	}
	if count > 0 {
		b.markDirty()
	}
	return count
}

// DemotionPass demotes every entry below confidenceThreshold, returning the
// count demoted.
func (b *DataBank) DemotionPass(confidenceThreshold uint8) int {
	count := 0
	for _, e := range b.entries {
		if e.DemotionEligible(confidenceThreshold) && e.Demote() {
			count++
		}
	}
	if count > 0 {
		b.markDirty()
	}
	return count
}

// evictCandidate pairs an entry id with its eviction score for ordering
// inside the transient selection tree.
type evictCandidate struct {
	score uint64
	id    types.EntryId
}

func evictLess(a, b evictCandidate) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.id < b.id
}

// EvictN removes the n lowest-scoring (most evictable) entries at tick,
// returning the count actually evicted. Eviction score depends on the
// current tick, so no persistent index of it can stay valid across calls;
// a fresh btree.BTreeG is built per pass to extract the n smallest in
// O(m log m), then torn down.
func (b *DataBank) EvictN(n int, tick uint64) int {
	if n <= 0 || len(b.entries) == 0 {
		return 0
	}
	tree := btree.NewG(32, evictLess)
	for id, e := range b.entries {
		tree.ReplaceOrInsert(evictCandidate{score: e.EvictionScore(tick), id: id})
	}
	victims := make([]types.EntryId, 0, n)
	tree.Ascend(func(c evictCandidate) bool {
		victims = append(victims, c.id)
		return len(victims) < n
	})
	for _, id := range victims {
		b.Remove(id)
	}
	return len(victims)
}

// Compact rebuilds the vector index from the live entry map and drops
// reverse-edge entries with no corresponding entry in this bank.
func (b *DataBank) Compact() {
	b.idx.Rebuild(b.entries)
	for id := range b.reverse {
		if _, ok := b.entries[id]; !ok {
			delete(b.reverse, id)
		}
	}
}

// ShouldPersist reports whether the bank is dirty and has crossed either
// the mutation-count or tick-age persistence threshold.
func (b *DataBank) ShouldPersist(tick uint64) bool {
	if !b.dirty {
		return false
	}
	if b.mutationsSincePersist >= b.Config.PersistAfterMutations {
		return true
	}
	return tick-b.lastPersistTick >= b.Config.PersistAfterTicks
}

// MarkPersisted clears the dirty flag and resets the persistence counters.
func (b *DataBank) MarkPersisted(tick uint64) {
	b.dirty = false
	b.mutationsSincePersist = 0
	b.lastPersistTick = tick
}

// SortedEntryIds returns every stored EntryId in ascending order, used by
// the codec for deterministic snapshot encoding.
func (b *DataBank) SortedEntryIds() []types.EntryId {
	ids := make([]types.EntryId, 0, len(b.entries))
	for id := range b.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RestoreEntry reinserts a fully-formed entry during snapshot decoding,
// bypassing capacity eviction (the snapshot is authoritative).
func (b *DataBank) RestoreEntry(e *entry.BankEntry) {
	b.entries[e.Id] = e
	b.idx.Insert(e.Id, e.Vector)
	for _, edge := range e.Edges {
		if edge.Target.Bank != b.Id {
			continue
		}
		source := types.BankRef{Bank: b.Id, Entry: e.Id}
		b.reverse[edge.Target.Entry] = append(b.reverse[edge.Target.Entry], types.ReverseEdge{Source: source, Type: edge.Type})
	}
}

// SetNextSeq restores the bank-local entry sequence counter from a
// snapshot.
func (b *DataBank) SetNextSeq(seq uint32) {
	b.nextSeq = seq & 0x3FFFFF
}

// NextSeq returns the current bank-local entry sequence counter.
func (b *DataBank) NextSeq() uint32 {
	return b.nextSeq
}

// SetMutationCounters restores the persistence bookkeeping fields from a
// snapshot.
func (b *DataBank) SetMutationCounters(mutationsSincePersist uint32, lastPersistTick uint64) {
	b.mutationsSincePersist = mutationsSincePersist
	b.lastPersistTick = lastPersistTick
}
