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

// Package ivf implements the inverted-file approximate nearest-neighbor
// VectorIndex: k centroids, nprobe visited per query, optional k-means
// refinement.
package ivf

import (
	"sort"

	"github.com/Blackfall-Labs/databank/entry"
	"github.com/Blackfall-Labs/databank/index"
	"github.com/Blackfall-Labs/databank/types"
)

// defaultMaxIterations bounds the k-means refinement loop.
const defaultMaxIterations = 16

// Index is the inverted-file VectorIndex: K centroids (stored as signed
// per-dimension sums, not Signals) each with a bucket of member EntryIds.
type Index struct {
	K      int
	NProbe int

	centroids [][]int32
	buckets   [][]types.EntryId
}

// New constructs an empty IVF index with the given centroid count and
// probe count. Call Rebuild once entries exist.
func New(k, nprobe int) *Index {
	if k < 1 {
		k = 1
	}
	if nprobe < 1 {
		nprobe = 1
	}
	return &Index{K: k, NProbe: nprobe}
}

var _ index.VectorIndex = (*Index)(nil)

// Insert is a no-op when no centroids exist yet (lazy index maintenance —
// the first Rebuild after bulk load materializes the structure). Otherwise
// the entry is assigned to its nearest centroid.
func (ix *Index) Insert(id types.EntryId, vector []types.Signal) {
	if len(ix.centroids) == 0 {
		return
	}
	signed := signalsToI32(vector)
	c := nearestCentroid(signed, ix.centroids)
	if c < 0 {
		return
	}
	ix.buckets[c] = append(ix.buckets[c], id)
}

// Remove deletes id from whichever bucket holds it.
func (ix *Index) Remove(id types.EntryId) {
	for i, bucket := range ix.buckets {
		for j, member := range bucket {
			if member == id {
				ix.buckets[i] = append(bucket[:j], bucket[j+1:]...)
				return
			}
		}
	}
}

// Query falls back to brute force when there are no centroids; otherwise it
// unions the nprobe nearest centroid buckets and scores only those members.
func (ix *Index) Query(query []types.Signal, entries map[types.EntryId]*entry.BankEntry, topK int) []index.ScoredEntry {
	if topK <= 0 || len(entries) == 0 || len(ix.centroids) == 0 {
		return index.BruteForceQuery(query, entries, topK)
	}
	signed := signalsToI32(query)
	probes := nearestCentroids(signed, ix.centroids, ix.NProbe)
	candidates := make(map[types.EntryId]*entry.BankEntry)
	for _, c := range probes {
		for _, id := range ix.buckets[c] {
			if e, ok := entries[id]; ok {
				candidates[id] = e
			}
		}
	}
	return index.BruteForceQuery(query, candidates, topK)
}

// Rebuild re-seeds centroids deterministically and reassigns every entry.
// Entries are sorted by EntryId before spacing-selection so seeding is
// reproducible across runs — the original Rust source iterated a HashMap's
// unordered values for this, which this Go port does not replicate.
func (ix *Index) Rebuild(entries map[types.EntryId]*entry.BankEntry) {
	sorted := sortedEntries(entries)
	ix.initializeCentroids(sorted)
	ix.assignAll(sorted)
}

// RebuildKMeans re-seeds centroids, then iterates assign/recompute until
// convergence or defaultMaxIterations, finishing with a final assign pass.
func (ix *Index) RebuildKMeans(entries map[types.EntryId]*entry.BankEntry) {
	sorted := sortedEntries(entries)
	ix.initializeCentroids(sorted)
	for iter := 0; iter < defaultMaxIterations; iter++ {
		changed := ix.assignAndRecompute(sorted)
		if !changed {
			break
		}
	}
	ix.assignAll(sorted)
}

type namedVector struct {
	id     types.EntryId
	signed []int32
}

func sortedEntries(entries map[types.EntryId]*entry.BankEntry) []namedVector {
	out := make([]namedVector, 0, len(entries))
	for id, e := range entries {
		out = append(out, namedVector{id: id, signed: e.SignedVector()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (ix *Index) initializeCentroids(sorted []namedVector) {
	k := ix.K
	if k > len(sorted) {
		k = len(sorted)
	}
	if k == 0 {
		ix.centroids = nil
		ix.buckets = nil
		return
	}
	step := len(sorted) / k
	if step == 0 {
		step = 1
	}
	centroids := make([][]int32, 0, k)
	for i := 0; i < k && i*step < len(sorted); i++ {
		v := sorted[i*step].signed
		centroids = append(centroids, append([]int32(nil), v...))
	}
	ix.centroids = centroids
	ix.buckets = make([][]types.EntryId, len(centroids))
}

func (ix *Index) assignAll(sorted []namedVector) {
	for i := range ix.buckets {
		ix.buckets[i] = ix.buckets[i][:0]
	}
	for _, v := range sorted {
		c := nearestCentroid(v.signed, ix.centroids)
		if c < 0 {
			continue
		}
		ix.buckets[c] = append(ix.buckets[c], v.id)
	}
}

// assignAndRecompute performs one k-means iteration, returning whether any
// centroid changed.
func (ix *Index) assignAndRecompute(sorted []namedVector) bool {
	ix.assignAll(sorted)
	byID := make(map[types.EntryId][]int32, len(sorted))
	for _, v := range sorted {
		byID[v.id] = v.signed
	}
	changed := false
	for i, bucket := range ix.buckets {
		if len(bucket) == 0 {
			continue
		}
		width := len(ix.centroids[i])
		sums := make([]int64, width)
		for _, id := range bucket {
			for d, val := range byID[id] {
				sums[d] += int64(val)
			}
		}
		next := make([]int32, width)
		for d := range sums {
			next[d] = int32(sums[d] / int64(len(bucket)))
		}
		if !equalVectors(next, ix.centroids[i]) {
			changed = true
		}
		ix.centroids[i] = next
	}
	return changed
}

func equalVectors(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func signalsToI32(vector []types.Signal) []int32 {
	out := make([]int32, len(vector))
	for i, s := range vector {
		out[i] = s.Value()
	}
	return out
}

func dotI32(a, b []int32) int64 {
	l := len(a)
	if len(b) < l {
		l = len(b)
	}
	var sum int64
	for i := 0; i < l; i++ {
		sum += int64(a[i]) * int64(b[i])
	}
	return sum
}

// nearestCentroid returns the index of the centroid maximizing dot product
// with v, ties resolving to the lowest index, or -1 if there are no
// centroids.
func nearestCentroid(v []int32, centroids [][]int32) int {
	best := -1
	var bestDot int64
	for i, c := range centroids {
		d := dotI32(v, c)
		if best == -1 || d > bestDot {
			best = i
			bestDot = d
		}
	}
	return best
}

// nearestCentroids returns up to n centroid indices, nearest first.
func nearestCentroids(v []int32, centroids [][]int32, n int) []int {
	type scored struct {
		idx int
		dot int64
	}
	all := make([]scored, len(centroids))
	for i, c := range centroids {
		all[i] = scored{idx: i, dot: dotI32(v, c)}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].dot > all[j].dot })
	if n > len(all) {
		n = len(all)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].idx
	}
	return out
}
