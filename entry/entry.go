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

// Package entry implements BankEntry: one stored engram, its edges,
// lifecycle counters and integrity checksum.
package entry

import (
	"hash/crc32"

	"github.com/Blackfall-Labs/databank/dberr"
	"github.com/Blackfall-Labs/databank/types"
)

// defaultConfidence is the confidence a freshly inserted entry starts with.
const defaultConfidence = 128

// temperatureWeight is the eviction-score contribution of each temperature
// level; colder entries are nearly unevictable.
var temperatureWeight = map[types.Temperature]uint32{
	types.Hot:  10,
	types.Warm: 50,
	types.Cool: 200,
	types.Cold: 1000,
}

// BankEntry is one stored engram.
type BankEntry struct {
	Id               types.EntryId
	Vector           []types.Signal
	Edges            []types.Edge
	Origin           types.BankId
	Temperature      types.Temperature
	CreatedTick      uint64
	LastAccessedTick uint64
	AccessCount      uint32
	Confidence       uint8
	DebugTag         string
	Checksum         uint32
}

// New constructs a BankEntry with a freshly computed checksum.
func New(id types.EntryId, vector []types.Signal, origin types.BankId, temperature types.Temperature, tick uint64) *BankEntry {
	e := &BankEntry{
		Id:          id,
		Vector:      vector,
		Origin:      origin,
		Temperature: temperature,
		CreatedTick: tick,
		Confidence:  defaultConfidence,
	}
	e.Checksum = ComputeVectorChecksum(vector)
	return e
}

// ComputeVectorChecksum returns the IEEE CRC-32 over the raw
// (polarity, magnitude) byte stream of vector. Go's standard hash/crc32
// with the IEEE polynomial table is bit-identical to the hand-rolled
// CRC-32 the vector integrity check is specified against, so it is used
// directly rather than a third-party CRC library.
func ComputeVectorChecksum(vector []types.Signal) uint32 {
	buf := make([]byte, 0, len(vector)*2)
	for _, s := range vector {
		buf = append(buf, byte(s.Polarity), s.Magnitude)
	}
	return crc32.ChecksumIEEE(buf)
}

// Validate reports whether the entry's stored checksum matches its vector.
func (e *BankEntry) Validate() bool {
	return e.Checksum == ComputeVectorChecksum(e.Vector)
}

// Touch records an access at tick: access_count saturates at its 32-bit
// maximum, last_accessed_tick advances to tick.
func (e *BankEntry) Touch(tick uint64) {
	if e.AccessCount < ^uint32(0) {
		e.AccessCount++
	}
	e.LastAccessedTick = tick
}

// AddEdge appends edge to the entry's edge list, failing EdgeLimitReached
// once maxEdges is reached.
func (e *BankEntry) AddEdge(edge types.Edge, maxEdges uint16) error {
	if len(e.Edges) >= int(maxEdges) {
		return dberr.EdgeLimitReached(maxEdges)
	}
	e.Edges = append(e.Edges, edge)
	return nil
}

// RemoveEdgesTo removes every edge targeting target, returning the number
// removed.
func (e *BankEntry) RemoveEdgesTo(target types.BankRef) int {
	kept := e.Edges[:0]
	removed := 0
	for _, edge := range e.Edges {
		if edge.Target == target {
			removed++
			continue
		}
		kept = append(kept, edge)
	}
	e.Edges = kept
	return removed
}

// EvictionScore computes the §4.3.1 eviction figure of merit at
// currentTick; lower is more evictable.
func (e *BankEntry) EvictionScore(currentTick uint64) uint64 {
	var recency uint64
	if currentTick > e.LastAccessedTick {
		age := currentTick - e.LastAccessedTick
		if age >= 500 {
			recency = 0
		} else {
			recency = 500 - age
		}
	} else {
		recency = 500
	}
	access := uint64(e.AccessCount)
	if access > 500 {
		access = 500
	}
	return uint64(temperatureWeight[e.Temperature]) + recency + access + uint64(e.Confidence)
}

// Promote steps the entry one level colder, returning whether it changed.
func (e *BankEntry) Promote() bool {
	next, changed := e.Temperature.Promote()
	if changed {
		e.Temperature = next
	}
	return changed
}

// Demote steps the entry one level warmer, returning whether it changed.
func (e *BankEntry) Demote() bool {
	next, changed := e.Temperature.Demote()
	if changed {
		e.Temperature = next
	}
	return changed
}

// PromotionEligible reports whether the entry meets the given
// access-count/age thresholds for promotion during a consolidation pass.
func (e *BankEntry) PromotionEligible(tick uint64, minAccesses uint32, minAgeTicks uint64) bool {
	if e.Temperature == types.Cold {
		return false
	}
	return e.AccessCount >= minAccesses && tick-e.CreatedTick >= minAgeTicks
}

// DemotionEligible reports whether the entry's confidence is below
// threshold and it is not already Hot.
func (e *BankEntry) DemotionEligible(confidenceThreshold uint8) bool {
	return e.Temperature != types.Hot && e.Confidence < confidenceThreshold
}

// SignedVector returns the entry's vector as plain signed integers, for use
// by index implementations that operate on centroids rather than Signals.
func (e *BankEntry) SignedVector() []int32 {
	out := make([]int32, len(e.Vector))
	for i, s := range e.Vector {
		out[i] = s.Value()
	}
	return out
}
