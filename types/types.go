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

// Package types defines the core data model shared by every other package
// in the module: identifiers, signals, edges, temperature and bank
// configuration.
package types

import "fmt"

// Signal is the atomic datum stored in an engram vector. Polarity is one of
// -1, 0 or +1; magnitude is in [0, 255]. The effective signed value is
// Polarity * int32(Magnitude).
type Signal struct {
	Polarity int8
	Magnitude uint8
}

// Value returns the signed integer interpretation of the signal.
func (s Signal) Value() int32 {
	return int32(s.Polarity) * int32(s.Magnitude)
}

// Inactive reports whether the signal carries no information.
func (s Signal) Inactive() bool {
	return s.Polarity == 0 && s.Magnitude == 0
}

// SignalFromValue clamps v into [-255, 255] and splits it into polarity and
// magnitude. This is the host integer bridge's lossy-by-design contract.
func SignalFromValue(v int32) Signal {
	if v > 255 {
		v = 255
	}
	if v < -255 {
		v = -255
	}
	switch {
	case v > 0:
		return Signal{Polarity: 1, Magnitude: uint8(v)}
	case v < 0:
		return Signal{Polarity: -1, Magnitude: uint8(-v)}
	default:
		return Signal{Polarity: 0, Magnitude: 0}
	}
}

// BankId is a temporally-sortable 64-bit bank identifier: the upper 32 bits
// are seconds since the Unix epoch at creation, the next 24 bits are an
// FNV-1a hash of the region name, and the low 8 bits are a per-second
// sequence number.
type BankId uint64

// NewBankId packs a creation timestamp, region-name hash and per-second
// sequence into a BankId.
func NewBankId(tsSecs int64, regionNameHash24 uint32, seq uint8) BankId {
	return BankId(uint64(tsSecs)<<32 | uint64(regionNameHash24&0xFFFFFF)<<8 | uint64(seq))
}

// TimestampSecs returns the creation-second component.
func (b BankId) TimestampSecs() int64 {
	return int64(uint64(b) >> 32)
}

// RegionHash returns the 24-bit region-name hash component.
func (b BankId) RegionHash() uint32 {
	return uint32((uint64(b) >> 8) & 0xFFFFFF)
}

// Seq returns the per-second sequence component.
func (b BankId) Seq() uint8 {
	return uint8(uint64(b) & 0xFF)
}

func (b BankId) String() string {
	return fmt.Sprintf("bank:%016x", uint64(b))
}

// FNV1a24 hashes name with 32-bit FNV-1a and keeps the low 24 bits of the
// result, for use as the middle component of a BankId.
func FNV1a24(name string) uint32 {
	const offsetBasis uint32 = 2166136261
	const prime uint32 = 16777619
	h := offsetBasis
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= prime
	}
	return h & 0xFFFFFF
}

// EntryId is a temporally-sortable 64-bit entry identifier: the upper 42
// bits are milliseconds since the Unix epoch, the low 22 bits are a
// bank-local sequence number.
type EntryId uint64

// NewEntryId packs a creation millisecond timestamp and bank-local sequence
// into an EntryId.
func NewEntryId(tsMillis int64, seq uint32) EntryId {
	return EntryId(uint64(tsMillis)<<22 | uint64(seq&0x3FFFFF))
}

// TimestampMillis returns the creation-millisecond component.
func (e EntryId) TimestampMillis() int64 {
	return int64(uint64(e) >> 22)
}

// Seq returns the bank-local sequence component.
func (e EntryId) Seq() uint32 {
	return uint32(uint64(e) & 0x3FFFFF)
}

func (e EntryId) String() string {
	return fmt.Sprintf("entry:%016x", uint64(e))
}

// BankRef is a cross-bank pointer: a bank identity paired with an entry
// identity inside that bank.
type BankRef struct {
	Bank  BankId
	Entry EntryId
}

func (r BankRef) String() string {
	return fmt.Sprintf("%s/%s", r.Bank, r.Entry)
}

// EdgeType is a closed enumeration of directed relationship kinds.
type EdgeType uint8

const (
	IsA EdgeType = iota
	HasA
	PartOf
	RelatedTo
	SimilarTo
	Causes
	Precedes
	LooksLike
	SoundsLike
	FeelsLike
	CoOccurred
	FollowedBy
	// Custom allows host-defined relationship kinds outside the closed set.
	Custom EdgeType = 255
)

// Valid reports whether t is one of the defined EdgeType discriminants.
func (t EdgeType) Valid() bool {
	return t <= FollowedBy || t == Custom
}

func (t EdgeType) String() string {
	switch t {
	case IsA:
		return "IsA"
	case HasA:
		return "HasA"
	case PartOf:
		return "PartOf"
	case RelatedTo:
		return "RelatedTo"
	case SimilarTo:
		return "SimilarTo"
	case Causes:
		return "Causes"
	case Precedes:
		return "Precedes"
	case LooksLike:
		return "LooksLike"
	case SoundsLike:
		return "SoundsLike"
	case FeelsLike:
		return "FeelsLike"
	case CoOccurred:
		return "CoOccurred"
	case FollowedBy:
		return "FollowedBy"
	case Custom:
		return "Custom"
	default:
		return fmt.Sprintf("EdgeType(%d)", uint8(t))
	}
}

// Edge is a typed directed relationship from one entry to a BankRef,
// possibly in another bank.
type Edge struct {
	Type        EdgeType
	Target      BankRef
	Weight      uint8
	CreatedTick uint64
}

// ReverseEdge records that Source points at the entry this reverse edge is
// filed under, via Type.
type ReverseEdge struct {
	Source BankRef
	Type   EdgeType
}

// Temperature is the four-level preservation-priority lifecycle.
type Temperature uint8

const (
	Hot Temperature = iota
	Warm
	Cool
	Cold
)

// Valid reports whether t is one of the defined Temperature discriminants.
func (t Temperature) Valid() bool {
	return t <= Cold
}

func (t Temperature) String() string {
	switch t {
	case Hot:
		return "Hot"
	case Warm:
		return "Warm"
	case Cool:
		return "Cool"
	case Cold:
		return "Cold"
	default:
		return fmt.Sprintf("Temperature(%d)", uint8(t))
	}
}

// Promote returns the next-cooler temperature and whether it changed. Cold
// cannot promote further.
func (t Temperature) Promote() (Temperature, bool) {
	if t == Cold {
		return t, false
	}
	return t + 1, true
}

// Demote returns the next-warmer temperature and whether it changed. Hot
// cannot demote further.
func (t Temperature) Demote() (Temperature, bool) {
	if t == Hot {
		return t, false
	}
	return t - 1, true
}

// IndexKind selects which VectorIndex implementation a bank constructs.
type IndexKind uint8

const (
	// IndexBruteForce scans every entry on every query.
	IndexBruteForce IndexKind = iota
	// IndexIVF partitions entries among centroids for approximate search.
	IndexIVF
)

// IVFParams configures an IVF index: K centroids, NProbe centroids visited
// per query.
type IVFParams struct {
	K      int
	NProbe int
}

// BankConfig is the immutable-after-creation configuration of a bank.
type BankConfig struct {
	VectorWidth         uint16
	MaxEntries          uint32
	MaxEdgesPerEntry    uint16
	PersistAfterMutations uint32
	PersistAfterTicks   uint64
	IndexKind           IndexKind
	IVF                 IVFParams
}

// DefaultBankConfig returns a BankConfig with the spec's documented
// defaults, for the given fixed vector width.
func DefaultBankConfig(vectorWidth uint16) BankConfig {
	return BankConfig{
		VectorWidth:           vectorWidth,
		MaxEntries:            4096,
		MaxEdgesPerEntry:      32,
		PersistAfterMutations: 100,
		PersistAfterTicks:     10000,
		IndexKind:             IndexBruteForce,
	}
}
