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

// Package codec implements the binary *.bank snapshot format: a fixed
// 32-byte header, a length-prefixed body, and a 64-bit content hash used to
// detect corruption on load.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/Blackfall-Labs/databank/bank"
	"github.com/Blackfall-Labs/databank/dberr"
	"github.com/Blackfall-Labs/databank/entry"
	"github.com/Blackfall-Labs/databank/mathutil"
	"github.com/Blackfall-Labs/databank/types"
)

const (
	magic         = "BANK"
	formatVersion = uint16(1)
	headerSize    = 32
)

var byteOrder = binary.LittleEndian

// Encode serializes b into the *.bank wire format, including the header's
// total_size and content-hash fields.
func Encode(b *bank.DataBank) ([]byte, error) {
	var body bytes.Buffer
	writeString16(&body, b.Name)
	writeU32(&body, b.Config.PersistAfterMutations)
	writeU64(&body, b.Config.PersistAfterTicks)
	writeU32(&body, b.Config.MaxEntries)
	writeU16(&body, b.Config.VectorWidth)
	writeU16(&body, b.Config.MaxEdgesPerEntry)

	ids := b.SortedEntryIds()
	for _, id := range ids {
		e := b.Get(id)
		encodeEntry(&body, e)
	}

	writeU32(&body, b.NextSeq())
	writeU32(&body, b.MutationsSincePersist())
	writeU64(&body, b.LastPersistTick())

	total, overflow := mathutil.SafeAdd(uint64(headerSize), uint64(body.Len()))
	if overflow || total > mathutil.MaxUint32 {
		return nil, dberr.Codec(fmt.Sprintf("encoded bank %s too large for a u32 total_size", mathutil.FormatHexOrDecimal(uint64(b.Id))))
	}
	out := make([]byte, headerSize, int(total))
	copy(out[0:4], magic)
	byteOrder.PutUint16(out[4:6], formatVersion)
	byteOrder.PutUint16(out[6:8], 0)
	byteOrder.PutUint32(out[8:12], uint32(total))
	// [12:20] content hash patched below.
	byteOrder.PutUint64(out[20:28], uint64(b.Id))
	byteOrder.PutUint16(out[28:30], b.Config.VectorWidth)
	if len(ids) > 0xFFFF {
		return nil, dberr.Codec(fmt.Sprintf("entry_count %d exceeds u16", len(ids)))
	}
	byteOrder.PutUint16(out[30:32], uint16(len(ids)))
	out = append(out, body.Bytes()...)

	hash := xxhash.Sum64(out[headerSize:])
	byteOrder.PutUint64(out[12:20], hash)
	return out, nil
}

func encodeEntry(buf *bytes.Buffer, e *entry.BankEntry) {
	writeU64(buf, uint64(e.Id))
	writeU16(buf, uint16(len(e.Vector)))
	for _, s := range e.Vector {
		buf.WriteByte(byte(s.Polarity))
		buf.WriteByte(s.Magnitude)
	}
	writeU16(buf, uint16(len(e.Edges)))
	for _, edge := range e.Edges {
		buf.WriteByte(byte(edge.Type))
		writeU64(buf, uint64(edge.Target.Bank))
		writeU64(buf, uint64(edge.Target.Entry))
		buf.WriteByte(edge.Weight)
		writeU64(buf, edge.CreatedTick)
	}
	writeU64(buf, uint64(e.Origin))
	buf.WriteByte(byte(e.Temperature))
	writeU64(buf, e.CreatedTick)
	writeU64(buf, e.LastAccessedTick)
	writeU32(buf, e.AccessCount)
	buf.WriteByte(e.Confidence)
	if e.DebugTag != "" {
		buf.WriteByte(1)
		writeString16(buf, e.DebugTag)
	} else {
		buf.WriteByte(0)
	}
	writeU32(buf, e.Checksum)
}

// Decode parses data as a *.bank snapshot, verifying the magic, version,
// total size, and content hash before reconstructing entries and the
// reverse-edge map.
func Decode(data []byte) (*bank.DataBank, error) {
	if len(data) < headerSize {
		return nil, dberr.Codec("snapshot shorter than header")
	}
	if string(data[0:4]) != magic {
		return nil, dberr.Codec("bad magic")
	}
	version := byteOrder.Uint16(data[4:6])
	if version != formatVersion {
		return nil, dberr.Codec(fmt.Sprintf("unsupported version %d", version))
	}
	totalSize := byteOrder.Uint32(data[8:12])
	if totalSize < headerSize {
		return nil, dberr.Codec(fmt.Sprintf("total_size %d is smaller than the header", totalSize))
	}
	if int(totalSize) > len(data) {
		return nil, dberr.Codec("snapshot truncated: declared size exceeds actual length")
	}
	data = data[:totalSize]
	expectedHash := byteOrder.Uint64(data[12:20])
	bankId := types.BankId(byteOrder.Uint64(data[20:28]))
	vectorWidth := byteOrder.Uint16(data[28:30])
	entryCount := byteOrder.Uint16(data[30:32])

	actualHash := xxhash.Sum64(data[headerSize:])
	if actualHash != expectedHash {
		return nil, dberr.ChecksumMismatch(expectedHash, actualHash)
	}

	r := &reader{data: data, offset: headerSize}
	name, err := r.readString16()
	if err != nil {
		return nil, err
	}
	persistAfterMutations, err := r.readU32()
	if err != nil {
		return nil, err
	}
	persistAfterTicks, err := r.readU64()
	if err != nil {
		return nil, err
	}
	maxEntries, err := r.readU32()
	if err != nil {
		return nil, err
	}
	dupVectorWidth, err := r.readU16()
	if err != nil {
		return nil, err
	}
	if dupVectorWidth != vectorWidth {
		return nil, dberr.Codec("vector_width mismatch between header and body")
	}
	maxEdgesPerEntry, err := r.readU16()
	if err != nil {
		return nil, err
	}

	config := types.BankConfig{
		VectorWidth:           vectorWidth,
		MaxEntries:            maxEntries,
		MaxEdgesPerEntry:      maxEdgesPerEntry,
		PersistAfterMutations: persistAfterMutations,
		PersistAfterTicks:     persistAfterTicks,
	}
	b := bank.New(bankId, name, config)

	for i := uint16(0); i < entryCount; i++ {
		e, err := decodeEntry(r, int(vectorWidth))
		if err != nil {
			return nil, err
		}
		b.RestoreEntry(e)
	}

	nextSeq, err := r.readU32()
	if err != nil {
		return nil, err
	}
	mutationsSincePersist, err := r.readU32()
	if err != nil {
		return nil, err
	}
	lastPersistTick, err := r.readU64()
	if err != nil {
		return nil, err
	}
	b.SetNextSeq(nextSeq)
	b.SetMutationCounters(mutationsSincePersist, lastPersistTick)
	return b, nil
}

func decodeEntry(r *reader, expectedVectorWidth int) (*entry.BankEntry, error) {
	idRaw, err := r.readU64()
	if err != nil {
		return nil, err
	}
	vecLen, err := r.readU16()
	if err != nil {
		return nil, err
	}
	if int(vecLen) != expectedVectorWidth {
		return nil, dberr.VectorWidthMismatch(expectedVectorWidth, int(vecLen))
	}
	vector := make([]types.Signal, vecLen)
	for i := range vector {
		pol, err := r.readByte()
		if err != nil {
			return nil, err
		}
		mag, err := r.readByte()
		if err != nil {
			return nil, err
		}
		vector[i] = types.Signal{Polarity: int8(pol), Magnitude: mag}
	}

	edgeCount, err := r.readU16()
	if err != nil {
		return nil, err
	}
	edges := make([]types.Edge, edgeCount)
	for i := range edges {
		edgeTypeRaw, err := r.readByte()
		if err != nil {
			return nil, err
		}
		edgeType := types.EdgeType(edgeTypeRaw)
		if !edgeType.Valid() {
			return nil, dberr.Codec(fmt.Sprintf("invalid edge type %d", edgeTypeRaw))
		}
		targetBank, err := r.readU64()
		if err != nil {
			return nil, err
		}
		targetEntry, err := r.readU64()
		if err != nil {
			return nil, err
		}
		weight, err := r.readByte()
		if err != nil {
			return nil, err
		}
		createdTick, err := r.readU64()
		if err != nil {
			return nil, err
		}
		edges[i] = types.Edge{
			Type:        edgeType,
			Target:      types.BankRef{Bank: types.BankId(targetBank), Entry: types.EntryId(targetEntry)},
			Weight:      weight,
			CreatedTick: createdTick,
		}
	}

	originBank, err := r.readU64()
	if err != nil {
		return nil, err
	}
	temperatureRaw, err := r.readByte()
	if err != nil {
		return nil, err
	}
	temperature := types.Temperature(temperatureRaw)
	if !temperature.Valid() {
		return nil, dberr.Codec(fmt.Sprintf("invalid temperature %d", temperatureRaw))
	}
	createdTick, err := r.readU64()
	if err != nil {
		return nil, err
	}
	lastAccessedTick, err := r.readU64()
	if err != nil {
		return nil, err
	}
	accessCount, err := r.readU32()
	if err != nil {
		return nil, err
	}
	confidence, err := r.readByte()
	if err != nil {
		return nil, err
	}
	hasTag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	var tag string
	if hasTag == 1 {
		tag, err = r.readString16()
		if err != nil {
			return nil, err
		}
	}
	checksum, err := r.readU32()
	if err != nil {
		return nil, err
	}

	e := &entry.BankEntry{
		Id:               types.EntryId(idRaw),
		Vector:           vector,
		Edges:            edges,
		Origin:           types.BankId(originBank),
		Temperature:      temperature,
		CreatedTick:      createdTick,
		LastAccessedTick: lastAccessedTick,
		AccessCount:      accessCount,
		Confidence:       confidence,
		DebugTag:         tag,
		Checksum:         checksum,
	}
	return e, nil
}
