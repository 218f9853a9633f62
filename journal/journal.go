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

// Package journal implements the append-only delta log: eight
// self-describing, CRC-32-framed record kinds and a crash-tolerant replay
// reader that stops at the first corrupt or truncated record.
package journal

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"

	"github.com/Blackfall-Labs/databank/dberr"
	"github.com/Blackfall-Labs/databank/types"
)

// Tag identifies a journal record kind.
type Tag uint8

const (
	TagInsert Tag = iota
	TagRemove
	TagTouch
	TagAddEdge
	TagSetTemperature
	TagPromote
	TagDemote
	TagBatchEvict
)

var byteOrder = binary.LittleEndian

// Record is one decoded journal entry. Exactly one of the typed fields is
// populated, selected by Tag.
type Record struct {
	Tag Tag

	Bank  types.BankId
	Entry types.EntryId
	Tick  uint64

	// Insert
	Temperature types.Temperature
	Vector      []types.Signal

	// AddEdge
	Edge types.Edge

	// SetTemperature / Promote / Demote
	NewTemperature types.Temperature

	// BatchEvict
	Victims []types.EntryId
}

func crc(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// encode serializes r as its leading tag byte and body, followed by a
// trailing CRC-32 over [tag, body).
func encode(r Record) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(r.Tag))
	switch r.Tag {
	case TagInsert:
		writeU64(&buf, uint64(r.Bank))
		writeU64(&buf, uint64(r.Entry))
		writeU64(&buf, r.Tick)
		buf.WriteByte(byte(r.Temperature))
		writeU16(&buf, uint16(len(r.Vector)))
		for _, s := range r.Vector {
			buf.WriteByte(byte(s.Polarity))
			buf.WriteByte(s.Magnitude)
		}
	case TagRemove:
		writeU64(&buf, uint64(r.Bank))
		writeU64(&buf, uint64(r.Entry))
	case TagTouch:
		writeU64(&buf, uint64(r.Bank))
		writeU64(&buf, uint64(r.Entry))
		writeU64(&buf, r.Tick)
	case TagAddEdge:
		writeU64(&buf, uint64(r.Bank))
		writeU64(&buf, uint64(r.Entry))
		buf.WriteByte(byte(r.Edge.Type))
		writeU64(&buf, uint64(r.Edge.Target.Bank))
		writeU64(&buf, uint64(r.Edge.Target.Entry))
		buf.WriteByte(r.Edge.Weight)
		writeU64(&buf, r.Edge.CreatedTick)
	case TagSetTemperature, TagPromote, TagDemote:
		writeU64(&buf, uint64(r.Bank))
		writeU64(&buf, uint64(r.Entry))
		buf.WriteByte(byte(r.NewTemperature))
	case TagBatchEvict:
		writeU64(&buf, uint64(r.Bank))
		writeU16(&buf, uint16(len(r.Victims)))
		for _, id := range r.Victims {
			writeU64(&buf, uint64(id))
		}
	}
	sum := crc(buf.Bytes())
	var crcBytes [4]byte
	byteOrder.PutUint32(crcBytes[:], sum)
	buf.Write(crcBytes[:])
	return buf.Bytes()
}

// decodeOne decodes a single record starting at data[0], returning the
// record, the number of bytes consumed, and an error if the record is
// truncated, has an unknown tag, or fails its CRC check.
func decodeOne(data []byte) (Record, int, error) {
	if len(data) < 1 {
		return Record{}, 0, dberr.Codec("journal: truncated (no tag byte)")
	}
	r := &reader{data: data, offset: 1}
	tag := Tag(data[0])
	var rec Record
	rec.Tag = tag

	switch tag {
	case TagInsert:
		bank, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		entryID, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		tick, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		temp, err := r.readByte()
		if err != nil {
			return Record{}, 0, err
		}
		vecLen, err := r.readU16()
		if err != nil {
			return Record{}, 0, err
		}
		vector := make([]types.Signal, vecLen)
		for i := range vector {
			pol, err := r.readByte()
			if err != nil {
				return Record{}, 0, err
			}
			mag, err := r.readByte()
			if err != nil {
				return Record{}, 0, err
			}
			vector[i] = types.Signal{Polarity: int8(pol), Magnitude: mag}
		}
		if !types.Temperature(temp).Valid() {
			return Record{}, 0, dberr.Codec("journal: invalid temperature")
		}
		rec.Bank = types.BankId(bank)
		rec.Entry = types.EntryId(entryID)
		rec.Tick = tick
		rec.Temperature = types.Temperature(temp)
		rec.Vector = vector
	case TagRemove:
		bank, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		entryID, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		rec.Bank = types.BankId(bank)
		rec.Entry = types.EntryId(entryID)
	case TagTouch:
		bank, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		entryID, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		tick, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		rec.Bank = types.BankId(bank)
		rec.Entry = types.EntryId(entryID)
		rec.Tick = tick
	case TagAddEdge:
		bank, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		entryID, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		edgeType, err := r.readByte()
		if err != nil {
			return Record{}, 0, err
		}
		if !types.EdgeType(edgeType).Valid() {
			return Record{}, 0, dberr.Codec("journal: invalid edge type")
		}
		targetBank, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		targetEntry, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		weight, err := r.readByte()
		if err != nil {
			return Record{}, 0, err
		}
		createdTick, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		rec.Bank = types.BankId(bank)
		rec.Entry = types.EntryId(entryID)
		rec.Edge = types.Edge{
			Type:        types.EdgeType(edgeType),
			Target:      types.BankRef{Bank: types.BankId(targetBank), Entry: types.EntryId(targetEntry)},
			Weight:      weight,
			CreatedTick: createdTick,
		}
	case TagSetTemperature, TagPromote, TagDemote:
		bank, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		entryID, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		temp, err := r.readByte()
		if err != nil {
			return Record{}, 0, err
		}
		if !types.Temperature(temp).Valid() {
			return Record{}, 0, dberr.Codec("journal: invalid temperature")
		}
		rec.Bank = types.BankId(bank)
		rec.Entry = types.EntryId(entryID)
		rec.NewTemperature = types.Temperature(temp)
	case TagBatchEvict:
		bank, err := r.readU64()
		if err != nil {
			return Record{}, 0, err
		}
		count, err := r.readU16()
		if err != nil {
			return Record{}, 0, err
		}
		victims := make([]types.EntryId, count)
		for i := range victims {
			id, err := r.readU64()
			if err != nil {
				return Record{}, 0, err
			}
			victims[i] = types.EntryId(id)
		}
		rec.Bank = types.BankId(bank)
		rec.Victims = victims
	default:
		return Record{}, 0, dberr.Codec("journal: unknown record tag")
	}

	if err := r.need(4); err != nil {
		return Record{}, 0, err
	}
	storedCRC := byteOrder.Uint32(data[r.offset : r.offset+4])
	bodyEnd := r.offset
	r.offset += 4
	if crc(data[0:bodyEnd]) != storedCRC {
		return Record{}, 0, dberr.Codec("journal: CRC mismatch")
	}
	return rec, r.offset, nil
}

// ReadAll decodes every well-formed record from data in order, stopping
// (without error) at the first truncated or corrupt record — a crash is
// expected to land mid-write on the final record only.
func ReadAll(data []byte) []Record {
	var out []Record
	offset := 0
	for offset < len(data) {
		rec, consumed, err := decodeOne(data[offset:])
		if err != nil {
			break
		}
		out = append(out, rec)
		offset += consumed
	}
	return out
}

// ReadAllFile reads path and decodes every well-formed record in it.
func ReadAllFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, dberr.Io("read "+path, err)
	}
	return ReadAll(data), nil
}

// Truncate overwrites path with zero bytes, discarding all records.
func Truncate(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return dberr.Io("truncate "+path, err)
	}
	return f.Close()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	byteOrder.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	byteOrder.PutUint64(b[:], v)
	buf.Write(b[:])
}

type reader struct {
	data   []byte
	offset int
}

func (r *reader) need(n int) error {
	if r.offset+n > len(r.data) {
		return dberr.Codec("journal: unexpected end of record")
	}
	return nil
}

func (r *reader) readByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.offset]
	r.offset++
	return b, nil
}

func (r *reader) readU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := byteOrder.Uint16(r.data[r.offset : r.offset+2])
	r.offset += 2
	return v, nil
}

func (r *reader) readU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := byteOrder.Uint64(r.data[r.offset : r.offset+8])
	r.offset += 8
	return v, nil
}
