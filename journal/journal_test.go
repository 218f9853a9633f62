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

package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Blackfall-Labs/databank/types"
)

func TestRecordRoundTrip(t *testing.T) {
	cases := []Record{
		{Tag: TagInsert, Bank: 1, Entry: 2, Tick: 3, Temperature: types.Warm, Vector: []types.Signal{{Polarity: 1, Magnitude: 10}}},
		{Tag: TagRemove, Bank: 1, Entry: 2},
		{Tag: TagTouch, Bank: 1, Entry: 2, Tick: 9},
		{Tag: TagAddEdge, Bank: 1, Entry: 2, Edge: types.Edge{Type: types.SimilarTo, Target: types.BankRef{Bank: 5, Entry: 6}, Weight: 7, CreatedTick: 8}},
		{Tag: TagSetTemperature, Bank: 1, Entry: 2, NewTemperature: types.Cold},
		{Tag: TagPromote, Bank: 1, Entry: 2, NewTemperature: types.Hot},
		{Tag: TagDemote, Bank: 1, Entry: 2, NewTemperature: types.Cool},
		{Tag: TagBatchEvict, Bank: 1, Victims: []types.EntryId{2, 3, 4}},
	}
	for _, rec := range cases {
		encoded := encode(rec)
		decoded, consumed, err := decodeOne(encoded)
		require.NoError(t, err)
		require.Equal(t, len(encoded), consumed)
		require.Equal(t, rec, decoded)
	}
}

func TestReadAllStopsAtCorruptTrailingRecord(t *testing.T) {
	var data []byte
	data = append(data, encode(Record{Tag: TagRemove, Bank: 1, Entry: 1})...)
	data = append(data, encode(Record{Tag: TagTouch, Bank: 1, Entry: 1, Tick: 5})...)
	data = append(data, encode(Record{Tag: TagSetTemperature, Bank: 1, Entry: 1, NewTemperature: types.Cold})...)

	records := ReadAll(data)
	require.Len(t, records, 3)

	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)-1] ^= 0xFF
	records = ReadAll(corrupted)
	require.Len(t, records, 2)
}

func TestReadAllFileAndTruncate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "databank.journal")
	w, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, w.AppendRemove(1, 1))
	require.NoError(t, w.AppendTouch(1, 1, 5))
	require.NoError(t, w.AppendSetTemperature(1, 1, types.Cold))
	require.NoError(t, w.Close())

	records, err := ReadAllFile(path)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.NoError(t, Truncate(path))
	records, err = ReadAllFile(path)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestUnknownTagIsCorruption(t *testing.T) {
	data := []byte{250}
	_, _, err := decodeOne(data)
	require.Error(t, err)
}
