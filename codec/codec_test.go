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

package codec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Blackfall-Labs/databank/bank"
	"github.com/Blackfall-Labs/databank/dberr"
	"github.com/Blackfall-Labs/databank/types"
)

func vec(values ...int32) []types.Signal {
	out := make([]types.Signal, len(values))
	for i, v := range values {
		out[i] = types.SignalFromValue(v)
	}
	return out
}

func buildSampleBank() *bank.DataBank {
	config := types.DefaultBankConfig(2)
	b := bank.New(types.NewBankId(1700000000, types.FNV1a24("region"), 0), "region", config)
	e1, _ := b.Insert(vec(200, -50), types.Hot, 1)
	e2, _ := b.Insert(vec(10, 10), types.Cool, 1)
	edge := types.Edge{Type: types.SoundsLike, Target: types.BankRef{Bank: 999, Entry: 5}, Weight: 180, CreatedTick: 15}
	_ = b.AddEdge(e1, edge)
	b.Get(e2).Touch(30)
	return b
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := buildSampleBank()
	data, err := Encode(b)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, b.Id, decoded.Id)
	require.Equal(t, b.Name, decoded.Name)
	require.Equal(t, b.Config.VectorWidth, decoded.Config.VectorWidth)
	require.Equal(t, b.EntryCount(), decoded.EntryCount())

	for _, id := range b.SortedEntryIds() {
		want := b.Get(id)
		got := decoded.Get(id)
		require.NotNil(t, got)
		require.Equal(t, want.Vector, got.Vector)
		require.Equal(t, want.Temperature, got.Temperature)
		require.Equal(t, len(want.Edges), len(got.Edges))
		require.Equal(t, want.AccessCount, got.AccessCount)
		require.Equal(t, want.Checksum, got.Checksum)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	data, err := Encode(buildSampleBank())
	require.NoError(t, err)
	data[0] = 'X'
	_, err = Decode(data)
	require.Error(t, err)
	require.True(t, dberr.Is(err, dberr.KindCodec))
}

func TestDecodeChecksumMismatch(t *testing.T) {
	data, err := Encode(buildSampleBank())
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	_, err = Decode(data)
	require.Error(t, err)
	require.True(t, dberr.Is(err, dberr.KindChecksumMismatch))
}

func TestDecodeTruncated(t *testing.T) {
	data, err := Encode(buildSampleBank())
	require.NoError(t, err)
	_, err = Decode(data[:headerSize+2])
	require.Error(t, err)
}

func TestDecodeRejectsTotalSizeSmallerThanHeader(t *testing.T) {
	data, err := Encode(buildSampleBank())
	require.NoError(t, err)
	byteOrder.PutUint32(data[8:12], headerSize-1)
	_, err = Decode(data)
	require.Error(t, err)
}

func TestEncodeDecodeEmptyBank(t *testing.T) {
	config := types.DefaultBankConfig(4)
	b := bank.New(1, "empty", config)
	data, err := Encode(b)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 0, decoded.EntryCount())
}

func TestSaveAtomicAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region.bank")
	b := buildSampleBank()
	require.NoError(t, SaveAtomic(path, b, DefaultStore))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, b.EntryCount(), loaded.EntryCount())

	loadedMapped, err := LoadMapped(path)
	require.NoError(t, err)
	require.Equal(t, b.EntryCount(), loadedMapped.EntryCount())
}

func TestSaveAtomicWithRetrySucceeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "region.bank")
	b := buildSampleBank()
	require.NoError(t, SaveAtomicWithRetry(context.Background(), path, b))
	_, err := Load(path)
	require.NoError(t, err)
}
