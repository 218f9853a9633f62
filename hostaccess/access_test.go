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

package hostaccess

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Blackfall-Labs/databank/cluster"
	"github.com/Blackfall-Labs/databank/dberr"
	"github.com/Blackfall-Labs/databank/fulfiller"
	"github.com/Blackfall-Labs/databank/types"
)

func TestClusterBankAccessRoundTrip(t *testing.T) {
	c := cluster.New()
	c.GetOrCreate(1, "region", types.DefaultBankConfig(2))
	var slots fulfiller.BankSlotMap
	slots.Bind(0, 1)

	access := New(c, &slots)
	access.Advance(3)

	hi, lo, err := access.Write(0, []int32{100, -20})
	require.NoError(t, err)

	loaded, err := access.Load(0, hi, lo)
	require.NoError(t, err)
	require.Equal(t, []int32{100, -20}, loaded)

	count, err := access.Count(0)
	require.NoError(t, err)
	require.Equal(t, int32(1), count)

	require.NoError(t, access.Touch(0, hi, lo))

	results, err := access.Query(0, []int32{100, -20}, 1)
	require.NoError(t, err)
	require.Equal(t, int32(1), results[0])

	deleted, err := access.Delete(0, hi, lo)
	require.NoError(t, err)
	require.True(t, deleted)

	count, err = access.Count(0)
	require.NoError(t, err)
	require.Equal(t, int32(0), count)
}

func TestClusterBankAccessUnboundSlot(t *testing.T) {
	c := cluster.New()
	var slots fulfiller.BankSlotMap
	access := New(c, &slots)

	_, err := access.Count(9)
	require.Error(t, err)
}

func TestClusterBankAccessMissingEntry(t *testing.T) {
	c := cluster.New()
	c.GetOrCreate(1, "region", types.DefaultBankConfig(1))
	var slots fulfiller.BankSlotMap
	slots.Bind(0, 1)
	access := New(c, &slots)

	_, err := access.Load(0, 0, 0)
	require.Error(t, err)
	require.True(t, dberr.Is(err, dberr.KindEntryNotFound))
}
