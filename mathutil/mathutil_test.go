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

package mathutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint64DecimalAndHex(t *testing.T) {
	v, ok := ParseUint64("42")
	require.True(t, ok)
	require.Equal(t, uint64(42), v)

	v, ok = ParseUint64("0x2a")
	require.True(t, ok)
	require.Equal(t, uint64(42), v)

	v, ok = ParseUint64("")
	require.True(t, ok)
	require.Equal(t, uint64(0), v)

	_, ok = ParseUint64("not-a-number")
	require.False(t, ok)
}

func TestMustParseUint64Panics(t *testing.T) {
	require.Panics(t, func() { MustParseUint64("nope") })
}

func TestSafeAddOverflow(t *testing.T) {
	sum, overflow := SafeAdd(10, 20)
	require.False(t, overflow)
	require.Equal(t, uint64(30), sum)

	_, overflow = SafeAdd(^uint64(0), 1)
	require.True(t, overflow)
}

func TestFormatHexOrDecimal(t *testing.T) {
	require.Equal(t, "0x2a", FormatHexOrDecimal(42))
}
