// Copyright 2017 The go-ethereum Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
// Copyright 2026 The Databank Authors
// (further modifications)
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

// Package mathutil holds the small integer-math helpers shared across the
// codec and CLI packages — overflow-checked arithmetic and the
// hex-or-decimal parsing used for operator-facing flags.
package mathutil

import (
	"fmt"
	"math/bits"
	"strconv"
)

// MaxUint32 is the largest value codec's total_size header field can hold.
const MaxUint32 = 1<<32 - 1

// ParseUint64 parses s as an integer in decimal or hexadecimal syntax
// (a leading "0x"/"0X" selects hex). Leading zeros are accepted; the empty
// string parses as zero. Used by the cmd/databankctl inspect --start-entry
// flag, which accepts an EntryId in either form.
func ParseUint64(s string) (uint64, bool) {
	if s == "" {
		return 0, true
	}
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

// MustParseUint64 parses s and panics on an invalid value; used only at
// flag-binding time, never on data read from disk.
func MustParseUint64(s string) uint64 {
	v, ok := ParseUint64(s)
	if !ok {
		panic("invalid unsigned 64 bit integer: " + s)
	}
	return v
}

// SafeAdd returns x+y and whether the addition overflowed 64 bits.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}

// FormatHexOrDecimal renders v as "0x...", the form cmd/databankctl inspect
// uses for BankId/EntryId fields so they read the same whether typed back
// in as a --start-entry flag or printed in a report.
func FormatHexOrDecimal(v uint64) string {
	return fmt.Sprintf("%#x", v)
}
