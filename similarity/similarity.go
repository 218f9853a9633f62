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

// Package similarity implements the integer-only sparse cosine kernel used
// for pattern-completion recall, and the single shared isqrt used by both
// the kernel and cluster query normalization.
package similarity

import (
	"math/bits"

	"github.com/Blackfall-Labs/databank/types"
)

const maxInt32 = 1<<31 - 1
const minInt32 = -(1 << 31)

// SparseCosine scores query against stored using sparse integer cosine
// similarity: inactive query positions do not participate in the dot
// product or either norm. Result is in roughly [-256, 256], clipped to the
// int32 range.
func SparseCosine(query, stored []types.Signal) int32 {
	l := len(query)
	if len(stored) < l {
		l = len(stored)
	}
	var dot, qnorm, snorm int64
	for i := 0; i < l; i++ {
		if query[i].Inactive() {
			continue
		}
		q := int64(query[i].Value())
		s := int64(stored[i].Value())
		dot += q * s
		qnorm += q * q
		snorm += s * s
	}
	if dot == 0 {
		return 0
	}
	denom := Isqrt(uint64(qnorm) * uint64(snorm))
	if denom == 0 {
		return 0
	}
	result := (dot * 256) / int64(denom)
	if result > maxInt32 {
		return maxInt32
	}
	if result < minInt32 {
		return minInt32
	}
	return int32(result)
}

// Isqrt returns floor(sqrt(n)) using Newton's method from an overestimate,
// at most 8 iterations. This is the one and only integer square root
// implementation in the module; both the similarity kernel and cluster
// query normalization call it.
func Isqrt(n uint64) uint64 {
	if n < 2 {
		return n
	}
	bitLen := bits.Len64(n)
	x := uint64(1) << uint((bitLen+2)/2)
	for i := 0; i < 8; i++ {
		if x == 0 {
			break
		}
		next := (x + n/x) / 2
		if next >= x {
			break
		}
		x = next
	}
	for x > 0 && x*x > n {
		x--
	}
	for (x+1)*(x+1) <= n {
		x++
	}
	return x
}
