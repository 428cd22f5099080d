// Copyright 2024 The kvcore Authors
// This file is part of kvcore.
//
// kvcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// kvcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with kvcore. If not, see <http://www.gnu.org/licenses/>.

// Package mathutil holds small bounds-checked integer helpers: power-of-two
// sizing for hashmap table growth and overflow-checked arithmetic.
package mathutil

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= n, with a floor of 4.
// Used by hashmap to pick table size.
func NextPowerOfTwo(n uint64) uint64 {
	if n < 4 {
		return 4
	}
	if n&(n-1) == 0 {
		return n
	}
	return uint64(1) << bits.Len64(n)
}

// SafeAdd returns x+y and whether the addition overflowed uint64.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum := x + y
	return sum, sum < x
}

// SafeMul returns x*y and whether the multiplication overflowed uint64.
func SafeMul(x, y uint64) (uint64, bool) {
	hi, lo := bits.Mul64(x, y)
	return lo, hi != 0
}

// AbsDiff returns the absolute difference of two uint64 values.
func AbsDiff(x, y uint64) uint64 {
	if x > y {
		return x - y
	}
	return y - x
}
