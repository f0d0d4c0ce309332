// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package utils

import "math/bits"

// BitReverse returns v with its n least significant bits reversed.
func BitReverse(v uint64, n int) uint64 {
	return bits.Reverse64(v) >> (64 - uint(n))
}

// Log2Ceil returns the smallest k such that 2^k >= n. n must be positive.
func Log2Ceil(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Log2Strict returns k such that n == 2^k, or -1 if n is not a power of two.
func Log2Strict(n int) int {
	if n <= 0 || n&(n-1) != 0 {
		return -1
	}
	return bits.TrailingZeros(uint(n))
}
