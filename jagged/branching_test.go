// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package jagged

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"github.com/stretchr/testify/require"

	"github.com/consensys/polyiop/poly"
)

func randomPoint(n int) poly.Point {
	p := make(poly.Point, n)
	for i := range p {
		p[i].MustSetRandom()
	}
	return p
}

// indicatorBruteForce sums the indicator over all Boolean (row, index)
// assignments, weighted by the equality polynomials.
func indicatorBruteForce(zRow, zTrace poly.Point, t, u uint64) extensions.E4 {
	m := zRow.Dimension()
	n := zTrace.Dimension()

	var res extensions.E4
	for row := uint64(0); row < 1<<uint(m); row++ {
		for index := uint64(0); index < 1<<uint(n); index++ {
			if t+row != index || index >= u {
				continue
			}
			eqRow := poly.EqBits(zRow, row)
			eqIdx := poly.EqBits(zTrace, index)
			var w extensions.E4
			w.Mul(&eqRow, &eqIdx)
			res.Add(&res, &w)
		}
	}
	return res
}

func TestIndicatorMatchesBruteForce(t *testing.T) {
	cases := []struct {
		m, n, nb int
		t, u     uint64
	}{
		{2, 3, 4, 0, 4},
		{2, 3, 4, 3, 7},
		{2, 3, 4, 5, 5},   // empty column
		{2, 3, 4, 6, 8},   // u == 2^n needs the extra bit
		{3, 4, 5, 9, 13},
		{3, 4, 5, 0, 16},
		{1, 2, 3, 1, 3},
		{4, 4, 5, 2, 14},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("m=%d/n=%d/t=%d/u=%d", tc.m, tc.n, tc.t, tc.u), func(t *testing.T) {
			zRow := randomPoint(tc.m)
			zTrace := randomPoint(tc.n)
			tp := boolPoint(tc.t, tc.nb)
			up := boolPoint(tc.u, tc.nb)

			got := evalIndicator(zRow, zTrace, tp, up)
			want := indicatorBruteForce(zRow, zTrace, tc.t, tc.u)
			require.True(t, got.Equal(&want))
		})
	}
}

func TestIndicatorOnBooleanInputs(t *testing.T) {
	// at Boolean points the extension collapses to the raw indicator
	const m, n, nb = 2, 3, 4
	const tval, uval = 2, 6

	tp := boolPoint(tval, nb)
	up := boolPoint(uval, nb)

	var one extensions.E4
	one.SetOne()

	for row := uint64(0); row < 1<<m; row++ {
		for index := uint64(0); index < 1<<n; index++ {
			got := evalIndicator(boolPoint(row, m), boolPoint(index, n), tp, up)
			expectOne := tval+row == index && index < uval
			if expectOne {
				require.True(t, got.Equal(&one), "row=%d index=%d", row, index)
			} else {
				require.True(t, got.IsZero(), "row=%d index=%d", row, index)
			}
		}
	}
}

func TestGreaterEqualMostSignificantBitDecides(t *testing.T) {
	// pairs whose most and least significant differing bits disagree; the
	// comparison must follow the most significant one
	cases := []struct {
		x, y uint64
		nb   int
		ge   bool
	}{
		{2, 1, 2, true},
		{1, 2, 2, false},
		{8, 4, 4, true},
		{4, 8, 4, false},
		{0b1011, 0b0111, 4, true},
		{0b0111, 0b1011, 4, false},
	}
	var one extensions.E4
	one.SetOne()
	for _, tc := range cases {
		got := evalGreaterEqual(boolPoint(tc.x, tc.nb), boolPoint(tc.y, tc.nb))
		if tc.ge {
			require.True(t, got.Equal(&one), "x=%d y=%d", tc.x, tc.y)
		} else {
			require.True(t, got.IsZero(), "x=%d y=%d", tc.x, tc.y)
		}
	}
}

func TestGreaterEqualOnBooleanInputs(t *testing.T) {
	const nb = 4
	var one extensions.E4
	one.SetOne()

	for x := uint64(0); x < 1<<nb; x++ {
		for y := uint64(0); y < 1<<nb; y++ {
			got := evalGreaterEqual(boolPoint(x, nb), boolPoint(y, nb))
			if x >= y {
				require.True(t, got.Equal(&one), "x=%d y=%d", x, y)
			} else {
				require.True(t, got.IsZero(), "x=%d y=%d", x, y)
			}
		}
	}
}
