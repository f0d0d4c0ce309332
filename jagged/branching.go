// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package jagged

import (
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/consensys/polyiop/poly"
)

// The jagged indicator for one column with prefix bounds (t, u) is the
// Boolean function
//
//	ind(row, index) = 1  iff  t + row == index  and  index < u.
//
// Its multilinear extension is evaluated by a layered branching program
// reading one bit of (row, index, t, u) per layer, least significant first.
// The program's memory is two bits, packed as state = carry + 2*comparison:
// carry of the running addition t + row, and whether index < u holds on the
// bits read so far. The accepting state after all layers is carry = 0,
// comparison = 1.
//
// evalIndicator runs the layers backward, from the most significant bit,
// carrying the accepting vector over the 4 states; the result is the entry
// of the initial state (carry = 0, comparison = 0).

// eqWeight returns x if bit is set and 1-x otherwise.
func eqWeight(x *extensions.E4, bit int) extensions.E4 {
	if bit == 1 {
		return *x
	}
	var one extensions.E4
	one.SetOne()
	one.Sub(&one, x)
	return one
}

// evalIndicator evaluates the multilinear extension of the jagged indicator
// at (zRow, zTrace, t, u). t and u must have the same dimension nb, with
// nb >= zTrace.Dimension() >= zRow.Dimension(); bit positions beyond a
// point's dimension are fixed to zero.
func evalIndicator(zRow, zTrace, t, u poly.Point) extensions.E4 {
	nb := t.Dimension()
	n := zTrace.Dimension()
	m := zRow.Dimension()

	var v [4]extensions.E4
	v[2].SetOne()

	var one extensions.E4
	one.SetOne()

	for b := nb - 1; b >= 0; b-- {
		tw := [2]extensions.E4{eqWeight(&t[nb-1-b], 0), eqWeight(&t[nb-1-b], 1)}
		uw := [2]extensions.E4{eqWeight(&u[nb-1-b], 0), eqWeight(&u[nb-1-b], 1)}

		var iw, rw [2]extensions.E4
		if b < n {
			iw = [2]extensions.E4{eqWeight(&zTrace[n-1-b], 0), eqWeight(&zTrace[n-1-b], 1)}
		} else {
			iw[0] = one
		}
		if b < m {
			rw = [2]extensions.E4{eqWeight(&zRow[m-1-b], 0), eqWeight(&zRow[m-1-b], 1)}
		} else {
			rw[0] = one
		}

		var next [4]extensions.E4
		for rb := 0; rb < 2; rb++ {
			if b >= m && rb == 1 {
				continue
			}
			for ib := 0; ib < 2; ib++ {
				if b >= n && ib == 1 {
					continue
				}
				for tb := 0; tb < 2; tb++ {
					for ub := 0; ub < 2; ub++ {
						var w extensions.E4
						w.Mul(&rw[rb], &iw[ib])
						w.Mul(&w, &tw[tb])
						w.Mul(&w, &uw[ub])

						for s := 0; s < 4; s++ {
							carry := s & 1
							cmp := s >> 1

							sum := tb + rb + carry
							if sum&1 != ib {
								continue
							}
							nextCmp := cmp
							if ib != ub {
								nextCmp = ub
							}
							out := (sum >> 1) + 2*nextCmp

							var c extensions.E4
							c.Mul(&w, &v[out])
							next[s].Add(&next[s], &c)
						}
					}
				}
			}
		}
		v = next
	}
	return v[0]
}

// evalGreaterEqual evaluates the multilinear extension of [x >= y] at two
// points of equal dimension, most significant coordinate first. Bits are
// consumed least significant first so that the most significant differing
// bit decides.
func evalGreaterEqual(x, y poly.Point) extensions.E4 {
	var g, one extensions.E4
	g.SetOne()
	one.SetOne()
	for i := x.Dimension() - 1; i >= 0; i-- {
		// g' = x_i*(1-y_i) + (x_i*y_i + (1-x_i)*(1-y_i))*g
		var gt, eq, t extensions.E4
		t.Sub(&one, &y[i])
		gt.Mul(&x[i], &t)

		eq.Mul(&x[i], &y[i])
		t.Sub(&one, &x[i])
		var t2 extensions.E4
		t2.Sub(&one, &y[i])
		t.Mul(&t, &t2)
		eq.Add(&eq, &t)

		eq.Mul(&eq, &g)
		g.Add(&gt, &eq)
	}
	return g
}
