// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package poly

import (
	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
)

// Point is an ordered sequence of extension-field elements, the coordinates
// of a multilinear evaluation point. Index 0 is the most significant
// coordinate: for a Boolean point, p[0] is the top bit of the hypercube
// index.
type Point []extensions.E4

// Dimension returns the number of coordinates.
func (p Point) Dimension() int {
	return len(p)
}

// Split returns (p[:k], p[k:]). The two halves alias p.
func (p Point) Split(k int) (Point, Point) {
	return p[:k], p[k:]
}

// Reverse returns a new point with the coordinates in reverse order.
func (p Point) Reverse() Point {
	q := make(Point, len(p))
	for i := range p {
		q[len(p)-1-i] = p[i]
	}
	return q
}

// Clone returns a deep copy of p.
func (p Point) Clone() Point {
	q := make(Point, len(p))
	copy(q, p)
	return q
}

// Equal reports whether p and q have the same dimension and coordinates.
func (p Point) Equal(q Point) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !p[i].Equal(&q[i]) {
			return false
		}
	}
	return true
}

// EqTable expands the equality polynomial eq(p, .) over the full hypercube:
// the returned slice has 2^n entries and entry j is eq(p, bits(j)), with
// p[0] matching the most significant bit of j.
func EqTable(p Point) []extensions.E4 {
	eqs := make([]extensions.E4, 1<<len(p))
	eqs[0].SetOne()
	for i := range p {
		prevSize := 1 << i
		var oneMinus extensions.E4
		oneMinus.SetOne()
		oneMinus.Sub(&oneMinus, &p[i])
		for j := prevSize - 1; j >= 0; j-- {
			eqs[2*j+1].Mul(&p[i], &eqs[j])
			eqs[2*j].Mul(&oneMinus, &eqs[j])
		}
	}
	return eqs
}

// EvalMultilinear evaluates at p the multilinear polynomial given by its
// evaluations over the hypercube. Missing trailing evaluations are treated
// as zero, so len(evals) may be smaller than 2^n. It panics if len(evals)
// exceeds 2^n.
func EvalMultilinear(evals []extensions.E4, p Point) extensions.E4 {
	if len(evals) > 1<<len(p) {
		panic("poly: evaluation table larger than hypercube")
	}
	eqs := EqTable(p)
	var res, t extensions.E4
	for j := range evals {
		t.Mul(&eqs[j], &evals[j])
		res.Add(&res, &t)
	}
	return res
}

// EvalCoefficients evaluates at p the multilinear polynomial given by its
// monomial coefficients: coefficient k multiplies the monomial whose
// variables are the set bits of k, with p[0] matching the most significant
// bit. len(coeffs) must be 2^n.
func EvalCoefficients(coeffs []fr.Element, p Point) extensions.E4 {
	if len(coeffs) != 1<<len(p) {
		panic("poly: coefficient count does not match dimension")
	}
	buf := make([]extensions.E4, len(coeffs))
	for i := range coeffs {
		buf[i].B0.A0 = coeffs[i]
	}
	return EvalCoefficientsExt(buf, p)
}

// EvalCoefficientsExt is EvalCoefficients for extension-field coefficients.
// It clobbers coeffs.
func EvalCoefficientsExt(coeffs []extensions.E4, p Point) extensions.E4 {
	if len(coeffs) != 1<<len(p) {
		panic("poly: coefficient count does not match dimension")
	}
	// fold the most significant variable first:
	// f = lo(rest) + p[0]*hi(rest)
	for i := 0; i < len(p); i++ {
		half := len(coeffs) / 2
		var t extensions.E4
		for j := 0; j < half; j++ {
			t.Mul(&p[i], &coeffs[j+half])
			coeffs[j].Add(&coeffs[j], &t)
		}
		coeffs = coeffs[:half]
	}
	return coeffs[0]
}

// CoefficientsFromEvaluations converts, in place, the hypercube evaluations
// of a multilinear polynomial into its monomial coefficients (the inverse of
// evaluating over the hypercube). len(v) must be a power of two.
func CoefficientsFromEvaluations(v []fr.Element) {
	for step := 1; step < len(v); step <<= 1 {
		for j := 0; j < len(v); j += 2 * step {
			for i := j; i < j+step; i++ {
				v[i+step].Sub(&v[i+step], &v[i])
			}
		}
	}
}

// EqBits returns eq(p, bits(index)): the product over coordinates of p[i]
// when the matching bit of index is set and 1-p[i] otherwise. p[0] matches
// bit n-1 of index.
func EqBits(p Point, index uint64) extensions.E4 {
	var res, one extensions.E4
	res.SetOne()
	one.SetOne()
	n := len(p)
	for i := 0; i < n; i++ {
		if (index>>(n-1-i))&1 == 1 {
			res.Mul(&res, &p[i])
		} else {
			var t extensions.E4
			t.Sub(&one, &p[i])
			res.Mul(&res, &t)
		}
	}
	return res
}
