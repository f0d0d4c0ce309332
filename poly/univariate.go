// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package poly implements the polynomial kernel shared by the protocol
// verifiers: small univariate polynomials in coefficient form, and
// multilinear polynomials over the Boolean hypercube.
package poly

import (
	"errors"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
)

var (
	// ErrInterpolationMismatch is returned when the abscissa and ordinate
	// slices have different lengths or are empty.
	ErrInterpolationMismatch = errors.New("interpolation: len(xs) != len(ys) or empty input")

	// ErrDuplicateAbscissa is returned when two interpolation abscissae coincide.
	ErrDuplicateAbscissa = errors.New("interpolation: duplicate abscissa")
)

// UnivariatePolynomial is a univariate polynomial over the extension field,
// stored as a coefficient vector, lowest degree first. The degree is
// len(p)-1 unless the polynomial has trailing zero coefficients.
type UnivariatePolynomial []extensions.E4

// Degree returns len(p)-1, the degree bound of p.
func (p UnivariatePolynomial) Degree() int {
	return len(p) - 1
}

// EvalAt evaluates p at x using Horner's rule.
func (p UnivariatePolynomial) EvalAt(x *extensions.E4) extensions.E4 {
	var res extensions.E4
	if len(p) == 0 {
		return res
	}
	res = p[len(p)-1]
	for i := len(p) - 2; i >= 0; i-- {
		res.Mul(&res, x)
		res.Add(&res, &p[i])
	}
	return res
}

// SumOverHypercube returns p(0) + p(1).
func (p UnivariatePolynomial) SumOverHypercube() extensions.E4 {
	var res extensions.E4
	if len(p) == 0 {
		return res
	}
	for i := range p {
		res.Add(&res, &p[i])
	}
	res.Add(&res, &p[0])
	return res
}

// Clone returns a deep copy of p.
func (p UnivariatePolynomial) Clone() UnivariatePolynomial {
	q := make(UnivariatePolynomial, len(p))
	copy(q, p)
	return q
}

// Interpolate returns the unique polynomial of degree < len(xs) such that
// p(xs[i]) == ys[i] for all i, via Lagrange interpolation.
func Interpolate(xs, ys []extensions.E4) (UnivariatePolynomial, error) {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return nil, ErrInterpolationMismatch
	}

	// master polynomial M(X) = prod_j (X - xs[j])
	master := make([]extensions.E4, n+1)
	master[0].SetOne()
	for j := 0; j < n; j++ {
		var t, zero extensions.E4
		for k := j + 1; k >= 1; k-- {
			t.Mul(&master[k], &xs[j])
			master[k].Sub(&master[k-1], &t)
		}
		t.Mul(&master[0], &xs[j])
		master[0].Sub(&zero, &t)
	}

	res := make(UnivariatePolynomial, n)
	quot := make(UnivariatePolynomial, n)
	for i := 0; i < n; i++ {
		// quot = M / (X - xs[i]) by synthetic division
		quot[n-1] = master[n]
		for k := n - 2; k >= 0; k-- {
			var t extensions.E4
			t.Mul(&quot[k+1], &xs[i])
			quot[k].Add(&master[k+1], &t)
		}

		// the i-th Lagrange denominator prod_{j != i} (xs[i]-xs[j]) is quot(xs[i])
		denom := quot.EvalAt(&xs[i])
		if denom.IsZero() {
			return nil, ErrDuplicateAbscissa
		}
		var scale extensions.E4
		scale.Inverse(&denom)
		scale.Mul(&scale, &ys[i])

		for k := 0; k < n; k++ {
			var t extensions.E4
			t.Mul(&quot[k], &scale)
			res[k].Add(&res[k], &t)
		}
	}

	return res, nil
}
