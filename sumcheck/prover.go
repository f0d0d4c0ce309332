// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package sumcheck

import (
	"fmt"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/poly"
)

// ProveProduct generates an honest sumcheck proof for the claim
//
//	sum_{x in {0,1}^n} f(x)*g(x)
//
// where f and g are multilinear polynomials given by their hypercube
// evaluations (index 0 most significant, as in poly.EqTable). It mirrors
// Verify's transcript schedule exactly. Proving is otherwise out of the
// scope of this module; this reference prover exists so that completeness
// can be tested.
func ProveProduct(f, g []extensions.E4, ch fiatshamir.Challenger) (*Proof, error) {
	n := len(f)
	if n == 0 || n&(n-1) != 0 || len(g) != n {
		return nil, fmt.Errorf("sumcheck: tables must have equal power-of-two lengths")
	}
	numVars := 0
	for 1<<numVars < n {
		numVars++
	}

	var claimedSum, t extensions.E4
	for i := range f {
		t.Mul(&f[i], &g[i])
		claimedSum.Add(&claimedSum, &t)
	}

	a := append([]extensions.E4(nil), f...)
	b := append([]extensions.E4(nil), g...)

	var zero, one, two extensions.E4
	one.SetOne()
	two.B0.A0.SetUint64(2)
	xs := []extensions.E4{zero, one, two}

	proof := &Proof{
		RoundPolynomials: make([]poly.UnivariatePolynomial, 0, numVars),
		ClaimedSum:       claimedSum,
		Point:            make(poly.Point, 0, numVars),
	}

	for r := 0; r < numVars; r++ {
		half := len(a) / 2

		// evaluations of the round message at t = 0, 1, 2, folding the most
		// significant remaining variable
		var e0, e1, e2, ta, tb extensions.E4
		for j := 0; j < half; j++ {
			t.Mul(&a[j], &b[j])
			e0.Add(&e0, &t)

			t.Mul(&a[j+half], &b[j+half])
			e1.Add(&e1, &t)

			ta.Double(&a[j+half])
			ta.Sub(&ta, &a[j])
			tb.Double(&b[j+half])
			tb.Sub(&tb, &b[j])
			t.Mul(&ta, &tb)
			e2.Add(&e2, &t)
		}

		msg, err := poly.Interpolate(xs, []extensions.E4{e0, e1, e2})
		if err != nil {
			return nil, err
		}
		proof.RoundPolynomials = append(proof.RoundPolynomials, msg)
		observePolynomial(ch, msg)

		challenge := ch.SampleExt()
		proof.Point = append(proof.Point, challenge)

		// fold both tables at the challenge
		for j := 0; j < half; j++ {
			ta.Sub(&a[j+half], &a[j])
			ta.Mul(&ta, &challenge)
			a[j].Add(&a[j], &ta)

			tb.Sub(&b[j+half], &b[j])
			tb.Mul(&tb, &challenge)
			b[j].Add(&b[j], &tb)
		}
		a = a[:half]
		b = b[:half]
	}

	proof.Eval.Mul(&a[0], &b[0])
	return proof, nil
}
