// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package sumcheck

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"github.com/stretchr/testify/require"

	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/poly"
)

func randomTable(n int) []extensions.E4 {
	table := make([]extensions.E4, 1<<n)
	for i := range table {
		table[i].MustSetRandom()
	}
	return table
}

func proveRandomProduct(t *testing.T, numVars int) (*Proof, []extensions.E4, []extensions.E4) {
	t.Helper()
	f := randomTable(numVars)
	g := randomTable(numVars)
	proof, err := ProveProduct(f, g, fiatshamir.NewChallenger("sumcheck-test"))
	require.NoError(t, err)
	return proof, f, g
}

func TestCompleteness(t *testing.T) {
	for numVars := 1; numVars <= 5; numVars++ {
		proof, f, g := proveRandomProduct(t, numVars)
		require.NoError(t, Verify(proof, 2, fiatshamir.NewChallenger("sumcheck-test")))

		// the reduction must agree with the underlying tables
		fe := poly.EvalMultilinear(f, proof.Point)
		ge := poly.EvalMultilinear(g, proof.Point)
		var want extensions.E4
		want.Mul(&fe, &ge)
		require.True(t, proof.Eval.Equal(&want), "numVars=%d", numVars)
	}
}

func TestRejectsWrongClaimedSum(t *testing.T) {
	proof, _, _ := proveRandomProduct(t, 3)
	var one extensions.E4
	one.SetOne()
	proof.ClaimedSum.Add(&proof.ClaimedSum, &one)

	err := Verify(proof, 2, fiatshamir.NewChallenger("sumcheck-test"))
	require.ErrorIs(t, err, ErrInconsistencyWithClaimedSum)
}

func TestRejectsAnyCoefficientFlip(t *testing.T) {
	proof, _, _ := proveRandomProduct(t, 4)
	var one extensions.E4
	one.SetOne()

	for r := range proof.RoundPolynomials {
		for k := range proof.RoundPolynomials[r] {
			t.Run(fmt.Sprintf("round=%d/coeff=%d", r, k), func(t *testing.T) {
				mutated := &Proof{
					RoundPolynomials: make([]poly.UnivariatePolynomial, len(proof.RoundPolynomials)),
					ClaimedSum:       proof.ClaimedSum,
					Point:            proof.Point.Clone(),
					Eval:             proof.Eval,
				}
				for i := range proof.RoundPolynomials {
					mutated.RoundPolynomials[i] = proof.RoundPolynomials[i].Clone()
				}
				mutated.RoundPolynomials[r][k].Add(&mutated.RoundPolynomials[r][k], &one)

				err := Verify(mutated, 2, fiatshamir.NewChallenger("sumcheck-test"))
				require.Error(t, err)
			})
		}
	}
}

func TestRejectsWrongEval(t *testing.T) {
	proof, _, _ := proveRandomProduct(t, 3)
	var one extensions.E4
	one.SetOne()
	proof.Eval.Add(&proof.Eval, &one)

	err := Verify(proof, 2, fiatshamir.NewChallenger("sumcheck-test"))
	require.ErrorIs(t, err, ErrInconsistencyWithEval)
}

func TestRejectsWrongPoint(t *testing.T) {
	proof, _, _ := proveRandomProduct(t, 3)
	var one extensions.E4
	one.SetOne()
	proof.Point[1].Add(&proof.Point[1], &one)

	err := Verify(proof, 2, fiatshamir.NewChallenger("sumcheck-test"))
	require.ErrorIs(t, err, ErrInconsistencyWithEval)
}

func TestRejectsMalformedShape(t *testing.T) {
	proof, _, _ := proveRandomProduct(t, 3)
	proof.Point = proof.Point[:2]
	err := Verify(proof, 2, fiatshamir.NewChallenger("sumcheck-test"))
	require.ErrorIs(t, err, ErrInvalidProofShape)

	err = Verify(&Proof{}, 2, fiatshamir.NewChallenger("sumcheck-test"))
	require.ErrorIs(t, err, ErrInvalidProofShape)
}

func TestRejectsOversizedRoundPolynomial(t *testing.T) {
	proof, _, _ := proveRandomProduct(t, 3)
	var zero extensions.E4
	proof.RoundPolynomials[1] = append(proof.RoundPolynomials[1], zero)
	err := Verify(proof, 2, fiatshamir.NewChallenger("sumcheck-test"))
	require.ErrorIs(t, err, ErrInvalidProofShape)
}

func TestProveProductRejectsBadTables(t *testing.T) {
	_, err := ProveProduct(nil, nil, fiatshamir.NewChallenger("sumcheck-test"))
	require.Error(t, err)

	_, err = ProveProduct(randomTable(2), randomTable(3), fiatshamir.NewChallenger("sumcheck-test"))
	require.Error(t, err)

	_, err = ProveProduct(make([]extensions.E4, 3), make([]extensions.E4, 3), fiatshamir.NewChallenger("sumcheck-test"))
	require.Error(t, err)
}
