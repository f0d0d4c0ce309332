// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package sumcheck implements the verifier of the sumcheck protocol: it
// reduces a claim about the sum of a multivariate polynomial over the
// Boolean hypercube to a single evaluation claim at a random point.
//
// The verifier never certifies the final evaluation against the original
// polynomial; that is the caller's job.
package sumcheck

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/poly"
)

var (
	// ErrInvalidProofShape is returned when the number of round messages
	// does not match the dimension of the claimed reduction point.
	ErrInvalidProofShape = errors.New("sumcheck: malformed proof shape")

	// ErrInconsistencyWithClaimedSum is returned when the first round
	// message does not sum to the claimed sum over {0,1}.
	ErrInconsistencyWithClaimedSum = errors.New("sumcheck: first round message inconsistent with claimed sum")

	// ErrRoundInconsistency is returned when a round message does not fold
	// consistently from the previous one.
	ErrRoundInconsistency = errors.New("sumcheck: round message inconsistent with previous round")

	// ErrInconsistencyWithEval is returned when the claimed reduction
	// (point, eval) does not match the transcript.
	ErrInconsistencyWithEval = errors.New("sumcheck: claimed evaluation inconsistent with transcript")
)

// Proof is a sumcheck transcript: one univariate message per variable, the
// claimed hypercube sum, and the claimed reduction of that sum to an
// evaluation at a point.
type Proof struct {
	RoundPolynomials []poly.UnivariatePolynomial
	ClaimedSum       extensions.E4
	Point            poly.Point
	Eval             extensions.E4
}

func observePolynomial(ch fiatshamir.Challenger, p poly.UnivariatePolynomial) {
	for i := range p {
		ch.ObserveExt(p[i])
	}
}

// Verify checks the proof against its claimed sum, advancing the challenger.
// maxDegree bounds the per-variable degree of the summed polynomial; round
// messages with more than maxDegree+1 coefficients are rejected. On success
// the caller still has to check proof.Eval against the underlying polynomial
// at proof.Point.
func Verify(proof *Proof, maxDegree int, ch fiatshamir.Challenger) error {
	n := len(proof.RoundPolynomials)
	if n == 0 || n != proof.Point.Dimension() {
		return ErrInvalidProofShape
	}
	for i := range proof.RoundPolynomials {
		if len(proof.RoundPolynomials[i]) > maxDegree+1 {
			return ErrInvalidProofShape
		}
	}

	first := proof.RoundPolynomials[0]
	if sum := first.SumOverHypercube(); !sum.Equal(&proof.ClaimedSum) {
		return ErrInconsistencyWithClaimedSum
	}
	observePolynomial(ch, first)

	challenges := make(poly.Point, 0, n)
	prev := first
	for i := 1; i < n; i++ {
		a := ch.SampleExt()
		challenges = append(challenges, a)

		cur := proof.RoundPolynomials[i]
		folded := prev.EvalAt(&a)
		if sum := cur.SumOverHypercube(); !sum.Equal(&folded) {
			return fmt.Errorf("%w: round %d", ErrRoundInconsistency, i)
		}
		observePolynomial(ch, cur)
		prev = cur
	}

	final := ch.SampleExt()
	challenges = append(challenges, final)

	if !proof.Point.Equal(challenges) {
		return fmt.Errorf("%w: challenge point mismatch", ErrInconsistencyWithEval)
	}
	if folded := prev.EvalAt(&final); !folded.Equal(&proof.Eval) {
		return ErrInconsistencyWithEval
	}
	return nil
}
