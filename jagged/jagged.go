// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package jagged commits tables of heterogeneous shapes as one flat vector:
// columns are concatenated in order, and a per-column evaluation claim is
// reduced to one evaluation of the dense vector through a sumcheck against
// the jagged indicator polynomial, evaluated by a branching program.
package jagged

import (
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/consensys/polyiop/basefold"
	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/internal/utils"
	"github.com/consensys/polyiop/logger"
	"github.com/consensys/polyiop/poly"
	"github.com/consensys/polyiop/stacked"
	"github.com/consensys/polyiop/sumcheck"
	"github.com/consensys/polyiop/tcs"
)

var (
	// ErrInvalidParams is returned when the verifier parameters carried by
	// the proof are structurally malformed.
	ErrInvalidParams = errors.New("jagged: malformed verifier parameters")

	// ErrSumcheckClaimMismatch is returned when the batched column claims do
	// not interpolate to the sumcheck's claimed sum.
	ErrSumcheckClaimMismatch = errors.New("jagged: column claims inconsistent with sumcheck claimed sum")

	// ErrSumcheck is returned when the inner sumcheck proof fails.
	ErrSumcheck = errors.New("jagged: sumcheck verification failed")

	// ErrBooleanityCheckFailed is returned when a column prefix sum has a
	// non-Boolean coordinate.
	ErrBooleanityCheckFailed = errors.New("jagged: column prefix sum coordinate is not boolean")

	// ErrMonotonicityCheckFailed is returned when adjacent column prefix
	// sums decrease.
	ErrMonotonicityCheckFailed = errors.New("jagged: column prefix sums are not monotone")

	// ErrJaggedEvalProof is returned when the proof's claimed jagged
	// indicator evaluation does not match the branching-program computation.
	ErrJaggedEvalProof = errors.New("jagged: claimed jagged evaluation does not match branching program")

	// ErrJaggedEvalZero is returned when the jagged indicator evaluates to
	// zero, which leaves the dense evaluation claim undefined.
	ErrJaggedEvalZero = errors.New("jagged: jagged indicator evaluated to zero")

	// ErrDensePcs is returned when the stacked commitment proof of the dense
	// vector fails.
	ErrDensePcs = errors.New("jagged: dense commitment verification failed")
)

// Params are the verifier parameters of a jagged layout.
//
// ColPrefixSums holds L+1 points of equal dimension, each the big-endian
// Boolean encoding of the running total of column heights; column c occupies
// dense indices [t_c, t_{c+1}). InsertionPoints are the positions, within
// the L columns, of zero columns carrying no caller claim.
type Params struct {
	ColPrefixSums     []poly.Point
	InsertionPoints   []int
	LogStackingHeight int
	LogMaxRowCount    int
}

// NumColumns returns L, the total column count including insertions.
func (p *Params) NumColumns() int {
	return len(p.ColPrefixSums) - 1
}

// validateShape checks the structural invariants that are not covered by the
// Fiat-Shamir checks: point dimensions and insertion positions.
func (p *Params) validateShape(numClaims, numTraceVars, rowVars int) error {
	l := p.NumColumns()
	if l <= 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidParams)
	}
	nb := p.ColPrefixSums[0].Dimension()
	for _, t := range p.ColPrefixSums {
		if t.Dimension() != nb {
			return fmt.Errorf("%w: ragged prefix sum dimensions", ErrInvalidParams)
		}
	}
	if p.LogStackingHeight < 0 || nb < numTraceVars || numTraceVars < p.LogStackingHeight || rowVars != p.LogMaxRowCount || rowVars > numTraceVars {
		return fmt.Errorf("%w: inconsistent dimensions", ErrInvalidParams)
	}
	if numClaims+len(p.InsertionPoints) != l {
		return fmt.Errorf("%w: claim count does not match column count", ErrInvalidParams)
	}
	prev := -1
	for _, ip := range p.InsertionPoints {
		if ip <= prev || ip >= l {
			return fmt.Errorf("%w: insertion points not strictly increasing in range", ErrInvalidParams)
		}
		prev = ip
	}
	return nil
}

// checkBooleanity verifies b*(b-1) == 0 for every prefix sum coordinate.
func (p *Params) checkBooleanity() error {
	var one extensions.E4
	one.SetOne()
	for c, t := range p.ColPrefixSums {
		for j := range t {
			var u, v extensions.E4
			u.Sub(&t[j], &one)
			v.Mul(&u, &t[j])
			if !v.IsZero() {
				return fmt.Errorf("%w: prefix sum %d coordinate %d", ErrBooleanityCheckFailed, c, j)
			}
		}
	}
	return nil
}

// checkMonotonicity verifies t_{c+1} >= t_c for every adjacent pair, via the
// multilinear greater-or-equal indicator. Coordinates must already be
// Boolean.
func (p *Params) checkMonotonicity() error {
	var one extensions.E4
	one.SetOne()
	for c := 0; c+1 < len(p.ColPrefixSums); c++ {
		ge := evalGreaterEqual(p.ColPrefixSums[c+1], p.ColPrefixSums[c])
		if !ge.Equal(&one) {
			return fmt.Errorf("%w: columns %d and %d", ErrMonotonicityCheckFailed, c, c+1)
		}
	}
	return nil
}

// rebuildClaims re-inserts zero claims at the insertion points, producing
// the length-L per-column claim vector.
func (p *Params) rebuildClaims(claims []extensions.E4) []extensions.E4 {
	l := p.NumColumns()
	out := make([]extensions.E4, l)
	isInsertion := make([]bool, l)
	for _, ip := range p.InsertionPoints {
		isInsertion[ip] = true
	}
	next := 0
	for c := 0; c < l; c++ {
		if !isInsertion[c] {
			out[c] = claims[next]
			next++
		}
	}
	return out
}

// Proof is a jagged evaluation proof: the sumcheck reducing the batched
// column claims to one dense evaluation, the claimed jagged indicator value
// at the reduced point, the stacked proof of the dense vector, and the
// layout parameters.
type Proof struct {
	Params        Params
	SumcheckProof *sumcheck.Proof
	JaggedEval    extensions.E4
	StackedProof  *stacked.Proof
}

// Verifier checks jagged evaluation proofs.
type Verifier struct {
	cfg basefold.Config
}

// NewVerifier returns a jagged verifier over a basefold configuration.
func NewVerifier(cfg basefold.Config) *Verifier {
	return &Verifier{cfg: cfg}
}

// VerifyTrustedEvaluations checks that the columns laid out behind
// commitments evaluate at rowPoint to claims, one claim per non-insertion
// column, in layout order across all commitments.
func (v *Verifier) VerifyTrustedEvaluations(
	commitments []tcs.Digest,
	rowPoint poly.Point,
	claims []extensions.E4,
	proof *Proof,
	ch fiatshamir.Challenger,
) error {
	params := &proof.Params
	if proof.SumcheckProof == nil || proof.StackedProof == nil {
		return fmt.Errorf("%w: missing sub-proof", ErrInvalidParams)
	}
	numTraceVars := proof.SumcheckProof.Point.Dimension()
	if err := params.validateShape(len(claims), numTraceVars, rowPoint.Dimension()); err != nil {
		return err
	}
	l := params.NumColumns()

	log := logger.Logger().With().Str("component", "jagged").Logger()
	log.Debug().Int("numColumns", l).Int("numTraceVars", numTraceVars).Msg("verifying jagged proof")

	for _, c := range commitments {
		ch.ObserveCommitment(c)
	}
	for _, cl := range claims {
		ch.ObserveExt(cl)
	}

	colVars := utils.Log2Ceil(l)
	zCol := make(poly.Point, colVars)
	for i := range zCol {
		zCol[i] = ch.SampleExt()
	}

	rebuilt := params.rebuildClaims(claims)
	if got := poly.EvalMultilinear(rebuilt, zCol); !got.Equal(&proof.SumcheckProof.ClaimedSum) {
		return ErrSumcheckClaimMismatch
	}

	// the summed polynomial is a product of two multilinears: degree 2
	if err := sumcheck.Verify(proof.SumcheckProof, 2, ch); err != nil {
		return fmt.Errorf("%w: %w", ErrSumcheck, err)
	}
	zTrace := proof.SumcheckProof.Point

	if err := params.checkBooleanity(); err != nil {
		return err
	}
	if err := params.checkMonotonicity(); err != nil {
		return err
	}

	// jaggedEval = sum_c eq(zCol, c) * ind_c(rowPoint, zTrace); the per-column
	// branching programs read only sampled randomness and are independent
	perCol := make([]extensions.E4, l)
	var wg sync.WaitGroup
	for c := 0; c < l; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ind := evalIndicator(rowPoint, zTrace, params.ColPrefixSums[c], params.ColPrefixSums[c+1])
			eq := poly.EqBits(zCol, uint64(c))
			perCol[c].Mul(&eq, &ind)
		}()
	}
	wg.Wait()

	var jaggedEval extensions.E4
	for c := range perCol {
		jaggedEval.Add(&jaggedEval, &perCol[c])
	}

	if !jaggedEval.Equal(&proof.JaggedEval) {
		return ErrJaggedEvalProof
	}
	if jaggedEval.IsZero() {
		return ErrJaggedEvalZero
	}

	// expected dense evaluation: eval / jaggedEval
	var expected extensions.E4
	expected.Inverse(&jaggedEval)
	expected.Mul(&expected, &proof.SumcheckProof.Eval)

	sv := stacked.NewVerifier(params.LogStackingHeight, v.cfg)
	if err := sv.VerifyTrustedEvaluation(commitments, zTrace, proof.StackedProof, expected, ch); err != nil {
		return fmt.Errorf("%w: %w", ErrDensePcs, err)
	}
	return nil
}
