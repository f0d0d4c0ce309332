// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package stacked adapts the fixed-length basefold commitment scheme to
// variable-length vectors: a long vector is chunked into columns of a fixed
// stacking height, committed as one matrix, and an evaluation of the full
// vector reduces to a batch of chunk evaluations at the low coordinates plus
// a multilinear combination at the high coordinates.
package stacked

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/consensys/polyiop/basefold"
	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/poly"
	"github.com/consensys/polyiop/tcs"
)

var (
	// ErrStacking is returned when the batch evaluations do not interpolate
	// to the claimed evaluation of the full vector.
	ErrStacking = errors.New("stacked: batch evaluations inconsistent with claim")

	// ErrInvalidShape is returned when the point is too short for the
	// stacking height or the batch evaluations overflow the batch coordinates.
	ErrInvalidShape = errors.New("stacked: malformed point or batch evaluation shape")
)

// Proof is an evaluation proof for stacked vectors.
//
// BatchEvaluations[i][j] claims the evaluation of commitment i's chunk j at
// the stack coordinates of the point; PcsProof certifies all of them.
type Proof struct {
	BatchEvaluations [][]extensions.E4
	PcsProof         *basefold.Proof
}

// Verifier checks stacked evaluation proofs.
type Verifier struct {
	LogStackingHeight int
	pcs               *basefold.Verifier
}

// NewVerifier returns a stacked verifier over a basefold verifier with the
// given configuration.
func NewVerifier(logStackingHeight int, cfg basefold.Config) *Verifier {
	return &Verifier{LogStackingHeight: logStackingHeight, pcs: basefold.NewVerifier(cfg)}
}

// VerifyTrustedEvaluation checks that the stacked vectors behind commitments
// jointly evaluate to claim at point. "Trusted" refers to the claim: the
// caller has already bound it to the transcript; the batch evaluations have
// not been, so they are absorbed here before delegating to the inner scheme.
func (v *Verifier) VerifyTrustedEvaluation(
	commitments []tcs.Digest,
	point poly.Point,
	proof *Proof,
	claim extensions.E4,
	ch fiatshamir.Challenger,
) error {
	n := point.Dimension()
	h := v.LogStackingHeight
	if n < h || h < 0 || proof.PcsProof == nil || len(proof.BatchEvaluations) != len(commitments) {
		return ErrInvalidShape
	}
	batchPoint, stackPoint := point.Split(n - h)

	flat := make([]extensions.E4, 0)
	for _, evals := range proof.BatchEvaluations {
		flat = append(flat, evals...)
	}
	if n-h < 64 && len(flat) > 1<<uint(n-h) {
		return ErrInvalidShape
	}

	// term-by-term evaluation of the zero-padded chunk table; the batch
	// dimension is proof-controlled, so no 2^(n-h) table is materialized
	var got, t extensions.E4
	for j := range flat {
		eq := poly.EqBits(batchPoint, uint64(j))
		t.Mul(&eq, &flat[j])
		got.Add(&got, &t)
	}
	if !got.Equal(&claim) {
		return ErrStacking
	}

	for _, e := range flat {
		ch.ObserveExt(e)
	}

	if err := v.pcs.VerifyUntrustedEvaluations(commitments, stackPoint, proof.BatchEvaluations, proof.PcsProof, ch); err != nil {
		return fmt.Errorf("stacked: %w", err)
	}
	return nil
}
