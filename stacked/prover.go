// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stacked

import (
	"fmt"

	fr "github.com/consensys/gnark-crypto/field/koalabear"

	"github.com/consensys/polyiop/basefold"
	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/poly"
)

// Commit chunks the hypercube evaluations of a long vector into columns of
// height 2^logStackingHeight, zero-padding the tail, and commits the chunk
// coefficient matrix. Reference prover, for tests.
func Commit(vector []fr.Element, logStackingHeight int, cfg basefold.Config) (*basefold.CommittedMatrix, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("stacked: empty vector")
	}
	height := 1 << uint(logStackingHeight)
	numChunks := (len(vector) + height - 1) / height

	columns := make([][]fr.Element, numChunks)
	for j := range columns {
		columns[j] = make([]fr.Element, height)
		lo := j * height
		hi := lo + height
		if hi > len(vector) {
			hi = len(vector)
		}
		copy(columns[j], vector[lo:hi])
		poly.CoefficientsFromEvaluations(columns[j])
	}
	return basefold.Commit(columns, cfg)
}

// Prove generates a stacked evaluation proof at point, mirroring the
// verifier's transcript schedule.
func Prove(
	matrices []*basefold.CommittedMatrix,
	point poly.Point,
	logStackingHeight int,
	cfg basefold.Config,
	ch *fiatshamir.DuplexChallenger,
) (*Proof, error) {
	n := point.Dimension()
	h := logStackingHeight
	if n < h {
		return nil, ErrInvalidShape
	}
	_, stackPoint := point.Split(n - h)

	batchEvals := basefold.EvalClaims(matrices, stackPoint)
	for _, evals := range batchEvals {
		for _, e := range evals {
			ch.ObserveExt(e)
		}
	}

	pcsProof, err := basefold.Prove(matrices, stackPoint, cfg, ch)
	if err != nil {
		return nil, err
	}
	return &Proof{BatchEvaluations: batchEvals, PcsProof: pcsProof}, nil
}
