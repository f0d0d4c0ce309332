// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package tcs defines the tensor commitment scheme interface: a batch vector
// commitment with index-based opening proofs.
package tcs

import (
	"errors"

	"github.com/consensys/polyiop/tensor"
)

// Digest is an opaque fixed-size commitment.
type Digest [32]byte

var (
	// ErrRootMismatch is returned when a recomputed root does not match the
	// commitment. A single mismatch fails the whole batch.
	ErrRootMismatch = errors.New("tcs: recomputed root does not match commitment")

	// ErrInvalidOpeningShape is returned when an opening is structurally
	// malformed: wrong value-tensor leading dimension, wrong path count or
	// inconsistent path lengths.
	ErrInvalidOpeningShape = errors.New("tcs: malformed opening")
)

// Opening is a claimed-value tensor batch together with inclusion proofs.
// Values holds one tensor per committed tensor, each with one row per
// queried index; Paths holds one sibling path per queried index.
type Opening struct {
	Values []*tensor.Tensor
	Paths  [][]Digest
}

// Scheme verifies index-based openings against a commitment.
type Scheme interface {
	// VerifyTensorOpenings checks that, for every queried index, the claimed
	// row-slices across all committed tensors are included under commitment.
	VerifyTensorOpenings(commitment Digest, indices []uint64, opening *Opening) error
}
