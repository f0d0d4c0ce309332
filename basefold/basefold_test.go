// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package basefold

import (
	"errors"
	"testing"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"github.com/stretchr/testify/require"

	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/poly"
	"github.com/consensys/polyiop/tcs"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig(1, 12, 2)
	require.NoError(t, err)
	return cfg
}

func randomColumns(numCols, numVars int) [][]fr.Element {
	cols := make([][]fr.Element, numCols)
	for j := range cols {
		cols[j] = make([]fr.Element, 1<<uint(numVars))
		for i := range cols[j] {
			cols[j][i].MustSetRandom()
		}
	}
	return cols
}

// proveRandom commits two matrices and proves their column evaluations at a
// random point.
func proveRandom(t *testing.T, numVars int) ([]tcs.Digest, poly.Point, [][]extensions.E4, *Proof, Config) {
	t.Helper()
	cfg := testConfig(t)

	m1, err := Commit(randomColumns(3, numVars), cfg)
	require.NoError(t, err)
	m2, err := Commit(randomColumns(1, numVars), cfg)
	require.NoError(t, err)
	matrices := []*CommittedMatrix{m1, m2}

	point := make(poly.Point, numVars)
	for i := range point {
		point[i].MustSetRandom()
	}
	claims := EvalClaims(matrices, point)

	proof, err := Prove(matrices, point, cfg, fiatshamir.NewChallenger("basefold-test"))
	require.NoError(t, err)

	return []tcs.Digest{m1.Root(), m2.Root()}, point, claims, proof, cfg
}

func verify(commitments []tcs.Digest, point poly.Point, claims [][]extensions.E4, proof *Proof, cfg Config) error {
	return NewVerifier(cfg).VerifyUntrustedEvaluations(
		commitments, point, claims, proof, fiatshamir.NewChallenger("basefold-test"))
}

func TestCompleteness(t *testing.T) {
	for numVars := 1; numVars <= 6; numVars++ {
		commitments, point, claims, proof, cfg := proveRandom(t, numVars)
		require.NoError(t, verify(commitments, point, claims, proof, cfg), "numVars=%d", numVars)
	}
}

func TestRejectsWrongClaim(t *testing.T) {
	commitments, point, claims, proof, cfg := proveRandom(t, 4)
	var one extensions.E4
	one.SetOne()
	claims[0][1].Add(&claims[0][1], &one)
	require.Error(t, verify(commitments, point, claims, proof, cfg))
}

func TestRejectsMutatedFinalPoly(t *testing.T) {
	commitments, point, claims, proof, cfg := proveRandom(t, 4)
	var one extensions.E4
	one.SetOne()
	proof.FinalPoly.Add(&proof.FinalPoly, &one)
	require.Error(t, verify(commitments, point, claims, proof, cfg))
}

func TestRejectsMutatedRoundMessage(t *testing.T) {
	commitments, point, claims, proof, cfg := proveRandom(t, 4)
	var one extensions.E4
	one.SetOne()
	proof.RoundMessages[1][0].Add(&proof.RoundMessages[1][0], &one)
	err := verify(commitments, point, claims, proof, cfg)
	require.ErrorIs(t, err, ErrSumcheck)
}

func TestRejectsMutatedRoundCommitment(t *testing.T) {
	commitments, point, claims, proof, cfg := proveRandom(t, 4)
	proof.RoundCommitments[0][5] ^= 1
	require.Error(t, verify(commitments, point, claims, proof, cfg))
}

func TestRejectsMutatedInputCommitment(t *testing.T) {
	commitments, point, claims, proof, cfg := proveRandom(t, 4)
	commitments[0][0] ^= 1
	err := verify(commitments, point, claims, proof, cfg)
	require.ErrorIs(t, err, tcs.ErrRootMismatch)
}

func TestRejectsMutatedSiblingValue(t *testing.T) {
	commitments, point, claims, proof, cfg := proveRandom(t, 4)
	var one fr.Element
	one.SetOne()
	data := proof.RoundOpenings[1].Values[0].Data()
	data[2].Add(&data[2], &one)
	require.Error(t, verify(commitments, point, claims, proof, cfg))
}

func TestRejectsWrongPowWitness(t *testing.T) {
	commitments, point, claims, proof, cfg := proveRandom(t, 4)

	// a wrong witness either fails the grind outright or desynchronizes the
	// query sampling; it must never verify
	orig := proof.PowWitness
	sawPow := false
	for delta := uint64(1); delta <= 16; delta++ {
		proof.PowWitness = orig + delta
		err := verify(commitments, point, claims, proof, cfg)
		require.Error(t, err)
		if errors.Is(err, ErrPow) {
			sawPow = true
		}
	}
	require.True(t, sawPow)
}

func TestRejectsShapeMismatches(t *testing.T) {
	commitments, point, claims, proof, cfg := proveRandom(t, 4)

	err := verify(commitments[:1], point, claims[:1], proof, cfg)
	require.ErrorIs(t, err, ErrSumcheckFriLengthMismatch)

	err = verify(commitments, point[:3], claims, proof, cfg)
	require.ErrorIs(t, err, ErrSumcheckFriLengthMismatch)

	short := &Proof{
		RoundMessages:    proof.RoundMessages[:3],
		RoundCommitments: proof.RoundCommitments[:3],
		InputOpenings:    proof.InputOpenings,
		RoundOpenings:    proof.RoundOpenings[:3],
		FinalPoly:        proof.FinalPoly,
		PowWitness:       proof.PowWitness,
	}
	err = verify(commitments, point, claims, short, cfg)
	require.ErrorIs(t, err, ErrSumcheckFriLengthMismatch)
}

func TestNewConfigValidation(t *testing.T) {
	_, err := NewConfig(0, 10, 2)
	require.Error(t, err)
	_, err = NewConfig(1, 0, 2)
	require.Error(t, err)
	_, err = NewConfig(1, 10, 33)
	require.Error(t, err)
	_, err = NewConfig(2, 30, 0)
	require.NoError(t, err)
}
