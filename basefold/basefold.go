// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package basefold implements the verifier of a FRI-style multilinear
// polynomial commitment scheme: per-variable codeword folding interleaved
// with sumcheck-shaped evaluation messages, followed by spot checks of the
// folding at randomly sampled query positions.
package basefold

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/logger"
	"github.com/consensys/polyiop/poly"
	"github.com/consensys/polyiop/tcs"
	"github.com/consensys/polyiop/tcs/merkle"
)

var (
	// ErrSumcheckFriLengthMismatch is returned when the proof's round
	// messages, commitments and openings do not agree in number with the
	// evaluation point's dimension.
	ErrSumcheckFriLengthMismatch = errors.New("basefold: round message and commitment counts mismatch")

	// ErrSumcheck is returned when a round message is inconsistent with the
	// running evaluation claim.
	ErrSumcheck = errors.New("basefold: round message inconsistent with running claim")

	// ErrPow is returned when the proof-of-work witness fails the grinding
	// check.
	ErrPow = errors.New("basefold: proof of work check failed")

	// ErrQueryValueMismatch is returned when a folded query value does not
	// match the opened sibling of the next layer.
	ErrQueryValueMismatch = errors.New("basefold: folded query value does not match opened layer")

	// ErrQueryFinalPolyMismatch is returned when a fully folded query value
	// differs from the final constant.
	ErrQueryFinalPolyMismatch = errors.New("basefold: fully folded query value does not match final constant")

	// ErrSumcheckFinalPolyMismatch is returned when the fully folded
	// evaluation claim differs from the final constant.
	ErrSumcheckFinalPolyMismatch = errors.New("basefold: folded claim does not match final constant")
)

// Config carries the FRI parameters.
type Config struct {
	LogBlowup       int
	NumQueries      int
	ProofOfWorkBits int
}

// NewConfig validates and returns a Config.
func NewConfig(logBlowup, numQueries, proofOfWorkBits int) (Config, error) {
	if logBlowup < 1 {
		return Config{}, fmt.Errorf("basefold: log blowup must be at least 1, got %d", logBlowup)
	}
	if numQueries <= 0 {
		return Config{}, fmt.Errorf("basefold: query count must be positive, got %d", numQueries)
	}
	if proofOfWorkBits < 0 || proofOfWorkBits > 32 {
		return Config{}, fmt.Errorf("basefold: proof of work bits out of range: %d", proofOfWorkBits)
	}
	return Config{LogBlowup: logBlowup, NumQueries: numQueries, ProofOfWorkBits: proofOfWorkBits}, nil
}

// Proof is a batched multilinear evaluation proof.
//
// RoundCommitments[r] commits the codeword obtained after folding round r;
// RoundOpenings[r] opens it at the sibling pairs visited by the queries.
// InputOpenings opens the caller's commitments, one per commitment, at the
// first-layer pairs.
type Proof struct {
	RoundMessages    [][2]extensions.E4
	RoundCommitments []tcs.Digest
	InputOpenings    []*tcs.Opening
	RoundOpenings    []*tcs.Opening
	FinalPoly        extensions.E4
	PowWitness       uint64
}

// Verifier checks basefold evaluation proofs.
type Verifier struct {
	cfg    Config
	scheme tcs.Scheme
}

// NewVerifier returns a verifier for the given configuration, backed by the
// Merkle tensor commitment scheme.
func NewVerifier(cfg Config) *Verifier {
	return &Verifier{cfg: cfg, scheme: merkle.Scheme{}}
}

// dedupShifted returns the sorted distinct values of index >> shift, for
// indices drawn from [0, 2^(logSize+shift)).
func dedupShifted(indices []uint64, shift, logSize int) []uint64 {
	seen := bitset.New(1 << uint(logSize))
	for _, idx := range indices {
		seen.Set(uint(idx >> uint(shift)))
	}
	out := make([]uint64, 0, seen.Count())
	for i, ok := seen.NextSet(0); ok; i, ok = seen.NextSet(i + 1) {
		out = append(out, uint64(i))
	}
	return out
}

// slotOf returns the position of v in the sorted slice.
func slotOf(sorted []uint64, v uint64) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] >= v })
}

// VerifyUntrustedEvaluations checks that, for every commitment i and column
// j, the committed multilinear polynomial evaluates at point to claims[i][j].
// The caller must already have bound the commitments and claims to the
// transcript.
func (v *Verifier) VerifyUntrustedEvaluations(
	commitments []tcs.Digest,
	point poly.Point,
	claims [][]extensions.E4,
	proof *Proof,
	ch fiatshamir.Challenger,
) error {
	n := point.Dimension()
	if n == 0 || n+v.cfg.LogBlowup > maxTwoAdicity || len(claims) != len(commitments) {
		return ErrSumcheckFriLengthMismatch
	}
	if len(proof.RoundCommitments) != len(proof.RoundMessages) ||
		len(proof.RoundMessages) != n ||
		len(proof.RoundOpenings) != n ||
		len(proof.InputOpenings) != len(commitments) {
		return ErrSumcheckFriLengthMismatch
	}
	for ci := range commitments {
		op := proof.InputOpenings[ci]
		if op == nil || len(op.Values) != 1 || op.Values[0] == nil || op.Values[0].RowWidth() != 2*len(claims[ci]) {
			return ErrSumcheckFriLengthMismatch
		}
	}
	for r := 0; r < n; r++ {
		op := proof.RoundOpenings[r]
		if op == nil || len(op.Values) != 1 || op.Values[0] == nil || op.Values[0].RowWidth() != 8 {
			return ErrSumcheckFriLengthMismatch
		}
	}

	log := logger.Logger().With().Str("component", "basefold").Logger()
	log.Debug().Int("numVars", n).Int("numQueries", v.cfg.NumQueries).Msg("verifying evaluation proof")

	// batch all claims into a single running claim with powers of lambda
	lambda := ch.SampleExt()
	var claim, pow, t extensions.E4
	pow.SetOne()
	for ci := range claims {
		for j := range claims[ci] {
			t.Mul(&pow, &claims[ci][j])
			claim.Add(&claim, &t)
			pow.Mul(&pow, &lambda)
		}
	}

	// fold rounds: the prover folds the last coordinate first
	rp := point.Reverse()
	betas := make([]extensions.E4, n)
	var one extensions.E4
	one.SetOne()
	for r := 0; r < n; r++ {
		m := proof.RoundMessages[r]

		// claim == (1-x_r)*m[0] + x_r*m[1]
		var want, u extensions.E4
		u.Sub(&one, &rp[r])
		want.Mul(&u, &m[0])
		u.Mul(&rp[r], &m[1])
		want.Add(&want, &u)
		if !claim.Equal(&want) {
			return fmt.Errorf("%w: round %d", ErrSumcheck, r)
		}

		ch.ObserveExt(m[0])
		ch.ObserveExt(m[1])
		betas[r] = ch.SampleExt()

		// claim <- m[0] + beta*(m[1]-m[0])
		u.Sub(&m[1], &m[0])
		u.Mul(&u, &betas[r])
		claim.Add(&m[0], &u)

		// the round commitment depends on beta, so it enters the transcript
		// after the sample
		ch.ObserveCommitment(proof.RoundCommitments[r])
	}

	ch.ObserveExt(proof.FinalPoly)
	if !claim.Equal(&proof.FinalPoly) {
		return ErrSumcheckFinalPolyMismatch
	}

	if !ch.CheckWitness(v.cfg.ProofOfWorkBits, proof.PowWitness) {
		return ErrPow
	}

	// sequential sampling done; everything below reads immutable data only
	k := n + v.cfg.LogBlowup
	indices := make([]uint64, v.cfg.NumQueries)
	for q := range indices {
		indices[q] = ch.SampleBits(k)
	}

	inputPairs := dedupShifted(indices, 1, k-1)
	roundPairs := make([][]uint64, n)
	for r := 0; r < n; r++ {
		roundPairs[r] = dedupShifted(indices, r+2, k-r-2)
	}

	// the opened rows must cover exactly the sampled pair sets, or the query
	// walks below would read out of range
	for ci := range commitments {
		if proof.InputOpenings[ci].Values[0].NumRows() != len(inputPairs) {
			return ErrSumcheckFriLengthMismatch
		}
	}
	for r := 0; r < n; r++ {
		if proof.RoundOpenings[r].Values[0].NumRows() != len(roundPairs[r]) {
			return ErrSumcheckFriLengthMismatch
		}
	}

	g := new(errgroup.Group)
	for ci := range commitments {
		g.Go(func() error {
			if err := v.scheme.VerifyTensorOpenings(commitments[ci], inputPairs, proof.InputOpenings[ci]); err != nil {
				return fmt.Errorf("basefold: input commitment %d: %w", ci, err)
			}
			return nil
		})
	}
	for r := 0; r < n; r++ {
		g.Go(func() error {
			if err := v.scheme.VerifyTensorOpenings(proof.RoundCommitments[r], roundPairs[r], proof.RoundOpenings[r]); err != nil {
				return fmt.Errorf("basefold: round commitment %d: %w", r, err)
			}
			return nil
		})
	}
	for q := range indices {
		g.Go(func() error {
			return v.walkQuery(q, indices[q], claims, lambda, betas, inputPairs, roundPairs, proof)
		})
	}
	return g.Wait()
}

// walkQuery follows one query index through all folding layers.
func (v *Verifier) walkQuery(
	q int,
	idx uint64,
	claims [][]extensions.E4,
	lambda extensions.E4,
	betas []extensions.E4,
	inputPairs []uint64,
	roundPairs [][]uint64,
	proof *Proof,
) error {
	n := len(betas)
	k := n + v.cfg.LogBlowup

	// combine the opened first-layer rows with the batching challenge
	var u0, u1, pow, t extensions.E4
	pow.SetOne()
	slot := slotOf(inputPairs, idx>>1)
	for ci := range claims {
		row := proof.InputOpenings[ci].Values[0].Row(slot)
		w := len(claims[ci])
		for col := 0; col < w; col++ {
			t.MulByElement(&pow, &row[col])
			u0.Add(&u0, &t)
			t.MulByElement(&pow, &row[w+col])
			u1.Add(&u1, &t)
			pow.Mul(&pow, &lambda)
		}
	}

	for r := 0; r < n; r++ {
		pair := idx >> uint(r+1)
		x := pairCoordinate(k-r, pair)
		folded := foldPair(u0, u1, x, &betas[r])

		nextSlot := slotOf(roundPairs[r], idx>>uint(r+2))
		row := proof.RoundOpenings[r].Values[0].Row(nextSlot)
		u0 = e4FromLimbs(row[0:4])
		u1 = e4FromLimbs(row[4:8])

		sibling := u0
		if pair&1 == 1 {
			sibling = u1
		}
		if !folded.Equal(&sibling) {
			return fmt.Errorf("%w: query %d, round %d", ErrQueryValueMismatch, q, r)
		}

		if r == n-1 && !folded.Equal(&proof.FinalPoly) {
			return fmt.Errorf("%w: query %d", ErrQueryFinalPolyMismatch, q)
		}
	}
	return nil
}
