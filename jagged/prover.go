// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package jagged

import (
	"fmt"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/consensys/polyiop/basefold"
	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/internal/utils"
	"github.com/consensys/polyiop/poly"
	"github.com/consensys/polyiop/stacked"
	"github.com/consensys/polyiop/sumcheck"
	"github.com/consensys/polyiop/tcs"
)

// Reference prover, for tests: commits a jagged layout and proves the
// per-column evaluation claims at a row point.

// boolPoint encodes v as a big-endian Boolean point of the given dimension.
func boolPoint(v uint64, dim int) poly.Point {
	p := make(poly.Point, dim)
	for i := 0; i < dim; i++ {
		if (v>>uint(dim-1-i))&1 == 1 {
			p[i].SetOne()
		}
	}
	return p
}

// liftEvals lifts base-field column evaluations to extension elements.
func liftEvals(col []fr.Element) []extensions.E4 {
	out := make([]extensions.E4, len(col))
	for i := range col {
		out[i].B0.A0 = col[i]
	}
	return out
}

// Prove commits the columns (nil entries are zero columns carrying no claim)
// as one dense vector and proves their evaluations at rowPoint. It returns
// the commitment, the claims for the non-nil columns in order, and the
// proof. The transcript schedule mirrors VerifyTrustedEvaluations.
func Prove(
	cols [][]fr.Element,
	rowPoint poly.Point,
	logStackingHeight int,
	cfg basefold.Config,
	ch *fiatshamir.DuplexChallenger,
) (tcs.Digest, []extensions.E4, *Proof, error) {
	l := len(cols)
	if l == 0 {
		return tcs.Digest{}, nil, nil, fmt.Errorf("jagged: no columns")
	}
	m := rowPoint.Dimension()

	// layout: prefix sums over column heights
	prefix := make([]uint64, l+1)
	var insertionPoints []int
	for c, col := range cols {
		if len(col) > 1<<uint(m) {
			return tcs.Digest{}, nil, nil, fmt.Errorf("jagged: column %d taller than 2^%d", c, m)
		}
		prefix[c+1] = prefix[c] + uint64(len(col))
		if col == nil {
			insertionPoints = append(insertionPoints, c)
		}
	}
	totalArea := prefix[l]
	if totalArea == 0 {
		return tcs.Digest{}, nil, nil, fmt.Errorf("jagged: empty layout")
	}
	n := utils.Log2Ceil(int(totalArea))
	if n < logStackingHeight {
		n = logStackingHeight
	}
	if n < m {
		n = m
	}
	nb := n + 1

	dense := make([]fr.Element, 0, totalArea)
	for _, col := range cols {
		dense = append(dense, col...)
	}

	matrix, err := stacked.Commit(dense, logStackingHeight, cfg)
	if err != nil {
		return tcs.Digest{}, nil, nil, err
	}
	commitment := matrix.Root()

	claims := make([]extensions.E4, 0, l)
	for _, col := range cols {
		if col == nil {
			continue
		}
		claims = append(claims, poly.EvalMultilinear(liftEvals(col), rowPoint))
	}

	ch.ObserveCommitment(commitment)
	for _, cl := range claims {
		ch.ObserveExt(cl)
	}

	colVars := utils.Log2Ceil(l)
	zCol := make(poly.Point, colVars)
	for i := range zCol {
		zCol[i] = ch.SampleExt()
	}

	// sumcheck tables: f = dense evaluations, g = jagged indicator values
	f := make([]extensions.E4, 1<<uint(n))
	for i, e := range dense {
		f[i].B0.A0 = e
	}
	g := make([]extensions.E4, 1<<uint(n))
	rowEq := poly.EqTable(rowPoint)
	for c := 0; c < l; c++ {
		eq := poly.EqBits(zCol, uint64(c))
		for x := prefix[c]; x < prefix[c+1]; x++ {
			var t extensions.E4
			t.Mul(&eq, &rowEq[x-prefix[c]])
			g[x].Add(&g[x], &t)
		}
	}

	sumcheckProof, err := sumcheck.ProveProduct(f, g, ch)
	if err != nil {
		return tcs.Digest{}, nil, nil, err
	}
	zTrace := sumcheckProof.Point

	params := Params{
		ColPrefixSums:     make([]poly.Point, l+1),
		InsertionPoints:   insertionPoints,
		LogStackingHeight: logStackingHeight,
		LogMaxRowCount:    m,
	}
	for c := range params.ColPrefixSums {
		params.ColPrefixSums[c] = boolPoint(prefix[c], nb)
	}

	var jaggedEval extensions.E4
	for c := 0; c < l; c++ {
		ind := evalIndicator(rowPoint, zTrace, params.ColPrefixSums[c], params.ColPrefixSums[c+1])
		eq := poly.EqBits(zCol, uint64(c))
		var t extensions.E4
		t.Mul(&eq, &ind)
		jaggedEval.Add(&jaggedEval, &t)
	}

	stackedProof, err := stacked.Prove([]*basefold.CommittedMatrix{matrix}, zTrace, logStackingHeight, cfg, ch)
	if err != nil {
		return tcs.Digest{}, nil, nil, err
	}

	proof := &Proof{
		Params:        params,
		SumcheckProof: sumcheckProof,
		JaggedEval:    jaggedEval,
		StackedProof:  stackedProof,
	}
	return commitment, claims, proof, nil
}
