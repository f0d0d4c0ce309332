// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package basefold

import (
	"fmt"
	"math/big"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/consensys/polyiop/fiatshamir"
	"github.com/consensys/polyiop/internal/utils"
	"github.com/consensys/polyiop/poly"
	"github.com/consensys/polyiop/tcs"
	"github.com/consensys/polyiop/tcs/merkle"
	"github.com/consensys/polyiop/tensor"
)

// Reference prover. It exists so that completeness of the verifier can be
// exercised end to end; production proving is out of the scope of this
// module.

// CommittedMatrix is a batch of column polynomials, given by their monomial
// coefficient vectors, together with the Merkle tree over the pair-leaf
// layout of their codewords.
type CommittedMatrix struct {
	Columns [][]fr.Element
	Leaves  *tensor.Tensor
	Tree    *merkle.Tree
}

// Root returns the matrix commitment.
func (m *CommittedMatrix) Root() tcs.Digest {
	return m.Tree.Root()
}

// encode evaluates the univariate polynomial with the given coefficients
// over the two-adic domain of size 2^m, in bit-reversed order.
func encode(coeffs []fr.Element, m int) []fr.Element {
	out := make([]fr.Element, 1<<uint(m))
	for i := range out {
		var x fr.Element
		x.Exp(twoAdicGenerators[m], new(big.Int).SetUint64(utils.BitReverse(uint64(i), m)))
		// Horner
		var acc fr.Element
		for k := len(coeffs) - 1; k >= 0; k-- {
			acc.Mul(&acc, &x)
			acc.Add(&acc, &coeffs[k])
		}
		out[i] = acc
	}
	return out
}

// encodeExt is encode for extension-field coefficients.
func encodeExt(coeffs []extensions.E4, m int) []extensions.E4 {
	out := make([]extensions.E4, 1<<uint(m))
	for i := range out {
		var x fr.Element
		x.Exp(twoAdicGenerators[m], new(big.Int).SetUint64(utils.BitReverse(uint64(i), m)))
		var acc extensions.E4
		for k := len(coeffs) - 1; k >= 0; k-- {
			acc.MulByElement(&acc, &x)
			acc.Add(&acc, &coeffs[k])
		}
		out[i] = acc
	}
	return out
}

// pairLeaves lays a codeword of extension elements out as one tensor row per
// sibling pair, four base limbs per element.
func pairLeaves(codeword []extensions.E4) *tensor.Tensor {
	rows := len(codeword) / 2
	data := make([]fr.Element, rows*8)
	for j := 0; j < rows; j++ {
		l0 := e4Limbs(&codeword[2*j])
		l1 := e4Limbs(&codeword[2*j+1])
		copy(data[j*8:j*8+4], l0[:])
		copy(data[j*8+4:j*8+8], l1[:])
	}
	t, err := tensor.FromSlice(data, rows, 8)
	if err != nil {
		panic(err)
	}
	return t
}

// Commit encodes every column and commits the matrix codeword, two rows per
// Merkle leaf. All columns must share the same power-of-two length.
func Commit(columns [][]fr.Element, cfg Config) (*CommittedMatrix, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("basefold: empty matrix")
	}
	n := utils.Log2Strict(len(columns[0]))
	if n < 0 {
		return nil, fmt.Errorf("basefold: column length is not a power of two")
	}
	for _, c := range columns {
		if len(c) != len(columns[0]) {
			return nil, fmt.Errorf("basefold: ragged columns")
		}
	}

	k := n + cfg.LogBlowup
	if k > maxTwoAdicity {
		return nil, fmt.Errorf("basefold: domain size 2^%d exceeds the field's two-adicity", k)
	}
	w := len(columns)
	codewords := make([][]fr.Element, w)
	for j := range columns {
		codewords[j] = encode(columns[j], k)
	}

	// leaf j = matrix rows 2j and 2j+1
	rows := 1 << uint(k-1)
	data := make([]fr.Element, rows*2*w)
	for j := 0; j < rows; j++ {
		for col := 0; col < w; col++ {
			data[j*2*w+col] = codewords[col][2*j]
			data[j*2*w+w+col] = codewords[col][2*j+1]
		}
	}
	leaves, err := tensor.FromSlice(data, rows, 2*w)
	if err != nil {
		return nil, err
	}
	tree, err := merkle.Commit([]*tensor.Tensor{leaves})
	if err != nil {
		return nil, err
	}
	return &CommittedMatrix{Columns: columns, Leaves: leaves, Tree: tree}, nil
}

// EvalClaims returns the coefficient-basis evaluations of every column of
// every matrix at point, in the shape VerifyUntrustedEvaluations expects.
func EvalClaims(matrices []*CommittedMatrix, point poly.Point) [][]extensions.E4 {
	claims := make([][]extensions.E4, len(matrices))
	for i, m := range matrices {
		claims[i] = make([]extensions.E4, len(m.Columns))
		for j, c := range m.Columns {
			claims[i][j] = poly.EvalCoefficients(c, point)
		}
	}
	return claims
}

// Prove generates an evaluation proof for the committed matrices at point,
// mirroring the verifier's transcript schedule.
func Prove(matrices []*CommittedMatrix, point poly.Point, cfg Config, ch *fiatshamir.DuplexChallenger) (*Proof, error) {
	n := point.Dimension()
	k := n + cfg.LogBlowup

	lambda := ch.SampleExt()

	// combined coefficient vector and codeword, with powers of lambda over
	// (matrix, column) pairs
	combined := make([]extensions.E4, 1<<uint(n))
	var pow, t extensions.E4
	pow.SetOne()
	for _, m := range matrices {
		for _, c := range m.Columns {
			if len(c) != len(combined) {
				return nil, fmt.Errorf("basefold: column length does not match point dimension")
			}
			for i := range c {
				t.MulByElement(&pow, &c[i])
				combined[i].Add(&combined[i], &t)
			}
			pow.Mul(&pow, &lambda)
		}
	}
	codeword := encodeExt(combined, k)

	proof := &Proof{
		RoundMessages:    make([][2]extensions.E4, 0, n),
		RoundCommitments: make([]tcs.Digest, 0, n),
		RoundOpenings:    make([]*tcs.Opening, n),
		InputOpenings:    make([]*tcs.Opening, len(matrices)),
	}

	coeffs := combined
	roundLeaves := make([]*tensor.Tensor, n)
	roundTrees := make([]*merkle.Tree, n)
	betas := make([]extensions.E4, n)
	for r := 0; r < n; r++ {
		half := len(coeffs) / 2

		// m[b] = f_r(b, remaining point coordinates)
		rest := point[:n-r-1]
		even := make([]extensions.E4, half)
		odd := make([]extensions.E4, half)
		for j := 0; j < half; j++ {
			even[j] = coeffs[2*j]
			odd[j].Add(&coeffs[2*j], &coeffs[2*j+1])
		}
		var m [2]extensions.E4
		m[0] = poly.EvalCoefficientsExt(even, rest)
		m[1] = poly.EvalCoefficientsExt(odd, rest)
		proof.RoundMessages = append(proof.RoundMessages, m)
		ch.ObserveExt(m[0])
		ch.ObserveExt(m[1])

		betas[r] = ch.SampleExt()

		// fold coefficients and codeword at beta
		next := make([]extensions.E4, half)
		for j := 0; j < half; j++ {
			t.Mul(&betas[r], &coeffs[2*j+1])
			next[j].Add(&coeffs[2*j], &t)
		}
		coeffs = next

		folded := make([]extensions.E4, len(codeword)/2)
		for p := range folded {
			x := pairCoordinate(k-r, uint64(p))
			folded[p] = foldPair(codeword[2*p], codeword[2*p+1], x, &betas[r])
		}
		codeword = folded

		roundLeaves[r] = pairLeaves(codeword)
		tree, err := merkle.Commit([]*tensor.Tensor{roundLeaves[r]})
		if err != nil {
			return nil, err
		}
		roundTrees[r] = tree
		proof.RoundCommitments = append(proof.RoundCommitments, tree.Root())
		ch.ObserveCommitment(tree.Root())
	}

	proof.FinalPoly = coeffs[0]
	ch.ObserveExt(proof.FinalPoly)

	// grind
	for w := uint64(0); ; w++ {
		if ch.Clone().CheckWitness(cfg.ProofOfWorkBits, w) {
			proof.PowWitness = w
			ch.CheckWitness(cfg.ProofOfWorkBits, w)
			break
		}
	}

	indices := make([]uint64, cfg.NumQueries)
	for q := range indices {
		indices[q] = ch.SampleBits(k)
	}

	inputPairs := dedupShifted(indices, 1, k-1)
	for ci, m := range matrices {
		op, err := m.Tree.Open([]*tensor.Tensor{m.Leaves}, inputPairs)
		if err != nil {
			return nil, err
		}
		proof.InputOpenings[ci] = op
	}
	for r := 0; r < n; r++ {
		pairs := dedupShifted(indices, r+2, k-r-2)
		op, err := roundTrees[r].Open([]*tensor.Tensor{roundLeaves[r]}, pairs)
		if err != nil {
			return nil, err
		}
		proof.RoundOpenings[r] = op
	}
	return proof, nil
}
