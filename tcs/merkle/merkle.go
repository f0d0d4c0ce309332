// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package merkle implements the tensor commitment scheme with a BLAKE2b
// Merkle tree: leaf i hashes the i-th row-slice of every committed tensor,
// in tensor order; inner nodes hash (left || right).
package merkle

import (
	"bytes"
	"fmt"
	"hash"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"golang.org/x/crypto/blake2b"

	"github.com/consensys/polyiop/tcs"
	"github.com/consensys/polyiop/tensor"
)

// Scheme is the Merkle-tree tensor commitment scheme. The zero value is
// ready to use.
type Scheme struct{}

func newHasher() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

func hashLeaf(h hash.Hash, rows [][]fr.Element) tcs.Digest {
	h.Reset()
	for _, row := range rows {
		for i := range row {
			b := row[i].Bytes()
			h.Write(b[:])
		}
	}
	var d tcs.Digest
	h.Sum(d[:0])
	return d
}

func hashNode(h hash.Hash, left, right tcs.Digest) tcs.Digest {
	h.Reset()
	h.Write(left[:])
	h.Write(right[:])
	var d tcs.Digest
	h.Sum(d[:0])
	return d
}

// VerifyTensorOpenings implements tcs.Scheme. For each queried index it
// rehashes the claimed row-slices to a leaf, folds the sibling path toward
// the root choosing the (left, right) order by the index parity at each
// level, and requires the result to equal commitment.
func (Scheme) VerifyTensorOpenings(commitment tcs.Digest, indices []uint64, opening *tcs.Opening) error {
	if opening == nil || len(opening.Paths) != len(indices) {
		return tcs.ErrInvalidOpeningShape
	}
	for _, v := range opening.Values {
		if v == nil || v.NumRows() != len(indices) {
			return tcs.ErrInvalidOpeningShape
		}
	}
	depth := -1
	for _, p := range opening.Paths {
		if depth == -1 {
			depth = len(p)
		} else if len(p) != depth {
			return tcs.ErrInvalidOpeningShape
		}
	}

	h := newHasher()
	rows := make([][]fr.Element, len(opening.Values))
	for i, idx := range indices {
		if depth < 64 && idx >= 1<<uint(depth) {
			return tcs.ErrInvalidOpeningShape
		}
		for t, v := range opening.Values {
			rows[t] = v.Row(i)
		}
		cur := hashLeaf(h, rows)
		for _, sibling := range opening.Paths[i] {
			if idx&1 == 0 {
				cur = hashNode(h, cur, sibling)
			} else {
				cur = hashNode(h, sibling, cur)
			}
			idx >>= 1
		}
		if !bytes.Equal(cur[:], commitment[:]) {
			return fmt.Errorf("%w: index %d", tcs.ErrRootMismatch, indices[i])
		}
	}
	return nil
}

// Tree is a committed Merkle tree, kept by provers to open indices later.
// levels[0] holds the leaf digests.
type Tree struct {
	levels [][]tcs.Digest
}

// Commit builds the Merkle tree over the given tensors. All tensors must
// share the same power-of-two leading dimension.
func Commit(tensors []*tensor.Tensor) (*Tree, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("merkle: nothing to commit")
	}
	n := tensors[0].NumRows()
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("merkle: leading dimension %d is not a power of two", n)
	}
	for _, t := range tensors {
		if t.NumRows() != n {
			return nil, fmt.Errorf("merkle: mismatched leading dimensions")
		}
	}

	h := newHasher()
	leaves := make([]tcs.Digest, n)
	rows := make([][]fr.Element, len(tensors))
	for i := 0; i < n; i++ {
		for t, v := range tensors {
			rows[t] = v.Row(i)
		}
		leaves[i] = hashLeaf(h, rows)
	}

	levels := [][]tcs.Digest{leaves}
	for len(levels[len(levels)-1]) > 1 {
		prev := levels[len(levels)-1]
		next := make([]tcs.Digest, len(prev)/2)
		for i := range next {
			next[i] = hashNode(h, prev[2*i], prev[2*i+1])
		}
		levels = append(levels, next)
	}
	return &Tree{levels: levels}, nil
}

// Root returns the tree root.
func (t *Tree) Root() tcs.Digest {
	return t.levels[len(t.levels)-1][0]
}

// Depth returns the number of sibling digests in an opening path.
func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

func (t *Tree) path(idx uint64) []tcs.Digest {
	path := make([]tcs.Digest, 0, t.Depth())
	for level := 0; level < t.Depth(); level++ {
		path = append(path, t.levels[level][idx^1])
		idx >>= 1
	}
	return path
}

// Open assembles the opening of the committed tensors at the given indices.
func (t *Tree) Open(tensors []*tensor.Tensor, indices []uint64) (*tcs.Opening, error) {
	op := &tcs.Opening{
		Values: make([]*tensor.Tensor, len(tensors)),
		Paths:  make([][]tcs.Digest, len(indices)),
	}
	for k, v := range tensors {
		w := v.RowWidth()
		data := make([]fr.Element, len(indices)*w)
		for i, idx := range indices {
			copy(data[i*w:(i+1)*w], v.Row(int(idx)))
		}
		vt, err := tensor.FromSlice(data, len(indices), w)
		if err != nil {
			return nil, err
		}
		op.Values[k] = vt
	}
	for i, idx := range indices {
		op.Paths[i] = t.path(idx)
	}
	return op, nil
}
