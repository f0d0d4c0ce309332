// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package tensor provides an owned contiguous array of field elements with
// shape and stride metadata, and non-owning row views into it. The verifiers
// only read tensors; a tensor has a single writer at construction time and
// shared readers afterwards.
package tensor

import (
	"errors"
	"fmt"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/fxamacker/cbor/v2"
)

// ErrShapeMismatch is returned when a data slice does not match the
// requested shape.
var ErrShapeMismatch = errors.New("tensor: data length does not match shape")

// Tensor is a dense row-major tensor of base field elements.
type Tensor struct {
	data    []fr.Element
	shape   []int
	strides []int
}

func buildStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

func size(shape []int) int {
	acc := 1
	for _, s := range shape {
		if s <= 0 {
			panic(fmt.Sprintf("tensor: invalid dimension %d", s))
		}
		acc *= s
	}
	return acc
}

// New returns a zero tensor of the given shape.
func New(shape ...int) *Tensor {
	return &Tensor{
		data:    make([]fr.Element, size(shape)),
		shape:   append([]int(nil), shape...),
		strides: buildStrides(shape),
	}
}

// FromSlice wraps data (without copying) into a tensor of the given shape.
// Unlike New it never panics: shapes arrive here from deserialized proofs.
func FromSlice(data []fr.Element, shape ...int) (*Tensor, error) {
	n := 1
	for _, s := range shape {
		if s <= 0 || s > len(data) {
			return nil, ErrShapeMismatch
		}
		n *= s
		if n > len(data) {
			return nil, ErrShapeMismatch
		}
	}
	if len(data) != n {
		return nil, ErrShapeMismatch
	}
	return &Tensor{
		data:    data,
		shape:   append([]int(nil), shape...),
		strides: buildStrides(shape),
	}, nil
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Stride returns the element stride of dimension i.
func (t *Tensor) Stride(i int) int {
	return t.strides[i]
}

// NumRows returns the leading dimension.
func (t *Tensor) NumRows() int {
	return t.shape[0]
}

// RowWidth returns the number of elements per leading-dimension row.
func (t *Tensor) RowWidth() int {
	return t.strides[0]
}

// Row returns a non-owning view of row i. The caller must not mutate it.
func (t *Tensor) Row(i int) []fr.Element {
	w := t.strides[0]
	return t.data[i*w : (i+1)*w]
}

// At returns the element at the given multi-index.
func (t *Tensor) At(indices ...int) fr.Element {
	if len(indices) != len(t.shape) {
		panic("tensor: wrong index arity")
	}
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic("tensor: index out of range")
		}
		off += idx * t.strides[i]
	}
	return t.data[off]
}

// Data returns the backing slice. The caller must not mutate it after the
// tensor is shared.
func (t *Tensor) Data() []fr.Element {
	return t.data
}

type tensorCBOR struct {
	Data  []fr.Element `cbor:"1,keyasint"`
	Shape []int        `cbor:"2,keyasint"`
}

// MarshalCBOR implements cbor.Marshaler.
func (t *Tensor) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(tensorCBOR{Data: t.data, Shape: t.shape})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (t *Tensor) UnmarshalCBOR(b []byte) error {
	var s tensorCBOR
	if err := cbor.Unmarshal(b, &s); err != nil {
		return err
	}
	tt, err := FromSlice(s.Data, s.Shape...)
	if err != nil {
		return err
	}
	*t = *tt
	return nil
}
