// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package jagged

import (
	"bytes"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// WriteTo serializes the proof in deterministic CBOR.
func (p *Proof) WriteTo(w io.Writer) (int64, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := enc.NewEncoder(&buf).Encode(p); err != nil {
		return 0, err
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom deserializes the proof. Decoding is strict: unknown, duplicate or
// case-mismatched map keys are errors. Shape validation happens at
// verification time, not here.
func (p *Proof) ReadFrom(r io.Reader) (int64, error) {
	dm, err := cbor.DecOptions{
		MaxArrayElements:  2147483647,
		MaxMapPairs:       2147483647,
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		FieldNameMatching: cbor.FieldNameMatchingCaseSensitive,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		return 0, err
	}
	decoder := dm.NewDecoder(r)
	if err := decoder.Decode(p); err != nil {
		return int64(decoder.NumBytesRead()), err
	}
	return int64(decoder.NumBytesRead()), nil
}
