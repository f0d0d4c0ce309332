// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package fiatshamir implements the sequential transcript used to derive
// verifier randomness from prover messages.
//
// A challenger is exclusively owned by one verification call: every observe
// and sample must happen in protocol order, and a challenger must never be
// shared across concurrent verifications.
package fiatshamir

import (
	"encoding/binary"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"golang.org/x/crypto/blake2b"
)

// Challenger is the transcript interface consumed by the verifiers.
type Challenger interface {
	// ObserveScalar absorbs a base field element.
	ObserveScalar(x fr.Element)
	// ObserveScalars absorbs base field elements in order.
	ObserveScalars(xs []fr.Element)
	// ObserveExt absorbs an extension field element.
	ObserveExt(x extensions.E4)
	// ObserveCommitment absorbs a commitment digest.
	ObserveCommitment(digest [32]byte)
	// SampleScalar derives a base field element.
	SampleScalar() fr.Element
	// SampleExt derives an extension field element.
	SampleExt() extensions.E4
	// SampleBits derives a uniform n-bit integer, n <= 64.
	SampleBits(n int) uint64
	// CheckWitness absorbs a grinding witness and reports whether the
	// derived bits-bit sample is zero. Subsequent samples are bound to the
	// witness whether the check passes or not.
	CheckWitness(bits int, witness uint64) bool
}

var qUint64 = fr.Modulus().Uint64()

// DuplexChallenger is a BLAKE2b ratchet sponge. Observations accumulate in a
// pending buffer; each sample hashes state || pending into the next state and
// derives its output from the fresh state, so consecutive samples without
// intervening observations still differ.
type DuplexChallenger struct {
	state   [32]byte
	pending []byte
}

// NewChallenger returns a challenger seeded with the given domain separator.
func NewChallenger(domain string) *DuplexChallenger {
	c := &DuplexChallenger{}
	c.state = blake2b.Sum256([]byte(domain))
	return c
}

// Clone returns an independent copy of the challenger in its current state.
// Provers use it to try grinding witnesses without advancing the transcript.
func (c *DuplexChallenger) Clone() *DuplexChallenger {
	cc := &DuplexChallenger{state: c.state}
	cc.pending = append(cc.pending, c.pending...)
	return cc
}

func (c *DuplexChallenger) ObserveScalar(x fr.Element) {
	b := x.Bytes()
	c.pending = append(c.pending, b[:]...)
}

func (c *DuplexChallenger) ObserveScalars(xs []fr.Element) {
	for i := range xs {
		c.ObserveScalar(xs[i])
	}
}

func (c *DuplexChallenger) ObserveExt(x extensions.E4) {
	c.ObserveScalar(x.B0.A0)
	c.ObserveScalar(x.B0.A1)
	c.ObserveScalar(x.B1.A0)
	c.ObserveScalar(x.B1.A1)
}

func (c *DuplexChallenger) ObserveCommitment(digest [32]byte) {
	c.pending = append(c.pending, digest[:]...)
}

// ratchet absorbs the pending observations into the state.
func (c *DuplexChallenger) ratchet() {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(c.state[:])
	h.Write(c.pending)
	copy(c.state[:], h.Sum(nil))
	c.pending = c.pending[:0]
}

func (c *DuplexChallenger) chunk(i int) uint64 {
	return binary.BigEndian.Uint64(c.state[8*i : 8*i+8])
}

func (c *DuplexChallenger) SampleScalar() fr.Element {
	c.ratchet()
	var e fr.Element
	e.SetUint64(c.chunk(0) % qUint64)
	return e
}

func (c *DuplexChallenger) SampleExt() extensions.E4 {
	c.ratchet()
	var e extensions.E4
	e.B0.A0.SetUint64(c.chunk(0) % qUint64)
	e.B0.A1.SetUint64(c.chunk(1) % qUint64)
	e.B1.A0.SetUint64(c.chunk(2) % qUint64)
	e.B1.A1.SetUint64(c.chunk(3) % qUint64)
	return e
}

func (c *DuplexChallenger) SampleBits(n int) uint64 {
	if n < 0 || n > 64 {
		panic("fiatshamir: bit count out of range")
	}
	c.ratchet()
	if n == 64 {
		return c.chunk(0)
	}
	return c.chunk(0) & ((1 << uint(n)) - 1)
}

func (c *DuplexChallenger) CheckWitness(bits int, witness uint64) bool {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], witness)
	c.pending = append(c.pending, b[:]...)
	return c.SampleBits(bits) == 0
}
