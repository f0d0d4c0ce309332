// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package poly

import (
	"testing"

	"github.com/consensys/gnark-crypto/field/koalabear/extensions"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func genE4() gopter.Gen {
	return func(gp *gopter.GenParameters) *gopter.GenResult {
		var e extensions.E4
		e.MustSetRandom()
		return gopter.NewGenResult(e, gopter.NoShrinker)
	}
}

// evalNaive sums c_i * x^i term by term.
func evalNaive(p UnivariatePolynomial, x *extensions.E4) extensions.E4 {
	var res, pow extensions.E4
	pow.SetOne()
	for i := range p {
		var t extensions.E4
		t.Mul(&p[i], &pow)
		res.Add(&res, &t)
		pow.Mul(&pow, x)
	}
	return res
}

func randomPolynomial(degree int) UnivariatePolynomial {
	p := make(UnivariatePolynomial, degree+1)
	for i := range p {
		p[i].MustSetRandom()
	}
	return p
}

func TestEvalAtMatchesNaive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("horner == naive monomial sum", prop.ForAll(
		func(x extensions.E4, degree int) bool {
			p := randomPolynomial(degree)
			got := p.EvalAt(&x)
			want := evalNaive(p, &x)
			return got.Equal(&want)
		},
		genE4(),
		gen.IntRange(0, 8),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestEvalAtSpecialPoints(t *testing.T) {
	p := randomPolynomial(5)

	var zero, one extensions.E4
	one.SetOne()

	atZero := p.EvalAt(&zero)
	require.True(t, atZero.Equal(&p[0]))

	var sum extensions.E4
	for i := range p {
		sum.Add(&sum, &p[i])
	}
	atOne := p.EvalAt(&one)
	require.True(t, atOne.Equal(&sum))
}

func TestSumOverHypercube(t *testing.T) {
	var zero, one extensions.E4
	one.SetOne()
	for degree := 0; degree <= 6; degree++ {
		p := randomPolynomial(degree)
		var want extensions.E4
		e0 := p.EvalAt(&zero)
		e1 := p.EvalAt(&one)
		want.Add(&e0, &e1)
		got := p.SumOverHypercube()
		require.True(t, got.Equal(&want), "degree %d", degree)
	}
}

func TestInterpolateRoundTrip(t *testing.T) {
	for n := 1; n <= 8; n++ {
		xs := make([]extensions.E4, n)
		ys := make([]extensions.E4, n)
		for i := range xs {
			xs[i].B0.A0.SetUint64(uint64(i))
			ys[i].MustSetRandom()
		}
		p, err := Interpolate(xs, ys)
		require.NoError(t, err)
		require.Len(t, p, n)
		for i := range xs {
			got := p.EvalAt(&xs[i])
			require.True(t, got.Equal(&ys[i]), "n=%d i=%d", n, i)
		}
	}
}

func TestInterpolateRandomAbscissae(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("interpolation hits every sample", prop.ForAll(
		func(seed extensions.E4, n int) bool {
			xs := make([]extensions.E4, n)
			ys := make([]extensions.E4, n)
			// distinct by construction: x_i = seed + i
			for i := range xs {
				var inc extensions.E4
				inc.B0.A0.SetUint64(uint64(i))
				xs[i].Add(&seed, &inc)
				ys[i].MustSetRandom()
			}
			p, err := Interpolate(xs, ys)
			if err != nil {
				return false
			}
			for i := range xs {
				got := p.EvalAt(&xs[i])
				if !got.Equal(&ys[i]) {
					return false
				}
			}
			return true
		},
		genE4(),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestInterpolateDuplicateAbscissa(t *testing.T) {
	var x extensions.E4
	x.MustSetRandom()
	xs := []extensions.E4{x, x}
	ys := make([]extensions.E4, 2)
	ys[0].MustSetRandom()
	ys[1].MustSetRandom()

	_, err := Interpolate(xs, ys)
	require.ErrorIs(t, err, ErrDuplicateAbscissa)
}

func TestInterpolateShapeMismatch(t *testing.T) {
	_, err := Interpolate(nil, nil)
	require.ErrorIs(t, err, ErrInterpolationMismatch)

	xs := make([]extensions.E4, 2)
	ys := make([]extensions.E4, 3)
	_, err = Interpolate(xs, ys)
	require.ErrorIs(t, err, ErrInterpolationMismatch)
}
