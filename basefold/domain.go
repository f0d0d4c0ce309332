// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package basefold

import (
	"math/big"

	fr "github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/extensions"

	"github.com/consensys/polyiop/internal/utils"
)

// maxTwoAdicity is the 2-adicity of the multiplicative group: p-1 = 2^24 * 127.
const maxTwoAdicity = 24

// twoAdicGenerators[m] generates the subgroup of order 2^m.
var twoAdicGenerators [maxTwoAdicity + 1]fr.Element

var twoInv fr.Element

func init() {
	// 3 generates the full multiplicative group
	var g fr.Element
	g.SetUint64(3)
	twoAdicGenerators[maxTwoAdicity].Exp(g, big.NewInt(127))
	for m := maxTwoAdicity - 1; m >= 0; m-- {
		twoAdicGenerators[m].Square(&twoAdicGenerators[m+1])
	}

	twoInv.SetUint64(2)
	twoInv.Inverse(&twoInv)
}

// pairCoordinate returns the evaluation coordinate x of pair p in a codeword
// of size 2^m laid out in bit-reversed order: the two siblings of the pair
// evaluate the folded polynomial at +x and -x.
func pairCoordinate(m int, pair uint64) fr.Element {
	var x fr.Element
	e := utils.BitReverse(pair, m-1)
	x.Exp(twoAdicGenerators[m], new(big.Int).SetUint64(e))
	return x
}

// foldPair interpolates the degree-1 polynomial through (x, u0) and (-x, u1)
// at beta: the value of the beta-folded codeword at the pair's position.
func foldPair(u0, u1 extensions.E4, x fr.Element, beta *extensions.E4) extensions.E4 {
	var even, odd extensions.E4
	even.Add(&u0, &u1)
	even.MulByElement(&even, &twoInv)

	var denom fr.Element
	denom.Double(&x)
	denom.Inverse(&denom)
	odd.Sub(&u0, &u1)
	odd.MulByElement(&odd, &denom)
	odd.Mul(&odd, beta)

	even.Add(&even, &odd)
	return even
}

// e4FromLimbs rebuilds an extension element from its four base-field limbs.
func e4FromLimbs(limbs []fr.Element) extensions.E4 {
	var e extensions.E4
	e.B0.A0 = limbs[0]
	e.B0.A1 = limbs[1]
	e.B1.A0 = limbs[2]
	e.B1.A1 = limbs[3]
	return e
}

// e4Limbs is the inverse of e4FromLimbs.
func e4Limbs(e *extensions.E4) [4]fr.Element {
	return [4]fr.Element{e.B0.A0, e.B0.A1, e.B1.A0, e.B1.A1}
}
