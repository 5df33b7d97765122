package types

import (
	"math/big"

	"cosmossdk.io/math"
)

// Amount is an unsigned integer in a token's smallest unit, bounded to 256
// bits. cosmossdk.io/math.Uint is the teacher's numeric type for on-chain
// amounts (see x/orderbook/types/types.go's use of math.LegacyDec); Amount
// generalizes that choice to the exact unsigned integer the engine's
// consensus-critical arithmetic requires.
type Amount = math.Uint

const maxBits = 256

// ZeroAmount returns the additive identity.
func ZeroAmount() Amount {
	return math.ZeroUint()
}

// NewAmount builds an Amount from a uint64.
func NewAmount(v uint64) Amount {
	return math.NewUint(v)
}

// NewAmountFromBigInt builds an Amount from a big.Int, rejecting negative
// values and anything wider than 256 bits.
func NewAmountFromBigInt(v *big.Int) (Amount, error) {
	if v.Sign() < 0 || v.BitLen() > maxBits {
		return Amount{}, ErrOverflow
	}
	return math.NewUintFromBigInt(v), nil
}

// MulDivFloor computes floor(a*b/c), the quote-received-by-a-seller and
// base-received-by-a-buyer rounding rule from spec.md §4.1. The product a*b
// can need up to 512 bits to represent exactly; math/big computes it
// without truncation and the result is re-bound into Amount with an
// explicit 256-bit check (see DESIGN.md for why this isn't done through
// cosmossdk.io/math.Uint directly).
func MulDivFloor(a, b, c Amount) (Amount, error) {
	if c.IsZero() {
		return Amount{}, ErrOverflow
	}
	prod := new(big.Int).Mul(a.BigInt(), b.BigInt())
	q := new(big.Int).Quo(prod, c.BigInt())
	return NewAmountFromBigInt(q)
}

// MulDivCeil computes ceil(a*b/c), the quote-paid-by-a-buyer and
// base-delivered-by-a-seller rounding rule from spec.md §4.1.
func MulDivCeil(a, b, c Amount) (Amount, error) {
	if c.IsZero() {
		return Amount{}, ErrOverflow
	}
	prod := new(big.Int).Mul(a.BigInt(), b.BigInt())
	q, r := new(big.Int).QuoRem(prod, c.BigInt(), new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return NewAmountFromBigInt(q)
}

// MinAmount returns the smaller of a and b.
func MinAmount(a, b Amount) Amount {
	if a.LT(b) {
		return a
	}
	return b
}
