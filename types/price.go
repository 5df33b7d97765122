package types

import (
	"fmt"
	"math/big"
)

// Price is a positive rational (quote units per base unit) stored as an
// explicit (Num, Denom) pair. Prices are never reduced by GCD: two prices
// with different representations of the same ratio are distinct values
// that compare equal (spec.md §3). This mirrors the reference engine's
// `Price { numerator, denominator }` in original_source/crates/dex/src/types.rs,
// generalized from its saturating-arithmetic style to the engine's
// explicit-overflow contract.
type Price struct {
	Num   Amount
	Denom Amount
}

// NewPrice builds a Price, rejecting a zero numerator or denominator.
func NewPrice(num, denom Amount) (Price, error) {
	if num.IsZero() || denom.IsZero() {
		return Price{}, ErrInvalidPrice
	}
	return Price{Num: num, Denom: denom}, nil
}

// Valid reports whether the price has strictly positive numerator and
// denominator.
func (p Price) Valid() bool {
	return !p.Num.IsZero() && !p.Denom.IsZero()
}

// Cmp compares two prices by cross-multiplication: p < q iff
// p.Num*q.Denom < q.Num*p.Denom. The 512-bit-capable intermediate is a
// math/big product; the price ordering never normalizes by GCD so this is
// the only sound way to compare two differently-represented rationals.
// Returns -1, 0, or 1 the way big.Int.Cmp does.
func (p Price) Cmp(q Price) int {
	lhs := new(big.Int).Mul(p.Num.BigInt(), q.Denom.BigInt())
	rhs := new(big.Int).Mul(q.Num.BigInt(), p.Denom.BigInt())
	return lhs.Cmp(rhs)
}

// LT reports whether p < q.
func (p Price) LT(q Price) bool { return p.Cmp(q) < 0 }

// LTE reports whether p <= q.
func (p Price) LTE(q Price) bool { return p.Cmp(q) <= 0 }

// GT reports whether p > q.
func (p Price) GT(q Price) bool { return p.Cmp(q) > 0 }

// GTE reports whether p >= q.
func (p Price) GTE(q Price) bool { return p.Cmp(q) >= 0 }

// Equal reports whether p and q represent the same ratio.
func (p Price) Equal(q Price) bool { return p.Cmp(q) == 0 }

func (p Price) String() string {
	return fmt.Sprintf("%s/%s", p.Num.String(), p.Denom.String())
}
