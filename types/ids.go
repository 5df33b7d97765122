package types

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// TokenId is an opaque 20-byte token identifier. The all-zero value is the
// sentinel for the native asset (spec.md §3). Tokens are compared only for
// equality, never ordered by value except for the canonical base/quote
// sort and the router's deterministic neighbor order, both of which treat
// them as raw byte strings.
type TokenId [20]byte

// NativeToken is the sentinel TokenId denoting the chain's native asset.
var NativeToken TokenId

func (t TokenId) String() string {
	return hex.EncodeToString(t[:])
}

// Less reports whether t sorts lexicographically before other. Used to pick
// the base token of a pair (spec.md §3: "the lexicographically smaller
// token is base").
func (t TokenId) Less(other TokenId) bool {
	for i := range t {
		if t[i] != other[i] {
			return t[i] < other[i]
		}
	}
	return false
}

// Address identifies a trader. Distinct type from TokenId even though both
// are 20 bytes, since the two play unrelated roles in the data model.
type Address [20]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// PairId is the 32-byte digest identifying a trading pair, deterministic
// over the canonically sorted token pair (spec.md §3). Mirrors
// original_source/crates/dex/src/pair.rs's `PairId::from_tokens`, which
// hashes the sorted, concatenated addresses with keccak256; Go computes
// the same digest with golang.org/x/crypto/sha3's Keccak-256.
type PairId [32]byte

func (p PairId) String() string {
	return hex.EncodeToString(p[:])
}

// Less reports whether p sorts lexicographically before other. Used to
// break ties between routes of equal length and equal output (spec.md
// §4.5: "ties broken by shorter path, then by lexicographic pair-id
// sequence").
func (p PairId) Less(other PairId) bool {
	for i := range p {
		if p[i] != other[i] {
			return p[i] < other[i]
		}
	}
	return false
}

// SortTokens returns (base, quote) with base the lexicographically smaller
// token.
func SortTokens(t0, t1 TokenId) (base, quote TokenId) {
	if t0.Less(t1) {
		return t0, t1
	}
	return t1, t0
}

// DerivePairID computes the canonical PairId for an unordered token pair.
// DerivePairID(A,B) == DerivePairID(B,A).
func DerivePairID(t0, t1 TokenId) PairId {
	base, quote := SortTokens(t0, t1)
	h := sha3.NewLegacyKeccak256()
	h.Write(base[:])
	h.Write(quote[:])
	var id PairId
	copy(id[:], h.Sum(nil))
	return id
}

// OrderId is the 32-byte digest identifying an order, deterministic over
// (pair, trader, a per-pair monotonic nonce) per spec.md §3. Unlike PairId
// there is no original_source equivalent (the reference engine uses a bare
// incrementing u64); the digest form is required here because spec.md
// mandates a 32-byte OrderId that two independent implementations must
// compute identically from the same inputs, not merely a counter.
type OrderId [32]byte

func (o OrderId) String() string {
	return hex.EncodeToString(o[:])
}

// DeriveOrderID computes the deterministic OrderId for a (pair, trader,
// nonce) triple.
func DeriveOrderID(pairID PairId, trader Address, nonce uint64) OrderId {
	h := sha3.NewLegacyKeccak256()
	h.Write(pairID[:])
	h.Write(trader[:])
	var nonceBuf [8]byte
	binary.BigEndian.PutUint64(nonceBuf[:], nonce)
	h.Write(nonceBuf[:])
	var id OrderId
	copy(id[:], h.Sum(nil))
	return id
}
