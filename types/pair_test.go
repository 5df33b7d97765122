package types

import "testing"

func tok(b byte) TokenId {
	var t TokenId
	t[0] = b
	return t
}

func TestPair_Inverse(t *testing.T) {
	p, err := NewPair(tok(1), tok(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inv := p.Inverse()
	if inv.ID != p.ID {
		t.Fatalf("Inverse must keep the same pair id, got %s want %s", inv.ID, p.ID)
	}
	if inv.Base != p.Quote || inv.Quote != p.Base {
		t.Fatalf("Inverse should swap base/quote, got base=%s quote=%s", inv.Base, inv.Quote)
	}
}

func TestPair_ContainsAndOtherToken(t *testing.T) {
	a, b, c := tok(1), tok(2), tok(3)
	p, err := NewPair(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Contains(a) || !p.Contains(b) {
		t.Fatalf("pair should contain both its tokens")
	}
	if p.Contains(c) {
		t.Fatalf("pair should not contain an unrelated token")
	}
	other, ok := p.OtherToken(a)
	if !ok || other != b {
		t.Fatalf("OtherToken(a) should return b, got %s ok=%v", other, ok)
	}
	if _, ok := p.OtherToken(c); ok {
		t.Fatalf("OtherToken should report false for an unrelated token")
	}
}
