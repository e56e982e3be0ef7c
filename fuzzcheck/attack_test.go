package fuzzcheck

import (
	"testing"

	"github.com/coregx/redoscope/internal/timeout"
)

func TestTryAttackFindsWitnessForExponentialPattern(t *testing.T) {
	ctx, err := NewContext(mustParse(t, "^(a+)+$"))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	str := NewFString(
		Element{Kind: Wrap, Char: 'a'},
		Element{Kind: Repeat, M: 1, Size: 1},
		Element{Kind: Wrap, Char: '!'},
	)
	params := smallParams()

	res, ok, err := tryAttack(ctx, str, params, timeout.NoTimeout)
	if err != nil {
		t.Fatalf("tryAttack: %v", err)
	}
	if !ok || res == nil {
		t.Fatalf("expected tryAttack to find a witness for (a+)+")
	}
	if len(res.Runes) > params.MaxAttackSize {
		t.Fatalf("witness exceeds maxAttackSize: %d", len(res.Runes))
	}
}

func TestTryAttackFailsForConstantPattern(t *testing.T) {
	ctx, err := NewContext(mustParse(t, "^abc$"))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	str := NewFString(Element{Kind: Wrap, Char: 'x'})
	_, ok, err := tryAttack(ctx, str, smallParams(), timeout.NoTimeout)
	if err != nil {
		t.Fatalf("tryAttack: %v", err)
	}
	if ok {
		t.Fatalf("expected tryAttack not to find a witness for a constant-time pattern")
	}
}
