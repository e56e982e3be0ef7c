package fuzzcheck

import (
	"testing"

	"github.com/coregx/redoscope/internal/timeout"
)

func smallParams() Params {
	p := DefaultParams()
	p.PopulationLimit = 5000
	p.AttackLimit = 200000
	p.SeedLimit = 200
	p.MaxIteration = 10
	p.CrossSize = 10
	p.MutateSize = 20
	return p
}

func TestCheckFindsExponentialBlowup(t *testing.T) {
	pat := mustParse(t, "^(a+)+$")
	res, err := Check(pat, smallParams(), NewMathRand(1), timeout.NoTimeout)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res == nil {
		t.Fatalf("expected (a+)+ to yield an attack string")
	}
	if len(res.Runes) > DefaultParams().MaxAttackSize {
		t.Fatalf("attack string exceeds maxAttackSize: %d", len(res.Runes))
	}
}

func TestCheckLeavesLinearPatternSafe(t *testing.T) {
	pat := mustParse(t, "^a*b$")
	res, err := Check(pat, smallParams(), NewMathRand(1), timeout.NoTimeout)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res != nil {
		t.Fatalf("expected a*b not to yield an attack, got %v", res)
	}
}

func TestCheckRejectsUnsupportedConstruct(t *testing.T) {
	pat := mustParse(t, `(a)\1`)
	if _, err := Check(pat, smallParams(), NewMathRand(1), timeout.NoTimeout); err == nil {
		t.Fatalf("expected Check to surface the back-reference compile error")
	}
}

func TestCheckDeterministicGivenFixedSeed(t *testing.T) {
	pat := mustParse(t, "^(a+)+$")
	res1, err := Check(pat, smallParams(), NewMathRand(42), timeout.NoTimeout)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	res2, err := Check(pat, smallParams(), NewMathRand(42), timeout.NoTimeout)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if (res1 == nil) != (res2 == nil) {
		t.Fatalf("expected determinism given a fixed seed: %v vs %v", res1, res2)
	}
	if res1 != nil && string(res1.Runes) != string(res2.Runes) {
		t.Fatalf("expected identical attack strings given a fixed seed")
	}
}
