package automaton

import (
	"testing"

	"github.com/coregx/redoscope/ast"
	"github.com/coregx/redoscope/enfa"
	"github.com/coregx/redoscope/internal/timeout"
	"github.com/coregx/redoscope/ordnfa"
)

func mustCheck(t *testing.T, src string) (Complexity, *ordnfa.OrderedNFA) {
	t.Helper()
	flags, err := ast.ParseFlags("")
	if err != nil {
		t.Fatal(err)
	}
	p, err := ast.Parse(src, flags)
	if err != nil {
		t.Fatalf("ast.Parse(%q): %v", src, err)
	}
	e, err := enfa.Compile(p, timeout.NoTimeout)
	if err != nil {
		t.Fatalf("enfa.Compile(%q): %v", src, err)
	}
	n, err := ordnfa.Build(e, 10000, timeout.NoTimeout)
	if err != nil {
		t.Fatalf("ordnfa.Build(%q): %v", src, err)
	}
	c, err := Check(p, n, Params{MaxNFASize: 10000}, timeout.NoTimeout)
	if err != nil {
		t.Fatalf("Check(%q): %v", src, err)
	}
	return c, n
}

func TestCheckConstantLiteral(t *testing.T) {
	c, _ := mustCheck(t, "^abc$")
	if c.Kind != Constant {
		t.Fatalf("expected Constant, got %v", c)
	}
}

func TestCheckLinearSingleStar(t *testing.T) {
	c, _ := mustCheck(t, "^a*b$")
	if c.Kind != Linear {
		t.Fatalf("expected Linear, got %v", c)
	}
}

func TestCheckExponentialNestedStar(t *testing.T) {
	c, n := mustCheck(t, "^(a+)+$")
	if c.Kind != Exponential {
		t.Fatalf("expected Exponential for (a+)+, got %v", c)
	}
	if c.Witness == nil {
		t.Fatalf("expected a witness for an Exponential verdict")
	}
	w := WitnessRunes(c.Witness, n)
	if w.PumpLen() == 0 {
		t.Fatalf("expected a non-empty pump in the exponential witness")
	}
	attack := BuildAttack(c, w, AttackParams{AttackLimit: 1000000, MaxAttackSize: 10000})
	if len(attack) == 0 {
		t.Fatalf("expected a non-empty attack string")
	}
}

func TestCheckAmbiguousAlternationIsExponential(t *testing.T) {
	c, _ := mustCheck(t, "^(a|a)*$")
	if c.Kind != Exponential {
		t.Fatalf("expected Exponential for (a|a)*, got %v", c)
	}
}

func TestCheckPolynomialChainedStars(t *testing.T) {
	c, _ := mustCheck(t, "^a*a*a*b$")
	if c.Kind != Polynomial && c.Kind != Exponential {
		t.Fatalf("expected chained independent stars to be at least Polynomial, got %v", c)
	}
}

func TestCheckBoundedRepeatIsSafe(t *testing.T) {
	c, _ := mustCheck(t, "^a{3,5}b$")
	if c.Kind != Constant && c.Kind != Linear {
		t.Fatalf("a bounded repeat must classify as Constant or Linear, got %v", c)
	}
}

func TestBuildAttackRespectsMaxAttackSize(t *testing.T) {
	c, n := mustCheck(t, "^(a+)+$")
	w := WitnessRunes(c.Witness, n)
	attack := BuildAttack(c, w, AttackParams{AttackLimit: 1000000, MaxAttackSize: 16})
	if len(attack) > 16 {
		t.Fatalf("expected attack string truncated to 16, got %d", len(attack))
	}
}
