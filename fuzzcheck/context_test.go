package fuzzcheck

import (
	"testing"

	"github.com/coregx/redoscope/ast"
)

func mustParse(t *testing.T, src string) *ast.Pattern {
	t.Helper()
	flags, err := ast.ParseFlags("")
	if err != nil {
		t.Fatal(err)
	}
	p, err := ast.Parse(src, flags)
	if err != nil {
		t.Fatalf("ast.Parse(%q): %v", src, err)
	}
	return p
}

func TestNewContextExtractsLiteralParts(t *testing.T) {
	ctx, err := NewContext(mustParse(t, "^foo(bar|baz)$"))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	found := map[string]bool{}
	for _, p := range ctx.Parts {
		found[string(p)] = true
	}
	for _, want := range []string{"foo", "bar", "baz"} {
		if !found[want] {
			t.Fatalf("expected parts to include %q, got %v", want, ctx.Parts)
		}
	}
}

func TestNewContextDerivesNonEmptyAlphabet(t *testing.T) {
	ctx, err := NewContext(mustParse(t, "^a+b+$"))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if len(ctx.Alphabet) == 0 {
		t.Fatalf("expected a non-empty alphabet")
	}
}

func TestNewContextRejectsBackReference(t *testing.T) {
	if _, err := NewContext(mustParse(t, `(a)\1`)); err == nil {
		t.Fatalf("expected NewContext to reject a back-reference pattern")
	}
}

func TestPartsCoveredMatchesLiteralSubstring(t *testing.T) {
	ctx, err := NewContext(mustParse(t, "^a*foo$"))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if !ctx.PartsCovered([]rune("xxfooyy")) {
		t.Fatalf("expected PartsCovered to detect the literal part foo")
	}
	if ctx.PartsCovered([]rune("xxxxxx")) {
		t.Fatalf("expected PartsCovered to reject text without any literal part")
	}
}
