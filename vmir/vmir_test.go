package vmir

import (
	"testing"

	"github.com/coregx/redoscope/ast"
)

func mustCompile(t *testing.T, src string) *Program {
	t.Helper()
	flags, err := ast.ParseFlags("")
	if err != nil {
		t.Fatal(err)
	}
	p, err := ast.Parse(src, flags)
	if err != nil {
		t.Fatalf("ast.Parse(%q): %v", src, err)
	}
	prog, err := Compile(p)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return prog
}

func runMatch(t *testing.T, prog *Program, input string) bool {
	t.Helper()
	m := NewMachine(prog, []rune(input))
	ok, err := m.Execute(0, 0, NewLimitTracer(1<<20))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return ok
}

func TestCompileLiteralMatches(t *testing.T) {
	prog := mustCompile(t, "^abc$")
	if !runMatch(t, prog, "abc") {
		t.Fatalf("expected abc to match")
	}
	if runMatch(t, prog, "abd") {
		t.Fatalf("expected abd not to match")
	}
}

func TestCompileUnanchoredSearchesAnywhere(t *testing.T) {
	prog := mustCompile(t, "abc")
	if !runMatch(t, prog, "xxabcyy") {
		t.Fatalf("expected unanchored abc to match within a larger string")
	}
}

func TestCompileStarGreedyConsumesAll(t *testing.T) {
	prog := mustCompile(t, "^a*b$")
	if !runMatch(t, prog, "aaaab") {
		t.Fatalf("expected a*b to match aaaab")
	}
	if runMatch(t, prog, "aaac") {
		t.Fatalf("expected a*b not to match aaac")
	}
}

func TestCompilePlusRequiresOne(t *testing.T) {
	prog := mustCompile(t, "^a+$")
	if runMatch(t, prog, "") {
		t.Fatalf("expected a+ not to match empty string")
	}
	if !runMatch(t, prog, "aaa") {
		t.Fatalf("expected a+ to match aaa")
	}
}

func TestCompileQuestionOptional(t *testing.T) {
	prog := mustCompile(t, "^colou?r$")
	if !runMatch(t, prog, "color") || !runMatch(t, prog, "colour") {
		t.Fatalf("expected colou?r to match both spellings")
	}
}

func TestCompileBoundedRepeatExactCount(t *testing.T) {
	prog := mustCompile(t, "^a{3}$")
	if runMatch(t, prog, "aa") || !runMatch(t, prog, "aaa") || runMatch(t, prog, "aaaa") {
		t.Fatalf("expected a{3} to match exactly 3 a's")
	}
}

func TestCompileBoundedRepeatRange(t *testing.T) {
	prog := mustCompile(t, "^a{2,4}$")
	if runMatch(t, prog, "a") {
		t.Fatalf("expected a{2,4} not to match a single a")
	}
	if !runMatch(t, prog, "aaa") {
		t.Fatalf("expected a{2,4} to match aaa")
	}
	if runMatch(t, prog, "aaaaa") {
		t.Fatalf("expected a{2,4} not to match aaaaa")
	}
}

func TestCompileBoundedRepeatUnboundedMax(t *testing.T) {
	prog := mustCompile(t, "^a{2,}$")
	if runMatch(t, prog, "a") {
		t.Fatalf("expected a{2,} not to match a single a")
	}
	if !runMatch(t, prog, "aaaaaa") {
		t.Fatalf("expected a{2,} to match many a's")
	}
}

func TestCompileDisjunctionTriesAlternatives(t *testing.T) {
	prog := mustCompile(t, "^(cat|dog|bird)$")
	for _, s := range []string{"cat", "dog", "bird"} {
		if !runMatch(t, prog, s) {
			t.Fatalf("expected %q to match", s)
		}
	}
	if runMatch(t, prog, "fish") {
		t.Fatalf("expected fish not to match")
	}
}

func TestCompileCapturesTrackPositions(t *testing.T) {
	prog := mustCompile(t, "^(a+)(b+)$")
	m := NewMachine(prog, []rune("aaabb"))
	ok, err := m.Execute(0, 0, NewLimitTracer(1<<20))
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
}

func TestCompileWordBoundary(t *testing.T) {
	prog := mustCompile(t, `\bcat\b`)
	if !runMatch(t, prog, "a cat sat") {
		t.Fatalf("expected word-boundary cat to match")
	}
	if runMatch(t, prog, "concatenate") {
		t.Fatalf("expected word-boundary cat not to match inside concatenate")
	}
}

func TestCompileLookAhead(t *testing.T) {
	prog := mustCompile(t, "^foo(?=bar)")
	if !runMatch(t, prog, "foobar") {
		t.Fatalf("expected foo(?=bar) to match foobar")
	}
	if runMatch(t, prog, "foobaz") {
		t.Fatalf("expected foo(?=bar) not to match foobaz")
	}
}

func TestCompileNegativeLookAhead(t *testing.T) {
	prog := mustCompile(t, "^foo(?!bar)")
	if runMatch(t, prog, "foobar") {
		t.Fatalf("expected foo(?!bar) not to match foobar")
	}
	if !runMatch(t, prog, "foobaz") {
		t.Fatalf("expected foo(?!bar) to match foobaz")
	}
}

func TestCompileLookBehind(t *testing.T) {
	prog := mustCompile(t, "(?<=foo)bar$")
	if !runMatch(t, prog, "foobar") {
		t.Fatalf("expected (?<=foo)bar to match foobar")
	}
	if runMatch(t, prog, "bazbar") {
		t.Fatalf("expected (?<=foo)bar not to match bazbar")
	}
}

func TestCompileBackReferenceUnsupported(t *testing.T) {
	flags, err := ast.ParseFlags("")
	if err != nil {
		t.Fatal(err)
	}
	p, err := ast.Parse(`(a)\1`, flags)
	if err != nil {
		t.Fatalf("ast.Parse: %v", err)
	}
	if _, err := Compile(p); err == nil {
		t.Fatalf("expected Compile to reject a back-reference")
	}
}

func TestCatastrophicPatternExhaustsLimitTracer(t *testing.T) {
	prog := mustCompile(t, "^(a+)+$")
	m := NewMachine(prog, []rune(nonMatchingPump(24)))
	_, err := m.Execute(0, 0, NewLimitTracer(50000))
	if err == nil {
		t.Fatalf("expected (a+)+ against a long non-matching pump to exceed the step limit")
	}
	if _, ok := err.(*LimitError); !ok {
		t.Fatalf("expected a *LimitError, got %T", err)
	}
}

func nonMatchingPump(n int) string {
	s := make([]byte, n+1)
	for i := 0; i < n; i++ {
		s[i] = 'a'
	}
	s[n] = '!'
	return string(s)
}

func TestFuzzTracerTracksCoverageAndRate(t *testing.T) {
	prog := mustCompile(t, "^a*b$")
	m := NewMachine(prog, []rune("aaab"))
	tracer := NewFuzzTracer(10000, 4)
	ok, err := m.Execute(0, 0, tracer)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	if len(tracer.Coverage()) == 0 {
		t.Fatalf("expected non-empty coverage")
	}
	if tracer.Rate() <= 0 {
		t.Fatalf("expected a positive rate, got %v", tracer.Rate())
	}
}
