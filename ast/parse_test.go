package ast

import "testing"

func mustParse(t *testing.T, src string, flags FlagSet) *Pattern {
	t.Helper()
	p, err := Parse(src, flags)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return p
}

func TestParseLiteralSequence(t *testing.T) {
	p := mustParse(t, "abc", FlagSet{})
	seq, ok := p.Root.(*Sequence)
	if !ok || len(seq.Items) != 3 {
		t.Fatalf("expected 3-item sequence, got %#v", p.Root)
	}
}

func TestParseDisjunction(t *testing.T) {
	p := mustParse(t, "a|a", FlagSet{})
	d, ok := p.Root.(*Disjunction)
	if !ok || len(d.Alternatives) != 2 {
		t.Fatalf("expected 2-way disjunction, got %#v", p.Root)
	}
}

func TestParseAnchoredStarGroup(t *testing.T) {
	// ^(a*)*$
	p := mustParse(t, "^(a*)*$", FlagSet{})
	seq, ok := p.Root.(*Sequence)
	if !ok || len(seq.Items) != 3 {
		t.Fatalf("expected [^, (a*)*, $], got %#v", p.Root)
	}
	if _, ok := seq.Items[0].(*LineBegin); !ok {
		t.Fatalf("expected leading ^, got %#v", seq.Items[0])
	}
	if _, ok := seq.Items[2].(*LineEnd); !ok {
		t.Fatalf("expected trailing $, got %#v", seq.Items[2])
	}
	outer, ok := seq.Items[1].(*Star)
	if !ok {
		t.Fatalf("expected outer star, got %#v", seq.Items[1])
	}
	cap, ok := outer.Child.(*Capture)
	if !ok {
		t.Fatalf("expected capture child, got %#v", outer.Child)
	}
	if _, ok := cap.Child.(*Star); !ok {
		t.Fatalf("expected inner star, got %#v", cap.Child)
	}
	if !p.HasLineBeginAtBegin() || !p.HasLineEndAtEnd() {
		t.Fatalf("expected anchored-at-both-ends pattern")
	}
	if p.IsConstant() {
		t.Fatalf("pattern with unbounded star should not be constant")
	}
}

func TestParseBoundedRepeat(t *testing.T) {
	p := mustParse(t, "a{3,5}", FlagSet{})
	rep, ok := p.Root.(*Repeat)
	if !ok {
		t.Fatalf("expected Repeat, got %#v", p.Root)
	}
	if rep.Min != 3 || rep.Max.Unbounded || rep.Max.N != 5 {
		t.Fatalf("unexpected repeat bounds: %+v", rep)
	}
	if !p.IsConstant() {
		t.Fatalf("bounded repeat should be constant")
	}
}

func TestParseUnboundedRepeat(t *testing.T) {
	p := mustParse(t, "a{2,}", FlagSet{})
	rep, ok := p.Root.(*Repeat)
	if !ok || !rep.Max.Unbounded {
		t.Fatalf("expected unbounded repeat, got %#v", p.Root)
	}
}

func TestParseRepeatOutOfOrderIsSyntaxError(t *testing.T) {
	_, err := Parse("a{5,3}", FlagSet{})
	if err == nil {
		t.Fatalf("expected a syntax error for out-of-order bounds")
	}
}

func TestParseCharacterClass(t *testing.T) {
	p := mustParse(t, "[a-z0-9_]", FlagSet{})
	cc, ok := p.Root.(*CharacterClass)
	if !ok {
		t.Fatalf("expected CharacterClass, got %#v", p.Root)
	}
	if cc.Invert {
		t.Fatalf("expected non-inverted class")
	}
	if len(cc.Ranges) != 3 {
		t.Fatalf("expected 3 ranges, got %+v", cc.Ranges)
	}
}

func TestParseNegatedEscapeClassInClass(t *testing.T) {
	p := mustParse(t, "[^\\d\\s]", FlagSet{})
	cc, ok := p.Root.(*CharacterClass)
	if !ok || !cc.Invert || len(cc.Escapes) != 2 {
		t.Fatalf("unexpected class: %#v", p.Root)
	}
}

func TestParseNamedCaptureAndBackReference(t *testing.T) {
	p := mustParse(t, "(?<x>a)\\k<x>", FlagSet{})
	seq, ok := p.Root.(*Sequence)
	if !ok || len(seq.Items) != 2 {
		t.Fatalf("expected 2-item sequence, got %#v", p.Root)
	}
	nc, ok := seq.Items[0].(*NamedCapture)
	if !ok || nc.Name != "x" {
		t.Fatalf("expected named capture x, got %#v", seq.Items[0])
	}
	ref, ok := seq.Items[1].(*NamedBackReference)
	if !ok || ref.Name != "x" {
		t.Fatalf("expected named backreference x, got %#v", seq.Items[1])
	}
}

func TestParseLookaheadFollowedByAtomIsTwoItemSequence(t *testing.T) {
	// tryParseAssertion returns a lookaround as a finished term, so a
	// lookahead followed by an atom parses as a two-item sequence whose
	// first item is the LookAhead itself.
	p := mustParse(t, "(?=a)b", FlagSet{})
	seq, ok := p.Root.(*Sequence)
	if !ok || len(seq.Items) != 2 {
		t.Fatalf("expected [lookahead, b], got %#v", p.Root)
	}
	if _, ok := seq.Items[0].(*LookAhead); !ok {
		t.Fatalf("expected LookAhead, got %#v", seq.Items[0])
	}
}

func TestParseUnicodePropertyEscape(t *testing.T) {
	p := mustParse(t, "\\p{Letter}", FlagSet{Unicode: true})
	up, ok := p.Root.(*UnicodeProperty)
	if !ok || up.Invert || up.Name != "Letter" {
		t.Fatalf("unexpected node: %#v", p.Root)
	}
}

func TestSizeCountsNodes(t *testing.T) {
	p := mustParse(t, "ab", FlagSet{})
	if got := p.Size(); got != 3 { // Sequence + 2 Characters
		t.Fatalf("expected size 3, got %d", got)
	}
}

func TestRepeatCountSumsAcrossTree(t *testing.T) {
	p := mustParse(t, "a*a{2,4}(b+)", FlagSet{})
	if got := RepeatCount(p.Root); got != 1+4+1 {
		t.Fatalf("expected repeat count 6, got %d", got)
	}
}
