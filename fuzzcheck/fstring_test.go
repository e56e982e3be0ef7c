package fuzzcheck

import "testing"

func TestFStringToRunesPlainWrap(t *testing.T) {
	f := NewFString(Element{Kind: Wrap, Char: 'a'}, Element{Kind: Wrap, Char: 'b'})
	if got := string(f.ToRunes()); got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
}

func TestFStringToRunesRepeatsPrecedingBlock(t *testing.T) {
	// "a" followed by Repeat(m=1, size=1): one extra copy of "a" at N=1.
	f := NewFString(
		Element{Kind: Wrap, Char: 'a'},
		Element{Kind: Repeat, M: 1, Size: 1},
	)
	if got := string(f.ToRunes()); got != "aa" {
		t.Fatalf("got %q, want %q", got, "aa")
	}
}

func TestFStringMapNScalesRepeatCount(t *testing.T) {
	f := NewFString(
		Element{Kind: Wrap, Char: 'a'},
		Element{Kind: Repeat, M: 1, Size: 1},
	)
	scaled := f.MapN(func(int) int { return 5 })
	// 1 original 'a' + 5*1 repeated copies = 6 a's.
	if got := string(scaled.ToRunes()); got != "aaaaaa" {
		t.Fatalf("got %q, want 6 a's", got)
	}
	// MapN must not mutate the receiver.
	if got := string(f.ToRunes()); got != "aa" {
		t.Fatalf("original mutated: got %q", got)
	}
}

func TestFStringInsertReplaceDelete(t *testing.T) {
	f := NewFString(Element{Kind: Wrap, Char: 'a'}, Element{Kind: Wrap, Char: 'c'})
	f = f.InsertAt(1, Element{Kind: Wrap, Char: 'b'})
	if got := string(f.ToRunes()); got != "abc" {
		t.Fatalf("InsertAt: got %q", got)
	}
	f = f.ReplaceAt(1, Element{Kind: Wrap, Char: 'x'})
	if got := string(f.ToRunes()); got != "axc" {
		t.Fatalf("ReplaceAt: got %q", got)
	}
	f = f.Delete(1, 1)
	if got := string(f.ToRunes()); got != "ac" {
		t.Fatalf("Delete: got %q", got)
	}
}

func TestFStringCrossSwapsTails(t *testing.T) {
	a := NewFString(Element{Kind: Wrap, Char: 'a'}, Element{Kind: Wrap, Char: 'b'})
	b := NewFString(Element{Kind: Wrap, Char: 'x'}, Element{Kind: Wrap, Char: 'y'})
	c1, c2 := a.Cross(b, 1, 1)
	if got := string(c1.ToRunes()); got != "ay" {
		t.Fatalf("c1: got %q, want %q", got, "ay")
	}
	if got := string(c2.ToRunes()); got != "xb" {
		t.Fatalf("c2: got %q, want %q", got, "xb")
	}
}

func TestFStringIsConstant(t *testing.T) {
	if !NewFString(Element{Kind: Wrap, Char: 'a'}).IsConstant() {
		t.Fatalf("expected a plain wrap sequence to be constant")
	}
	if NewFString(Element{Kind: Wrap, Char: 'a'}, Element{Kind: Repeat, M: 1, Size: 1}).IsConstant() {
		t.Fatalf("expected a sequence with a Repeat element not to be constant")
	}
}
