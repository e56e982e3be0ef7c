package enfa

import (
	"unicode"

	"github.com/coregx/redoscope/ast"
	"github.com/coregx/redoscope/charset"
)

// alphabetBound is the exclusive upper bound of the pattern's alphabet:
// the BMP under Annex B semantics, the full Unicode range under the 'u'
// flag (spec.md §3's IntervalSet.Complement bound).
func alphabetBound(unicodeFlag bool) charset.UChar {
	if unicodeFlag {
		return charset.MaxUChar + 1
	}
	return charset.MaxBMP
}

func selectFold(flags ast.FlagSet) charset.CaseFold {
	switch {
	case !flags.IgnoreCase:
		return charset.Identity
	case flags.Unicode:
		return charset.SimpleFold
	default:
		return charset.LegacyUppercase
	}
}

// BuildAlphabet walks the whole pattern once, collecting every character
// atom it references into a single ICharSet refinement — the "alphabet
// refinement" of spec.md §3, built once per analysis and shared read-only
// between the automaton and fuzz paths (§3 "Lifecycles").
func BuildAlphabet(p *ast.Pattern) *charset.ICharSet {
	bound := alphabetBound(p.Flags.Unicode)
	set := charset.NewICharSet()
	set.Add(charset.IChar{Set: charset.Of(charset.Interval{Lo: 0, Hi: bound})})

	fold := selectFold(p.Flags)
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for _, sub := range rawSubAtoms(n, p.Flags, bound) {
			if p.Flags.IgnoreCase {
				sub = sub.Canonicalize(fold)
			}
			set.Add(sub)
		}
		switch v := n.(type) {
		case *ast.Disjunction:
			for _, a := range v.Alternatives {
				walk(a)
			}
		case *ast.Sequence:
			for _, it := range v.Items {
				walk(it)
			}
		case *ast.Capture:
			walk(v.Child)
		case *ast.NamedCapture:
			walk(v.Child)
		case *ast.Group:
			walk(v.Child)
		case *ast.Star:
			walk(v.Child)
		case *ast.Plus:
			walk(v.Child)
		case *ast.Question:
			walk(v.Child)
		case *ast.Repeat:
			walk(v.Child)
		case *ast.LookAhead:
			walk(v.Child)
		case *ast.LookBehind:
			walk(v.Child)
		}
	}
	walk(p.Root)
	return set
}

// rawSubAtoms returns the positively-classified character pieces a single
// atom node contributes to the alphabet. Outer negation (CharacterClass's
// Invert, UnicodeProperty's Invert) is applied later, at Consume-transition
// construction time, against the fully refined alphabet — never here —
// so the refinement itself only ever grows from positive pieces.
func rawSubAtoms(n ast.Node, flags ast.FlagSet, bound charset.UChar) []charset.IChar {
	switch v := n.(type) {
	case *ast.Character:
		c := charset.UChar(v.Char)
		return []charset.IChar{{
			Set:            charset.Single(c),
			LineTerminator: charset.IsLineTerminator(c),
			Word:           charset.IsWordChar(c),
		}}
	case *ast.Dot:
		full := charset.Of(charset.Interval{Lo: 0, Hi: bound})
		if flags.DotAll {
			return []charset.IChar{{Set: full}}
		}
		return []charset.IChar{{Set: full.Difference(lineTerminatorSet())}}
	case *ast.CharacterClass:
		var out []charset.IChar
		for _, r := range v.Ranges {
			out = append(out, charset.IChar{Set: charset.Of(charset.Interval{Lo: charset.UChar(r.Lo), Hi: charset.UChar(r.Hi) + 1})})
		}
		for _, e := range v.Escapes {
			out = append(out, escapeClassIChar(e, bound))
		}
		return out
	case *ast.SimpleEscapeClass:
		return []charset.IChar{escapeClassIChar(v.Kind, bound)}
	case *ast.UnicodeProperty:
		return []charset.IChar{{Set: unicodePropertySet(v.Name, v.Value, bound)}}
	default:
		return nil
	}
}

// AtomSet computes the character set a single atom node matches, with
// case-folding and class negation already applied — the same per-node
// logic compileAtom uses to build a Consume transition's atoms, exposed
// so other packages compiling their own bytecode from the same AST (the
// fuzz checker's VM IR) don't need to re-derive it.
func AtomSet(n ast.Node, flags ast.FlagSet, bound charset.UChar) charset.IntervalSet {
	fold := selectFold(flags)
	var union charset.IntervalSet
	for _, sub := range rawSubAtoms(n, flags, bound) {
		if flags.IgnoreCase {
			sub = sub.Canonicalize(fold)
		}
		union = union.Union(sub.Set)
	}
	if invertedAtom(n) {
		full := charset.Of(charset.Interval{Lo: 0, Hi: bound})
		return full.Difference(union)
	}
	return union
}

func lineTerminatorSet() charset.IntervalSet {
	return charset.Of(
		charset.Interval{Lo: '\n', Hi: '\n' + 1},
		charset.Interval{Lo: '\r', Hi: '\r' + 1},
		charset.Interval{Lo: 0x2028, Hi: 0x2029},
		charset.Interval{Lo: 0x2029, Hi: 0x202A},
	)
}

func escapeClassIChar(kind ast.EscapeClassKind, bound charset.UChar) charset.IChar {
	digits := charset.Of(charset.Interval{Lo: '0', Hi: '9' + 1})
	word := charset.Of(
		charset.Interval{Lo: '0', Hi: '9' + 1},
		charset.Interval{Lo: 'A', Hi: 'Z' + 1},
		charset.Interval{Lo: 'a', Hi: 'z' + 1},
		charset.Interval{Lo: '_', Hi: '_' + 1},
	)
	space := charset.Of(
		charset.Interval{Lo: '\t', Hi: '\r' + 1},
		charset.Interval{Lo: ' ', Hi: ' ' + 1},
		charset.Interval{Lo: 0x00A0, Hi: 0x00A1},
		charset.Interval{Lo: 0x1680, Hi: 0x1681},
		charset.Interval{Lo: 0x2000, Hi: 0x200B},
		charset.Interval{Lo: 0x2028, Hi: 0x202A},
		charset.Interval{Lo: 0x202F, Hi: 0x2030},
		charset.Interval{Lo: 0x205F, Hi: 0x2060},
		charset.Interval{Lo: 0x3000, Hi: 0x3001},
		charset.Interval{Lo: 0xFEFF, Hi: 0xFF00},
	)
	full := charset.Of(charset.Interval{Lo: 0, Hi: bound})

	switch kind {
	case ast.EscapeDigit:
		return charset.IChar{Set: digits}
	case ast.EscapeNotDigit:
		return charset.IChar{Set: full.Difference(digits)}
	case ast.EscapeWord:
		return charset.IChar{Set: word, Word: true}
	case ast.EscapeNotWord:
		return charset.IChar{Set: full.Difference(word)}
	case ast.EscapeSpace:
		return charset.IChar{Set: space}
	case ast.EscapeNotSpace:
		return charset.IChar{Set: full.Difference(space)}
	default:
		return charset.IChar{}
	}
}

// unicodePropertySet resolves \p{Name} / \p{Name=Value} against the
// standard library's unicode tables — the "generated at build time from
// canonical Unicode data files" collaborator spec.md §9 calls for, without
// this analyzer maintaining its own copy of those tables.
func unicodePropertySet(name, value string, bound charset.UChar) charset.IntervalSet {
	lookup := name
	if value != "" {
		lookup = value
	}
	if tab, ok := unicode.Categories[lookup]; ok {
		return rangeTableToIntervalSet(tab, bound)
	}
	if tab, ok := unicode.Scripts[lookup]; ok {
		return rangeTableToIntervalSet(tab, bound)
	}
	if tab, ok := unicode.Properties[lookup]; ok {
		return rangeTableToIntervalSet(tab, bound)
	}
	return charset.IntervalSet{}
}

func rangeTableToIntervalSet(tab *unicode.RangeTable, bound charset.UChar) charset.IntervalSet {
	var out []charset.Interval
	for _, r16 := range tab.R16 {
		lo, hi := charset.UChar(r16.Lo), charset.UChar(r16.Hi)+1
		if lo >= bound {
			continue
		}
		if hi > bound {
			hi = bound
		}
		out = append(out, expandStride(lo, hi, charset.UChar(r16.Stride))...)
	}
	for _, r32 := range tab.R32 {
		lo, hi := charset.UChar(r32.Lo), charset.UChar(r32.Hi)+1
		if lo >= bound {
			continue
		}
		if hi > bound {
			hi = bound
		}
		out = append(out, expandStride(lo, hi, charset.UChar(r32.Stride))...)
	}
	return charset.Of(out...)
}

// expandStride turns a strided Unicode range into individual single-point
// intervals when the stride skips code points (rare but present in a few
// script tables); a stride of 1 stays a single interval.
func expandStride(lo, hi, stride charset.UChar) []charset.Interval {
	if stride <= 1 {
		return []charset.Interval{{Lo: lo, Hi: hi}}
	}
	var out []charset.Interval
	for c := lo; c < hi; c += stride {
		out = append(out, charset.Interval{Lo: c, Hi: c + 1})
	}
	return out
}
