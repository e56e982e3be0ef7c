package charset

// IChar is an interval set carrying two orthogonal flags used by the ε-NFA
// compiler's assertion transitions: whether every code point in the set is a
// line terminator (for ^/$ with the multiline flag) and whether every code
// point is an ECMA-262 "word" character (for \b/\B).
type IChar struct {
	Set            IntervalSet
	LineTerminator bool
	Word           bool
}

// NewIChar wraps an IntervalSet with its line-terminator/word classification.
func NewIChar(set IntervalSet, lineTerminator, word bool) IChar {
	return IChar{Set: set, LineTerminator: lineTerminator, Word: word}
}

// IsEmpty reports whether the underlying set has no code points.
func (c IChar) IsEmpty() bool { return c.Set.IsEmpty() }

// Intersect returns the intersection of two IChars. The result's flags are
// the logical AND of the operands' flags — an atom that is only partially
// covered by a line-terminator set is not itself a line-terminator set.
func (c IChar) Intersect(other IChar) IChar {
	return IChar{
		Set:            c.Set.Intersect(other.Set),
		LineTerminator: c.LineTerminator && other.LineTerminator,
		Word:           c.Word && other.Word,
	}
}

// Difference returns c ∖ other, preserving c's flags (the remaining code
// points are still exactly as classified as the original set claimed).
func (c IChar) Difference(other IChar) IChar {
	return IChar{
		Set:            c.Set.Difference(other.Set),
		LineTerminator: c.LineTerminator,
		Word:           c.Word,
	}
}

// Canonicalize applies fold to every code point in the set and returns the
// resulting (possibly larger) IChar, used for case-insensitive matching: a
// character class gains every code point that case-folds into one of its
// members.
// TODO(perf): per-codepoint iteration; fine for class-sized ranges, bad for
// Dot's near-full-alphabet range. Revisit if profiling shows it matters.
func (c IChar) Canonicalize(fold CaseFold) IChar {
	if c.IsEmpty() {
		return c
	}
	var out []Interval
	for _, r := range c.Set.Ranges() {
		for cp := r.Lo; cp < r.Hi; cp++ {
			out = append(out, Interval{Lo: cp, Hi: cp + 1})
			if folded := fold(cp); folded != cp {
				out = append(out, Interval{Lo: folded, Hi: folded + 1})
			}
		}
	}
	return IChar{Set: Of(out...), LineTerminator: c.LineTerminator, Word: c.Word}
}
