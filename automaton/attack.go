package automaton

import "math"

// AttackParams carries the two Config numbers spec.md §4.4's
// attack-string formulas need.
type AttackParams struct {
	AttackLimit   int
	MaxAttackSize int
}

// BuildAttack expands a witness into a concrete attack string, following
// spec.md §4.4: `n = max(1, ⌈log₂(attackLimit)/Σ|pumpᵢ|⌉)` for Exponential,
// `n = ⌈attackLimit^(1/degree)/Σ|pumpᵢ|⌉` for Polynomial(degree). The
// result is truncated to MaxAttackSize — a truncated attack is still
// reported as Vulnerable, just with a shorter string (spec.md §4.4's
// explicit "truncate and report" rule).
func BuildAttack[A any](c Complexity, w Witness[A], p AttackParams) []A {
	n := attackRepeatCount(c, w, p)

	var out []A
	for _, seg := range w.Segments {
		out = append(out, seg.Prefix...)
		out = appendRepeated(out, seg.Pump, n, p.MaxAttackSize)
		if len(out) >= p.MaxAttackSize {
			return out[:p.MaxAttackSize]
		}
	}
	out = append(out, w.Suffix...)
	if len(out) > p.MaxAttackSize {
		out = out[:p.MaxAttackSize]
	}
	return out
}

func attackRepeatCount[A any](c Complexity, w Witness[A], p AttackParams) int {
	pumpLen := w.PumpLen()
	if pumpLen == 0 {
		return 1
	}
	switch c.Kind {
	case Exponential:
		n := int(math.Ceil(math.Log2(float64(p.AttackLimit)) / float64(pumpLen)))
		if n < 1 {
			n = 1
		}
		return n
	case Polynomial:
		degree := c.Degree
		if degree < 1 {
			degree = 1
		}
		root := math.Pow(float64(p.AttackLimit), 1.0/float64(degree))
		n := int(math.Ceil(root / float64(pumpLen)))
		if n < 1 {
			n = 1
		}
		return n
	default:
		return 1
	}
}

func appendRepeated[A any](out []A, pump []A, n, limit int) []A {
	for i := 0; i < n && len(out) < limit; i++ {
		out = append(out, pump...)
	}
	return out
}
