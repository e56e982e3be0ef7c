package automaton

// Segment is one "reach a loop, then pump it" step of an attack-string
// witness: Prefix advances from the previous checkpoint to the loop's
// diagonal product state, Pump is a cycle back to that same state.
type Segment[A any] struct {
	Prefix []A
	Pump   []A
}

// Witness is the symbolic attack-string template spec.md §4.4 builds from
// the product automaton: a chain of pump segments (one for Exponential,
// k for a degree-k Polynomial) followed by a suffix that drives the
// automaton to acceptance.
type Witness[A any] struct {
	Segments []Segment[A]
	Suffix   []A
}

// MapWitness translates every symbol in w via f — used to turn a witness
// built over product-automaton symbol indices into one over representative
// runes, ready for attack-string expansion.
func MapWitness[A, B any](w Witness[A], f func(A) B) Witness[B] {
	out := Witness[B]{Segments: make([]Segment[B], len(w.Segments))}
	for i, seg := range w.Segments {
		out.Segments[i] = Segment[B]{Prefix: mapSlice(seg.Prefix, f), Pump: mapSlice(seg.Pump, f)}
	}
	out.Suffix = mapSlice(w.Suffix, f)
	return out
}

func mapSlice[A, B any](in []A, f func(A) B) []B {
	if in == nil {
		return nil
	}
	out := make([]B, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// PumpLen returns Σ|pumpᵢ|, the denominator in the attack-size formulas of
// spec.md §4.4.
func (w Witness[A]) PumpLen() int {
	total := 0
	for _, seg := range w.Segments {
		total += len(seg.Pump)
	}
	return total
}
