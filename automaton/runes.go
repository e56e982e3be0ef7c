package automaton

import "github.com/coregx/redoscope/ordnfa"

// WitnessRunes maps a symbol-index witness to one over representative
// runes, using the ordered NFA's MapAlphabet keys (ordnfa.RepresentativeRune
// by default) — the form a caller actually turns into an attack string.
func WitnessRunes(w *Witness[int], n *ordnfa.OrderedNFA) Witness[rune] {
	keys := n.Keys()
	if keys == nil {
		keys = n.MapAlphabet(ordnfa.RepresentativeRune)
	}
	return MapWitness(*w, func(sym int) rune { return keys[sym] })
}
