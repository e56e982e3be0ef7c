// Package ordnfa turns an ε-NFA into the priority-ordered, symbol-indexed
// automaton the checker's product-automaton ambiguity analysis runs over.
// Grounded on coregx-coregex/nfa's ByteClasses alphabet-reduction idiom
// (collapse a fine-grained domain to a small set of equivalence classes)
// and its dense-StateID-arena representation, generalized from bytes to
// refined Unicode atoms and from a single successor to priority-ordered
// successor lists.
package ordnfa

import "github.com/coregx/redoscope/enfa"

// StateID is a dense index into an OrderedNFA's state arena, assigned in
// discovery order by Build (or by Rename for a restricted view).
type StateID int

type state struct {
	accept     bool
	symbolMask []bool    // len(Alphabet); true iff this state consumes that symbol
	target     []StateID // closure of the consume transition's destination, priority order
}

// OrderedNFA is `{alphabet: Σ, states: Q, inits, accepts, δ}` from spec.md
// §3: Q's members are the original pattern's "consuming positions" (one
// per ε-NFA Consume state) plus a single accepting sink for the ε-NFA's
// Match state. δ(q, a) is the ordered successor list reached by consuming
// symbol a from q; it is empty for symbols q does not match and for the
// accepting sink (which has no outgoing transitions at all).
type OrderedNFA struct {
	alphabet []enfa.CharAtom
	keys     []rune
	states   []state
	inits    []StateID
}

// Alphabet returns Σ in canonical symbol-index order.
func (n *OrderedNFA) Alphabet() []enfa.CharAtom { return n.alphabet }

// AlphabetLen returns |Σ|.
func (n *OrderedNFA) AlphabetLen() int { return len(n.alphabet) }

// NumStates returns |Q|.
func (n *OrderedNFA) NumStates() int { return len(n.states) }

// Inits returns the ordered (priority-first) initial positions.
func (n *OrderedNFA) Inits() []StateID { return n.inits }

// IsAccept reports whether q is the accepting sink.
func (n *OrderedNFA) IsAccept(q StateID) bool { return n.states[q].accept }

// Delta returns the ordered successor list for consuming symbol from q,
// or nil if q does not consume that symbol (or is the accepting sink).
func (n *OrderedNFA) Delta(q StateID, symbol int) []StateID {
	s := &n.states[q]
	if s.accept || symbol < 0 || symbol >= len(s.symbolMask) || !s.symbolMask[symbol] {
		return nil
	}
	return s.target
}

// Matches reports whether q consumes symbol at all, independent of its
// target — used by the product-automaton construction to test both
// positions' transitions without building the (possibly nil) successor
// list twice.
func (n *OrderedNFA) Matches(q StateID, symbol int) bool {
	s := &n.states[q]
	return !s.accept && symbol < len(s.symbolMask) && s.symbolMask[symbol]
}

// MapAlphabet rewrites Σ's per-symbol metadata via f, keeping only a
// canonical representative per symbol — spec.md §4.3's "drop IChar
// metadata for equality keying" rule, used so the fuzz checker and the
// witness-to-attack-string expansion can work with plain runes instead of
// carrying interval-set machinery through every call.
func (n *OrderedNFA) MapAlphabet(f func(enfa.CharAtom) rune) []rune {
	keys := make([]rune, len(n.alphabet))
	for i, a := range n.alphabet {
		keys[i] = f(a)
	}
	n.keys = keys
	return keys
}

// Keys returns the representative runes set by the most recent
// MapAlphabet call, or nil if it has not been called yet.
func (n *OrderedNFA) Keys() []rune { return n.keys }

// RepresentativeRune returns an arbitrary code point belonging to atom,
// the default mapping function passed to MapAlphabet.
func RepresentativeRune(a enfa.CharAtom) rune {
	ranges := a.Set.Ranges()
	if len(ranges) == 0 {
		return -1
	}
	return rune(ranges[0].Lo)
}

// Rename returns a new OrderedNFA restricted to exactly the states in
// keep, densely renumbered starting at 0 in the given order — spec.md
// §4.3's `rename`, and the property §8.4 tests ("after rename, state ids
// form a contiguous prefix [0, |Q|)").
func (n *OrderedNFA) Rename(keep []StateID) *OrderedNFA {
	remap := make(map[StateID]StateID, len(keep))
	for i, id := range keep {
		remap[id] = StateID(i)
	}
	out := &OrderedNFA{alphabet: n.alphabet, keys: n.keys, states: make([]state, len(keep))}
	for i, id := range keep {
		old := n.states[id]
		newTarget := make([]StateID, 0, len(old.target))
		for _, t := range old.target {
			if r, ok := remap[t]; ok {
				newTarget = append(newTarget, r)
			}
		}
		out.states[i] = state{accept: old.accept, symbolMask: old.symbolMask, target: newTarget}
	}
	for _, id := range n.inits {
		if r, ok := remap[id]; ok {
			out.inits = append(out.inits, r)
		}
	}
	return out
}
