// Package enfa compiles a pattern AST into an ε-NFA: the first automaton
// stage of the checker pipeline, grounded on the general shape of
// coregx-coregex's Thompson-construction nfa package (dense StateID arena,
// kind-tagged State, Builder) but built for ε/assert/consume transitions
// over a refined Unicode alphabet instead of byte-range transitions over a
// fixed byte alphabet.
package enfa

import (
	"fmt"

	"github.com/coregx/redoscope/charset"
)

// CharAtom is one refined, pairwise-disjoint slice of the pattern's
// alphabet — an ICharSet member a Consume transition matches against.
type CharAtom = charset.IChar

// StateID uniquely identifies an ε-NFA state: a dense index into the
// owning ENFA's state arena.
type StateID uint32

// InvalidState is the sentinel for "no such state" (e.g. the target Assert
// or Consume reports when called on a state of another kind).
const InvalidState StateID = 0xFFFFFFFF

// TransKind identifies the shape of a state's outgoing transition(s).
type TransKind uint8

const (
	// TransMatch is a terminal accepting state with no outgoing transitions.
	TransMatch TransKind = iota
	// TransEps is a zero-width transition to an ordered list of states,
	// tried in order — the backtracking priority list of spec.md §3.
	TransEps
	// TransAssert is a zero-width transition gated by a lookaround-free
	// assertion (word boundary, line begin/end).
	TransAssert
	// TransConsume is a width-one transition over a set of alphabet atoms.
	TransConsume
)

func (k TransKind) String() string {
	switch k {
	case TransMatch:
		return "Match"
	case TransEps:
		return "Eps"
	case TransAssert:
		return "Assert"
	case TransConsume:
		return "Consume"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// AssertKind identifies which zero-width assertion an Assert state checks.
type AssertKind uint8

const (
	AssertWordBoundary AssertKind = iota
	AssertNotWordBoundary
	AssertLineBegin
	AssertLineEnd
)

func (k AssertKind) String() string {
	switch k {
	case AssertWordBoundary:
		return "WordBoundary"
	case AssertNotWordBoundary:
		return "NotWordBoundary"
	case AssertLineBegin:
		return "LineBegin"
	case AssertLineEnd:
		return "LineEnd"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// State is a single ε-NFA state. Which fields are meaningful depends on Kind.
type State struct {
	id   StateID
	kind TransKind

	epsTargets []StateID // TransEps

	assertKind   AssertKind // TransAssert
	assertTarget StateID

	consumeAtoms  []CharAtom // TransConsume
	consumeTarget StateID
}

func (s *State) ID() StateID     { return s.id }
func (s *State) Kind() TransKind { return s.kind }
func (s *State) IsMatch() bool   { return s.kind == TransMatch }

// EpsTargets returns the priority-ordered target list for a TransEps state.
func (s *State) EpsTargets() []StateID {
	if s.kind != TransEps {
		return nil
	}
	return s.epsTargets
}

// Assert returns the assertion kind and target for a TransAssert state.
func (s *State) Assert() (AssertKind, StateID) {
	if s.kind != TransAssert {
		return 0, InvalidState
	}
	return s.assertKind, s.assertTarget
}

// Consume returns the matched atoms and target for a TransConsume state.
func (s *State) Consume() ([]CharAtom, StateID) {
	if s.kind != TransConsume {
		return nil, InvalidState
	}
	return s.consumeAtoms, s.consumeTarget
}

// ENFA is a compiled ε-NFA: a dense state arena plus a single start and
// accept state (spec.md §4.2's compile functions always return exactly one
// fragment covering the whole pattern).
type ENFA struct {
	states []State
	start  StateID
	accept StateID
}

func (n *ENFA) Start() StateID  { return n.start }
func (n *ENFA) Accept() StateID { return n.accept }
func (n *ENFA) States() int     { return len(n.states) }

// State returns the state with the given id, or nil if id is out of range.
func (n *ENFA) State(id StateID) *State {
	if id == InvalidState || int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}
