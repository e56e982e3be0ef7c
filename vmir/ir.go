// Package vmir implements the backtracking IR and its interpreter: the
// second automaton the checker pipeline runs, used by the fuzz checker
// (and by witness validation) to execute a pattern under canonical
// ECMA-262 backtracking semantics instead of the structural NFA
// abstraction the automaton checker reasons about.
//
// Grounded on coregx-coregex/nfa/backtrack.go's BoundedBacktracker: a
// kind-tagged dispatch loop over states, visited-set loop protection, and
// greedy-first split order. Generalized from a flat StateKind switch over
// a fixed byte alphabet into an explicit choice-point stack over an
// instruction list, since the tracer needs to observe every dispatch
// (coverage, step count) rather than just recursing to a boolean result.
package vmir

import "github.com/coregx/redoscope/charset"

// Addr is an instruction index. InvalidAddr marks an absent optional
// target (e.g. tx's optional rollback/fallback operands).
type Addr int

const InvalidAddr Addr = -1

// Reg is a counter register index, used by bounded-repeat compilation.
type Reg int

// AssertKind identifies a zero-width assertion an Assert instruction
// checks against the input at the current position.
type AssertKind uint8

const (
	AssertWordBoundary AssertKind = iota
	AssertNotWordBoundary
	AssertLineBegin
	AssertLineEnd
	AssertLookAhead
	AssertNotLookAhead
	AssertLookBehind
	AssertNotLookBehind
)

// CmpRel is the relation cmp tests a register against a constant with.
type CmpRel uint8

const (
	CmpLT CmpRel = iota
	CmpGE
)

// Op identifies an instruction's shape. Terminators (Ok, Jmp, Try, Cmp,
// Rollback, Tx) conclusively transfer control via their own operands;
// non-terminators fall through to the next instruction after executing.
type Op uint8

const (
	// Terminators.
	OpOk Op = iota
	OpJmp
	OpTry
	OpCmp
	OpRollback
	OpTx

	// Non-terminators.
	OpPushCanary
	OpCheckCanary
	OpReset
	OpInc
	OpAssert
	OpRead
	OpReadBack
	OpCapBegin
	OpCapEnd
	OpCapReset
)

// Instruction is one IR op, fields populated according to Op.
type Instruction struct {
	Op Op

	// Jmp, Try(L1=Target,L2=Alt)
	Target Addr
	Alt    Addr

	// Cmp
	Reg   Reg
	N     int
	Rel   CmpRel
	True  Addr
	False Addr

	// Tx: jump to Next; Rollback/Fallback are optional explicit choice
	// points pushed (in that order, Fallback nearer the top so it is tried
	// before Rollback) before jumping, InvalidAddr to omit either.
	Next     Addr
	Rollback Addr
	Fallback Addr

	// Assert
	AssertKind AssertKind
	Sub        *Program // only for AssertLookAhead/LookBehind variants

	// Read / ReadBack
	Set charset.IntervalSet

	// CapBegin, CapEnd
	Cap int

	// CapReset
	From, To int
}

// Program is a compiled instruction sequence ready for Execute.
type Program struct {
	Instructions []Instruction
	NumRegs      int
	NumCaptures  int
	Multiline    bool
	Unicode      bool
}
