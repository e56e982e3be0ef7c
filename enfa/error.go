package enfa

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks a pattern construct the automaton path does not
// model: lookaround and back-references. (The NFA size caps report through
// ordnfa's and automaton's own ErrUnsupported.)
// The Hybrid policy (spec.md §4.7) recovers from this by falling back to
// the fuzz checker.
var ErrUnsupported = errors.New("construct not supported by automaton checker")

// ErrInvalidRegExp marks a pattern that is syntactically well-formed AST
// but semantically invalid — currently just an out-of-order repetition
// quantifier, since everything else is rejected earlier by the parser.
var ErrInvalidRegExp = errors.New("invalid regular expression")

// CompileError wraps one of the sentinels above with the specific reason,
// mirroring coregx-coregex's CompileError{Pattern,Err} wrapper.
type CompileError struct {
	Reason string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Reason)
}

func (e *CompileError) Unwrap() error { return e.Err }

func unsupported(reason string) error {
	return &CompileError{Reason: reason, Err: ErrUnsupported}
}

func invalidRegExp(reason string) error {
	return &CompileError{Reason: reason, Err: ErrInvalidRegExp}
}
