package vmir

import (
	"errors"
	"fmt"
)

// ErrUnsupported mirrors enfa.ErrUnsupported: returned when the pattern
// uses a construct this compiler does not model: back-references, which
// the fuzz checker has no way to match without full capture-text replay,
// as well as an out-of-order repetition quantifier or an unrecognized AST
// node.
var ErrUnsupported = errors.New("construct not supported by fuzz checker")

// CompileError wraps ErrUnsupported with the specific reason.
type CompileError struct {
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnsupported, e.Reason)
}

func (e *CompileError) Unwrap() error { return ErrUnsupported }

func unsupported(reason string) error {
	return &CompileError{Reason: reason}
}
