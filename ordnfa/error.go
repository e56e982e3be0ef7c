package ordnfa

import (
	"errors"
	"fmt"
)

// ErrUnsupported mirrors enfa.ErrUnsupported at this stage of the
// pipeline: the ordered-NFA construction exceeded its size cap, which
// steers the Hybrid policy to the fuzz checker.
var ErrUnsupported = errors.New("construct not supported by automaton checker")

// SizeError reports that building the ordered NFA produced more states
// than the configured cap — spec.md §4.3's "MultiNFA size is too large".
type SizeError struct {
	Limit, Got int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("MultiNFA size is too large (limit %d, got %d)", e.Limit, e.Got)
}

func (e *SizeError) Unwrap() error { return ErrUnsupported }
