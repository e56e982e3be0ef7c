package automaton

import "errors"

// ErrUnsupported signals the automaton checker could not run on this
// pattern at all (size cap exceeded) — the Hybrid policy's cue to fall
// back to the fuzz checker.
var ErrUnsupported = errors.New("construct not supported by automaton checker")

// SizeError reports that the product graph would exceed maxNFASize²,
// spec.md §4.4's size cap.
type SizeError struct {
	Limit, Got int
}

func (e *SizeError) Error() string {
	return "MultiNFA size is too large"
}

func (e *SizeError) Unwrap() error { return ErrUnsupported }
