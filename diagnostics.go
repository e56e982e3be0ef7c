package redoscope

import "github.com/coregx/redoscope/automaton"

// Status is the high-level verdict in a Diagnostics.
type Status uint8

const (
	// StatusSafe means no catastrophic blowup was found or constructed.
	StatusSafe Status = iota
	// StatusVulnerable means an attack string was found or constructed.
	StatusVulnerable
	// StatusUnknown means the checker could not decide (see ErrorKind).
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusSafe:
		return "Safe"
	case StatusVulnerable:
		return "Vulnerable"
	case StatusUnknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// ErrorKind classifies why Status is Unknown. ErrorNone applies to Safe
// and Vulnerable diagnostics.
type ErrorKind uint8

const (
	ErrorNone ErrorKind = iota
	// ErrorInvalidRegExp means the pattern failed to parse, or compiled to
	// a semantically invalid AST (e.g. an out-of-order quantifier).
	ErrorInvalidRegExp
	// ErrorUnsupported means a construct (e.g. a lookaround or a
	// back-reference under the automaton-only checker) isn't modeled by
	// the checker that ran.
	ErrorUnsupported
	// ErrorTimeout means Config.Timeout elapsed before a verdict.
	ErrorTimeout
	// ErrorUnexpected covers anything not classified above.
	ErrorUnexpected
)

func (e ErrorKind) String() string {
	switch e {
	case ErrorNone:
		return "None"
	case ErrorInvalidRegExp:
		return "InvalidRegExp"
	case ErrorUnsupported:
		return "Unsupported"
	case ErrorTimeout:
		return "Timeout"
	case ErrorUnexpected:
		return "Unexpected"
	default:
		return "Unexpected"
	}
}

// Diagnostics is Check's result: a verdict, the attack string and
// complexity backing a Vulnerable verdict, or the reason behind an
// Unknown one.
type Diagnostics struct {
	Status Status

	// Complexity is set for automaton-derived Safe and Vulnerable results.
	// It is nil whenever the fuzz checker produced the diagnosis — the
	// genetic search proves a witness exists, not its asymptotic degree.
	Complexity *automaton.Complexity

	// Attack is the witness code points, set only when Status is
	// Vulnerable.
	Attack []rune

	// ErrorKind and Message explain an Unknown status; both are zero for
	// Safe and Vulnerable.
	ErrorKind ErrorKind
	Message   string

	// Used records which single checker (Automaton or Fuzz) produced this
	// diagnosis. Under CheckerHybrid, Used reflects whichever of the two
	// actually ran to completion. When the pattern fails to parse no
	// checker runs, and Used keeps its zero value, CheckerHybrid.
	Used CheckerKind
}
