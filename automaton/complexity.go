package automaton

import "fmt"

// Kind tags Complexity's variant, mirroring spec.md §3's Constant/Linear/
// Polynomial(degree)/Exponential classification.
type Kind uint8

const (
	Constant Kind = iota
	Linear
	Polynomial
	Exponential
)

func (k Kind) String() string {
	switch k {
	case Constant:
		return "Constant"
	case Linear:
		return "Linear"
	case Polynomial:
		return "Polynomial"
	case Exponential:
		return "Exponential"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Complexity is the automaton checker's verdict on a single pattern.
// Degree is meaningful only for Polynomial; Witness only for Polynomial and
// Exponential (nil for Constant/Linear, which need no attack string).
type Complexity struct {
	Kind    Kind
	Degree  int
	Witness *Witness[int]
}

func (c Complexity) String() string {
	switch c.Kind {
	case Polynomial:
		return fmt.Sprintf("Polynomial(%d)", c.Degree)
	default:
		return c.Kind.String()
	}
}
