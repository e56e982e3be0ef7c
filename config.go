// Package redoscope implements the hybrid ReDoS (catastrophic
// backtracking) checker: an automaton-based decision procedure backed by
// a genetic-search fuzzer for the constructs the automaton can't model.
//
// Package layout mirrors coregx-coregex/meta's split between a pattern-
// independent configuration (Config/DefaultConfig/Validate), a compiled
// per-pattern pipeline (ast → enfa → ordnfa → automaton, or ast → vmir →
// fuzzcheck), and a single public entry point (Check) that picks between
// them.
package redoscope

import (
	"time"

	"github.com/coregx/redoscope/fuzzcheck"
)

// CheckerKind selects which checking strategy Check runs, or (for
// Diagnostics.Used) records which one actually produced a result.
type CheckerKind uint8

const (
	// CheckerHybrid runs the automaton checker first, falling back to the
	// fuzz checker on Unsupported or a size-guard breach. Default.
	CheckerHybrid CheckerKind = iota
	// CheckerAutomaton runs only the automaton-based decision procedure.
	CheckerAutomaton
	// CheckerFuzz runs only the genetic-search fuzz checker.
	CheckerFuzz
)

func (k CheckerKind) String() string {
	switch k {
	case CheckerAutomaton:
		return "Automaton"
	case CheckerFuzz:
		return "Fuzz"
	case CheckerHybrid:
		return "Hybrid"
	default:
		return "Unknown"
	}
}

// Config controls checker selection, resource bounds, and the fuzz
// checker's genetic-search knobs.
//
// Example:
//
//	cfg := redoscope.DefaultConfig()
//	cfg.Timeout = 2 * time.Second
//	diag := redoscope.Check(`(a+)+$`, "", cfg)
type Config struct {
	// Checker selects Automaton, Fuzz, or Hybrid. Default: Hybrid.
	Checker CheckerKind

	// Timeout bounds total analysis wall-clock time; zero disables the
	// deadline entirely. Default: 0 (no timeout).
	Timeout time.Duration

	// MaxAttackSize caps the length of any emitted attack string.
	// Default: 10,000.
	MaxAttackSize int

	// AttackLimit is the backtracking-VM step count treated as
	// "catastrophic" when validating or searching for an attack string.
	// Default: 1,000,000.
	AttackLimit int

	// MaxNFASize caps the ordered-NFA state count; the product automaton
	// is capped at its square.
	// Default: 35,000.
	MaxNFASize int

	// MaxRepeatCount and MaxPatternSize are Hybrid's size guards: a
	// pattern breaching either skips the automaton path entirely (treated
	// as Unsupported) and goes straight to the fuzz checker.
	// Defaults: 30, 1,500.
	MaxRepeatCount int
	MaxPatternSize int

	// Fuzz checker knobs (spec.md §6's "Fuzz knobs"); see fuzzcheck.Params.
	SeedLimit         int
	PopulationLimit   int
	CrossSize         int
	MutateSize        int
	MaxSeedSize       int
	MaxGenerationSize int
	MaxIteration      int
	MaxDegree         int

	// Random is the fuzz checker's PRNG source. Nil selects a fixed,
	// deterministic seed — Check is then bit-reproducible across runs by
	// default without the caller having to inject anything.
	Random fuzzcheck.RandSource
}

// DefaultConfig returns spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		Checker:           CheckerHybrid,
		Timeout:           0,
		MaxAttackSize:     10000,
		AttackLimit:       1000000,
		MaxNFASize:        35000,
		MaxRepeatCount:    30,
		MaxPatternSize:    1500,
		SeedLimit:         10000,
		PopulationLimit:   100000,
		CrossSize:         25,
		MutateSize:        50,
		MaxSeedSize:       100,
		MaxGenerationSize: 100,
		MaxIteration:      30,
		MaxDegree:         4,
	}
}

// ConfigError reports an out-of-range configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "redoscope: invalid config: " + e.Field + ": " + e.Message
}

// Validate checks every field against its documented range.
func (c Config) Validate() error {
	switch c.Checker {
	case CheckerAutomaton, CheckerFuzz, CheckerHybrid:
	default:
		return &ConfigError{Field: "Checker", Message: "must be Automaton, Fuzz, or Hybrid"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "Timeout", Message: "must be non-negative"}
	}
	if c.MaxAttackSize < 1 {
		return &ConfigError{Field: "MaxAttackSize", Message: "must be at least 1"}
	}
	if c.AttackLimit < 1 {
		return &ConfigError{Field: "AttackLimit", Message: "must be at least 1"}
	}
	if c.MaxNFASize < 1 {
		return &ConfigError{Field: "MaxNFASize", Message: "must be at least 1"}
	}
	if c.MaxRepeatCount < 1 {
		return &ConfigError{Field: "MaxRepeatCount", Message: "must be at least 1"}
	}
	if c.MaxPatternSize < 1 {
		return &ConfigError{Field: "MaxPatternSize", Message: "must be at least 1"}
	}
	if c.SeedLimit < 1 {
		return &ConfigError{Field: "SeedLimit", Message: "must be at least 1"}
	}
	if c.PopulationLimit < 1 {
		return &ConfigError{Field: "PopulationLimit", Message: "must be at least 1"}
	}
	if c.CrossSize < 0 {
		return &ConfigError{Field: "CrossSize", Message: "must be non-negative"}
	}
	if c.MutateSize < 0 {
		return &ConfigError{Field: "MutateSize", Message: "must be non-negative"}
	}
	if c.MaxSeedSize < 1 {
		return &ConfigError{Field: "MaxSeedSize", Message: "must be at least 1"}
	}
	if c.MaxGenerationSize < 1 {
		return &ConfigError{Field: "MaxGenerationSize", Message: "must be at least 1"}
	}
	if c.MaxIteration < 1 {
		return &ConfigError{Field: "MaxIteration", Message: "must be at least 1"}
	}
	if c.MaxDegree < 2 {
		return &ConfigError{Field: "MaxDegree", Message: "must be at least 2"}
	}
	return nil
}

func (c Config) fuzzParams() fuzzcheck.Params {
	return fuzzcheck.Params{
		SeedLimit:         c.SeedLimit,
		PopulationLimit:   c.PopulationLimit,
		CrossSize:         c.CrossSize,
		MutateSize:        c.MutateSize,
		MaxSeedSize:       c.MaxSeedSize,
		MaxGenerationSize: c.MaxGenerationSize,
		MaxIteration:      c.MaxIteration,
		MaxDegree:         c.MaxDegree,
		AttackLimit:       c.AttackLimit,
		MaxAttackSize:     c.MaxAttackSize,
	}
}

func (c Config) randomSource() fuzzcheck.RandSource {
	if c.Random != nil {
		return c.Random
	}
	return fuzzcheck.NewMathRand(1)
}
