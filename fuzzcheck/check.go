package fuzzcheck

import (
	"github.com/coregx/redoscope/ast"
	"github.com/coregx/redoscope/internal/timeout"
	"github.com/coregx/redoscope/vmir"
)

// Params bundles the fuzz checker's tunable knobs (spec.md §6's "Fuzz
// knobs" plus the attack-escalation bounds it shares with the automaton
// checker).
type Params struct {
	SeedLimit         int
	PopulationLimit   int
	CrossSize         int
	MutateSize        int
	MaxSeedSize       int
	MaxGenerationSize int
	MaxIteration      int
	MaxDegree         int
	AttackLimit       int
	MaxAttackSize     int
}

// DefaultParams returns spec.md §6's literal defaults.
func DefaultParams() Params {
	return Params{
		SeedLimit:         10000,
		PopulationLimit:   100000,
		CrossSize:         25,
		MutateSize:        50,
		MaxSeedSize:       100,
		MaxGenerationSize: 100,
		MaxIteration:      30,
		MaxDegree:         4,
		AttackLimit:       1000000,
		MaxAttackSize:     10000,
	}
}

// Check runs the genetic search: seed, execute, and (on hitting the
// population's step budget) escalate into a concrete attack string;
// failing that, cross and mutate the surviving generation for up to
// MaxIteration rounds. A nil, nil result means the search never found a
// witness (reported Safe by the policy that calls this), not a proof of
// safety.
func Check(pat *ast.Pattern, params Params, rng RandSource, t timeout.Timeout) (*AttackResult, error) {
	ctx, err := NewContext(pat)
	if err != nil {
		return nil, err
	}

	pop := newPopulation()
	for _, s := range seed(ctx, params, rng) {
		if res, done, err := evaluate(ctx, s, params, pop, true, t); err != nil {
			return nil, err
		} else if done {
			return res, nil
		}
	}

	gen := pop.toGeneration(params.MaxGenerationSize)

	for iter := 0; iter < params.MaxIteration; iter++ {
		if err := t.Check("fuzzcheck.iterate"); err != nil {
			return nil, err
		}
		if len(gen.Traces) == 0 {
			break
		}

		next := newPopulationFrom(gen)

		for i := 0; i < params.CrossSize && len(gen.Traces) >= 2; i++ {
			a := gen.Traces[rng.Intn(len(gen.Traces))]
			b := gen.Traces[rng.Intn(len(gen.Traces))]
			pos1 := rng.Intn(a.Str.Size() + 1)
			pos2 := rng.Intn(b.Str.Size() + 1)
			c1, c2 := a.Str.Cross(b.Str, pos1, pos2)

			for _, cand := range [2]FString{c1, c2} {
				if res, done, err := evaluate(ctx, cand, params, next, false, t); err != nil {
					return nil, err
				} else if done {
					return res, nil
				}
			}
		}

		for i := 0; i < params.MutateSize; i++ {
			base := gen.Traces[rng.Intn(len(gen.Traces))]
			cand := mutate(ctx, base.Str, rng)
			if res, done, err := evaluate(ctx, cand, params, next, false, t); err != nil {
				return nil, err
			} else if done {
				return res, nil
			}
		}

		gen = next.toGeneration(params.MaxGenerationSize)
	}

	return nil, nil
}

// evaluate runs one candidate, escalating to tryAttack if it already
// trips the population's step budget, else attempting admission into pop.
func evaluate(ctx *Context, cand FString, params Params, pop *Population, initial bool, t timeout.Timeout) (*AttackResult, bool, error) {
	if err := t.Check("fuzzcheck.evaluate"); err != nil {
		return nil, false, err
	}

	tr, runErr := runTrace(ctx, cand, params.PopulationLimit)
	if _, ok := runErr.(*vmir.LimitError); ok {
		res, ok, err := tryAttack(ctx, cand, params, t)
		if err != nil || ok {
			return res, ok, err
		}
		return nil, false, nil
	}

	pop.admit(tr, initial)
	return nil, false, nil
}

func seed(ctx *Context, params Params, rng RandSource) []FString {
	var seeds []FString
	add := func(f FString) {
		if len(seeds) >= params.SeedLimit || f.Size() > params.MaxSeedSize {
			return
		}
		seeds = append(seeds, f)
	}

	add(NewFString())
	for _, p := range ctx.Parts {
		add(literalFString(p))
	}
	for _, r := range ctx.Alphabet {
		add(NewFString(Element{Kind: Wrap, Char: r}))
	}
	return seeds
}

func literalFString(runes []rune) FString {
	elems := make([]Element, len(runes))
	for i, r := range runes {
		elems[i] = Element{Kind: Wrap, Char: r}
	}
	return NewFString(elems...)
}
