package fuzzcheck

import (
	"math"

	"github.com/coregx/redoscope/internal/timeout"
	"github.com/coregx/redoscope/vmir"
)

// AttackResult is a validated witness: an FString, scaled to a concrete N,
// together with its expansion, that drove the backtracking machine past
// the configured step budget.
type AttackResult struct {
	Str   FString
	Runes []rune
}

// tryAttack escalates a candidate that already blew the population's step
// budget into a concrete witness: first under the assumption the blowup
// is exponential in N (spec.md §4.6's log2(attackLimit)/n scaling), then,
// if that doesn't reproduce within maxAttackSize, walking polynomial
// degrees from maxDegree down to 2.
func tryAttack(ctx *Context, str FString, params Params, t timeout.Timeout) (*AttackResult, bool, error) {
	n := str.N
	if n < 1 {
		n = 1
	}

	r := math.Log2(float64(params.AttackLimit)) / float64(n)
	if r < 1 {
		r = 1
	}
	if res, ok, err := attemptScale(ctx, str, n, r, params, t); err != nil || ok {
		return res, ok, err
	}

	for d := params.MaxDegree; d >= 2; d-- {
		r := math.Pow(float64(params.AttackLimit), 1.0/float64(d)) / float64(n)
		if r < 1 {
			continue
		}
		if res, ok, err := attemptScale(ctx, str, n, r, params, t); err != nil || ok {
			return res, ok, err
		}
	}

	return nil, false, nil
}

func attemptScale(ctx *Context, str FString, n int, r float64, params Params, t timeout.Timeout) (*AttackResult, bool, error) {
	if err := t.Check("fuzzcheck.tryAttack"); err != nil {
		return nil, false, err
	}

	nNew := int(math.Ceil(float64(n) * r))
	scaled := str.MapN(func(int) int { return nNew })
	runes := scaled.ToRunes()
	if len(runes) > params.MaxAttackSize {
		return nil, false, nil
	}

	m := vmir.NewMachine(ctx.Program, runes)
	_, err := m.Execute(0, 0, vmir.NewLimitTracer(params.AttackLimit))
	if _, ok := err.(*vmir.LimitError); ok {
		return &AttackResult{Str: scaled, Runes: runes}, true, nil
	}
	return nil, false, nil
}
