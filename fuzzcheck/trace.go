package fuzzcheck

import (
	"sort"

	"github.com/coregx/redoscope/vmir"
)

// Trace is one candidate's observed behavior against the backtracking
// machine: how fast it burns steps relative to its length, which
// (pc, stack-shape, direction) triples it touched, and the candidate
// itself so the next generation can mutate or cross it.
type Trace struct {
	Str      FString
	Rate     float64
	Steps    int
	Coverage map[vmir.CoverageKey]bool

	// TouchesPart reports whether this candidate's expanded text matches
	// one of the pattern's literal runs (Context.PartsCovered) — a second,
	// cheaper novelty signal alongside the VM's own coverage digest.
	TouchesPart bool
}

func runTrace(ctx *Context, f FString, populationLimit int) (Trace, error) {
	runes := f.ToRunes()
	m := vmir.NewMachine(ctx.Program, runes)
	tracer := vmir.NewFuzzTracer(populationLimit, len(runes))
	_, err := m.Execute(0, 0, tracer)
	tr := Trace{
		Str:         f,
		Rate:        tracer.Rate(),
		Steps:       tracer.Steps(),
		Coverage:    tracer.Coverage(),
		TouchesPart: ctx.PartsCovered(runes),
	}
	return tr, err
}

// Generation is an immutable, rate-sorted snapshot of a Population: the
// traces a crossover/mutation round draws parents from.
type Generation struct {
	MinRate float64
	Traces  []Trace

	inputs  map[string]bool
	Covered map[vmir.CoverageKey]bool

	// PartsCovered tracks whether any admitted trace so far has touched a
	// literal part; carried forward so later rounds only get the
	// sub-floor exemption for the first candidate to reach a literal, not
	// every candidate that happens to revisit one.
	PartsCovered bool
}

// Population is the mutable accumulator a search round writes admitted
// traces into, seeded from the previous Generation (or empty, for the
// first round).
type Population struct {
	traces       []Trace
	inputs       map[string]bool
	covered      map[vmir.CoverageKey]bool
	minRate      float64
	partsCovered bool
}

func newPopulation() *Population {
	return &Population{inputs: map[string]bool{}, covered: map[vmir.CoverageKey]bool{}}
}

func newPopulationFrom(gen *Generation) *Population {
	p := &Population{
		inputs:       make(map[string]bool, len(gen.inputs)),
		covered:      make(map[vmir.CoverageKey]bool, len(gen.Covered)),
		minRate:      gen.MinRate,
		partsCovered: gen.PartsCovered,
	}
	for k := range gen.inputs {
		p.inputs[k] = true
	}
	for k := range gen.Covered {
		p.covered[k] = true
	}
	p.traces = append(p.traces, gen.Traces...)
	return p
}

func hasNewCoverage(cov, visited map[vmir.CoverageKey]bool) bool {
	for k := range cov {
		if !visited[k] {
			return true
		}
	}
	return false
}

// admit applies the search's acceptance rule: a candidate already seen
// (by its expanded text) is always rejected; otherwise it is kept if this
// is the seeding round, if its rate meets the population's current floor,
// if it touches coverage nothing admitted so far has touched, or if it is
// the first candidate to reach one of the pattern's literal parts (a
// cheap Aho-Corasick novelty signal, grounded on the same "large literal
// set" concern the teacher uses ahocorasick for — see
// Context.PartsCovered).
func (p *Population) admit(tr Trace, initial bool) bool {
	key := string(tr.Str.ToRunes())
	if p.inputs[key] {
		return false
	}
	newPart := tr.TouchesPart && !p.partsCovered
	if !initial && tr.Rate < p.minRate && !hasNewCoverage(tr.Coverage, p.covered) && !newPart {
		return false
	}
	p.inputs[key] = true
	for k := range tr.Coverage {
		p.covered[k] = true
	}
	if tr.TouchesPart {
		p.partsCovered = true
	}
	p.traces = append(p.traces, tr)
	return true
}

// toGeneration sorts admitted traces by descending rate, keeps the top
// maxSize, and carries the dedup/coverage sets forward.
func (p *Population) toGeneration(maxSize int) *Generation {
	sorted := append([]Trace(nil), p.traces...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rate > sorted[j].Rate })
	if maxSize > 0 && len(sorted) > maxSize {
		sorted = sorted[:maxSize]
	}
	minRate := 0.0
	if len(sorted) > 0 {
		minRate = sorted[len(sorted)-1].Rate
	}
	return &Generation{
		MinRate:      minRate,
		Traces:       sorted,
		inputs:       p.inputs,
		Covered:      p.covered,
		PartsCovered: p.partsCovered,
	}
}
