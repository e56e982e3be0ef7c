package fuzzcheck

import (
	"testing"

	"github.com/coregx/redoscope/vmir"
)

func TestPopulationAdmitRejectsDuplicateInput(t *testing.T) {
	p := newPopulation()
	tr := Trace{Str: NewFString(Element{Kind: Wrap, Char: 'a'}), Rate: 1.0}
	if !p.admit(tr, true) {
		t.Fatalf("expected first admission to succeed")
	}
	if p.admit(tr, true) {
		t.Fatalf("expected a duplicate expanded input to be rejected")
	}
}

func TestPopulationAdmitRateFloor(t *testing.T) {
	p := newPopulation()
	p.minRate = 2.0
	low := Trace{Str: NewFString(Element{Kind: Wrap, Char: 'a'}), Rate: 0.5}
	if p.admit(low, false) {
		t.Fatalf("expected a sub-floor rate with no new coverage to be rejected")
	}
}

func TestPopulationAdmitNewCoverageOverridesRateFloor(t *testing.T) {
	p := newPopulation()
	p.minRate = 2.0
	novel := Trace{
		Str:      NewFString(Element{Kind: Wrap, Char: 'a'}),
		Rate:     0.5,
		Coverage: map[vmir.CoverageKey]bool{{}: true},
	}
	if !p.admit(novel, false) {
		t.Fatalf("expected a sub-floor rate that introduces new coverage to be admitted")
	}
}

func TestPopulationAdmitFirstPartTouchOverridesRateFloor(t *testing.T) {
	p := newPopulation()
	p.minRate = 2.0
	touch := Trace{Str: NewFString(Element{Kind: Wrap, Char: 'a'}), Rate: 0.5, TouchesPart: true}
	if !p.admit(touch, false) {
		t.Fatalf("expected the first candidate to reach a literal part to be admitted despite a sub-floor rate")
	}

	again := Trace{Str: NewFString(Element{Kind: Wrap, Char: 'b'}), Rate: 0.5, TouchesPart: true}
	if p.admit(again, false) {
		t.Fatalf("expected a second sub-floor candidate touching a part already covered to be rejected")
	}
}

func TestGenerationToGenerationSortsDescendingAndTruncates(t *testing.T) {
	p := newPopulation()
	p.admit(Trace{Str: NewFString(Element{Kind: Wrap, Char: 'a'}), Rate: 1.0}, true)
	p.admit(Trace{Str: NewFString(Element{Kind: Wrap, Char: 'b'}), Rate: 3.0}, true)
	p.admit(Trace{Str: NewFString(Element{Kind: Wrap, Char: 'c'}), Rate: 2.0}, true)

	gen := p.toGeneration(2)
	if len(gen.Traces) != 2 {
		t.Fatalf("expected truncation to 2 traces, got %d", len(gen.Traces))
	}
	if gen.Traces[0].Rate != 3.0 || gen.Traces[1].Rate != 2.0 {
		t.Fatalf("expected descending rate order, got %+v", gen.Traces)
	}
	if gen.MinRate != 2.0 {
		t.Fatalf("expected MinRate to track the lowest kept rate, got %v", gen.MinRate)
	}
}
