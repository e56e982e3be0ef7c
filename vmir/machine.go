package vmir

import "github.com/coregx/redoscope/charset"

// LimitError is the "LimitException" of spec.md §4.5, returned rather than
// panicked through — spec.md §9's "model as a result variant" rule.
type LimitError struct {
	Steps int
}

func (e *LimitError) Error() string { return "vmir: step limit exceeded" }

// Tracer observes every instruction dispatch. LimitTracer only counts
// steps; FuzzTracer additionally records coverage and a progress rate for
// the genetic search to rank candidates by.
type Tracer interface {
	// Step is called once per dispatched instruction, before it executes.
	// Returning a non-nil error aborts execution (propagated from Execute).
	Step(pc Addr, m *Machine) error
}

// LimitTracer fails once more than Limit instructions have been dispatched
// — used for attack-string validation (spec.md §9's closing note).
type LimitTracer struct {
	Limit int
	steps int
}

func NewLimitTracer(limit int) *LimitTracer { return &LimitTracer{Limit: limit} }

func (t *LimitTracer) Steps() int { return t.steps }

func (t *LimitTracer) Step(pc Addr, m *Machine) error {
	t.steps++
	if t.steps > t.Limit {
		return &LimitError{Steps: t.steps}
	}
	return nil
}

// CoverageKey is one (pc, stack-shape digest, direction-flag) triple,
// spec.md §4.5's FuzzTracer coverage signal.
type CoverageKey struct {
	pc     Addr
	digest int
	toward bool
}

// FuzzTracer records step count, coverage, and a progress rate the fuzz
// checker's generation ranking sorts by.
type FuzzTracer struct {
	Limit    int
	steps    int
	inputLen int
	coverage map[CoverageKey]bool
}

func NewFuzzTracer(limit, inputLen int) *FuzzTracer {
	return &FuzzTracer{Limit: limit, inputLen: inputLen, coverage: make(map[CoverageKey]bool)}
}

func (t *FuzzTracer) Steps() int { return t.steps }

// Rate returns steps / input-length, clamped to avoid dividing by zero on
// an empty candidate.
func (t *FuzzTracer) Rate() float64 {
	denom := t.inputLen
	if denom < 1 {
		denom = 1
	}
	return float64(t.steps) / float64(denom)
}

// Coverage returns the set of distinct (pc, stack digest, direction)
// triples seen, as a comparable key set.
func (t *FuzzTracer) Coverage() map[CoverageKey]bool { return t.coverage }

func (t *FuzzTracer) Step(pc Addr, m *Machine) error {
	t.steps++
	if t.steps > t.Limit {
		return &LimitError{Steps: t.steps}
	}
	digest := len(m.choices)
	toward := false
	if len(m.choices) > 0 {
		toward = m.choices[len(m.choices)-1].pos <= m.pos
	}
	t.coverage[CoverageKey{pc: pc, digest: digest, toward: toward}] = true
	return nil
}

type choicePoint struct {
	pc     Addr
	pos    int
	regs   []int
	caps   []int
	canary []int
}

// Machine executes a Program against an input over canonical
// ECMA-262-style greedy backtracking: Try pushes a choice point and
// continues at the greedy branch; failure (an instruction that cannot
// proceed) pops the most recent choice point and resumes there.
type Machine struct {
	prog    *Program
	input   []rune
	pos     int
	regs    []int
	caps    []int
	canary  []int
	choices []choicePoint
}

// NewMachine prepares a Machine to run prog against input; the start
// position is given to Execute.
func NewMachine(prog *Program, input []rune) *Machine {
	return &Machine{
		prog:  prog,
		input: input,
		regs:  make([]int, prog.NumRegs),
		caps:  initCaps(prog.NumCaptures),
	}
}

func initCaps(n int) []int {
	caps := make([]int, 2*n)
	for i := range caps {
		caps[i] = -1
	}
	return caps
}

// Execute runs the program from start at the given input position. It
// returns (true, nil) on match, (false, nil) if every path failed, or
// (false, err) if the tracer aborted execution (typically *LimitError).
func (m *Machine) Execute(start Addr, pos int, tracer Tracer) (bool, error) {
	m.pos = pos
	pc := start

	for {
		if err := tracer.Step(pc, m); err != nil {
			return false, err
		}
		if int(pc) < 0 || int(pc) >= len(m.prog.Instructions) {
			if !m.fail() {
				return false, nil
			}
			pc = m.choices[len(m.choices)-1].pc
			m.restore()
			continue
		}

		ins := &m.prog.Instructions[pc]
		switch ins.Op {
		case OpOk:
			return true, nil

		case OpJmp:
			pc = ins.Target
			continue

		case OpTry:
			m.push(ins.Alt)
			pc = ins.Target
			continue

		case OpCmp:
			v := m.regs[ins.Reg]
			hit := (ins.Rel == CmpLT && v < ins.N) || (ins.Rel == CmpGE && v >= ins.N)
			if hit {
				pc = ins.True
			} else {
				pc = ins.False
			}
			continue

		case OpRollback:
			if !m.fail() {
				return false, nil
			}
			pc = m.choices[len(m.choices)-1].pc
			m.restore()
			continue

		case OpTx:
			if ins.Rollback != InvalidAddr {
				m.push(ins.Rollback)
			}
			if ins.Fallback != InvalidAddr {
				m.push(ins.Fallback)
			}
			pc = ins.Next
			continue
		}

		// Non-terminators: execute, then fall through to pc+1 on success or
		// backtrack on failure.
		ok := m.execNonTerminator(ins)
		if !ok {
			if !m.fail() {
				return false, nil
			}
			pc = m.choices[len(m.choices)-1].pc
			m.restore()
			continue
		}
		pc++
	}
}

// push records a choice point at alt (to resume at on the next failure),
// snapshotting mutable state so backtracking restores it exactly.
func (m *Machine) push(alt Addr) {
	m.choices = append(m.choices, choicePoint{
		pc:     alt,
		pos:    m.pos,
		regs:   append([]int(nil), m.regs...),
		caps:   append([]int(nil), m.caps...),
		canary: append([]int(nil), m.canary...),
	})
}

// fail reports whether a choice point is available to backtrack into.
func (m *Machine) fail() bool {
	return len(m.choices) > 0
}

// restore pops the top choice point and reinstates its snapshot. The
// caller has already read its pc before calling restore.
func (m *Machine) restore() {
	top := m.choices[len(m.choices)-1]
	m.choices = m.choices[:len(m.choices)-1]
	m.pos = top.pos
	m.regs = top.regs
	m.caps = top.caps
	m.canary = top.canary
}

func (m *Machine) execNonTerminator(ins *Instruction) bool {
	switch ins.Op {
	case OpPushCanary:
		m.canary = append(m.canary, m.pos)
		return true

	case OpCheckCanary:
		if len(m.canary) == 0 {
			return true
		}
		top := m.canary[len(m.canary)-1]
		m.canary = m.canary[:len(m.canary)-1]
		return top != m.pos

	case OpReset:
		m.regs[ins.Reg] = 0
		return true

	case OpInc:
		m.regs[ins.Reg]++
		return true

	case OpAssert:
		return m.checkAssert(ins)

	case OpRead:
		if m.pos >= len(m.input) || !ins.Set.Contains(charset.UChar(m.input[m.pos])) {
			return false
		}
		m.pos++
		return true

	case OpReadBack:
		if m.pos <= 0 || !ins.Set.Contains(charset.UChar(m.input[m.pos-1])) {
			return false
		}
		m.pos--
		return true

	case OpCapBegin:
		if 2*ins.Cap < len(m.caps) {
			m.caps[2*ins.Cap] = m.pos
		}
		return true

	case OpCapEnd:
		if 2*ins.Cap+1 < len(m.caps) {
			m.caps[2*ins.Cap+1] = m.pos
		}
		return true

	case OpCapReset:
		for i := ins.From; i < ins.To && 2*i+1 < len(m.caps); i++ {
			m.caps[2*i] = -1
			m.caps[2*i+1] = -1
		}
		return true
	}
	return false
}

func (m *Machine) checkAssert(ins *Instruction) bool {
	switch ins.AssertKind {
	case AssertLineBegin:
		if m.pos == 0 {
			return true
		}
		return m.prog.Multiline && charset.IsLineTerminator(charset.UChar(m.input[m.pos-1]))
	case AssertLineEnd:
		if m.pos == len(m.input) {
			return true
		}
		return m.prog.Multiline && charset.IsLineTerminator(charset.UChar(m.input[m.pos]))
	case AssertWordBoundary, AssertNotWordBoundary:
		before := m.pos > 0 && charset.IsWordChar(charset.UChar(m.input[m.pos-1]))
		after := m.pos < len(m.input) && charset.IsWordChar(charset.UChar(m.input[m.pos]))
		boundary := before != after
		if ins.AssertKind == AssertNotWordBoundary {
			return !boundary
		}
		return boundary
	case AssertLookAhead, AssertNotLookAhead:
		sub := NewMachine(ins.Sub, m.input)
		matched, _ := sub.Execute(0, m.pos, NewLimitTracer(1 << 20))
		if ins.AssertKind == AssertNotLookAhead {
			return !matched
		}
		return matched
	case AssertLookBehind, AssertNotLookBehind:
		sub := NewMachine(ins.Sub, m.input)
		matched, _ := sub.Execute(0, m.pos, NewLimitTracer(1 << 20))
		if ins.AssertKind == AssertNotLookBehind {
			return !matched
		}
		return matched
	}
	return false
}
