package vmir

import (
	"fmt"

	"github.com/coregx/redoscope/ast"
	"github.com/coregx/redoscope/charset"
	"github.com/coregx/redoscope/enfa"
)

// fragment is one compiled sub-program: start is its entry address, outs
// is the list of dangling exit fields still waiting for a target — the
// flat-bytecode analogue of enfa.Fragment's (start, accept) pair. Where a
// graph fragment wires an accept state with an eps edge, a bytecode
// fragment patches an instruction field once the address that should
// follow it is known.
type fragment struct {
	start Addr
	outs  []patch
}

// patch assigns a still-unknown jump target once the compiler reaches it.
type patch func(target Addr)

type compiler struct {
	prog        []Instruction
	flags       ast.FlagSet
	bound       charset.UChar
	reverse     bool // compiling a look-behind sub-program: read backward
	numRegs     int
	numCaptures int
}

// alphabetBound mirrors enfa.alphabetBound: the BMP under Annex B
// semantics, the full Unicode range under the 'u' flag.
func alphabetBound(unicodeFlag bool) charset.UChar {
	if unicodeFlag {
		return charset.MaxUChar + 1
	}
	return charset.MaxBMP
}

// Compile builds a backtracking Program for the whole pattern, including
// the same "match anywhere" unanchored wrapping enfa.Compile applies, so
// the automaton and fuzz checkers agree on what counts as a match.
func Compile(pat *ast.Pattern) (*Program, error) {
	c := &compiler{flags: pat.Flags, bound: alphabetBound(pat.Flags.Unicode)}

	var prefix *fragment
	if !pat.HasLineBeginAtBegin() {
		f, err := c.selfLoop()
		if err != nil {
			return nil, err
		}
		prefix = &f
	}

	body, err := c.compileNode(pat.Root)
	if err != nil {
		return nil, err
	}

	result := body
	if prefix != nil {
		c.patchAll(prefix.outs, body.start)
		result = fragment{start: prefix.start, outs: body.outs}
	}

	if !pat.HasLineEndAtEnd() {
		suffix, err := c.selfLoop()
		if err != nil {
			return nil, err
		}
		c.patchAll(result.outs, suffix.start)
		result = fragment{start: result.start, outs: suffix.outs}
	}

	c.patchAll(result.outs, c.here())
	c.emit(Instruction{Op: OpOk})

	return &Program{
		Instructions: c.prog,
		NumRegs:      c.numRegs,
		NumCaptures:  c.numCaptures,
		Multiline:    pat.Flags.Multiline,
		Unicode:      pat.Flags.Unicode,
	}, nil
}

func (c *compiler) emit(ins Instruction) Addr {
	c.prog = append(c.prog, ins)
	return Addr(len(c.prog) - 1)
}

func (c *compiler) here() Addr { return Addr(len(c.prog)) }

func (c *compiler) newReg() Reg {
	r := Reg(c.numRegs)
	c.numRegs++
	return r
}

func (c *compiler) targetPatch(addr Addr) patch { return func(t Addr) { c.prog[addr].Target = t } }
func (c *compiler) altPatch(addr Addr) patch    { return func(t Addr) { c.prog[addr].Alt = t } }
func (c *compiler) falsePatch(addr Addr) patch  { return func(t Addr) { c.prog[addr].False = t } }

func (c *compiler) patchAll(outs []patch, target Addr) {
	for _, p := range outs {
		p(target)
	}
}

// selfLoop is the non-greedy dot-star used to pad an unanchored pattern,
// matching enfa's selfLoop combinator.
func (c *compiler) selfLoop() (fragment, error) {
	full := charset.Of(charset.Interval{Lo: 0, Hi: c.bound})
	op := OpRead
	if c.reverse {
		op = OpReadBack
	}
	return c.compileKleene(true, func() (fragment, error) {
		addr := c.emit(Instruction{Op: op, Set: full})
		return fragment{start: addr}, nil
	})
}

// compileNode dispatches on the AST node's concrete type, the same
// exhaustive tagged-sum-type match enfa.compileNode uses.
func (c *compiler) compileNode(n ast.Node) (fragment, error) {
	switch v := n.(type) {
	case *ast.Sequence:
		return c.compileSequence(v.Items)

	case *ast.Disjunction:
		return c.compileDisjunction(v.Alternatives)

	case *ast.Capture:
		return c.compileCapture(v.Index, v.Child)
	case *ast.NamedCapture:
		return c.compileCapture(v.Index, v.Child)
	case *ast.Group:
		return c.compileNode(v.Child)

	case *ast.Star:
		return c.compileKleene(v.NonGreedy, func() (fragment, error) { return c.compileNode(v.Child) })
	case *ast.Plus:
		return c.compilePlus(v.NonGreedy, func() (fragment, error) { return c.compileNode(v.Child) })
	case *ast.Question:
		return c.compileQuestion(v.NonGreedy, func() (fragment, error) { return c.compileNode(v.Child) })
	case *ast.Repeat:
		return c.compileRepeat(v)

	case *ast.WordBoundary:
		if v.Invert {
			return c.assertFrag(AssertNotWordBoundary), nil
		}
		return c.assertFrag(AssertWordBoundary), nil
	case *ast.LineBegin:
		return c.assertFrag(AssertLineBegin), nil
	case *ast.LineEnd:
		return c.assertFrag(AssertLineEnd), nil

	case *ast.LookAhead:
		return c.compileLookaround(v.Invert, false, v.Child)
	case *ast.LookBehind:
		return c.compileLookaround(v.Invert, true, v.Child)

	case *ast.BackReference, *ast.NamedBackReference:
		return fragment{}, unsupported("back-reference")

	case *ast.Character, *ast.Dot, *ast.CharacterClass, *ast.SimpleEscapeClass, *ast.UnicodeProperty:
		return c.compileAtom(n)

	default:
		return fragment{}, unsupported(fmt.Sprintf("unrecognized AST node %T", n))
	}
}

// compileSequence emits each item in order, patching the previous item's
// dangling exits to the next item's (already known, since it compiles
// immediately next) start address. A look-behind sub-program runs the
// items in reverse, since matching backward visits the pattern's terms
// from last to first.
func (c *compiler) compileSequence(items []ast.Node) (fragment, error) {
	order := items
	if c.reverse {
		order = make([]ast.Node, len(items))
		for i, it := range items {
			order[len(items)-1-i] = it
		}
	}
	if len(order) == 0 {
		return fragment{start: c.here()}, nil
	}

	first, err := c.compileNode(order[0])
	if err != nil {
		return fragment{}, err
	}
	start := first.start
	prevOuts := first.outs
	for _, it := range order[1:] {
		c.patchAll(prevOuts, c.here())
		f, err := c.compileNode(it)
		if err != nil {
			return fragment{}, err
		}
		prevOuts = f.outs
	}
	return fragment{start: start, outs: prevOuts}, nil
}

// compileDisjunction builds a right-leaning chain of Try instructions, one
// binary split per alternative, mirroring a Split-chain bytecode compiler:
// alts[0]'s code, then a dangling jump past the rest, then alts[1:]'s own
// chain, with the outer Try picking between the two.
func (c *compiler) compileDisjunction(alts []ast.Node) (fragment, error) {
	if len(alts) == 1 {
		return c.compileNode(alts[0])
	}

	tryAddr := c.emit(Instruction{Op: OpTry})
	c.prog[tryAddr].Target = c.here()
	f0, err := c.compileNode(alts[0])
	if err != nil {
		return fragment{}, err
	}
	jmpAddr := c.emit(Instruction{Op: OpJmp})
	c.patchAll(f0.outs, jmpAddr)

	c.prog[tryAddr].Alt = c.here()
	rest, err := c.compileDisjunction(alts[1:])
	if err != nil {
		return fragment{}, err
	}

	outs := append([]patch{c.targetPatch(jmpAddr)}, rest.outs...)
	return fragment{start: tryAddr, outs: outs}, nil
}

func (c *compiler) compileCapture(index int, child ast.Node) (fragment, error) {
	if index+1 > c.numCaptures {
		c.numCaptures = index + 1
	}
	beginAddr := c.emit(Instruction{Op: OpCapBegin, Cap: index})
	childFrag, err := c.compileNode(child)
	if err != nil {
		return fragment{}, err
	}
	c.patchAll(childFrag.outs, c.here())
	c.emit(Instruction{Op: OpCapEnd, Cap: index})
	return fragment{start: beginAddr}, nil
}

// compileKleene is the zero-or-more loop: an entry choice between running
// the body or skipping straight past it, and after each body iteration a
// tail choice between looping back or exiting. PushCanary/CheckCanary
// guard against a zero-width body spinning the loop forever.
func (c *compiler) compileKleene(nonGreedy bool, bodyFn func() (fragment, error)) (fragment, error) {
	entryAddr := c.emit(Instruction{Op: OpTry})
	pushAddr := c.emit(Instruction{Op: OpPushCanary})
	if nonGreedy {
		c.prog[entryAddr].Alt = pushAddr
	} else {
		c.prog[entryAddr].Target = pushAddr
	}

	bodyFrag, err := bodyFn()
	if err != nil {
		return fragment{}, err
	}
	c.patchAll(bodyFrag.outs, c.here())
	c.emit(Instruction{Op: OpCheckCanary})

	tailAddr := c.emit(Instruction{Op: OpTry})
	var outs []patch
	if nonGreedy {
		c.prog[tailAddr].Alt = pushAddr
		outs = append(outs, c.targetPatch(entryAddr), c.targetPatch(tailAddr))
	} else {
		c.prog[tailAddr].Target = pushAddr
		outs = append(outs, c.altPatch(entryAddr), c.altPatch(tailAddr))
	}
	return fragment{start: entryAddr, outs: outs}, nil
}

// compilePlus is one mandatory body iteration followed by the same
// loop-or-exit tail choice compileKleene uses for subsequent iterations.
func (c *compiler) compilePlus(nonGreedy bool, bodyFn func() (fragment, error)) (fragment, error) {
	pushAddr := c.emit(Instruction{Op: OpPushCanary})
	bodyFrag, err := bodyFn()
	if err != nil {
		return fragment{}, err
	}
	c.patchAll(bodyFrag.outs, c.here())
	c.emit(Instruction{Op: OpCheckCanary})

	tailAddr := c.emit(Instruction{Op: OpTry})
	var outs []patch
	if nonGreedy {
		c.prog[tailAddr].Alt = pushAddr
		outs = append(outs, c.targetPatch(tailAddr))
	} else {
		c.prog[tailAddr].Target = pushAddr
		outs = append(outs, c.altPatch(tailAddr))
	}
	return fragment{start: pushAddr, outs: outs}, nil
}

// compileQuestion is a single entry choice between running the body once
// or skipping it; no loop, so no canary is needed.
func (c *compiler) compileQuestion(nonGreedy bool, bodyFn func() (fragment, error)) (fragment, error) {
	entryAddr := c.emit(Instruction{Op: OpTry})
	bodyStart := c.here()
	if nonGreedy {
		c.prog[entryAddr].Alt = bodyStart
	} else {
		c.prog[entryAddr].Target = bodyStart
	}

	bodyFrag, err := bodyFn()
	if err != nil {
		return fragment{}, err
	}

	var outs []patch
	if nonGreedy {
		outs = append(outs, c.targetPatch(entryAddr))
	} else {
		outs = append(outs, c.altPatch(entryAddr))
	}
	outs = append(outs, bodyFrag.outs...)
	return fragment{start: entryAddr, outs: outs}, nil
}

// compileRepeat implements the bounded child{min,max} quantifier with a
// counter register rather than unrolling min/max copies of the child, so
// program size stays independent of how large max is: Reset the counter,
// force the body while count < min, offer a choice while min <= count <
// max (or unconditionally once max is unbounded), and force an exit once
// count >= max.
func (c *compiler) compileRepeat(v *ast.Repeat) (fragment, error) {
	if !v.Max.Unbounded && v.Max.N < v.Min {
		return fragment{}, unsupported("out of order repetition quantifier")
	}

	r := c.newReg()
	resetAddr := c.emit(Instruction{Op: OpReset, Reg: r})
	loopAddr := c.here()
	cmpMinAddr := c.emit(Instruction{Op: OpCmp, Reg: r, Rel: CmpLT, N: v.Min})

	var outs []patch
	var choiceAddr Addr

	switch {
	case v.Max.Unbounded:
		choiceAddr = c.emit(Instruction{Op: OpTry})
		c.prog[cmpMinAddr].False = choiceAddr
	case v.Max.N == v.Min:
		choiceAddr = InvalidAddr
		outs = append(outs, c.falsePatch(cmpMinAddr))
	default:
		cmpMaxAddr := c.emit(Instruction{Op: OpCmp, Reg: r, Rel: CmpLT, N: v.Max.N})
		c.prog[cmpMinAddr].False = cmpMaxAddr
		choiceAddr = c.emit(Instruction{Op: OpTry})
		c.prog[cmpMaxAddr].True = choiceAddr
		outs = append(outs, c.falsePatch(cmpMaxAddr))
	}

	bodyAddr := c.here()
	c.prog[cmpMinAddr].True = bodyAddr
	if choiceAddr != InvalidAddr {
		if v.NonGreedy {
			c.prog[choiceAddr].Alt = bodyAddr
			outs = append(outs, c.targetPatch(choiceAddr))
		} else {
			c.prog[choiceAddr].Target = bodyAddr
			outs = append(outs, c.altPatch(choiceAddr))
		}
	}

	c.emit(Instruction{Op: OpPushCanary})
	childFrag, err := c.compileNode(v.Child)
	if err != nil {
		return fragment{}, err
	}
	c.patchAll(childFrag.outs, c.here())
	c.emit(Instruction{Op: OpCheckCanary})
	c.emit(Instruction{Op: OpInc, Reg: r})
	c.emit(Instruction{Op: OpJmp, Target: loopAddr})

	return fragment{start: resetAddr, outs: outs}, nil
}

func (c *compiler) assertFrag(kind AssertKind) fragment {
	addr := c.emit(Instruction{Op: OpAssert, AssertKind: kind})
	return fragment{start: addr}
}

// compileLookaround compiles child as its own self-contained Program,
// embedded in an Assert instruction the Machine runs on a fresh sub-Machine
// at the current position. A look-behind's sub-program reads backward
// (ReadBack, reversed sequence order) so evaluating it forward from the
// current position against the preceding text is correct.
func (c *compiler) compileLookaround(invert, behind bool, child ast.Node) (fragment, error) {
	sub := &compiler{flags: c.flags, bound: c.bound, reverse: behind}
	body, err := sub.compileNode(child)
	if err != nil {
		return fragment{}, err
	}
	sub.patchAll(body.outs, sub.here())
	sub.emit(Instruction{Op: OpOk})

	prog := &Program{
		Instructions: sub.prog,
		NumRegs:      sub.numRegs,
		NumCaptures:  sub.numCaptures,
		Multiline:    c.flags.Multiline,
		Unicode:      c.flags.Unicode,
	}

	var kind AssertKind
	switch {
	case !behind && !invert:
		kind = AssertLookAhead
	case !behind && invert:
		kind = AssertNotLookAhead
	case behind && !invert:
		kind = AssertLookBehind
	default:
		kind = AssertNotLookBehind
	}

	addr := c.emit(Instruction{Op: OpAssert, AssertKind: kind, Sub: prog})
	return fragment{start: addr}, nil
}

// compileAtom computes the atom's character set with enfa.AtomSet (the
// same per-node logic the ε-NFA compiler uses) and emits a single Read —
// or ReadBack, inside a look-behind sub-program.
func (c *compiler) compileAtom(n ast.Node) (fragment, error) {
	set := enfa.AtomSet(n, c.flags, c.bound)
	op := OpRead
	if c.reverse {
		op = OpReadBack
	}
	addr := c.emit(Instruction{Op: op, Set: set})
	return fragment{start: addr}, nil
}
