package enfa

import (
	"fmt"

	"github.com/coregx/redoscope/ast"
	"github.com/coregx/redoscope/charset"
	"github.com/coregx/redoscope/internal/timeout"
)

// Fragment is the (start, accept) pair every compile step returns, per
// spec.md §4.2: "for each node the compiler allocates fresh state ids i, a
// and emits transitions; returns (i, a) for the fragment." accept is
// always a dangling TransEps state until the caller links it onward.
type Fragment struct {
	start, accept StateID
}

type compiler struct {
	alphabet *charset.ICharSet
	bound    charset.UChar
	fold     charset.CaseFold
	flags    ast.FlagSet
	b        *Builder
	t        timeout.Timeout
}

// Compile builds the ε-NFA for a whole pattern, including the unanchored
// wrapping spec.md §4.2 describes. The returned automaton always has
// exactly one start state and one TransMatch accept state.
func Compile(p *ast.Pattern, t timeout.Timeout) (*ENFA, error) {
	alphabet := BuildAlphabet(p)
	c := &compiler{
		alphabet: alphabet,
		bound:    alphabetBound(p.Flags.Unicode),
		fold:     selectFold(p.Flags),
		flags:    p.Flags,
		b:        NewBuilder(),
		t:        t,
	}

	body, err := c.compileNode(p.Root)
	if err != nil {
		return nil, err
	}
	whole, err := c.wrapUnanchored(p, body)
	if err != nil {
		return nil, err
	}

	match := c.b.AddMatch()
	if err := c.b.PatchEps(whole.accept, []StateID{match}); err != nil {
		return nil, err
	}
	return c.b.Build(whole.start, match), nil
}

// wrapUnanchored implements spec.md §4.2's "encode match anywhere" rule:
// a pattern not pinned to the start/end of input is wrapped with a
// non-greedy self-loop over the full alphabet on the side(s) it isn't
// anchored.
func (c *compiler) wrapUnanchored(p *ast.Pattern, body Fragment) (Fragment, error) {
	result := body
	if !p.HasLineBeginAtBegin() {
		prefix, err := c.selfLoop()
		if err != nil {
			return Fragment{}, err
		}
		result = c.sequence(prefix, result)
	}
	if !p.HasLineEndAtEnd() {
		suffix, err := c.selfLoop()
		if err != nil {
			return Fragment{}, err
		}
		result = c.sequence(result, suffix)
	}
	return result, nil
}

func (c *compiler) selfLoop() (Fragment, error) {
	full := charset.IChar{Set: charset.Of(charset.Interval{Lo: 0, Hi: c.bound})}
	atoms := c.alphabet.Refine(full)
	child := c.consume(atoms)
	return c.star(true, child), nil
}

// compileNode dispatches on the AST node's concrete type — the exhaustive
// tagged-sum-type match spec.md §9 calls for in place of dynamic dispatch.
func (c *compiler) compileNode(n ast.Node) (Fragment, error) {
	if err := c.t.Check("enfa.compile"); err != nil {
		return Fragment{}, err
	}

	switch v := n.(type) {
	case *ast.Sequence:
		frags := make([]Fragment, 0, len(v.Items))
		for _, it := range v.Items {
			f, err := c.compileNode(it)
			if err != nil {
				return Fragment{}, err
			}
			frags = append(frags, f)
		}
		return c.sequence(frags...), nil

	case *ast.Disjunction:
		frags := make([]Fragment, 0, len(v.Alternatives))
		for _, a := range v.Alternatives {
			f, err := c.compileNode(a)
			if err != nil {
				return Fragment{}, err
			}
			frags = append(frags, f)
		}
		return c.disjunction(frags), nil

	case *ast.Capture:
		return c.compileNode(v.Child)
	case *ast.NamedCapture:
		return c.compileNode(v.Child)
	case *ast.Group:
		return c.compileNode(v.Child)

	case *ast.Star:
		child, err := c.compileNode(v.Child)
		if err != nil {
			return Fragment{}, err
		}
		return c.star(v.NonGreedy, child), nil

	case *ast.Plus:
		child, err := c.compileNode(v.Child)
		if err != nil {
			return Fragment{}, err
		}
		return c.plus(v.NonGreedy, child), nil

	case *ast.Question:
		child, err := c.compileNode(v.Child)
		if err != nil {
			return Fragment{}, err
		}
		return c.question(v.NonGreedy, child), nil

	case *ast.Repeat:
		return c.compileRepeat(v)

	case *ast.WordBoundary:
		if v.Invert {
			return c.assertion(AssertNotWordBoundary), nil
		}
		return c.assertion(AssertWordBoundary), nil
	case *ast.LineBegin:
		return c.assertion(AssertLineBegin), nil
	case *ast.LineEnd:
		return c.assertion(AssertLineEnd), nil

	case *ast.LookAhead:
		return Fragment{}, unsupported("look-ahead assertion")
	case *ast.LookBehind:
		return Fragment{}, unsupported("look-behind assertion")
	case *ast.BackReference, *ast.NamedBackReference:
		return Fragment{}, unsupported("back-reference")

	case *ast.Character, *ast.Dot, *ast.CharacterClass, *ast.SimpleEscapeClass, *ast.UnicodeProperty:
		return c.compileAtom(n)

	default:
		return Fragment{}, unsupported(fmt.Sprintf("unrecognized AST node %T", n))
	}
}

// compileRepeat implements the four-way split of spec.md §4.2's bounded
// Repeat rule.
func (c *compiler) compileRepeat(v *ast.Repeat) (Fragment, error) {
	if !v.Max.Unbounded && v.Max.N < v.Min {
		return Fragment{}, invalidRegExp("out of order repetition quantifier")
	}

	var copies []Fragment
	for i := 0; i < v.Min; i++ {
		f, err := c.compileNode(v.Child)
		if err != nil {
			return Fragment{}, err
		}
		copies = append(copies, f)
	}

	switch {
	case v.Max.Unbounded:
		child, err := c.compileNode(v.Child)
		if err != nil {
			return Fragment{}, err
		}
		copies = append(copies, c.star(v.NonGreedy, child))
	case v.Max.N == v.Min:
		// Exact count: nothing to append.
	default:
		tail, err := c.compileOptionalChain(v.Child, v.Max.N-v.Min, v.NonGreedy)
		if err != nil {
			return Fragment{}, err
		}
		copies = append(copies, tail)
	}

	if len(copies) == 0 {
		shared := c.b.AddEps()
		return Fragment{start: shared, accept: shared}, nil
	}
	return c.sequence(copies...), nil
}

// compileOptionalChain builds the right-folded Question chain of length
// remaining spec.md §4.2 calls for when max exceeds min:
// a{2,5} compiles as "aa" followed by (a(a(a)?)?)? in spirit.
func (c *compiler) compileOptionalChain(child ast.Node, remaining int, nonGreedy bool) (Fragment, error) {
	if remaining == 0 {
		shared := c.b.AddEps()
		return Fragment{start: shared, accept: shared}, nil
	}
	head, err := c.compileNode(child)
	if err != nil {
		return Fragment{}, err
	}
	tail, err := c.compileOptionalChain(child, remaining-1, nonGreedy)
	if err != nil {
		return Fragment{}, err
	}
	return c.question(nonGreedy, c.sequence(head, tail)), nil
}

// compileAtom implements spec.md §4.2's "Atoms" rule: compute an IChar ch
// (the node's positive character content), canonicalize it under
// ignoreCase, then refine it against the shared alphabet — directly for a
// positive atom, or as alphabet_atoms ∖ refine(ch) for a negated one.
func (c *compiler) compileAtom(n ast.Node) (Fragment, error) {
	subs := rawSubAtoms(n, c.flags, c.bound)
	var union charset.IntervalSet
	for _, s := range subs {
		union = union.Union(s.Set)
	}
	if c.flags.IgnoreCase {
		union = charset.IChar{Set: union}.Canonicalize(c.fold).Set
	}
	ch := charset.IChar{Set: union}

	var atoms []CharAtom
	if invertedAtom(n) {
		atoms = subtractAtoms(c.alphabet.Members(), c.alphabet.Refine(ch))
	} else {
		atoms = c.alphabet.Refine(ch)
	}
	return c.consume(atoms), nil
}

func invertedAtom(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.CharacterClass:
		return v.Invert
	case *ast.UnicodeProperty:
		return v.Invert
	default:
		return false
	}
}

func subtractAtoms(all, chosen []CharAtom) []CharAtom {
	var out []CharAtom
	for _, a := range all {
		keep := true
		for _, c := range chosen {
			if a.Set.Equal(c.Set) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, a)
		}
	}
	return out
}

// --- fragment combinators, one per ε-NFA construction rule in spec.md §4.2 ---

func (c *compiler) sequence(frags ...Fragment) Fragment {
	if len(frags) == 0 {
		shared := c.b.AddEps()
		return Fragment{start: shared, accept: shared}
	}
	for i := 0; i < len(frags)-1; i++ {
		c.b.PatchEps(frags[i].accept, []StateID{frags[i+1].start})
	}
	return Fragment{start: frags[0].start, accept: frags[len(frags)-1].accept}
}

func (c *compiler) disjunction(frags []Fragment) Fragment {
	a := c.b.AddEps()
	starts := make([]StateID, len(frags))
	for i, f := range frags {
		starts[i] = f.start
		c.b.PatchEps(f.accept, []StateID{a})
	}
	i := c.b.AddEps(starts...)
	return Fragment{start: i, accept: a}
}

func (c *compiler) star(nonGreedy bool, child Fragment) Fragment {
	a := c.b.AddEps()
	var i StateID
	if nonGreedy {
		i = c.b.AddEps(a, child.start)
	} else {
		i = c.b.AddEps(child.start, a)
	}
	c.b.PatchEps(child.accept, []StateID{i})
	return Fragment{start: i, accept: a}
}

func (c *compiler) plus(nonGreedy bool, child Fragment) Fragment {
	a := c.b.AddEps()
	if nonGreedy {
		c.b.PatchEps(child.accept, []StateID{a, child.start})
	} else {
		c.b.PatchEps(child.accept, []StateID{child.start, a})
	}
	return Fragment{start: child.start, accept: a}
}

func (c *compiler) question(nonGreedy bool, child Fragment) Fragment {
	a := c.b.AddEps()
	var i StateID
	if nonGreedy {
		i = c.b.AddEps(a, child.start)
	} else {
		i = c.b.AddEps(child.start, a)
	}
	c.b.PatchEps(child.accept, []StateID{a})
	return Fragment{start: i, accept: a}
}

func (c *compiler) assertion(kind AssertKind) Fragment {
	a := c.b.AddEps()
	i := c.b.AddAssert(kind, a)
	return Fragment{start: i, accept: a}
}

func (c *compiler) consume(atoms []CharAtom) Fragment {
	a := c.b.AddEps()
	i := c.b.AddConsume(atoms, a)
	return Fragment{start: i, accept: a}
}
