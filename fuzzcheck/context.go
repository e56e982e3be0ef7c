package fuzzcheck

import (
	"github.com/coregx/ahocorasick"

	"github.com/coregx/redoscope/ast"
	"github.com/coregx/redoscope/enfa"
	"github.com/coregx/redoscope/ordnfa"
	"github.com/coregx/redoscope/vmir"
)

// Context is the immutable per-pattern state a genetic search runs
// against: the compiled backtracking program, the alphabet a character
// wrap draws from, the literal runs a part-insertion mutator draws from,
// and an Aho-Corasick automaton over those same literals used as a cheap
// "does this candidate touch a literal part" coverage signal.
//
// Grounded on coregx-coregex/meta.Engine's split between a compiled,
// read-only snapshot and the mutable search/match state built on top of
// it; the Aho-Corasick wiring mirrors meta/compile.go's literal-alternation
// fast path, repurposed here as a novelty oracle instead of a matcher.
type Context struct {
	Program  *vmir.Program
	Alphabet []rune
	Parts    [][]rune

	ac *ahocorasick.Automaton
}

// NewContext compiles pat's backtracking program and derives the
// alphabet and literal parts the genetic search seeds and mutates from.
func NewContext(pat *ast.Pattern) (*Context, error) {
	prog, err := vmir.Compile(pat)
	if err != nil {
		return nil, err
	}

	members := enfa.BuildAlphabet(pat).Members()
	seen := make(map[rune]bool, len(members))
	alphabet := make([]rune, 0, len(members))
	for _, a := range members {
		r := ordnfa.RepresentativeRune(a)
		if seen[r] {
			continue
		}
		seen[r] = true
		alphabet = append(alphabet, r)
	}
	if len(alphabet) == 0 {
		alphabet = []rune{'a'}
	}

	ctx := &Context{
		Program:  prog,
		Alphabet: alphabet,
		Parts:    extractParts(pat.Root),
	}
	if err := ctx.buildAhoCorasick(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (c *Context) buildAhoCorasick() error {
	b := ahocorasick.NewBuilder()
	any := false
	for _, p := range c.Parts {
		if len(p) == 0 {
			continue
		}
		b.AddPattern([]byte(string(p)))
		any = true
	}
	if !any {
		return nil
	}
	ac, err := b.Build()
	if err != nil {
		return err
	}
	c.ac = ac
	return nil
}

// PartsCovered reports whether text touches any of the pattern's literal
// runs. Called from runTrace for every candidate; Population.admit uses
// the result as one way a candidate can justify a sub-par rate: it
// reached a literal the VM's coverage digest alone might miss.
func (c *Context) PartsCovered(text []rune) bool {
	if c.ac == nil {
		return false
	}
	return c.ac.IsMatch([]byte(string(text)))
}

// extractParts walks a pattern's AST collecting maximal runs of adjacent
// literal characters inside a Sequence — the substrings worth seeding the
// search with directly, rather than building them one character wrap at a
// time. Grounded on enfa/alphabet.go's BuildAlphabet recursive-AST-walk
// idiom.
func extractParts(n ast.Node) [][]rune {
	var parts [][]rune

	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Sequence:
			var run []rune
			flush := func() {
				if len(run) > 0 {
					parts = append(parts, append([]rune(nil), run...))
					run = nil
				}
			}
			for _, item := range v.Items {
				if c, ok := item.(*ast.Character); ok {
					run = append(run, c.Char)
					continue
				}
				flush()
				walk(item)
			}
			flush()
		case *ast.Disjunction:
			for _, alt := range v.Alternatives {
				walk(alt)
			}
		case *ast.Capture:
			walk(v.Child)
		case *ast.NamedCapture:
			walk(v.Child)
		case *ast.Group:
			walk(v.Child)
		case *ast.Star:
			walk(v.Child)
		case *ast.Plus:
			walk(v.Child)
		case *ast.Question:
			walk(v.Child)
		case *ast.Repeat:
			walk(v.Child)
		case *ast.LookAhead:
			walk(v.Child)
		case *ast.LookBehind:
			walk(v.Child)
		case *ast.Character:
			parts = append(parts, []rune{v.Char})
		}
	}
	walk(n)
	return parts
}
