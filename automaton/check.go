package automaton

import (
	"sort"

	"github.com/coregx/redoscope/ast"
	"github.com/coregx/redoscope/graph"
	"github.com/coregx/redoscope/internal/timeout"
	"github.com/coregx/redoscope/ordnfa"
)

// Params bounds the product-automaton construction — the automaton
// checker's half of spec.md §6's Config (maxNFASize here gates the product
// stage; ordnfa.Build already gated the ordered-NFA stage with its own
// copy of the same number).
type Params struct {
	MaxNFASize int
}

// Check runs spec.md §4.4's decision procedure over an already-built
// ordered NFA, classifying the pattern's worst-case backtracking behavior
// and, for Polynomial/Exponential, exhibiting a symbolic attack-string
// witness over alphabet symbol indices.
func Check(pat *ast.Pattern, n *ordnfa.OrderedNFA, params Params, t timeout.Timeout) (Complexity, error) {
	p, err := buildProduct(n, params.MaxNFASize, t)
	if err != nil {
		return Complexity{}, err
	}

	comps, err := p.g.SCC(t)
	if err != nil {
		return Complexity{}, err
	}
	sccOf := make([]int, p.g.NumVertices())
	for i, comp := range comps {
		for _, v := range comp {
			sccOf[v] = i
		}
	}

	acceptState, ok := acceptStateOf(n)
	if !ok {
		// No reachable accept: the pattern can never match, so it can never
		// backtrack catastrophically either.
		return classifyByConstant(pat), nil
	}
	acceptDiag := vertexOf(p, acceptState, acceptState)

	inits := make([]graph.VertexID, 0, len(n.Inits()))
	for _, q := range n.Inits() {
		inits = append(inits, vertexOf(p, q, q))
	}

	if w, ok, err := findEDA(p, comps, sccOf, inits, acceptDiag, t); err != nil {
		return Complexity{}, err
	} else if ok {
		return Complexity{Kind: Exponential, Witness: w}, nil
	}

	if w, degree, ok, err := findIDA(p, comps, sccOf, inits, acceptDiag, t); err != nil {
		return Complexity{}, err
	} else if ok {
		return Complexity{Kind: Polynomial, Degree: degree, Witness: w}, nil
	}

	return classifyByConstant(pat), nil
}

func classifyByConstant(pat *ast.Pattern) Complexity {
	if pat.IsConstant() {
		return Complexity{Kind: Constant}
	}
	return Complexity{Kind: Linear}
}

func acceptStateOf(n *ordnfa.OrderedNFA) (ordnfa.StateID, bool) {
	for q := ordnfa.StateID(0); int(q) < n.NumStates(); q++ {
		if n.IsAccept(q) {
			return q, true
		}
	}
	return 0, false
}

// isLoopy reports whether a product SCC contains a cycle: more than one
// vertex, or a single vertex with a self-loop edge.
func isLoopy(p *product, comp []graph.VertexID) bool {
	if len(comp) > 1 {
		return true
	}
	v := comp[0]
	for _, e := range p.g.Edges(v) {
		if e.To == v {
			return true
		}
	}
	return false
}

func sortedVertices(comp []graph.VertexID) []graph.VertexID {
	out := append([]graph.VertexID(nil), comp...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// findEDA looks for spec.md §4.4 step 2's exponential witness: a product
// SCC holding both a diagonal vertex and an off-diagonal vertex. Among all
// such SCCs the lexicographically smallest (minimum vertex id of the SCC,
// then diagonal id, then off-diagonal id) is chosen, for determinism.
func findEDA(p *product, comps [][]graph.VertexID, sccOf []int, inits []graph.VertexID, acceptDiag graph.VertexID, t timeout.Timeout) (*Witness[int], bool, error) {
	type candidate struct {
		sccMin  graph.VertexID
		diag    graph.VertexID
		offdiag graph.VertexID
	}
	var best *candidate

	for _, comp := range comps {
		if len(comp) < 2 {
			continue
		}
		sorted := sortedVertices(comp)
		var diag, offdiag graph.VertexID
		hasDiag, hasOff := false, false
		for _, v := range sorted {
			if p.isDiagonal(v) {
				if !hasDiag {
					diag, hasDiag = v, true
				}
			} else if !hasOff {
				offdiag, hasOff = v, true
			}
		}
		if !hasDiag || !hasOff {
			continue
		}
		cand := candidate{sccMin: sorted[0], diag: diag, offdiag: offdiag}
		if best == nil || lessCandidate(cand, *best) {
			best = &cand
		}
	}
	if best == nil {
		return nil, false, nil
	}

	sigma0, found, err := p.g.Path(inits, best.diag, t)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	pump, err := pumpThrough(p, best.diag, best.offdiag, t)
	if err != nil {
		return nil, false, err
	}
	if pump == nil {
		return nil, false, nil
	}
	sigma2, found, err := p.g.Path([]graph.VertexID{best.diag}, acceptDiag, t)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	w := &Witness[int]{
		Segments: []Segment[int]{{Prefix: sigma0, Pump: pump}},
		Suffix:   sigma2,
	}
	return w, true, nil
}

type edaCand = struct {
	sccMin  graph.VertexID
	diag    graph.VertexID
	offdiag graph.VertexID
}

func lessCandidate(a, b edaCand) bool {
	if a.sccMin != b.sccMin {
		return a.sccMin < b.sccMin
	}
	if a.diag != b.diag {
		return a.diag < b.diag
	}
	return a.offdiag < b.offdiag
}

// pumpThrough builds the round-trip diag -> offdiag -> diag path used as a
// pump segment, or nil if no such round trip exists (shouldn't happen for a
// genuine SCC member, but Path is a global BFS so this is a defensive
// check rather than an assumed invariant).
func pumpThrough(p *product, diag, offdiag graph.VertexID, t timeout.Timeout) ([]int, error) {
	out, found, err := p.g.Path([]graph.VertexID{diag}, offdiag, t)
	if err != nil || !found {
		return nil, err
	}
	back, found, err := p.g.Path([]graph.VertexID{offdiag}, diag, t)
	if err != nil || !found {
		return nil, err
	}
	return append(append([]int(nil), out...), back...), nil
}

// findIDA looks for spec.md §4.4 step 3's polynomial-degree chain: the
// longest sequence of distinct "loopy" SCCs reachable from one another in
// the product graph's condensation. Degree = chain length + 1; Polynomial
// is only reported once the chain holds at least one loopy SCC.
func findIDA(p *product, comps [][]graph.VertexID, sccOf []int, inits []graph.VertexID, acceptDiag graph.VertexID, t timeout.Timeout) (*Witness[int], int, bool, error) {
	loopy := make([]bool, len(comps))
	sccMin := make([]graph.VertexID, len(comps))
	for i, comp := range comps {
		loopy[i] = isLoopy(p, comp)
		sccMin[i] = sortedVertices(comp)[0]
	}

	cond := graph.New[struct{}](len(comps))
	seen := make(map[[2]int]bool)
	for v := graph.VertexID(0); int(v) < p.g.NumVertices(); v++ {
		from := sccOf[v]
		for _, e := range p.g.Edges(v) {
			to := sccOf[e.To]
			if to == from {
				continue
			}
			key := [2]int{from, to}
			if !seen[key] {
				seen[key] = true
				cond.AddEdge(graph.VertexID(from), struct{}{}, graph.VertexID(to))
			}
		}
	}

	// reach[i] = SCC ids reachable from i (excluding i).
	reach := make([]map[int]bool, len(comps))
	for i := range comps {
		set, err := cond.Reachable([]graph.VertexID{graph.VertexID(i)}, t)
		if err != nil {
			return nil, 0, false, err
		}
		m := make(map[int]bool, len(set))
		for _, v := range set {
			if int(v) != i {
				m[int(v)] = true
			}
		}
		reach[i] = m
	}

	loopyIDs := make([]int, 0)
	for i := range comps {
		if loopy[i] {
			loopyIDs = append(loopyIDs, i)
		}
	}
	sort.Slice(loopyIDs, func(i, j int) bool { return sccMin[loopyIDs[i]] < sccMin[loopyIDs[j]] })

	// longest path DP over the loopy-only reachability DAG, preferring the
	// lexicographically smallest chain (by sccMin) among equal-length ties.
	best := map[int][]int{} // sccID -> best chain starting here, as a list of sccIDs
	var longestFrom func(id int) []int
	longestFrom = func(id int) []int {
		if c, ok := best[id]; ok {
			return c
		}
		bestChain := []int{id}
		for _, next := range loopyIDs {
			if next == id || !reach[id][next] {
				continue
			}
			chain := append([]int{id}, longestFrom(next)...)
			if len(chain) > len(bestChain) || (len(chain) == len(bestChain) && lessChain(chain, bestChain, sccMin)) {
				bestChain = chain
			}
		}
		best[id] = bestChain
		return bestChain
	}

	var overall []int
	for _, id := range loopyIDs {
		chain := longestFrom(id)
		if len(chain) > len(overall) || (len(chain) == len(overall) && lessChain(chain, overall, sccMin)) {
			overall = chain
		}
	}

	if len(overall) == 0 {
		return nil, 0, false, nil
	}
	degree := len(overall) + 1

	w, err := buildPolynomialWitness(p, comps, overall, inits, acceptDiag, t)
	if err != nil || w == nil {
		return nil, 0, false, err
	}
	return w, degree, true, nil
}

func lessChain(a, b []int, sccMin []graph.VertexID) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if sccMin[a[i]] != sccMin[b[i]] {
			return sccMin[a[i]] < sccMin[b[i]]
		}
	}
	return len(a) < len(b)
}

func buildPolynomialWitness(p *product, comps [][]graph.VertexID, chain []int, inits []graph.VertexID, acceptDiag graph.VertexID, t timeout.Timeout) (*Witness[int], error) {
	w := &Witness[int]{}
	from := inits
	var lastDiag graph.VertexID
	for _, sccID := range chain {
		comp := sortedVertices(comps[sccID])
		var diag, offdiag graph.VertexID
		hasDiag, hasOff := false, false
		for _, v := range comp {
			if p.isDiagonal(v) {
				if !hasDiag {
					diag, hasDiag = v, true
				}
			} else if !hasOff {
				offdiag, hasOff = v, true
			}
		}
		if !hasDiag {
			return nil, nil
		}
		prefix, found, err := p.g.Path(from, diag, t)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		var pump []int
		if hasOff {
			pump, err = pumpThrough(p, diag, offdiag, t)
			if err != nil {
				return nil, err
			}
		}
		w.Segments = append(w.Segments, Segment[int]{Prefix: prefix, Pump: pump})
		from = []graph.VertexID{diag}
		lastDiag = diag
	}
	suffix, found, err := p.g.Path([]graph.VertexID{lastDiag}, acceptDiag, t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	w.Suffix = suffix
	return w, nil
}
