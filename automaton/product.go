package automaton

import (
	"github.com/coregx/redoscope/graph"
	"github.com/coregx/redoscope/internal/timeout"
	"github.com/coregx/redoscope/ordnfa"
)

// product is the Q×Q automaton of spec.md §4.4 step 1: vertex (p1,p2)
// transitions to every (t1,t2) reachable by both positions independently
// consuming the same symbol.
type product struct {
	n    *ordnfa.OrderedNFA
	g    *graph.Graph[int] // edge label is the symbol index
	size int               // n.NumStates()
}

func vertexOf(p *product, p1, p2 ordnfa.StateID) graph.VertexID {
	return graph.VertexID(int(p1)*p.size + int(p2))
}

func (p *product) positions(v graph.VertexID) (ordnfa.StateID, ordnfa.StateID) {
	return ordnfa.StateID(int(v) / p.size), ordnfa.StateID(int(v) % p.size)
}

func (p *product) isDiagonal(v graph.VertexID) bool {
	p1, p2 := p.positions(v)
	return p1 == p2
}

// buildProduct constructs the product automaton, failing with *SizeError if
// |Q|² would exceed maxNFASize².
func buildProduct(n *ordnfa.OrderedNFA, maxNFASize int, t timeout.Timeout) (*product, error) {
	size := n.NumStates()
	if size > maxNFASize {
		return nil, &SizeError{Limit: maxNFASize, Got: size}
	}
	total := size * size
	if total > maxNFASize*maxNFASize {
		return nil, &SizeError{Limit: maxNFASize * maxNFASize, Got: total}
	}

	p := &product{n: n, size: size, g: graph.New[int](total)}
	alphabetLen := n.AlphabetLen()
	for p1 := ordnfa.StateID(0); int(p1) < size; p1++ {
		for p2 := ordnfa.StateID(0); int(p2) < size; p2++ {
			if err := t.Check("automaton.product"); err != nil {
				return nil, err
			}
			from := vertexOf(p, p1, p2)
			for sym := 0; sym < alphabetLen; sym++ {
				if !n.Matches(p1, sym) || !n.Matches(p2, sym) {
					continue
				}
				for _, t1 := range n.Delta(p1, sym) {
					for _, t2 := range n.Delta(p2, sym) {
						p.g.AddEdge(from, sym, vertexOf(p, t1, t2))
					}
				}
			}
		}
	}
	return p, nil
}
