package graph

import "github.com/coregx/redoscope/internal/timeout"

// SCC computes the strongly connected components of g using Tarjan's
// algorithm. Components are returned in no particular order; a vertex with
// no self-loop is still returned as its own (trivial) singleton component.
//
// Implemented iteratively with an explicit work stack — spec.md §9 calls out
// that the NFA and product graph can be pathologically deep, so recursive
// Tarjan is not an option here.
func (g *Graph[L]) SCC(t timeout.Timeout) ([][]VertexID, error) {
	n := len(g.adj)
	const unvisited = -1
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	var stack []VertexID // Tarjan's "S"
	var components [][]VertexID
	nextIndex := 0

	type frame struct {
		v       VertexID
		edgeIdx int
	}

	for start := 0; start < n; start++ {
		if index[start] != unvisited {
			continue
		}

		var work []frame
		work = append(work, frame{v: VertexID(start)})
		index[start] = nextIndex
		lowlink[start] = nextIndex
		nextIndex++
		stack = append(stack, VertexID(start))
		onStack[start] = true

		for len(work) > 0 {
			if err := checkTimeout(t); err != nil {
				return nil, err
			}

			top := &work[len(work)-1]
			v := top.v
			edges := g.adj[v]

			if top.edgeIdx < len(edges) {
				w := edges[top.edgeIdx].To
				top.edgeIdx++

				if index[w] == unvisited {
					index[w] = nextIndex
					lowlink[w] = nextIndex
					nextIndex++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, frame{v: w})
				} else if onStack[w] {
					if index[w] < lowlink[v] {
						lowlink[v] = index[w]
					}
				}
				continue
			}

			// Done with v: pop its frame, propagate lowlink to parent.
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if lowlink[v] < lowlink[parent.v] {
					lowlink[parent.v] = lowlink[v]
				}
			}

			if lowlink[v] == index[v] {
				var comp []VertexID
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				components = append(components, comp)
			}
		}
	}

	return components, nil
}
