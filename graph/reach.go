package graph

import (
	"fmt"

	"github.com/coregx/redoscope/internal/sparse"
	"github.com/coregx/redoscope/internal/timeout"
)

// Reachable returns the set of vertices reachable from any vertex in init
// via forward traversal, including init itself.
func (g *Graph[L]) Reachable(init []VertexID, t timeout.Timeout) ([]VertexID, error) {
	visited := sparse.NewSparseSet(uint32(len(g.adj)))
	var queue []VertexID
	for _, v := range init {
		if !visited.Contains(uint32(v)) {
			visited.Insert(uint32(v))
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		if err := checkTimeout(t); err != nil {
			return nil, err
		}
		v := queue[0]
		queue = queue[1:]
		for _, e := range g.adj[v] {
			if !visited.Contains(uint32(e.To)) {
				visited.Insert(uint32(e.To))
				queue = append(queue, e.To)
			}
		}
	}
	out := make([]VertexID, 0, visited.Size())
	for _, id := range visited.Values() {
		out = append(out, VertexID(id))
	}
	return out, nil
}

// ReachableMap returns, for every vertex, the set of its descendants
// (including itself). The input graph must be acyclic — per spec.md §9 this
// is a caller precondition, and ReachableMap enforces it with a clear panic
// rather than silently recursing forever on a cycle.
func (g *Graph[L]) ReachableMap(t timeout.Timeout) (map[VertexID][]VertexID, error) {
	n := len(g.adj)
	const (
		white = 0 // unvisited
		gray  = 1 // on the current DFS path
		black = 2 // finished
	)
	color := make([]uint8, n)
	memo := make(map[VertexID][]VertexID, n)

	var visit func(v VertexID) ([]VertexID, error)
	visit = func(v VertexID) ([]VertexID, error) {
		if err := checkTimeout(t); err != nil {
			return nil, err
		}
		if color[v] == black {
			return memo[v], nil
		}
		if color[v] == gray {
			panic(fmt.Sprintf("graph: ReachableMap called on a cyclic graph (back edge into vertex %d)", v))
		}
		color[v] = gray

		set := sparse.NewSparseSet(uint32(n))
		set.Insert(uint32(v))
		for _, e := range g.adj[v] {
			desc, err := visit(e.To)
			if err != nil {
				return nil, err
			}
			for _, d := range desc {
				set.Insert(uint32(d))
			}
		}
		color[v] = black
		out := make([]VertexID, 0, set.Size())
		for _, id := range set.Values() {
			out = append(out, VertexID(id))
		}
		memo[v] = out
		return out, nil
	}

	result := make(map[VertexID][]VertexID, n)
	for v := 0; v < n; v++ {
		desc, err := visit(VertexID(v))
		if err != nil {
			return nil, err
		}
		result[VertexID(v)] = desc
	}
	return result, nil
}
