// Package graph implements the directed labeled multigraph kernel the
// automaton checker builds its product automaton on top of: edges, reverse,
// Tarjan SCC, BFS shortest path, and reachability.
//
// Vertices are dense integers into an arena, mirroring the StateID-into-a-
// slice pattern coregx-coregex/nfa/nfa.go uses for its own states — the same
// shape the ε-NFA and ordered-NFA packages use, so a product automaton built
// on Q×Q reuses this representation without translation.
package graph

import "github.com/coregx/redoscope/internal/timeout"

// VertexID is a dense vertex identifier in [0, NumVertices()).
type VertexID uint32

// Edge is one (label, target) pair out of a vertex.
type Edge[L any] struct {
	Label L
	To    VertexID
}

// Graph is a directed labeled multigraph over dense vertex ids. Duplicate
// edges (same source, label, and target) are allowed — callers that need a
// simple graph must dedupe themselves.
type Graph[L any] struct {
	adj [][]Edge[L]
}

// New returns a graph with numVertices vertices and no edges.
func New[L any](numVertices int) *Graph[L] {
	return &Graph[L]{adj: make([][]Edge[L], numVertices)}
}

// NumVertices returns the number of vertices in the graph.
func (g *Graph[L]) NumVertices() int { return len(g.adj) }

// Vertices returns every vertex id, in ascending order.
func (g *Graph[L]) Vertices() []VertexID {
	out := make([]VertexID, len(g.adj))
	for i := range out {
		out[i] = VertexID(i)
	}
	return out
}

// AddEdge appends a (label, to) edge out of from, preserving insertion order
// — callers that encode backtracking priority (e.g. the ordered NFA's
// successor lists) rely on that order being preserved verbatim.
func (g *Graph[L]) AddEdge(from VertexID, label L, to VertexID) {
	g.adj[from] = append(g.adj[from], Edge[L]{Label: label, To: to})
}

// Edges returns the outgoing edges of v, in the order they were added.
func (g *Graph[L]) Edges(v VertexID) []Edge[L] {
	return g.adj[v]
}

// Reverse returns a new graph with every edge's endpoints swapped.
func (g *Graph[L]) Reverse() *Graph[L] {
	r := New[L](len(g.adj))
	for v, edges := range g.adj {
		for _, e := range edges {
			r.AddEdge(e.To, e.Label, VertexID(v))
		}
	}
	return r
}

// InducedSubgraph returns a new graph containing only the given vertices
// (renumbered densely in the order given) and the edges between them.
func (g *Graph[L]) InducedSubgraph(ids []VertexID) *Graph[L] {
	newID := make(map[VertexID]VertexID, len(ids))
	for i, id := range ids {
		newID[id] = VertexID(i)
	}
	sub := New[L](len(ids))
	for _, id := range ids {
		for _, e := range g.adj[id] {
			if to, ok := newID[e.To]; ok {
				sub.AddEdge(newID[id], e.Label, to)
			}
		}
	}
	return sub
}

// walkTag is the timeout.Check tag used by every forward traversal in this
// package, kept stable for comparable profiling traces across
// implementations (spec.md §9).
const walkTag = "graph.walk"

// checkTimeout is a small helper so every traversal pays the same cost for
// cooperative cancellation.
func checkTimeout(t timeout.Timeout) error {
	return t.Check(walkTag)
}
