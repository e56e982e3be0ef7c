package graph

import "github.com/coregx/redoscope/internal/timeout"

// Path returns the labels along a shortest (fewest-edges) path from any
// vertex in sources to target, or (nil, false) if target is unreachable. If
// some source already equals target, the empty label sequence is returned.
func (g *Graph[L]) Path(sources []VertexID, target VertexID, t timeout.Timeout) ([]L, bool, error) {
	for _, s := range sources {
		if s == target {
			return nil, true, nil
		}
	}

	n := len(g.adj)
	visited := make([]bool, n)
	type via struct {
		from  VertexID
		label L
		has   bool
	}
	cameFrom := make([]via, n)

	queue := make([]VertexID, 0, len(sources))
	for _, s := range sources {
		if !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}

	found := false
	for len(queue) > 0 && !found {
		if err := checkTimeout(t); err != nil {
			return nil, false, err
		}
		v := queue[0]
		queue = queue[1:]
		for _, e := range g.adj[v] {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			cameFrom[e.To] = via{from: v, label: e.Label, has: true}
			if e.To == target {
				found = true
				break
			}
			queue = append(queue, e.To)
		}
	}

	if !visited[target] {
		return nil, false, nil
	}

	var labels []L
	cur := target
	for cameFrom[cur].has {
		labels = append(labels, cameFrom[cur].label)
		cur = cameFrom[cur].from
	}
	// Reverse into source-to-target order.
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return labels, true, nil
}
