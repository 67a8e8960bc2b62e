package skeleton

import (
	"fmt"
)

// ShortestPath returns a minimal-length vertex sequence [from, ..., to]
// joining from and to, ignoring edge directions. It returns [from] when both
// handles are equal and ErrNoPath when to is unreachable.
//
// The search is a breadth-first traversal started at to and gated by a local
// visited set, so it terminates on any multigraph and leaves the graph
// untouched.
func (g *Graph) ShortestPath(from, to VertexID) ([]VertexID, error) {
	if g.vslot(from) == nil || g.vslot(to) == nil {
		return nil, ErrUnknownVertex
	}
	if from == to {
		return []VertexID{from}, nil
	}

	parent := map[VertexID]VertexID{to: {}}
	queue := []VertexID{to}
	found := false
	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		s := g.vertices[cur.index]
		visit := func(next VertexID) {
			if _, seen := parent[next]; seen {
				return
			}
			parent[next] = cur
			if next == from {
				found = true
			}
			queue = append(queue, next)
		}
		for _, e := range s.in {
			visit(g.edges[e.index].from)
		}
		for _, e := range s.out {
			visit(g.edges[e.index].to)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %v to %v", ErrNoPath, from, to)
	}

	path := []VertexID{from}
	for v := parent[from]; !v.IsNil(); v = parent[v] {
		path = append(path, v)
	}
	return path, nil
}

// endpointPair enumerates the endpoint pairings of two edges in the fixed
// order source-source, source-target, target-source, target-target.
type endpointPair int

const (
	pairSourceSource endpointPair = iota
	pairSourceTarget
	pairTargetSource
	pairTargetTarget
)

// closestEndpoints runs ShortestPath for the four endpoint pairs of a and b
// and returns the shortest result. Ties keep the earliest pair. Unreachable
// pairs are skipped; ErrNoPath is returned only if all four are.
func (g *Graph) closestEndpoints(a, b EdgeID) ([]VertexID, endpointPair, error) {
	as, at := g.Endpoints(a)
	bs, bt := g.Endpoints(b)
	if as.IsNil() || bs.IsNil() {
		return nil, 0, ErrUnknownEdge
	}
	pairs := [4][2]VertexID{{as, bs}, {as, bt}, {at, bs}, {at, bt}}

	var best []VertexID
	bestIdx := endpointPair(-1)
	for i, p := range pairs {
		path, err := g.ShortestPath(p[0], p[1])
		if err != nil {
			continue
		}
		if best == nil || len(path) < len(best) {
			best, bestIdx = path, endpointPair(i)
		}
	}
	if best == nil {
		return nil, 0, fmt.Errorf("%w: %v to %v", ErrNoPath, a, b)
	}
	return best, bestIdx, nil
}

// ShortestPathBetweenEdges returns the shortest vertex path joining an
// endpoint of a to an endpoint of b. Ties between endpoint pairs are broken
// in the order source-source, source-target, target-source, target-target.
func (g *Graph) ShortestPathBetweenEdges(a, b EdgeID) ([]VertexID, error) {
	path, _, err := g.closestEndpoints(a, b)
	return path, err
}

// ConnectedComponents returns the number of weakly connected components.
func (g *Graph) ConnectedComponents() int {
	return len(g.Components())
}

// Components returns the vertices of every weakly connected component in
// discovery order. Components are ordered by their first vertex in slot
// order.
func (g *Graph) Components() [][]VertexID {
	seen := make(map[VertexID]bool, g.nv)
	var comps [][]VertexID
	for _, start := range g.Vertices() {
		if seen[start] {
			continue
		}
		seen[start] = true
		comp := []VertexID{start}
		for i := 0; i < len(comp); i++ {
			s := g.vertices[comp[i].index]
			for _, e := range s.in {
				if n := g.edges[e.index].from; !seen[n] {
					seen[n] = true
					comp = append(comp, n)
				}
			}
			for _, e := range s.out {
				if n := g.edges[e.index].to; !seen[n] {
					seen[n] = true
					comp = append(comp, n)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}
