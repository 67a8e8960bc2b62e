package skeleton

import (
	"fmt"
)

// spanningForest is the traversal-local state of FindCycles.
type spanningForest struct {
	parent     map[VertexID]VertexID
	parentEdge map[VertexID]EdgeID
}

// FindCycles clears every cycle flag and then flags each vertex and edge that
// lies on at least one cycle of the undirected multigraph.
//
// A breadth-first spanning forest is grown from every unvisited vertex. Each
// non-tree edge closes a cycle through the lowest common ancestor of its
// endpoints: the ancestor, the two tree paths below it and the edge itself
// are flagged. Tree edges are tracked per vertex, so parallel edges and
// self-loops are recognised as cycles.
//
// A tree edge that cannot be found while flagging a cycle is reported as
// ErrInvariant.
func (g *Graph) FindCycles() error {
	for _, s := range g.vertices {
		s.v.InCycle = false
	}
	for _, s := range g.edges {
		s.e.InCycle = false
	}

	f := spanningForest{
		parent:     make(map[VertexID]VertexID, g.nv),
		parentEdge: make(map[VertexID]EdgeID, g.nv),
	}
	visited := make(map[VertexID]bool, g.nv)

	for _, root := range g.Vertices() {
		if visited[root] {
			continue
		}
		visited[root] = true
		queue := []VertexID{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, e := range g.IncidentEdges(cur) {
				if e == f.parentEdge[cur] {
					continue
				}
				next, _ := g.OppositeVertex(e, cur)
				if visited[next] {
					if err := g.tagCycle(&f, cur, next, e); err != nil {
						return err
					}
					continue
				}
				visited[next] = true
				f.parent[next] = cur
				f.parentEdge[next] = e
				queue = append(queue, next)
			}
		}
	}
	return nil
}

// ancestry returns the tree path from the root of v's tree down to v.
func (f *spanningForest) ancestry(v VertexID, limit int) []VertexID {
	path := []VertexID{v}
	for p, ok := f.parent[v]; ok && len(path) <= limit; p, ok = f.parent[p] {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// tagCycle flags the cycle closed by the non-tree edge e between v1 and v2.
func (g *Graph) tagCycle(f *spanningForest, v1, v2 VertexID, e EdgeID) error {
	p1 := f.ancestry(v1, g.nv)
	p2 := f.ancestry(v2, g.nv)
	if p1[0] != p2[0] {
		return fmt.Errorf("%w: %v and %v have different spanning-tree roots", ErrInvariant, v1, v2)
	}

	i := 0
	for i < len(p1) && i < len(p2) && p1[i] == p2[i] {
		i++
	}
	g.vertices[p1[i-1].index].v.InCycle = true

	for _, suffix := range [][]VertexID{p1[i:], p2[i:]} {
		for _, v := range suffix {
			te, ok := f.parentEdge[v]
			ts := g.eslot(te)
			if !ok || ts == nil {
				return fmt.Errorf("%w: spanning-tree edge above %v disappeared", ErrInvariant, v)
			}
			g.vertices[v.index].v.InCycle = true
			ts.e.InCycle = true
		}
	}
	g.edges[e.index].e.InCycle = true
	return nil
}

// CycleVertices returns the vertices flagged by the last FindCycles call.
func (g *Graph) CycleVertices() []VertexID {
	var out []VertexID
	for _, v := range g.Vertices() {
		if g.vertices[v.index].v.InCycle {
			out = append(out, v)
		}
	}
	return out
}

// CycleEdges returns the edges flagged by the last FindCycles call.
func (g *Graph) CycleEdges() []EdgeID {
	var out []EdgeID
	for _, e := range g.Edges() {
		if g.edges[e.index].e.InCycle {
			out = append(out, e)
		}
	}
	return out
}
