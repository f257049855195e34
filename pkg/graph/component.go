package graph

import (
	"fmt"
)

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in x's set.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

func connect(g *Graph) *UnionFind {
	uf := NewUnionFind(g.NumNodes())
	g.EachEdge(func(a, b *Node, _ float64) bool {
		uf.Union(a.ID, b.ID)
		return true
	})
	return uf
}

// Components labels every node with its connected component. Two nodes are
// connected iff their labels, indexed by node ID, are equal. The second result
// is the number of components.
func Components(g *Graph) ([]uint32, int) {
	n := g.NumNodes()
	if n == 0 {
		return nil, 0
	}

	uf := connect(g)
	labels := make([]uint32, n)
	dense := make(map[uint32]uint32)
	for i := range n {
		root := uf.Find(i)
		label, ok := dense[root]
		if !ok {
			label = uint32(len(dense))
			dense[root] = label
		}
		labels[i] = label
	}
	return labels, len(dense)
}

// LargestComponent returns the IDs of the nodes in the largest connected
// component, in ID order.
func LargestComponent(g *Graph) []uint32 {
	n := g.NumNodes()
	if n == 0 {
		return nil
	}

	uf := connect(g)

	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := range n {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	ids := make([]uint32, 0, bestSize)
	for i := range n {
		if uf.Find(i) == bestRoot {
			ids = append(ids, i)
		}
	}
	return ids
}

// FilterToComponent builds a new sorted graph holding only the given nodes and
// the edges between them.
func FilterToComponent(g *Graph, ids []uint32) (*Graph, error) {
	keep := make(map[uint32]bool, len(ids))
	in := &Input{}
	for _, id := range ids {
		n := g.Node(id)
		if n == nil {
			return nil, fmt.Errorf("filter: unknown node ID %d", id)
		}
		keep[id] = true
		in.Intersections = append(in.Intersections, Intersection{Name: n.Name, Lat: n.Lat, Lon: n.Lon})
	}

	g.EachEdge(func(a, b *Node, _ float64) bool {
		if keep[a.ID] && keep[b.ID] {
			in.Roads = append(in.Roads, Road{Name: a.Name + "-" + b.Name, From: a.Name, To: b.Name})
		}
		return true
	})

	return Build(in)
}
