package routing

import (
	"context"
	"fmt"
	"math"

	"street_map/pkg/graph"
)

// Option configures a ShortestPaths run.
type Option func(*options)

type options struct {
	target *graph.Node
	state  *State
}

// StopAt ends the search as soon as target is settled. Distances of nodes
// not yet settled at that point are upper bounds only.
func StopAt(target *graph.Node) Option {
	return func(o *options) { o.target = target }
}

// WithState reuses s instead of allocating a new State. s is reset first.
func WithState(s *State) Option {
	return func(o *options) { o.state = s }
}

// ShortestPaths runs Dijkstra's algorithm from source over g. The frontier
// uses lazy deletion: a node may be queued several times and entries popped
// after the node is visited are discarded. ctx is checked once per pop.
func ShortestPaths(ctx context.Context, g *graph.Graph, source *graph.Node, opts ...Option) (*Tree, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if source == nil {
		return nil, fmt.Errorf("source: %w", graph.ErrNodeNotFound)
	}
	if g.Node(source.ID) != source {
		return nil, fmt.Errorf("source %q: %w", source.Name, graph.ErrNodeNotFound)
	}

	s := o.state
	if s == nil || uint32(len(s.Dist)) != g.NumNodes() {
		s = NewState(g.NumNodes())
	}
	s.Reset()

	target := noNode
	if o.target != nil {
		target = o.target.ID
	}

	// Init.
	s.relax(source.ID, 0, noNode)

	// Relax loop.
	for s.PQ.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := s.PQ.Pop()
		u := item.Node
		if s.Visited[u] {
			continue // stale entry
		}
		s.Visited[u] = true

		if u == target {
			break
		}

		du := s.Dist[u]
		for _, arc := range g.Node(u).Neighbors() {
			v := arc.To.ID
			if s.Visited[v] {
				continue
			}
			if nd := du + arc.Weight; nd < s.Dist[v] {
				s.relax(v, nd, u)
			}
		}
	}

	return &Tree{g: g, source: source, state: s}, nil
}

// Tree is the shortest-path tree of one run, rooted at its source.
type Tree struct {
	g      *graph.Graph
	source *graph.Node
	state  *State
}

// Source returns the root of the tree.
func (t *Tree) Source() *graph.Node { return t.source }

// State returns the underlying per-run state.
func (t *Tree) State() *State { return t.state }

// Dist returns the distance in miles from the source to n, or +Inf when n is
// unreachable.
func (t *Tree) Dist(n *graph.Node) float64 {
	return t.state.Dist[n.ID]
}

// Reachable reports whether a path from the source to n was found.
func (t *Tree) Reachable(n *graph.Node) bool {
	return !math.IsInf(t.state.Dist[n.ID], 1)
}

// Parent returns n's predecessor on its shortest path, or nil for the source
// and unreachable nodes.
func (t *Tree) Parent(n *graph.Node) *graph.Node {
	p := t.state.Parent[n.ID]
	if p == noNode {
		return nil
	}
	return t.g.Node(p)
}

// PathTo returns the nodes from the source to dst. It is [source] when dst is
// the source and empty when dst is unreachable. The parent walk is bounded by
// the node count, so a malformed state cannot loop forever.
func (t *Tree) PathTo(dst *graph.Node) []*graph.Node {
	if dst == t.source {
		return []*graph.Node{dst}
	}
	if t.state.Parent[dst.ID] == noNode {
		return nil
	}

	var rev []*graph.Node
	node := dst.ID
	for steps := uint32(0); steps <= t.g.NumNodes(); steps++ {
		rev = append(rev, t.g.Node(node))
		if node == t.source.ID {
			// Reverse to get source → dst.
			for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
				rev[i], rev[j] = rev[j], rev[i]
			}
			return rev
		}
		node = t.state.Parent[node]
		if node == noNode {
			return nil
		}
	}
	return nil
}
