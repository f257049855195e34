package graph

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/paulmach/orb"
)

var (
	// ErrNodeNotFound is returned when a name lookup fails.
	ErrNodeNotFound = errors.New("node not found")
	// ErrDuplicateNode is returned when a name is added twice.
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrSelfLoop is returned when an edge would connect a node to itself.
	ErrSelfLoop = errors.New("self-loop edge")
	// ErrNotSorted is returned by FindNode before SortNodes has been called.
	ErrNotSorted = errors.New("graph nodes not sorted")
	// ErrBadCoordinate is returned for a NaN, infinite or out-of-range position.
	ErrBadCoordinate = errors.New("bad coordinate")
)

// Graph owns a set of uniquely named nodes and the undirected edges between
// them. Name lookup is a binary search and requires SortNodes first.
type Graph struct {
	nodes    []*Node // sorted by name once sorted is true
	byID     []*Node // insertion order; byID[n.ID] == n
	names    map[string]struct{}
	sorted   bool
	numEdges int
	bounds   orb.Bound
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		names:  make(map[string]struct{}),
		bounds: emptyBound(),
	}
}

func emptyBound() orb.Bound {
	// Min > Max so the first Extend takes the point as both corners.
	return orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{-1, -1}}
}

// AddNode appends n and assigns its ID. The graph must be re-sorted before the
// next lookup.
func (g *Graph) AddNode(n *Node) error {
	if !ValidCoordinate(n.Lat, n.Lon) {
		return fmt.Errorf("%w: (%v, %v)", ErrBadCoordinate, n.Lat, n.Lon)
	}
	if _, ok := g.names[n.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, n.Name)
	}
	g.names[n.Name] = struct{}{}

	n.ID = uint32(len(g.byID))
	g.byID = append(g.byID, n)
	g.nodes = append(g.nodes, n)
	g.sorted = false
	g.extend(n)
	return nil
}

// ValidCoordinate reports whether lat and lon are finite and within
// [-90, 90] and [-180, 180].
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func (g *Graph) extend(n *Node) {
	p := orb.Point{n.Lon, n.Lat}
	if g.bounds.IsEmpty() {
		g.bounds = p.Bound()
		return
	}
	g.bounds = g.bounds.Extend(p)
}

// SortNodes orders the node collection by name, enabling FindNode.
func (g *Graph) SortNodes() {
	slices.SortFunc(g.nodes, (*Node).Compare)
	g.sorted = true
}

// Sorted reports whether FindNode may be used.
func (g *Graph) Sorted() bool { return g.sorted }

// FindNode binary-searches the sorted collection for name.
func (g *Graph) FindNode(name string) (*Node, error) {
	if !g.sorted {
		return nil, ErrNotSorted
	}
	i, ok := slices.BinarySearchFunc(g.nodes, name, func(n *Node, target string) int {
		return strings.Compare(n.Name, target)
	})
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return g.nodes[i], nil
}

// AddEdge connects the two named nodes in both directions. Weight is the
// great-circle distance between them.
func (g *Graph) AddEdge(name1, name2 string) error {
	n1, err := g.FindNode(name1)
	if err != nil {
		return err
	}
	n2, err := g.FindNode(name2)
	if err != nil {
		return err
	}
	if n1 == n2 {
		return fmt.Errorf("%w: %q", ErrSelfLoop, name1)
	}

	if _, exists := n1.Weight(n2); !exists {
		g.numEdges++
	}
	n1.AddNeighbor(n2)
	n2.AddNeighbor(n1)
	return nil
}

// Nodes returns all nodes, sorted by name when Sorted is true. The slice must
// not be modified.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id uint32) *Node {
	if int(id) >= len(g.byID) {
		return nil
	}
	return g.byID[id]
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() uint32 { return uint32(len(g.byID)) }

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int { return g.numEdges }

// EachEdge calls fn once per undirected edge, with a ordering before b by
// name. Iteration stops early if fn returns false.
func (g *Graph) EachEdge(fn func(a, b *Node, weight float64) bool) {
	for _, a := range g.nodes {
		for _, arc := range a.Neighbors() {
			if a.Compare(arc.To) < 0 {
				if !fn(a, arc.To, arc.Weight) {
					return
				}
			}
		}
	}
}

// Bounds returns the bounding box of all node coordinates, as orb points of
// (lon, lat). It is empty (Min > Max) for a graph without nodes.
func (g *Graph) Bounds() orb.Bound { return g.bounds }

// ResetBounds recomputes the bounding box from the current nodes.
func (g *Graph) ResetBounds() {
	g.bounds = emptyBound()
	for _, n := range g.byID {
		g.extend(n)
	}
}
