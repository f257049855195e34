package graph

import (
	"strings"

	"street_map/pkg/geo"
)

// Arc is one adjacency entry: a neighbor and the great-circle distance to it
// in miles.
type Arc struct {
	To     *Node
	Weight float64
}

// Node is a named intersection. Its identity and coordinates never change
// after construction; adjacency is only extended while the graph is built.
type Node struct {
	ID   uint32 // insertion index within the owning graph
	Name string
	Lat  float64
	Lon  float64

	arcs  []Arc
	index map[*Node]int // neighbor -> position in arcs
}

// NewNode creates an unattached node. ID is assigned by Graph.AddNode.
func NewNode(name string, lat, lon float64) *Node {
	return &Node{Name: name, Lat: lat, Lon: lon}
}

// Compare orders nodes by name.
func (n *Node) Compare(other *Node) int {
	return strings.Compare(n.Name, other.Name)
}

// DistanceTo returns the great-circle distance to other in miles.
func (n *Node) DistanceTo(other *Node) float64 {
	return geo.Distance(n.Lat, n.Lon, other.Lat, other.Lon)
}

// AddNeighbor stores other as adjacent with its computed distance. Adding the
// same neighbor again overwrites the entry with the same weight.
func (n *Node) AddNeighbor(other *Node) {
	w := n.DistanceTo(other)
	if i, ok := n.index[other]; ok {
		n.arcs[i].Weight = w
		return
	}
	if n.index == nil {
		n.index = make(map[*Node]int)
	}
	n.index[other] = len(n.arcs)
	n.arcs = append(n.arcs, Arc{To: other, Weight: w})
}

// Neighbors returns the adjacency in the order neighbors were first added.
// The slice must not be modified.
func (n *Node) Neighbors() []Arc {
	return n.arcs
}

// Weight returns the edge weight to other and whether the edge exists.
func (n *Node) Weight(other *Node) (float64, bool) {
	i, ok := n.index[other]
	if !ok {
		return 0, false
	}
	return n.arcs[i].Weight, true
}

// Degree returns the number of distinct neighbors.
func (n *Node) Degree() int { return len(n.arcs) }

func (n *Node) String() string { return n.Name }
