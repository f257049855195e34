package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"street_map/pkg/geo"
	"street_map/pkg/graph"
)

// DefaultMaxSnapMiles is the snap radius used when none is configured.
const DefaultMaxSnapMiles = 0.5

// ErrPointTooFar is returned when the query point is too far from any
// intersection.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult is a query point matched to an intersection.
type SnapResult struct {
	Node  *graph.Node
	Miles float64 // distance from the query point to Node
}

// Snapper finds the nearest intersection to a coordinate using an R-tree of
// node positions keyed by (lon, lat).
type Snapper struct {
	tr       rtree.RTreeG[*graph.Node]
	maxMiles float64
}

// NewSnapper indexes every node of g. maxMiles <= 0 selects
// DefaultMaxSnapMiles.
func NewSnapper(g *graph.Graph, maxMiles float64) *Snapper {
	if maxMiles <= 0 {
		maxMiles = DefaultMaxSnapMiles
	}
	s := &Snapper{maxMiles: maxMiles}
	for _, n := range g.Nodes() {
		pt := [2]float64{n.Lon, n.Lat}
		s.tr.Insert(pt, pt, n)
	}
	return s
}

// Snap returns the nearest intersection within the snap radius.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return SnapResult{}, ErrPointTooFar
	}

	// Search the box enclosing the snap circle, then rank by great-circle
	// distance.
	dLat, dLon := geo.DegreesForMiles(lat, s.maxMiles)
	minPt := [2]float64{lng - dLon, lat - dLat}
	maxPt := [2]float64{lng + dLon, lat + dLat}

	best := SnapResult{Miles: math.Inf(1)}
	s.tr.Search(minPt, maxPt, func(_, _ [2]float64, n *graph.Node) bool {
		d := geo.Distance(lat, lng, n.Lat, n.Lon)
		if d < best.Miles || (d == best.Miles && best.Node != nil && n.Compare(best.Node) < 0) {
			best = SnapResult{Node: n, Miles: d}
		}
		return true
	})

	if best.Node == nil || best.Miles > s.maxMiles {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}
