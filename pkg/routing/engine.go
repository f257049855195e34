package routing

import (
	"context"
	"math"
	"sync"

	"street_map/pkg/graph"
)

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Leg is one hop of a route between adjacent intersections.
type Leg struct {
	From  *graph.Node
	To    *graph.Node
	Miles float64
}

// Route is the output of a route query. When Found is false the destination
// is unreachable: Path and Legs are empty and DistanceMiles is +Inf.
type Route struct {
	From          *graph.Node
	To            *graph.Node
	Found         bool
	DistanceMiles float64
	Path          []*graph.Node
	Legs          []Leg
}

// EndpointError reports which end of a query could not be resolved.
// Endpoint is "from"/"to" for named queries and "start"/"end" for coordinates.
type EndpointError struct {
	Endpoint string
	Err      error
}

func (e *EndpointError) Error() string { return e.Endpoint + ": " + e.Err.Error() }

func (e *EndpointError) Unwrap() error { return e.Err }

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, from, to string) (*Route, error)
	RouteCoords(ctx context.Context, start, end LatLng) (*Route, error)
}

// Engine implements Router over an immutable graph. Each query owns its search
// state, so one Engine serves concurrent queries.
type Engine struct {
	g         *graph.Graph
	component []uint32 // component label per node ID
	snapper   *Snapper
	states    sync.Pool
}

// NewEngine creates a routing engine. g must be fully built and is not
// modified afterwards.
func NewEngine(g *graph.Graph, maxSnapMiles float64) *Engine {
	labels, _ := graph.Components(g)
	e := &Engine{
		g:         g,
		component: labels,
		snapper:   NewSnapper(g, maxSnapMiles),
	}
	e.states.New = func() any { return NewState(g.NumNodes()) }
	return e
}

// Graph returns the graph the engine routes over.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Route computes the shortest path between two named intersections.
func (e *Engine) Route(ctx context.Context, from, to string) (*Route, error) {
	src, err := e.g.FindNode(from)
	if err != nil {
		return nil, &EndpointError{"from", err}
	}
	dst, err := e.g.FindNode(to)
	if err != nil {
		return nil, &EndpointError{"to", err}
	}
	return e.RouteNodes(ctx, src, dst)
}

// RouteCoords snaps both points to their nearest intersections and routes
// between them.
func (e *Engine) RouteCoords(ctx context.Context, start, end LatLng) (*Route, error) {
	src, err := e.snapper.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, &EndpointError{"start", err}
	}
	dst, err := e.snapper.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, &EndpointError{"end", err}
	}
	return e.RouteNodes(ctx, src.Node, dst.Node)
}

// RouteNodes computes the shortest path between two nodes of the graph.
func (e *Engine) RouteNodes(ctx context.Context, src, dst *graph.Node) (*Route, error) {
	route := &Route{From: src, To: dst, DistanceMiles: math.Inf(1)}

	if src == dst {
		route.Found = true
		route.DistanceMiles = 0
		route.Path = []*graph.Node{src}
		return route, nil
	}

	// Different components: nothing to search.
	if e.component[src.ID] != e.component[dst.ID] {
		return route, nil
	}

	s := e.states.Get().(*State)
	defer e.states.Put(s)

	tree, err := ShortestPaths(ctx, e.g, src, StopAt(dst), WithState(s))
	if err != nil {
		return nil, err
	}

	path := tree.PathTo(dst)
	if len(path) == 0 {
		return route, nil
	}

	route.Found = true
	route.DistanceMiles = tree.Dist(dst)
	route.Path = path
	route.Legs = buildLegs(path)
	return route, nil
}

// ShortestPaths runs a full single-source search from the named node. The
// returned tree owns its state and is not shared with other queries.
func (e *Engine) ShortestPaths(ctx context.Context, from string) (*Tree, error) {
	src, err := e.g.FindNode(from)
	if err != nil {
		return nil, err
	}
	return ShortestPaths(ctx, e.g, src)
}

// Nearest returns the intersection closest to the given point.
func (e *Engine) Nearest(p LatLng) (SnapResult, error) {
	return e.snapper.Snap(p.Lat, p.Lng)
}

func buildLegs(path []*graph.Node) []Leg {
	legs := make([]Leg, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		w, _ := path[i].Weight(path[i+1])
		legs = append(legs, Leg{From: path[i], To: path[i+1], Miles: w})
	}
	return legs
}
