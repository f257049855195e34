package graph

import (
	"fmt"
)

// Intersection is an ingestion record creating one node.
type Intersection struct {
	Name string
	Lat  float64
	Lon  float64
}

// Road is an ingestion record connecting two intersections by name.
type Road struct {
	Name string
	From string
	To   string
}

// Input is the output of any map source: every intersection, then every road.
type Input struct {
	Intersections []Intersection
	Roads         []Road
}

// Build creates a sorted Graph from in. All intersections are added and the
// graph sorted before the first road is processed. Any bad record aborts the
// build.
func Build(in *Input) (*Graph, error) {
	g := New()

	// Phase 1: nodes.
	for _, rec := range in.Intersections {
		if err := g.AddNode(NewNode(rec.Name, rec.Lat, rec.Lon)); err != nil {
			return nil, fmt.Errorf("intersection %q: %w", rec.Name, err)
		}
	}
	g.SortNodes()

	// Phase 2: edges.
	for _, rec := range in.Roads {
		if err := g.AddEdge(rec.From, rec.To); err != nil {
			return nil, fmt.Errorf("road %q: %w", rec.Name, err)
		}
	}

	return g, nil
}
