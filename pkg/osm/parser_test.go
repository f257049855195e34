package osm

import (
	"testing"

	"github.com/paulmach/osm"

	"street_map/pkg/graph"
)

func tags(kv ...string) osm.Tags {
	ts := make(osm.Tags, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		ts = append(ts, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return ts
}

func TestIsCarAccessible(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{"residential", tags("highway", "residential"), true},
		{"motorway", tags("highway", "motorway"), true},
		{"service", tags("highway", "service"), true},
		{"living street", tags("highway", "living_street"), true},
		{"footway", tags("highway", "footway"), false},
		{"cycleway", tags("highway", "cycleway"), false},
		{"private", tags("highway", "residential", "access", "private"), false},
		{"access no", tags("highway", "residential", "access", "no"), false},
		{"motor_vehicle no", tags("highway", "residential", "motor_vehicle", "no"), false},
		{"plaza", tags("highway", "service", "area", "yes"), false},
		{"reversible", tags("highway", "primary", "oneway", "reversible"), false},
		{"oneway kept as two-way", tags("highway", "primary", "oneway", "yes"), true},
		{"no highway", tags("name", "Elmwood Avenue"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCarAccessible(tt.tags); got != tt.want {
				t.Errorf("isCarAccessible(%v) = %v, want %v", tt.tags, got, tt.want)
			}
		})
	}
}

func TestBBox(t *testing.T) {
	var zero BBox
	if !zero.IsZero() {
		t.Errorf("zero BBox reports non-zero")
	}
	b := BBox{MinLat: 43, MaxLat: 44, MinLng: -78, MaxLng: -77}
	if b.IsZero() {
		t.Errorf("set BBox reports zero")
	}
	if !b.Contains(43.5, -77.5) || !b.Contains(43, -78) {
		t.Errorf("Contains rejects an inside point")
	}
	if b.Contains(42.9, -77.5) || b.Contains(43.5, -76.9) {
		t.Errorf("Contains accepts an outside point")
	}
}

func TestWayName(t *testing.T) {
	tests := []struct {
		name string
		way  *osm.Way
		want string
	}{
		{"named", &osm.Way{ID: 7, Tags: osm.Tags{{Key: "name", Value: "Elmwood Avenue"}}}, "Elmwood Avenue"},
		{"ref only", &osm.Way{ID: 7, Tags: osm.Tags{{Key: "ref", Value: "NY 383"}}}, "NY 383"},
		{"anonymous", &osm.Way{ID: 7}, "way/7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wayName(tt.way); got != tt.want {
				t.Errorf("wayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildInput(t *testing.T) {
	ways := []wayInfo{
		{Name: "Main", NodeIDs: []osm.NodeID{1, 2, 3}},
		{Name: "Back", NodeIDs: []osm.NodeID{3, 2, 4}}, // 3-2 duplicates Main
		{Name: "Ghost", NodeIDs: []osm.NodeID{4, 99}},  // 99 has no coordinates
		{Name: "Far", NodeIDs: []osm.NodeID{4, 5}},     // 5 outside bbox
	}
	nodeLat := map[osm.NodeID]float64{1: 43.10, 2: 43.11, 3: 43.12, 4: 43.13, 5: 50}
	nodeLon := map[osm.NodeID]float64{1: -77.60, 2: -77.61, 3: -77.62, 4: -77.63, 5: -77.6}
	bbox := BBox{MinLat: 43, MaxLat: 44, MinLng: -78, MaxLng: -77}

	in := buildInput(ways, nodeLat, nodeLon, bbox)

	if len(in.Intersections) != 4 {
		t.Errorf("got %d intersections, want 4", len(in.Intersections))
	}
	if len(in.Roads) != 3 {
		t.Fatalf("got %d roads, want 3: %+v", len(in.Roads), in.Roads)
	}
	if in.Roads[0].Name != "Main#0" || in.Roads[0].From != "1" || in.Roads[0].To != "2" {
		t.Errorf("first road = %+v", in.Roads[0])
	}

	g, err := graph.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.NumEdges() != 3 {
		t.Errorf("NumEdges = %d, want 3", g.NumEdges())
	}
}
