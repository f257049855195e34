// Package osm extracts a drivable road network from OpenStreetMap PBF data.
// Every way node becomes an intersection named by its OSM node ID and every
// pair of consecutive way nodes becomes an undirected road.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"street_map/pkg/graph"
)

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	// Time-dependent direction; not representable as an undirected road.
	if tags.Find("oneway") == "reversible" {
		return false
	}

	return true
}

// wayName returns a human-readable label for roads built from w.
func wayName(w *osm.Way) string {
	if name := w.Tags.Find("name"); name != "" {
		return name
	}
	if ref := w.Tags.Find("ref"); ref != "" {
		return ref
	}
	return "way/" + strconv.FormatInt(int64(w.ID), 10)
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	Name    string
	NodeIDs []osm.NodeID
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only roads with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox BBox // if non-zero, filter roads to this bounding box
}

// Parse reads an OSM PBF file and returns the car road network.
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*graph.Input, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	ways, wanted, err := scanWays(ctx, rs)
	if err != nil {
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(ways), len(wanted))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	lat, lon, err := scanNodes(ctx, rs, wanted)
	if err != nil {
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	log.Printf("Pass 2 complete: %d node coordinates collected", len(lat))

	return buildInput(ways, lat, lon, opt.BBox), nil
}

// scanWays collects drivable ways and the set of node IDs they reference.
func scanWays(ctx context.Context, r io.Reader) ([]wayInfo, map[osm.NodeID]struct{}, error) {
	sc := osmpbf.New(ctx, r, 1)
	defer sc.Close()
	sc.SkipNodes = true
	sc.SkipRelations = true

	var ways []wayInfo
	wanted := make(map[osm.NodeID]struct{})
	for sc.Scan() {
		w, ok := sc.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !isCarAccessible(w.Tags) {
			continue
		}
		ids := w.Nodes.NodeIDs()
		for _, id := range ids {
			wanted[id] = struct{}{}
		}
		ways = append(ways, wayInfo{Name: wayName(w), NodeIDs: ids})
	}
	return ways, wanted, sc.Err()
}

// scanNodes returns the coordinates of the wanted nodes.
func scanNodes(ctx context.Context, r io.Reader, wanted map[osm.NodeID]struct{}) (lat, lon map[osm.NodeID]float64, err error) {
	sc := osmpbf.New(ctx, r, 1)
	defer sc.Close()
	sc.SkipWays = true
	sc.SkipRelations = true

	lat = make(map[osm.NodeID]float64, len(wanted))
	lon = make(map[osm.NodeID]float64, len(wanted))
	for sc.Scan() {
		n, ok := sc.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, ok := wanted[n.ID]; ok {
			lat[n.ID] = n.Lat
			lon[n.ID] = n.Lon
		}
	}
	return lat, lon, sc.Err()
}

// buildInput turns ways into intersection and road records. Segments with a
// missing coordinate or an endpoint outside bbox are dropped, as are
// zero-length segments between distinct nodes at the same position.
func buildInput(ways []wayInfo, nodeLat, nodeLon map[osm.NodeID]float64, bbox BBox) *graph.Input {
	useBBox := !bbox.IsZero()
	in := &graph.Input{}
	added := make(map[osm.NodeID]bool)
	seen := make(map[[2]osm.NodeID]bool)

	addNode := func(id osm.NodeID) string {
		name := strconv.FormatInt(int64(id), 10)
		if !added[id] {
			added[id] = true
			in.Intersections = append(in.Intersections, graph.Intersection{
				Name: name,
				Lat:  nodeLat[id],
				Lon:  nodeLon[id],
			})
		}
		return name
	}

	var skippedEdges, bboxFiltered int
	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID := w.NodeIDs[i]
			toID := w.NodeIDs[i+1]
			if fromID == toID {
				continue
			}

			fromLat, fromOk := nodeLat[fromID]
			toLat, toOk := nodeLat[toID]
			if !fromOk || !toOk {
				skippedEdges++
				continue
			}

			if useBBox && (!bbox.Contains(fromLat, nodeLon[fromID]) || !bbox.Contains(toLat, nodeLon[toID])) {
				bboxFiltered++
				continue
			}

			key := [2]osm.NodeID{min(fromID, toID), max(fromID, toID)}
			if seen[key] {
				continue
			}
			seen[key] = true

			in.Roads = append(in.Roads, graph.Road{
				Name: fmt.Sprintf("%s#%d", w.Name, i),
				From: addNode(fromID),
				To:   addNode(toID),
			})
		}
	}

	if skippedEdges > 0 {
		log.Printf("Warning: skipped %d road segments due to missing node coordinates", skippedEdges)
	}
	if bboxFiltered > 0 {
		log.Printf("Filtered %d road segments outside bounding box", bboxFiltered)
	}
	log.Printf("Built %d intersections, %d roads", len(in.Intersections), len(in.Roads))

	return in
}
