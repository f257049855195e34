package render

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"street_map/pkg/graph"
)

// GeoJSON returns the network as LineString features, one per road, plus a
// final feature for path (if it has at least two nodes) with "route": true.
func GeoJSON(g *graph.Graph, path []*graph.Node) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	g.EachEdge(func(a, b *graph.Node, weight float64) bool {
		f := geojson.NewFeature(orb.LineString{point(a), point(b)})
		f.Properties["from"] = a.Name
		f.Properties["to"] = b.Name
		f.Properties["miles"] = weight
		fc.Append(f)
		return true
	})

	if len(path) >= 2 {
		ls := make(orb.LineString, len(path))
		names := make([]string, len(path))
		var miles float64
		for i, n := range path {
			ls[i] = point(n)
			names[i] = n.Name
			if i > 0 {
				miles += path[i-1].DistanceTo(n)
			}
		}
		f := geojson.NewFeature(ls)
		f.Properties["route"] = true
		f.Properties["nodes"] = names
		f.Properties["miles"] = miles
		fc.Append(f)
	}

	return fc
}

func point(n *graph.Node) orb.Point { return orb.Point{n.Lon, n.Lat} }
