// Package dataset loads a road network from whichever source a path names.
package dataset

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"street_map/pkg/graph"
	"street_map/pkg/mapfile"
	osmparser "street_map/pkg/osm"
	"street_map/pkg/store"
)

// Kind identifies an input format.
type Kind int

const (
	KindText Kind = iota
	KindPBF
	KindSnapshot
	KindPostgres
)

func (k Kind) String() string {
	switch k {
	case KindPBF:
		return "osm-pbf"
	case KindSnapshot:
		return "snapshot"
	case KindPostgres:
		return "postgres"
	default:
		return "text"
	}
}

// Detect picks the format from the source string. Anything unrecognized is
// treated as a text map file.
func Detect(src string) Kind {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return KindPostgres
	case strings.HasSuffix(lower, ".osm.pbf"), strings.HasSuffix(lower, ".pbf"):
		return KindPBF
	case strings.HasSuffix(lower, ".bin"):
		return KindSnapshot
	default:
		return KindText
	}
}

// Options tunes loading.
type Options struct {
	BBox             osmparser.BBox // PBF only
	LargestComponent bool           // keep only the largest connected component
	SignedLongitude  bool           // text maps only: longitudes are already negative west
}

// Load builds a graph from src.
func Load(ctx context.Context, src string, opts ...Options) (*graph.Graph, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	kind := Detect(src)
	log.Printf("Loading %s map from %s...", kind, redact(src))

	var g *graph.Graph
	var err error
	switch kind {
	case KindSnapshot:
		g, err = graph.ReadBinary(src)
	case KindPostgres:
		g, err = loadPostgres(ctx, src)
	case KindPBF:
		g, err = loadPBF(ctx, src, opt.BBox)
	default:
		g, err = loadText(src, mapfile.Options{SignedLongitude: opt.SignedLongitude})
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	if opt.LargestComponent && g.NumNodes() > 0 {
		ids := graph.LargestComponent(g)
		log.Printf("Largest component: %d of %d nodes (%.1f%%)",
			len(ids), g.NumNodes(), float64(len(ids))/float64(g.NumNodes())*100)
		if g, err = graph.FilterToComponent(g, ids); err != nil {
			return nil, fmt.Errorf("filter component: %w", err)
		}
	}

	log.Printf("Graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())
	return g, nil
}

// Records converts a graph back into build records. Roads are named by their
// endpoints since names are not kept once a road becomes an edge.
func Records(g *graph.Graph) *graph.Input {
	in := &graph.Input{Intersections: make([]graph.Intersection, 0, g.NumNodes())}
	for _, n := range g.Nodes() {
		in.Intersections = append(in.Intersections, graph.Intersection{Name: n.Name, Lat: n.Lat, Lon: n.Lon})
	}
	g.EachEdge(func(a, b *graph.Node, _ float64) bool {
		in.Roads = append(in.Roads, graph.Road{Name: a.Name + "-" + b.Name, From: a.Name, To: b.Name})
		return true
	})
	return in
}

func loadText(path string, opts mapfile.Options) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in, err := mapfile.Parse(f, opts)
	if err != nil {
		return nil, err
	}
	return graph.Build(in)
}

func loadPBF(ctx context.Context, path string, bbox osmparser.BBox) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in, err := osmparser.Parse(ctx, f, osmparser.ParseOptions{BBox: bbox})
	if err != nil {
		return nil, err
	}
	return graph.Build(in)
}

func loadPostgres(ctx context.Context, dsn string) (*graph.Graph, error) {
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	in, err := store.Load(ctx, db)
	if err != nil {
		return nil, err
	}
	return graph.Build(in)
}

// redact hides the password in a connection URL before it is logged.
func redact(src string) string {
	if Detect(src) != KindPostgres {
		return src
	}
	scheme, rest, _ := strings.Cut(src, "://")
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return src
	}
	user, _, _ := strings.Cut(rest[:at], ":")
	return scheme + "://" + user + ":***@" + rest[at+1:]
}
