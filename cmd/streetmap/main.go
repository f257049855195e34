package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"street_map/pkg/dataset"
	"street_map/pkg/graph"
	"street_map/pkg/render"
	"street_map/pkg/routing"
)

func main() {
	from := flag.String("from", "", "Start intersection for directions")
	to := flag.String("to", "", "Destination intersection for directions")
	show := flag.String("show", "", "Write the map (and route, if any) as SVG to this path")
	geoOut := flag.String("geojson", "", "Write the map (and route, if any) as GeoJSON to this path")
	width := flag.Int("width", 1200, "SVG width in pixels")
	height := flag.Int("height", 700, "SVG height in pixels")
	largest := flag.Bool("largest-component", false, "Keep only the largest connected component")
	signed := flag.Bool("signed-lon", false, "Text map longitudes are already negative west (do not negate)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: streetmap [-from A -to B] [-show map.svg] [-geojson map.json] <map.txt | file.osm.pbf | graph.bin | postgres://...>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if (*from == "") != (*to == "") {
		log.Fatal("-from and -to must be given together")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := dataset.Load(ctx, flag.Arg(0), dataset.Options{LargestComponent: *largest, SignedLongitude: *signed})
	if err != nil {
		log.Fatalf("Your file, %s, could not be read: %v", flag.Arg(0), err)
	}

	var path []*graph.Node
	if *from != "" {
		route, err := routing.NewEngine(g, 0).Route(ctx, *from, *to)
		if err != nil {
			if errors.Is(err, graph.ErrNodeNotFound) {
				log.Fatalf("Unknown intersection: %v", err)
			}
			log.Fatalf("Routing failed: %v", err)
		}
		printDirections(os.Stdout, route)
		path = route.Path
	}

	if *show != "" {
		opts := render.DefaultOptions()
		opts.Width, opts.Height = *width, *height
		if err := writeFile(*show, func(w io.Writer) error {
			return render.WriteSVG(w, g, path, opts)
		}); err != nil {
			log.Fatalf("Failed to write SVG: %v", err)
		}
		log.Printf("Wrote %s", *show)
	}

	if *geoOut != "" {
		if err := writeFile(*geoOut, func(w io.Writer) error {
			return json.NewEncoder(w).Encode(render.GeoJSON(g, path))
		}); err != nil {
			log.Fatalf("Failed to write GeoJSON: %v", err)
		}
		log.Printf("Wrote %s", *geoOut)
	}
}

// printDirections writes the route as a node chain followed by its length.
func printDirections(w io.Writer, r *routing.Route) {
	if !r.Found {
		fmt.Fprintf(w, "There is no route between %s and %s.\n", r.From.Name, r.To.Name)
		return
	}

	names := make([]string, len(r.Path))
	for i, n := range r.Path {
		names[i] = n.Name
	}
	fmt.Fprintf(w, "Route from %s to %s:\n\n", r.From.Name, r.To.Name)
	fmt.Fprintf(w, "  %s\n\n", strings.Join(names, " -> "))
	for _, leg := range r.Legs {
		fmt.Fprintf(w, "  %-20s -> %-20s %8.3f mi\n", leg.From.Name, leg.To.Name, leg.Miles)
	}
	fmt.Fprintf(w, "\nTotal distance: %.3f miles (%d intersections)\n", r.DistanceMiles, len(r.Path))
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
