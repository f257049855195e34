package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"street_map/pkg/dataset"
	"street_map/pkg/graph"
	"street_map/pkg/mapfile"
	osmparser "street_map/pkg/osm"
	"street_map/pkg/store"
)

func main() {
	input := flag.String("input", "", "Map source: text file, .osm.pbf, .bin snapshot or postgres:// URL")
	output := flag.String("output", "graph.bin", "Output binary graph file path (empty to skip)")
	textOut := flag.String("text", "", "Also write the network in the text map format to this path")
	dbURL := flag.String("import-db", "", "Import the network into this Postgres database")
	bbox := flag.String("bbox", "", "Bounding box filter for .osm.pbf input: minLat,minLng,maxLat,maxLng")
	largest := flag.Bool("largest-component", true, "Keep only the largest connected component")
	signed := flag.Bool("signed-lon", false, "Text map longitudes are already negative west (do not negate)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <map> [--output graph.bin] [--text map.txt] [--import-db postgres://...] [--bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	// Parse bbox option.
	opts := dataset.Options{LargestComponent: *largest, SignedLongitude: *signed}
	if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		_, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng)
		if err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	ctx := context.Background()
	start := time.Now()

	// Step 1: Load and build.
	g, err := dataset.Load(ctx, *input, opts)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *input, err)
	}

	// Step 2: Serialize to binary.
	if *output != "" {
		log.Printf("Writing binary to %s...", *output)
		if err := graph.WriteBinary(*output, g); err != nil {
			log.Fatalf("Failed to write binary: %v", err)
		}
		if info, err := os.Stat(*output); err == nil {
			log.Printf("Snapshot: %s (%.1f MB)", *output, float64(info.Size())/(1024*1024))
		}
	}

	records := dataset.Records(g)

	// Step 3: Text export.
	if *textOut != "" {
		if err := writeText(*textOut, records); err != nil {
			log.Fatalf("Failed to write text map: %v", err)
		}
		log.Printf("Wrote text map to %s", *textOut)
	}

	// Step 4: Database import.
	if *dbURL != "" && !strings.EqualFold(*dbURL, *input) {
		db, err := store.Open(ctx, *dbURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		if err := store.Import(ctx, db, records); err != nil {
			log.Fatalf("Failed to import: %v", err)
		}
	}

	log.Printf("Done in %s.", time.Since(start).Round(time.Millisecond))
}

func writeText(path string, in *graph.Input) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mapfile.Write(f, in); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
