// Package config assembles command configuration from defaults, the
// environment (optionally seeded from a .env file) and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by Server.
const (
	EnvAddr          = "STREETMAP_ADDR"
	EnvGraph         = "STREETMAP_GRAPH"
	EnvCORSOrigin    = "STREETMAP_CORS_ORIGIN"
	EnvMaxSnapMiles  = "STREETMAP_MAX_SNAP_MILES"
	EnvMaxConcurrent = "STREETMAP_MAX_CONCURRENT"
	EnvDatabaseURL   = "DATABASE_URL"
)

// LoadEnv merges .env files into the process environment without overriding
// variables that are already set. With no arguments it reads ./.env.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Println("No .env file found, using process environment")
			return
		}
		log.Printf("Warning: reading .env: %v", err)
	}
}

// Server configures cmd/server.
type Server struct {
	Addr             string
	Graph            string // text map, .osm.pbf, .bin snapshot or postgres:// URL
	CORSOrigin       string
	MaxSnapMiles     float64
	MaxConcurrent    int
	LargestComponent bool
	SignedLongitude  bool // text map longitudes are already negative west
	Release          bool // gin release mode
}

// DefaultServer returns the built-in defaults.
func DefaultServer() Server {
	return Server{
		Addr:          ":8080",
		Graph:         "graph.bin",
		MaxSnapMiles:  0.5,
		MaxConcurrent: runtime.NumCPU() * 2,
	}
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Server) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.Graph = v
	}
	if v, ok := lookup(EnvGraph); ok && v != "" {
		c.Graph = v
	}
	if v, ok := lookup(EnvCORSOrigin); ok {
		c.CORSOrigin = v
	}
	if v, ok := lookup(EnvMaxSnapMiles); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%s: invalid value %q", EnvMaxSnapMiles, v)
		}
		c.MaxSnapMiles = f
	}
	if v, ok := lookup(EnvMaxConcurrent); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%s: invalid value %q", EnvMaxConcurrent, v)
		}
		c.MaxConcurrent = n
	}
	return nil
}

// RegisterFlags binds flags to c, using the current values as defaults.
func (c *Server) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fs.StringVar(&c.Graph, "graph", c.Graph, "Map source: text file, .osm.pbf, .bin snapshot or postgres:// URL")
	fs.StringVar(&c.CORSOrigin, "cors-origin", c.CORSOrigin, "CORS allowed origin (empty = same-origin)")
	fs.Float64Var(&c.MaxSnapMiles, "max-snap-miles", c.MaxSnapMiles, "Maximum distance from a coordinate to its nearest intersection")
	fs.IntVar(&c.MaxConcurrent, "max-concurrent", c.MaxConcurrent, "Maximum requests served at once")
	fs.BoolVar(&c.LargestComponent, "largest-component", c.LargestComponent, "Keep only the largest connected component")
	fs.BoolVar(&c.SignedLongitude, "signed-lon", c.SignedLongitude, "Text map longitudes are already negative west (do not negate)")
	fs.BoolVar(&c.Release, "release", c.Release, "Run gin in release mode")
}

// LoadServer resolves the server configuration from defaults, the
// environment and args.
func LoadServer(args []string, lookup func(string) (string, bool)) (Server, error) {
	c := DefaultServer()
	if err := c.ApplyEnv(lookup); err != nil {
		return c, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	if c.MaxConcurrent < 1 {
		return c, fmt.Errorf("max-concurrent must be positive, got %d", c.MaxConcurrent)
	}
	return c, nil
}
