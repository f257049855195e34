package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"street_map/pkg/api"
	"street_map/pkg/config"
	"street_map/pkg/dataset"
	"street_map/pkg/routing"
)

func main() {
	config.LoadEnv()
	cfg, err := config.LoadServer(os.Args[1:], os.LookupEnv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	start := time.Now()

	// Load graph.
	g, err := dataset.Load(context.Background(), cfg.Graph, dataset.Options{
		LargestComponent: cfg.LargestComponent,
		SignedLongitude:  cfg.SignedLongitude,
	})
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	// Build routing engine.
	log.Println("Building R-tree spatial index...")
	engine := routing.NewEngine(g, cfg.MaxSnapMiles)

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	// Setup HTTP server.
	srvCfg := api.DefaultConfig(cfg.Addr)
	srvCfg.CORSOrigin = cfg.CORSOrigin
	srvCfg.MaxConcurrent = cfg.MaxConcurrent

	handlers := api.NewHandlers(engine, g)
	srv := api.NewServer(srvCfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
