// Package store keeps a road network in Postgres. Intersections and roads are
// plain tables; the graph is rebuilt from them at load time and weights are
// always recomputed from coordinates.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"street_map/pkg/graph"
)

const batchSize = 500

// Intersection is one row of the intersections table.
type Intersection struct {
	Name string  `gorm:"primaryKey"`
	Lat  float64 `gorm:"not null"`
	Lon  float64 `gorm:"not null"`
}

// Road is one row of the roads table. From and To reference intersection names.
type Road struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"index;not null"`
	From string `gorm:"column:from_name;index;not null"`
	To   string `gorm:"column:to_name;index;not null"`
}

// OpenOptions tunes the connection retry loop.
type OpenOptions struct {
	Retries int
	Wait    time.Duration
}

// Open connects to Postgres and migrates the schema. The database may still be
// starting when the server comes up, so connection attempts are retried.
func Open(ctx context.Context, dsn string, opts ...OpenOptions) (*gorm.DB, error) {
	opt := OpenOptions{Retries: 10, Wait: 2 * time.Second}
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Retries < 1 {
		opt.Retries = 1
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var db *gorm.DB
	var err error
	for i := 0; i < opt.Retries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.Printf("Waiting for database (%d/%d): %v", i+1, opt.Retries, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opt.Wait):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&Intersection{}, &Road{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Load reads every intersection and road into build records.
func Load(ctx context.Context, db *gorm.DB) (*graph.Input, error) {
	var is []Intersection
	if err := db.WithContext(ctx).Order("name").Find(&is).Error; err != nil {
		return nil, fmt.Errorf("load intersections: %w", err)
	}
	var rs []Road
	if err := db.WithContext(ctx).Order("id").Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("load roads: %w", err)
	}
	log.Printf("Loaded %d intersections, %d roads from database", len(is), len(rs))
	return toInput(is, rs), nil
}

// Import replaces the stored network with in. The delete and the inserts run
// in one transaction, so readers see either the old network or the new one.
func Import(ctx context.Context, db *gorm.DB, in *graph.Input) error {
	is, rs := fromInput(in)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Road{}).Error; err != nil {
			return fmt.Errorf("clear roads: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Intersection{}).Error; err != nil {
			return fmt.Errorf("clear intersections: %w", err)
		}
		if len(is) > 0 {
			if err := tx.CreateInBatches(is, batchSize).Error; err != nil {
				return fmt.Errorf("insert intersections: %w", err)
			}
		}
		if len(rs) > 0 {
			if err := tx.CreateInBatches(rs, batchSize).Error; err != nil {
				return fmt.Errorf("insert roads: %w", err)
			}
		}
		log.Printf("Imported %d intersections, %d roads", len(is), len(rs))
		return nil
	})
}

func toInput(is []Intersection, rs []Road) *graph.Input {
	in := &graph.Input{
		Intersections: make([]graph.Intersection, len(is)),
		Roads:         make([]graph.Road, len(rs)),
	}
	for i, r := range is {
		in.Intersections[i] = graph.Intersection{Name: r.Name, Lat: r.Lat, Lon: r.Lon}
	}
	for i, r := range rs {
		in.Roads[i] = graph.Road{Name: r.Name, From: r.From, To: r.To}
	}
	return in
}

func fromInput(in *graph.Input) ([]Intersection, []Road) {
	is := make([]Intersection, len(in.Intersections))
	for i, r := range in.Intersections {
		is[i] = Intersection{Name: r.Name, Lat: r.Lat, Lon: r.Lon}
	}
	rs := make([]Road, len(in.Roads))
	for i, r := range in.Roads {
		rs[i] = Road{Name: r.Name, From: r.From, To: r.To}
	}
	return is, rs
}
