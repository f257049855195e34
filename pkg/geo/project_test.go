package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestMapRange(t *testing.T) {
	tests := []struct {
		name                         string
		v, inMin, inMax, outMin, out float64
		want                         float64
	}{
		{"low end", 0, 0, 10, 100, 200, 100},
		{"high end", 10, 0, 10, 100, 200, 200},
		{"midpoint", 5, 0, 10, 100, 200, 150},
		{"inverted output", 2.5, 0, 10, 1150, 50, 875},
		{"extrapolates", 20, 0, 10, 0, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRange(tt.v, tt.inMin, tt.inMax, tt.outMin, tt.out)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MapRange = %f, want %f", got, tt.want)
			}
		})
	}

	if got := MapRange(1, 3, 3, 0, 10); !math.IsNaN(got) && !math.IsInf(got, 0) {
		t.Errorf("MapRange on a degenerate range = %f, want NaN or Inf", got)
	}
}

func TestProjector(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{-78, 43}, Max: orb.Point{-77, 44}}
	p, err := NewProjector(bounds, 50, 1150, 650, 50)
	if err != nil {
		t.Fatalf("NewProjector: %v", err)
	}

	tests := []struct {
		name     string
		lat, lon float64
		x, y     int
	}{
		{"south-west corner", 43, -78, 50, 650},
		{"north-east corner", 44, -77, 1150, 50},
		{"center", 43.5, -77.5, 600, 350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := p.Project(tt.lat, tt.lon)
			if x != tt.x || y != tt.y {
				t.Errorf("Project(%f, %f) = (%d, %d), want (%d, %d)", tt.lat, tt.lon, x, y, tt.x, tt.y)
			}
		})
	}
}

func TestProjectorDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		bounds orb.Bound
	}{
		{"single point", orb.Point{-77, 43}.Bound()},
		{"shared latitude", orb.Bound{Min: orb.Point{-78, 43}, Max: orb.Point{-77, 43}}},
		{"shared longitude", orb.Bound{Min: orb.Point{-77, 43}, Max: orb.Point{-77, 44}}},
		{"empty", orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{-1, -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProjector(tt.bounds, 0, 100, 100, 0)
			if !errors.Is(err, ErrDegenerateRange) {
				t.Errorf("err = %v, want ErrDegenerateRange", err)
			}
		})
	}
}
