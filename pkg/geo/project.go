package geo

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// ErrDegenerateRange is returned when every point shares one latitude or one
// longitude, so a coordinate axis cannot be stretched over a pixel range.
var ErrDegenerateRange = errors.New("degenerate coordinate range")

// MapRange linearly maps v from [inMin, inMax] onto [outMin, outMax].
// The result is NaN or infinite when inMin == inMax.
func MapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// Projector maps geographic coordinates inside a bounding box onto pixel
// coordinates. Longitude drives x and latitude drives y, independently.
type Projector struct {
	bounds     orb.Bound
	xMin, xMax float64
	yMin, yMax float64
}

// NewProjector returns a Projector stretching bounds over the given pixel
// ranges. Longitude bounds.Min[0] maps to xMin and bounds.Max[0] to xMax;
// latitude bounds.Min[1] maps to yMin and bounds.Max[1] to yMax, so passing
// yMin > yMax puts north at the top.
func NewProjector(bounds orb.Bound, xMin, xMax, yMin, yMax float64) (*Projector, error) {
	if bounds.IsEmpty() || bounds.Min[0] == bounds.Max[0] || bounds.Min[1] == bounds.Max[1] {
		return nil, ErrDegenerateRange
	}
	for _, v := range []float64{bounds.Min[0], bounds.Max[0], bounds.Min[1], bounds.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrDegenerateRange
		}
	}
	return &Projector{bounds: bounds, xMin: xMin, xMax: xMax, yMin: yMin, yMax: yMax}, nil
}

// Project returns the pixel position of a point, rounded to the nearest pixel.
func (p *Projector) Project(lat, lon float64) (x, y int) {
	fx := MapRange(lon, p.bounds.Min[0], p.bounds.Max[0], p.xMin, p.xMax)
	fy := MapRange(lat, p.bounds.Min[1], p.bounds.Max[1], p.yMin, p.yMax)
	return int(math.Round(fx)), int(math.Round(fy))
}
