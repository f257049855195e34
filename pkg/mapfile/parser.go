// Package mapfile parses the plain-text map format:
//
//	i <name> <lat> <lon>
//	r <road> <intersection1> <intersection2>
//
// Fields are whitespace separated. Every intersection record must precede the
// first road record. By default input longitudes are degrees west (positive
// west of Greenwich) and are negated on ingestion, so the western hemisphere
// ends up negative. Files that already carry signed longitudes (negative west)
// must be read with Options.SignedLongitude, otherwise they land in the
// eastern hemisphere and render mirrored.
package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"street_map/pkg/graph"
)

// SyntaxError reports a malformed line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Options tunes parsing.
type Options struct {
	// SignedLongitude keeps longitudes as written instead of negating them.
	SignedLongitude bool
}

// Parse reads a map from r.
func Parse(r io.Reader, opts ...Options) (*graph.Input, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	in := &graph.Input{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	inRoads := false
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "i":
			if inRoads {
				return nil, &SyntaxError{lineNo, "intersection after first road"}
			}
			rec, err := parseIntersection(fields, opt.SignedLongitude)
			if err != nil {
				return nil, &SyntaxError{lineNo, err.Error()}
			}
			in.Intersections = append(in.Intersections, rec)
		case "r":
			inRoads = true
			if len(fields) != 4 {
				return nil, &SyntaxError{lineNo, fmt.Sprintf("road record needs 3 fields, got %d", len(fields)-1)}
			}
			in.Roads = append(in.Roads, graph.Road{Name: fields[1], From: fields[2], To: fields[3]})
		default:
			return nil, &SyntaxError{lineNo, fmt.Sprintf("unknown record type %q", fields[0])}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}

	return in, nil
}

func parseIntersection(fields []string, signed bool) (graph.Intersection, error) {
	if len(fields) != 4 {
		return graph.Intersection{}, fmt.Errorf("intersection record needs 3 fields, got %d", len(fields)-1)
	}
	lat, ok := parseDegrees(fields[2], 90)
	if !ok {
		return graph.Intersection{}, fmt.Errorf("bad latitude %q", fields[2])
	}
	lon, ok := parseDegrees(fields[3], 180)
	if !ok {
		return graph.Intersection{}, fmt.Errorf("bad longitude %q", fields[3])
	}
	if !signed {
		lon = -lon
	}
	return graph.Intersection{Name: fields[1], Lat: lat, Lon: lon}, nil
}

// parseDegrees accepts a finite number within [-limit, limit].
func parseDegrees(s string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, v >= -limit && v <= limit
}

// Write emits in in the default text format, longitudes negated back to
// degrees west.
func Write(w io.Writer, in *graph.Input) error {
	bw := bufio.NewWriter(w)
	for _, rec := range in.Intersections {
		fmt.Fprintf(bw, "i %s %s %s\n", rec.Name,
			strconv.FormatFloat(rec.Lat, 'f', -1, 64),
			strconv.FormatFloat(-rec.Lon, 'f', -1, 64))
	}
	for _, rec := range in.Roads {
		fmt.Fprintf(bw, "r %s %s %s\n", rec.Name, rec.From, rec.To)
	}
	return bw.Flush()
}
