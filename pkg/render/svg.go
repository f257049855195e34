// Package render draws a road network and a route as SVG or GeoJSON.
package render

import (
	"bufio"
	"fmt"
	"io"

	"street_map/pkg/geo"
	"street_map/pkg/graph"
)

// Options controls the SVG canvas.
type Options struct {
	Width, Height int
	Margin        int
	RoadColor     string
	RouteColor    string
	DotRadius     float64
}

// DefaultOptions matches the 1200x700 window of the desktop viewer.
func DefaultOptions() Options {
	return Options{
		Width:      1200,
		Height:     700,
		Margin:     50,
		RoadColor:  "black",
		RouteColor: "orange",
		DotRadius:  1.5,
	}
}

// NewProjector returns the projector WriteSVG uses for g: west on the left,
// north at the top, opts.Margin pixels of padding on every side.
func NewProjector(g *graph.Graph, opts Options) (*geo.Projector, error) {
	m := float64(opts.Margin)
	return geo.NewProjector(g.Bounds(),
		m, float64(opts.Width)-m,
		float64(opts.Height)-m, m)
}

// WriteSVG draws every road of g once, then path on top with a dot at each
// route node. A nil or empty path draws the network alone.
func WriteSVG(w io.Writer, g *graph.Graph, path []*graph.Node, opts Options) error {
	p, err := NewProjector(g, opts)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="white"/>`+"\n")

	fmt.Fprintf(bw, `<g id="roads" stroke="%s" stroke-width="1">`+"\n", opts.RoadColor)
	g.EachEdge(func(a, b *graph.Node, _ float64) bool {
		x1, y1 := p.Project(a.Lat, a.Lon)
		x2, y2 := p.Project(b.Lat, b.Lon)
		fmt.Fprintf(bw, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", x1, y1, x2, y2)
		return true
	})
	fmt.Fprintln(bw, `</g>`)

	if len(path) > 0 {
		fmt.Fprintf(bw, `<g id="route" stroke="%s" fill="%s" stroke-width="3">`+"\n", opts.RouteColor, opts.RouteColor)
		for i := 1; i < len(path); i++ {
			x1, y1 := p.Project(path[i-1].Lat, path[i-1].Lon)
			x2, y2 := p.Project(path[i].Lat, path[i].Lon)
			fmt.Fprintf(bw, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", x1, y1, x2, y2)
		}
		for _, n := range path {
			x, y := p.Project(n.Lat, n.Lon)
			fmt.Fprintf(bw, `<circle cx="%d" cy="%d" r="%g"><title>%s</title></circle>`+"\n",
				x, y, opts.DotRadius, escape(n.Name))
		}
		fmt.Fprintln(bw, `</g>`)
	}

	fmt.Fprintln(bw, `</svg>`)
	return bw.Flush()
}

func escape(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '"':
			out = append(out, "&quot;"...)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
