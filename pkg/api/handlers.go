package api

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"street_map/pkg/geo"
	"street_map/pkg/graph"
	"street_map/pkg/render"
	"street_map/pkg/routing"
)

const maxBodyBytes = 1024

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	g      *graph.Graph
	stats  StatsResponse
}

// NewHandlers creates handlers answering route queries with router and
// serving node and map data from g.
func NewHandlers(router routing.Router, g *graph.Graph) *Handlers {
	_, n := graph.Components(g)
	stats := StatsResponse{
		NumNodes:      g.NumNodes(),
		NumEdges:      g.NumEdges(),
		NumComponents: n,
	}
	if b := g.Bounds(); !b.IsEmpty() {
		stats.Bounds = &BoundJSON{MinLat: b.Min[1], MinLon: b.Min[0], MaxLat: b.Max[1], MaxLon: b.Max[0]}
	}
	return &Handlers{router: router, g: g, stats: stats}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(c *gin.Context) {
	var req RouteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.router.Route(c.Request.Context(), req.From, req.To)
	if err != nil {
		writeRouteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRouteResponse(result))
}

// HandleRouteCoords handles POST /api/v1/route/coords.
func (h *Handlers) HandleRouteCoords(c *gin.Context) {
	var req CoordsRequest
	if !bindJSON(c, &req) {
		return
	}

	// Validate coordinates.
	if err := validateCoord(req.Start); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	result, err := h.router.RouteCoords(c.Request.Context(),
		routing.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		routing.LatLng{Lat: req.End.Lat, Lng: req.End.Lng})
	if err != nil {
		writeRouteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRouteResponse(result))
}

// HandleNode handles GET /api/v1/nodes/:name.
func (h *Handlers) HandleNode(c *gin.Context) {
	n, err := h.g.FindNode(c.Param("name"))
	if err != nil {
		writeError(c, http.StatusNotFound, "node_not_found", "name")
		return
	}

	resp := NodeResponse{
		NodeJSON:  toNodeJSON(n),
		Neighbors: make([]NeighborJSON, 0, n.Degree()),
	}
	for _, arc := range n.Neighbors() {
		resp.Neighbors = append(resp.Neighbors, NeighborJSON{Name: arc.To.Name, Miles: arc.Weight})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleGeoJSON handles GET /api/v1/map.geojson, with an optional route
// given by the from and to query parameters.
func (h *Handlers) HandleGeoJSON(c *gin.Context) {
	path, ok := h.queryPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, render.GeoJSON(h.g, path))
}

// HandleSVG handles GET /api/v1/map.svg, with an optional route given by the
// from and to query parameters.
func (h *Handlers) HandleSVG(c *gin.Context) {
	path, ok := h.queryPath(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, h.g, path, render.DefaultOptions()); err != nil {
		if errors.Is(err, geo.ErrDegenerateRange) {
			writeError(c, http.StatusUnprocessableEntity, "degenerate_map", "")
			return
		}
		writeError(c, http.StatusInternalServerError, "internal_error", "")
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats)
}

// queryPath routes between the from and to query parameters when both are
// set. It writes the error response itself and returns false on failure.
func (h *Handlers) queryPath(c *gin.Context) ([]*graph.Node, bool) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		return nil, true
	}
	if from == "" || to == "" {
		field := "from"
		if to == "" {
			field = "to"
		}
		writeError(c, http.StatusBadRequest, "invalid_request", field)
		return nil, false
	}

	result, err := h.router.Route(c.Request.Context(), from, to)
	if err != nil {
		writeRouteError(c, err)
		return nil, false
	}
	return result.Path, true
}

// bindJSON enforces a small JSON body and decodes it into dst.
func bindJSON(c *gin.Context, dst any) bool {
	if c.ContentType() != "application/json" {
		writeError(c, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	return true
}

func toRouteResponse(r *routing.Route) RouteResponse {
	resp := RouteResponse{
		Found: r.Found,
		Path:  make([]NodeJSON, len(r.Path)),
	}
	if r.From != nil {
		resp.From = r.From.Name
	}
	if r.To != nil {
		resp.To = r.To.Name
	}
	if r.Found && !math.IsInf(r.DistanceMiles, 0) {
		d := r.DistanceMiles
		resp.DistanceMiles = &d
	}
	for i, n := range r.Path {
		resp.Path[i] = toNodeJSON(n)
	}
	for _, leg := range r.Legs {
		resp.Legs = append(resp.Legs, LegJSON{From: leg.From.Name, To: leg.To.Name, Miles: leg.Miles})
	}
	return resp
}

func toNodeJSON(n *graph.Node) NodeJSON {
	return NodeJSON{Name: n.Name, Lat: n.Lat, Lon: n.Lon}
}

func writeRouteError(c *gin.Context, err error) {
	var field string
	var ee *routing.EndpointError
	if errors.As(err, &ee) {
		field = ee.Endpoint
	}

	switch {
	case errors.Is(err, graph.ErrNodeNotFound):
		writeError(c, http.StatusNotFound, "node_not_found", field)
	case errors.Is(err, routing.ErrPointTooFar):
		writeError(c, http.StatusUnprocessableEntity, "point_too_far_from_road", field)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		writeError(c, http.StatusInternalServerError, "internal_error", "")
	}
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(c *gin.Context, status int, code, field string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Field: field})
}
