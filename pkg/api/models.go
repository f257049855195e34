package api

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// CoordsRequest is the JSON body for POST /api/v1/route/coords.
type CoordsRequest struct {
	Start LatLngJSON `json:"start"`
	End   LatLngJSON `json:"end"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NodeJSON is an intersection on a route.
type NodeJSON struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// LegJSON is one hop of a route.
type LegJSON struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Miles float64 `json:"miles"`
}

// RouteResponse is the JSON response for a route query. DistanceMiles is
// omitted when no route exists.
type RouteResponse struct {
	Found         bool       `json:"found"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	DistanceMiles *float64   `json:"distance_miles,omitempty"`
	Path          []NodeJSON `json:"path"`
	Legs          []LegJSON  `json:"legs,omitempty"`
}

// NeighborJSON is an adjacent intersection and the road length to it.
type NeighborJSON struct {
	Name  string  `json:"name"`
	Miles float64 `json:"miles"`
}

// NodeResponse is the JSON response for GET /api/v1/nodes/:name.
type NodeResponse struct {
	NodeJSON
	Neighbors []NeighborJSON `json:"neighbors"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes      uint32     `json:"num_nodes"`
	NumEdges      int        `json:"num_edges"`
	NumComponents int        `json:"num_components"`
	Bounds        *BoundJSON `json:"bounds,omitempty"`
}

// BoundJSON is the bounding box of the network.
type BoundJSON struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
