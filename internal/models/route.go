package models

// RouteQuery represents a routing request between two coordinates
type RouteQuery struct {
	StartLat float64 `form:"start_lat" json:"start_lat" binding:"gte=-90,lte=90"`
	StartLng float64 `form:"start_lng" json:"start_lng" binding:"gte=-180,lte=180"`
	EndLat   float64 `form:"end_lat" json:"end_lat" binding:"gte=-90,lte=90"`
	EndLng   float64 `form:"end_lng" json:"end_lng" binding:"gte=-180,lte=180"`
	Format   string  `form:"format" json:"format" binding:"omitempty,oneof=json geojson"`
}

// RouteResult holds both route variants for a query
type RouteResult struct {
	FastestRoute      [][2]float64 `json:"fastest_route"` // [lng, lat] pairs
	SafestRoute       [][2]float64 `json:"safest_route"`
	FastestSegmentIDs []int64      `json:"fastest_segment_ids"`
	SafestSegmentIDs  []int64      `json:"safest_segment_ids"`

	FastestNodes []int64 `json:"fastest_nodes"`
	SafestNodes  []int64 `json:"safest_nodes"`

	// Meters along each route
	FastestLength float64 `json:"fastest_length"`
	SafestLength  float64 `json:"safest_length"`

	// Safety-adjusted cost of each route
	FastestSafetyCost float64 `json:"fastest_safety_cost"`
	SafestSafetyCost  float64 `json:"safest_safety_cost"`

	StartNode    int64 `json:"start_node"`
	EndNode      int64 `json:"end_node"`
	ScoreVersion int64 `json:"score_version"`
}
