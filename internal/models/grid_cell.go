package models

// GridCell aggregates the scores of the segments whose midpoint falls in a
// square lng/lat cell
type GridCell struct {
	// Grid identification
	GridID string `json:"grid_id"` // Format: "L{level}_{x}_{y}"
	Level  int    `json:"level"`   // Cell edge is 360/2^level degrees
	X      int    `json:"x"`       // Grid X coordinate
	Y      int    `json:"y"`       // Grid Y coordinate

	// Bounding box
	MinLat    float64 `json:"min_lat"`
	MaxLat    float64 `json:"max_lat"`
	MinLon    float64 `json:"min_lon"`
	MaxLon    float64 `json:"max_lon"`
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`

	// Statistics over scored segments
	SegmentCount  int     `json:"segment_count"`
	FeedbackCount int     `json:"feedback_count"`
	MeanScore     float64 `json:"mean_score"` // Length-weighted, 0~1
	MinScore      float64 `json:"min_score"`  // Least safe segment in the cell
}

// GridFilter represents filter parameters for grid cells
type GridFilter struct {
	Level       int     `form:"level" binding:"omitempty,min=1,max=24"`
	MinLat      float64 `form:"minLat"`
	MaxLat      float64 `form:"maxLat"`
	MinLon      float64 `form:"minLon"`
	MaxLon      float64 `form:"maxLon"`
	MinFeedback int     `form:"minFeedback"`
}

// HasBounds reports whether a bounding box was given
func (f GridFilter) HasBounds() bool {
	return f.MinLat != 0 || f.MaxLat != 0 || f.MinLon != 0 || f.MaxLon != 0
}
