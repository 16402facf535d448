package models

// Heatmap metrics
const (
	HeatmapDanger   = "danger"   // 1 - mean score
	HeatmapFeedback = "feedback" // number of feedback records
)

// HeatmapPoint represents a single point in the heatmap
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`       // Latitude
	Lng       float64 `json:"lng"`       // Longitude
	Intensity float64 `json:"intensity"` // Normalized 0-1
	Value     float64 `json:"value"`     // Raw value
	Metric    string  `json:"metric"`
}

// HeatmapResponse represents the heatmap API response
type HeatmapResponse struct {
	Points       []HeatmapPoint `json:"points"`
	Count        int            `json:"count"`
	MaxValue     float64        `json:"max_value"`
	MinValue     float64        `json:"min_value"`
	Metric       string         `json:"metric"`
	GridLevel    int            `json:"grid_level"`
	ScoreVersion int64          `json:"score_version"`
}
