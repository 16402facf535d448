package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Segment represents a walkable street segment between two graph nodes
type Segment struct {
	SegmentID int64  `json:"segment_id"`
	OSMID     *OSMID `json:"osmid"` // Source map way id, null when unknown

	// Endpoint node ids
	U int64 `json:"u"`
	V int64 `json:"v"`

	Length      float64  `json:"length"`      // Meters
	Coordinates Polyline `json:"coordinates"` // Ordered [lng, lat] pairs
	Name        string   `json:"name,omitempty"`
}

// Start returns the first polyline coordinate as (lng, lat)
func (s Segment) Start() [2]float64 {
	return s.Coordinates[0]
}

// End returns the last polyline coordinate as (lng, lat)
func (s Segment) End() [2]float64 {
	return s.Coordinates[len(s.Coordinates)-1]
}

// OSMID is a source map way id. Simplified OSM graphs sometimes merge several
// ways into one edge and report a list; the first id is kept.
type OSMID int64

// UnmarshalJSON accepts a number or a list of numbers
func (o *OSMID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var ids []int64
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("failed to parse osmid list: %w", err)
		}
		if len(ids) == 0 {
			return fmt.Errorf("empty osmid list")
		}
		*o = OSMID(ids[0])
		return nil
	}

	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("failed to parse osmid: %w", err)
	}
	*o = OSMID(id)
	return nil
}

// Polyline is an ordered list of [lng, lat] pairs
type Polyline [][2]float64

// UnmarshalJSON rejects any pair that is not exactly two numbers
func (p *Polyline) UnmarshalJSON(data []byte) error {
	var raw [][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse coordinates: %w", err)
	}
	if raw == nil {
		*p = nil
		return nil
	}

	out := make(Polyline, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return fmt.Errorf("coordinate %d has %d values, want [lng, lat]", i, len(pair))
		}
		out[i] = [2]float64{pair[0], pair[1]}
	}
	*p = out
	return nil
}

// SegmentSummary is the segment payload returned by lookup endpoints
type SegmentSummary struct {
	Segment
	Score *SegmentScore `json:"score,omitempty"`
}
