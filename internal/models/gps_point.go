package models

// GPSPoint represents a raw GPS sample of a walking trace
type GPSPoint struct {
	Lat       float64 `json:"lat" binding:"gte=-90,lte=90"`
	Lng       float64 `json:"lng" binding:"gte=-180,lte=180"`
	Timestamp int64   `json:"timestamp"` // Unix timestamp in seconds
}

// GPSBatch is a batch of points pushed into a live trip
type GPSBatch struct {
	Points []GPSPoint `json:"points" binding:"required,min=1,dive"`
}
