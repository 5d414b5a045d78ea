package domain

import (
	"context"
	"time"
)

// RawReport is the flat JSON structure published by reporting sources.
// Confidence is a pointer so an absent value can be told apart from zero.
// Missing coordinates decode as (0, 0) and trigger forward
// geocoding of the location text.
type RawReport struct {
	ID          string   `json:"id"`
	HazardType  string   `json:"hazard_type"`
	Severity    int      `json:"severity"`
	Confidence  *float64 `json:"confidence"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	Verified    bool     `json:"verified"`
	Timestamp   string   `json:"timestamp"`
	ReporterID  string   `json:"reporter_id"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
