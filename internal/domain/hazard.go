package domain

import "time"

// HazardType is one of the fixed road-hazard categories.
type HazardType string

const (
	Potholes     HazardType = "Potholes"
	Flooding     HazardType = "Flooding"
	Accidents    HazardType = "Accidents"
	RoadClosures HazardType = "Road Closures"
	Construction HazardType = "Construction"
	Debris       HazardType = "Debris"
	Landslides   HazardType = "Landslides"
	Traffic      HazardType = "Traffic"
)

// HazardTypes lists every accepted category in display order.
var HazardTypes = []HazardType{
	Potholes, Flooding, Accidents, RoadClosures,
	Construction, Debris, Landslides, Traffic,
}

// Valid reports whether t is a member of the fixed category set.
func (t HazardType) Valid() bool {
	for _, known := range HazardTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Default values applied while parsing reports.
const (
	DefaultConfidence = 50.0
	DefaultSource     = "Community"
)

// HazardRecord is one observed or reported hazard.
type HazardRecord struct {
	ID          string     `json:"id" validate:"required"`
	HazardType  HazardType `json:"hazard_type" validate:"hazardtype"`
	Severity    int        `json:"severity" validate:"gte=1,lte=5"`
	Confidence  float64    `json:"confidence" validate:"gte=0,lte=100"`
	Lat         float64    `json:"lat" validate:"gte=-90,lte=90"`
	Lon         float64    `json:"lon" validate:"gte=-180,lte=180"`
	Timestamp   time.Time  `json:"timestamp"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source,omitempty"`
	Verified    bool       `json:"verified"`
	ReporterID  string     `json:"reporter_id,omitempty"`

	// Geocoding enrichment fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "forward", "reverse", "original", "failed"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at,omitzero"`
}

// HasCoordinates reports whether the record has a position. A report sent
// without lat/lon decodes to (0, 0), which is treated as missing.
func (r HazardRecord) HasCoordinates() bool {
	return r.Lat != 0 || r.Lon != 0
}

// NoiseCluster is the cluster label for records outside every cluster.
const NoiseCluster = -1

// AnnotatedHazard is a copy of a HazardRecord carrying the fields derived by
// clustering and scoring.
type AnnotatedHazard struct {
	HazardRecord
	ClusterID int     `json:"cluster_id"`
	IsHotspot bool    `json:"is_hotspot"`
	RiskScore float64 `json:"risk_score"`
}

// Records strips the derived fields and returns the underlying records.
func Records(hazards []AnnotatedHazard) []HazardRecord {
	out := make([]HazardRecord, len(hazards))
	for i := range hazards {
		out[i] = hazards[i].HazardRecord
	}
	return out
}

// HazardStats summarizes stored hazards for dashboards.
type HazardStats struct {
	Total            int                `json:"total"`
	ByType           map[HazardType]int `json:"by_type"`
	BySeverity       map[int]int        `json:"by_severity"`
	VerificationRate float64            `json:"verification_rate"` // percent of verified reports
	RecentActivity   int                `json:"recent_activity"`   // reports in the last hour
}
