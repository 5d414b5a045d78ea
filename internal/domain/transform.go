package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing report timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

// ParseRawEvent deserializes a RawEvent's value into a HazardRecord.
// Missing timestamps fall back to the message timestamp, missing confidence
// to DefaultConfidence and missing source to DefaultSource. The record is not
// validated here; geocoding may still fill its coordinates.
func ParseRawEvent(raw RawEvent) (HazardRecord, error) {
	var rep RawReport
	if err := json.Unmarshal(raw.Value, &rep); err != nil {
		return HazardRecord{}, fmt.Errorf("parse raw event: %w", err)
	}

	ts, err := parseTimestamp(rep.Timestamp, raw.Timestamp)
	if err != nil {
		return HazardRecord{}, fmt.Errorf("parse raw event: %w", err)
	}

	confidence := DefaultConfidence
	if rep.Confidence != nil {
		confidence = *rep.Confidence
	}

	hazardType := NormalizeHazardType(rep.HazardType)

	id := strings.TrimSpace(rep.ID)
	if id == "" {
		id = generateID(hazardType, rep.Lat, rep.Lon, ts, rep.ReporterID)
	}

	return HazardRecord{
		ID:          id,
		HazardType:  hazardType,
		Severity:    rep.Severity,
		Confidence:  confidence,
		Lat:         rep.Lat,
		Lon:         rep.Lon,
		Timestamp:   ts,
		Location:    rep.Location,
		Description: rep.Description,
		Source:      rep.Source,
		Verified:    rep.Verified,
		ReporterID:  rep.ReporterID,

		RawPayload: raw.Value,
	}, nil
}

// parseTimestamp accepts RFC 3339 and the dashboard's "YYYY-MM-DD HH:MM"
// format (UTC). An empty value falls back to the message time.
func parseTimestamp(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback.UTC(), nil
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// NormalizeHazardType maps case and spacing variants onto the canonical
// category names. Unknown values are returned trimmed and fail validation.
func NormalizeHazardType(value string) HazardType {
	value = strings.TrimSpace(value)
	folded := strings.Join(strings.Fields(strings.ReplaceAll(value, "_", " ")), " ")
	for _, t := range HazardTypes {
		if strings.EqualFold(folded, string(t)) {
			return t
		}
	}
	return HazardType(value)
}

// generateID produces a deterministic ID from the report's key fields so that
// replaying a report upserts the same row.
func generateID(hazardType HazardType, lat, lon float64, ts time.Time, reporter string) string {
	input := fmt.Sprintf("%s|%.5f|%.5f|%s|%s", hazardType, lat, lon, ts.UTC().Format(time.RFC3339), reporter)
	hash := sha256.Sum256([]byte(input))
	return "hz-" + hex.EncodeToString(hash[:8])
}

// EnrichHazard normalizes free-text fields, applies the default source and
// stamps ProcessedAt.
func EnrichHazard(rec HazardRecord) HazardRecord {
	rec.Location = strings.TrimSpace(rec.Location)
	rec.Description = strings.TrimSpace(rec.Description)
	rec.Source = strings.TrimSpace(rec.Source)
	if rec.Source == "" {
		rec.Source = DefaultSource
	}
	rec.ReporterID = strings.TrimSpace(rec.ReporterID)
	if rec.Timestamp.IsZero() {
		rec.Timestamp = clock.Now().UTC()
	}
	rec.ProcessedAt = clock.Now()
	return rec
}

// SerializeAssessment marshals an assessed hazard into an OutputEvent.
func SerializeAssessment(h AnnotatedHazard) (OutputEvent, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize hazard: %w", err)
	}
	return OutputEvent{
		Key:   []byte(h.ID),
		Value: data,
		Headers: map[string]string{
			"hazard_type":  string(h.HazardType),
			"is_hotspot":   strconv.FormatBool(h.IsHotspot),
			"risk_level":   RiskLevel(h.RiskScore),
			"processed_at": h.ProcessedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
