package domain

import (
	"context"
	"log/slog"
)

// Geocoder resolves road and landmark names to coordinates and back.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, query string) (GeocodingResult, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// GeocodingResult is the best match a Geocoder found. An empty
// FormattedAddress means no match.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // provider relevance, 0..1
}

// EnrichWithGeocoding attempts to enrich a record with geocoding data.
// If geocoder is nil or geocoding fails, the record is returned with
// GeoSource set accordingly (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, rec HazardRecord, geocoder Geocoder, logger *slog.Logger) HazardRecord {
	if geocoder == nil {
		return rec
	}

	hasCoords := rec.HasCoordinates()
	hasLocation := rec.Location != ""

	// Forward geocode: location text → coordinates (when coords are missing).
	if !hasCoords && hasLocation {
		result, err := geocoder.ForwardGeocode(ctx, rec.Location)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"hazard_id", rec.ID,
				"location", rec.Location,
				"error", err,
			)
			rec.GeoSource = "failed"
			return rec
		}
		if result.Lat != 0 || result.Lon != 0 {
			rec.Lat = result.Lat
			rec.Lon = result.Lon
			rec.FormattedAddress = result.FormattedAddress
			rec.GeoConfidence = result.Confidence
			rec.GeoSource = "forward"
			return rec
		}
		rec.GeoSource = "original"
		return rec
	}

	// Reverse geocode: coordinates → place details (when coords are present).
	if hasCoords {
		result, err := geocoder.ReverseGeocode(ctx, rec.Lat, rec.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"hazard_id", rec.ID,
				"lat", rec.Lat,
				"lon", rec.Lon,
				"error", err,
			)
			rec.GeoSource = "failed"
			return rec
		}
		if result.FormattedAddress != "" {
			rec.FormattedAddress = result.FormattedAddress
			rec.GeoConfidence = result.Confidence
			if rec.Location == "" {
				rec.Location = result.PlaceName
			}
			rec.GeoSource = "reverse"
			return rec
		}
		rec.GeoSource = "original"
		return rec
	}

	rec.GeoSource = "original"
	return rec
}
