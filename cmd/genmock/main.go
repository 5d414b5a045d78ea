// Command genmock generates a mock hazard report fixture scattered around a
// base coordinate. Every generated report is run through the domain parser
// and validator so the fixture matches what the pipeline accepts.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/generated_hazards.json \
//	  -count 50 -seed 7 -now 2024-04-26T12:00:00Z
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

var (
	locations = []string{
		"Connaught Place", "India Gate", "Rajpath", "Janpath",
		"Barakhamba Road", "Kasturba Gandhi Marg", "Parliament Street",
		"Ashoka Road", "Mandir Marg", "Bangla Sahib Road",
	}
	sources = []string{"User Report", "Govt API", "Traffic Cam", "Weather Feed"}
)

type options struct {
	out     string
	count   int
	seed    uint64
	now     time.Time
	baseLat float64
	baseLon float64
	spread  float64
	maxAge  time.Duration
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the JSON fixture")
	count := flag.Int("count", 50, "number of reports to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	nowFlag := flag.String("now", "", "reference time in RFC3339 (default: current time)")
	baseLat := flag.Float64("lat", 28.6139, "base latitude")
	baseLon := flag.Float64("lon", 77.2090, "base longitude")
	spread := flag.Float64("spread", 0.1, "maximum offset in degrees from the base coordinate")
	maxAge := flag.Duration("max-age", 72*time.Hour, "maximum report age")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return errors.New("missing required flag: -out")
	}
	if *count <= 0 {
		return errors.New("-count must be positive")
	}

	now := time.Now().UTC()
	if *nowFlag != "" {
		t, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			return fmt.Errorf("parse -now: %w", err)
		}
		now = t.UTC()
	}

	opts := options{
		out: *out, count: *count, seed: *seed, now: now,
		baseLat: *baseLat, baseLon: *baseLon, spread: *spread, maxAge: *maxAge,
	}

	reports := generate(opts)
	records, err := check(reports)
	if err != nil {
		return err
	}

	summary := domain.Summarize(domain.NewRiskScorer(clockwork.NewFakeClockAt(now)).Assess(records))
	log.Printf("generated %d reports: %d clusters, %d hotspot records, %d emerging",
		summary.Total, summary.Clusters, summary.HotspotRecords, summary.EmergingRecords)

	return writeJSON(opts.out, reports)
}

func generate(opts options) []domain.RawReport {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	hours := int(opts.maxAge / time.Hour)

	reports := make([]domain.RawReport, 0, opts.count)
	for i := range opts.count {
		hazardType := domain.HazardTypes[rng.IntN(len(domain.HazardTypes))]
		confidence := float64(60 + rng.IntN(36))
		reportedAt := opts.now.Add(-time.Duration(rng.IntN(hours+1)) * time.Hour)

		reports = append(reports, domain.RawReport{
			ID:          fmt.Sprintf("HR%04d", i),
			HazardType:  string(hazardType),
			Severity:    1 + rng.IntN(5),
			Confidence:  &confidence,
			Lat:         opts.baseLat + (rng.Float64()*2-1)*opts.spread,
			Lon:         opts.baseLon + (rng.Float64()*2-1)*opts.spread,
			Location:    locations[rng.IntN(len(locations))],
			Description: fmt.Sprintf("%s reported in %s area", hazardType, locations[rng.IntN(len(locations))]),
			Source:      sources[rng.IntN(len(sources))],
			Verified:    confidence > 70,
			Timestamp:   reportedAt.Format("2006-01-02 15:04"),
		})
	}
	return reports
}

// check parses and validates every report exactly as the pipeline would.
func check(reports []domain.RawReport) ([]domain.HazardRecord, error) {
	records := make([]domain.HazardRecord, 0, len(reports))
	for _, rep := range reports {
		value, err := json.Marshal(rep)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", rep.ID, err)
		}
		rec, err := domain.ParseRawEvent(domain.RawEvent{Value: value})
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", rep.ID, err)
		}
		if err := domain.ValidateHazard(rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
