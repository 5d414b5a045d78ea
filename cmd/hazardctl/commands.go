package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var version = "dev"

type cli struct {
	in     io.Reader
	out    io.Writer
	now    string
	format string
}

type assessment struct {
	Hazards []domain.AnnotatedHazard `json:"hazards"`
	Summary domain.Summary           `json:"summary"`
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:   "hazardctl",
		Short: "Cluster and score road hazard reports",
		Long: `hazardctl runs the hotspot clustering and risk scoring used by the
hazard risk ETL service against JSON fixture files.

Report files hold a JSON array of raw reports in the same shape the service
consumes from Kafka. Use "-" to read from stdin.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.now, "now", "", "reference time in RFC3339 for scoring (default: current time)")
	root.PersistentFlags().StringVar(&c.format, "format", "json", "output format: json or table")

	root.AddCommand(
		&cobra.Command{
			Use:   "validate <reports.json>",
			Short: "Parse and validate every report in a file",
			Args:  cobra.ExactArgs(1),
			RunE:  c.runValidate,
		},
		&cobra.Command{
			Use:   "cluster <reports.json>",
			Short: "Label reports with hotspot clusters",
			Args:  cobra.ExactArgs(1),
			RunE:  c.runCluster,
		},
		&cobra.Command{
			Use:   "score <clustered.json>",
			Short: "Score clustered hazards, as produced by the cluster command",
			Long: `Score reads the output of "hazardctl cluster" and applies the risk
formula, including the emerging hotspot boost relative to --now.`,
			Args: cobra.ExactArgs(1),
			RunE: c.runScore,
		},
		&cobra.Command{
			Use:   "assess <reports.json>",
			Short: "Cluster and score reports in one step",
			Args:  cobra.ExactArgs(1),
			RunE:  c.runAssess,
		},
	)
	return root
}

func (c *cli) clock() (clockwork.Clock, error) {
	if c.now == "" {
		return clockwork.NewRealClock(), nil
	}
	t, err := time.Parse(time.RFC3339, c.now)
	if err != nil {
		return nil, fmt.Errorf("parse --now: %w", err)
	}
	return clockwork.NewFakeClockAt(t.UTC()), nil
}

func (c *cli) open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(c.in), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// parseReports reads raw reports and returns the valid records together with
// one error per rejected report.
func (c *cli) parseReports(path string) ([]domain.HazardRecord, []error, error) {
	clock, err := c.clock()
	if err != nil {
		return nil, nil, err
	}
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	r, err := c.open(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}

	records := make([]domain.HazardRecord, 0, len(raws))
	var rejected []error
	for i, raw := range raws {
		rec, err := domain.ParseRawEvent(domain.RawEvent{Value: raw, Timestamp: clock.Now()})
		if err == nil {
			rec = domain.EnrichHazard(rec)
			err = domain.ValidateReport(rec)
		}
		if err != nil {
			rejected = append(rejected, fmt.Errorf("report %d: %w", i, err))
			continue
		}
		records = append(records, rec)
	}
	return records, rejected, nil
}

// loadReports is parseReports that fails on the first rejected report.
func (c *cli) loadReports(path string) ([]domain.HazardRecord, error) {
	records, rejected, err := c.parseReports(path)
	if err != nil {
		return nil, err
	}
	if len(rejected) > 0 {
		return nil, errors.Join(rejected...)
	}
	return records, nil
}

func (c *cli) runValidate(cmd *cobra.Command, args []string) error {
	records, rejected, err := c.parseReports(args[0])
	if err != nil {
		return err
	}
	for _, e := range rejected {
		fmt.Fprintln(c.out, e)
	}
	fmt.Fprintf(c.out, "%d valid, %d invalid\n", len(records), len(rejected))
	if len(rejected) > 0 {
		return fmt.Errorf("%d invalid reports", len(rejected))
	}
	return nil
}

func (c *cli) runCluster(cmd *cobra.Command, args []string) error {
	records, err := c.loadReports(args[0])
	if err != nil {
		return err
	}
	return c.write(domain.Cluster(records))
}

func (c *cli) runScore(cmd *cobra.Command, args []string) error {
	clock, err := c.clock()
	if err != nil {
		return err
	}
	r, err := c.open(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	var in assessment
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	if err := domain.ValidateAnnotations(in.Hazards); err != nil {
		return err
	}
	return c.write(domain.NewRiskScorer(clock).Score(in.Hazards))
}

func (c *cli) runAssess(cmd *cobra.Command, args []string) error {
	clock, err := c.clock()
	if err != nil {
		return err
	}
	records, err := c.loadReports(args[0])
	if err != nil {
		return err
	}
	return c.write(domain.NewRiskScorer(clock).Assess(records))
}

func (c *cli) write(hazards []domain.AnnotatedHazard) error {
	out := assessment{Hazards: hazards, Summary: domain.Summarize(hazards)}
	switch c.format {
	case "json":
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "table":
		return writeTable(c.out, out)
	default:
		return fmt.Errorf("unknown format %q", c.format)
	}
}

func writeTable(w io.Writer, a assessment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSEV\tCLUSTER\tSCORE\tLEVEL\tLOCATION")
	for _, h := range a.Hazards {
		cluster := "-"
		if h.IsHotspot {
			cluster = fmt.Sprint(h.ClusterID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%.2f\t%s\t%s\n",
			h.ID, h.HazardType, h.Severity, cluster, h.RiskScore, domain.RiskLevel(h.RiskScore), h.Location)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := a.Summary
	_, err := fmt.Fprintf(w, "\n%d hazards, %d clusters, %d hotspot records, %d emerging, max score %.2f\n",
		s.Total, s.Clusters, s.HotspotRecords, s.EmergingRecords, s.MaxScore)
	return err
}
