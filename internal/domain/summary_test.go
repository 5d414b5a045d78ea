package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSummarize(t *testing.T) {
	s := newTestScorer()

	got := Summarize(s.Assess(connaughtPlaceBatch(testNow.Add(-30 * time.Minute))))

	want := Summary{
		Total:           10,
		Clusters:        1,
		HotspotRecords:  6,
		EmergingRecords: 6,
		MaxScore:        147,
		ByLevel:         map[string]int{"critical": 6, "medium": 4},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)

	if diff := cmp.Diff(Summary{ByLevel: map[string]int{}}, got); diff != "" {
		t.Errorf("Summarize(nil) mismatch (-want +got):\n%s", diff)
	}
}
