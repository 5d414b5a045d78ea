package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// It stamps ProcessedAt and fills missing report timestamps; scoring takes its
// clock explicitly through NewRiskScorer.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for enrichment. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
