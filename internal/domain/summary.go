package domain

// Summary aggregates an assessed batch.
type Summary struct {
	Total           int            `json:"total"`
	Clusters        int            `json:"clusters"`
	HotspotRecords  int            `json:"hotspot_records"`
	EmergingRecords int            `json:"emerging_records"`
	MaxScore        float64        `json:"max_score"`
	ByLevel         map[string]int `json:"by_level"`
}

// Summarize counts clusters, hotspot members and boosted records. A record
// counts as emerging when its score exceeds its base score.
func Summarize(assessed []AnnotatedHazard) Summary {
	s := Summary{Total: len(assessed), ByLevel: make(map[string]int)}
	clusters := make(map[int]struct{})
	for i := range assessed {
		h := &assessed[i]
		if h.IsHotspot {
			s.HotspotRecords++
			clusters[h.ClusterID] = struct{}{}
		}
		if h.RiskScore > BaseScore(*h) {
			s.EmergingRecords++
		}
		if h.RiskScore > s.MaxScore {
			s.MaxScore = h.RiskScore
		}
		s.ByLevel[RiskLevel(h.RiskScore)]++
	}
	s.Clusters = len(clusters)
	return s
}
