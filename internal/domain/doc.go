// Package domain models road-hazard reports and the risk assessment derived
// from them.
//
// # Data Source
//
// Hazard reports arrive as flat JSON on the Kafka source topic or through the
// HTTP API. They come from community reporting, traffic and weather feeds, and
// municipal APIs. A report carries a category, a 1–5 severity, a 0–100
// confidence, WGS-84 coordinates and a timestamp. Free-text location and
// description fields are optional.
//
// Hazard categories (closed set):
//
//	Potholes, Flooding, Accidents, Road Closures,
//	Construction, Debris, Landslides, Traffic
//
// Timestamp format:
//
//	RFC 3339 ("2024-04-26T15:10:00Z") or the dashboard format
//	"2006-01-02 15:04" interpreted as UTC. Missing timestamps fall back to the
//	Kafka message timestamp.
//
// # Assessment
//
// Assessment is two pure steps over a batch of validated records:
//
//	Cluster: standardize (lat, lon) over the batch, then DBSCAN with
//	         eps=0.02 and min_samples=3. Batches under 5 records are all noise.
//	Score:   severity*20 + confidence/100*10 + 30 for hotspots, then ×1.5 for
//	         every record sharing a cluster label that is also a hotspot among
//	         the reports of the last 6 hours.
//
// Cluster labels are recomputed on every call. The standardization depends on
// the whole batch, so the same physical point can receive different labels in
// different batches. Callers must not persist labels as identities.
//
// # ID Generation
//
// Reports without an ID get a deterministic SHA-256 hash of
// type|lat|lon|timestamp|reporter. Replaying the same report upserts the same
// row downstream. See [generateID].
package domain
