package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Clustering parameters, expressed in standardized coordinate space.
const (
	MinClusterBatch = 5
	ClusterEps      = 0.02
	ClusterMinPts   = 3
)

// Cluster groups geographically close records into density-based clusters.
// Every returned record carries a cluster label (NoiseCluster when isolated)
// and IsHotspot set accordingly. Inputs are copied, never modified.
//
// Coordinates are standardized per call, so labels are only meaningful
// within a single invocation.
func Cluster(records []HazardRecord) []AnnotatedHazard {
	out := make([]AnnotatedHazard, len(records))
	for i := range records {
		out[i] = AnnotatedHazard{HazardRecord: records[i], ClusterID: NoiseCluster}
	}
	if len(records) < MinClusterBatch {
		return out
	}

	labels := dbscan(standardize(records), ClusterEps, ClusterMinPts)
	for i := range out {
		out[i].ClusterID = labels[i]
		out[i].IsHotspot = labels[i] != NoiseCluster
	}
	return out
}

// standardize maps each record's (lat, lon) to zero mean and unit population
// variance over the batch. An axis without variance is only centered.
func standardize(records []HazardRecord) [][]float64 {
	lats := make([]float64, len(records))
	lons := make([]float64, len(records))
	for i := range records {
		lats[i] = records[i].Lat
		lons[i] = records[i].Lon
	}

	latMean, latScale := axisScale(lats)
	lonMean, lonScale := axisScale(lons)

	points := make([][]float64, len(records))
	for i := range records {
		points[i] = []float64{
			(lats[i] - latMean) / latScale,
			(lons[i] - lonMean) / lonScale,
		}
	}
	return points
}

func axisScale(xs []float64) (mean, scale float64) {
	mean, variance := stat.PopMeanVariance(xs, nil)
	scale = math.Sqrt(variance)
	if scale == 0 {
		scale = 1
	}
	return mean, scale
}

// dbscan labels points in input order. A point is core when at least minPts
// points (itself included) lie within eps. Border points take the label of
// the first cluster that reaches them.
func dbscan(points [][]float64, eps float64, minPts int) []int {
	neighbors := make([][]int, len(points))
	for i := range points {
		for j := range points {
			if floats.Distance(points[i], points[j], 2) <= eps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = NoiseCluster
	}

	next := 0
	for i := range points {
		if labels[i] != NoiseCluster || len(neighbors[i]) < minPts {
			continue
		}

		stack := []int{i}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if labels[p] != NoiseCluster {
				continue
			}
			labels[p] = next
			if len(neighbors[p]) < minPts {
				continue
			}
			for _, q := range neighbors[p] {
				if labels[q] == NoiseCluster {
					stack = append(stack, q)
				}
			}
		}
		next++
	}
	return labels
}
