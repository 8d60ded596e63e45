// Package insight derives the scalar and categorical facts shown next to the
// hotspot map: dominant actors and regions, the busiest month, and the most
// significant density clusters.
package insight

import (
	"sort"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

// Display limits for the ranked lists in a summary.
const (
	TopGroupsLimit   = 6
	TopClustersLimit = 10
)

// Summarize computes the insight bundle for a filtered point set and the density
// clusters found in it. Frequencies are raw counts over points, never weighted
// by cluster. An empty point set yields the zero summary with Valid false.
func Summarize(points []domain.Event, clusters []domain.DensityCluster) domain.InsightSummary {
	if len(points) == 0 {
		return domain.InsightSummary{}
	}

	groups := make(map[string]int)
	regions := make(map[string]int)
	var months [13]int
	var sumLat, sumLon float64
	first, last := points[0].Timestamp, points[0].Timestamp

	for _, e := range points {
		groups[e.Group]++
		regions[e.Region]++
		months[e.Timestamp.Month()]++
		sumLat += e.Geo.Lat
		sumLon += e.Geo.Lon
		if e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}

	n := float64(len(points))
	s := domain.InsightSummary{
		Valid:          true,
		Total:          len(points),
		UniqueGroups:   len(groups),
		UniqueRegions:  len(regions),
		SpanDays:       int(last.Sub(first) / (24 * time.Hour)),
		DominantGroup:  domain.DominantLabel(groups),
		DominantRegion: domain.DominantLabel(regions),
		PeakMonth:      peakMonth(months),
		Center:         domain.Geo{Lat: sumLat / n, Lon: sumLon / n},
		TopGroups:      rank(groups, TopGroupsLimit),
		DailyCounts:    DailyCounts(points),
		TopClusters:    TopClusters(clusters, TopClustersLimit),
	}
	if len(s.TopClusters) > 0 {
		largest := s.TopClusters[0]
		s.LargestCluster = &largest
	}
	return s
}

// peakMonth returns the month with the most events; ties go to the lowest month.
func peakMonth(counts [13]int) time.Month {
	best := time.January
	for m := time.February; m <= time.December; m++ {
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best
}

// TopLabels ranks the labels selected by key by descending frequency, ties by
// label, keeping at most n entries (all when n <= 0).
func TopLabels(points []domain.Event, key func(domain.Event) string, n int) []domain.LabelCount {
	counts := make(map[string]int)
	for _, e := range points {
		counts[key(e)]++
	}
	return rank(counts, n)
}

func rank(counts map[string]int, n int) []domain.LabelCount {
	out := make([]domain.LabelCount, 0, len(counts))
	for label, c := range counts {
		out = append(out, domain.LabelCount{Label: label, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DailyCounts buckets events by UTC calendar day, oldest first. Days without
// events are omitted.
func DailyCounts(points []domain.Event) []domain.DayCount {
	counts := make(map[time.Time]int)
	for _, e := range points {
		t := e.Timestamp.UTC()
		counts[time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)]++
	}

	out := make([]domain.DayCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, domain.DayCount{Day: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// TopClusters returns up to n of the largest clusters (count descending, id
// ascending), each with its top group.
func TopClusters(clusters []domain.DensityCluster, n int) []domain.ClusterHighlight {
	sorted := append([]domain.DensityCluster(nil), clusters...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]domain.ClusterHighlight, 0, len(sorted))
	for _, c := range sorted {
		out = append(out, domain.ClusterHighlight{ID: c.ID, Count: c.Count, TopGroup: c.DominantGroup})
	}
	return out
}
