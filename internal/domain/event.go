package domain

import "time"

// RawRow is one untyped record as read from a tabular source.
// All fields are kept as text until ParseRow validates them.
type RawRow struct {
	Date      string `json:"date"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Group     string `json:"group"`
	Region    string `json:"region"`
	Note      string `json:"note,omitempty"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is one validated, geotagged occurrence.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Geo       Geo       `json:"geo"`
	Group     string    `json:"group"`
	Region    string    `json:"region"`
	Note      string    `json:"note,omitempty"`
}

// LabeledEvent pairs an event with the density cluster it was assigned to.
// Cluster is -1 for noise.
type LabeledEvent struct {
	Event
	Cluster int `json:"cluster"`
}

// DensityCluster summarizes one dense region found by the density engine.
type DensityCluster struct {
	ID            int     `json:"cluster"`
	Count         int     `json:"count"`
	Centroid      Geo     `json:"centroid"`
	DominantGroup string  `json:"top_group"`
	RadiusKm      float64 `json:"radius_km"` // great-circle distance from centroid to the farthest member
}

// PartitionCenter is one centroid produced by the partition engine.
type PartitionCenter struct {
	Index int     `json:"cluster"`
	Lat   float64 `json:"latitude"`
	Lon   float64 `json:"longitude"`
}

// LabelCount is a category label with its frequency.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DayCount is the number of events on one UTC calendar day.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// ClusterHighlight is the compact view of a density cluster used in insights.
type ClusterHighlight struct {
	ID       int    `json:"cluster"`
	Count    int    `json:"count"`
	TopGroup string `json:"top_group"`
}

// InsightSummary holds the scalar and categorical facts derived from one filtered set.
// Valid is false, and every other field is its zero value, when the set was empty.
type InsightSummary struct {
	Valid          bool               `json:"valid"`
	Total          int                `json:"total"`
	UniqueGroups   int                `json:"unique_groups"`
	UniqueRegions  int                `json:"unique_regions"`
	SpanDays       int                `json:"span_days"`
	DominantGroup  string             `json:"dominant_group,omitempty"`
	DominantRegion string             `json:"dominant_region,omitempty"`
	PeakMonth      time.Month         `json:"peak_month,omitempty"`
	Center         Geo                `json:"center"`
	TopGroups      []LabelCount       `json:"top_groups,omitempty"`
	DailyCounts    []DayCount         `json:"daily_counts,omitempty"`
	LargestCluster *ClusterHighlight  `json:"largest_cluster,omitempty"`
	TopClusters    []ClusterHighlight `json:"top_clusters,omitempty"`
}
