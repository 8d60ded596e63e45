package export

import (
	"io"
	"strconv"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

// Table names, also used as download names by the HTTP adapter.
const (
	TableEvents   = "events"
	TableClusters = "clusters"
	TableCenters  = "centers"
)

var (
	eventsHeader   = []string{"date", "latitude", "longitude", "group", "region", "note", "cluster"}
	clustersHeader = []string{"cluster", "count", "latitude", "longitude", "top_group", "radius_km"}
	centersHeader  = []string{"cluster", "latitude", "longitude"}
)

// EventsTable is the filtered point set with each point's density cluster label.
type EventsTable []domain.LabeledEvent

// Events wraps labeled events for export.
func Events(events []domain.LabeledEvent) EventsTable { return EventsTable(events) }

func (EventsTable) Name() string     { return TableEvents }
func (EventsTable) Header() []string { return eventsHeader }

func (t EventsTable) Records() [][]string {
	out := make([][]string, len(t))
	for i, e := range t {
		out[i] = []string{
			formatTime(e.Timestamp),
			formatFloat(e.Geo.Lat),
			formatFloat(e.Geo.Lon),
			e.Group,
			e.Region,
			e.Note,
			strconv.Itoa(e.Cluster),
		}
	}
	return out
}

// ClustersTable is the density cluster summary table.
type ClustersTable []domain.DensityCluster

// Clusters wraps density cluster summaries for export.
func Clusters(clusters []domain.DensityCluster) ClustersTable { return ClustersTable(clusters) }

func (ClustersTable) Name() string     { return TableClusters }
func (ClustersTable) Header() []string { return clustersHeader }

func (t ClustersTable) Records() [][]string {
	out := make([][]string, len(t))
	for i, c := range t {
		out[i] = []string{
			strconv.Itoa(c.ID),
			strconv.Itoa(c.Count),
			formatFloat(c.Centroid.Lat),
			formatFloat(c.Centroid.Lon),
			c.DominantGroup,
			formatFloat(c.RadiusKm),
		}
	}
	return out
}

// CentersTable is the partition center table.
type CentersTable []domain.PartitionCenter

// Centers wraps partition centers for export.
func Centers(centers []domain.PartitionCenter) CentersTable { return CentersTable(centers) }

func (CentersTable) Name() string     { return TableCenters }
func (CentersTable) Header() []string { return centersHeader }

func (t CentersTable) Records() [][]string {
	out := make([][]string, len(t))
	for i, c := range t {
		out[i] = []string{strconv.Itoa(c.Index), formatFloat(c.Lat), formatFloat(c.Lon)}
	}
	return out
}

// ParseEvents reads text produced by writing an EventsTable.
func ParseEvents(r io.Reader, opts ...Option) ([]domain.LabeledEvent, error) {
	rows, err := readAll(r, eventsHeader, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	out := make([]domain.LabeledEvent, 0, len(rows))
	for i, row := range rows {
		p := fieldParser{line: i + 2}
		e := domain.LabeledEvent{
			Event: domain.Event{
				Timestamp: p.time("date", row[0]),
				Geo:       domain.Geo{Lat: p.float("latitude", row[1]), Lon: p.float("longitude", row[2])},
				Group:     row[3],
				Region:    row[4],
				Note:      row[5],
			},
			Cluster: p.int("cluster", row[6]),
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseClusters reads text produced by writing a ClustersTable.
func ParseClusters(r io.Reader, opts ...Option) ([]domain.DensityCluster, error) {
	rows, err := readAll(r, clustersHeader, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	out := make([]domain.DensityCluster, 0, len(rows))
	for i, row := range rows {
		p := fieldParser{line: i + 2}
		c := domain.DensityCluster{
			ID:            p.int("cluster", row[0]),
			Count:         p.int("count", row[1]),
			Centroid:      domain.Geo{Lat: p.float("latitude", row[2]), Lon: p.float("longitude", row[3])},
			DominantGroup: row[4],
			RadiusKm:      p.float("radius_km", row[5]),
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseCenters reads text produced by writing a CentersTable.
func ParseCenters(r io.Reader, opts ...Option) ([]domain.PartitionCenter, error) {
	rows, err := readAll(r, centersHeader, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	out := make([]domain.PartitionCenter, 0, len(rows))
	for i, row := range rows {
		p := fieldParser{line: i + 2}
		c := domain.PartitionCenter{
			Index: p.int("cluster", row[0]),
			Lat:   p.float("latitude", row[1]),
			Lon:   p.float("longitude", row[2]),
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, c)
	}
	return out, nil
}
