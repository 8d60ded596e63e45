package cluster

import (
	"errors"
	"fmt"
	"sort"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

// Noise is the cluster label of points that belong to no dense region.
const Noise = -1

// unclassified marks points not yet visited during a Detect pass.
const unclassified = -2

// earthRadiusKm is the IUGG mean Earth radius.
const earthRadiusKm = 6371.0088

// ErrInvalidParams is returned for eps <= 0 or minSamples < 1.
var ErrInvalidParams = errors.New("invalid clustering parameters")

// Detect runs density-based clustering over points.
//
// A point is a core point when at least minSamples points, itself included,
// lie within Euclidean distance eps in (latitude, longitude) space. Clusters
// grow from core points in input order and receive ids 0, 1, 2, ... in the
// order they are discovered; a border point joins the first cluster that
// reaches it. Every other point is labeled Noise.
//
// Labeled points come back in input order. Summaries exclude noise and are
// sorted by count descending, then id ascending.
func Detect(points []domain.Event, eps float64, minSamples int) ([]domain.LabeledEvent, []domain.DensityCluster, error) {
	if eps <= 0 || minSamples < 1 {
		return nil, nil, fmt.Errorf("eps=%g min_samples=%d: %w", eps, minSamples, ErrInvalidParams)
	}
	if len(points) == 0 {
		return nil, nil, nil
	}

	labels, n := dbscan(toPlanar(points), eps, minSamples)

	labeled := make([]domain.LabeledEvent, len(points))
	for i, e := range points {
		labeled[i] = domain.LabeledEvent{Event: e, Cluster: labels[i]}
	}
	return labeled, summarize(points, labels, n), nil
}

// toPlanar maps events onto orb points with X = longitude and Y = latitude.
func toPlanar(points []domain.Event) []orb.Point {
	out := make([]orb.Point, len(points))
	for i, e := range points {
		out[i] = orb.Point{e.Geo.Lon, e.Geo.Lat}
	}
	return out
}

// dbscan returns one label per point and the number of clusters found.
func dbscan(points []orb.Point, eps float64, minSamples int) ([]int, int) {
	s := newScan(points, eps, minSamples)
	for i := range points {
		if s.labels[i] != unclassified {
			continue
		}
		seeds := s.index.neighbors(i, eps)
		if len(seeds) < minSamples {
			s.labels[i] = Noise
			continue
		}
		s.expand(i, seeds)
	}
	return s.labels, s.next
}

type scan struct {
	index      *gridIndex
	eps        float64
	minSamples int
	labels     []int
	// queued keeps each point in at most one seed list, so expansion work is
	// bounded by the number of neighbour pairs.
	queued []bool
	next   int
}

func newScan(points []orb.Point, eps float64, minSamples int) *scan {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unclassified
	}
	return &scan{
		index:      newGridIndex(points, eps),
		eps:        eps,
		minSamples: minSamples,
		labels:     labels,
		queued:     make([]bool, len(points)),
	}
}

// expand grows a new cluster from core point i and returns the number of
// seed entries it visited.
func (s *scan) expand(i int, seeds []int) int {
	id := s.next
	s.next++
	s.labels[i] = id
	for _, q := range seeds {
		s.queued[q] = true
	}

	for j := 0; j < len(seeds); j++ {
		q := seeds[j]
		if s.labels[q] == Noise {
			s.labels[q] = id // previously rejected, reachable as a border point
			continue
		}
		if s.labels[q] != unclassified {
			continue
		}
		s.labels[q] = id
		if more := s.index.neighbors(q, s.eps); len(more) >= s.minSamples {
			for _, m := range more {
				if !s.queued[m] {
					s.queued[m] = true
					seeds = append(seeds, m)
				}
			}
		}
	}
	return len(seeds)
}

type clusterAccumulator struct {
	count   int
	sumLat  float64
	sumLon  float64
	groups  map[string]int
	members []domain.Geo
}

func summarize(points []domain.Event, labels []int, n int) []domain.DensityCluster {
	if n == 0 {
		return nil
	}
	acc := make([]clusterAccumulator, n)
	for i, label := range labels {
		if label == Noise {
			continue
		}
		a := &acc[label]
		if a.groups == nil {
			a.groups = make(map[string]int)
		}
		e := points[i]
		a.count++
		a.sumLat += e.Geo.Lat
		a.sumLon += e.Geo.Lon
		a.groups[e.Group]++
		a.members = append(a.members, e.Geo)
	}

	out := make([]domain.DensityCluster, 0, n)
	for id, a := range acc {
		if a.count == 0 {
			continue
		}
		centroid := domain.Geo{Lat: a.sumLat / float64(a.count), Lon: a.sumLon / float64(a.count)}
		out = append(out, domain.DensityCluster{
			ID:            id,
			Count:         a.count,
			Centroid:      centroid,
			DominantGroup: domain.DominantLabel(a.groups),
			RadiusKm:      radiusKm(centroid, a.members),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// radiusKm is the great-circle distance from the centroid to the farthest member.
func radiusKm(centroid domain.Geo, members []domain.Geo) float64 {
	c := s2.LatLngFromDegrees(centroid.Lat, centroid.Lon)
	var maxRad float64
	for _, m := range members {
		if d := c.Distance(s2.LatLngFromDegrees(m.Lat, m.Lon)).Radians(); d > maxRad {
			maxRad = d
		}
	}
	return maxRad * earthRadiusKm
}
