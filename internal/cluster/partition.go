package cluster

import (
	"math/rand/v2"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

// Partition defaults.
const (
	DefaultSeed          uint64 = 42
	DefaultMaxIterations        = 300
)

type partitionConfig struct {
	seed          uint64
	maxIterations int
}

// PartitionOption customises a Partition call.
type PartitionOption func(*partitionConfig)

// WithSeed sets the seed for centroid initialisation.
func WithSeed(seed uint64) PartitionOption {
	return func(c *partitionConfig) { c.seed = seed }
}

// WithMaxIterations caps the number of refinement iterations. Values below one are ignored.
func WithMaxIterations(n int) PartitionOption {
	return func(c *partitionConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// Partition splits points into k zones and returns the zone centers.
//
// Centers are seeded with k-means++ from a PCG generator keyed by the seed,
// then refined with Lloyd iterations until no assignment changes or the
// iteration cap is hit. It returns nil when k < 1 or there are fewer than k
// points. Only positions are returned, never membership.
func Partition(points []domain.Event, k int, opts ...PartitionOption) []domain.PartitionCenter {
	if k < 1 || len(points) < k {
		return nil
	}
	cfg := partitionConfig{seed: DefaultSeed, maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	pts := toPlanar(points)
	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed))
	centers := seedCenters(pts, k, rng)
	lloyd(pts, centers, cfg.maxIterations)

	out := make([]domain.PartitionCenter, k)
	for i, c := range centers {
		out[i] = domain.PartitionCenter{Index: i, Lat: c.Y(), Lon: c.X()}
	}
	return out
}

// seedCenters picks k initial centers with k-means++: the first uniformly,
// each following one with probability proportional to its squared distance
// from the nearest center chosen so far.
func seedCenters(pts []orb.Point, k int, rng *rand.Rand) []orb.Point {
	centers := make([]orb.Point, 0, k)
	centers = append(centers, pts[rng.IntN(len(pts))])

	d2 := make([]float64, len(pts))
	for i, p := range pts {
		d2[i] = planar.DistanceSquared(p, centers[0])
	}

	for len(centers) < k {
		var total float64
		for _, d := range d2 {
			total += d
		}

		next := rng.IntN(len(pts))
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range d2 {
				target -= d
				if target < 0 {
					next = i
					break
				}
			}
		}

		c := pts[next]
		centers = append(centers, c)
		for i, p := range pts {
			if d := planar.DistanceSquared(p, c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centers
}

// lloyd refines centers in place.
func lloyd(pts []orb.Point, centers []orb.Point, maxIterations int) {
	assign := make([]int, len(pts))
	for i := range assign {
		assign[i] = -1
	}
	sums := make([]orb.Point, len(centers))
	counts := make([]int, len(centers))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range pts {
			if c := nearest(p, centers); c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			return
		}

		for c := range centers {
			sums[c] = orb.Point{}
			counts[c] = 0
		}
		for i, p := range pts {
			c := assign[i]
			sums[c][0] += p[0]
			sums[c][1] += p[1]
			counts[c]++
		}
		for c := range centers {
			if counts[c] == 0 {
				continue // an empty zone keeps its previous center
			}
			n := float64(counts[c])
			centers[c] = orb.Point{sums[c][0] / n, sums[c][1] / n}
		}
	}
}

// nearest returns the index of the closest center; ties go to the lower index.
func nearest(p orb.Point, centers []orb.Point) int {
	best, bestD := 0, planar.DistanceSquared(p, centers[0])
	for i := 1; i < len(centers); i++ {
		if d := planar.DistanceSquared(p, centers[i]); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
