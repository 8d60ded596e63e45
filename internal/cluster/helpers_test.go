package cluster

import (
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

var testTime = time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)

func pt(lat, lon float64, group string) domain.Event {
	return domain.Event{
		Timestamp: testTime,
		Geo:       domain.Geo{Lat: lat, Lon: lon},
		Group:     group,
		Region:    "North",
	}
}

// blob lays out n points on a regular grid centred on (lat, lon) with the
// given spacing in degrees, five points per row.
func blob(lat, lon float64, n int, spacing float64, group string) []domain.Event {
	rows := (n + 4) / 5
	out := make([]domain.Event, 0, n)
	for i := 0; i < n; i++ {
		r, c := i/5, i%5
		dLat := (float64(r) - float64(rows-1)/2) * spacing
		dLon := (float64(c) - 2) * spacing
		out = append(out, pt(lat+dLat, lon+dLon, group))
	}
	return out
}

// uniform draws n points uniformly from the given box with a fixed seed.
func uniform(n int, seed uint64, minLat, maxLat, minLon, maxLon float64) []domain.Event {
	rng := rand.New(rand.NewPCG(seed, seed))
	groups := []string{"Group A", "Group B", "Group C"}
	out := make([]domain.Event, n)
	for i := range out {
		out[i] = pt(
			minLat+rng.Float64()*(maxLat-minLat),
			minLon+rng.Float64()*(maxLon-minLon),
			groups[rng.IntN(len(groups))],
		)
	}
	return out
}
