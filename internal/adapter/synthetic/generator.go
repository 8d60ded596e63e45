// Package synthetic produces reproducible demonstration datasets.
package synthetic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/couchcryptid/geo-hotspot/internal/store"
)

// Defaults used when the generator is built from zero values.
const (
	DefaultRows        = 15000
	DefaultSeed uint64 = 42
	DaysBack           = 730
)

var (
	Groups  = []string{"Group A", "Group B", "Group C", "Group D", "Group E"}
	Regions = []string{"North", "South", "East", "West", "Central"}
	Notes   = []string{"checkpoint", "movement", "meeting", "incident", "unknown"}
)

// Bounding box of generated coordinates.
const (
	minLat, maxLat = 23.0, 37.0
	minLon, maxLon = 68.0, 89.0
)

// Generator emits rows uniformly spread over the bounding box and the
// DaysBack days ending at the domain clock's now. Equal rows and seed give
// equal coordinates and labels.
type Generator struct {
	rows int
	seed uint64
}

// NewGenerator creates a Generator. Non-positive rows fall back to DefaultRows.
func NewGenerator(rows int, seed uint64) *Generator {
	if rows <= 0 {
		rows = DefaultRows
	}
	return &Generator{rows: rows, seed: seed}
}

// Key identifies the generated dataset by its size and seed.
func (g *Generator) Key() store.LoadKey {
	return store.LoadKey{Source: "synthetic", Params: fmt.Sprintf("rows=%d seed=%d", g.rows, g.seed)}
}

// Rows generates the dataset.
func (g *Generator) Rows(ctx context.Context) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Generate(domain.Now()), nil
}

// Generate builds the dataset relative to now.
func (g *Generator) Generate(now time.Time) []domain.RawRow {
	rng := rand.New(rand.NewPCG(g.seed, g.seed))
	out := make([]domain.RawRow, g.rows)
	for i := range out {
		ts := now.AddDate(0, 0, -rng.IntN(DaysBack))
		out[i] = domain.RawRow{
			Date:      ts.UTC().Format(time.RFC3339),
			Latitude:  formatFloat(minLat + rng.Float64()*(maxLat-minLat)),
			Longitude: formatFloat(minLon + rng.Float64()*(maxLon-minLon)),
			Group:     Groups[rng.IntN(len(Groups))],
			Region:    Regions[rng.IntN(len(Regions))],
			Note:      Notes[rng.IntN(len(Notes))],
		}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
