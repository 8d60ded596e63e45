package cluster

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type cellKey struct {
	x, y int64
}

// gridIndex buckets points into square cells of side eps so that a radius-eps
// query only has to inspect the 3x3 block of cells around the query point.
type gridIndex struct {
	points []orb.Point
	cell   float64
	cells  map[cellKey][]int
}

func newGridIndex(points []orb.Point, eps float64) *gridIndex {
	g := &gridIndex{
		points: points,
		cell:   eps,
		cells:  make(map[cellKey][]int, len(points)/4+1),
	}
	for i, p := range points {
		k := g.keyOf(p)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *gridIndex) keyOf(p orb.Point) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X() / g.cell)),
		y: int64(math.Floor(p.Y() / g.cell)),
	}
}

// neighbors returns the indices of all points within eps of points[idx],
// idx itself included. Order is fixed for a given input, which keeps cluster
// expansion reproducible.
func (g *gridIndex) neighbors(idx int, eps float64) []int {
	p := g.points[idx]
	k := g.keyOf(p)
	eps2 := eps * eps

	var out []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, j := range g.cells[cellKey{x: k.x + dx, y: k.y + dy}] {
				if planar.DistanceSquared(p, g.points[j]) <= eps2 {
					out = append(out, j)
				}
			}
		}
	}
	return out
}
