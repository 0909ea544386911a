package world

import (
	"math"
	"sort"
)

type gridKey struct{ X, Y int }

// spatialGrid buckets AABBs into fixed-size cells so the collision
// pass only compares neighbors instead of all pairs. Rebuilt from
// scratch each tick; entries are entity IDs.
type spatialGrid struct {
	cell  float64
	cells map[gridKey][]string
}

func newSpatialGrid(cell float64) *spatialGrid {
	if cell <= 0 {
		cell = 120
	}
	return &spatialGrid{cell: cell, cells: map[gridKey][]string{}}
}

func (g *spatialGrid) keyRange(min, max Vec2) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(min[0] / g.cell))
	y0 = int(math.Floor(min[1] / g.cell))
	x1 = int(math.Floor(max[0] / g.cell))
	y1 = int(math.Floor(max[1] / g.cell))
	return
}

func (g *spatialGrid) insert(id string, min, max Vec2) {
	x0, y0, x1, y1 := g.keyRange(min, max)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			k := gridKey{x, y}
			g.cells[k] = append(g.cells[k], id)
		}
	}
}

// query returns the IDs whose cells intersect the box, deduplicated
// and sorted for deterministic pair ordering.
func (g *spatialGrid) query(min, max Vec2) []string {
	seen := map[string]struct{}{}
	x0, y0, x1, y1 := g.keyRange(min, max)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for _, id := range g.cells[gridKey{x, y}] {
				seen[id] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
