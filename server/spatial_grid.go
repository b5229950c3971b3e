package main

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// cellKey uniquely identifies a grid cell
type cellKey struct {
	cx, cy int
}

// SpatialGrid is a hash grid over pellet indices for fast proximity
// queries. It is rebuilt before each eating pass.
type SpatialGrid struct {
	cells    map[cellKey][]int
	cellSize float64
	pellets  []*Pellet
}

// NewSpatialGrid creates an empty spatial grid
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cells:    make(map[cellKey][]int),
		cellSize: cellSize,
	}
}

func (g *SpatialGrid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cellSize)),
		cy: int(math.Floor(y / g.cellSize)),
	}
}

// Rebuild indexes the given pellets by their slice position.
func (g *SpatialGrid) Rebuild(pellets []*Pellet) {
	clear(g.cells)
	g.pellets = pellets
	for i, p := range pellets {
		k := g.keyFor(p.Pos.X, p.Pos.Y)
		g.cells[k] = append(g.cells[k], i)
	}
}

// Near returns, in ascending order, the indices of pellets whose centers
// lie within radius of p. Ascending order keeps results identical to a
// linear scan over the pellet slice.
func (g *SpatialGrid) Near(p r2.Vec, radius float64) []int {
	results := []int{}
	minCX := int(math.Floor((p.X - radius) / g.cellSize))
	maxCX := int(math.Floor((p.X + radius) / g.cellSize))
	minCY := int(math.Floor((p.Y - radius) / g.cellSize))
	maxCY := int(math.Floor((p.Y + radius) / g.cellSize))

	r2sq := radius * radius
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for _, idx := range g.cells[cellKey{cx, cy}] {
				d := r2.Sub(g.pellets[idx].Pos, p)
				if d.X*d.X+d.Y*d.Y <= r2sq {
					results = append(results, idx)
				}
			}
		}
	}
	sort.Ints(results)
	return results
}
