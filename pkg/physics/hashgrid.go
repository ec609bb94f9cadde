// pkg/physics/hashgrid.go
package physics

import (
	"sort"

	"github.com/EngoEngine/math"
)

// emptyCell marks a bucket key with no points
const emptyCell = -1

// Large primes used to spread cell coordinates over the bucket range
const (
	hashPrimeX int32 = 15823
	hashPrimeY int32 = 9737333
)

// HashGrid is a uniform spatial hash over a fixed set of points.
//
// The bucket count equals the point count, so cell collisions grow when
// points cluster; lookups stay correct and only return more candidates.
// It is rebuilt from scratch every physics step.
type HashGrid struct {
	cellSize float32
	// point index and bucket key, sorted by key
	entries []gridEntry
	// per bucket key, offset of its first entry or emptyCell
	starts []int
}

type gridEntry struct {
	point int
	key   int
}

// NewHashGrid builds a grid over points with the given cell size.
// A zero-length point set produces an empty grid. Non-positive cell sizes
// fall back to 1.
func NewHashGrid(points []Vector2D, cellSize float32) *HashGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &HashGrid{cellSize: cellSize}
	if len(points) == 0 {
		return g
	}

	n := int32(len(points))
	g.entries = make([]gridEntry, len(points))
	g.starts = make([]int, len(points))
	for i := range g.starts {
		g.starts[i] = emptyCell
	}

	for i, p := range points {
		cx, cy := g.cellCoord(p.X, p.Y)
		g.entries[i] = gridEntry{point: i, key: cellKey(cx, cy, n)}
	}

	sort.Slice(g.entries, func(a, b int) bool {
		return g.entries[a].key < g.entries[b].key
	})

	last := -1
	for i, e := range g.entries {
		if e.key != last {
			g.starts[e.key] = i
			last = e.key
		}
	}

	return g
}

// CellSize returns the grid cell edge length
func (g *HashGrid) CellSize() float32 {
	return g.cellSize
}

// Len returns the number of indexed points
func (g *HashGrid) Len() int {
	return len(g.entries)
}

// Find returns every point index in the 3x3 block of cells around (x, y).
// Indices may repeat when neighboring cells share a bucket.
func (g *HashGrid) Find(x, y float32) []int {
	return g.FindInto(nil, x, y)
}

// FindInto appends the candidates around (x, y) to dst and returns it
func (g *HashGrid) FindInto(dst []int, x, y float32) []int {
	if len(g.entries) == 0 {
		return dst
	}

	n := int32(len(g.entries))
	cx, cy := g.cellCoord(x, y)
	for i := int32(-1); i <= 1; i++ {
		for j := int32(-1); j <= 1; j++ {
			key := cellKey(cx+i, cy+j, n)
			start := g.starts[key]
			if start == emptyCell {
				continue
			}
			for k := start; k < len(g.entries) && g.entries[k].key == key; k++ {
				dst = append(dst, g.entries[k].point)
			}
		}
	}
	return dst
}

func (g *HashGrid) cellCoord(x, y float32) (int32, int32) {
	return int32(math.Floor(x / g.cellSize)), int32(math.Floor(y / g.cellSize))
}

// cellKey hashes cell coordinates into [0, n). Overflow wraps.
func cellKey(cx, cy, n int32) int {
	h := (cx*hashPrimeX + cy*hashPrimeY) % n
	if h < 0 {
		h = -h
	}
	return int(h)
}
