package meshopt

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// cellKey is the integer coordinate of a grid cell.
type cellKey struct {
	X, Y, Z int
}

// maxCellCoord bounds cell coordinates so that positions far larger
// than the cell size still hash deterministically. It must fit a 32-bit
// int.
const maxCellCoord = 1 << 30

// vertexGrid is a uniform grid hashed into a power-of-two cell array.
// Distinct cells may share a slot, so candidates returned by a query
// must still be distance-tested.
type vertexGrid struct {
	cellSize float32
	cells    [][]uint32
	cellMask int
}

// newVertexGrid creates a grid of at least numCells slots.
func newVertexGrid(cellSize float32, numCells int) *vertexGrid {
	numCells = nextPowerOfTwo(numCells)
	return &vertexGrid{
		cellSize: cellSize,
		cells:    make([][]uint32, numCells),
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo rounds n up to a power of two.
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

// insert adds vertex to the cell containing pos.
func (g *vertexGrid) insert(vertex uint32, pos mgl32.Vec3) {
	idx := g.hashCell(g.worldToCell(pos))
	g.cells[idx] = append(g.cells[idx], vertex)
}

// query calls fn for every vertex stored in the cell containing pos and
// its 26 neighbours, stopping early if fn returns false. A vertex may
// be visited more than once when neighbouring cells share a slot.
func (g *vertexGrid) query(pos mgl32.Vec3, fn func(vertex uint32) bool) {
	c := g.worldToCell(pos)
	for x := c.X - 1; x <= c.X+1; x++ {
		for y := c.Y - 1; y <= c.Y+1; y++ {
			for z := c.Z - 1; z <= c.Z+1; z++ {
				for _, v := range g.cells[g.hashCell(cellKey{x, y, z})] {
					if !fn(v) {
						return
					}
				}
			}
		}
	}
}

// worldToCell converts a position to cell coordinates.
func (g *vertexGrid) worldToCell(pos mgl32.Vec3) cellKey {
	return cellKey{
		X: g.axisToCell(pos.X()),
		Y: g.axisToCell(pos.Y()),
		Z: g.axisToCell(pos.Z()),
	}
}

func (g *vertexGrid) axisToCell(v float32) int {
	c := math.Floor(float64(v) / float64(g.cellSize))
	switch {
	case math.IsNaN(c):
		return 0
	case c > maxCellCoord:
		return maxCellCoord
	case c < -maxCellCoord:
		return -maxCellCoord
	}
	return int(c)
}

// hashCell maps a cell to an index in the slot array.
func (g *vertexGrid) hashCell(key cellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & g.cellMask
}
