package meshopt

import (
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestWorldToCell(t *testing.T) {
	grid := newVertexGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl32.Vec3
		expected cellKey
	}{
		{"origin", mgl32.Vec3{0, 0, 0}, cellKey{0, 0, 0}},
		{"positive", mgl32.Vec3{1.5, 2.3, 3.7}, cellKey{1, 2, 3}},
		{"negative", mgl32.Vec3{-1.5, -2.3, -3.7}, cellKey{-2, -3, -4}},
		{"fractional", mgl32.Vec3{0.5, 0.5, 0.5}, cellKey{0, 0, 0}},
		{"large", mgl32.Vec3{100.7, -200.3, 50.1}, cellKey{100, -201, 50}},
		{"clamped", mgl32.Vec3{math.MaxFloat32, -math.MaxFloat32, 0}, cellKey{maxCellCoord, -maxCellCoord, 0}},
		{"not a number", mgl32.Vec3{float32(math.NaN()), 1, 1}, cellKey{0, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}
}

func TestWorldToCell_ClampFitsInt32(t *testing.T) {
	var limit int64 = maxCellCoord
	if limit > math.MaxInt32 || -limit < math.MinInt32 {
		t.Fatalf("maxCellCoord = %d overflows a 32-bit int", limit)
	}

	grid := newVertexGrid(1e-6, 16)
	got := grid.worldToCell(mgl32.Vec3{1e30, -1e30, 1e-6})
	want := cellKey{maxCellCoord, -maxCellCoord, 1}
	if got != want {
		t.Errorf("worldToCell() = %v, want %v", got, want)
	}
}

func TestWorldToCell_CellSize(t *testing.T) {
	grid := newVertexGrid(0.25, 16)
	got := grid.worldToCell(mgl32.Vec3{0.3, -0.3, 1})
	want := cellKey{1, -2, 4}
	if got != want {
		t.Errorf("worldToCell() = %v, want %v", got, want)
	}
}

func TestHashCell(t *testing.T) {
	grid := newVertexGrid(1.0, 16) // 16 cells, mask 15

	tests := []struct {
		name     string
		key      cellKey
		expected int
	}{
		{"origin", cellKey{0, 0, 0}, 0},
		{"simple", cellKey{1, 2, 3}, 6},
		{"negative", cellKey{-1, -2, -3}, 10},
		{"large", cellKey{100, 200, 300}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.hashCell(tt.key)
			if result < 0 || result >= len(grid.cells) {
				t.Errorf("hashCell(%v) = %d, out of range [0, %d)", tt.key, result, len(grid.cells))
			}
			if result != tt.expected {
				t.Errorf("hashCell(%v) = %d, want %d", tt.key, result, tt.expected)
			}
		})
	}
}

func TestHashCellDistribution(t *testing.T) {
	grid := newVertexGrid(1.0, 1024)

	cellCounts := make(map[int]int)
	for x := -50; x <= 50; x++ {
		for y := -50; y <= 50; y++ {
			for z := -50; z <= 50; z++ {
				cellCounts[grid.hashCell(cellKey{x, y, z})]++
			}
		}
	}

	minCount, maxCount := math.MaxInt, 0
	for _, count := range cellCounts {
		minCount = min(minCount, count)
		maxCount = max(maxCount, count)
	}
	t.Logf("Hash distribution: min=%d, max=%d, slots=%d", minCount, maxCount, len(cellCounts))

	if len(cellCounts) != 1024 {
		t.Errorf("keys reached %d slots, want all 1024", len(cellCounts))
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-4, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{1000, 1024},
		{1024, 1024},
		{1 << 33, 1 << 33},
		{1<<33 + 1, 1 << 34},
	}

	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestQuery(t *testing.T) {
	grid := newVertexGrid(1.0, 64)
	grid.insert(0, mgl32.Vec3{0.5, 0.5, 0.5})
	grid.insert(1, mgl32.Vec3{1.5, 0.5, 0.5})    // neighbouring cell
	grid.insert(2, mgl32.Vec3{-0.5, -0.5, -0.5}) // diagonal neighbour
	grid.insert(3, mgl32.Vec3{5.5, 5.5, 5.5})    // far away

	seen := make(map[uint32]bool)
	grid.query(mgl32.Vec3{0.5, 0.5, 0.5}, func(v uint32) bool {
		seen[v] = true
		return true
	})
	for _, v := range []uint32{0, 1, 2} {
		if !seen[v] {
			t.Errorf("query missed vertex %d", v)
		}
	}

	// Stopping early visits a single vertex.
	var visited []uint32
	grid.query(mgl32.Vec3{0.5, 0.5, 0.5}, func(v uint32) bool {
		visited = append(visited, v)
		return false
	})
	if len(visited) != 1 || !slices.Contains([]uint32{0, 1, 2, 3}, visited[0]) {
		t.Errorf("early stop visited %v, want one vertex", visited)
	}
}
