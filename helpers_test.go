package meshopt

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// positionBytes packs positions as a 12-byte stride vertex buffer.
func positionBytes(positions []mgl32.Vec3) []byte {
	vb := make([]byte, len(positions)*12)
	for i, p := range positions {
		for axis := range 3 {
			binary.LittleEndian.PutUint32(vb[i*12+axis*4:], math.Float32bits(p[axis]))
		}
	}
	return vb
}

func bytesPositions(vb []byte) []mgl32.Vec3 {
	positions := make([]mgl32.Vec3, len(vb)/12)
	for i := range positions {
		for axis := range 3 {
			positions[i][axis] = math.Float32frombits(binary.LittleEndian.Uint32(vb[i*12+axis*4:]))
		}
	}
	return positions
}

func toUint16(indices []uint32) []uint16 {
	out := make([]uint16, len(indices))
	for i, v := range indices {
		out[i] = uint16(v)
	}
	return out
}

// distinctIndices counts the distinct non-sentinel values of an index
// buffer.
func distinctIndices[T Index](indices []T) int {
	seen := make(map[T]struct{})
	for _, i := range indices {
		if i != Sentinel[T]() {
			seen[i] = struct{}{}
		}
	}
	return len(seen)
}

// requirePermutation fails unless remap is a permutation of [0, n).
func requirePermutation(t *testing.T, remap []uint32, n int) {
	t.Helper()
	if len(remap) < n {
		t.Fatalf("remap has %d entries, want %d", len(remap), n)
	}
	seen := make([]bool, n)
	for i, v := range remap[:n] {
		if int(v) >= n {
			t.Fatalf("remap[%d] = %d, out of range [0, %d)", i, v, n)
		}
		if seen[v] {
			t.Fatalf("remap[%d] = %d appears twice", i, v)
		}
		seen[v] = true
	}
}

func vec3ApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	return a.ApproxEqualThreshold(b, eps)
}
