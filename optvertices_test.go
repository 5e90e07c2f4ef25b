package meshopt

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestOptimizeVertices(t *testing.T) {
	s := Unused32
	indices := []uint32{
		3, 1, 4,
		s, s, s,
		1, 5, 3,
	}
	remap := make([]uint32, 7)

	trailing, err := OptimizeVertices(indices, 3, 7, remap)
	if err != nil {
		t.Fatalf("OptimizeVertices() error = %v", err)
	}
	if trailing != 3 {
		t.Errorf("trailing unused = %d, want 3", trailing)
	}
	want := []uint32{s, 1, s, 0, 2, 3, s}
	if !slices.Equal(remap, want) {
		t.Errorf("vertex remap = %v, want %v", remap, want)
	}

	out := make([]uint32, len(indices))
	if err := FinalizeIB(indices, 3, remap, 7, out); err != nil {
		t.Fatalf("FinalizeIB() error = %v", err)
	}
	wantIB := []uint32{0, 1, 2, s, s, s, 1, 3, 0}
	if !slices.Equal(out, wantIB) {
		t.Errorf("FinalizeIB() = %v, want %v", out, wantIB)
	}
}

func TestOptimizeVertices_Errors(t *testing.T) {
	tests := []struct {
		name        string
		indices     []uint16
		vertexCount int
		remap       []uint32
		want        error
	}{
		{"nil remap", []uint16{0, 1, 2}, 3, nil, ErrInvalidArgument},
		{"short remap", []uint16{0, 1, 2}, 3, make([]uint32, 2), ErrInvalidArgument},
		{"no vertices", []uint16{0, 1, 2}, 0, make([]uint32, 3), ErrUnexpected},
		{"index beyond vertices", []uint16{0, 1, 3}, 3, make([]uint32, 3), ErrUnexpected},
		{"vertex count collides with sentinel", []uint16{0, 1, 2}, 1 << 16, make([]uint32, 3), ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OptimizeVertices(tt.indices, 1, tt.vertexCount, tt.remap)
			if !errors.Is(err, tt.want) {
				t.Errorf("OptimizeVertices() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompactVB(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	src := positionBytes(positions)
	dst := make([]byte, 3*12)

	if err := CompactVB(src, 12, 4, 1, []uint32{2, Unused32, 0, 1}, dst); err != nil {
		t.Fatalf("CompactVB() error = %v", err)
	}
	want := []mgl32.Vec3{{2, 0, 0}, {3, 0, 0}, {0, 0, 0}}
	if got := bytesPositions(dst); !slices.Equal(got, want) {
		t.Errorf("CompactVB() = %v, want %v", got, want)
	}
}

func TestCompactVB_Errors(t *testing.T) {
	src := make([]byte, 4*4)

	tests := []struct {
		name     string
		trailing int
		remap    []uint32
		dst      []byte
		want     error
	}{
		{"nil remap", 0, nil, make([]byte, 16), ErrInvalidArgument},
		{"negative trailing", -1, []uint32{0, 1, 2, 3}, make([]byte, 16), ErrInvalidArgument},
		{"trailing beyond vertices", 5, []uint32{0, 1, 2, 3}, make([]byte, 16), ErrInvalidArgument},
		{"short dst", 1, []uint32{0, 1, 2, Unused32}, make([]byte, 8), ErrInvalidArgument},
		{"target beyond compacted range", 1, []uint32{0, 1, 3, Unused32}, make([]byte, 12), ErrUnexpected},
		{"shared target", 1, []uint32{0, 1, 1, Unused32}, make([]byte, 12), ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompactVB(src, 4, 4, tt.trailing, tt.remap, tt.dst)
			if !errors.Is(err, tt.want) {
				t.Errorf("CompactVB() error = %v, want %v", err, tt.want)
			}
		})
	}
}
