package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// =============================================================================
// AABB Utility Function Tests
// =============================================================================

func TestAABBOverlaps(t *testing.T) {
	unit := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}

	tests := []struct {
		name  string
		other AABB
		want  bool
	}{
		{"separated on X", AABB{Min: mgl32.Vec3{2, 0, 0}, Max: mgl32.Vec3{3, 1, 1}}, false},
		{"separated on Y", AABB{Min: mgl32.Vec3{0, -2, 0}, Max: mgl32.Vec3{1, -1, 1}}, false},
		{"separated on Z", AABB{Min: mgl32.Vec3{0, 0, 2}, Max: mgl32.Vec3{1, 1, 3}}, false},
		{"overlapping", AABB{Min: mgl32.Vec3{0.5, 0.5, 0.5}, Max: mgl32.Vec3{1.5, 1.5, 1.5}}, true},
		{"contained", AABB{Min: mgl32.Vec3{0.25, 0.25, 0.25}, Max: mgl32.Vec3{0.75, 0.75, 0.75}}, true},
		{"face touching", AABB{Min: mgl32.Vec3{1, 0, 0}, Max: mgl32.Vec3{2, 1, 1}}, true},
		{"corner touching", AABB{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{2, 2, 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unit.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			// Test symmetry
			if got := tt.other.Overlaps(unit); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v (symmetry test)", got, tt.want)
			}
		})
	}
}

func TestAABBContainsPoint(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

	tests := []struct {
		name  string
		point mgl32.Vec3
		want  bool
	}{
		{"center", mgl32.Vec3{0, 0, 0}, true},
		{"corner", mgl32.Vec3{1, 1, 1}, true},
		{"face center", mgl32.Vec3{0, -1, 0}, true},
		{"outside on X", mgl32.Vec3{1.01, 0, 0}, false},
		{"outside on Z", mgl32.Vec3{0, 0, -2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.ContainsPoint(tt.point); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestBoundsOf(t *testing.T) {
	if !EmptyAABB().IsEmpty() {
		t.Errorf("EmptyAABB() is not empty")
	}
	if !BoundsOf(nil).IsEmpty() {
		t.Errorf("BoundsOf(nil) is not empty")
	}

	points := []mgl32.Vec3{{1, -2, 3}, {-4, 5, 0}, {2, 2, -6}}
	box := BoundsOf(points)
	want := AABB{Min: mgl32.Vec3{-4, -2, -6}, Max: mgl32.Vec3{2, 5, 3}}
	if box != want {
		t.Errorf("BoundsOf() = %+v, want %+v", box, want)
	}
	if box.IsEmpty() {
		t.Errorf("BoundsOf() is empty")
	}
	for _, p := range points {
		if !box.ContainsPoint(p) {
			t.Errorf("BoundsOf() misses %v", p)
		}
	}
	if c := box.Center(); c != (mgl32.Vec3{-1, 1.5, -1.5}) {
		t.Errorf("Center() = %v", c)
	}
	if s := box.Size(); s != (mgl32.Vec3{6, 7, 9}) {
		t.Errorf("Size() = %v", s)
	}

	// A single point gives a zero-volume box that is not empty.
	single := BoundsOf(points[:1])
	if single.IsEmpty() || single.Size() != (mgl32.Vec3{}) {
		t.Errorf("BoundsOf(single point) = %+v", single)
	}
}
