package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that any Extend call replaces.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// BoundsOf returns the box enclosing all points.
func BoundsOf(points []mgl32.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}

// IsEmpty reports whether the box contains no point.
func (a AABB) IsEmpty() bool {
	return a.Min.X() > a.Max.X() || a.Min.Y() > a.Max.Y() || a.Min.Z() > a.Max.Z()
}

// Extend returns the box grown to contain point.
func (a AABB) Extend(point mgl32.Vec3) AABB {
	for i := range 3 {
		a.Min[i] = min(a.Min[i], point[i])
		a.Max[i] = max(a.Max[i], point[i])
	}
	return a
}

// Center returns the middle of the box.
func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Size returns the box extent along each axis.
func (a AABB) Size() mgl32.Vec3 {
	return a.Max.Sub(a.Min)
}

// ContainsPoint reports whether point lies inside the box or on its
// boundary.
func (a AABB) ContainsPoint(point mgl32.Vec3) bool {
	for i := range 3 {
		if point[i] < a.Min[i] || point[i] > a.Max[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether the two boxes share at least one point.
// Boxes that only touch overlap.
func (a AABB) Overlaps(other AABB) bool {
	for i := range 3 {
		if a.Max[i] < other.Min[i] || a.Min[i] > other.Max[i] {
			return false
		}
	}
	return true
}
