// Package geom holds the small amount of float32 geometry shared by the
// mesh algorithms: safe normalization, triangle normals, axis-aligned
// boxes and bounding spheres.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DegenerateEpsilon is the squared length under which a vector is
// treated as zero.
const DegenerateEpsilon = 1e-20

// Normalize returns v scaled to unit length, or the zero vector if v
// is too short to normalize.
func Normalize(v mgl32.Vec3) mgl32.Vec3 {
	lenSq := v.Dot(v)
	if lenSq <= DegenerateEpsilon {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / float32(math.Sqrt(float64(lenSq))))
}

// TriangleNormal returns the unnormalized normal of triangle
// (p0, p1, p2), whose length is twice the triangle area.
// Counter-clockwise winding gives (p1-p0) × (p2-p0); clockwise swaps
// the operands.
func TriangleNormal(p0, p1, p2 mgl32.Vec3, cw bool) mgl32.Vec3 {
	u := p1.Sub(p0)
	v := p2.Sub(p0)
	if cw {
		return v.Cross(u)
	}
	return u.Cross(v)
}

// Angle returns the angle in radians between two vectors.
// Degenerate input yields π/2.
func Angle(a, b mgl32.Vec3) float32 {
	d := Normalize(a).Dot(Normalize(b))
	d = mgl32.Clamp(d, -1, 1)
	return float32(math.Acos(float64(d)))
}

// Distance returns the euclidean distance between two points.
func Distance(a, b mgl32.Vec3) float32 {
	return a.Sub(b).Len()
}
