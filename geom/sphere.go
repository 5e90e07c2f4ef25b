package geom

import "github.com/go-gl/mathgl/mgl32"

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Contains reports whether point lies inside the sphere, allowing a
// tolerance of eps.
func (s Sphere) Contains(point mgl32.Vec3, eps float32) bool {
	return Distance(s.Center, point) <= s.Radius+eps
}

// BoundingSphere returns a near-minimal sphere enclosing points.
//
// It follows Ritter's method: seed the sphere from an approximate
// diameter, found as the point farthest from the first point and the
// point farthest from that one, grow it over every point that falls
// outside, then tighten the radius to the farthest member.
// An empty input yields the zero sphere.
func BoundingSphere(points []mgl32.Vec3) Sphere {
	if len(points) == 0 {
		return Sphere{}
	}

	a := farthestFrom(points, points[0])
	b := farthestFrom(points, a)
	s := Sphere{Center: a.Add(b).Mul(0.5), Radius: Distance(a, b) * 0.5}

	for _, p := range points {
		if s.Contains(p, 0) {
			continue
		}
		d := Distance(p, s.Center)
		grown := (s.Radius + d) * 0.5
		s.Center = s.Center.Add(p.Sub(s.Center).Mul((grown - s.Radius) / d))
		s.Radius = grown
	}

	var farthest float32
	for _, p := range points {
		farthest = max(farthest, Distance(p, s.Center))
	}
	return Sphere{Center: s.Center, Radius: farthest}
}

// farthestFrom returns the first point at the largest distance from q.
func farthestFrom(points []mgl32.Vec3, q mgl32.Vec3) mgl32.Vec3 {
	best, bestSq := points[0], float32(-1)
	for _, p := range points {
		d := p.Sub(q)
		if dSq := d.Dot(d); dSq > bestSq {
			best, bestSq = p, dSq
		}
	}
	return best
}
