// Package shape generates procedural triangle meshes: cubes, spheres,
// cylinders and tori. Faces are counter-clockwise when seen from
// outside.
package shape

import (
	"fmt"
	"math"

	"github.com/akmonengine/meshopt/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list.
type Mesh struct {
	Positions []mgl32.Vec3
	Indices   []uint32
}

// FaceCount returns the number of triangles.
func (m Mesh) FaceCount() int { return len(m.Indices) / 3 }

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int { return len(m.Positions) }

// Bounds returns the box enclosing every vertex.
func (m Mesh) Bounds() geom.AABB { return geom.BoundsOf(m.Positions) }

// Indices16 returns the index buffer narrowed to 16 bits.
// It fails if the mesh has too many vertices for 16-bit indices.
func (m Mesh) Indices16() ([]uint16, error) {
	if len(m.Positions) >= math.MaxUint16 {
		return nil, fmt.Errorf("shape: %d vertices do not fit 16-bit indices", len(m.Positions))
	}
	ib := make([]uint16, len(m.Indices))
	for i, v := range m.Indices {
		ib[i] = uint16(v)
	}
	return ib, nil
}

// Clone returns a deep copy of the mesh.
func (m Mesh) Clone() Mesh {
	return Mesh{
		Positions: append([]mgl32.Vec3(nil), m.Positions...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
}

var cubeNormals = [6]mgl32.Vec3{
	{0, 0, 1},
	{0, 0, -1},
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
}

// cubeFaces calls fn with the four corners of each cube face, in
// counter-clockwise order seen from outside.
func cubeFaces(size float32, fn func(corners [4]mgl32.Vec3)) {
	half := size / 2
	for _, n := range cubeNormals {
		side1 := mgl32.Vec3{n[1], n[2], n[0]}
		side2 := n.Cross(side1)
		fn([4]mgl32.Vec3{
			n.Sub(side1).Sub(side2).Mul(half),
			n.Add(side1).Sub(side2).Mul(half),
			n.Add(side1).Add(side2).Mul(half),
			n.Sub(side1).Add(side2).Mul(half),
		})
	}
}

// Cube returns a cube with 4 vertices per face, so no vertex is shared
// between faces: 24 vertices, 12 triangles.
func Cube(size float32) Mesh {
	var m Mesh
	cubeFaces(size, func(c [4]mgl32.Vec3) {
		base := uint32(len(m.Positions))
		m.Positions = append(m.Positions, c[:]...)
		m.Indices = append(m.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	})
	return m
}

// SharedCube returns a cube whose faces share its 8 corners.
func SharedCube(size float32) Mesh {
	half := size / 2
	m := Mesh{Positions: make([]mgl32.Vec3, 8)}
	corner := func(p mgl32.Vec3) uint32 {
		var idx uint32
		for axis := range 3 {
			if p[axis] > 0 {
				idx |= 1 << axis
			}
		}
		return idx
	}
	for idx := range uint32(8) {
		for axis := range 3 {
			m.Positions[idx][axis] = -half
			if idx&(1<<axis) != 0 {
				m.Positions[idx][axis] = half
			}
		}
	}
	cubeFaces(size, func(c [4]mgl32.Vec3) {
		i0, i1, i2, i3 := corner(c[0]), corner(c[1]), corner(c[2]), corner(c[3])
		m.Indices = append(m.Indices,
			i0, i1, i2,
			i0, i2, i3,
		)
	})
	return m
}

// Sphere returns a latitude/longitude sphere with tessellation rings
// and twice as many segments around. The seam and pole vertices are
// duplicated, and the pole rows contain zero-area triangles.
func Sphere(diameter float32, tessellation int) (Mesh, error) {
	if tessellation < 3 {
		return Mesh{}, fmt.Errorf("shape: sphere tessellation %d, need at least 3", tessellation)
	}
	vertical := tessellation
	horizontal := tessellation * 2
	radius := diameter / 2

	var m Mesh
	for i := 0; i <= vertical; i++ {
		latitude := float64(i)*math.Pi/float64(vertical) - math.Pi/2
		dy, dxz := math.Sincos(latitude)
		for j := 0; j <= horizontal; j++ {
			longitude := float64(j) * 2 * math.Pi / float64(horizontal)
			dx, dz := math.Sincos(longitude)
			n := mgl32.Vec3{float32(dx * dxz), float32(dy), float32(dz * dxz)}
			m.Positions = append(m.Positions, n.Mul(radius))
		}
	}

	stride := uint32(horizontal + 1)
	for i := range uint32(vertical) {
		for j := range uint32(horizontal) {
			a := i*stride + j
			b := i*stride + j + 1
			c := (i+1)*stride + j
			d := (i+1)*stride + j + 1
			m.Indices = append(m.Indices,
				a, b, c,
				b, d, c,
			)
		}
	}
	return m, nil
}

// Cylinder returns a capped cylinder along the Y axis. The side and
// each cap have their own vertices.
func Cylinder(height, diameter float32, tessellation int) (Mesh, error) {
	if tessellation < 3 {
		return Mesh{}, fmt.Errorf("shape: cylinder tessellation %d, need at least 3", tessellation)
	}
	radius := diameter / 2
	top := mgl32.Vec3{0, height / 2, 0}

	circle := func(i int) mgl32.Vec3 {
		dx, dz := math.Sincos(float64(i) * 2 * math.Pi / float64(tessellation))
		return mgl32.Vec3{float32(dx), 0, float32(dz)}
	}

	var m Mesh
	for i := 0; i <= tessellation; i++ {
		n := circle(i).Mul(radius)
		m.Positions = append(m.Positions, n.Add(top), n.Sub(top))
	}
	for i := range uint32(tessellation) {
		m.Indices = append(m.Indices,
			i*2, i*2+1, i*2+2,
			i*2+1, i*2+3, i*2+2,
		)
	}

	addCap := func(offset mgl32.Vec3, up bool) {
		center := uint32(len(m.Positions))
		m.Positions = append(m.Positions, offset)
		for i := range tessellation {
			m.Positions = append(m.Positions, circle(i).Mul(radius).Add(offset))
		}
		for i := range uint32(tessellation) {
			cur := center + 1 + i
			next := center + 1 + (i+1)%uint32(tessellation)
			if up {
				m.Indices = append(m.Indices, center, cur, next)
			} else {
				m.Indices = append(m.Indices, center, next, cur)
			}
		}
	}
	addCap(top, true)
	addCap(top.Mul(-1), false)
	return m, nil
}

// Torus returns a torus around the Y axis with tessellation segments
// both around the ring and around the tube. Seam vertices are
// duplicated.
func Torus(diameter, thickness float32, tessellation int) (Mesh, error) {
	if tessellation < 3 {
		return Mesh{}, fmt.Errorf("shape: torus tessellation %d, need at least 3", tessellation)
	}
	ringRadius := diameter / 2
	tubeRadius := thickness / 2
	up := mgl32.Vec3{0, 1, 0}

	var m Mesh
	for i := 0; i <= tessellation; i++ {
		su, cu := math.Sincos(float64(i) * 2 * math.Pi / float64(tessellation))
		radial := mgl32.Vec3{float32(cu), 0, float32(su)}
		center := radial.Mul(ringRadius)
		for j := 0; j <= tessellation; j++ {
			sv, cv := math.Sincos(float64(j) * 2 * math.Pi / float64(tessellation))
			n := radial.Mul(float32(cv)).Add(up.Mul(float32(sv)))
			m.Positions = append(m.Positions, center.Add(n.Mul(tubeRadius)))
		}
	}

	stride := uint32(tessellation + 1)
	for i := range uint32(tessellation) {
		for j := range uint32(tessellation) {
			a := i*stride + j
			b := (i+1)*stride + j
			c := i*stride + j + 1
			d := (i+1)*stride + j + 1
			m.Indices = append(m.Indices,
				a, c, b,
				c, d, b,
			)
		}
	}
	return m, nil
}
