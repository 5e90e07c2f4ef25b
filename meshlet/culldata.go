package meshlet

import (
	"math"
	"runtime"

	"github.com/akmonengine/meshopt"
	"github.com/akmonengine/meshopt/geom"
	"github.com/akmonengine/meshopt/internal/parallel"
	"github.com/go-gl/mathgl/mgl32"
)

// CullFlags selects the winding ComputeCullData assumes.
type CullFlags uint32

const (
	// CullDefault treats faces as counter-clockwise wound.
	CullDefault CullFlags = 0
	// CullWindCW treats faces as clockwise wound.
	CullWindCW CullFlags = 1 << 0
)

// minConeDot is the smallest cosine between the cone axis and a member
// normal for which a cone is still worth testing.
const minConeDot = 0.1

// Cone bounds the face normals of a meshlet.
//
// Every face normal lies within HalfAngle of Axis, and Apex is a point
// behind every face plane. A degenerate cone, whose normals spread too
// widely to ever cull, has a zero Axis and a HalfAngle of π.
type Cone struct {
	Apex      mgl32.Vec3
	Axis      mgl32.Vec3
	HalfAngle float32
}

// IsDegenerate reports whether the cone can never cull.
func (c Cone) IsDegenerate() bool {
	return c.HalfAngle >= math.Pi/2
}

// Backfacing reports whether every face of the meshlet faces away from
// a viewer at viewPos.
func (c Cone) Backfacing(viewPos mgl32.Vec3) bool {
	if c.IsDegenerate() {
		return false
	}
	dir := geom.Normalize(c.Apex.Sub(viewPos))
	return dir.Dot(c.Axis) >= float32(math.Sin(float64(c.HalfAngle)))
}

// CullData is the culling information of one meshlet.
type CullData struct {
	BoundingSphere geom.Sphere
	NormalCone     Cone
}

// ComputeCullData computes, for every meshlet, the bounding sphere of
// its vertices and the normal cone of its faces, writing cullData[k]
// for meshlets[k]. It only reads the mesh and the meshlet arrays.
// Meshlets are processed concurrently; results do not depend on
// scheduling.
func ComputeCullData[T meshopt.Index](positions []mgl32.Vec3, vertexCount int, meshlets []Meshlet, uniqueVertexIB []T, primitiveIndices []Triangle, flags CullFlags, cullData []CullData) error {
	return ComputeCullDataWorkers(positions, vertexCount, meshlets, uniqueVertexIB, primitiveIndices, flags, cullData, runtime.GOMAXPROCS(0))
}

// ComputeCullDataWorkers is ComputeCullData with an explicit worker
// count. One worker runs on the calling goroutine.
func ComputeCullDataWorkers[T meshopt.Index](positions []mgl32.Vec3, vertexCount int, meshlets []Meshlet, uniqueVertexIB []T, primitiveIndices []Triangle, flags CullFlags, cullData []CullData, workers int) error {
	if positions == nil || meshlets == nil || uniqueVertexIB == nil || primitiveIndices == nil || cullData == nil {
		return invalidArg("nil input or output buffer")
	}
	if uint64(vertexCount) >= uint64(meshopt.Sentinel[T]()) {
		return invalidArg("%d vertices exceed the index range", vertexCount)
	}
	if vertexCount < 1 {
		return unexpected("%d vertices", vertexCount)
	}
	if len(positions) < vertexCount {
		return invalidArg("position buffer holds %d vertices, need %d", len(positions), vertexCount)
	}
	if len(cullData) < len(meshlets) {
		return invalidArg("cull data holds %d entries, need %d", len(cullData), len(meshlets))
	}
	err := parallel.ForErr(workers, len(meshlets), func(k int) error {
		return validateMeshlet(k, meshlets[k], vertexCount, uniqueVertexIB, primitiveIndices)
	})
	if err != nil {
		return err
	}

	cw := flags&CullWindCW != 0
	parallel.For(workers, len(meshlets), func(k int) {
		cullData[k] = computeCullData(positions, meshlets[k], uniqueVertexIB, primitiveIndices, cw)
	})
	return nil
}

func validateMeshlet[T meshopt.Index](k int, m Meshlet, vertexCount int, uniqueVertexIB []T, primitiveIndices []Triangle) error {
	if uint64(m.VertOffset)+uint64(m.VertCount) > uint64(len(uniqueVertexIB)) {
		return unexpected("meshlet %d vertices [%d, +%d) beyond %d", k, m.VertOffset, m.VertCount, len(uniqueVertexIB))
	}
	if uint64(m.PrimOffset)+uint64(m.PrimCount) > uint64(len(primitiveIndices)) {
		return unexpected("meshlet %d primitives [%d, +%d) beyond %d", k, m.PrimOffset, m.PrimCount, len(primitiveIndices))
	}
	for _, v := range uniqueVertexIB[m.VertOffset : m.VertOffset+m.VertCount] {
		if int(v) >= vertexCount {
			return unexpected("meshlet %d references vertex %d of %d", k, v, vertexCount)
		}
	}
	for _, tri := range primitiveIndices[m.PrimOffset : m.PrimOffset+m.PrimCount] {
		i0, i1, i2 := tri.Indices()
		if i0 >= m.VertCount || i1 >= m.VertCount || i2 >= m.VertCount {
			return unexpected("meshlet %d primitive (%d, %d, %d) beyond %d vertices", k, i0, i1, i2, m.VertCount)
		}
	}
	return nil
}

func computeCullData[T meshopt.Index](positions []mgl32.Vec3, m Meshlet, uniqueVertexIB []T, primitiveIndices []Triangle, cw bool) CullData {
	verts := uniqueVertexIB[m.VertOffset : m.VertOffset+m.VertCount]
	prims := primitiveIndices[m.PrimOffset : m.PrimOffset+m.PrimCount]

	points := make([]mgl32.Vec3, len(verts))
	for i, v := range verts {
		points[i] = positions[v]
	}
	sphere := geom.BoundingSphere(points)
	degenerate := CullData{
		BoundingSphere: sphere,
		NormalCone:     Cone{Apex: sphere.Center, HalfAngle: math.Pi},
	}

	normals := make([]mgl32.Vec3, 0, len(prims))
	var axis mgl32.Vec3
	for _, tri := range prims {
		i0, i1, i2 := tri.Indices()
		n := geom.Normalize(geom.TriangleNormal(points[i0], points[i1], points[i2], cw))
		if n == (mgl32.Vec3{}) {
			continue
		}
		normals = append(normals, n)
		axis = axis.Add(n)
	}
	axis = geom.Normalize(axis)
	if len(normals) == 0 || axis == (mgl32.Vec3{}) {
		return degenerate
	}

	minDot := float32(1)
	for _, n := range normals {
		minDot = min(minDot, axis.Dot(n))
	}
	if minDot <= minConeDot {
		return degenerate
	}

	// Slide the apex back along the axis until it lies behind every
	// face plane.
	var maxT float32
	for _, tri := range prims {
		i0, i1, i2 := tri.Indices()
		n := geom.Normalize(geom.TriangleNormal(points[i0], points[i1], points[i2], cw))
		if n == (mgl32.Vec3{}) {
			continue
		}
		t := sphere.Center.Sub(points[i0]).Dot(n) / axis.Dot(n)
		maxT = max(maxT, t)
	}

	halfAngle := float32(math.Acos(float64(mgl32.Clamp(minDot, -1, 1))))
	return CullData{
		BoundingSphere: sphere,
		NormalCone: Cone{
			Apex:      sphere.Center.Sub(axis.Mul(maxT)),
			Axis:      axis,
			HalfAngle: halfAngle,
		},
	}
}
