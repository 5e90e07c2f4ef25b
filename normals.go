package meshopt

import (
	"github.com/akmonengine/meshopt/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// NormalFlags selects the weighting and winding used by ComputeNormals.
type NormalFlags uint32

const (
	// NormalsDefault weights each face normal by the angle its corner
	// subtends at the vertex.
	NormalsDefault NormalFlags = 0
	// NormalsWeightByArea weights each face normal by twice the
	// triangle area (the raw cross product).
	NormalsWeightByArea NormalFlags = 1 << 0
	// NormalsWeightEqual gives every adjacent face the same weight.
	NormalsWeightEqual NormalFlags = 1 << 1
	// NormalsWindCW treats faces as clockwise wound.
	NormalsWindCW NormalFlags = 1 << 2
)

// ComputeNormals computes per-vertex normals as the normalized,
// weighted sum of the normals of every face using each vertex.
//
// Faces containing a sentinel index are skipped. Degenerate faces add
// a zero vector. Vertices used by no face, or whose contributions
// cancel, get the zero normal.
func ComputeNormals[T Index](indices []T, faceCount int, positions []mgl32.Vec3, vertexCount int, flags NormalFlags, normals []mgl32.Vec3) error {
	if err := checkFaces(indices, faceCount); err != nil {
		return err
	}
	if positions == nil || normals == nil {
		return invalidArg("nil position or normal buffer")
	}
	if err := checkVertices[T](vertexCount, 3); err != nil {
		return err
	}
	if len(positions) < vertexCount || len(normals) < vertexCount {
		return invalidArg("position and normal buffers need %d vertices", vertexCount)
	}
	if flags&NormalsWeightByArea != 0 && flags&NormalsWeightEqual != 0 {
		return invalidArg("area and equal weighting are exclusive")
	}
	for j := range faceCount * 3 {
		if i := indices[j]; i != Sentinel[T]() && int(i) >= vertexCount {
			return unexpected("index %d at %d beyond %d vertices", i, j, vertexCount)
		}
	}

	cw := flags&NormalsWindCW != 0
	accum := make([]mgl32.Vec3, vertexCount)

	for face := range faceCount {
		i0, i1, i2 := indices[face*3], indices[face*3+1], indices[face*3+2]
		if hasSentinel(i0, i1, i2) {
			continue
		}
		p0, p1, p2 := positions[i0], positions[i1], positions[i2]
		n := geom.TriangleNormal(p0, p1, p2, cw)

		switch {
		case flags&NormalsWeightByArea != 0:
			accum[i0] = accum[i0].Add(n)
			accum[i1] = accum[i1].Add(n)
			accum[i2] = accum[i2].Add(n)

		case flags&NormalsWeightEqual != 0:
			n = geom.Normalize(n)
			accum[i0] = accum[i0].Add(n)
			accum[i1] = accum[i1].Add(n)
			accum[i2] = accum[i2].Add(n)

		default:
			n = geom.Normalize(n)
			w0 := geom.Angle(p1.Sub(p0), p2.Sub(p0))
			w1 := geom.Angle(p2.Sub(p1), p0.Sub(p1))
			w2 := geom.Angle(p0.Sub(p2), p1.Sub(p2))
			accum[i0] = accum[i0].Add(n.Mul(w0))
			accum[i1] = accum[i1].Add(n.Mul(w1))
			accum[i2] = accum[i2].Add(n.Mul(w2))
		}
	}

	for v := range vertexCount {
		normals[v] = geom.Normalize(accum[v])
	}
	return nil
}
