package meshopt

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// GeneratePointReps finds, for every vertex, the lowest-numbered vertex
// at the same position. With epsilon 0 positions must match exactly;
// otherwise vertices closer than epsilon coincide. Each representative
// is its own representative, so pointReps[pointReps[v]] ==
// pointReps[v].
func GeneratePointReps(positions []mgl32.Vec3, vertexCount int, epsilon float32, pointReps []uint32) error {
	if positions == nil || pointReps == nil {
		return invalidArg("nil position or point-rep buffer")
	}
	if vertexCount <= 0 || uint64(vertexCount) >= math.MaxUint32 {
		return invalidArg("vertex count %d", vertexCount)
	}
	if len(positions) < vertexCount || len(pointReps) < vertexCount {
		return invalidArg("position and point-rep buffers need %d vertices", vertexCount)
	}
	if epsilon < 0 || math.IsNaN(float64(epsilon)) {
		return invalidArg("epsilon %v", epsilon)
	}

	if epsilon == 0 {
		first := make(map[mgl32.Vec3]uint32, vertexCount)
		for v := range uint32(vertexCount) {
			rep, ok := first[positions[v]]
			if !ok {
				rep = v
				first[positions[v]] = v
			}
			pointReps[v] = rep
		}
		return nil
	}

	grid := newVertexGrid(epsilon, vertexCount)
	epsSq := epsilon * epsilon
	for v := range uint32(vertexCount) {
		p := positions[v]
		rep := v
		grid.query(p, func(u uint32) bool {
			if u < rep {
				if d := positions[u].Sub(p); d.Dot(d) <= epsSq {
					rep = u
				}
			}
			return true
		})
		pointReps[v] = rep
		if rep == v {
			grid.insert(v, p)
		}
	}
	return nil
}

type halfEdge struct {
	face uint32
	edge uint32
}

// ConvertPointRepsToAdjacency fills adjacency with, for every edge of
// every face, the face that shares that edge with opposite winding, or
// Unused32 for a boundary edge. Edge e of a face runs from corner e to
// corner (e+1)%3. Vertices are compared through pointReps, so faces
// whose vertices are distinct but coincident are still joined; a nil
// pointReps compares vertex indices directly.
//
// Each edge is joined to at most one neighbour, first come first
// served in face order, and the table is symmetric.
func ConvertPointRepsToAdjacency[T Index](indices []T, faceCount int, pointReps []uint32, vertexCount int, adjacency []uint32) error {
	if err := checkFaces(indices, faceCount); err != nil {
		return err
	}
	if err := checkVertices[T](vertexCount, 1); err != nil {
		return err
	}
	if adjacency == nil || len(adjacency) < faceCount*3 {
		return invalidArg("adjacency buffer needs %d entries", faceCount*3)
	}
	if pointReps != nil {
		if len(pointReps) < vertexCount {
			return invalidArg("point-rep buffer needs %d entries", vertexCount)
		}
		for v, rep := range pointReps[:vertexCount] {
			if rep != Unused32 && int(rep) >= vertexCount {
				return unexpected("point rep of vertex %d is %d, beyond %d vertices", v, rep, vertexCount)
			}
		}
	}
	sentinel := Sentinel[T]()
	for j := range faceCount * 3 {
		if i := indices[j]; i != sentinel && int(i) >= vertexCount {
			return unexpected("index %d at %d beyond %d vertices", i, j, vertexCount)
		}
	}

	rep := func(i T) uint32 {
		if pointReps == nil || pointReps[i] == Unused32 {
			return uint32(i)
		}
		return pointReps[i]
	}

	for j := range faceCount * 3 {
		adjacency[j] = Unused32
	}

	open := make(map[uint64][]halfEdge, faceCount*3)
	for face := range uint32(faceCount) {
		tri := indices[face*3 : face*3+3]
		if hasSentinel(tri[0], tri[1], tri[2]) {
			continue
		}
		for edge := range uint32(3) {
			a, b := rep(tri[edge]), rep(tri[(edge+1)%3])
			if a == b {
				continue
			}
			reverse := uint64(b)<<32 | uint64(a)
			waiting := open[reverse]
			k := slices.IndexFunc(waiting, func(h halfEdge) bool { return h.face != face })
			if k >= 0 {
				other := waiting[k]
				adjacency[face*3+edge] = other.face
				adjacency[other.face*3+other.edge] = face
				open[reverse] = slices.Delete(waiting, k, k+1)
				continue
			}
			key := uint64(a)<<32 | uint64(b)
			open[key] = append(open[key], halfEdge{face: face, edge: edge})
		}
	}
	return nil
}

// GenerateAdjacencyAndPointReps computes point representatives with
// GeneratePointReps and the edge adjacency derived from them. Either
// output may be nil when only the other is wanted.
func GenerateAdjacencyAndPointReps[T Index](indices []T, faceCount int, positions []mgl32.Vec3, vertexCount int, epsilon float32, pointReps, adjacency []uint32) error {
	if err := checkFaces(indices, faceCount); err != nil {
		return err
	}
	if err := checkVertices[T](vertexCount, 1); err != nil {
		return err
	}
	if pointReps == nil && adjacency == nil {
		return invalidArg("no output requested")
	}
	if adjacency != nil && len(adjacency) < faceCount*3 {
		return invalidArg("adjacency buffer needs %d entries", faceCount*3)
	}

	reps := pointReps
	if reps == nil {
		reps = make([]uint32, vertexCount)
	}
	// Validate the index buffer before writing any output.
	sentinel := Sentinel[T]()
	for j := range faceCount * 3 {
		if i := indices[j]; i != sentinel && int(i) >= vertexCount {
			return unexpected("index %d at %d beyond %d vertices", i, j, vertexCount)
		}
	}
	if err := GeneratePointReps(positions, vertexCount, epsilon, reps); err != nil {
		return err
	}
	if adjacency == nil {
		return nil
	}
	return ConvertPointRepsToAdjacency(indices, faceCount, reps, vertexCount, adjacency)
}
