package main

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/akmonengine/meshopt"
	"github.com/akmonengine/meshopt/geom"
	"github.com/akmonengine/meshopt/internal/config"
	"github.com/akmonengine/meshopt/internal/logger"
	"github.com/akmonengine/meshopt/meshlet"
	"github.com/akmonengine/meshopt/shape"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const positionStride = 12

// buildMesh generates the procedural mesh described by cfg.
func buildMesh(cfg config.MeshConfig) (shape.Mesh, error) {
	switch cfg.Shape {
	case "cube":
		return shape.Cube(cfg.Size), nil
	case "sharedcube":
		return shape.SharedCube(cfg.Size), nil
	case "sphere":
		return shape.Sphere(cfg.Size, cfg.Tessellation)
	case "cylinder":
		return shape.Cylinder(cfg.Height, cfg.Size, cfg.Tessellation)
	case "torus":
		return shape.Torus(cfg.Size, cfg.Thickness, cfg.Tessellation)
	default:
		return shape.Mesh{}, fmt.Errorf("unknown shape %q", cfg.Shape)
	}
}

// meshStats summarizes an index buffer.
type meshStats struct {
	Vertices     int
	Faces        int
	Bounds       geom.AABB
	ACMR         float32
	ATVR         float32
	LooseNormals int // Vertices left without a normal
}

// buffers is a mesh with the index width chosen at run time.
type buffers[T meshopt.Index] struct {
	Positions []mgl32.Vec3
	Indices   []T
}

func (b buffers[T]) faceCount() int   { return len(b.Indices) / 3 }
func (b buffers[T]) vertexCount() int { return len(b.Positions) }

func statsOf[T meshopt.Index](b buffers[T], cacheSize int) (meshStats, error) {
	s := meshStats{
		Vertices: b.vertexCount(),
		Faces:    b.faceCount(),
		Bounds:   geom.BoundsOf(b.Positions),
	}
	s.ACMR, s.ATVR = meshopt.ComputeVertexCacheMissRate(b.Indices, s.Faces, s.Vertices, cacheSize)

	normals := make([]mgl32.Vec3, s.Vertices)
	if err := meshopt.ComputeNormals(b.Indices, s.Faces, b.Positions, s.Vertices, meshopt.NormalsDefault, normals); err != nil {
		return s, fmt.Errorf("computing normals: %w", err)
	}
	for _, n := range normals {
		if n == (mgl32.Vec3{}) {
			s.LooseNormals++
		}
	}
	return s, nil
}

// simulatedCache is the cache size the miss rates are reported for.
// Strip ordering has no cache of its own.
func simulatedCache(cfg config.OptimizeConfig) int {
	if cfg.VertexCache == meshopt.OptFacesVStripOrder {
		return meshopt.OptFacesVDefault
	}
	return cfg.VertexCache
}

// optimize runs the index and vertex buffer cleanup in order: weld
// coincident vertices, reorder faces for the vertex cache, renumber
// vertices by first use and drop the unused ones.
func optimize[T meshopt.Index](b buffers[T], cfg config.OptimizeConfig) (buffers[T], error) {
	faceCount, vertexCount := b.faceCount(), b.vertexCount()
	indices := append([]T(nil), b.Indices...)

	pointReps := make([]uint32, vertexCount)
	adjacency := make([]uint32, faceCount*3)
	if err := meshopt.GenerateAdjacencyAndPointReps(indices, faceCount, b.Positions, vertexCount, cfg.Epsilon, pointReps, adjacency); err != nil {
		return b, fmt.Errorf("generating adjacency: %w", err)
	}

	if cfg.Weld {
		changed, err := meshopt.WeldVertices(indices, faceCount, vertexCount, pointReps, nil, func(v0, v1 uint32) bool {
			return geom.Distance(b.Positions[v0], b.Positions[v1]) <= cfg.Epsilon
		})
		if err != nil {
			return b, fmt.Errorf("welding vertices: %w", err)
		}
		logger.Debug("welded vertices", zap.Bool("changed", changed))
	}

	faceRemap := make([]uint32, faceCount)
	if err := meshopt.OptimizeFaces(indices, faceCount, adjacency, faceRemap, cfg.VertexCache); err != nil {
		return b, fmt.Errorf("optimizing faces: %w", err)
	}
	if err := meshopt.ReorderIBInPlace(indices, faceCount, faceRemap); err != nil {
		return b, fmt.Errorf("reordering faces: %w", err)
	}

	vertexRemap := make([]uint32, vertexCount)
	trailing, err := meshopt.OptimizeVertices(indices, faceCount, vertexCount, vertexRemap)
	if err != nil {
		return b, fmt.Errorf("optimizing vertices: %w", err)
	}
	logger.Debug("ordered vertices", zap.Int("unused", trailing))

	vb := make([]byte, (vertexCount-trailing)*positionStride)
	if err := meshopt.CompactVB(vertexBytes(b.Positions), positionStride, vertexCount, trailing, vertexRemap, vb); err != nil {
		return b, fmt.Errorf("compacting vertices: %w", err)
	}
	if err := meshopt.FinalizeIBInPlace(indices, faceCount, vertexRemap, vertexCount); err != nil {
		return b, fmt.Errorf("rewriting indices: %w", err)
	}

	return buffers[T]{Positions: bytesVertices(vb), Indices: indices}, nil
}

// dominantAxis returns the face attribute used to split meshlets: the
// axis and sign of the largest normal component, in [0, 6).
func dominantAxis(n mgl32.Vec3) uint32 {
	axis := 0
	for i := 1; i < 3; i++ {
		if mgl32.Abs(n[i]) > mgl32.Abs(n[axis]) {
			axis = i
		}
	}
	if n[axis] < 0 {
		return uint32(axis*2 + 1)
	}
	return uint32(axis * 2)
}

// splitByAxis sorts the faces by dominant normal axis, keeping their
// relative order, and returns one subset per axis present.
func splitByAxis[T meshopt.Index](b buffers[T]) (buffers[T], []meshopt.Subset, error) {
	faceCount := b.faceCount()
	attributes := make([]uint32, faceCount)
	for f := range faceCount {
		p0, p1, p2 := b.Positions[b.Indices[f*3]], b.Positions[b.Indices[f*3+1]], b.Positions[b.Indices[f*3+2]]
		attributes[f] = dominantAxis(geom.TriangleNormal(p0, p1, p2, false))
	}

	faceRemap := make([]uint32, faceCount)
	if err := meshopt.AttributeSort(faceCount, attributes, faceRemap); err != nil {
		return b, nil, fmt.Errorf("sorting faces: %w", err)
	}
	indices := make([]T, len(b.Indices))
	if err := meshopt.ReorderIB(b.Indices, faceCount, faceRemap, indices); err != nil {
		return b, nil, fmt.Errorf("reordering faces: %w", err)
	}
	return buffers[T]{Positions: b.Positions, Indices: indices}, meshopt.ComputeSubsets(attributes, faceCount), nil
}

// clusters is the meshlet partition of a mesh with its cull data.
type clusters[T meshopt.Index] struct {
	meshlet.Result[T]
	Subsets  []meshopt.Subset
	CullData []meshlet.CullData
}

func buildMeshlets[T meshopt.Index](b buffers[T], epsilon float32, cfg config.MeshletConfig) (clusters[T], error) {
	var c clusters[T]
	var subsets []meshopt.Subset
	if cfg.Split {
		var err error
		if b, subsets, err = splitByAxis(b); err != nil {
			return c, err
		}
	}

	faceCount, vertexCount := b.faceCount(), b.vertexCount()
	adjacency := make([]uint32, faceCount*3)
	if err := meshopt.GenerateAdjacencyAndPointReps(b.Indices, faceCount, b.Positions, vertexCount, epsilon, nil, adjacency); err != nil {
		return c, fmt.Errorf("generating adjacency: %w", err)
	}

	res, ranges, err := meshlet.ComputeMeshletsSubsets(b.Indices, faceCount, b.Positions, vertexCount, subsets, adjacency, cfg.MaxVerts, cfg.MaxPrims)
	if err != nil {
		return c, fmt.Errorf("computing meshlets: %w", err)
	}

	flags := meshlet.CullDefault
	if cfg.WindCW {
		flags |= meshlet.CullWindCW
	}
	cull := make([]meshlet.CullData, len(res.Meshlets))
	if cfg.Workers == 0 {
		err = meshlet.ComputeCullData(b.Positions, vertexCount, res.Meshlets, res.UniqueVertexIB, res.PrimitiveIndices, flags, cull)
	} else {
		err = meshlet.ComputeCullDataWorkers(b.Positions, vertexCount, res.Meshlets, res.UniqueVertexIB, res.PrimitiveIndices, flags, cull, cfg.Workers)
	}
	if err != nil {
		return c, fmt.Errorf("computing cull data: %w", err)
	}

	return clusters[T]{Result: res, Subsets: ranges, CullData: cull}, nil
}

// axisViews returns six viewpoints at distance along each axis.
func axisViews(center mgl32.Vec3, distance float32) []mgl32.Vec3 {
	views := make([]mgl32.Vec3, 0, 6)
	for axis := range 3 {
		for _, sign := range []float32{1, -1} {
			var offset mgl32.Vec3
			offset[axis] = sign * distance
			views = append(views, center.Add(offset))
		}
	}
	return views
}

// backfacingFrom counts, per view, the meshlets whose cone culls them.
// Views inside bounds get -1: the surrounding geometry is unknown there.
func backfacingFrom(cull []meshlet.CullData, bounds geom.AABB, views []mgl32.Vec3) []int {
	counts := make([]int, len(views))
	for i, view := range views {
		if bounds.ContainsPoint(view) {
			counts[i] = -1
			continue
		}
		for _, cd := range cull {
			if cd.NormalCone.Backfacing(view) {
				counts[i]++
			}
		}
	}
	return counts
}

// overlappingPairs counts the meshlet pairs whose vertex boxes overlap,
// touching included. Fewer overlaps mean spatially tighter clusters.
func overlappingPairs[T meshopt.Index](positions []mgl32.Vec3, res meshlet.Result[T]) int {
	boxes := make([]geom.AABB, 0, len(res.Meshlets))
	for _, m := range res.Meshlets {
		box := geom.EmptyAABB()
		for _, v := range res.UniqueVertexIB[m.VertOffset : m.VertOffset+m.VertCount] {
			box = box.Extend(positions[v])
		}
		if !box.IsEmpty() {
			boxes = append(boxes, box)
		}
	}

	n := 0
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Overlaps(boxes[j]) {
				n++
			}
		}
	}
	return n
}

func vertexBytes(positions []mgl32.Vec3) []byte {
	buf := make([]byte, 0, len(positions)*positionStride)
	for _, p := range positions {
		for _, c := range p {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
		}
	}
	return buf
}

func bytesVertices(buf []byte) []mgl32.Vec3 {
	positions := make([]mgl32.Vec3, len(buf)/positionStride)
	for i := range positions {
		for c := range 3 {
			positions[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*positionStride+c*4:]))
		}
	}
	return positions
}
