// Package meshlet partitions triangle meshes into bounded clusters for
// cluster-based rendering, and computes the per-cluster bounding
// spheres and normal cones a renderer culls them with.
//
// Clusters are described by offsets into two shared arrays: a unique
// vertex index buffer holding, for each meshlet, the mesh vertices it
// uses, and a primitive buffer holding each triangle as three packed
// indices local to its meshlet.
package meshlet

import (
	"fmt"
	"math"

	"github.com/akmonengine/meshopt"
	"github.com/akmonengine/meshopt/geom"
	"github.com/akmonengine/meshopt/internal/bitset"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultMaxVerts is the default cap on unique vertices per meshlet.
	DefaultMaxVerts = 64
	// DefaultMaxPrims is the default cap on triangles per meshlet.
	DefaultMaxPrims = 128

	// MinVerts is the smallest vertex cap: one triangle must fit.
	MinVerts = 3
	// MinPrims is the smallest triangle cap.
	MinPrims = 1
	// MaxSize bounds both caps.
	MaxSize = 256
)

// Candidate scoring weights. Vertex reuse dominates; location and
// orientation break ties between equally shared faces.
const (
	reuseWeight       = 0.5
	locationWeight    = 0.25
	orientationWeight = 0.25
)

// Meshlet locates one cluster within the shared output arrays.
type Meshlet struct {
	VertCount  uint32
	VertOffset uint32
	PrimCount  uint32
	PrimOffset uint32
}

// Triangle is three meshlet-local vertex indices packed 10 bits each.
type Triangle uint32

// PackTriangle packs three local indices, each below 1024.
func PackTriangle(i0, i1, i2 uint32) Triangle {
	return Triangle(i0&0x3FF | (i1&0x3FF)<<10 | (i2&0x3FF)<<20)
}

// Indices unpacks the three local indices.
func (t Triangle) Indices() (i0, i1, i2 uint32) {
	return uint32(t) & 0x3FF, uint32(t) >> 10 & 0x3FF, uint32(t) >> 20 & 0x3FF
}

// Result holds the output of ComputeMeshlets. The caller owns every
// slice.
type Result[T meshopt.Index] struct {
	Meshlets         []Meshlet
	UniqueVertexIB   []T
	PrimitiveIndices []Triangle
}

// ComputeMeshlets partitions a mesh into meshlets of at most maxVerts
// unique vertices and maxPrims triangles.
//
// Each meshlet grows greedily from a seed face, always adding the
// candidate whose vertices are most already present, then the one
// closest to the cluster and best aligned with its average normal.
// Candidates are the edge neighbours from adjacency when it is given,
// and the faces sharing a vertex otherwise. A meshlet closes when its
// best candidate would exceed a cap, which then seeds the next
// meshlet, or when no candidate remains.
//
// Faces containing a sentinel index are left out.
func ComputeMeshlets[T meshopt.Index](indices []T, faceCount int, positions []mgl32.Vec3, vertexCount int, adjacency []uint32, maxVerts, maxPrims int) (Result[T], error) {
	res, _, err := ComputeMeshletsSubsets(indices, faceCount, positions, vertexCount, nil, adjacency, maxVerts, maxPrims)
	return res, err
}

// ComputeMeshletsSubsets is ComputeMeshlets over a list of face
// subsets, typically from meshopt.ComputeSubsets: no meshlet mixes
// faces of two subsets. It also returns, per subset, the run of
// meshlets built from it. A nil subsets slice is one subset of every
// face.
func ComputeMeshletsSubsets[T meshopt.Index](indices []T, faceCount int, positions []mgl32.Vec3, vertexCount int, subsets []meshopt.Subset, adjacency []uint32, maxVerts, maxPrims int) (Result[T], []meshopt.Subset, error) {
	var res Result[T]
	if err := validateMesh(indices, faceCount, positions, vertexCount); err != nil {
		return res, nil, err
	}
	if maxVerts < MinVerts || maxVerts > MaxSize || maxPrims < MinPrims || maxPrims > MaxSize {
		return res, nil, invalidArg("meshlet caps %d vertices, %d primitives", maxVerts, maxPrims)
	}
	if adjacency != nil {
		if len(adjacency) < faceCount*3 {
			return res, nil, invalidArg("adjacency buffer needs %d entries", faceCount*3)
		}
		for j, adj := range adjacency[:faceCount*3] {
			if adj != meshopt.Unused32 && int(adj) >= faceCount {
				return res, nil, unexpected("adjacency entry %d references face %d of %d", j, adj, faceCount)
			}
		}
	}
	if subsets == nil {
		subsets = []meshopt.Subset{{Offset: 0, Count: faceCount}}
	}
	for k, s := range subsets {
		if s.Offset < 0 || s.Count < 0 || s.Offset+s.Count > faceCount {
			return res, nil, invalidArg("subset %d spans [%d, %d) of %d faces", k, s.Offset, s.Offset+s.Count, faceCount)
		}
	}

	b := newBuilder(indices, faceCount, positions, vertexCount, adjacency, maxVerts, maxPrims)
	ranges := make([]meshopt.Subset, len(subsets))
	for k, s := range subsets {
		first := len(b.out.Meshlets)
		b.build(s.Offset, s.Offset+s.Count)
		ranges[k] = meshopt.Subset{Offset: first, Count: len(b.out.Meshlets) - first}
	}
	return b.out, ranges, nil
}

// builder grows meshlets over one mesh.
type builder[T meshopt.Index] struct {
	indices   []T
	positions []mgl32.Vec3
	adjacency []uint32
	maxVerts  int
	maxPrims  int

	faceNormals []mgl32.Vec3

	// Faces referencing each vertex, used as candidates when no
	// adjacency is supplied.
	vertFaceOffset []int
	vertFaces      []uint32

	emitted *bitset.Set

	// Current meshlet. local and queued are valid only where their
	// stamp equals gen.
	gen        uint32
	localStamp []uint32
	local      []uint32
	queued     []uint32
	verts      []T
	prims      []Triangle
	normalSum  mgl32.Vec3
	center     mgl32.Vec3
	radius     float32
	candidates []uint32

	out Result[T]
}

func newBuilder[T meshopt.Index](indices []T, faceCount int, positions []mgl32.Vec3, vertexCount int, adjacency []uint32, maxVerts, maxPrims int) *builder[T] {
	b := &builder[T]{
		indices:     indices[:faceCount*3],
		positions:   positions,
		adjacency:   adjacency,
		maxVerts:    maxVerts,
		maxPrims:    maxPrims,
		faceNormals: make([]mgl32.Vec3, faceCount),
		emitted:     bitset.New(faceCount),
		localStamp:  make([]uint32, vertexCount),
		local:       make([]uint32, vertexCount),
		queued:      make([]uint32, faceCount),
	}

	counts := make([]int, vertexCount+1)
	for face := range faceCount {
		i0, i1, i2 := b.corners(uint32(face))
		if hasSentinel(i0, i1, i2) {
			// Never placed in a meshlet.
			b.emitted.Set(face)
			continue
		}
		p0, p1, p2 := positions[i0], positions[i1], positions[i2]
		b.faceNormals[face] = geom.Normalize(geom.TriangleNormal(p0, p1, p2, false))
		if adjacency == nil {
			counts[i0+1]++
			counts[i1+1]++
			counts[i2+1]++
		}
	}

	if adjacency == nil {
		for v := 1; v <= vertexCount; v++ {
			counts[v] += counts[v-1]
		}
		b.vertFaceOffset = counts
		b.vertFaces = make([]uint32, counts[vertexCount])
		fill := make([]int, vertexCount)
		copy(fill, counts[:vertexCount])
		for face := range uint32(faceCount) {
			if b.emitted.IsSet(int(face)) {
				continue
			}
			i0, i1, i2 := b.corners(face)
			for _, i := range [3]T{i0, i1, i2} {
				b.vertFaces[fill[i]] = face
				fill[i]++
			}
		}
	}
	return b
}

func (b *builder[T]) corners(face uint32) (T, T, T) {
	return b.indices[face*3], b.indices[face*3+1], b.indices[face*3+2]
}

// build emits meshlets for every remaining face in [lo, hi).
func (b *builder[T]) build(lo, hi int) {
	cursor := lo
	seed := meshopt.Unused32
	for {
		if seed == meshopt.Unused32 {
			cursor = b.emitted.NextUnset(cursor)
			if cursor >= hi {
				return
			}
			seed = uint32(cursor)
		}
		seed = b.grow(seed, lo, hi)
	}
}

// grow fills one meshlet starting at seed and flushes it. It returns
// the face that did not fit, or Unused32 if the region ran out of
// candidates.
func (b *builder[T]) grow(seed uint32, lo, hi int) uint32 {
	b.reset()
	b.enqueue(seed)

	overflow := meshopt.Unused32
	for len(b.candidates) > 0 {
		k := b.best()
		face := b.candidates[k]
		b.candidates[k] = b.candidates[len(b.candidates)-1]
		b.candidates = b.candidates[:len(b.candidates)-1]

		if b.emitted.IsSet(int(face)) {
			continue
		}
		if !b.fits(face) {
			overflow = face
			break
		}
		b.add(face)
		b.expand(face, lo, hi)
	}
	b.flush()
	return overflow
}

func (b *builder[T]) reset() {
	b.gen++
	b.verts = b.verts[:0]
	b.prims = b.prims[:0]
	b.candidates = b.candidates[:0]
	b.normalSum = mgl32.Vec3{}
	b.center = mgl32.Vec3{}
	b.radius = 0
}

func (b *builder[T]) enqueue(face uint32) {
	if b.queued[face] == b.gen || b.emitted.IsSet(int(face)) {
		return
	}
	b.queued[face] = b.gen
	b.candidates = append(b.candidates, face)
}

func (b *builder[T]) isLocal(v T) bool {
	return b.localStamp[v] == b.gen
}

// newVertices returns how many distinct vertices of face are not yet
// in the meshlet.
func (b *builder[T]) newVertices(face uint32) int {
	i0, i1, i2 := b.corners(face)
	n := 0
	if !b.isLocal(i0) {
		n++
	}
	if !b.isLocal(i1) && i1 != i0 {
		n++
	}
	if !b.isLocal(i2) && i2 != i0 && i2 != i1 {
		n++
	}
	return n
}

func (b *builder[T]) fits(face uint32) bool {
	return len(b.prims)+1 <= b.maxPrims && len(b.verts)+b.newVertices(face) <= b.maxVerts
}

func (b *builder[T]) localIndex(v T) uint32 {
	if !b.isLocal(v) {
		b.localStamp[v] = b.gen
		b.local[v] = uint32(len(b.verts))
		b.verts = append(b.verts, v)
	}
	return b.local[v]
}

func (b *builder[T]) add(face uint32) {
	b.emitted.Set(int(face))
	i0, i1, i2 := b.corners(face)
	b.prims = append(b.prims, PackTriangle(b.localIndex(i0), b.localIndex(i1), b.localIndex(i2)))
	b.normalSum = b.normalSum.Add(b.faceNormals[face])

	var sum mgl32.Vec3
	for _, v := range b.verts {
		sum = sum.Add(b.positions[v])
	}
	b.center = sum.Mul(1 / float32(len(b.verts)))
	b.radius = 0
	for _, v := range b.verts {
		b.radius = max(b.radius, geom.Distance(b.positions[v], b.center))
	}
}

// expand queues the unemitted neighbours of face that lie in [lo, hi).
func (b *builder[T]) expand(face uint32, lo, hi int) {
	inRange := func(f uint32) bool { return int(f) >= lo && int(f) < hi }
	if b.adjacency != nil {
		for _, adj := range b.adjacency[face*3 : face*3+3] {
			if adj != meshopt.Unused32 && inRange(adj) {
				b.enqueue(adj)
			}
		}
		return
	}
	i0, i1, i2 := b.corners(face)
	for _, v := range [3]T{i0, i1, i2} {
		for _, f := range b.vertFaces[b.vertFaceOffset[v]:b.vertFaceOffset[v+1]] {
			if inRange(f) {
				b.enqueue(f)
			}
		}
	}
}

// best returns the position in candidates of the highest scoring face,
// breaking ties by lowest face index.
func (b *builder[T]) best() int {
	bestK, bestScore := 0, float32(math.Inf(-1))
	for k, face := range b.candidates {
		s := b.score(face)
		if s > bestScore || (s == bestScore && face < b.candidates[bestK]) {
			bestK, bestScore = k, s
		}
	}
	return bestK
}

func (b *builder[T]) score(face uint32) float32 {
	if len(b.verts) == 0 {
		return 0
	}
	i0, i1, i2 := b.corners(face)
	reuse := float32(3-b.newVertices(face)) / 3

	centroid := b.positions[i0].Add(b.positions[i1]).Add(b.positions[i2]).Mul(1.0 / 3)
	location := float32(1)
	if b.radius > 0 {
		location = 1 - min(geom.Distance(centroid, b.center)/(2*b.radius), 1)
	}

	orientation := float32(0.5)
	if axis := geom.Normalize(b.normalSum); axis != (mgl32.Vec3{}) {
		orientation = 0.5 * (1 + axis.Dot(b.faceNormals[face]))
	}
	return reuseWeight*reuse + locationWeight*location + orientationWeight*orientation
}

func (b *builder[T]) flush() {
	if len(b.prims) == 0 {
		return
	}
	b.out.Meshlets = append(b.out.Meshlets, Meshlet{
		VertCount:  uint32(len(b.verts)),
		VertOffset: uint32(len(b.out.UniqueVertexIB)),
		PrimCount:  uint32(len(b.prims)),
		PrimOffset: uint32(len(b.out.PrimitiveIndices)),
	})
	b.out.UniqueVertexIB = append(b.out.UniqueVertexIB, b.verts...)
	b.out.PrimitiveIndices = append(b.out.PrimitiveIndices, b.prims...)
}

func hasSentinel[T meshopt.Index](i0, i1, i2 T) bool {
	s := meshopt.Sentinel[T]()
	return i0 == s || i1 == s || i2 == s
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", meshopt.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func unexpected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", meshopt.ErrUnexpected, fmt.Sprintf(format, args...))
}

// validateMesh checks an index buffer and its position buffer.
func validateMesh[T meshopt.Index](indices []T, faceCount int, positions []mgl32.Vec3, vertexCount int) error {
	if indices == nil || positions == nil {
		return invalidArg("nil index or position buffer")
	}
	if faceCount <= 0 {
		return invalidArg("face count %d", faceCount)
	}
	if uint64(faceCount)*3 >= math.MaxUint32 {
		return fmt.Errorf("%w: %d faces", meshopt.ErrArithmeticOverflow, faceCount)
	}
	if len(indices) < faceCount*3 {
		return invalidArg("index buffer holds %d indices, need %d", len(indices), faceCount*3)
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
	sentinel := meshopt.Sentinel[T]()
	for j, i := range indices[:faceCount*3] {
		if i != sentinel && int(i) >= vertexCount {
			return unexpected("index %d at %d beyond %d vertices", i, j, vertexCount)
		}
	}
	return nil
}
