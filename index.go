// Package meshopt reworks triangle-mesh index and vertex buffers for
// GPU rendering efficiency.
//
// Every operation works over caller-owned buffers: an index buffer of
// triangle triples plus a vertex count. Index buffers may be 16-bit or
// 32-bit; both run through the same generic code. The maximum value of
// the index type is reserved as a sentinel meaning "unused", and a face
// whose three indices are all sentinel is preserved verbatim by every
// transform.
//
// Remap arrays (vertex remaps, face remaps, adjacency, point
// representatives) are always []uint32 and use Unused32 for "absent",
// whatever the index width. Vertex remaps map old to new:
//
//	vertexRemap[oldVertex] = newVertex | Unused32
//
// while face remaps map new to old:
//
//	faceRemap[newFace] = oldFace | Unused32
//
// The package does not retain state between calls and never spawns
// goroutines; concurrent calls over disjoint buffers are safe.
package meshopt

// Index is the set of index buffer element types.
type Index interface {
	~uint16 | ~uint32
}

// Unused32 marks an absent entry in remap, adjacency and
// point-representative arrays.
const Unused32 = ^uint32(0)

// Sentinel returns the reserved "unused" value for index type T.
func Sentinel[T Index]() T { return ^T(0) }

// maxStride is the largest vertex stride accepted by the vertex buffer
// operations, matching the D3D multi-element structure limit.
const maxStride = 2048

// isUnusedFace reports whether all three indices of a face are the
// sentinel.
func isUnusedFace[T Index](i0, i1, i2 T) bool {
	s := Sentinel[T]()
	return i0 == s && i1 == s && i2 == s
}

// hasSentinel reports whether any index of a face is the sentinel.
func hasSentinel[T Index](i0, i1, i2 T) bool {
	s := Sentinel[T]()
	return i0 == s || i1 == s || i2 == s
}
