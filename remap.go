package meshopt

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/akmonengine/meshopt/internal/bitset"
)

// Subset is a contiguous run of faces sharing one attribute value.
type Subset struct {
	Offset int
	Count  int
}

// FinalizeIB applies a vertex remap to an index buffer, writing
// dst[j] = vertexRemap[indices[j]] for every index of the first
// faceCount faces. Sentinel indices are copied unchanged.
//
// vertexCount is the length of the remap domain; every referenced
// vertex must be below it and must map to a new index below it.
// Nothing is written if an error is returned.
func FinalizeIB[T Index](indices []T, faceCount int, vertexRemap []uint32, vertexCount int, dst []T) error {
	if err := checkFaces(indices, faceCount); err != nil {
		return err
	}
	if vertexRemap == nil {
		return invalidArg("nil vertex remap")
	}
	if err := checkVertices[T](vertexCount, 1); err != nil {
		return err
	}
	if len(vertexRemap) < vertexCount {
		return invalidArg("vertex remap holds %d entries, need %d", len(vertexRemap), vertexCount)
	}
	if dst == nil || len(dst) < faceCount*3 {
		return invalidArg("destination index buffer too small")
	}

	sentinel := Sentinel[T]()
	n := faceCount * 3
	for j := range n {
		i := indices[j]
		if i == sentinel {
			continue
		}
		if int(i) >= vertexCount {
			return unexpected("index %d at %d beyond %d vertices", i, j, vertexCount)
		}
		dest := vertexRemap[i]
		if dest == Unused32 {
			return unexpected("vertex %d is referenced but remapped as unused", i)
		}
		if int(dest) >= vertexCount {
			return unexpected("vertex %d remapped to %d beyond %d vertices", i, dest, vertexCount)
		}
	}

	// Every element is read before it is written, so dst may alias
	// indices.
	for j := range n {
		if i := indices[j]; i != sentinel {
			dst[j] = T(vertexRemap[i])
		} else {
			dst[j] = sentinel
		}
	}
	return nil
}

// FinalizeIBInPlace is FinalizeIB with the index buffer as its own
// destination.
func FinalizeIBInPlace[T Index](indices []T, faceCount int, vertexRemap []uint32, vertexCount int) error {
	return FinalizeIB(indices, faceCount, vertexRemap, vertexCount, indices)
}

// ReorderIB writes the faces of indices in the order given by
// faceRemap: output face i is input face faceRemap[i]. An Unused32
// entry produces an all-sentinel face.
// dst must not overlap indices; use ReorderIBInPlace for that.
func ReorderIB[T Index](indices []T, faceCount int, faceRemap []uint32, dst []T) error {
	if err := checkFaces(indices, faceCount); err != nil {
		return err
	}
	if faceRemap == nil {
		return invalidArg("nil face remap")
	}
	if len(faceRemap) < faceCount {
		return invalidArg("face remap holds %d entries, need %d", len(faceRemap), faceCount)
	}
	if dst == nil || len(dst) < faceCount*3 {
		return invalidArg("destination index buffer too small")
	}
	for j := range faceCount {
		if src := faceRemap[j]; src != Unused32 && int(src) >= faceCount {
			return unexpected("face remap entry %d references face %d of %d", j, src, faceCount)
		}
	}

	sentinel := Sentinel[T]()
	for j := range faceCount {
		src := faceRemap[j]
		if src == Unused32 {
			dst[j*3], dst[j*3+1], dst[j*3+2] = sentinel, sentinel, sentinel
			continue
		}
		copy(dst[j*3:j*3+3], indices[src*3:src*3+3])
	}
	return nil
}

// ReorderIBInPlace is ReorderIB with the index buffer as its own
// destination. Faces are read from a copy of the buffer.
func ReorderIBInPlace[T Index](indices []T, faceCount int, faceRemap []uint32) error {
	if err := checkFaces(indices, faceCount); err != nil {
		return err
	}
	src := slices.Clone(indices[:faceCount*3])
	return ReorderIB(src, faceCount, faceRemap, indices)
}

// FinalizeVB scatters vertices into their remapped slots: vertex i of
// src is copied to slot vertexRemap[i] of dst, or dropped when the
// entry is Unused32.
//
// dupVerts lists source vertices to emit a second time; duplicate k
// copies src vertex dupVerts[k] to slot vertexRemap[vertexCount+k].
// dst must hold vertexCount+len(dupVerts) vertices and must not
// overlap src. Slots no entry targets are left untouched.
func FinalizeVB(src []byte, stride, vertexCount int, dupVerts []uint32, vertexRemap []uint32, dst []byte) error {
	if err := checkStride(src, stride, vertexCount); err != nil {
		return err
	}
	if vertexRemap == nil {
		return invalidArg("nil vertex remap")
	}
	newVerts := uint64(vertexCount) + uint64(len(dupVerts))
	if newVerts >= math.MaxUint32 {
		return fmt.Errorf("%w: %d vertices plus %d duplicates", ErrArithmeticOverflow, vertexCount, len(dupVerts))
	}
	if newVerts*uint64(stride) > math.MaxUint32 {
		return fmt.Errorf("%w: %d vertices of %d bytes", ErrArithmeticOverflow, newVerts, stride)
	}
	total := int(newVerts)
	if len(vertexRemap) < total {
		return invalidArg("vertex remap holds %d entries, need %d", len(vertexRemap), total)
	}
	if dst == nil || len(dst) < total*stride {
		return invalidArg("destination vertex buffer too small")
	}
	for k, d := range dupVerts {
		if int(d) >= vertexCount {
			return unexpected("duplicate %d references vertex %d of %d", k, d, vertexCount)
		}
	}
	if err := checkScatter(vertexRemap[:total], total); err != nil {
		return err
	}

	for i := range vertexCount {
		if dest := vertexRemap[i]; dest != Unused32 {
			copy(dst[int(dest)*stride:int(dest+1)*stride], src[i*stride:(i+1)*stride])
		}
	}
	for k, d := range dupVerts {
		if dest := vertexRemap[vertexCount+k]; dest != Unused32 {
			copy(dst[int(dest)*stride:int(dest+1)*stride], src[int(d)*stride:int(d+1)*stride])
		}
	}
	return nil
}

// FinalizeVBInPlace permutes a vertex buffer by vertexRemap without a
// separate destination. Vertices remapped as Unused32 are discarded,
// and slots no entry targets keep their previous contents.
func FinalizeVBInPlace(vb []byte, stride, vertexCount int, vertexRemap []uint32) error {
	if err := checkStride(vb, stride, vertexCount); err != nil {
		return err
	}
	if vertexRemap == nil {
		return invalidArg("nil vertex remap")
	}
	if len(vertexRemap) < vertexCount {
		return invalidArg("vertex remap holds %d entries, need %d", len(vertexRemap), vertexCount)
	}
	if err := checkScatter(vertexRemap[:vertexCount], vertexCount); err != nil {
		return err
	}

	src := slices.Clone(vb[:vertexCount*stride])
	for i := range vertexCount {
		if dest := vertexRemap[i]; dest != Unused32 {
			copy(vb[int(dest)*stride:int(dest+1)*stride], src[i*stride:(i+1)*stride])
		}
	}
	return nil
}

// checkScatter verifies that every non-sentinel remap target is below
// limit and is used at most once.
func checkScatter(remap []uint32, limit int) error {
	seen := bitset.New(limit)
	for i, dest := range remap {
		if dest == Unused32 {
			continue
		}
		if int(dest) >= limit {
			return unexpected("vertex %d remapped to %d beyond %d slots", i, dest, limit)
		}
		if !seen.Set(int(dest)) {
			return unexpected("vertex %d remapped to slot %d already in use", i, dest)
		}
	}
	return nil
}

// AttributeSort stably sorts faces by attribute. attributes is
// rewritten in sorted order and faceRemap receives, for each sorted
// position, the original face index. Faces with equal attributes keep
// their original relative order.
func AttributeSort(faceCount int, attributes []uint32, faceRemap []uint32) error {
	if faceCount <= 0 || uint64(faceCount) >= math.MaxUint32 {
		return invalidArg("face count %d", faceCount)
	}
	if attributes == nil || len(attributes) < faceCount {
		return invalidArg("attribute buffer too small")
	}
	if faceRemap == nil || len(faceRemap) < faceCount {
		return invalidArg("face remap too small")
	}

	type entry struct {
		attr uint32
		face uint32
	}
	list := make([]entry, faceCount)
	for j := range faceCount {
		list[j] = entry{attr: attributes[j], face: uint32(j)}
	}
	slices.SortStableFunc(list, func(a, b entry) int {
		return cmp.Compare(a.attr, b.attr)
	})

	for j, e := range list {
		attributes[j] = e.attr
		faceRemap[j] = e.face
	}
	return nil
}

// ComputeSubsets scans per-face attributes and returns one Subset per
// maximal run of equal adjacent values. Runs are not merged across
// gaps: [1,1,2,1] yields three subsets.
//
// A nil attributes slice yields a single subset covering every face,
// and a zero face count yields none. So do non-nil attributes holding
// fewer than faceCount entries.
func ComputeSubsets(attributes []uint32, faceCount int) []Subset {
	if faceCount <= 0 {
		return nil
	}
	if attributes == nil {
		return []Subset{{Offset: 0, Count: faceCount}}
	}
	if len(attributes) < faceCount {
		return nil
	}

	var subsets []Subset
	last, offset := attributes[0], 0
	for j := 1; j < faceCount; j++ {
		if attributes[j] != last {
			subsets = append(subsets, Subset{Offset: offset, Count: j - offset})
			last, offset = attributes[j], j
		}
	}
	return append(subsets, Subset{Offset: offset, Count: faceCount - offset})
}
