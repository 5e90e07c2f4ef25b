package meshopt

// OptimizeVertices numbers vertices in order of first use, scanning the
// index buffer front to back, and writes vertexRemap[old] = new.
// Vertices no face references are remapped to Unused32; their count is
// returned as trailingUnused, since after CompactVB they occupy no
// slot at the end of the buffer.
func OptimizeVertices[T Index](indices []T, faceCount, vertexCount int, vertexRemap []uint32) (trailingUnused int, err error) {
	if err := checkFaces(indices, faceCount); err != nil {
		return 0, err
	}
	if vertexRemap == nil {
		return 0, invalidArg("nil vertex remap")
	}
	if err := checkVertices[T](vertexCount, 1); err != nil {
		return 0, err
	}
	if len(vertexRemap) < vertexCount {
		return 0, invalidArg("vertex remap needs %d entries", vertexCount)
	}

	sentinel := Sentinel[T]()
	for j := range faceCount * 3 {
		if i := indices[j]; i != sentinel && int(i) >= vertexCount {
			return 0, unexpected("index %d at %d beyond %d vertices", i, j, vertexCount)
		}
	}

	remap := vertexRemap[:vertexCount]
	for v := range remap {
		remap[v] = Unused32
	}

	var next uint32
	for _, i := range indices[:faceCount*3] {
		if i == sentinel || remap[i] != Unused32 {
			continue
		}
		remap[i] = next
		next++
	}
	return vertexCount - int(next), nil
}

// CompactVB copies each used vertex i of src to slot vertexRemap[i] of
// dst, dropping vertices remapped to Unused32. dst must hold
// vertexCount-trailingUnused vertices, and every target must fall in
// that range. dst must not overlap src.
func CompactVB(src []byte, stride, vertexCount, trailingUnused int, vertexRemap []uint32, dst []byte) error {
	if err := checkStride(src, stride, vertexCount); err != nil {
		return err
	}
	if vertexRemap == nil {
		return invalidArg("nil vertex remap")
	}
	if trailingUnused < 0 || trailingUnused > vertexCount {
		return invalidArg("%d trailing unused of %d vertices", trailingUnused, vertexCount)
	}
	if len(vertexRemap) < vertexCount {
		return invalidArg("vertex remap needs %d entries", vertexCount)
	}
	newVerts := vertexCount - trailingUnused
	if dst == nil || len(dst) < newVerts*stride {
		return invalidArg("destination vertex buffer too small")
	}
	if err := checkScatter(vertexRemap[:vertexCount], newVerts); err != nil {
		return err
	}

	for i := range vertexCount {
		if dest := vertexRemap[i]; dest != Unused32 {
			copy(dst[int(dest)*stride:int(dest+1)*stride], src[i*stride:(i+1)*stride])
		}
	}
	return nil
}
