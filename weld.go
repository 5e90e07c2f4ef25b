package meshopt

// WeldTest reports whether two vertices sharing a point representative
// are equal in every attribute that matters and may be merged. It is
// called with v0 < v1.
type WeldTest func(v0, v1 uint32) bool

// WeldVertices merges vertices that share a point representative and
// that weld accepts, then rewrites indices in place to reference the
// lowest-numbered vertex of each merged group.
//
// weld is only called for pairs within one point-rep group, at most
// once per pair, and never for a pair already known to be merged
// through other pairs. Vertices whose point rep is Unused32 are never
// merged.
//
// If vertexRemap is non-nil it receives, for every vertex, the vertex
// it was merged into (itself when not merged).
//
// changed reports whether any index value was rewritten.
func WeldVertices[T Index](indices []T, faceCount, vertexCount int, pointReps []uint32, vertexRemap []uint32, weld WeldTest) (changed bool, err error) {
	if err := checkFaces(indices, faceCount); err != nil {
		return false, err
	}
	if pointReps == nil {
		return false, invalidArg("nil point-rep buffer")
	}
	if weld == nil {
		return false, invalidArg("nil weld test")
	}
	if err := checkVertices[T](vertexCount, 1); err != nil {
		return false, err
	}
	if len(pointReps) < vertexCount {
		return false, invalidArg("point-rep buffer needs %d entries", vertexCount)
	}
	if vertexRemap != nil && len(vertexRemap) < vertexCount {
		return false, invalidArg("vertex remap needs %d entries", vertexCount)
	}
	for v, rep := range pointReps[:vertexCount] {
		if rep != Unused32 && int(rep) >= vertexCount {
			return false, unexpected("point rep of vertex %d is %d, beyond %d vertices", v, rep, vertexCount)
		}
	}
	sentinel := Sentinel[T]()
	for j := range faceCount * 3 {
		if i := indices[j]; i != sentinel && int(i) >= vertexCount {
			return false, unexpected("index %d at %d beyond %d vertices", i, j, vertexCount)
		}
	}

	// Group vertices by point rep in ascending order, linked through
	// next; head holds the first member of each group.
	head := make([]uint32, vertexCount)
	tail := make([]uint32, vertexCount)
	next := make([]uint32, vertexCount)
	for v := range head {
		head[v], tail[v], next[v] = Unused32, Unused32, Unused32
	}
	for v := range uint32(vertexCount) {
		rep := pointReps[v]
		if rep == Unused32 {
			continue
		}
		if head[rep] == Unused32 {
			head[rep] = v
		} else {
			next[tail[rep]] = v
		}
		tail[rep] = v
	}

	sets := newDisjointSet(vertexCount)
	merged := false
	for rep := range head {
		for v0 := head[rep]; v0 != Unused32; v0 = next[v0] {
			for v1 := next[v0]; v1 != Unused32; v1 = next[v1] {
				if sets.find(v0) == sets.find(v1) {
					continue
				}
				if weld(v0, v1) {
					sets.union(v0, v1)
					merged = true
				}
			}
		}
	}

	if vertexRemap != nil {
		for v := range uint32(vertexCount) {
			vertexRemap[v] = sets.find(v)
		}
	}
	if !merged {
		return false, nil
	}

	for j, i := range indices[:faceCount*3] {
		if i == sentinel {
			continue
		}
		if root := T(sets.find(uint32(i))); root != i {
			indices[j] = root
			changed = true
		}
	}
	return changed, nil
}

// disjointSet is a union-find forest whose roots are always the lowest
// member of their set.
type disjointSet struct {
	parent []uint32
}

func newDisjointSet(n int) *disjointSet {
	d := &disjointSet{parent: make([]uint32, n)}
	for i := range d.parent {
		d.parent[i] = uint32(i)
	}
	return d
}

func (d *disjointSet) find(v uint32) uint32 {
	root := v
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[v] != root {
		d.parent[v], v = root, d.parent[v]
	}
	return root
}

func (d *disjointSet) union(a, b uint32) {
	ra, rb := d.find(a), d.find(b)
	switch {
	case ra < rb:
		d.parent[rb] = ra
	case rb < ra:
		d.parent[ra] = rb
	}
}
