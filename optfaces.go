package meshopt

import (
	"math"
	"slices"

	"github.com/akmonengine/meshopt/internal/bitset"
)

const (
	// OptFacesVDefault is the cache size the default face ordering
	// policy targets. It is also the size ComputeVertexCacheMissRate is
	// usually evaluated with.
	OptFacesVDefault = 12
	// OptFacesVStripOrder selects strip ordering instead of cache
	// simulation.
	OptFacesVStripOrder = 0

	// MaxVertexCache is the largest simulated cache OptimizeFaces accepts.
	MaxVertexCache = 64
)

// Vertex scoring weights for the cache-aware ordering.
const (
	lastFaceScore    = 0.75
	cacheDecayPower  = 1.5
	valenceBoostBase = 2.0
	valenceBoostPow  = 0.5
)

// OptimizeFaces computes a face order with good post-transform vertex
// cache locality and writes it to faceRemap (faceRemap[new] = old).
//
// vertexCache is the size of the simulated cache; pass OptFacesVDefault
// unless the target hardware is known, or OptFacesVStripOrder to grow
// strips across the adjacency table instead. The order is deterministic:
// ties prefer a face sharing an edge with the face just emitted, then
// the lowest face index.
//
// Faces whose three indices are all sentinel are kept at the end of the
// new order in their original relative order.
func OptimizeFaces[T Index](indices []T, faceCount int, adjacency []uint32, faceRemap []uint32, vertexCache int) error {
	if err := checkFaces(indices, faceCount); err != nil {
		return err
	}
	if adjacency == nil || len(adjacency) < faceCount*3 {
		return invalidArg("adjacency buffer needs %d entries", faceCount*3)
	}
	if faceRemap == nil || len(faceRemap) < faceCount {
		return invalidArg("face remap needs %d entries", faceCount)
	}
	if vertexCache < 0 || vertexCache > MaxVertexCache {
		return invalidArg("vertex cache size %d", vertexCache)
	}
	for j, adj := range adjacency[:faceCount*3] {
		if adj != Unused32 && int(adj) >= faceCount {
			return unexpected("adjacency entry %d references face %d of %d", j, adj, faceCount)
		}
	}

	m := newFaceMesh(indices, faceCount, adjacency)
	var order []uint32
	if vertexCache == OptFacesVStripOrder {
		order = m.stripOrder()
	} else {
		order = m.cacheOrder(vertexCache)
	}
	copy(faceRemap, order)
	return nil
}

// faceMesh holds the topology views shared by both ordering policies.
// Vertices are renumbered densely over the ones the used faces
// reference, so memory follows the mesh rather than its largest index.
type faceMesh struct {
	faceCount int
	adjacency []uint32

	// Dense vertex id per corner, or Unused32 for a sentinel index.
	corners []uint32

	// Faces referencing each dense vertex, in compressed rows.
	vertFaceOffset []int
	vertFaces      []uint32

	used    *bitset.Set // faces taking part in the ordering
	unused  []uint32    // all-sentinel faces, ascending
	emitted *bitset.Set
}

func newFaceMesh[T Index](indices []T, faceCount int, adjacency []uint32) *faceMesh {
	m := &faceMesh{
		faceCount: faceCount,
		adjacency: adjacency[:faceCount*3],
		corners:   make([]uint32, faceCount*3),
		used:      bitset.New(faceCount),
		emitted:   bitset.New(faceCount),
	}

	sentinel := Sentinel[T]()
	var referenced []T
	for face := range faceCount {
		i0, i1, i2 := indices[face*3], indices[face*3+1], indices[face*3+2]
		if isUnusedFace(i0, i1, i2) {
			m.unused = append(m.unused, uint32(face))
			continue
		}
		m.used.Set(face)
		for _, i := range [3]T{i0, i1, i2} {
			if i != sentinel {
				referenced = append(referenced, i)
			}
		}
	}
	slices.Sort(referenced)
	referenced = slices.Compact(referenced)
	vertexCount := len(referenced)

	counts := make([]int, vertexCount+1)
	for face := range faceCount {
		for c := face * 3; c < face*3+3; c++ {
			m.corners[c] = Unused32
			if !m.used.IsSet(face) || indices[c] == sentinel {
				continue
			}
			v, _ := slices.BinarySearch(referenced, indices[c])
			m.corners[c] = uint32(v)
			counts[v+1]++
		}
	}
	for v := 1; v <= vertexCount; v++ {
		counts[v] += counts[v-1]
	}
	m.vertFaceOffset = counts
	m.vertFaces = make([]uint32, counts[vertexCount])
	fill := make([]int, vertexCount)
	copy(fill, counts[:vertexCount])
	for c, v := range m.corners {
		if v != Unused32 {
			m.vertFaces[fill[v]] = uint32(c / 3)
			fill[v]++
		}
	}
	return m
}

func (m *faceMesh) vertexCount() int { return len(m.vertFaceOffset) - 1 }

func (m *faceMesh) facesOf(v uint32) []uint32 {
	return m.vertFaces[m.vertFaceOffset[v]:m.vertFaceOffset[v+1]]
}

func (m *faceMesh) isAdjacent(a, b uint32) bool {
	adj := m.adjacency[a*3 : a*3+3]
	return adj[0] == b || adj[1] == b || adj[2] == b
}

// pending returns the number of used, not yet emitted neighbours of face.
func (m *faceMesh) pending(face uint32) int {
	n := 0
	for _, adj := range m.adjacency[face*3 : face*3+3] {
		if adj != Unused32 && m.used.IsSet(int(adj)) && !m.emitted.IsSet(int(adj)) {
			n++
		}
	}
	return n
}

// nextSeed returns the lowest used face not yet emitted, scanning from
// *cursor, or Unused32.
func (m *faceMesh) nextSeed(cursor *int) uint32 {
	for *cursor < m.faceCount {
		f := *cursor
		if m.used.IsSet(f) && !m.emitted.IsSet(f) {
			return uint32(f)
		}
		*cursor++
	}
	return Unused32
}

// stripOrder walks the adjacency table, always stepping to the
// unemitted neighbour with the fewest unemitted neighbours of its own,
// and starts a new strip at the lowest remaining face when stuck.
func (m *faceMesh) stripOrder() []uint32 {
	order := make([]uint32, 0, m.faceCount)
	usedCount := m.used.Count()
	cursor := 0
	cur := Unused32

	for len(order) < usedCount {
		if cur == Unused32 {
			cur = m.nextSeed(&cursor)
		}
		m.emitted.Set(int(cur))
		order = append(order, cur)

		next, nextPending := Unused32, math.MaxInt
		for _, adj := range m.adjacency[cur*3 : cur*3+3] {
			if adj == Unused32 || !m.used.IsSet(int(adj)) || m.emitted.IsSet(int(adj)) {
				continue
			}
			p := m.pending(adj)
			if p < nextPending || (p == nextPending && adj < next) {
				next, nextPending = adj, p
			}
		}
		cur = next
	}
	return append(order, m.unused...)
}

// lru is a small most-recently-used-first vertex cache.
type lru struct {
	entries []uint32
	pos     []int // cache position per vertex, or -1
	size    int
}

func newLRU(size, vertexCount int) *lru {
	c := &lru{entries: make([]uint32, 0, size+3), pos: make([]int, vertexCount), size: size}
	for i := range c.pos {
		c.pos[i] = -1
	}
	return c
}

// touch moves v to the front, evicting the oldest entry if the cache
// overflows.
func (c *lru) touch(v uint32) {
	if p := c.pos[v]; p >= 0 {
		copy(c.entries[1:p+1], c.entries[:p])
		c.entries[0] = v
	} else {
		c.entries = append(c.entries, 0)
		copy(c.entries[1:], c.entries[:len(c.entries)-1])
		c.entries[0] = v
		if len(c.entries) > c.size {
			evicted := c.entries[c.size]
			c.pos[evicted] = -1
			c.entries = c.entries[:c.size]
		}
	}
	for i, e := range c.entries {
		c.pos[e] = i
	}
}

// cacheOrder greedily emits the face whose vertices score highest given
// the simulated cache contents and how many faces still need each
// vertex.
func (m *faceMesh) cacheOrder(cacheSize int) []uint32 {
	order := make([]uint32, 0, m.faceCount)
	usedCount := m.used.Count()

	remaining := make([]int, m.vertexCount())
	for v := range remaining {
		remaining[v] = m.vertFaceOffset[v+1] - m.vertFaceOffset[v]
	}
	cache := newLRU(cacheSize, m.vertexCount())

	vertexScore := func(v uint32) float64 {
		if remaining[v] == 0 {
			return 0
		}
		var score float64
		if p := cache.pos[v]; p >= 0 {
			if p < 3 || cacheSize <= 3 {
				score = lastFaceScore
			} else {
				scaler := 1.0 / float64(cacheSize-3)
				score = math.Pow(1-float64(p-3)*scaler, cacheDecayPower)
			}
		}
		return score + valenceBoostBase*math.Pow(float64(remaining[v]), -valenceBoostPow)
	}
	faceScore := func(face uint32) float64 {
		var s float64
		for _, v := range m.corners[face*3 : face*3+3] {
			if v != Unused32 {
				s += vertexScore(v)
			}
		}
		return s
	}

	cursor := 0
	last := Unused32
	for len(order) < usedCount {
		best, bestScore, bestAdj := Unused32, math.Inf(-1), false
		for _, v := range cache.entries {
			for _, f := range m.facesOf(v) {
				if m.emitted.IsSet(int(f)) || f == best {
					continue
				}
				s := faceScore(f)
				adj := last != Unused32 && m.isAdjacent(last, f)
				switch {
				case s > bestScore:
				case s == bestScore && adj && !bestAdj:
				case s == bestScore && adj == bestAdj && f < best:
				default:
					continue
				}
				best, bestScore, bestAdj = f, s, adj
			}
		}
		if best == Unused32 {
			best = m.nextSeed(&cursor)
		}

		m.emitted.Set(int(best))
		order = append(order, best)
		for _, v := range m.corners[best*3 : best*3+3] {
			if v != Unused32 {
				remaining[v]--
				cache.touch(v)
			}
		}
		last = best
	}
	return append(order, m.unused...)
}
