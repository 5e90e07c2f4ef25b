package meshopt

import "math"

// ComputeVertexCacheMissRate replays an index buffer through a FIFO
// post-transform vertex cache of cacheSize entries and reports the
// average cache miss rate (misses per face) and the average transform
// to vertex ratio (misses per vertex).
//
// A miss inserts the vertex and evicts the oldest entry once the cache
// is full; a hit leaves the order unchanged. Sentinel indices are
// skipped. Invalid input yields -1 for both values.
func ComputeVertexCacheMissRate[T Index](indices []T, faceCount, vertexCount, cacheSize int) (acmr, atvr float32) {
	acmr, atvr = -1, -1
	if indices == nil || faceCount <= 0 || vertexCount <= 0 || cacheSize <= 0 {
		return
	}
	if uint64(vertexCount) >= uint64(Sentinel[T]()) {
		return
	}
	if uint64(faceCount)*3 >= math.MaxUint32 || len(indices) < faceCount*3 {
		return
	}

	sentinel := Sentinel[T]()
	fifo := make([]T, cacheSize)
	for i := range fifo {
		fifo[i] = sentinel
	}

	misses, tail := 0, 0
	for _, i := range indices[:faceCount*3] {
		if i == sentinel {
			continue
		}
		hit := false
		for _, c := range fifo {
			if c == i {
				hit = true
				break
			}
		}
		if hit {
			continue
		}
		misses++
		fifo[tail] = i
		tail++
		if tail == cacheSize {
			tail = 0
		}
	}

	return float32(misses) / float32(faceCount), float32(misses) / float32(vertexCount)
}
