// Package bitset defines a fixed-size bit vector used to track
// per-vertex and per-face state (seen, used, emitted) without
// allocating a bool per element.
package bitset

import "math/bits"

const wordBits = 64

// Set is a fixed-size bit vector.
// The zero value is an empty set of length 0.
type Set struct {
	w   []uint64
	n   int
	cnt int
}

// New returns a set able to hold n bits, all unset.
func New(n int) *Set {
	if n < 0 {
		n = 0
	}
	return &Set{w: make([]uint64, (n+wordBits-1)/wordBits), n: n}
}

// Len returns the number of bits in the set.
func (s *Set) Len() int { return s.n }

// Count returns the number of set bits.
func (s *Set) Count() int { return s.cnt }

// Set sets a given bit.
// It reports whether the bit was previously unset.
func (s *Set) Set(index int) bool {
	i, b := index/wordBits, uint64(1)<<(index&(wordBits-1))
	if s.w[i]&b != 0 {
		return false
	}
	s.w[i] |= b
	s.cnt++
	return true
}

// Unset unsets a given bit.
func (s *Set) Unset(index int) {
	i, b := index/wordBits, uint64(1)<<(index&(wordBits-1))
	if s.w[i]&b != 0 {
		s.w[i] &^= b
		s.cnt--
	}
}

// IsSet checks whether a given bit is set.
func (s *Set) IsSet(index int) bool {
	return s.w[index/wordBits]&(1<<(index&(wordBits-1))) != 0
}

// NextUnset returns the first unset bit at or after from.
// It returns Len() if there is none.
func (s *Set) NextUnset(from int) int {
	if from >= s.n {
		return s.n
	}
	i := from / wordBits
	x := ^s.w[i] &^ (1<<(from&(wordBits-1)) - 1)
	for {
		if x != 0 {
			idx := i*wordBits + bits.TrailingZeros64(x)
			return min(idx, s.n)
		}
		i++
		if i == len(s.w) {
			return s.n
		}
		x = ^s.w[i]
	}
}

// Clear unsets every bit in the set.
func (s *Set) Clear() {
	if s.cnt == 0 {
		return
	}
	clear(s.w)
	s.cnt = 0
}
