// Package rng is the single random stream behind world generation.
//
// The generator is a 32-bit LCG so the same seed yields the same sequence on any
// platform with 32-bit unsigned wraparound. Every stage draws from one Source in a
// fixed order; adding or reordering a draw changes every world.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

const (
	lcgMul = 1664525
	lcgInc = 1013904223
	twoP32 = 1 << 32
)

type Source struct {
	state uint32
	draws uint64
}

func New(seed int64) *Source {
	return &Source{state: uint32(seed) ^ uint32(uint64(seed)>>32)}
}

// NewSeed picks a seed for callers that did not supply one.
func NewSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

// Next returns a value in [0,1).
func (s *Source) Next() float64 {
	s.state = s.state*lcgMul + lcgInc
	s.draws++
	return float64(s.state) / twoP32
}

func (s *Source) Range(min, max float64) float64 {
	if max <= min {
		s.Next()
		return min
	}
	return min + s.Next()*(max-min)
}

// Intn returns a value in [0,n). n <= 0 yields 0 but still consumes a draw.
func (s *Source) Intn(n int) int {
	v := s.Next()
	if n <= 0 {
		return 0
	}
	i := int(v * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

func (s *Source) Chance(p float64) bool {
	return s.Next() < p
}

// Draws reports how many values have been consumed.
func (s *Source) Draws() uint64 {
	return s.draws
}
