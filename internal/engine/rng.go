// Package engine holds the random sources every generator and the combat
// resolver draw from.
//
// All generation logic consumes the Source interface only. A true random
// source and a seeded linear congruential generator both satisfy it, so the
// random and the deterministic code paths are the same code.
package engine

import (
	"math"
	"math/rand"
	"sync"
	"time"
	"unicode/utf16"
)

// Source yields floats uniformly distributed in [0, 1).
type Source interface {
	Float64() float64
}

type randSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *randSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// NewRNG returns a time-seeded source safe for concurrent use.
func NewRNG() Source { return NewRandSource(time.Now().UnixNano()) }

// NewRandSource returns a math/rand backed source with a fixed seed.
func NewRandSource(seed int64) Source {
	return &randSource{r: rand.New(rand.NewSource(seed))}
}

// LCG is a 32-bit linear congruential generator. Two LCGs built from the same
// seed produce the same sequence on every platform.
type LCG struct {
	state uint32
}

// NewLCG seeds a generator.
func NewLCG(seed uint32) *LCG { return &LCG{state: seed} }

// Float64 advances the generator.
func (l *LCG) Float64() float64 {
	l.state = l.state*1664525 + 1013904223
	return float64(l.state) / 4294967296.0
}

// Derive returns the sub-stream for seed+offset. Generators give every
// positional choice its own offset so inserting a draw in one place never
// shifts the values seen elsewhere.
func Derive(seed int64, offset int) Source {
	return NewLCG(mix(uint32(seed + int64(offset))))
}

// mix is the murmur3 32-bit finalizer. Neighbouring seeds must not start
// neighbouring LCG sequences.
func mix(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x
}

// FromFloat builds a sub-stream from a normalized seed in [0,1) and an index.
func FromFloat(seed float64, index int) Source {
	base := int64(math.Floor(seed * 4294967296.0))
	return Derive(base, index*7919)
}

// HashSeed folds s into a non-negative 32-bit seed:
// h = (h<<5) - h + code, wrapped to int32 per UTF-16 code unit, then |h|.
func HashSeed(s string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Sequence replays a fixed list of draws, cycling when exhausted. It backs
// replayed simulations and tests that need exact rolls.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence returns a Sequence over values. An empty list always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Float64 returns the next value.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Between draws uniformly from [lo, hi).
func Between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Intn draws an index in [0, n). n must be positive.
func Intn(src Source, n int) int {
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Chance reports whether a draw lands under p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](src Source, items []T) T {
	return items[Intn(src, len(items))]
}
