package utils

import (
	"math/rand"
	"sync"
	"time"
)

// RandSource is a thread-safe random number generator
type RandSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed.
// A zero seed selects a time-based seed.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// FixedSource replays a fixed sequence of values, cycling when exhausted.
// An empty sequence always yields 0. It is safe for concurrent use, though
// the order values are handed out across goroutines is then unspecified.
type FixedSource struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewFixedSource creates a source that returns values in order.
func NewFixedSource(values ...float64) *FixedSource {
	v := make([]float64, len(values))
	copy(v, values)
	return &FixedSource{values: v}
}

// Float64 returns the next value of the sequence.
func (f *FixedSource) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return 0
	}
	v := f.values[f.next]
	f.next = (f.next + 1) % len(f.values)
	return v
}

// Draws returns how many values have been handed out modulo the sequence length.
func (f *FixedSource) Draws() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

// Global default random source
var (
	defaultMu   sync.RWMutex
	defaultRand = NewRandSource(0)
)

// SetSeed sets the seed for the default random source
func SetSeed(seed int64) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRand = NewRandSource(seed)
}

// Default returns the default random source
func Default() *RandSource {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRand
}

// Float64 returns a random float64 from the default source
func Float64() float64 {
	return Default().Float64()
}
