package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed)) //nolint:gosec // deterministic test data
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Bool returns a pseudo-random bool.
func (r *RNG) Bool() bool {
	return r.Intn(2) == 1
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillNoise fills dst with uniform noise in [-amp, amp).
// Locks only once per call.
func (r *RNG) FillNoise(dst []float32, amp float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = (r.rand.Float32()*2 - 1) * amp
	}
}

// Sine fills an interleaved stereo buffer with a sine of freq Hz on both
// channels, starting at sample index start. It returns the next start index.
func Sine(dst []float32, freq, sampleRate float64, start int) int {
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		v := float32(math.Sin(2 * math.Pi * freq * float64(start+i) / sampleRate))
		dst[2*i] = v
		dst[2*i+1] = v
	}
	return start + frames
}

// Interleave writes left and right into dst as L,R,L,R...
func Interleave(dst, left, right []float32) {
	for i := range left {
		dst[2*i] = left[i]
		dst[2*i+1] = right[i]
	}
}

// Deinterleave splits an interleaved stereo buffer.
func Deinterleave(src []float32) (left, right []float32) {
	n := len(src) / 2
	left = make([]float32, n)
	right = make([]float32, n)
	for i := 0; i < n; i++ {
		left[i] = src[2*i]
		right[i] = src[2*i+1]
	}
	return left, right
}

// AllZero reports whether every sample in buf is exactly zero.
func AllZero(buf []float32) bool {
	for _, v := range buf {
		if v != 0 {
			return false
		}
	}
	return true
}
