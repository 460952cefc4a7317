package hal

import (
	"math"
	"math/rand/v2"
)

// AudioSource fills interleaved stereo input samples.
type AudioSource interface {
	Fill(dst []float32)
}

// AudioSink consumes interleaved stereo output samples.
type AudioSink interface {
	Write(samples []float32) error
}

// Silence is an AudioSource producing zeros.
type Silence struct{}

// Fill implements AudioSource.
func (Silence) Fill(dst []float32) { clear(dst) }

// Sine is a stereo sine tone.
type Sine struct {
	freq       float64
	sampleRate float64
	amplitude  float32
	phase      float64
}

// NewSine creates a sine source.
func NewSine(freq float64, sampleRate int, amplitude float32) *Sine {
	return &Sine{freq: freq, sampleRate: float64(sampleRate), amplitude: amplitude}
}

// Fill implements AudioSource.
func (s *Sine) Fill(dst []float32) {
	step := 2 * math.Pi * s.freq / s.sampleRate
	for i := 0; i+1 < len(dst); i += 2 {
		v := s.amplitude * float32(math.Sin(s.phase))
		dst[i], dst[i+1] = v, v
		s.phase += step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}

// Noise is a seeded white noise source.
type Noise struct {
	rng       *rand.Rand
	amplitude float32
}

// NewNoise creates a noise source.
func NewNoise(seed uint64, amplitude float32) *Noise {
	return &Noise{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), amplitude: amplitude}
}

// Fill implements AudioSource.
func (n *Noise) Fill(dst []float32) {
	for i := range dst {
		dst[i] = n.amplitude * (2*n.rng.Float32() - 1)
	}
}

// NullSink discards output.
type NullSink struct{}

// Write implements AudioSink.
func (NullSink) Write([]float32) error { return nil }

// Capture records output in memory, up to a limit.
type Capture struct {
	limit   int
	samples []float32
}

// NewCapture creates a Capture keeping at most limit samples.
func NewCapture(limit int) *Capture {
	return &Capture{limit: limit, samples: make([]float32, 0, limit)}
}

// Write implements AudioSink.
func (c *Capture) Write(samples []float32) error {
	room := c.limit - len(c.samples)
	if room > 0 {
		c.samples = append(c.samples, samples[:min(room, len(samples))]...)
	}
	return nil
}

// Samples returns the captured samples.
func (c *Capture) Samples() []float32 { return c.samples }

// Reset drops captured samples.
func (c *Capture) Reset() { c.samples = c.samples[:0] }
