package ramp

import (
	"math"
	"time"
)

// Mode selects the ramp curve.
type Mode uint8

const (
	// Linear moves by a constant step per sample.
	Linear Mode = iota
	// Exponential approaches the destination with a one-pole curve and
	// snaps to it when the ramp time has elapsed.
	Exponential
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// ParseMode parses "linear" or "exponential".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "linear", "":
		return Linear, true
	case "exponential", "exp":
		return Exponential, true
	default:
		return Linear, false
	}
}

// residual is the fraction of a jump left when an exponential ramp snaps.
const residual = 1e-3

// Samples converts a ramp duration to a sample count. Non-positive inputs give 0.
func Samples(d time.Duration, sampleRate int) int {
	if d <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}

// Value pairs a starting value with a destination.
type Value struct {
	Value       float32
	Destination float32
}

// Ramp is a per-sample parameter smoother.
// The zero value is a Linear ramp with zero ramp time (jumps immediately).
type Ramp struct {
	current     float32
	destination float32
	increment   float32 // per-sample step (Linear) or pole coefficient (Exponential)
	remaining   int
	rampSamples int
	mode        Mode
}

// New returns a ramp at 0 that takes rampSamples samples for any jump.
func New(mode Mode, rampSamples int) Ramp {
	if rampSamples < 0 {
		rampSamples = 0
	}
	return Ramp{mode: mode, rampSamples: rampSamples}
}

// SetDestination retargets the ramp. The full ramp time starts again from the
// current value.
func (r *Ramp) SetDestination(v float32) {
	r.destination = v
	if r.rampSamples == 0 || v == r.current {
		r.current = v
		r.remaining = 0
		r.increment = 0
		return
	}

	r.remaining = r.rampSamples
	switch r.mode {
	case Exponential:
		r.increment = float32(1 - math.Pow(residual, 1/float64(r.rampSamples)))
	default:
		r.increment = (v - r.current) / float32(r.rampSamples)
	}
}

// Reset jumps to value and ramps toward destination.
func (r *Ramp) Reset(value, destination float32) {
	r.current = value
	r.SetDestination(destination)
}

// ResetTo applies a Value pair.
func (r *Ramp) ResetTo(v Value) {
	r.Reset(v.Value, v.Destination)
}

// Tick advances one sample and returns the new current value.
func (r *Ramp) Tick() float32 {
	if r.remaining == 0 {
		return r.current
	}

	r.remaining--
	if r.remaining == 0 {
		r.current = r.destination
		return r.current
	}

	switch r.mode {
	case Exponential:
		r.current += (r.destination - r.current) * r.increment
	default:
		next := r.current + r.increment
		if (r.increment > 0 && next > r.destination) || (r.increment < 0 && next < r.destination) {
			next = r.destination
		}
		r.current = next
	}
	return r.current
}

// Current returns the current value without advancing.
func (r *Ramp) Current() float32 { return r.current }

// Destination returns the target value.
func (r *Ramp) Destination() float32 { return r.destination }

// Active reports whether the ramp is still moving.
func (r *Ramp) Active() bool { return r.remaining > 0 }

// Remaining returns the number of samples until the destination is reached.
func (r *Ramp) Remaining() int { return r.remaining }

// RampSamples returns the configured ramp length in samples.
func (r *Ramp) RampSamples() int { return r.rampSamples }

// Mode returns the ramp curve.
func (r *Ramp) Mode() Mode { return r.mode }
