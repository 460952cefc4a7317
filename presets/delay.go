package presets

import (
	"fmt"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/ramp"
)

// Delay is a stereo feedback delay. Knob 0 sets the time, knob 1 the
// feedback and knob 2 the wet mix.
type Delay struct {
	// Pool is the arena holding the delay lines; empty uses the default pool.
	Pool string
	// MaxSeconds bounds the delay time.
	MaxSeconds float64

	group arena.Group
	left  []float32
	right []float32
	pos   int
	delay int

	time     *ramp.Ramp
	feedback *ramp.Ramp
	mix      *ramp.Ramp
}

// Allocate implements module.Module.
func (d *Delay) Allocate(env *module.Env) error {
	a, err := env.Arena(d.Pool)
	if err != nil {
		return err
	}

	n := int(d.MaxSeconds * float64(env.SampleRate))
	if n <= 0 {
		return fmt.Errorf("delay: invalid length %d", n)
	}
	if d.left, err = d.group.AllocFloat32s(a, n); err != nil {
		return err
	}
	if d.right, err = d.group.AllocFloat32s(a, n); err != nil {
		return err
	}
	// Lines must start silent even when clear-on-allocation is off.
	clear(d.left)
	clear(d.right)

	d.pos = 0
	d.time = env.Knob(0)
	d.feedback = env.Knob(1)
	d.mix = env.Knob(2)
	d.AdvanceControlRate(env)
	return nil
}

// AdvanceControlRate updates the delay time from knob 0.
func (d *Delay) AdvanceControlRate(*module.Env) {
	n := len(d.left)
	if n == 0 {
		return
	}
	d.delay = 1 + int(knob(d.time, 0.3)*float32(n-1))
}

// ProcessSample implements module.Module for mono use; it feeds the left line.
func (d *Delay) ProcessSample(in float32) float32 {
	out, _ := d.ProcessStereo(in, 0)
	return out
}

// ProcessStereo implements module.StereoProcessor.
func (d *Delay) ProcessStereo(left, right float32) (float32, float32) {
	n := len(d.left)
	read := d.pos - d.delay
	if read < 0 {
		read += n
	}

	fb := knob(d.feedback, 0.4)
	mix := knob(d.mix, 0.35)

	dl, dr := d.left[read], d.right[read]
	d.left[d.pos] = left + dl*fb
	d.right[d.pos] = right + dr*fb

	d.pos++
	if d.pos == n {
		d.pos = 0
	}
	return left*(1-mix) + dl*mix, right*(1-mix) + dr*mix
}

// Release implements module.Module.
func (d *Delay) Release(*module.Env) error {
	d.left, d.right = nil, nil
	d.time, d.feedback, d.mix = nil, nil, nil
	return d.group.ReleaseAll()
}

// Name implements module.Namer.
func (d *Delay) Name() string { return "delay" }
