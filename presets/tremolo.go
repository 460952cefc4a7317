package presets

import (
	"math"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/ramp"
)

const (
	tremoloMinHz = 0.5
	tremoloMaxHz = 12
)

// Tremolo modulates the amplitude of both channels with a sine LFO.
// Knob 0 sets the rate, knob 1 the depth.
type Tremolo struct {
	group arena.Group
	state []float64 // phase, increment

	rate  *ramp.Ramp
	depth *ramp.Ramp
	sr    float64
}

// Allocate implements module.Module.
func (t *Tremolo) Allocate(env *module.Env) error {
	a, err := env.Arena("")
	if err != nil {
		return err
	}
	h, err := t.group.Alloc(a, 2*8)
	if err != nil {
		return err
	}
	t.state, err = arena.Slice[float64](a, h)
	if err != nil {
		return err
	}
	t.state[0], t.state[1] = 0, 0

	t.rate = env.Knob(0)
	t.depth = env.Knob(1)
	t.sr = float64(env.SampleRate)
	return nil
}

// AdvanceControlRate recomputes the phase increment from the rate knob.
func (t *Tremolo) AdvanceControlRate(*module.Env) {
	if t.sr <= 0 {
		return
	}
	hz := tremoloMinHz + float64(knob(t.rate, 0.3))*(tremoloMaxHz-tremoloMinHz)
	t.state[1] = 2 * math.Pi * hz / t.sr
}

// ProcessSample implements module.Module for mono use.
func (t *Tremolo) ProcessSample(in float32) float32 {
	return in * t.step()
}

// ProcessStereo implements module.StereoProcessor.
func (t *Tremolo) ProcessStereo(left, right float32) (float32, float32) {
	g := t.step()
	return left * g, right * g
}

func (t *Tremolo) step() float32 {
	depth := knob(t.depth, 0.6)
	g := 1 - depth*0.5*(1-float32(math.Sin(t.state[0])))
	t.state[0] += t.state[1]
	if t.state[0] >= 2*math.Pi {
		t.state[0] -= 2 * math.Pi
	}
	return g
}

// Release implements module.Module.
func (t *Tremolo) Release(*module.Env) error {
	t.state = nil
	t.rate, t.depth = nil, nil
	return t.group.ReleaseAll()
}

// Name implements module.Namer.
func (t *Tremolo) Name() string { return "tremolo" }
