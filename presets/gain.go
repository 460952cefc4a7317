package presets

import (
	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/ramp"
)

// Gain scales the signal by twice knob 0.
type Gain struct {
	level *ramp.Ramp
}

// Allocate implements module.Module.
func (g *Gain) Allocate(env *module.Env) error {
	g.level = env.Knob(0)
	return nil
}

// AdvanceControlRate implements module.Module.
func (g *Gain) AdvanceControlRate(*module.Env) {}

// ProcessSample implements module.Module.
func (g *Gain) ProcessSample(in float32) float32 {
	return in * 2 * knob(g.level, 0.5)
}

// Release implements module.Module.
func (g *Gain) Release(*module.Env) error {
	g.level = nil
	return nil
}

// Name implements module.Namer.
func (g *Gain) Name() string { return "gain" }
