package presets

import (
	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/ramp"
)

// knob returns the current value of r, or def when the control is missing.
func knob(r *ramp.Ramp, def float32) float32 {
	if r == nil {
		return def
	}
	return r.Current()
}

// Default returns the reference preset table. delayPool names the arena that
// backs the delay lines; empty uses the default pool.
func Default(delayPool string) (*module.Table, error) {
	return module.NewTable(
		module.Descriptor{
			Name:     "bypass",
			Module:   module.Bypass{},
			Fallback: true,
		},
		module.Descriptor{
			Name:     "gain",
			Module:   &Gain{},
			Defaults: []ramp.Value{{Value: 0.5, Destination: 0.5}},
		},
		module.Descriptor{
			Name:   "tremolo",
			Module: &Tremolo{},
			Defaults: []ramp.Value{
				{Value: 0.3, Destination: 0.3},
				{Value: 0, Destination: 0.6},
			},
		},
		module.Descriptor{
			Name:   "delay",
			Module: &Delay{Pool: delayPool, MaxSeconds: 1},
			Defaults: []ramp.Value{
				{Value: 0.3, Destination: 0.3},
				{Value: 0.4, Destination: 0.4},
				{Value: 0, Destination: 0.35},
			},
		},
		module.Descriptor{
			Name:     "gate",
			Module:   &Gate{},
			Defaults: []ramp.Value{{Value: 0.8, Destination: 0.8}},
		},
	)
}
