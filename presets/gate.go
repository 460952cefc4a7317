package presets

import (
	"time"

	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/ramp"
)

const gateAttack = 5 * time.Millisecond

// Gate opens while at least one note is held, at a level set by the last
// velocity. Knob 0 sets the attenuation while closed.
type Gate struct {
	held  [128]bool
	count int
	level float32
	env   ramp.Ramp

	floor *ramp.Ramp
}

// Allocate implements module.Module.
func (g *Gate) Allocate(env *module.Env) error {
	g.held = [128]bool{}
	g.count = 0
	g.level = 0
	g.env = ramp.New(ramp.Linear, ramp.Samples(gateAttack, env.SampleRate))
	g.floor = env.Knob(0)
	return nil
}

// AdvanceControlRate implements module.Module.
func (g *Gate) AdvanceControlRate(*module.Env) {
	target := g.level
	if g.count == 0 {
		target = 1 - knob(g.floor, 0.8)
	}
	if target != g.env.Destination() {
		g.env.SetDestination(target)
	}
}

// ProcessSample implements module.Module.
func (g *Gate) ProcessSample(in float32) float32 {
	return in * g.env.Tick()
}

// ProcessStereo implements module.StereoProcessor.
func (g *Gate) ProcessStereo(left, right float32) (float32, float32) {
	v := g.env.Tick()
	return left * v, right * v
}

// NoteOn implements module.VoiceTrigger.
func (g *Gate) NoteOn(note, velocity uint8) {
	if note > 127 {
		return
	}
	if velocity == 0 {
		g.NoteOff(note)
		return
	}
	if !g.held[note] {
		g.held[note] = true
		g.count++
	}
	g.level = float32(velocity) / 127
}

// NoteOff implements module.VoiceTrigger.
func (g *Gate) NoteOff(note uint8) {
	if note > 127 || !g.held[note] {
		return
	}
	g.held[note] = false
	g.count--
}

// Release implements module.Module.
func (g *Gate) Release(*module.Env) error {
	g.floor = nil
	return nil
}

// Name implements module.Namer.
func (g *Gate) Name() string { return "gate" }
