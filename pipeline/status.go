package pipeline

import "math"

// Status is a snapshot of the pipeline for the slow context.
type Status struct {
	CodecReady           bool
	Phase                Phase
	Active               int
	Previous             int
	EditMode             bool
	Frames               uint64
	Buttons              uint64
	DeadlineMisses       uint64
	OutOfMemory          uint64
	ReleaseErrors        uint64
	DroppedSwitches      uint64
	DroppedEvents        uint64
	DroppedNotifications uint64
}

// Status returns the latest published snapshot. Safe from any goroutine.
func (p *Pipeline) Status() Status {
	return Status{
		CodecReady:           p.codecReady.Load(),
		Phase:                Phase(p.phaseSnap.Load()),
		Active:               int(p.activeSnap.Load()),
		Previous:             int(p.previousSnap.Load()),
		EditMode:             p.editSnap.Load(),
		Frames:               p.framesSnap.Load(),
		Buttons:              p.buttonSnap.Load(),
		DeadlineMisses:       p.deadlineMisses.Load(),
		OutOfMemory:          p.outOfMemory.Load(),
		ReleaseErrors:        p.releaseErrors.Load(),
		DroppedSwitches:      p.droppedSwitch.Load(),
		DroppedEvents:        p.events.Dropped(),
		DroppedNotifications: p.notes.Dropped(),
	}
}

// ActivePreset returns the id of the active preset, -1 when none or Bypass.
func (p *Pipeline) ActivePreset() int { return int(p.activeSnap.Load()) }

// Phase returns the published switcher phase.
func (p *Pipeline) Phase() Phase { return Phase(p.phaseSnap.Load()) }

// KnobValue returns the displayed value of knob i.
func (p *Pipeline) KnobValue(i int) float32 {
	if i < 0 || i >= len(p.knobSnap) {
		return 0
	}
	return math.Float32frombits(p.knobSnap[i].Load())
}

// Knobs returns the number of knobs.
func (p *Pipeline) Knobs() int { return len(p.knobSnap) }
