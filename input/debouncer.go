package input

import "strings"

// Events is a set of button events raised by one tick.
type Events uint8

const (
	// Press fires once when a pressed level is accepted.
	Press Events = 1 << iota
	// Release fires once when a released level is accepted.
	Release
	// HoldInstant fires once when the hold threshold is reached.
	HoldInstant
	// HoldContinuous fires on every pressed tick after HoldInstant.
	HoldContinuous
)

// Has reports whether every event in o is set.
func (e Events) Has(o Events) bool { return e&o == o && o != 0 }

func (e Events) String() string {
	if e == 0 {
		return "none"
	}
	var parts []string
	for _, ev := range []struct {
		e    Events
		name string
	}{
		{Press, "press"},
		{Release, "release"},
		{HoldInstant, "hold"},
		{HoldContinuous, "hold-continuous"},
	} {
		if e&ev.e != 0 {
			parts = append(parts, ev.name)
		}
	}
	return strings.Join(parts, "|")
}

// DebounceConfig holds debouncer thresholds in control-rate ticks.
type DebounceConfig struct {
	// Hysteresis is the number of consecutive mismatching ticks needed to
	// accept a level change. Values below 1 are treated as 1.
	Hysteresis int
	// Hold is the number of pressed ticks after which HoldInstant fires.
	// 0 disables hold events.
	Hold int
	// HoldCap bounds the hold counter. Values below Hold are raised to Hold.
	HoldCap int
}

func (c DebounceConfig) normalize() DebounceConfig {
	if c.Hysteresis < 1 {
		c.Hysteresis = 1
	}
	if c.Hold < 0 {
		c.Hold = 0
	}
	if c.HoldCap < c.Hold {
		c.HoldCap = c.Hold
	}
	return c
}

// Debouncer is the hysteresis and hold state machine of one button.
type Debouncer struct {
	cfg DebounceConfig

	raw       bool
	clean     bool
	mismatch  int
	hold      int
	holdFired bool
	pending   Events
}

// NewDebouncer returns a released debouncer.
func NewDebouncer(cfg DebounceConfig) Debouncer {
	return Debouncer{cfg: cfg.normalize()}
}

// Tick feeds one raw level and returns the events raised by it.
func (d *Debouncer) Tick(raw bool) Events {
	d.raw = raw
	var ev Events

	if raw != d.clean {
		d.mismatch++
		if d.mismatch >= d.cfg.Hysteresis {
			d.clean = raw
			d.mismatch = 0
			if raw {
				ev |= Press
			} else {
				ev |= Release
				d.hold = 0
				d.holdFired = false
			}
		}
	} else {
		d.mismatch = 0
	}

	if d.clean && ev&Press == 0 && d.cfg.Hold > 0 {
		if d.hold < d.cfg.HoldCap {
			d.hold++
		}
		switch {
		case d.holdFired:
			ev |= HoldContinuous
		case d.hold >= d.cfg.Hold:
			d.holdFired = true
			ev |= HoldInstant
		}
	}

	d.pending |= ev
	return ev
}

// Pressed returns the clean level.
func (d *Debouncer) Pressed() bool { return d.clean }

// Raw returns the last raw level.
func (d *Debouncer) Raw() bool { return d.raw }

// HoldTicks returns the capped hold counter.
func (d *Debouncer) HoldTicks() int { return d.hold }

// Holding reports whether HoldInstant has fired for the current press.
func (d *Debouncer) Holding() bool { return d.holdFired }

// TakePending returns and clears the events accumulated since the last call.
func (d *Debouncer) TakePending() Events {
	ev := d.pending
	d.pending = 0
	return ev
}

// Reset returns to the released state and drops pending events.
func (d *Debouncer) Reset() {
	*d = Debouncer{cfg: d.cfg}
}
