package hal

import (
	"math"
	"sync/atomic"

	"github.com/hupe1980/fxcore/input"
)

// Controls is an InputSource backed by atomics. Setters may be called from
// any goroutine while the audio context reads.
type Controls struct {
	pins  []atomic.Bool
	knobs []atomic.Uint32
}

// NewControls creates released buttons and knobs at zero.
func NewControls(buttons, knobs int) *Controls {
	return &Controls{
		pins:  make([]atomic.Bool, buttons),
		knobs: make([]atomic.Uint32, knobs),
	}
}

// SetPin sets the raw level of button i.
func (c *Controls) SetPin(i int, pressed bool) {
	if i >= 0 && i < len(c.pins) {
		c.pins[i].Store(pressed)
	}
}

// Pin returns the raw level of button i.
func (c *Controls) Pin(i int) bool {
	if i < 0 || i >= len(c.pins) {
		return false
	}
	return c.pins[i].Load()
}

// SetKnob sets knob i to a normalized position.
func (c *Controls) SetKnob(i int, v float32) {
	v = min(max(v, 0), 1)
	c.SetKnobRaw(i, uint16(math.Round(float64(v)*input.MaxRaw)))
}

// SetKnobRaw sets the raw ADC reading of knob i.
func (c *Controls) SetKnobRaw(i int, raw uint16) {
	if i >= 0 && i < len(c.knobs) {
		c.knobs[i].Store(uint32(raw))
	}
}

// Knob returns the normalized position of knob i.
func (c *Controls) Knob(i int) float32 {
	if i < 0 || i >= len(c.knobs) {
		return 0
	}
	return input.Normalize(uint16(c.knobs[i].Load()))
}

// ReadPins implements pipeline.InputSource.
func (c *Controls) ReadPins(dst []bool) {
	for i := range dst {
		dst[i] = i < len(c.pins) && c.pins[i].Load()
	}
}

// ReadKnobs implements pipeline.InputSource.
func (c *Controls) ReadKnobs(dst []uint16) {
	for i := range dst {
		if i < len(c.knobs) {
			dst[i] = uint16(c.knobs[i].Load())
		} else {
			dst[i] = 0
		}
	}
}
