package input

import "math"

// MaxRaw is the full-scale ADC reading.
const MaxRaw = math.MaxUint16

// Normalize maps a raw ADC reading to [0,1].
func Normalize(raw uint16) float32 {
	return float32(raw) / MaxRaw
}

// Knob tracks one analog control with pickup after a preset load.
type Knob struct {
	deadband float32
	position float32
	anchor   float32
	engaged  bool
}

// NewKnob returns an engaged knob. deadband is in normalized units.
func NewKnob(deadband float32) Knob {
	return Knob{deadband: deadband, engaged: true}
}

// Disengage anchors the knob at its current physical position. Until the
// knob moves more than the deadband away from there, Update reports no change.
func (k *Knob) Disengage() {
	k.anchor = k.position
	k.engaged = k.deadband <= 0
}

// Update feeds one raw reading. It returns the normalized position and
// whether the knob is driving its parameter and moved since the last reading.
func (k *Knob) Update(raw uint16) (float32, bool) {
	pos := Normalize(raw)
	prev := k.position
	k.position = pos

	if !k.engaged {
		if abs32(pos-k.anchor) <= k.deadband {
			return pos, false
		}
		k.engaged = true
		return pos, true
	}
	return pos, abs32(pos-prev) > k.deadband/4
}

// Engaged reports whether physical movement currently drives the parameter.
func (k *Knob) Engaged() bool { return k.engaged }

// Position returns the last normalized reading.
func (k *Knob) Position() float32 { return k.position }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
