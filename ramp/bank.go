package ramp

// Bank is a fixed set of ramps, one per physical control.
// It is created once and never resized.
type Bank struct {
	ramps []Ramp
}

// NewBank creates n ramps sharing mode and ramp length.
func NewBank(n int, mode Mode, rampSamples int) *Bank {
	b := &Bank{ramps: make([]Ramp, n)}
	for i := range b.ramps {
		b.ramps[i] = New(mode, rampSamples)
	}
	return b
}

// Len returns the number of ramps.
func (b *Bank) Len() int { return len(b.ramps) }

// At returns ramp i. Out-of-range indexes return nil.
func (b *Bank) At(i int) *Ramp {
	if i < 0 || i >= len(b.ramps) {
		return nil
	}
	return &b.ramps[i]
}

// Value returns the current value of ramp i, or 0 when out of range.
func (b *Bank) Value(i int) float32 {
	if i < 0 || i >= len(b.ramps) {
		return 0
	}
	return b.ramps[i].current
}

// SetDestination retargets ramp i. Out-of-range indexes are ignored.
func (b *Bank) SetDestination(i int, v float32) {
	if i < 0 || i >= len(b.ramps) {
		return
	}
	b.ramps[i].SetDestination(v)
}

// Tick advances every ramp by one sample.
func (b *Bank) Tick() {
	for i := range b.ramps {
		b.ramps[i].Tick()
	}
}

// ResetAll re-points every ramp. Missing defaults reset to zero.
func (b *Bank) ResetAll(defaults []Value) {
	for i := range b.ramps {
		var v Value
		if i < len(defaults) {
			v = defaults[i]
		}
		b.ramps[i].ResetTo(v)
	}
}
