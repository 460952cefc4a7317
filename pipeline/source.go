package pipeline

// InputSource delivers the raw control levels refreshed once per audio frame.
// Implementations are read from the audio context and must not block.
type InputSource interface {
	// ReadPins writes one level per button, true meaning pressed.
	ReadPins(dst []bool)
	// ReadKnobs writes one raw ADC reading per knob.
	ReadKnobs(dst []uint16)
}

// ButtonRoles maps buttons to actions. -1 disables a role.
type ButtonRoles struct {
	Next     int
	Previous int
	Edit     int
}

// DefaultButtonRoles uses button 0 for next, 1 for previous and 2 for edit.
func DefaultButtonRoles() ButtonRoles {
	return ButtonRoles{Next: 0, Previous: 1, Edit: 2}
}
