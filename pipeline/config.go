package pipeline

import (
	"fmt"

	"github.com/hupe1980/fxcore/input"
	"github.com/hupe1980/fxcore/ramp"
)

// Config holds the pipeline parameters. All thresholds are in frames or
// samples; conversion from durations happens in the config package.
type Config struct {
	// SampleRate in Hz.
	SampleRate int
	// HalfFrames is the number of stereo samples per half-buffer.
	HalfFrames int
	// Quiescence is the number K of consecutive silent frames before a commit.
	Quiescence int
	// Debounce holds the button thresholds in frames.
	Debounce input.DebounceConfig
	// Buttons is the number of physical buttons.
	Buttons int
	// Knobs is the number of physical knobs and ramps.
	Knobs int
	// RampMode is the curve of every knob ramp.
	RampMode ramp.Mode
	// RampSamples is the ramp length in samples.
	RampSamples int
	// KnobDeadband is the takeover deadband in normalized units.
	KnobDeadband float32
	// Roles maps buttons to actions.
	Roles ButtonRoles
	// EventQueue is the capacity of the control event queue.
	EventQueue int
	// NotifyQueue is the capacity of the notification queue.
	NotifyQueue int
}

// DefaultConfig returns a configuration for 48 kHz with 64-sample half-buffers.
func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		HalfFrames:   64,
		Quiescence:   2,
		Debounce:     input.DebounceConfig{Hysteresis: 5, Hold: 750, HoldCap: 1500},
		Buttons:      3,
		Knobs:        4,
		RampMode:     ramp.Exponential,
		RampSamples:  480,
		KnobDeadband: 0.02,
		Roles:        DefaultButtonRoles(),
		EventQueue:   256,
		NotifyQueue:  256,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.HalfFrames <= 0:
		return fmt.Errorf("%w: half frames %d", ErrInvalidConfig, c.HalfFrames)
	case c.Quiescence < 2:
		return fmt.Errorf("%w: quiescence %d frames, need at least 2", ErrInvalidConfig, c.Quiescence)
	case c.Buttons < 0 || c.Buttons > input.MaxButtons:
		return fmt.Errorf("%w: %d buttons", ErrInvalidConfig, c.Buttons)
	case c.Knobs < 0:
		return fmt.Errorf("%w: %d knobs", ErrInvalidConfig, c.Knobs)
	case c.RampSamples < 0:
		return fmt.Errorf("%w: ramp samples %d", ErrInvalidConfig, c.RampSamples)
	case c.KnobDeadband < 0 || c.KnobDeadband >= 1:
		return fmt.Errorf("%w: knob deadband %v", ErrInvalidConfig, c.KnobDeadband)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.EventQueue <= 0 {
		c.EventQueue = 256
	}
	if c.NotifyQueue <= 0 {
		c.NotifyQueue = 256
	}
	return c
}
