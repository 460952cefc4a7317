package pipeline

import "errors"

var (
	// ErrDeadlineMissed is reported when a half-buffer was not finished in time.
	ErrDeadlineMissed = errors.New("pipeline: deadline missed")
	// ErrCodecNotReady is reported by status queries before bring-up completes.
	ErrCodecNotReady = errors.New("pipeline: codec not ready")
	// ErrUnknownPreset is returned for preset ids outside the table.
	ErrUnknownPreset = errors.New("pipeline: unknown preset")
	// ErrInvalidConfig is returned by New for unusable configurations.
	ErrInvalidConfig = errors.New("pipeline: invalid config")
	// ErrAlreadyBooted is returned when Boot is called twice.
	ErrAlreadyBooted = errors.New("pipeline: already booted")
)
