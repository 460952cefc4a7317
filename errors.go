package fxcore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/fxcore/arena"
	"github.com/hupe1980/fxcore/config"
	"github.com/hupe1980/fxcore/module"
	"github.com/hupe1980/fxcore/pipeline"
)

var (
	// ErrClosed is returned by operations on a closed Device.
	ErrClosed = errors.New("device closed")

	// ErrNotBooted is returned by Run before Boot.
	ErrNotBooted = errors.New("device not booted")

	// ErrOutOfMemory is returned when an arena cannot satisfy a request.
	ErrOutOfMemory = arena.ErrOutOfMemory

	// ErrDeadlineMissed is reported when a half-buffer was not finished in time.
	ErrDeadlineMissed = pipeline.ErrDeadlineMissed

	// ErrCodecNotReady is reported before codec bring-up completed.
	ErrCodecNotReady = pipeline.ErrCodecNotReady
)

// ErrPresetLoad indicates a preset that could not be selected or constructed.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrPresetLoad struct {
	Preset int
	Name   string
	cause  error
}

func (e *ErrPresetLoad) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("preset %d (%s) load failed: %v", e.Preset, e.Name, e.cause)
	}
	return fmt.Sprintf("preset %d load failed: %v", e.Preset, e.cause)
}

func (e *ErrPresetLoad) Unwrap() error { return e.cause }

// ErrInvalidConfig indicates an unusable configuration.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidConfig struct {
	Field string
	cause error
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid config: %s", e.Field)
}

func (e *ErrInvalidConfig) Unwrap() error { return e.cause }

// configField strips the sentinel prefix from a validation error.
func configField(err error, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pl *ErrPresetLoad
	if errors.As(err, &pl) {
		return err
	}
	var ic *ErrInvalidConfig
	if errors.As(err, &ic) {
		return err
	}

	if errors.Is(err, config.ErrInvalid) {
		return &ErrInvalidConfig{Field: configField(err, config.ErrInvalid), cause: err}
	}
	if errors.Is(err, pipeline.ErrInvalidConfig) {
		return &ErrInvalidConfig{Field: configField(err, pipeline.ErrInvalidConfig), cause: err}
	}
	if errors.Is(err, arena.ErrUnknownPool) {
		return &ErrInvalidConfig{Field: configField(err, arena.ErrUnknownPool), cause: err}
	}

	return err
}

// presetError wraps a failed load reported by the audio context.
func presetError(table *module.Table, target int, cause error) error {
	return &ErrPresetLoad{Preset: target, Name: table.Name(target), cause: cause}
}
