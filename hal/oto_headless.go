//go:build headless

package hal

import "time"

// OtoSink discards output in headless builds.
type OtoSink struct{}

// NewOtoSink returns a silent sink.
func NewOtoSink(int, time.Duration) (*OtoSink, error) { return &OtoSink{}, nil }

// Write implements AudioSink.
func (*OtoSink) Write([]float32) error { return nil }

// Dropped always returns 0.
func (*OtoSink) Dropped() uint64 { return 0 }

// Close is a no-op.
func (*OtoSink) Close() error { return nil }
