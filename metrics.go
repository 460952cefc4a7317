package fxcore

import (
	"sync/atomic"

	"github.com/hupe1980/fxcore/pipeline"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Every method is called from the audio context and must not block, allocate
// or take locks. Count with atomics and export from another goroutine.
type MetricsCollector = pipeline.Metrics

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector = pipeline.NoopMetrics

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Frames         atomic.Int64
	SilentFrames   atomic.Int64
	Switches       atomic.Int64
	FailedSwitches atomic.Int64
	DeadlineMisses atomic.Int64
	OutOfMemory    atomic.Int64
	DroppedEvents  atomic.Int64
}

// RecordFrame implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFrame(silent bool) {
	b.Frames.Add(1)
	if silent {
		b.SilentFrames.Add(1)
	}
}

// RecordSwitch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSwitch(_, _ int, ok bool) {
	b.Switches.Add(1)
	if !ok {
		b.FailedSwitches.Add(1)
	}
}

// RecordDeadlineMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDeadlineMiss() {
	b.DeadlineMisses.Add(1)
}

// RecordOutOfMemory implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOutOfMemory() {
	b.OutOfMemory.Add(1)
}

// RecordDroppedEvent implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDroppedEvent() {
	b.DroppedEvents.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	frames := b.Frames.Load()
	silent := b.SilentFrames.Load()

	var ratio float64
	if frames > 0 {
		ratio = float64(silent) / float64(frames)
	}

	return BasicMetricsStats{
		Frames:         frames,
		SilentFrames:   silent,
		SilentRatio:    ratio,
		Switches:       b.Switches.Load(),
		FailedSwitches: b.FailedSwitches.Load(),
		DeadlineMisses: b.DeadlineMisses.Load(),
		OutOfMemory:    b.OutOfMemory.Load(),
		DroppedEvents:  b.DroppedEvents.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Frames         int64
	SilentFrames   int64
	SilentRatio    float64
	Switches       int64
	FailedSwitches int64
	DeadlineMisses int64
	OutOfMemory    int64
	DroppedEvents  int64
}
