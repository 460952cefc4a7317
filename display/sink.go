package display

import (
	"log/slog"

	"github.com/hupe1980/fxcore/pipeline"
)

// Sink receives notifications. It is called from the slow context only.
type Sink interface {
	Notify(n pipeline.Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(n pipeline.Notification)

// Notify calls f(n).
func (f SinkFunc) Notify(n pipeline.Notification) { f(n) }

// Multi fans notifications out to several sinks in order.
type Multi []Sink

// Notify forwards n to every sink.
func (m Multi) Notify(n pipeline.Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(n)
		}
	}
}

// LogSink logs notifications. Knob and edit value updates are logged at
// debug level.
type LogSink struct {
	Logger *slog.Logger
	Names  func(preset int) string
}

func (l LogSink) name(preset int) string {
	if l.Names == nil {
		return ""
	}
	return l.Names(preset)
}

// Notify implements Sink.
func (l LogSink) Notify(n pipeline.Notification) {
	if l.Logger == nil {
		return
	}
	switch n.Kind {
	case pipeline.NotifyPresetLoaded:
		l.Logger.Info("preset loaded", "preset", n.Preset, "name", l.name(n.Preset), "previous", n.Previous, "frame", n.Frame)
	case pipeline.NotifyPresetLoadFailed:
		l.Logger.Error("preset load failed", "target", n.Target, "active", n.Preset, "error", n.Err, "frame", n.Frame)
	case pipeline.NotifyDeadlineMissed:
		l.Logger.Warn("deadline missed", "count", n.Count, "frame", n.Frame)
	case pipeline.NotifySwitchDropped:
		l.Logger.Info("switch dropped", "target", n.Target, "active", n.Preset)
	case pipeline.NotifyButton:
		l.Logger.Debug("button", "index", n.Index, "events", n.Events.String())
	case pipeline.NotifyEditMode:
		l.Logger.Info("edit mode", "enabled", n.Value != 0, "knob", n.Index)
	default:
		l.Logger.Debug(n.Kind.String(), "index", n.Index, "value", n.Value)
	}
}
