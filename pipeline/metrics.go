package pipeline

// Metrics observes the audio context. Every method is called from the audio
// context (RecordDeadlineMiss possibly from the overrun notification) and
// must not block.
type Metrics interface {
	RecordFrame(silent bool)
	RecordSwitch(from, to int, ok bool)
	RecordDeadlineMiss()
	RecordOutOfMemory()
	RecordDroppedEvent()
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordFrame(bool)            {}
func (NoopMetrics) RecordSwitch(int, int, bool) {}
func (NoopMetrics) RecordDeadlineMiss()         {}
func (NoopMetrics) RecordOutOfMemory()          {}
func (NoopMetrics) RecordDroppedEvent()         {}
