// Package pipeline implements the real-time audio loop and the preset switcher.
//
// A Pipeline owns a ping-pong pair of interleaved stereo buffers. The hardware
// layer fills one half of RX and calls OnHalfBufferReady for it; the pipeline
// must fill the same half of TX before the hardware wraps around. Within one
// call the order is fixed:
//
//	drain control events → debounce buttons → read knobs →
//	advance switcher → AdvanceControlRate → per-sample processing
//
// The audio context never blocks, never logs and does not allocate. Control
// events enter through Post and notifications leave through
// PollNotification, both over single-producer single-consumer queues. The
// slow context reads published snapshots (ActivePreset, KnobValue, Status).
//
// # Switching
//
// A debounced button press moves the switcher from Idle to Draining. Every
// draining frame outputs silence and runs nothing. After K consecutive silent
// frames the next frame commits: the outgoing Module is released, the
// incoming one allocated, every knob ramp re-pointed to the preset defaults,
// and that same frame is processed by the new Module. Requests while a switch
// is in flight are dropped.
package pipeline
