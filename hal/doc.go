// Package hal simulates the hardware around a pipeline on a host machine.
//
// Simulator plays the role of the codec DMA: it fills the receive half from
// an AudioSource, calls OnHalfBufferReady and hands the transmit half to an
// AudioSink. Step runs one half-buffer synchronously for tests; Run paces
// half-buffers in real time and a watchdog raises OnOverrun when a half takes
// longer than its period.
//
// Codec models the delayed codec bring-up, and Controls is a lock-free
// InputSource whose button and knob levels can be set from any goroutine.
//
// OtoSink plays the output through the host sound card. Building with the
// headless tag replaces it with a silent stub.
package hal
