// Package ramp provides click-free parameter smoothing.
//
// A Ramp is ticked once per audio sample and moves its current value toward a
// destination so that any jump takes the same configured wall-clock time.
// SetDestination and Reset run at control rate; Tick runs at sample rate. Both
// rates live in the audio context, so no synchronization is needed.
package ramp
