// Package control turns MIDI messages into pipeline events.
//
// Control change messages on mapped controller numbers retarget knob ramps;
// note on and note off messages trigger voices on modules that accept them.
// Everything else is ignored. Decoding runs in the slow context and the
// resulting events are handed to the audio context with Pipeline.Post.
package control
