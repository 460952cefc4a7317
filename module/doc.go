// Package module defines the contract between the audio pipeline and DSP presets.
//
// Every preset is a Module registered once in a fixed Table. The pipeline
// looks a preset up by id exactly once per load and caches the Module and its
// optional StereoProcessor; no further indirection happens per sample.
//
// Lifecycle of one load:
//
//	Allocate(env)            // slow work, arena allocations, may fail
//	AdvanceControlRate(env)  // once per audio frame
//	ProcessSample(x)         // once per channel sample
//	Release(env)             // returns every allocation
//
// A Module keeps its state in arena memory obtained through env.Pools and
// never touches memory outside its own allocations. Release must be safe after
// a failed or partial Allocate.
package module
