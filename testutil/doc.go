// Package testutil provides deterministic helpers for tests and benchmarks:
// a seeded, goroutine-safe RNG and small signal generators for interleaved
// stereo buffers.
package testutil
