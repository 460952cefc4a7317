// Package mmap provides anonymous, off-heap memory mappings.
//
// # Overview
//
// Arena pools are backed by one anonymous mapping each. The memory lives outside
// the Go heap, so the garbage collector never scans or moves it and the audio
// path never triggers a collection by touching it.
//
// # Usage
//
//	m, err := mmap.MapAnon(64 << 10)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // read-write, page aligned
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//   - Anything else: a plain Go byte slice
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must make sure
// nothing touches Bytes() after Close returns.
package mmap
