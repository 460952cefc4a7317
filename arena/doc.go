// Package arena provides the fixed-size memory pools that back every DSP object.
//
// An Arena is one contiguous byte region with an embedded, address-ordered free
// list. Block headers live inside the bytes they describe, so there is no
// metadata heap: the free list is threaded through the free space itself.
//
// # Allocation
//
//   - First fit over the free list, sizes rounded up to Alignment.
//   - A block is split only when the remainder is larger than one header;
//     otherwise the slack goes to the caller.
//   - Release coalesces with both address neighbours, so any release order of
//     any set of handles always returns to the same free layout.
//
// Allocation cost is O(free-list length) and never touches the Go heap.
//
// # Handles
//
// Allocations are addressed by Handle values, never by raw pointers. A Handle
// carries the generation stamped into its block header at allocation time;
// views and Release reject handles whose block was released (ErrStaleHandle).
//
// # Concurrency Model
//
// An Arena is not safe for concurrent use. It is owned by the audio context:
// allocations and releases happen only while the preset switcher commits.
// Stats and Audit may be called from elsewhere only while the owner is quiet.
//
// # Pools
//
// Pools groups several named arenas (for example a small "fast" pool and a large
// "sdram" pool for delay lines). Each pool is backed by an off-heap anonymous
// mapping and reserves its size against an optional device-wide budget.
package arena
