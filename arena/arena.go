package arena

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/hupe1980/fxcore/internal/conv"
	"github.com/hupe1980/fxcore/internal/mmap"
)

var (
	// ErrOutOfMemory is returned when no free block is large enough.
	ErrOutOfMemory = errors.New("arena: out of memory")
	// ErrInvalidHandle is returned for handles that cannot refer to any block.
	ErrInvalidHandle = errors.New("arena: invalid handle")
	// ErrStaleHandle is returned for handles whose block was released.
	ErrStaleHandle = errors.New("arena: stale handle")
	// ErrInvalidSize is returned for non-positive allocation sizes.
	ErrInvalidSize = errors.New("arena: invalid size")
	// ErrArenaTooSmall is returned when a region cannot hold a single block.
	ErrArenaTooSmall = errors.New("arena: region too small")
)

const (
	// HeaderSize is the size of the in-band block header.
	// Layout: [size uint32][prev|gen uint32][next uint32][tag uint32]
	HeaderSize = 16
	// Alignment is the payload alignment and size granularity.
	Alignment = 8
	// MaxSize is the largest supported arena.
	MaxSize = math.MaxUint32 - Alignment

	nilOffset = math.MaxUint32

	tagFree uint32 = 0x45455246 // "FREE"
	tagUsed uint32 = 0x44455355 // "USED"
)

// Handle refers to one live allocation.
// The zero Handle is never returned by a successful allocation.
type Handle struct {
	Offset uint32 // payload offset within the arena
	Gen    uint32 // generation stamped at allocation time
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.Gen == 0 }

// Block describes one free block.
type Block struct {
	Offset int // header offset
	Size   int // payload size, excluding the header
}

// Stats tracks arena usage.
//
//   - UsedBytes: headers plus payloads of live allocations
//   - FreeBytes: payload bytes of free blocks (headers excluded)
//   - LargestFree: largest single allocation that would currently succeed
type Stats struct {
	Size          int
	UsedBytes     int
	FreeBytes     int
	FreeBlocks    int
	LargestFree   int
	Live          int
	PeakUsed      int
	TotalAllocs   uint64
	TotalReleases uint64
	FailedAllocs  uint64
}

// Arena is a fixed-size region with an embedded coalescing free list.
type Arena struct {
	name    string
	buf     []byte
	mapping *mmap.Mapping

	head         uint32 // header offset of the lowest free block
	used         int
	live         int
	gen          uint32
	clearOnAlloc bool

	peakUsed      int
	totalAllocs   uint64
	totalReleases uint64
	failedAllocs  uint64
}

// New creates an arena of size bytes backed by an anonymous mapping.
// size is rounded down to Alignment.
func New(name string, size int) (*Arena, error) {
	size &^= Alignment - 1
	if err := checkSize(size); err != nil {
		return nil, err
	}

	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("arena %s: map %d bytes: %w", name, size, err)
	}

	a := &Arena{name: name, buf: m.Bytes()[:size:size], mapping: m}
	a.reset()
	return a, nil
}

// NewFromBytes creates an arena over buf. The caller keeps ownership of buf and
// must not touch it while the arena is in use.
func NewFromBytes(name string, buf []byte) (*Arena, error) {
	if len(buf) > 0 {
		if mis := int(uintptr(unsafe.Pointer(&buf[0])) % Alignment); mis != 0 { //nolint:gosec // alignment probe only
			skip := Alignment - mis
			if skip >= len(buf) {
				return nil, ErrArenaTooSmall
			}
			buf = buf[skip:]
		}
	}
	size := len(buf) &^ (Alignment - 1)
	if err := checkSize(size); err != nil {
		return nil, err
	}

	a := &Arena{name: name, buf: buf[:size:size]}
	a.reset()
	return a, nil
}

func checkSize(size int) error {
	if size < HeaderSize+Alignment {
		return ErrArenaTooSmall
	}
	if _, err := conv.IntToUint32(size); err != nil || size > MaxSize {
		return fmt.Errorf("arena: size %d exceeds %d: %w", size, MaxSize, ErrInvalidSize)
	}
	return nil
}

func (a *Arena) reset() {
	a.head = 0
	a.used = 0
	a.live = 0
	a.writeHeader(0, uint32(len(a.buf)-HeaderSize), nilOffset, nilOffset, tagFree)
}

// Name returns the arena name.
func (a *Arena) Name() string { return a.name }

// Size returns the total arena size in bytes.
func (a *Arena) Size() int { return len(a.buf) }

// Used returns the bytes (headers and payloads) held by live allocations.
func (a *Arena) Used() int { return a.used }

// Live returns the number of outstanding handles.
func (a *Arena) Live() int { return a.live }

// SetClearOnAlloc makes Alloc zero-fill payloads until disabled again.
// Zeroing is too slow to leave on for every real-time allocation; it is meant
// for constructions that assume clean memory.
func (a *Arena) SetClearOnAlloc(on bool) { a.clearOnAlloc = on }

// ClearOnAlloc reports whether Alloc currently zero-fills.
func (a *Arena) ClearOnAlloc() bool { return a.clearOnAlloc }

// Alloc allocates size bytes using first fit.
func (a *Arena) Alloc(size int) (Handle, error) {
	return a.alloc(size, a.clearOnAlloc)
}

// AllocZeroed allocates size bytes and zero-fills the payload.
func (a *Arena) AllocZeroed(size int) (Handle, error) {
	return a.alloc(size, true)
}

func (a *Arena) alloc(size int, zero bool) (Handle, error) {
	if size <= 0 || size > len(a.buf) {
		if size > 0 {
			a.failedAllocs++
			return Handle{}, ErrOutOfMemory
		}
		return Handle{}, ErrInvalidSize
	}

	need := uint32((size + Alignment - 1) &^ (Alignment - 1))

	for cur := a.head; cur != nilOffset; cur = a.next(cur) {
		bsize := a.size(cur)
		if bsize < need {
			continue
		}

		prev, next := a.prev(cur), a.next(cur)
		if rem := bsize - need; rem > HeaderSize {
			// Remainder stays in the list, in cur's position.
			split := cur + HeaderSize + need
			a.writeHeader(split, rem-HeaderSize, prev, next, tagFree)
			a.relink(prev, next, split)
			bsize = need
		} else {
			a.relink(prev, next, nilOffset)
		}

		a.gen++
		if a.gen == 0 {
			a.gen = 1
		}
		a.writeHeader(cur, bsize, a.gen, nilOffset, tagUsed)

		payload := cur + HeaderSize
		if zero {
			clear(a.buf[payload : payload+bsize])
		}

		a.used += HeaderSize + int(bsize)
		a.live++
		a.totalAllocs++
		if a.used > a.peakUsed {
			a.peakUsed = a.used
		}
		return Handle{Offset: payload, Gen: a.gen}, nil
	}

	a.failedAllocs++
	return Handle{}, ErrOutOfMemory
}

// relink replaces the list node between prev and next with node.
// node == nilOffset unlinks.
func (a *Arena) relink(prev, next, node uint32) {
	if node == nilOffset {
		if prev == nilOffset {
			a.head = next
		} else {
			a.setNext(prev, next)
		}
		if next != nilOffset {
			a.setPrev(next, prev)
		}
		return
	}

	if prev == nilOffset {
		a.head = node
	} else {
		a.setNext(prev, node)
	}
	if next != nilOffset {
		a.setPrev(next, node)
	}
}

// Release returns h's block to the free list, coalescing with neighbours.
func (a *Arena) Release(h Handle) error {
	off, err := a.resolve(h)
	if err != nil {
		return err
	}

	size := a.size(off)
	a.used -= HeaderSize + int(size)
	a.live--
	a.totalReleases++

	// Address-ordered insertion point.
	prev := uint32(nilOffset)
	next := a.head
	for next != nilOffset && next < off {
		prev = next
		next = a.next(next)
	}

	block := off
	if prev != nilOffset && prev+HeaderSize+a.size(prev) == off {
		// Absorb into the preceding free block; it keeps its list position.
		a.setSize(prev, a.size(prev)+HeaderSize+size)
		a.setTag(off, 0)
		block = prev
	} else {
		a.writeHeader(off, size, prev, next, tagFree)
		a.relink(prev, next, off)
	}

	if next != nilOffset && block+HeaderSize+a.size(block) == next {
		a.setSize(block, a.size(block)+HeaderSize+a.size(next))
		a.relink(block, a.next(next), nilOffset)
		a.setTag(next, 0)
	}

	return nil
}

// resolve validates h and returns its header offset.
func (a *Arena) resolve(h Handle) (uint32, error) {
	if h.Gen == 0 || h.Offset < HeaderSize || h.Offset%Alignment != 0 || int(h.Offset) >= len(a.buf) {
		return 0, ErrInvalidHandle
	}
	off := h.Offset - HeaderSize
	if a.tag(off) != tagUsed || a.prev(off) != h.Gen {
		return 0, ErrStaleHandle
	}
	return off, nil
}

// Bytes returns the payload of h. The length is the rounded block size, which
// may exceed the requested size.
func (a *Arena) Bytes(h Handle) ([]byte, error) {
	off, err := a.resolve(h)
	if err != nil {
		return nil, err
	}
	end := h.Offset + a.size(off)
	return a.buf[h.Offset:end:end], nil
}

// Float32s returns the payload of h as float32 samples.
func (a *Arena) Float32s(h Handle) ([]float32, error) {
	return Slice[float32](a, h)
}

// AllocFloat32s allocates n float32 samples and returns the handle and view.
func (a *Arena) AllocFloat32s(n int) (Handle, []float32, error) {
	return AllocSlice[float32](a, n)
}

// Reset invalidates every outstanding handle and restores a single free block.
// The whole region is zeroed so no stale header survives.
func (a *Arena) Reset() {
	clear(a.buf)
	a.reset()
}

// Close releases the backing mapping. The arena must not be used afterwards.
func (a *Arena) Close() error {
	a.buf = nil
	if a.mapping != nil {
		err := a.mapping.Close()
		a.mapping = nil
		return err
	}
	return nil
}

// FreeBlocks returns the free list in address order.
// It allocates and is meant for diagnostics and tests.
func (a *Arena) FreeBlocks() []Block {
	var blocks []Block
	for cur := a.head; cur != nilOffset; cur = a.next(cur) {
		blocks = append(blocks, Block{Offset: int(cur), Size: int(a.size(cur))})
	}
	return blocks
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	s := Stats{
		Size:          len(a.buf),
		UsedBytes:     a.used,
		Live:          a.live,
		PeakUsed:      a.peakUsed,
		TotalAllocs:   a.totalAllocs,
		TotalReleases: a.totalReleases,
		FailedAllocs:  a.failedAllocs,
	}
	for cur := a.head; cur != nilOffset; cur = a.next(cur) {
		size := int(a.size(cur))
		s.FreeBytes += size
		s.FreeBlocks++
		if size > s.LargestFree {
			s.LargestFree = size
		}
	}
	return s
}

// Usage returns the used percentage.
func (a *Arena) Usage() float64 {
	if len(a.buf) == 0 {
		return 0
	}
	return float64(a.used) / float64(len(a.buf)) * 100
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{name: %s, size: %d, used: %d, free: %d in %d blocks, largest: %d, live: %d, usage: %.1f%%}",
		a.name, s.Size, s.UsedBytes, s.FreeBytes, s.FreeBlocks, s.LargestFree, s.Live, a.Usage(),
	)
}

// Header accessors. Offsets are header offsets.

func (a *Arena) writeHeader(off, size, prev, next, tag uint32) {
	h := a.buf[off : off+HeaderSize]
	binary.LittleEndian.PutUint32(h[0:], size)
	binary.LittleEndian.PutUint32(h[4:], prev)
	binary.LittleEndian.PutUint32(h[8:], next)
	binary.LittleEndian.PutUint32(h[12:], tag)
}

func (a *Arena) size(off uint32) uint32 { return binary.LittleEndian.Uint32(a.buf[off:]) }
func (a *Arena) prev(off uint32) uint32 { return binary.LittleEndian.Uint32(a.buf[off+4:]) }
func (a *Arena) next(off uint32) uint32 { return binary.LittleEndian.Uint32(a.buf[off+8:]) }
func (a *Arena) tag(off uint32) uint32  { return binary.LittleEndian.Uint32(a.buf[off+12:]) }

func (a *Arena) setSize(off, v uint32) { binary.LittleEndian.PutUint32(a.buf[off:], v) }
func (a *Arena) setPrev(off, v uint32) { binary.LittleEndian.PutUint32(a.buf[off+4:], v) }
func (a *Arena) setNext(off, v uint32) { binary.LittleEndian.PutUint32(a.buf[off+8:], v) }
func (a *Arena) setTag(off, v uint32)  { binary.LittleEndian.PutUint32(a.buf[off+12:], v) }
