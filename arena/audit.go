package arena

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Audit walks the arena and verifies its structural invariants:
//
//   - blocks tile the region exactly, every header carries a known tag
//   - the free list is address ordered, acyclic, and its ranges do not overlap
//   - every free-tagged block is on the free list and vice versa
//   - no two free blocks are adjacent
//   - used bytes plus free bytes and their headers equal the arena size
//
// Audit allocates; call it from tests or diagnostics, never from the audio path.
func (a *Arena) Audit() error {
	total := uint64(len(a.buf))

	listed := roaring.New()
	covered := roaring.New()
	freeTotal := 0
	last := int64(-1)

	for cur := a.head; cur != nilOffset; cur = a.next(cur) {
		if int64(cur) <= last {
			return fmt.Errorf("arena %s: free list not address ordered at %d", a.name, cur)
		}
		if listed.Contains(cur) {
			return fmt.Errorf("arena %s: free list cycle at %d", a.name, cur)
		}
		if a.tag(cur) != tagFree {
			return fmt.Errorf("arena %s: listed block %d not tagged free", a.name, cur)
		}

		start := uint64(cur)
		end := start + HeaderSize + uint64(a.size(cur))
		if end > total {
			return fmt.Errorf("arena %s: free block %d overruns arena", a.name, cur)
		}
		if covered.IntersectsWithInterval(start, end) {
			return fmt.Errorf("arena %s: free block %d overlaps another", a.name, cur)
		}
		covered.AddRange(start, end)
		listed.Add(cur)

		freeTotal += HeaderSize + int(a.size(cur))
		last = int64(cur)
	}

	used := 0
	live := 0
	prevFree := false
	for off := uint64(0); off < total; {
		o := uint32(off)
		size := uint64(a.size(o))
		end := off + HeaderSize + size
		if end > total {
			return fmt.Errorf("arena %s: block %d overruns arena", a.name, off)
		}

		switch a.tag(o) {
		case tagFree:
			if !listed.Contains(o) {
				return fmt.Errorf("arena %s: free block %d missing from free list", a.name, off)
			}
			if prevFree {
				return fmt.Errorf("arena %s: adjacent free blocks at %d", a.name, off)
			}
			listed.Remove(o)
			prevFree = true
		case tagUsed:
			if covered.IntersectsWithInterval(off, end) {
				return fmt.Errorf("arena %s: allocated block %d overlaps free space", a.name, off)
			}
			used += int(HeaderSize + size)
			live++
			prevFree = false
		default:
			return fmt.Errorf("arena %s: corrupt header at %d", a.name, off)
		}
		off = end
	}

	if !listed.IsEmpty() {
		return fmt.Errorf("arena %s: %d free-list blocks not reachable by walk", a.name, listed.GetCardinality())
	}
	if used != a.used {
		return fmt.Errorf("arena %s: used bytes %d, walk found %d", a.name, a.used, used)
	}
	if live != a.live {
		return fmt.Errorf("arena %s: live handles %d, walk found %d", a.name, a.live, live)
	}
	if used+freeTotal != len(a.buf) {
		return fmt.Errorf("arena %s: used %d + free %d != size %d", a.name, used, freeTotal, len(a.buf))
	}
	return nil
}
