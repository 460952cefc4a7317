package arena

import "errors"

// MaxGroupHandles is the capacity of a Group.
const MaxGroupHandles = 32

// ErrGroupFull is returned when a Group has no free slot.
var ErrGroupFull = errors.New("arena: group full")

type groupEntry struct {
	arena  *Arena
	handle Handle
}

// Group records the allocations of one owner (typically one preset Module) so
// the whole subtree can be released with a single call. It holds a fixed number
// of entries and never allocates.
type Group struct {
	entries [MaxGroupHandles]groupEntry
	n       int
}

// Alloc allocates size bytes from a and records the handle.
func (g *Group) Alloc(a *Arena, size int) (Handle, error) {
	if g.n == MaxGroupHandles {
		return Handle{}, ErrGroupFull
	}
	h, err := a.Alloc(size)
	if err != nil {
		return Handle{}, err
	}
	g.entries[g.n] = groupEntry{arena: a, handle: h}
	g.n++
	return h, nil
}

// AllocFloat32s allocates n samples from a, records the handle and returns the view.
func (g *Group) AllocFloat32s(a *Arena, n int) ([]float32, error) {
	if g.n == MaxGroupHandles {
		return nil, ErrGroupFull
	}
	h, s, err := a.AllocFloat32s(n)
	if err != nil {
		return nil, err
	}
	g.entries[g.n] = groupEntry{arena: a, handle: h}
	g.n++
	return s, nil
}

// Len returns the number of recorded allocations.
func (g *Group) Len() int { return g.n }

// ReleaseAll releases every recorded allocation, newest first, and empties the
// group. It keeps going after an error and returns the first one.
func (g *Group) ReleaseAll() error {
	var first error
	for g.n > 0 {
		g.n--
		e := g.entries[g.n]
		if err := e.arena.Release(e.handle); err != nil && first == nil {
			first = err
		}
		g.entries[g.n] = groupEntry{}
	}
	return first
}
