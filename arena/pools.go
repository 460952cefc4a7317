package arena

import (
	"errors"
	"fmt"
)

// ErrUnknownPool is returned when no pool has the requested name.
var ErrUnknownPool = errors.New("arena: unknown pool")

// MemoryReserver accounts pool memory against a device-wide budget.
type MemoryReserver interface {
	ReserveArena(bytes int64) error
	ReleaseArena(bytes int64)
}

// PoolConfig describes one named pool.
type PoolConfig struct {
	Name string
	Size int
}

// Pools is a fixed set of named arenas.
type Pools struct {
	arenas   []*Arena
	reserved []int64
	reserver MemoryReserver
}

// PoolOption configures Pools.
type PoolOption func(*Pools)

// WithMemoryReserver accounts every pool against r.
func WithMemoryReserver(r MemoryReserver) PoolOption {
	return func(p *Pools) {
		p.reserver = r
	}
}

// NewPools creates one arena per config entry. The first entry is the default pool.
func NewPools(cfgs []PoolConfig, opts ...PoolOption) (*Pools, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("arena: at least one pool is required")
	}

	p := &Pools{
		arenas:   make([]*Arena, 0, len(cfgs)),
		reserved: make([]int64, 0, len(cfgs)),
	}
	for _, opt := range opts {
		opt(p)
	}

	for _, cfg := range cfgs {
		if _, err := p.Get(cfg.Name); err == nil {
			_ = p.Close()
			return nil, fmt.Errorf("arena: duplicate pool %q", cfg.Name)
		}

		size := int64(cfg.Size)
		if p.reserver != nil {
			if err := p.reserver.ReserveArena(size); err != nil {
				_ = p.Close()
				return nil, fmt.Errorf("arena: reserve pool %q (%d bytes): %w", cfg.Name, cfg.Size, err)
			}
		}

		a, err := New(cfg.Name, cfg.Size)
		if err != nil {
			if p.reserver != nil {
				p.reserver.ReleaseArena(size)
			}
			_ = p.Close()
			return nil, err
		}
		p.arenas = append(p.arenas, a)
		p.reserved = append(p.reserved, size)
	}

	return p, nil
}

// Get returns the pool with the given name. It is called from Module.Allocate
// on the audio context and does not allocate.
func (p *Pools) Get(name string) (*Arena, error) {
	for _, a := range p.arenas {
		if a.name == name {
			return a, nil
		}
	}
	return nil, ErrUnknownPool
}

// Default returns the first pool.
func (p *Pools) Default() *Arena {
	return p.arenas[0]
}

// All returns every pool in configuration order.
func (p *Pools) All() []*Arena {
	return p.arenas
}

// SetClearOnAlloc toggles zero-fill on allocation for every pool.
func (p *Pools) SetClearOnAlloc(on bool) {
	for _, a := range p.arenas {
		a.SetClearOnAlloc(on)
	}
}

// Live returns the total number of outstanding handles across all pools.
func (p *Pools) Live() int {
	n := 0
	for _, a := range p.arenas {
		n += a.live
	}
	return n
}

// Close unmaps every pool and returns the budget reservations as made, even
// where the arena rounded its size down.
func (p *Pools) Close() error {
	var errs []error
	for i, a := range p.arenas {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
		if p.reserver != nil {
			p.reserver.ReleaseArena(p.reserved[i])
		}
	}
	p.arenas = nil
	p.reserved = nil
	return errors.Join(errs...)
}
