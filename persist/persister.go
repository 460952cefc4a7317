package persist

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Persister writes submitted records in the background. Submissions made
// while a write is pending replace it, so only the latest state is written.
type Persister struct {
	store   *Store
	limiter *rate.Limiter
	logger  *slog.Logger

	mu      sync.Mutex
	pending *Record
	wake    chan struct{}

	saved    atomic.Uint64
	failures atomic.Uint64
}

// PersisterOption configures a Persister.
type PersisterOption func(*Persister)

// WithMinInterval limits writes to one per interval. Zero disables the limit.
func WithMinInterval(d time.Duration) PersisterOption {
	return func(p *Persister) {
		if d <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		p.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLogger sets the logger for write failures.
func WithLogger(l *slog.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPersister creates a Persister writing to store.
func NewPersister(store *Store, opts ...PersisterOption) *Persister {
	p := &Persister{
		store:   store,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  slog.New(slog.DiscardHandler),
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit queues rec for writing. It never blocks.
func (p *Persister) Submit(rec Record) {
	p.mu.Lock()
	p.pending = &rec
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Pending reports whether a record is waiting to be written.
func (p *Persister) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Saved returns the number of successful writes.
func (p *Persister) Saved() uint64 { return p.saved.Load() }

// Failures returns the number of failed writes.
func (p *Persister) Failures() uint64 { return p.failures.Load() }

// Run writes submitted records until ctx is done. A failed write is retried
// at the next interval unless a newer record arrived in the meantime.
func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.wake:
		}

		if err := p.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := p.Flush(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			select {
			case p.wake <- struct{}{}:
			default:
			}
		}
	}
}

// Flush writes the pending record now, ignoring the interval.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	rec := p.pending
	p.pending = nil
	p.mu.Unlock()

	if rec == nil {
		return nil
	}

	n, err := p.store.Save(ctx, *rec)
	if err != nil {
		p.failures.Add(1)
		p.logger.Warn("persist failed", "preset", rec.Preset, "error", err)

		p.mu.Lock()
		if p.pending == nil {
			p.pending = rec
		}
		p.mu.Unlock()
		return err
	}

	p.saved.Add(1)
	p.logger.Debug("persisted", "preset", rec.Preset, "bytes", n)
	return nil
}
