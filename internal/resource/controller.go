package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrBudgetExceeded is returned when an arena reservation would exceed the budget.
var ErrBudgetExceeded = errors.New("arena memory budget exceeded")

// Config holds resource limits.
type Config struct {
	// ArenaBudgetBytes is the hard limit for all arena pools together.
	// If 0, no hard limit is enforced (only tracking).
	ArenaBudgetBytes int64

	// MaxSlowWorkers is the maximum number of concurrent slow-context jobs.
	// If 0, defaults to 1.
	MaxSlowWorkers int64

	// FlashBytesPerSec is the maximum persistence write throughput.
	// If 0, unlimited.
	FlashBytesPerSec int64
}

// Controller manages device-wide budgets.
type Controller struct {
	cfg Config

	arenaSem  *semaphore.Weighted // nil if unlimited
	arenaUsed atomic.Int64

	workerSem *semaphore.Weighted

	flashLimiter *rate.Limiter
	flashBurst   int
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxSlowWorkers <= 0 {
		cfg.MaxSlowWorkers = 1
	}

	c := &Controller{
		cfg:       cfg,
		workerSem: semaphore.NewWeighted(cfg.MaxSlowWorkers),
	}

	if cfg.ArenaBudgetBytes > 0 {
		c.arenaSem = semaphore.NewWeighted(cfg.ArenaBudgetBytes)
	}

	if cfg.FlashBytesPerSec > 0 {
		c.flashBurst = int(cfg.FlashBytesPerSec)
		c.flashLimiter = rate.NewLimiter(rate.Limit(cfg.FlashBytesPerSec), c.flashBurst)
	}

	return c
}

// ReserveArena reserves bytes of the arena budget.
// Non-blocking - returns ErrBudgetExceeded if the budget would be exceeded.
func (c *Controller) ReserveArena(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.arenaSem != nil {
		if !c.arenaSem.TryAcquire(bytes) {
			return ErrBudgetExceeded
		}
	}

	c.arenaUsed.Add(bytes)
	return nil
}

// ReleaseArena returns a reservation made with ReserveArena.
func (c *Controller) ReleaseArena(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.arenaSem != nil {
		c.arenaSem.Release(bytes)
	}
	c.arenaUsed.Add(-bytes)
}

// ArenaUsage returns the currently reserved arena bytes.
func (c *Controller) ArenaUsage() int64 {
	if c == nil {
		return 0
	}
	return c.arenaUsed.Load()
}

// ArenaBudget returns the configured budget in bytes (0 if unlimited).
func (c *Controller) ArenaBudget() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.ArenaBudgetBytes
}

// AcquireWorker reserves a slow-context worker slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workerSem.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workerSem.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workerSem.Release(1)
}

// WaitFlash blocks until the flash budget allows writing n bytes.
// Requests larger than one second of budget are drawn down in burst-sized steps.
func (c *Controller) WaitFlash(ctx context.Context, n int) error {
	if c == nil || c.flashLimiter == nil {
		return nil
	}
	for n > 0 {
		step := min(n, c.flashBurst)
		if err := c.flashLimiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// AllowFlash reports whether n bytes may be written now, consuming tokens if so.
func (c *Controller) AllowFlash(n int) bool {
	if c == nil || c.flashLimiter == nil {
		return true
	}
	if n > c.flashBurst {
		return false
	}
	return c.flashLimiter.AllowN(time.Now(), n)
}
