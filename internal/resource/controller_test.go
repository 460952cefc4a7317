package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_ArenaBudget(t *testing.T) {
	c := NewController(Config{ArenaBudgetBytes: 100})

	require.NoError(t, c.ReserveArena(50))
	assert.Equal(t, int64(50), c.ArenaUsage())

	require.NoError(t, c.ReserveArena(40))
	assert.Equal(t, int64(90), c.ArenaUsage())

	err := c.ReserveArena(20)
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, int64(90), c.ArenaUsage())

	c.ReleaseArena(50)
	assert.Equal(t, int64(40), c.ArenaUsage())

	require.NoError(t, c.ReserveArena(20))
	assert.Equal(t, int64(60), c.ArenaUsage())
	assert.Equal(t, int64(100), c.ArenaBudget())
}

func TestController_UnlimitedArena(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.ReserveArena(1<<20))
	assert.Equal(t, int64(1<<20), c.ArenaUsage())

	c.ReleaseArena(1 << 19)
	assert.Equal(t, int64(1<<19), c.ArenaUsage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxSlowWorkers: 2})

	require.NoError(t, c.AcquireWorker(t.Context()))
	require.NoError(t, c.AcquireWorker(t.Context()))
	assert.False(t, c.TryAcquireWorker())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireWorker(ctx))

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())
}

func TestController_Flash(t *testing.T) {
	c := NewController(Config{FlashBytesPerSec: 1000})

	assert.True(t, c.AllowFlash(600))
	assert.False(t, c.AllowFlash(600))
	assert.False(t, c.AllowFlash(5000))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.WaitFlash(ctx, 1000))
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.ReserveArena(10))
	c.ReleaseArena(10)
	assert.Equal(t, int64(0), c.ArenaUsage())
	assert.NoError(t, c.AcquireWorker(context.Background()))
	assert.True(t, c.TryAcquireWorker())
	c.ReleaseWorker()
	assert.NoError(t, c.WaitFlash(context.Background(), 1<<20))
	assert.True(t, c.AllowFlash(1<<20))
}
