package arena

import (
	"testing"

	"github.com/hupe1980/fxcore/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPools(t *testing.T) {
	p, err := NewPools([]PoolConfig{
		{Name: "fast", Size: 4096},
		{Name: "sdram", Size: 64 * 1024},
	})
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "fast", p.Default().Name())
	assert.Len(t, p.All(), 2)

	sdram, err := p.Get("sdram")
	require.NoError(t, err)
	assert.Equal(t, 64*1024, sdram.Size())

	_, err = p.Get("flash")
	assert.ErrorIs(t, err, ErrUnknownPool)

	p.SetClearOnAlloc(true)
	for _, a := range p.All() {
		assert.True(t, a.ClearOnAlloc())
	}
	p.SetClearOnAlloc(false)

	_, err = sdram.Alloc(100)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Live())
}

func TestPools_Budget(t *testing.T) {
	ctrl := resource.NewController(resource.Config{ArenaBudgetBytes: 16 * 1024})

	_, err := NewPools([]PoolConfig{
		{Name: "fast", Size: 8 * 1024},
		{Name: "sdram", Size: 16 * 1024},
	}, WithMemoryReserver(ctrl))
	assert.ErrorIs(t, err, resource.ErrBudgetExceeded)
	assert.Zero(t, ctrl.ArenaUsage(), "failed construction must return every reservation")

	p, err := NewPools([]PoolConfig{{Name: "fast", Size: 8 * 1024}}, WithMemoryReserver(ctrl))
	require.NoError(t, err)
	assert.Equal(t, int64(8*1024), ctrl.ArenaUsage())

	require.NoError(t, p.Close())
	assert.Zero(t, ctrl.ArenaUsage())
}

func TestPools_UnalignedBudget(t *testing.T) {
	ctrl := resource.NewController(resource.Config{ArenaBudgetBytes: 4096})

	p, err := NewPools([]PoolConfig{{Name: "fast", Size: 1001}}, WithMemoryReserver(ctrl))
	require.NoError(t, err)
	assert.Equal(t, int64(1001), ctrl.ArenaUsage())
	assert.Less(t, p.Default().Size(), 1001)

	require.NoError(t, p.Close())
	assert.Zero(t, ctrl.ArenaUsage())
}

func TestPools_GetUnknownDoesNotAllocate(t *testing.T) {
	p, err := NewPools([]PoolConfig{{Name: "fast", Size: 4096}})
	require.NoError(t, err)
	defer p.Close()

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = p.Get("sdram")
	})
	assert.Zero(t, allocs)
}

func TestPools_Invalid(t *testing.T) {
	_, err := NewPools(nil)
	assert.Error(t, err)

	_, err = NewPools([]PoolConfig{{Name: "a", Size: 1024}, {Name: "a", Size: 1024}})
	assert.Error(t, err)

	_, err = NewPools([]PoolConfig{{Name: "a", Size: 4}})
	assert.ErrorIs(t, err, ErrArenaTooSmall)
}
