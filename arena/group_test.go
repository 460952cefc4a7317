package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_ReleaseAll(t *testing.T) {
	fast := newTestArena(t, 1024)
	slow := newTestArena(t, 8192)

	var g Group
	_, err := g.Alloc(fast, 64)
	require.NoError(t, err)
	buf, err := g.AllocFloat32s(slow, 1000)
	require.NoError(t, err)
	assert.Len(t, buf, 1000)
	_, err = g.Alloc(fast, 32)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, fast.Live())
	assert.Equal(t, 1, slow.Live())

	require.NoError(t, g.ReleaseAll())
	assert.Zero(t, g.Len())
	assert.Equal(t, []Block{{Offset: 0, Size: 1024 - HeaderSize}}, fast.FreeBlocks())
	assert.Equal(t, []Block{{Offset: 0, Size: 8192 - HeaderSize}}, slow.FreeBlocks())

	// Releasing an empty group is a no-op.
	require.NoError(t, g.ReleaseAll())
}

func TestGroup_Full(t *testing.T) {
	a := newTestArena(t, 64*1024)

	var g Group
	for i := 0; i < MaxGroupHandles; i++ {
		_, err := g.Alloc(a, 8)
		require.NoError(t, err)
	}

	_, err := g.Alloc(a, 8)
	assert.ErrorIs(t, err, ErrGroupFull)
	_, err = g.AllocFloat32s(a, 2)
	assert.ErrorIs(t, err, ErrGroupFull)
	assert.Equal(t, MaxGroupHandles, a.Live(), "a full group must not leak an allocation")

	require.NoError(t, g.ReleaseAll())
	assert.Zero(t, a.Live())
}

func TestGroup_OutOfMemoryLeavesGroupIntact(t *testing.T) {
	a := newTestArena(t, 256)

	var g Group
	_, err := g.Alloc(a, 128)
	require.NoError(t, err)

	_, err = g.Alloc(a, 512)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 1, g.Len())

	require.NoError(t, g.ReleaseAll())
	assert.Zero(t, a.Used())
}
