package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudit_DetectsCorruption(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		a := newTestArena(t, 1024)
		h, err := a.Alloc(100)
		require.NoError(t, err)
		_, err = a.Alloc(50)
		require.NoError(t, err)
		require.NoError(t, a.Release(h))
		assert.NoError(t, a.Audit())
	})

	t.Run("overwritten header", func(t *testing.T) {
		a := newTestArena(t, 1024)
		h, err := a.Alloc(100)
		require.NoError(t, err)
		_, err = a.Alloc(100)
		require.NoError(t, err)

		// Scribble over the header that follows the first payload.
		a.setTag(h.Offset+104, 0xDEADBEEF)

		assert.Error(t, a.Audit())
	})

	t.Run("used bytes drift", func(t *testing.T) {
		a := newTestArena(t, 1024)
		_, err := a.Alloc(100)
		require.NoError(t, err)
		a.used += 8

		assert.Error(t, a.Audit())
	})

	t.Run("free list cycle", func(t *testing.T) {
		a := newTestArena(t, 1024)
		h1, _ := a.Alloc(64)
		_, _ = a.Alloc(64)
		require.NoError(t, a.Release(h1))

		// Point the tail block back at the head.
		blocks := a.FreeBlocks()
		require.Len(t, blocks, 2)
		a.setNext(uint32(blocks[1].Offset), uint32(blocks[0].Offset))

		assert.Error(t, a.Audit())
	})
}
