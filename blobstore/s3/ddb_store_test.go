package s3

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/fxcore/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDDBStore_NotFoundBeforeCommit(t *testing.T) {
	store := NewDDBStore(newMockDDBClient(), "fxcore-state", "dev/", 2)

	_, err := store.Get(context.Background(), "state")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBStore_VersionsAndPruning(t *testing.T) {
	ddb := newMockDDBClient()
	store := NewDDBStore(ddb, "fxcore-state", "dev/", 2)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		require.NoError(t, store.Put(ctx, "state", []byte(fmt.Sprintf("v%d", i))))
	}

	data, err := store.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, "v4", string(data))

	versions, err := store.Versions(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 3}, versions)

	require.NoError(t, store.Delete(ctx, "state"))
	assert.Equal(t, 0, ddb.len())
	_, err = store.Get(ctx, "state")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBStore_ConflictingWriter(t *testing.T) {
	ddb := newMockDDBClient()
	store := NewDDBStore(ddb, "fxcore-state", "dev/", 5)
	other := NewDDBStore(ddb, "fxcore-state", "dev/", 5)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "state", []byte("v1")))

	var once sync.Once
	ddb.beforePut = func() {
		once.Do(func() {
			// Another writer commits version 2 between our read and write.
			ddb.beforePut = nil
			require.NoError(t, other.Put(ctx, "state", []byte("theirs")))
		})
	}

	err := store.Put(ctx, "state", []byte("ours"))
	assert.ErrorIs(t, err, ErrConcurrentModification)

	data, err := store.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, "theirs", string(data))
}

func TestDDBStore_IsolatedPrefixes(t *testing.T) {
	ddb := newMockDDBClient()
	a := NewDDBStore(ddb, "fxcore-state", "a/", 1)
	b := NewDDBStore(ddb, "fxcore-state", "b/", 1)
	ctx := context.Background()

	require.NoError(t, a.Put(ctx, "state", []byte("a")))
	_, err := b.Get(ctx, "state")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
