package minio

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/fxcore/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := Dial(ctx, "localhost:9000", "minioadmin", "minioadmin", "test-fxcore", "test-prefix/", false)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	data := []byte("preset 3")
	require.NoError(t, store.Put(ctx, "state", data))

	got, err := store.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "state")

	require.NoError(t, store.Delete(ctx, "state"))

	_, err = store.Get(ctx, "state")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
