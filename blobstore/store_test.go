package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/fxcore/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "state")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "state", []byte("v1")))
	require.NoError(t, s.Put(ctx, "state", []byte("v2")))
	require.NoError(t, s.Put(ctx, "other", []byte("x")))

	data, err := s.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	if l, ok := s.(Lister); ok {
		names, err := l.List(ctx, "st")
		require.NoError(t, err)
		assert.Equal(t, []string{"state"}, names)
	}

	require.NoError(t, s.Delete(ctx, "state"))
	require.NoError(t, s.Delete(ctx, "state"))
	_, err = s.Get(ctx, "state")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	testStore(t, m)
	assert.Equal(t, 3, m.Puts())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Put(ctx, "x", nil), context.Canceled)
}

func TestMemoryStore_CopiesData(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	testStore(t, NewLocalStore(dir))

	_, err := os.Stat(filepath.Join(dir, "other"))
	assert.NoError(t, err)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_WriteFailureKeepsOldBlob(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, NewLocalStore(dir).Put(ctx, "state", []byte("good")))

	injected := errors.New("flash worn out")
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".tmp", fs.Fault{FailOnSync: true, Err: injected})

	s := NewLocalStore(dir, WithFileSystem(ffs))
	err := s.Put(ctx, "state", []byte("bad"))
	assert.ErrorIs(t, err, injected)

	data, err := s.Get(ctx, "state")
	require.NoError(t, err)
	assert.Equal(t, []byte("good"), data)

	_, err = os.Stat(filepath.Join(dir, "state.tmp"))
	assert.True(t, os.IsNotExist(err))
}
