package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/fxcore/blobstore"
	"github.com/hupe1980/fxcore/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	*blobstore.MemoryStore

	mu   sync.Mutex
	fail error
}

func (f *flakyStore) setFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

func (f *flakyStore) Put(ctx context.Context, name string, data []byte) error {
	f.mu.Lock()
	err := f.fail
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryStore.Put(ctx, name, data)
}

func TestStore_LoadSave(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	store := NewStore(mem, WithName("state"), WithCompression(CompressionZSTD),
		WithFlashBudget(resource.NewController(resource.Config{FlashBytesPerSec: 1 << 20})))

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Save(ctx, sampleRecord())
	require.NoError(t, err)
	assert.Positive(t, n)

	rec, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sampleRecord(), rec)

	names, err := mem.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"state"}, names)
}

func TestStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(ctx, DefaultName, []byte("garbage garbage garbage")))

	_, ok, err := NewStore(mem).Load(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestPersister_FlushCoalesces(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	store := NewStore(mem)
	p := NewPersister(store)

	for i := 0; i < 3; i++ {
		rec := sampleRecord()
		rec.Preset = i
		p.Submit(rec)
	}
	assert.True(t, p.Pending())

	require.NoError(t, p.Flush(ctx))
	assert.False(t, p.Pending())
	assert.Equal(t, uint64(1), p.Saved())
	assert.Equal(t, 1, mem.Puts())

	rec, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, rec.Preset)

	// Nothing pending.
	require.NoError(t, p.Flush(ctx))
	assert.Equal(t, 1, mem.Puts())
}

func TestPersister_FailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	fs := &flakyStore{MemoryStore: blobstore.NewMemoryStore()}
	p := NewPersister(NewStore(fs))

	fs.setFail(errors.New("flash busy"))
	p.Submit(sampleRecord())
	assert.Error(t, p.Flush(ctx))
	assert.Equal(t, uint64(1), p.Failures())
	assert.True(t, p.Pending())

	fs.setFail(nil)
	require.NoError(t, p.Flush(ctx))
	assert.Equal(t, uint64(1), p.Saved())
}

func TestPersister_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mem := blobstore.NewMemoryStore()
	store := NewStore(mem)
	p := NewPersister(store, WithMinInterval(0))

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	p.Submit(sampleRecord())
	assert.Eventually(t, func() bool { return p.Saved() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPersister_RunRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fs := &flakyStore{MemoryStore: blobstore.NewMemoryStore()}
	fs.setFail(errors.New("flash busy"))
	p := NewPersister(NewStore(fs), WithMinInterval(5*time.Millisecond))

	go func() { _ = p.Run(ctx) }()

	p.Submit(sampleRecord())
	assert.Eventually(t, func() bool { return p.Failures() >= 1 }, time.Second, time.Millisecond)

	fs.setFail(nil)
	assert.Eventually(t, func() bool { return p.Saved() == 1 }, time.Second, time.Millisecond)
}
