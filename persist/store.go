package persist

import (
	"context"
	"errors"

	"github.com/hupe1980/fxcore/blobstore"
	"github.com/hupe1980/fxcore/codec"
	"github.com/hupe1980/fxcore/internal/resource"
)

// DefaultName is the blob name of the device state.
const DefaultName = "device-state"

// Store loads and saves Records through a blob store.
type Store struct {
	blobs       blobstore.Store
	name        string
	codec       codec.Codec
	compression Compression
	budget      *resource.Controller
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithName overrides the blob name.
func WithName(name string) StoreOption {
	return func(s *Store) {
		if name != "" {
			s.name = name
		}
	}
}

// WithCodec sets the codec used for writing.
func WithCodec(c codec.Codec) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithCompression sets the compression used for writing.
func WithCompression(c Compression) StoreOption {
	return func(s *Store) { s.compression = c }
}

// WithFlashBudget throttles writes against the controller's flash budget.
func WithFlashBudget(rc *resource.Controller) StoreOption {
	return func(s *Store) { s.budget = rc }
}

// NewStore creates a Store on top of blobs.
func NewStore(blobs blobstore.Store, opts ...StoreOption) *Store {
	s := &Store{
		blobs: blobs,
		name:  DefaultName,
		codec: codec.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the stored record. ok is false if nothing was stored yet.
func (s *Store) Load(ctx context.Context) (rec Record, ok bool, err error) {
	data, err := s.blobs.Get(ctx, s.name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	rec, err = Decode(data)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Save encodes and stores rec. It returns the number of bytes written.
func (s *Store) Save(ctx context.Context, rec Record) (int, error) {
	data, err := Encode(rec, s.codec, s.compression)
	if err != nil {
		return 0, err
	}
	if err := s.budget.WaitFlash(ctx, len(data)); err != nil {
		return 0, err
	}
	if err := s.blobs.Put(ctx, s.name, data); err != nil {
		return 0, err
	}
	return len(data), nil
}
