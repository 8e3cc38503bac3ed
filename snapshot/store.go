package snapshot

import (
	"context"
	"io"
)

// ObjectStore is the minimal blob surface the snapshot layer needs from a
// storage backend. Implementations translate their backend's missing-object
// error to ErrObjectNotFound so callers can test for it uniformly.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Reader(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Save persists an encoded snapshot under name.
func Save(ctx context.Context, store ObjectStore, name string, data []byte) error {
	if store == nil {
		return ErrNilStore
	}
	return store.Put(ctx, name, data)
}

// Load reads back the full encoded snapshot stored under name.
func Load(ctx context.Context, store ObjectStore, name string) ([]byte, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	r, err := store.Reader(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
