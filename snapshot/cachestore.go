package snapshot

import (
	"bytes"
	"context"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// CachedStore is a read-through LRU cache over another ObjectStore.
// Snapshots are written once and read many times, so caching whole objects
// by name is enough; writes and deletes keep the cache coherent for this
// handle only. Another writer to the same backend invalidates nothing here,
// which mirrors the single-writer assumption of the rest of the package.
type CachedStore struct {
	inner ObjectStore
	blobs *lru.Cache[string, []byte]
	log   *zap.SugaredLogger
}

func NewCachedStore(inner ObjectStore, size int, opts ...StoreOption) (*CachedStore, error) {
	if inner == nil {
		return nil, ErrNilStore
	}
	options := newStoreOptions(opts...)
	blobs, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, blobs: blobs, log: options.log}, nil
}

func (s *CachedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.inner.Put(ctx, name, data); err != nil {
		return err
	}
	s.blobs.Add(name, append([]byte(nil), data...))
	return nil
}

func (s *CachedStore) Reader(ctx context.Context, name string) (io.ReadCloser, error) {
	if b, ok := s.blobs.Get(name); ok {
		s.log.Debugf("cachestore: hit %s", name)
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	r, err := s.inner.Reader(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.blobs.Add(name, b)
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *CachedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachedStore) Delete(ctx context.Context, name string) error {
	s.blobs.Remove(name)
	return s.inner.Delete(ctx, name)
}
