package snapshot

import "go.uber.org/zap"

// StoreOption is a generic option type shared by the store implementations.
// Implementations type assert to their own options struct and ignore
// options aimed at another implementation.
type StoreOption func(any)

type storeOptions struct {
	log *zap.SugaredLogger
}

func newStoreOptions(opts ...StoreOption) storeOptions {
	options := storeOptions{
		log: zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(&options)
	}
	return options
}

// WithLogger directs a store's diagnostics to the given logger. The default
// is a no-op logger.
func WithLogger(log *zap.SugaredLogger) StoreOption {
	return func(opts any) {
		if o, ok := opts.(*storeOptions); ok && log != nil {
			o.log = log
		}
	}
}
