// Package persist loads a tables.Store from disk and keeps it saved.
//
// Two backends exist: an embedded SQLite database with one SQL table per
// store table, and a single JSON document on the local filesystem. Both
// follow the same lifecycle: Load once at startup, then StartAutoSave so
// every later mutation is written back.
package persist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/internal/tables"
)

// Persister moves store content to and from a storage backend.
type Persister interface {
	// Load replaces the store content with what the backend holds. An
	// empty or missing backend leaves the store untouched.
	Load(ctx context.Context) error

	// Save writes the full store content to the backend.
	Save(ctx context.Context) error

	// StartAutoSave writes every subsequent store change to the backend
	// until StopAutoSave is called or ctx is cancelled.
	StartAutoSave(ctx context.Context) error

	// StopAutoSave stops auto-saving after flushing queued changes.
	StopAutoSave()

	// Describe names the backend and its location for display.
	Describe() string

	// Close stops background work and releases the backend.
	Close() error
}

// Option configures a persister.
type Option func(*options)

type options struct {
	onError  func(error)
	queueLen int
}

// WithErrorHandler sets a callback for errors raised by background saves
// and loads. Errors are always logged.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// WithQueueLength sets how many changes may wait for the auto-saver
// before mutations block.
func WithQueueLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueLen = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{queueLen: 64}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open creates the persister selected by the storage configuration.
func Open(cfg model.StorageConfig, s *tables.Store, logger *zap.Logger, opts ...Option) (Persister, error) {
	path := cfg.StoragePath()
	switch cfg.Backend {
	case model.BackendSQLite, "":
		return NewSQLitePersister(path, s, logger, opts...)
	case model.BackendFile:
		return NewFilePersister(path, s, logger, opts...)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// LoadThenAutoSave loads the store once and then starts auto-saving.
func LoadThenAutoSave(ctx context.Context, p Persister) error {
	if err := p.Load(ctx); err != nil {
		return fmt.Errorf("loading store: %w", err)
	}
	if err := p.StartAutoSave(ctx); err != nil {
		return fmt.Errorf("starting auto-save: %w", err)
	}
	return nil
}
