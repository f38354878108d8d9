package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/metrics"
)

// SaveTimeout bounds a single fire-and-forget save.
const SaveTimeout = 5 * time.Second

// Persister writes versioned snapshots of a collection. Writes are serialized
// and a snapshot older than one already written is dropped, so the stored
// document always reflects the latest mutation.
type Persister[T any] struct {
	collection string
	save       func(ctx context.Context, v T) error
	logger     *slog.Logger

	mu      sync.Mutex
	written uint64
}

// NewPersister creates a persister for the named collection.
func NewPersister[T any](collection string, save func(ctx context.Context, v T) error, logger *slog.Logger) *Persister[T] {
	return &Persister[T]{collection: collection, save: save, logger: logger}
}

// Persist saves v as the given version. The save outlives ctx's cancellation
// so an aborted request still records its mutation. Failures are logged and
// returned; callers are free to ignore them.
func (p *Persister[T]) Persist(ctx context.Context, version uint64, v T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if version <= p.written {
		return nil
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SaveTimeout)
	defer cancel()

	if err := p.save(saveCtx, v); err != nil {
		metrics.PersistenceFailures.WithLabelValues(p.collection).Inc()
		p.logger.ErrorContext(ctx, "failed to persist collection",
			slog.String("collection", p.collection),
			slog.Uint64("version", version),
			slog.String("error", err.Error()),
		)
		return err
	}

	p.written = version
	return nil
}

// Written returns the latest version that was saved.
func (p *Persister[T]) Written() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}
