package recipestore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/domain"
)

// backend is the subset of db.Store the factory probes and passes through.
type backend interface {
	store
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// New resolves backend availability once and returns either the primary
// repo or the in-memory fallback. The decision is made here, at
// construction time, so callers hold a single polymorphic Store and no
// request-path code ever branches on backend health. Backend loss is
// surfaced as a log warning only, never to the end user.
func New(
	ctx context.Context, b backend, embedder domain.Embedder,
	keyPrefix, collection string, readiness time.Duration,
	hnsw HNSWConfig, logger *zap.Logger,
) Store {
	if b == nil {
		logger.Warn("No storage backend configured, using in-memory fallback",
			zap.String("collection", collection))
		return NewFallback()
	}

	if err := b.WaitForReady(ctx, readiness); err != nil {
		logger.Warn("Storage backend unreachable, using in-memory fallback",
			zap.String("collection", collection),
			zap.Error(err),
			zap.NamedError("cause", domain.ErrBackendUnavailable))
		return NewFallback()
	}

	repo, err := NewRepo(ctx, b, embedder, keyPrefix, collection)
	if err != nil {
		logger.Warn("Storage index setup failed, using in-memory fallback",
			zap.String("collection", collection), zap.Error(err))
		return NewFallback()
	}
	return repo.WithHNSW(hnsw)
}
