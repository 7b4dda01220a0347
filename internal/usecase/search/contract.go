package search

import (
	"context"

	"github.com/tastebase/recipedex/internal/repository/recipestore"
)

// Repository defines the storage contract for search over recipes.
type Repository interface {
	Get(ctx context.Context, ids []string) ([]recipestore.Record, error)
	GetAll(ctx context.Context, cursor string, limit int) ([]recipestore.Record, string, error)
	SimilarityQuery(ctx context.Context, text string, k int) ([]string, error)
}

// CacheStore persists computed search results keyed by filter digest.
// It is the same store contract the recipe collection uses, pointed at a
// separate collection.
type CacheStore interface {
	Upsert(ctx context.Context, rec recipestore.Record) error
	Get(ctx context.Context, ids []string) ([]recipestore.Record, error)
	Delete(ctx context.Context, id string) error
}
