package ingest

import (
	"context"

	"github.com/tastebase/recipedex/internal/repository/recipestore"
)

// Repository defines the storage contract for the recipe lifecycle.
type Repository interface {
	Upsert(ctx context.Context, rec recipestore.Record) error
	Get(ctx context.Context, ids []string) ([]recipestore.Record, error)
	GetAll(ctx context.Context, cursor string, limit int) ([]recipestore.Record, string, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Source supplies raw recipe records for bulk ingestion.
type Source interface {
	// Next returns the next raw record. io.EOF signals the end of the
	// source.
	Next(ctx context.Context) (map[string]any, error)
}

// Tagger infers dietary tags from ingredient names.
type Tagger interface {
	Infer(ingredientNames []string) []string
}
