package syncer

import (
	"context"

	"github.com/tastebase/recipedex/internal/domain/recipe"
	"github.com/tastebase/recipedex/internal/repository/recipestore"
)

// Repository defines the storage contract for export scans.
type Repository interface {
	GetAll(ctx context.Context, cursor string, limit int) ([]recipestore.Record, string, error)
	Count(ctx context.Context) (int, error)
}

// Ingestor stores one raw record on import.
type Ingestor interface {
	Ingest(ctx context.Context, raw map[string]any) (recipe.Recipe, error)
}
