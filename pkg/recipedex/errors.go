package recipedex

import "github.com/tastebase/recipedex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrRecipeNotFound         = domain.ErrRecipeNotFound
	ErrMalformedRecord        = domain.ErrMalformedRecord
	ErrInvalidFilter          = domain.ErrInvalidFilter
	ErrBackendUnavailable     = domain.ErrBackendUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrSyncCancelled          = domain.ErrSyncCancelled
)
