package chi

import (
	"github.com/tastebase/recipedex/internal/codec"
	"github.com/tastebase/recipedex/internal/domain/recipe"
)

// ErrorCode identifies an API error class.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeRecipeNotFound     ErrorCode = "recipe_not_found"
	CodeInvalidFilter      ErrorCode = "invalid_filter"
	CodeEmbeddingProvider  ErrorCode = "embedding_provider_error"
	CodeBackendUnavailable ErrorCode = "backend_unavailable"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /search body.
type SearchRequest struct {
	Filters map[string]any `json:"filters"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// SearchResponse is the POST /search reply.
type SearchResponse struct {
	Items []codec.RecipeDTO `json:"items"`
	Total int               `json:"total"`
}

// ListResponse is the GET /recipes reply.
type ListResponse struct {
	Items      []codec.RecipeDTO `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// HealthResponse is the GET /health reply.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recipesToDTO(recipes []recipe.Recipe) []codec.RecipeDTO {
	items := make([]codec.RecipeDTO, len(recipes))
	for i := range recipes {
		items[i] = codec.ToDTO(&recipes[i])
	}
	return items
}
