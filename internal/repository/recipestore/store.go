// Package recipestore owns the persistent recipe collections: full recipe
// documents and the lightweight search documents. Both live behind the same
// Store contract, with a primary backend-driven implementation and an
// in-memory fallback selected once at construction time.
package recipestore

import "context"

// Record is one stored entry: the embedding document body, the full recipe
// JSON and the scalar-only metadata projection.
type Record struct {
	ID       string
	Document string
	JSON     string
	Metadata map[string]string
	Vector   []float32
}

// Store is the recipe knowledge store contract. The fallback implementation
// honors the same contracts for exact-id lookup and substring search;
// SimilarityQuery legitimately degrades to substring ranking there.
type Store interface {
	// Upsert inserts or fully replaces the record with the same id.
	Upsert(ctx context.Context, rec Record) error
	// Get returns records for the ids that exist; missing ids are silently
	// omitted, so callers must handle fewer results than requested.
	Get(ctx context.Context, ids []string) ([]Record, error)
	// GetAll pages through the whole collection. An empty cursor starts
	// from the beginning; the returned cursor resumes after a crash.
	GetAll(ctx context.Context, cursor string, limit int) ([]Record, string, error)
	// SimilarityQuery returns the ids of the k entries nearest to text.
	SimilarityQuery(ctx context.Context, text string, k int) ([]string, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
	// Delete removes a record; deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	// Available reports whether the primary backend is serving. False
	// means the in-memory fallback is active.
	Available() bool
}
