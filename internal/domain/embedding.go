package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Implementations must be deterministic: the same text always yields the
// same vector, so repeated ingestion does not perturb stored similarity
// relationships.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
