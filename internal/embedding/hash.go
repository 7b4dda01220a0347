// Package embedding provides the text vectorization strategies used when no
// real ML embedding model is configured, plus the OpenAI-compatible provider
// and a caching decorator. The local strategies are deterministic stand-ins
// that keep the vector index shape valid; they are NOT a substitute for a
// real embedding model.
package embedding

import (
	"context"
	"crypto/sha256"
)

// DefaultDimensions is the vector width used when the config does not set one.
const DefaultDimensions = 384

// HashEmbedder stretches a cryptographic hash of the text cyclically over
// the vector dimensions. It captures no semantics at all: its only job is to
// give every document a stable, well-shaped vector.
type HashEmbedder struct {
	dims int
}

// NewHash creates a hash-strategy embedder.
func NewHash(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashEmbedder{dims: dims}
}

// Embed implements domain.Embedder. The empty string yields the zero vector,
// a defined result rather than an error.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	if text == "" {
		return vec, nil
	}

	sum := sha256.Sum256([]byte(text))
	for i := range vec {
		b := sum[i%len(sum)]
		// Map byte 0..255 onto [-1, 1].
		vec[i] = float32(b)/127.5 - 1
	}
	return vec, nil
}

// Dimensions returns the fixed vector width.
func (e *HashEmbedder) Dimensions() int { return e.dims }
