package embedding

import (
	"context"
	"strings"
)

// TokenFeatureEmbedder derives a vector from lightweight per-token features:
// position, length and character sum. Texts sharing rare words land slightly
// closer together than random. This is a weak approximation, never a
// substitute for a real embedding model.
type TokenFeatureEmbedder struct {
	dims int
}

// NewTokenFeature creates a token-feature-strategy embedder.
func NewTokenFeature(dims int) *TokenFeatureEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &TokenFeatureEmbedder{dims: dims}
}

// Embed implements domain.Embedder. Deterministic for any input; the empty
// string (no tokens) yields the zero vector so min-max normalization never
// divides by zero.
func (e *TokenFeatureEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)

	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return vec, nil
	}

	for pos, tok := range tokens {
		var charSum int
		for _, r := range tok {
			charSum += int(r)
		}
		// Signature mixes position, length and character content so
		// anagrams at different positions do not collide.
		sig := float32((pos+1)*len(tok)) + float32(charSum)/100.0
		vec[pos%e.dims] += sig
	}

	minMaxNormalize(vec)
	return vec, nil
}

// Dimensions returns the fixed vector width.
func (e *TokenFeatureEmbedder) Dimensions() int { return e.dims }

// minMaxNormalize rescales the vector in place to [0, 1]. A flat vector
// (max == min) is left untouched to avoid division by zero.
func minMaxNormalize(vec []float32) {
	minV, maxV := vec[0], vec[0]
	for _, v := range vec[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	spread := maxV - minV
	if spread == 0 {
		return
	}
	for i, v := range vec {
		vec[i] = (v - minV) / spread
	}
}
