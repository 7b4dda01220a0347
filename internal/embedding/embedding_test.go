package embedding

import (
	"context"
	"testing"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHash(0)
	if e.Dimensions() != DefaultDimensions {
		t.Fatalf("expected default dims %d, got %d", DefaultDimensions, e.Dimensions())
	}

	a, err := e.Embed(context.Background(), "green curry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := e.Embed(context.Background(), "green curry")

	if len(a) != DefaultDimensions {
		t.Fatalf("expected %d dims, got %d", DefaultDimensions, len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestHashEmbedder_Range(t *testing.T) {
	e := NewHash(64)
	vec, _ := e.Embed(context.Background(), "anything at all")
	for i, v := range vec {
		if v < -1 || v > 1 {
			t.Errorf("index %d: %v out of [-1, 1]", i, v)
		}
	}
}

func TestHashEmbedder_DifferentTextsDiffer(t *testing.T) {
	e := NewHash(32)
	a, _ := e.Embed(context.Background(), "pad thai")
	b, _ := e.Embed(context.Background(), "lasagna")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should not share a vector")
	}
}

func TestHashEmbedder_EmptyTextZeroVector(t *testing.T) {
	e := NewHash(16)
	vec, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("empty text must not error: %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("index %d: expected 0, got %v", i, v)
		}
	}
}

func TestTokenFeatureEmbedder_Deterministic(t *testing.T) {
	e := NewTokenFeature(48)
	a, err := e.Embed(context.Background(), "spicy tofu noodles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := e.Embed(context.Background(), "spicy tofu noodles")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestTokenFeatureEmbedder_NormalizedRange(t *testing.T) {
	e := NewTokenFeature(48)
	vec, _ := e.Embed(context.Background(), "one two three four five six seven")
	var hasNonZero bool
	for i, v := range vec {
		if v < 0 || v > 1 {
			t.Errorf("index %d: %v out of [0, 1]", i, v)
		}
		if v != 0 {
			hasNonZero = true
		}
	}
	if !hasNonZero {
		t.Error("expected non-zero features")
	}
}

func TestTokenFeatureEmbedder_EmptyTextZeroVector(t *testing.T) {
	e := NewTokenFeature(8)
	vec, err := e.Embed(context.Background(), "   ")
	if err != nil {
		t.Fatalf("whitespace-only text must not error: %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("index %d: expected 0, got %v", i, v)
		}
	}
}

func TestTokenFeatureEmbedder_CaseInsensitive(t *testing.T) {
	e := NewTokenFeature(32)
	a, _ := e.Embed(context.Background(), "Green CURRY")
	b, _ := e.Embed(context.Background(), "green curry")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("tokenization must lowercase, index %d differs", i)
		}
	}
}
