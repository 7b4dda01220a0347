package ingest

import (
	"context"
	"errors"
	"io"
	"testing"

	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/domain/recipe"
	"github.com/tastebase/recipedex/internal/repository/recipestore"
	"github.com/tastebase/recipedex/internal/tagger"
)

// --- Mocks ---

type mockRepo struct {
	records   map[string]recipestore.Record
	upsertErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[string]recipestore.Record)}
}

func (m *mockRepo) Upsert(_ context.Context, rec recipestore.Record) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *mockRepo) Get(_ context.Context, ids []string) ([]recipestore.Record, error) {
	out := make([]recipestore.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := m.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockRepo) GetAll(_ context.Context, _ string, _ int) ([]recipestore.Record, string, error) {
	out := make([]recipestore.Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, "", nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	return len(m.records), nil
}

type sliceSource struct {
	raws []map[string]any
	pos  int
}

func (s *sliceSource) Next(_ context.Context) (map[string]any, error) {
	if s.pos >= len(s.raws) {
		return nil, io.EOF
	}
	raw := s.raws[s.pos]
	s.pos++
	return raw, nil
}

func newService(repo Repository) *Service {
	return New(repo, tagger.Heuristic{}, zap.NewNop())
}

// --- Tests ---

func TestIngest_StoresRecordWithInferredDiets(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	rec, err := svc.Ingest(context.Background(), map[string]any{
		"id":          "r1",
		"title":       "Tofu Stir Fry",
		"ingredients": []any{"tofu", "rice"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !recipe.HasTag(rec.Diets(), "vegan") {
		t.Errorf("expected inferred vegan tag, got %v", rec.Diets())
	}

	stored, ok := repo.records["r1"]
	if !ok {
		t.Fatal("expected record stored")
	}
	if stored.Document == "" || stored.JSON == "" {
		t.Errorf("expected document and json bodies, got %+v", stored)
	}
	if stored.Metadata["title"] != "Tofu Stir Fry" {
		t.Errorf("metadata missing title: %v", stored.Metadata)
	}
}

func TestIngest_ExplicitDietsSurviveMerge(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	// "keto" is never inferred; it must survive the merge with inference.
	rec, err := svc.Ingest(context.Background(), map[string]any{
		"id":          "r1",
		"ingredients": []any{"chicken"},
		"diets":       []any{"keto"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recipe.HasTag(rec.Diets(), "keto") {
		t.Errorf("explicit tag lost: %v", rec.Diets())
	}
	if recipe.HasTag(rec.Diets(), "vegetarian") {
		t.Errorf("chicken must block vegetarian, got %v", rec.Diets())
	}
}

func TestIngest_MalformedRecord(t *testing.T) {
	svc := newService(newMockRepo())
	_, err := svc.Ingest(context.Background(), map[string]any{"title": "No ID"})
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestIngest_RepoErrorSurfaced(t *testing.T) {
	repo := newMockRepo()
	repo.upsertErr = errors.New("backend down")
	svc := newService(repo)

	if _, err := svc.Ingest(context.Background(), map[string]any{"id": "r1"}); err == nil {
		t.Fatal("expected upsert error surfaced")
	}
}

func TestIngestAll_BadRecordsDoNotAbort(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	src := &sliceSource{raws: []map[string]any{
		{"id": "r1", "title": "Good"},
		{"title": "Missing ID"},
		{"id": "r2", "title": "Also Good"},
	}}

	manifest, err := svc.IngestAll(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if manifest.SourceCount != 3 {
		t.Errorf("expected 3 source records, got %d", manifest.SourceCount)
	}
	if manifest.Succeeded() != 2 || manifest.Failed() != 1 {
		t.Errorf("expected 2 ok / 1 failed, got %d / %d", manifest.Succeeded(), manifest.Failed())
	}
	if len(repo.records) != 2 {
		t.Errorf("expected 2 stored, got %d", len(repo.records))
	}
}

func TestIngestAll_CancelledContext(t *testing.T) {
	svc := newService(newMockRepo())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.IngestAll(ctx, &sliceSource{raws: []map[string]any{{"id": "r1"}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newService(newMockRepo())
	_, err := svc.Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("expected ErrRecipeNotFound, got %v", err)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, map[string]any{
		"id":           "r1",
		"title":        "Green Curry",
		"cuisines":     []any{"thai"},
		"instructions": []any{"simmer"},
	}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	got, err := svc.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title() != "Green Curry" || len(got.Instructions()) != 1 {
		t.Errorf("round trip lost data: %v", got)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)
	ctx := context.Background()

	_, _ = svc.Ingest(ctx, map[string]any{"id": "r1"})
	if err := svc.Delete(ctx, "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "r1"); err != nil {
		t.Fatalf("second delete must be a no-op: %v", err)
	}
}
