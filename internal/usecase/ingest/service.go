// Package ingest turns raw recipe records into stored knowledge entries:
// parse, infer dietary tags, flatten metadata and upsert.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/codec"
	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/domain/recipe"
	"github.com/tastebase/recipedex/internal/domain/syncrun"
	"github.com/tastebase/recipedex/internal/metrics"
	"github.com/tastebase/recipedex/internal/repository/recipestore"
)

// Service handles recipe ingestion.
type Service struct {
	repo   Repository
	tagger Tagger
	logger *zap.Logger
}

// New creates an ingest service.
func New(repo Repository, tagger Tagger, logger *zap.Logger) *Service {
	return &Service{repo: repo, tagger: tagger, logger: logger}
}

// Ingest parses one raw record, enriches it with inferred dietary tags and
// stores it. Returns the stored recipe.
func (s *Service) Ingest(ctx context.Context, raw map[string]any) (recipe.Recipe, error) {
	rec, err := recipe.FromRaw(raw)
	if err != nil {
		metrics.IngestRecordsTotal.WithLabelValues("failed").Inc()
		return recipe.Recipe{}, fmt.Errorf("parse raw record: %w", err)
	}

	rec = s.enrich(rec)

	if err := s.Store(ctx, rec); err != nil {
		metrics.IngestRecordsTotal.WithLabelValues("failed").Inc()
		return recipe.Recipe{}, err
	}

	metrics.IngestRecordsTotal.WithLabelValues("ok").Inc()
	return rec, nil
}

// Store persists an already-parsed recipe without re-running tag inference.
func (s *Service) Store(ctx context.Context, rec recipe.Recipe) error {
	metadata, err := codec.Encode(&rec)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	body, err := codec.EncodeJSON(&rec)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	record := recipestore.Record{
		ID:       rec.ID(),
		Document: rec.EmbeddingText(),
		JSON:     body,
		Metadata: metadata,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("upsert recipe %s: %w", rec.ID(), err)
	}
	return nil
}

// IngestAll drains a source record by record. One bad record is logged and
// counted, never aborts the run; context cancellation does abort.
func (s *Service) IngestAll(ctx context.Context, src Source) (*syncrun.Manifest, error) {
	manifest := &syncrun.Manifest{}

	for {
		if err := ctx.Err(); err != nil {
			return manifest, err
		}

		raw, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return manifest, fmt.Errorf("read source: %w", err)
		}
		manifest.SourceCount++

		rec, err := s.Ingest(ctx, raw)
		if err != nil {
			id, _ := raw["id"].(string)
			s.logger.Warn("skipping record",
				zap.String("id", id),
				zap.Error(err),
			)
			manifest.Add(syncrun.NewFailed(id, err))
			continue
		}
		manifest.Add(syncrun.NewOK(rec.ID()))
	}

	return manifest, nil
}

// Get returns one stored recipe by id.
func (s *Service) Get(ctx context.Context, id string) (recipe.Recipe, error) {
	records, err := s.repo.Get(ctx, []string{id})
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("get recipe %s: %w", id, err)
	}
	if len(records) == 0 {
		return recipe.Recipe{}, fmt.Errorf("recipe %s: %w", id, domain.ErrRecipeNotFound)
	}
	return decodeRecord(records[0])
}

// List pages through stored recipes in insertion order.
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]recipe.Recipe, string, error) {
	records, next, err := s.repo.GetAll(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list recipes: %w", err)
	}

	recipes := make([]recipe.Recipe, 0, len(records))
	for _, rec := range records {
		r, err := decodeRecord(rec)
		if err != nil {
			s.logger.Warn("skipping unreadable record",
				zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes, next, nil
}

// decodeRecord prefers the full JSON body, falling back to flattened
// metadata for records written before the body field existed.
func decodeRecord(rec recipestore.Record) (recipe.Recipe, error) {
	if rec.JSON != "" {
		if r, err := codec.DecodeJSON(rec.JSON); err == nil {
			return r, nil
		}
	}
	return codec.Decode(rec.Metadata)
}

// Delete removes a stored recipe. Deleting an absent id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	return nil
}

// Count returns the number of stored recipes.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// enrich merges inferred dietary tags with any tags the record already
// carries. Inference is conservative, so explicit tags always survive.
func (s *Service) enrich(rec recipe.Recipe) recipe.Recipe {
	inferred := s.tagger.Infer(rec.IngredientNames())
	if len(inferred) == 0 {
		return rec
	}
	merged := recipe.NormalizeTags(append(rec.Diets(), inferred...))
	return rec.WithDiets(merged)
}
