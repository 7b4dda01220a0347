// Package recipedex is the embedded Go client for the recipe knowledge
// store. It wires the storage, embedding and search layers in-process, so
// applications can use the store as a library without running the HTTP API.
package recipedex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/codec"
	"github.com/tastebase/recipedex/internal/db"
	dbBolt "github.com/tastebase/recipedex/internal/db/bolt"
	dbRedis "github.com/tastebase/recipedex/internal/db/redis"
	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/domain/search/filter"
	"github.com/tastebase/recipedex/internal/embedding"
	"github.com/tastebase/recipedex/internal/repository/recipestore"
	"github.com/tastebase/recipedex/internal/tagger"
	healthuc "github.com/tastebase/recipedex/internal/usecase/health"
	ingestuc "github.com/tastebase/recipedex/internal/usecase/ingest"
	searchuc "github.com/tastebase/recipedex/internal/usecase/search"
	syncuc "github.com/tastebase/recipedex/internal/usecase/syncer"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "recipedex:"
)

// Recipe is the public transfer form of a stored recipe.
type Recipe = codec.RecipeDTO

// Filter narrows a search. Zero-value dimensions are ignored; values within
// cuisines or diets combine with OR, dimensions combine with AND.
type Filter struct {
	Cuisines   []string
	Diets      []string
	Ingredient string
	Query      string
}

// Health reports per-component status of the store.
type Health struct {
	Status string
	Checks map[string]string
}

// Client is the recipedex library entry point.
type Client struct {
	store   db.Store
	recipes *ingestuc.Service
	search  *searchuc.Service
	syncer  *syncuc.Service
	health  *healthuc.Service
}

// New creates a Client and connects to the backend. The provided context
// bounds the initial readiness check; an unreachable backend degrades to
// the in-memory fallback store rather than failing.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: defaultKeyPrefix,
		readiness: defaultReadinessTimeout,
		cacheTTL:  searchuc.DefaultTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	embedder := createEmbedder(cfg)

	hnsw := recipestore.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct}
	recipeStore := recipestore.New(
		ctx, store, embedder, cfg.keyPrefix, "recipes", cfg.readiness, hnsw, cfg.logger,
	)
	var cacheStore recipestore.Store
	if cfg.cacheTTL > 0 {
		cacheStore = recipestore.New(
			ctx, store, embedder, cfg.keyPrefix, "searchdocs", cfg.readiness, hnsw, cfg.logger,
		)
	}

	ingestSvc := ingestuc.New(recipeStore, tagger.Heuristic{}, cfg.logger)

	return &Client{
		store:   store,
		recipes: ingestSvc,
		search:  searchuc.New(recipeStore, cacheStore, cfg.cacheTTL, cfg.logger),
		syncer:  syncuc.New(recipeStore, ingestSvc, cfg.logger),
		health:  healthuc.New(store, nil, recipeStore),
	}, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("recipedex: create redis store: %w", err)
		}
		return s, nil
	case "bolt":
		s, err := dbBolt.NewStore(cfg.boltPath)
		if err != nil {
			return nil, fmt.Errorf("recipedex: create bolt store: %w", err)
		}
		return s, nil
	case "":
		return nil, fmt.Errorf("recipedex: backend required (use WithRedis or WithBolt)")
	default:
		return nil, fmt.Errorf("recipedex: unknown driver %q", cfg.driver)
	}
}

func createEmbedder(cfg *clientConfig) domain.Embedder {
	switch cfg.embedStrategy {
	case "token":
		return embedding.NewTokenFeature(cfg.dimensions)
	default:
		return embedding.NewHash(cfg.dimensions)
	}
}

// Upsert parses a raw recipe record, infers dietary tags and stores it.
func (c *Client) Upsert(ctx context.Context, raw map[string]any) (Recipe, error) {
	rec, err := c.recipes.Ingest(ctx, raw)
	if err != nil {
		return Recipe{}, err
	}
	return codec.ToDTO(&rec), nil
}

// Get returns one stored recipe by id.
func (c *Client) Get(ctx context.Context, id string) (Recipe, error) {
	rec, err := c.recipes.Get(ctx, id)
	if err != nil {
		return Recipe{}, err
	}
	return codec.ToDTO(&rec), nil
}

// List pages through stored recipes in insertion order. An empty cursor
// starts from the beginning.
func (c *Client) List(ctx context.Context, cursor string, limit int) ([]Recipe, string, error) {
	recs, next, err := c.recipes.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", err
	}
	out := make([]Recipe, len(recs))
	for i := range recs {
		out[i] = codec.ToDTO(&recs[i])
	}
	return out, next, nil
}

// Delete removes a stored recipe. Deleting an absent id is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.recipes.Delete(ctx, id)
}

// Count returns the number of stored recipes.
func (c *Client) Count(ctx context.Context) (int, error) {
	return c.recipes.Count(ctx)
}

// Search returns recipes matching the filter with the total match count.
func (c *Client) Search(ctx context.Context, f Filter, limit, offset int) ([]Recipe, int, error) {
	df := filter.New(f.Cuisines, f.Diets, f.Ingredient, f.Query)
	recs, total, err := c.search.Search(ctx, df, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]Recipe, len(recs))
	for i := range recs {
		out[i] = codec.ToDTO(&recs[i])
	}
	return out, total, nil
}

// Export writes every stored recipe to path as one JSON snapshot. Returns
// the number of exported recipes.
func (c *Client) Export(ctx context.Context, path string) (int, error) {
	return c.syncer.Export(ctx, path, nil)
}

// Import replays a snapshot file. Returns per-record counts.
func (c *Client) Import(ctx context.Context, path string) (ok, failed int, err error) {
	manifest, err := c.syncer.Import(ctx, path, nil)
	if manifest == nil {
		return 0, 0, err
	}
	return manifest.Succeeded(), manifest.Failed(), err
}

// Healthy reports per-component health. A store serving from its fallback
// reports degraded.
func (c *Client) Healthy(ctx context.Context) Health {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return Health{Status: string(report.Status), Checks: checks}
}

// Close releases the backend connection.
func (c *Client) Close() {
	c.store.Close()
}
