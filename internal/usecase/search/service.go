// Package search answers filtered recipe queries through a digest-keyed
// result cache: identical filters hit the cached id list, fresh filters scan
// the collection once and store the outcome.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/codec"
	"github.com/tastebase/recipedex/internal/domain/recipe"
	"github.com/tastebase/recipedex/internal/domain/search/filter"
	"github.com/tastebase/recipedex/internal/metrics"
	"github.com/tastebase/recipedex/internal/repository/recipestore"
)

// DefaultTTL is how long a cached result list stays valid.
const DefaultTTL = 24 * time.Hour

// scanBatch is the page size used when scanning the recipe collection.
const scanBatch = 500

// cacheEntry is the JSON body of one cached result list.
type cacheEntry struct {
	Key       string   `json:"key"`
	IDs       []string `json:"ids"`
	CreatedAt int64    `json:"createdAt"` // unix seconds
}

// Service handles cached recipe search.
type Service struct {
	repo   Repository
	cache  CacheStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// New creates a search service. cache can be nil to disable result caching.
func New(repo Repository, cache CacheStore, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Key returns the cache key for a filter: the hex digest of its canonical
// form. Equivalent filters written in any order produce the same key.
func Key(f filter.Filter) string {
	sum := sha256.Sum256([]byte(f.Canonical()))
	return hex.EncodeToString(sum[:])
}

// Search returns recipes matching the filter, paged by offset and limit.
// The full matching id list is cached; paging happens on the cached list so
// every page of the same filter shares one computation.
func (s *Service) Search(
	ctx context.Context, f filter.Filter, limit, offset int,
) ([]recipe.Recipe, int, error) {
	start := time.Now()

	ids, cached, err := s.resolveIDs(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	label := "false"
	if cached {
		label = "true"
	}
	metrics.SearchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	total := len(ids)
	ids = page(ids, limit, offset)
	if len(ids) == 0 {
		return nil, total, nil
	}

	records, err := s.repo.Get(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve recipes: %w", err)
	}

	recipes := make([]recipe.Recipe, 0, len(records))
	for _, rec := range records {
		r, err := decodeRecord(rec.JSON, rec.Metadata)
		if err != nil {
			// A cached id can outlive its record or point at a
			// corrupt one. Skip it rather than failing the page.
			s.logger.Warn("skipping unreadable record",
				zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes, total, nil
}

// Invalidate drops the cached result list for a filter.
func (s *Service) Invalidate(ctx context.Context, f filter.Filter) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, Key(f))
}

// resolveIDs returns the matching id list, from cache when fresh. The bool
// reports whether the list came from cache.
func (s *Service) resolveIDs(ctx context.Context, f filter.Filter) ([]string, bool, error) {
	if s.cache == nil {
		ids, err := s.compute(ctx, f)
		return ids, false, err
	}

	key := Key(f)
	if ids, ok := s.lookup(ctx, key); ok {
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		return ids, true, nil
	}
	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()

	ids, err := s.compute(ctx, f)
	if err != nil {
		return nil, false, err
	}
	s.put(ctx, key, f, ids)
	return ids, false, nil
}

// lookup fetches a cache entry and checks its age. Expired entries count as
// misses; expiry is lazy, the recompute path overwrites them.
func (s *Service) lookup(ctx context.Context, key string) ([]string, bool) {
	records, err := s.cache.Get(ctx, []string{key})
	if err != nil {
		s.logger.Warn("search cache lookup failed", zap.Error(err))
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(records[0].JSON), &entry); err != nil {
		s.logger.Warn("search cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	age := s.now().Sub(time.Unix(entry.CreatedAt, 0))
	if age > s.ttl {
		return nil, false
	}
	return entry.IDs, true
}

// put stores a computed result list. Cache write failures degrade to
// uncached serving, never fail the search.
func (s *Service) put(ctx context.Context, key string, f filter.Filter, ids []string) {
	body, err := json.Marshal(cacheEntry{
		Key:       key,
		IDs:       ids,
		CreatedAt: s.now().Unix(),
	})
	if err != nil {
		s.logger.Warn("search cache encode failed", zap.Error(err))
		return
	}

	rec := recipestore.Record{
		ID:       key,
		Document: f.Canonical(),
		JSON:     string(body),
		Metadata: map[string]string{"id": key},
	}
	if err := s.cache.Upsert(ctx, rec); err != nil {
		s.logger.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// compute scans the full collection, keeps ids whose records match the
// filter, then reranks by semantic similarity when the filter carries free
// text.
func (s *Service) compute(ctx context.Context, f filter.Filter) ([]string, error) {
	var ids []string

	cursor := ""
	for {
		records, next, err := s.repo.GetAll(ctx, cursor, scanBatch)
		if err != nil {
			return nil, fmt.Errorf("scan recipes: %w", err)
		}
		for _, rec := range records {
			r, err := decodeRecord(rec.JSON, rec.Metadata)
			if err != nil {
				s.logger.Warn("skipping unreadable record",
					zap.String("id", rec.ID), zap.Error(err))
				continue
			}
			if f.Matches(&r) {
				ids = append(ids, r.ID())
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}

	if f.FreeText() != "" && len(ids) > 1 {
		return s.rerank(ctx, f.FreeText(), ids), nil
	}
	return ids, nil
}

// rerank orders matched ids by semantic similarity to the query text.
// Matches the similarity query does not return keep their scan order, after
// the ranked ones. Rerank failures fall back to scan order.
func (s *Service) rerank(ctx context.Context, text string, ids []string) []string {
	ranked, err := s.repo.SimilarityQuery(ctx, text, len(ids))
	if err != nil {
		s.logger.Warn("similarity rerank failed", zap.Error(err))
		return ids
	}

	matched := make(map[string]bool, len(ids))
	for _, id := range ids {
		matched[id] = true
	}

	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ranked {
		if matched[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range ids {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// decodeRecord prefers the full JSON body, falling back to the flattened
// metadata for records written before the body field existed.
func decodeRecord(body string, metadata map[string]string) (recipe.Recipe, error) {
	if body != "" {
		if r, err := codec.DecodeJSON(body); err == nil {
			return r, nil
		}
	}
	return codec.Decode(metadata)
}

func page(ids []string, limit, offset int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return nil
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}
