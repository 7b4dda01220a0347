package recipestore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tastebase/recipedex/internal/domain"
)

// Fallback is the in-memory Store used when the primary backend cannot
// initialize. It honors the same method contracts so upstream code stays
// oblivious to which backend is active; SimilarityQuery degrades to
// substring ranking over the document text.
type Fallback struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string // insertion order of ids
}

var _ Store = (*Fallback)(nil)

// NewFallback creates an empty in-memory store.
func NewFallback() *Fallback {
	return &Fallback{records: make(map[string]Record)}
}

// Available reports false: this is the degraded path.
func (f *Fallback) Available() bool { return false }

// Upsert inserts or replaces a record. First insertion order is preserved
// for stable similarity ties.
func (f *Fallback) Upsert(_ context.Context, rec Record) error {
	if rec.ID == "" {
		return domain.NewMalformedRecord("id", "required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.records[rec.ID]; !exists {
		f.order = append(f.order, rec.ID)
	}
	f.records[rec.ID] = cloneRecord(rec)
	return nil
}

// Get returns records for ids that exist, in request order.
func (f *Fallback) Get(_ context.Context, ids []string) ([]Record, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := f.records[id]; ok {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

// GetAll pages through records in insertion order with an offset cursor.
func (f *Fallback) GetAll(_ context.Context, cursor string, limit int) ([]Record, string, error) {
	if limit <= 0 {
		limit = 100
	}
	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", err
		}
		offset = parsed
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if offset >= len(f.order) {
		return nil, "", nil
	}
	ids := f.order[offset:]
	var next string
	if len(ids) > limit {
		ids = ids[:limit]
		next = strconv.Itoa(offset + limit)
	}

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneRecord(f.records[id]))
	}
	return out, next, nil
}

// SimilarityQuery ranks records by case-insensitive substring overlap
// between the query terms and the document text. Ties keep insertion order.
func (f *Fallback) SimilarityQuery(_ context.Context, text string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}
	terms := strings.Fields(strings.ToLower(text))

	f.mu.RLock()
	defer f.mu.RUnlock()

	type scored struct {
		id    string
		score int
		order int
	}
	ranked := make([]scored, 0, len(f.order))
	for i, id := range f.order {
		doc := strings.ToLower(f.records[id].Document)
		score := 0
		for _, term := range terms {
			if strings.Contains(doc, term) {
				score++
			}
		}
		ranked = append(ranked, scored{id: id, score: score, order: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}
	return ids, nil
}

// Count returns the number of stored records.
func (f *Fallback) Count(_ context.Context) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.records), nil
}

// Delete removes a record; absent ids are a no-op.
func (f *Fallback) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.records[id]; !ok {
		return nil
	}
	delete(f.records, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneRecord(rec Record) Record {
	out := rec
	if rec.Metadata != nil {
		out.Metadata = make(map[string]string, len(rec.Metadata))
		for k, v := range rec.Metadata {
			out.Metadata[k] = v
		}
	}
	if rec.Vector != nil {
		out.Vector = append([]float32(nil), rec.Vector...)
	}
	return out
}
