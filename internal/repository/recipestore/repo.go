package recipestore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tastebase/recipedex/internal/codec"
	"github.com/tastebase/recipedex/internal/db"
	"github.com/tastebase/recipedex/internal/domain"
)

// store is the consumer interface for the backend (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig tunes the backend vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo is the primary Store implementation over a document+vector backend.
type Repo struct {
	store      store
	embedder   domain.Embedder
	keyPrefix  string
	collection string
	hnsw       HNSWConfig
	seq        func() int64
}

var _ Store = (*Repo)(nil)

// NewRepo creates the primary store for one collection and ensures its
// search index exists.
func NewRepo(
	ctx context.Context, s store, embedder domain.Embedder,
	keyPrefix, collection string,
) (*Repo, error) {
	r := &Repo{
		store:      s,
		embedder:   embedder,
		keyPrefix:  keyPrefix,
		collection: collection,
		seq:        nextSeq,
	}
	if err := r.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure index %s: %w", collection, err)
	}
	return r, nil
}

// WithHNSW overrides the vector index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// Available always reports true for a constructed primary repo; backend
// reachability is resolved by the factory before construction.
func (r *Repo) Available() bool { return true }

// Upsert inserts or fully replaces a record. The whole hash is written in
// one backend command, so readers never observe a partial replace.
func (r *Repo) Upsert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return domain.NewMalformedRecord("id", "required")
	}

	if len(rec.Vector) == 0 {
		vec, err := r.embedder.Embed(ctx, rec.Document)
		if err != nil {
			return fmt.Errorf("vectorize document: %w", err)
		}
		rec.Vector = vec
	}

	key := docKey(r.keyPrefix, r.collection, rec.ID)

	// Preserve the original insertion sequence across upserts so
	// similarity ties stay stable under re-ingestion.
	seq := strconv.FormatInt(r.seq(), 10)
	if existing, err := r.store.HGetAll(ctx, key); err == nil {
		if prev, ok := existing[fieldSeq]; ok && prev != "" {
			seq = prev
		}
	}

	if err := r.store.HSet(ctx, key, buildHashFields(rec, seq)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns records for ids that exist, in request order; missing ids are
// silently omitted.
func (r *Repo) Get(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(r.keyPrefix, r.collection, id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	out := make([]Record, 0, len(ids))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		out = append(out, parseHashFields(ids[i], m))
	}
	return out, nil
}

// GetAll pages through the collection with an offset cursor; an empty
// cursor starts from the beginning and the returned cursor resumes there.
func (r *Repo) GetAll(ctx context.Context, cursor string, limit int) ([]Record, string, error) {
	if limit <= 0 {
		limit = 100
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
		offset = parsed
	}

	result, err := r.store.SearchList(
		ctx, indexName(r.keyPrefix, r.collection), "*", offset, limit+1, nil,
	)
	if err != nil {
		return nil, "", fmt.Errorf("search list %s: %w", r.collection, err)
	}
	if result == nil || len(result.Entries) == 0 {
		return nil, "", nil
	}

	records := make([]Record, 0, limit)
	for i, entry := range result.Entries {
		if i >= limit {
			break
		}
		id := extractID(entry.Key, r.keyPrefix, r.collection)
		records = append(records, parseHashFields(id, entry.Fields))
	}

	var next string
	if len(result.Entries) > limit {
		next = strconv.Itoa(offset + limit)
	}
	return records, next, nil
}

// SimilarityQuery embeds text and returns the ids of the k nearest stored
// vectors by the backend's distance metric. Equal-score entries are ordered
// by their insertion sequence, not by whatever order the backend emits.
func (r *Repo) SimilarityQuery(ctx context.Context, text string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName(r.keyPrefix, r.collection),
		Vector:       vec,
		K:            k,
		ReturnFields: []string{fieldSeq},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.collection, err)
	}

	entries := result.Entries
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return seqValue(entries[i].Fields) < seqValue(entries[j].Fields)
	})

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, extractID(entry.Key, r.keyPrefix, r.collection))
	}
	return ids, nil
}

// seqValue parses the stored insertion sequence. Entries without one sort
// last, keeping their backend order among themselves.
func seqValue(fields map[string]string) int64 {
	if v, err := strconv.ParseInt(fields[fieldSeq], 10, 64); err == nil {
		return v
	}
	return math.MaxInt64
}

// Count returns the number of records in the collection.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(r.keyPrefix, r.collection), "*")
	if err != nil {
		return 0, fmt.Errorf("search count %s: %w", r.collection, err)
	}
	return n, nil
}

// Delete removes a record. A missing id is a no-op.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := docKey(r.keyPrefix, r.collection, id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) ensureIndex(ctx context.Context) error {
	name := indexName(r.keyPrefix, r.collection)
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{docKey(r.keyPrefix, r.collection, "")},
		Fields: []db.IndexField{
			{Name: codec.FieldCuisines, Type: db.IndexFieldTag, TagSeparator: ","},
			{Name: codec.FieldDiets, Type: db.IndexFieldTag, TagSeparator: ","},
			{Name: codec.FieldTitle, Type: db.IndexFieldText},
			{Name: codec.FieldReadyInMinutes, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.embedder.Dimensions(),
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return err
	}
	return nil
}
