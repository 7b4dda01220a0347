// Package bolt implements db.Store on a local bbolt file. It is the driver
// for single-node deployments and for the sync CLI's "local store path":
// hashes and key-value pairs live in buckets, search indexes are metadata
// only, and similarity queries run as a brute-force cosine scan. Brute force
// is deliberate: the collections here are small and no approximate index is
// warranted.
package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/tastebase/recipedex/internal/db"
)

var (
	bucketDocs    = []byte("docs")
	bucketKV      = []byte("kv")
	bucketIndexes = []byte("indexes")
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store implements db.Store via bbolt.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) a bolt store at path.
func NewStore(path string) (*Store, error) {
	bdb, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketKV, bucketIndexes} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}

	return &Store{db: bdb}, nil
}

// Ping verifies the file handle is usable.
func (s *Store) Ping(_ context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketDocs) == nil {
			return fmt.Errorf("docs bucket missing")
		}
		return nil
	})
}

// Close releases the file handle.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady is immediate for a local file store.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Ping(ctx)
}

// --- HashStore ---

// HSet stores a field map under key.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).Put([]byte(key), data)
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetMulti stores multiple field maps in one transaction.
func (s *Store) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		for _, item := range items {
			data, err := json.Marshal(item.Fields)
			if err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
			if err := b.Put([]byte(item.Key), data); err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns the field map stored under key, empty when absent.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	var fields map[string]string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(key))
		if data == nil {
			fields = map[string]string{}
			return nil
		}
		return json.Unmarshal(data, &fields)
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return fields, nil
}

// HGetAllMulti fetches field maps for multiple keys in one transaction.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]map[string]string, len(keys))
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		for i, key := range keys {
			data := b.Get([]byte(key))
			if data == nil {
				out[i] = map[string]string{}
				continue
			}
			var fields map[string]string
			if err := json.Unmarshal(data, &fields); err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
			out[i] = fields
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// Del deletes a key from both the docs and kv buckets.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketDocs).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket(bucketKV).Delete([]byte(key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks a key in the docs bucket.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketDocs).Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return exists, nil
}

// Scan returns docs-bucket keys matching pattern. Only the trailing-star
// form ("prefix*") Redis Scan is called with here is supported.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketDocs).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}

// --- KVStore ---

type kvEntry struct {
	Value     []byte `json:"value"`
	ExpiresAt int64  `json:"expires_at,omitempty"` // unix seconds, 0 = never
}

// Get retrieves a value by key. Expired entries read as absent.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketKV).Get([]byte(key))
		if data == nil {
			return db.ErrKeyNotFound
		}
		var e kvEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		if e.ExpiresAt > 0 && time.Now().Unix() > e.ExpiresAt {
			return db.ErrKeyNotFound
		}
		value = e.Value
		return nil
	})
	if err != nil {
		if err == db.ErrKeyNotFound {
			return nil, err
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return value, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value with a lazy expiry checked on read.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := kvEntry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl).Unix()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), data)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// --- IndexManager ---

// CreateIndex records the index definition; search scans use its prefixes.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(def)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIndexes)
		if b.Get([]byte(def.Name)) != nil {
			return db.ErrIndexExists
		}
		return b.Put([]byte(def.Name), data)
	})
	if err != nil {
		if err == db.ErrIndexExists {
			return err
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// DropIndex removes an index definition.
func (s *Store) DropIndex(_ context.Context, name string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIndexes)
		if b.Get([]byte(name)) == nil {
			return db.ErrIndexNotFound
		}
		return b.Delete([]byte(name))
	})
	if err != nil {
		if err == db.ErrIndexNotFound {
			return err
		}
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	return nil
}

// IndexExists reports whether an index definition is stored.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketIndexes).Get([]byte(name)) != nil
		return nil
	})
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return exists, nil
}

// --- Searcher ---

// SearchKNN brute-forces cosine similarity over every document under the
// index prefixes, sorted by similarity. Equal scores break by the stored
// insertion sequence (`__seq`), falling back to key order when absent.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	def, err := s.indexDef(q.IndexName)
	if err != nil {
		return nil, err
	}

	entries, err := s.scanIndex(ctx, def, q.ReturnFields)
	if err != nil {
		return nil, err
	}

	type scored struct {
		entry db.SearchEntry
		seq   int64
		order int
	}
	ranked := make([]scored, 0, len(entries))
	for i := range entries {
		vec := bytesToVector(entries[i].Fields["__vector"])
		delete(entries[i].Fields, "__vector")
		entries[i].Score = cosineSimilarity(q.Vector, vec)

		seq := int64(math.MaxInt64)
		if v, err := strconv.ParseInt(entries[i].Fields["__seq"], 10, 64); err == nil {
			seq = v
		}
		ranked = append(ranked, scored{entry: entries[i], seq: seq, order: i})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].entry.Score != ranked[j].entry.Score {
			return ranked[i].entry.Score > ranked[j].entry.Score
		}
		if ranked[i].seq != ranked[j].seq {
			return ranked[i].seq < ranked[j].seq
		}
		return ranked[i].order < ranked[j].order
	})

	if len(ranked) > q.K {
		ranked = ranked[:q.K]
	}
	out := make([]db.SearchEntry, len(ranked))
	for i, r := range ranked {
		out[i] = r.entry
	}
	return &db.SearchResult{Total: len(out), Entries: out}, nil
}

// SearchList paginates documents under the index prefixes in key order.
// Only the match-all query is supported; filtering happens upstream.
func (s *Store) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if query != "*" {
		return nil, fmt.Errorf("bolt driver supports only match-all queries, got %q", query)
	}
	def, err := s.indexDef(index)
	if err != nil {
		return nil, err
	}

	entries, err := s.scanIndex(ctx, def, fields)
	if err != nil {
		return nil, err
	}
	total := len(entries)

	if offset >= len(entries) {
		return &db.SearchResult{Total: total}, nil
	}
	entries = entries[offset:]
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// SearchCount returns the number of documents under the index prefixes.
func (s *Store) SearchCount(_ context.Context, index, _ string) (int, error) {
	def, err := s.indexDef(index)
	if err != nil {
		return 0, err
	}
	count := 0
	err = s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketDocs).Cursor()
		for _, prefix := range def.Prefixes {
			p := []byte(prefix)
			for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	return count, nil
}

func (s *Store) indexDef(name string) (*db.IndexDefinition, error) {
	var def db.IndexDefinition
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketIndexes).Get([]byte(name))
		if data == nil {
			return db.ErrIndexNotFound
		}
		return json.Unmarshal(data, &def)
	})
	if err != nil {
		if err == db.ErrIndexNotFound {
			return nil, err
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return &def, nil
}

// scanIndex loads every document under the index prefixes in key order.
// When fields is non-empty, only those fields (plus __vector for KNN) are kept.
func (s *Store) scanIndex(_ context.Context, def *db.IndexDefinition, fields []string) ([]db.SearchEntry, error) {
	var entries []db.SearchEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketDocs).Cursor()
		for _, prefix := range def.Prefixes {
			p := []byte(prefix)
			for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
				var all map[string]string
				if err := json.Unmarshal(v, &all); err != nil {
					return fmt.Errorf("key %s: %w", k, err)
				}
				entries = append(entries, db.SearchEntry{
					Key:    string(k),
					Fields: projectFields(all, fields),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return entries, nil
}

func projectFields(all map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return all
	}
	out := make(map[string]string, len(fields)+2)
	for _, f := range fields {
		if v, ok := all[f]; ok {
			out[f] = v
		}
	}
	// KNN scoring always needs the stored vector, and tie-breaking the
	// insertion sequence.
	if v, ok := all["__vector"]; ok {
		out["__vector"] = v
	}
	if v, ok := all["__seq"]; ok {
		out["__seq"] = v
	}
	return out
}

func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
