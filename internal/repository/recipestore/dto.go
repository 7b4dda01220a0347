package recipestore

import (
	"encoding/binary"
	"math"
	"strings"
	"sync/atomic"
	"time"
)

var seqCounter atomic.Int64

// nextSeq returns a process-monotonic insertion sequence number. Combining
// wall time with a counter keeps ordering stable across restarts while two
// inserts in the same nanosecond still differ.
func nextSeq() int64 {
	return time.Now().UnixNano() + seqCounter.Add(1)
}

// Reserved hash field names; everything else is flattened recipe metadata.
const (
	fieldContent = "__content"
	fieldJSON    = "__json"
	fieldVector  = "__vector"
	fieldSeq     = "__seq"
)

// buildHashFields converts a Record into a flat map for backend storage.
func buildHashFields(rec Record, seq string) map[string]string {
	m := make(map[string]string, 4+len(rec.Metadata))
	m[fieldContent] = rec.Document
	m[fieldJSON] = rec.JSON
	m[fieldVector] = vectorToBytes(rec.Vector)
	m[fieldSeq] = seq
	for k, v := range rec.Metadata {
		m[k] = v
	}
	return m
}

// parseHashFields converts a flat hash map back into a Record.
func parseHashFields(id string, m map[string]string) Record {
	rec := Record{ID: id, Metadata: make(map[string]string, len(m))}
	for k, v := range m {
		switch k {
		case fieldContent:
			rec.Document = v
		case fieldJSON:
			rec.JSON = v
		case fieldVector:
			rec.Vector = bytesToVector(v)
		case fieldSeq:
			// storage bookkeeping, not metadata
		default:
			rec.Metadata[k] = v
		}
	}
	return rec
}

// docKey builds the storage key for a record id.
func docKey(prefix, collection, id string) string {
	return prefix + collection + ":" + id
}

// extractID recovers the record id from a storage key.
func extractID(key, prefix, collection string) string {
	return strings.TrimPrefix(key, prefix+collection+":")
}

// indexName builds the search index name for a collection.
func indexName(prefix, collection string) string {
	return prefix + "idx:" + collection
}

// vectorToBytes serializes []float32 to a binary string (little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
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
