package embedding

import (
	"context"
	"fmt"
	"math"
)

// ANNResult is one hit from an ANNIndex.Search call: a content id and its
// distance to the query vector (lower is closer; cosine distance, i.e.
// 1-cosine, for the sqlite-backed implementations in this package).
type ANNResult struct {
	ContentID   string
	ContentType string
	Distance    float64
}

// ANNIndex is an optional acceleration layer over the canonical embedding
// cache file (spec §6.5): a sqlite-backed vector table that mirrors cache
// entries so large caches can be queried without a full in-process linear
// scan. It is always rebuildable from the cache snapshot (spec §9's
// reconciliation note) — nothing in Service depends on it for correctness,
// only for speed, so a nil ANNIndex is always a valid configuration.
type ANNIndex interface {
	// Upsert mirrors one cache entry's vector into the index.
	Upsert(ctx context.Context, contentID, contentType string, vec []float32) error
	// Delete removes a content id from the index.
	Delete(ctx context.Context, contentID string) error
	// Search returns the limit nearest neighbours to query, ascending by
	// distance.
	Search(ctx context.Context, query []float32, limit int) ([]ANNResult, error)
	// Close releases the underlying database handle.
	Close() error
}

// ErrANNUnavailable documents why SQLiteVecIndex (annindex_sqlitevec.go) is
// absent from a default build: it requires -tags sqlite_vec,cgo. Service
// never needs this error at runtime — Service.EnableANNIndex always uses
// the always-available SQLiteANNIndex (annindex_sqlite.go) instead.
var ErrANNUnavailable = fmt.Errorf("embedding: sqlite-vec ANN acceleration not compiled into this binary (build with -tags sqlite_vec,cgo)")

// encodeVector packs a float32 slice into a little-endian byte blob, the
// wire format both the sqlite-vec cgo path and the pure-Go fallback store
// as a BLOB column.
func encodeVector(v []float32) []byte {
	out := make([]byte, 4*len(v))
	for i, f := range v {
		bits := math.Float32bits(f)
		out[4*i] = byte(bits)
		out[4*i+1] = byte(bits >> 8)
		out[4*i+2] = byte(bits >> 16)
		out[4*i+3] = byte(bits >> 24)
	}
	return out
}

// decodeVector is encodeVector's inverse.
func decodeVector(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := uint32(b[4*i]) | uint32(b[4*i+1])<<8 | uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// cosineDistance returns 1-cosine(a,b); both vectors are assumed unit
// length already (Service.Generate L2-normalises before storage), so a
// plain dot product suffices for the cosine term.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 2 // maximal distance for mismatched dimensions
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot
}
