package embedding

import (
	"context"
	"path/filepath"
	"testing"
)

func unitVec(dims int, hot int) []float32 {
	v := make([]float32, dims)
	v[hot] = 1
	return v
}

func TestSQLiteANNIndexUpsertAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ann.sqlite3")
	idx, err := NewSQLiteANNIndex(path)
	if err != nil {
		t.Fatalf("NewSQLiteANNIndex: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Upsert(ctx, "a", "task", unitVec(4, 0)); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := idx.Upsert(ctx, "b", "task", unitVec(4, 1)); err != nil {
		t.Fatalf("upsert b: %v", err)
	}

	results, err := idx.Search(ctx, unitVec(4, 0), 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ContentID != "a" {
		t.Fatalf("expected closest result to be %q, got %q", "a", results[0].ContentID)
	}
	if results[0].Distance > results[1].Distance {
		t.Fatalf("expected ascending distance order, got %v then %v", results[0].Distance, results[1].Distance)
	}
}

func TestSQLiteANNIndexDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ann.sqlite3")
	idx, err := NewSQLiteANNIndex(path)
	if err != nil {
		t.Fatalf("NewSQLiteANNIndex: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	if err := idx.Upsert(ctx, "a", "task", unitVec(4, 0)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := idx.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	results, err := idx.Search(ctx, unitVec(4, 0), 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results after delete, got %d", len(results))
	}
}

func TestCosineDistanceRoundTripsThroughEncoding(t *testing.T) {
	a := unitVec(8, 2)
	b := unitVec(8, 2)
	got := cosineDistance(decodeVector(encodeVector(a)), decodeVector(encodeVector(b)))
	if got > 1e-6 {
		t.Fatalf("expected ~0 distance between identical unit vectors, got %v", got)
	}
}
