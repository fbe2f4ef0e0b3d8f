package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/todozi/todozi/internal/model"
	"github.com/todozi/todozi/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st := store.New(t.TempDir())
	if err := st.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	cfg := ServiceConfig{
		ModelName:     "fake",
		Dimensions:    16,
		CacheTTL:      time.Hour,
		MaxCacheBytes: 1 << 20,
	}
	svc := NewService(newFakeEngine(16), st, cfg)
	if err := svc.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc
}

func TestGenerateIsNormalizedAndCached(t *testing.T) {
	svc := newTestService(t)
	vec, err := svc.Generate(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var sumSq float64
	for _, x := range vec {
		sumSq += float64(x) * float64(x)
	}
	if sumSq < 0.98 || sumSq > 1.02 {
		t.Fatalf("expected unit-normalised vector, got |v|^2=%f", sumSq)
	}

	again, err := svc.Generate(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	for i := range vec {
		if vec[i] != again[i] {
			t.Fatalf("cached Generate returned a different vector at index %d", i)
		}
	}
}

func TestGenerateBatchPreservesOrder(t *testing.T) {
	svc := newTestService(t)
	texts := []string{"alpha task", "beta memory", "gamma idea"}
	results, err := svc.GenerateBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if len(results) != len(texts) {
		t.Fatalf("got %d results, want %d", len(results), len(texts))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d errored: %v", i, r.Err)
		}
		if len(r.Vector) != 16 {
			t.Fatalf("result %d has %d dims, want 16", i, len(r.Vector))
		}
	}
}

func TestIndexTextThenGetRoundTrips(t *testing.T) {
	svc := newTestService(t)
	if err := svc.IndexText("task-1", model.ContentTypeTask, "write the launch doc", []string{"docs", "launch"}); err != nil {
		t.Fatalf("IndexText: %v", err)
	}
	entry, ok := svc.Get("task-1")
	if !ok {
		t.Fatal("expected entry to be cached after IndexText")
	}
	if entry.ContentType != model.ContentTypeTask {
		t.Fatalf("ContentType=%v, want task", entry.ContentType)
	}
}

func TestStoreRejectsWrongDimensions(t *testing.T) {
	svc := newTestService(t)
	bad := &model.EmbeddingCacheEntry{
		ContentID: "x",
		Vector:    []float32{1, 0, 0},
		CreatedAt: time.Now(),
	}
	if err := svc.Store(bad); err == nil {
		t.Fatal("expected Store to reject a vector with the wrong dimensionality")
	}
}

func TestFlushAndLoadRoundTrip(t *testing.T) {
	st := store.New(t.TempDir())
	if err := st.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	cfg := ServiceConfig{ModelName: "fake", Dimensions: 16, CacheTTL: time.Hour, MaxCacheBytes: 1 << 20}

	svc1 := NewService(newFakeEngine(16), st, cfg)
	if err := svc1.IndexText("memory-1", model.ContentTypeMemory, "remember the deploy window", nil); err != nil {
		t.Fatalf("IndexText: %v", err)
	}
	if err := svc1.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	svc2 := NewService(newFakeEngine(16), st, cfg)
	if err := svc2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := svc2.Get("memory-1"); !ok {
		t.Fatal("expected memory-1 to survive Flush/Load round trip")
	}
}

func TestEnableANNIndexBackfillsAndMirrorsStore(t *testing.T) {
	svc := newTestService(t)
	if err := svc.IndexText("task-1", model.ContentTypeTask, "ship the release", nil); err != nil {
		t.Fatalf("IndexText: %v", err)
	}

	if err := svc.EnableANNIndex(context.Background()); err != nil {
		t.Fatalf("EnableANNIndex: %v", err)
	}
	defer svc.CloseANNIndex()

	results, err := svc.ann.Search(context.Background(), mustGet(t, svc, "task-1").Vector, 5)
	if err != nil {
		t.Fatalf("ann Search: %v", err)
	}
	if len(results) != 1 || results[0].ContentID != "task-1" {
		t.Fatalf("expected the backfilled entry in ANN search results, got %+v", results)
	}

	if err := svc.IndexText("task-2", model.ContentTypeTask, "write release notes", nil); err != nil {
		t.Fatalf("IndexText task-2: %v", err)
	}
	results, err = svc.ann.Search(context.Background(), mustGet(t, svc, "task-2").Vector, 5)
	if err != nil {
		t.Fatalf("ann Search after new Store: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected new Store calls to mirror into the ANN index, got %d results", len(results))
	}

	svc.Delete("task-1")
	results, err = svc.ann.Search(context.Background(), mustGet(t, svc, "task-2").Vector, 5)
	if err != nil {
		t.Fatalf("ann Search after Delete: %v", err)
	}
	if len(results) != 1 || results[0].ContentID != "task-2" {
		t.Fatalf("expected Delete to remove the entry from the ANN index, got %+v", results)
	}
}

func mustGet(t *testing.T, svc *Service, contentID string) *model.EmbeddingCacheEntry {
	t.Helper()
	e, ok := svc.Get(contentID)
	if !ok {
		t.Fatalf("expected %s to be cached", contentID)
	}
	return e
}

func TestLoadDiscardsCacheOnModelMismatch(t *testing.T) {
	st := store.New(t.TempDir())
	if err := st.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	cfgA := ServiceConfig{ModelName: "model-a", Dimensions: 16, CacheTTL: time.Hour, MaxCacheBytes: 1 << 20}
	svc1 := NewService(newFakeEngine(16), st, cfgA)
	if err := svc1.IndexText("t-1", model.ContentTypeTask, "ship it", nil); err != nil {
		t.Fatalf("IndexText: %v", err)
	}
	if err := svc1.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	cfgB := ServiceConfig{ModelName: "model-b", Dimensions: 16, CacheTTL: time.Hour, MaxCacheBytes: 1 << 20}
	svc2 := NewService(newFakeEngine(16), st, cfgB)
	if err := svc2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := svc2.Get("t-1"); ok {
		t.Fatal("expected cache to be discarded when model_name mismatches")
	}
}
