package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/todozi/todozi/internal/model"
	"github.com/todozi/todozi/internal/store"
)

func seedSearchService(t *testing.T) *Service {
	t.Helper()
	st := store.New(t.TempDir())
	if err := st.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	cfg := ServiceConfig{ModelName: "fake", Dimensions: 16, CacheTTL: time.Hour, MaxCacheBytes: 1 << 20}
	svc := NewService(newFakeEngine(16), st, cfg)

	docs := map[string][]string{
		"task-deploy":  {"deploy the release pipeline tonight", "deploy", "release"},
		"task-coffee":  {"buy coffee beans for the office", "errand"},
		"memory-oncall": {"oncall rotation starts deploy week", "oncall", "deploy"},
	}
	for id, parts := range docs {
		if err := svc.IndexText(id, model.ContentTypeTask, parts[0], parts[1:]); err != nil {
			t.Fatalf("IndexText(%s): %v", id, err)
		}
	}
	return svc
}

func TestSemanticSearchRanksRelevantFirst(t *testing.T) {
	svc := seedSearchService(t)
	results, err := svc.SemanticSearch(context.Background(), "deploy the release pipeline tonight", SearchOptions{Limit: 3})
	if err != nil {
		t.Fatalf("SemanticSearch: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].ContentID != "task-deploy" {
		t.Fatalf("top result=%s, want task-deploy", results[0].ContentID)
	}
}

func TestHybridSearchWeightZeroIsPureKeyword(t *testing.T) {
	svc := seedSearchService(t)
	results, err := svc.HybridSearch(context.Background(), "deploy", 0, SearchOptions{Limit: 10})
	if err != nil {
		t.Fatalf("HybridSearch: %v", err)
	}
	for _, r := range results {
		if r.ContentID == "task-coffee" {
			t.Fatal("task-coffee has no 'deploy' tag and should not score above 0 under pure keyword search")
		}
	}
}

func TestMultiQuerySearchAggregatesAverage(t *testing.T) {
	svc := seedSearchService(t)
	queries := []WeightedQuery{{Query: "deploy release"}, {Query: "oncall rotation"}}
	results, err := svc.MultiQuerySearch(context.Background(), queries, AggregateAverage, SearchOptions{Limit: 10})
	if err != nil {
		t.Fatalf("MultiQuerySearch: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
}

func TestFilteredSemanticSearchRequiresTag(t *testing.T) {
	svc := seedSearchService(t)
	results, err := svc.FilteredSemanticSearch(context.Background(), "deploy", EntityFilter{RequireTags: []string{"oncall"}}, SearchOptions{Limit: 10})
	if err != nil {
		t.Fatalf("FilteredSemanticSearch: %v", err)
	}
	for _, r := range results {
		if r.ContentID != "memory-oncall" {
			t.Fatalf("expected only memory-oncall to match the oncall tag filter, got %s", r.ContentID)
		}
	}
}
