package embedding

import (
	"testing"
	"time"

	"github.com/todozi/todozi/internal/model"
	"github.com/todozi/todozi/internal/store"
)

func seedAnalysisService(t *testing.T) *Service {
	t.Helper()
	st := store.New(t.TempDir())
	if err := st.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	cfg := ServiceConfig{ModelName: "fake", Dimensions: 16, CacheTTL: time.Hour, MaxCacheBytes: 1 << 20}
	svc := NewService(newFakeEngine(16), st, cfg)

	must := func(id, text string, tags []string) {
		if err := svc.IndexText(id, model.ContentTypeTask, text, tags); err != nil {
			t.Fatalf("IndexText(%s): %v", id, err)
		}
	}
	must("a1", "deploy the release pipeline", []string{"deploy"})
	must("a2", "deploy the release pipeline again", []string{"deploy"})
	must("b1", "water the office plants", []string{"chore"})
	return svc
}

func TestRecommendSimilarExcludesSelf(t *testing.T) {
	svc := seedAnalysisService(t)
	recs := svc.RecommendSimilar("a1", 5)
	for _, r := range recs {
		if r.ContentID == "a1" {
			t.Fatal("RecommendSimilar should not include the queried content ID itself")
		}
	}
}

func TestSuggestTagsExcludesExistingTags(t *testing.T) {
	svc := seedAnalysisService(t)
	suggestions := svc.SuggestTags("a1", 5)
	for _, tag := range suggestions {
		if tag == "deploy" {
			t.Fatal("SuggestTags should not re-suggest a tag the entry already has")
		}
	}
}

func TestBuildSimilarityGraphRespectsThreshold(t *testing.T) {
	svc := seedAnalysisService(t)
	edges := svc.BuildSimilarityGraph(1.01) // impossible threshold
	if len(edges) != 0 {
		t.Fatalf("expected no edges above cosine similarity 1.01, got %d", len(edges))
	}
}

func TestTrackDriftFirstCallIsZero(t *testing.T) {
	svc := seedAnalysisService(t)
	if d := svc.TrackDrift("a1"); d != 0 {
		t.Fatalf("first TrackDrift call should report 0 drift, got %f", d)
	}
	if d := svc.TrackDrift("a1"); d != 0 {
		t.Fatalf("identical embedding should drift 0, got %f", d)
	}
	if len(svc.DriftHistory("a1")) != 2 {
		t.Fatalf("expected 2 recorded snapshots, got %d", len(svc.DriftHistory("a1")))
	}
}

func TestValidateEmbeddingsReportsCount(t *testing.T) {
	svc := seedAnalysisService(t)
	report := svc.ValidateEmbeddings()
	if report.TotalEntries != 3 {
		t.Fatalf("TotalEntries=%d, want 3", report.TotalEntries)
	}
	if len(report.InvalidEntries) != 0 {
		t.Fatalf("expected no invalid entries, got %v", report.InvalidEntries)
	}
}
