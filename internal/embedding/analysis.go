package embedding

import (
	"sort"
	"time"

	"github.com/todozi/todozi/internal/logging"
	"github.com/todozi/todozi/internal/model"
)

// Cluster is one group produced by HierarchicalClustering: its member
// content IDs and the mean of their vectors (spec §4.4's analysis surface).
type Cluster struct {
	ContentIDs []string
	Centroid   []float32
}

// HierarchicalClustering performs simple agglomerative clustering: start
// with one cluster per entry, repeatedly merge the two closest clusters
// (by centroid cosine similarity) until no pair reaches the similarity
// threshold. This is the same average-linkage approach the teacher's
// internal/perception semantic grouping uses, generalised from fixed
// categories to arbitrary content IDs.
func (s *Service) HierarchicalClustering(threshold float64, types ...model.ContentType) []Cluster {
	timer := logging.StartTimer(logging.CategoryEmbedding, "HierarchicalClustering")
	defer timer.Stop()

	entries := s.entriesOfTypes(types)
	clusters := make([]Cluster, 0, len(entries))
	for _, e := range entries {
		clusters = append(clusters, Cluster{ContentIDs: []string{e.ContentID}, Centroid: append([]float32(nil), e.Vector...)})
	}

	for {
		bestI, bestJ, bestSim := -1, -1, -1.0
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				sim, err := CosineSimilarity(clusters[i].Centroid, clusters[j].Centroid)
				if err != nil {
					continue
				}
				if sim > bestSim {
					bestI, bestJ, bestSim = i, j, sim
				}
			}
		}
		if bestI == -1 || bestSim < threshold {
			break
		}
		merged := mergeClusters(clusters[bestI], clusters[bestJ])
		next := make([]Cluster, 0, len(clusters)-1)
		for k, c := range clusters {
			if k == bestI || k == bestJ {
				continue
			}
			next = append(next, c)
		}
		clusters = append(next, merged)
	}

	logging.EmbeddingDebug("HierarchicalClustering: %d entries merged into %d clusters at threshold %.2f", len(entries), len(clusters), threshold)
	return clusters
}

func mergeClusters(a, b Cluster) Cluster {
	ids := append(append([]string(nil), a.ContentIDs...), b.ContentIDs...)
	centroid := make([]float32, len(a.Centroid))
	na, nb := float32(len(a.ContentIDs)), float32(len(b.ContentIDs))
	total := na + nb
	for i := range centroid {
		centroid[i] = (a.Centroid[i]*na + b.Centroid[i]*nb) / total
	}
	return Cluster{ContentIDs: ids, Centroid: centroid}
}

// FindOutliers returns content IDs whose average similarity to every other
// entry of the requested types (all types when none are given) falls below
// threshold (spec §4.4).
func (s *Service) FindOutliers(threshold float64, types ...model.ContentType) []string {
	entries := s.entriesOfTypes(types)
	var outliers []string
	for i, e := range entries {
		if len(entries) < 2 {
			continue
		}
		var sum float64
		count := 0
		for j, other := range entries {
			if i == j {
				continue
			}
			sim, err := CosineSimilarity(e.Vector, other.Vector)
			if err != nil {
				continue
			}
			sum += sim
			count++
		}
		if count == 0 {
			continue
		}
		if sum/float64(count) < threshold {
			outliers = append(outliers, e.ContentID)
		}
	}
	return outliers
}

// RecommendSimilar returns the topK content IDs (other than contentID
// itself) most similar to it, optionally restricted to types (spec §4.4).
func (s *Service) RecommendSimilar(contentID string, topK int, types ...model.ContentType) []SearchResult {
	base, ok := s.cache.Get(contentID, time.Now())
	if !ok {
		return nil
	}
	entries := s.entriesOfTypes(types)
	results := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		if e.ContentID == contentID {
			continue
		}
		sim, err := CosineSimilarity(base.Vector, e.Vector)
		if err != nil {
			continue
		}
		results = append(results, SearchResult{ContentID: e.ContentID, ContentType: e.ContentType, Tags: e.Tags, Score: sim})
	}
	sortByScoreDesc(results)
	if topK <= 0 {
		topK = 5
	}
	return truncate(results, topK)
}

// SuggestTags proposes tags for contentID by pooling the tags of its
// nearest neighbours, ranked by frequency-weighted-by-similarity (spec
// §4.4).
func (s *Service) SuggestTags(contentID string, topK int) []string {
	neighbors := s.RecommendSimilar(contentID, topK)
	weight := make(map[string]float64)
	for _, n := range neighbors {
		for _, tag := range n.Tags {
			weight[tag] += n.Score
		}
	}
	base, _ := s.cache.Get(contentID, time.Now())
	if base != nil {
		for _, tag := range base.Tags {
			delete(weight, tag)
		}
	}
	type scored struct {
		tag   string
		score float64
	}
	scoredTags := make([]scored, 0, len(weight))
	for tag, score := range weight {
		scoredTags = append(scoredTags, scored{tag, score})
	}
	sort.Slice(scoredTags, func(i, j int) bool { return scoredTags[i].score > scoredTags[j].score })

	out := make([]string, 0, len(scoredTags))
	for _, st := range scoredTags {
		out = append(out, st.tag)
	}
	return out
}

// SimilarityEdge is one edge of BuildSimilarityGraph's output.
type SimilarityEdge struct {
	From, To string
	Score    float64
}

// BuildSimilarityGraph returns every pair of entries (of the given types)
// whose cosine similarity meets threshold, for visualisation or
// downstream clustering (spec §4.4).
func (s *Service) BuildSimilarityGraph(threshold float64, types ...model.ContentType) []SimilarityEdge {
	entries := s.entriesOfTypes(types)
	var edges []SimilarityEdge
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			sim, err := CosineSimilarity(entries[i].Vector, entries[j].Vector)
			if err != nil {
				continue
			}
			if sim >= threshold {
				edges = append(edges, SimilarityEdge{From: entries[i].ContentID, To: entries[j].ContentID, Score: sim})
			}
		}
	}
	return edges
}

// DriftSnapshot captures one content ID's embedding at a point in time, for
// TrackDrift's history (a supplemented feature: the original dropped
// history across re-embeds, this repo keeps a bounded ring per ID).
type DriftSnapshot struct {
	Vector    []float32
	Recorded  time.Time
}

// maxDriftHistory bounds the per-content-ID drift ring so long-lived
// entities don't grow the drift map unboundedly.
const maxDriftHistory = 20

// TrackDrift records the current embedding for contentID into its drift
// history and returns the cosine distance (1 - similarity) from the
// previous snapshot, or 0 if this is the first snapshot.
func (s *Service) TrackDrift(contentID string) float64 {
	entry, ok := s.cache.Get(contentID, time.Now())
	if !ok {
		return 0
	}

	history := s.drift[contentID]
	var drift float64
	if len(history) > 0 {
		prev := history[len(history)-1]
		sim, err := CosineSimilarity(prev.Vector, entry.Vector)
		if err == nil {
			drift = 1 - sim
			identical := true
			for i := range prev.Vector {
				if prev.Vector[i] != entry.Vector[i] {
					identical = false
					break
				}
			}
			if identical {
				drift = 0 // a vector's cosine with itself is exactly 1; drop float rounding
			}
		}
	}

	history = append(history, DriftSnapshot{Vector: append([]float32(nil), entry.Vector...), Recorded: time.Now().UTC()})
	if len(history) > maxDriftHistory {
		history = history[len(history)-maxDriftHistory:]
	}
	s.drift[contentID] = history

	return drift
}

// DriftHistory returns the recorded snapshots for contentID, oldest first.
func (s *Service) DriftHistory(contentID string) []DriftSnapshot {
	return append([]DriftSnapshot(nil), s.drift[contentID]...)
}

// ValidationReport summarises ValidateEmbeddings' findings.
type ValidationReport struct {
	TotalEntries   int
	InvalidEntries []string
}

// ValidateEmbeddings re-runs EmbeddingCacheEntry.Validate over every cached
// entry, reporting any that now fail (e.g. after a model dimension change
// that bypassed Load's model-name guard) (spec §4.3, §6.5).
func (s *Service) ValidateEmbeddings() ValidationReport {
	entries := s.entriesOfTypes(nil)
	report := ValidationReport{TotalEntries: len(entries)}
	for _, e := range entries {
		if err := e.Validate(s.cfg.Dimensions); err != nil {
			report.InvalidEntries = append(report.InvalidEntries, e.ContentID)
		}
	}
	return report
}
