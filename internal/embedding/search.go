package embedding

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/todozi/todozi/internal/logging"
	"github.com/todozi/todozi/internal/model"
)

// SearchResult is one ranked hit from any of the search modes below.
type SearchResult struct {
	ContentID   string
	ContentType model.ContentType
	Tags        []string
	Score       float64
}

// SearchOptions bounds and filters a search (spec §4.4).
type SearchOptions struct {
	Limit        int
	ContentTypes []model.ContentType
	MinScore     float64
}

func (o SearchOptions) limit() int {
	if o.Limit <= 0 {
		return 10
	}
	return o.Limit
}

// SemanticSearch embeds query and ranks cached entries by cosine similarity
// (spec §4.4).
func (s *Service) SemanticSearch(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "SemanticSearch")
	defer timer.Stop()

	qvec, err := s.Generate(ctx, query)
	if err != nil {
		return nil, err
	}
	entries := s.entriesOfTypes(opts.ContentTypes)

	results := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		score, err := CosineSimilarity(qvec, e.Vector)
		if err != nil {
			continue
		}
		if score <= opts.MinScore {
			continue
		}
		results = append(results, SearchResult{ContentID: e.ContentID, ContentType: e.ContentType, Tags: e.Tags, Score: score})
	}
	sortByScoreDesc(results)
	return truncate(results, opts.limit()), nil
}

// keywordScore is the fraction of query keywords present as whole words
// (regexp word boundaries) in the entry's tags, the clarified definition of
// HybridSearch's lexical term (case-insensitive, whitespace-tokenised; an
// empty query scores 0). Only tags are searched: the cache keeps a hash of
// the entry's text, not the text itself.
func keywordScore(query string, tags []string) float64 {
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(strings.Join(tags, " "))
	matched := 0
	for _, kw := range keywords {
		if regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`).MatchString(haystack) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

// HybridSearch blends cosine similarity with keyword_score using weight as
// the semantic share (weight=1.0 is pure semantic, weight=0.0 is pure
// keyword), per spec §4.4.
func (s *Service) HybridSearch(ctx context.Context, query string, weight float64, opts SearchOptions) ([]SearchResult, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "HybridSearch")
	defer timer.Stop()

	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}

	qvec, err := s.Generate(ctx, query)
	if err != nil {
		return nil, err
	}
	entries := s.entriesOfTypes(opts.ContentTypes)

	results := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		semScore, err := CosineSimilarity(qvec, e.Vector)
		if err != nil {
			continue
		}
		kwScore := keywordScore(query, e.Tags)
		blended := weight*semScore + (1-weight)*kwScore
		if blended <= opts.MinScore {
			continue
		}
		results = append(results, SearchResult{ContentID: e.ContentID, ContentType: e.ContentType, Tags: e.Tags, Score: blended})
	}
	sortByScoreDesc(results)
	return truncate(results, opts.limit()), nil
}

// QueryAggregation selects how MultiQuerySearch combines per-query scores
// for a content ID that matched more than one query (spec §4.4).
type QueryAggregation string

const (
	AggregateAverage QueryAggregation = "average"
	AggregateMax     QueryAggregation = "max"
	AggregateMin     QueryAggregation = "min"
	AggregateWeighted QueryAggregation = "weighted"
)

// WeightedQuery pairs a query string with its weight, used only by
// AggregateWeighted (spec §4.4).
type WeightedQuery struct {
	Query  string
	Weight float64
}

// MultiQuerySearch runs SemanticSearch for each query and aggregates scores
// per content ID, ranking the merged result set (spec §4.4).
func (s *Service) MultiQuerySearch(ctx context.Context, queries []WeightedQuery, agg QueryAggregation, opts SearchOptions) ([]SearchResult, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "MultiQuerySearch")
	defer timer.Stop()

	type accum struct {
		contentType model.ContentType
		tags        []string
		scores      []float64
		weights     []float64
	}
	byID := make(map[string]*accum)

	for _, wq := range queries {
		qvec, err := s.Generate(ctx, wq.Query)
		if err != nil {
			return nil, err
		}
		for _, e := range s.entriesOfTypes(opts.ContentTypes) {
			score, err := CosineSimilarity(qvec, e.Vector)
			if err != nil {
				continue
			}
			a, ok := byID[e.ContentID]
			if !ok {
				a = &accum{contentType: e.ContentType, tags: e.Tags}
				byID[e.ContentID] = a
			}
			a.scores = append(a.scores, score)
			a.weights = append(a.weights, wq.Weight)
		}
	}

	results := make([]SearchResult, 0, len(byID))
	for id, a := range byID {
		var final float64
		switch agg {
		case AggregateMax:
			final = maxOf(a.scores)
		case AggregateMin:
			final = minOf(a.scores)
		case AggregateWeighted:
			final = weightedAverage(a.scores, a.weights)
		default: // AggregateAverage
			final = average(a.scores)
		}
		if final <= opts.MinScore {
			continue
		}
		results = append(results, SearchResult{ContentID: id, ContentType: a.contentType, Tags: a.tags, Score: final})
	}
	sortByScoreDesc(results)
	return truncate(results, opts.limit()), nil
}

// EntityFilter narrows FilteredSemanticSearch to entries whose tags and
// timestamps match (spec §4.4's filtered search: tag/date-range filters;
// priority/status/assignee/progress-range filters apply to the full entity
// and are the caller's responsibility once content IDs are resolved back to
// their owning store records, since the embedding cache only carries tags
// and content type, not full entity bodies).
type EntityFilter struct {
	RequireTags  []string
	CreatedAfter time.Time
	CreatedBefore time.Time
}

func (f EntityFilter) matches(e *model.EmbeddingCacheEntry) bool {
	for _, want := range f.RequireTags {
		found := false
		for _, tag := range e.Tags {
			if strings.EqualFold(tag, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.CreatedAfter.IsZero() && e.CreatedAt.Before(f.CreatedAfter) {
		return false
	}
	if !f.CreatedBefore.IsZero() && e.CreatedAt.After(f.CreatedBefore) {
		return false
	}
	return true
}

// FilteredSemanticSearch is SemanticSearch restricted to entries matching
// filter (spec §4.4).
func (s *Service) FilteredSemanticSearch(ctx context.Context, query string, filter EntityFilter, opts SearchOptions) ([]SearchResult, error) {
	qvec, err := s.Generate(ctx, query)
	if err != nil {
		return nil, err
	}
	entries := s.entriesOfTypes(opts.ContentTypes)

	results := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		if !filter.matches(e) {
			continue
		}
		score, err := CosineSimilarity(qvec, e.Vector)
		if err != nil {
			continue
		}
		if score <= opts.MinScore {
			continue
		}
		results = append(results, SearchResult{ContentID: e.ContentID, ContentType: e.ContentType, Tags: e.Tags, Score: score})
	}
	sortByScoreDesc(results)
	return truncate(results, opts.limit()), nil
}

func sortByScoreDesc(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}

func truncate(results []SearchResult, limit int) []SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func weightedAverage(xs, weights []float64) float64 {
	var sumW, sumWX float64
	for i, x := range xs {
		w := 1.0
		if i < len(weights) && weights[i] > 0 {
			w = weights[i]
		}
		sumW += w
		sumWX += w * x
	}
	if sumW == 0 {
		return 0
	}
	return sumWX / sumW
}
