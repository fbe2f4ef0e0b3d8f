package embedding

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DimensionContribution names one vector component's share of a cosine
// score, used to give a human a rough sense of which learned feature drove
// a match (spec §4.4's explain surface).
type DimensionContribution struct {
	Index       int
	Contribution float64
}

// Explanation is the output of Explain: the raw cosine score, the
// dimensions that contributed most to it, and the literal keyword overlap
// between query and the result's tags.
type Explanation struct {
	Score             float64
	TopDimensions     []DimensionContribution
	MatchedKeywords   []string
	UnmatchedKeywords []string
}

// Explain re-scores query against result's cached vector and breaks the
// cosine sum down per-dimension, alongside the keyword overlap used by
// HybridSearch, so a caller can show why a result ranked where it did.
func (s *Service) Explain(ctx context.Context, query string, result SearchResult) (*Explanation, error) {
	qvec, err := s.Generate(ctx, query)
	if err != nil {
		return nil, err
	}
	entry, ok := s.cache.Get(result.ContentID, time.Now())
	if !ok {
		return &Explanation{Score: result.Score}, nil
	}

	score, err := CosineSimilarity(qvec, entry.Vector)
	if err != nil {
		return nil, err
	}

	n := len(qvec)
	if len(entry.Vector) < n {
		n = len(entry.Vector)
	}
	contributions := make([]DimensionContribution, n)
	for i := 0; i < n; i++ {
		contributions[i] = DimensionContribution{Index: i, Contribution: float64(qvec[i] * entry.Vector[i])}
	}
	sort.Slice(contributions, func(i, j int) bool {
		return abs(contributions[i].Contribution) > abs(contributions[j].Contribution)
	})
	const topN = 10
	if len(contributions) > topN {
		contributions = contributions[:topN]
	}

	keywords := strings.Fields(strings.ToLower(query))
	haystack := strings.ToLower(strings.Join(entry.Tags, " "))
	var matched, unmatched []string
	for _, kw := range keywords {
		if regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`).MatchString(haystack) {
			matched = append(matched, kw)
		} else {
			unmatched = append(unmatched, kw)
		}
	}

	return &Explanation{
		Score:             score,
		TopDimensions:     contributions,
		MatchedKeywords:   matched,
		UnmatchedKeywords: unmatched,
	}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
