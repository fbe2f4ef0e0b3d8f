package embedding

import (
	"context"
	"strings"
)

// fakeEngine is a deterministic, dependency-free EmbeddingEngine for tests:
// it hashes text into a small fixed-dimension vector so equal inputs
// produce equal (pre-normalisation) vectors and dissimilar inputs produce
// dissimilar ones, without reaching out to Ollama or GenAI.
type fakeEngine struct {
	dims int
}

func newFakeEngine(dims int) *fakeEngine { return &fakeEngine{dims: dims} }

func (f *fakeEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, f.dims)
	words := strings.Fields(strings.ToLower(text))
	for _, w := range words {
		var h uint32
		for _, r := range w {
			h = h*31 + uint32(r)
		}
		vec[int(h)%f.dims] += 1
	}
	if allZero(vec) {
		vec[0] = 1
	}
	return vec, nil
}

func (f *fakeEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEngine) Dimensions() int { return f.dims }
func (f *fakeEngine) Name() string    { return "fake" }

func allZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
