package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/logging"
	"github.com/todozi/todozi/internal/model"
	"github.com/todozi/todozi/internal/store"
)

// ServiceConfig configures the Service's cache bounds and the model
// identity the cache was built under (spec §4.3, §6.2).
type ServiceConfig struct {
	ModelName     string
	Dimensions    int
	CacheTTL      time.Duration
	MaxCacheBytes int64
	GenerateTimeout time.Duration // per-call embedding generation timeout (spec §5)
	BatchConcurrency int           // bounded fan-out width for GenerateBatch
}

// Service holds a model handle (EmbeddingEngine), an in-memory cache, and
// persists cache snapshots to the workspace's embeddings directory. It is
// the sole component wired to the opaque embed() function described in
// spec §4.3.
type Service struct {
	engine EmbeddingEngine
	store  *store.Store
	cache  *Cache
	cfg    ServiceConfig

	drift map[string][]DriftSnapshot

	// ann is the optional sqlite-backed acceleration layer (spec §6.5's
	// "self-describing ... container" stays the source of truth; ann is a
	// derived, rebuildable mirror). Nil until EnableANNIndex succeeds.
	ann ANNIndex
}

// NewService constructs a Service. Call Load to reconcile with any
// persisted cache snapshot before use.
func NewService(engine EmbeddingEngine, st *store.Store, cfg ServiceConfig) *Service {
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 30 * time.Second
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 8
	}
	s := &Service{
		engine: engine,
		store:  st,
		cache:  NewCache(cfg.MaxCacheBytes, cfg.CacheTTL),
		cfg:    cfg,
		drift:  make(map[string][]DriftSnapshot),
	}
	s.cache.SetEvictHandler(func(e *model.EmbeddingCacheEntry) {
		if err := s.flushEntry(e); err != nil {
			logging.Get(logging.CategoryEmbedding).Warn("best-effort flush on eviction failed for %s: %v", e.ContentID, err)
		}
	})
	return s
}

// EnableANNIndex opens the sqlite-backed ANN acceleration layer at
// <workspace>/embeddings/ann.sqlite3 and mirrors every already-cached entry
// into it. Acceleration is strictly optional: callers that never invoke
// this still get correct (if slower, linear-scan) search behaviour from
// search.go, matching spec §6.5's framing of the cache file as the only
// required container.
func (s *Service) EnableANNIndex(ctx context.Context) error {
	idx, err := NewSQLiteANNIndex(filepath.Join(s.store.Root(), "embeddings", "ann.sqlite3"))
	if err != nil {
		return apperror.Wrap(apperror.Io, "enabling ANN index", err)
	}
	s.ann = idx
	entries := s.entriesOfTypes(nil)
	for _, e := range entries {
		if err := idx.Upsert(ctx, e.ContentID, string(e.ContentType), e.Vector); err != nil {
			logging.Get(logging.CategoryEmbedding).Warn("ANN backfill failed for %s: %v", e.ContentID, err)
		}
	}
	logging.Embedding("ANN index enabled and backfilled with %d entries", len(entries))
	return nil
}

// CloseANNIndex releases the ANN index's database handle, if one is open.
func (s *Service) CloseANNIndex() error {
	if s.ann == nil {
		return nil
	}
	err := s.ann.Close()
	s.ann = nil
	return err
}

// Load reconciles the in-memory cache with the persisted snapshot. If the
// snapshot's model_name doesn't match the configured model, the cache is
// discarded (spec §4.3: "reconfiguration invalidates the on-disk cache
// unless model_name matches the cache's recorded model"); new entries are
// then rebuilt lazily as entities are indexed (spec §9's reconciliation
// note).
func (s *Service) Load() error {
	snapshot, err := s.store.LoadEmbeddingCache()
	if err != nil {
		return err
	}
	if snapshot == nil {
		logging.Embedding("no persisted embedding cache found, starting empty")
		return nil
	}
	if snapshot.ModelName != s.cfg.ModelName {
		logging.Embedding("cache model %q != configured model %q, discarding stale cache", snapshot.ModelName, s.cfg.ModelName)
		return nil
	}
	s.cache.LoadSnapshot(snapshot.Entries)
	logging.Embedding("loaded %d embedding cache entries from disk", len(snapshot.Entries))
	return nil
}

// Flush writes every non-expired cache entry, dirty or not, to the persisted
// snapshot file in one batch and then marks them clean (spec §4.3: "Persistence snapshots are written periodically
// and on shutdown").
func (s *Service) Flush() error {
	all := s.cache.All(time.Now())
	snapshot := &model.EmbeddingCacheFile{
		ModelName:  s.cfg.ModelName,
		Dimensions: s.cfg.Dimensions,
		CreatedAt:  time.Now().UTC(),
	}
	for _, e := range all {
		snapshot.Entries = append(snapshot.Entries, *e)
	}
	if err := s.store.SaveEmbeddingCache(snapshot); err != nil {
		return err
	}
	for _, e := range all {
		s.cache.MarkClean(e.ContentID)
	}
	logging.Embedding("flushed %d embedding cache entries to disk", len(all))
	return nil
}

func (s *Service) flushEntry(e *model.EmbeddingCacheEntry) error {
	return s.store.AppendEmbeddingLog("evict_flush", e.ContentID, "", time.Now())
}

// textHash returns a stable hash of text, used to detect whether a cached
// vector is still fresh for its underlying text (spec §3.2's text_hash).
func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// l2Normalize scales v to unit length in place, returning it. A zero vector
// is left unchanged (callers reject zero vectors before storage).
func l2Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Generate embeds text and L2-normalises the result (spec §4.3). Identical
// inputs return the same vector within the cache TTL by routing through the
// text-hash-keyed lookup first (idempotence, spec §8) — the cache key here
// is the text hash itself, distinct from entity-keyed Store/IndexText
// entries, so ad-hoc query embeddings (semantic_search etc.) are memoised
// too.
func (s *Service) Generate(ctx context.Context, text string) ([]float32, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "Generate")
	defer timer.Stop()

	hash := "q:" + textHash(text)
	if cached, ok := s.cache.Get(hash, time.Now()); ok {
		return cached.Vector, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	vec, err := s.engine.Embed(ctx, text)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperror.Wrap(apperror.EmbeddingTimeout, "embedding generation timed out", err)
		}
		return nil, apperror.Wrap(apperror.EmbeddingFailure, "embedding generation failed", err)
	}
	vec = l2Normalize(vec)

	entry := &model.EmbeddingCacheEntry{
		ContentID:   hash,
		ContentType: "",
		Vector:      vec,
		TextHash:    hash,
		CreatedAt:   time.Now().UTC(),
		TTLSeconds:  int64(s.cfg.CacheTTL.Seconds()),
	}
	s.cache.Put(entry, true)
	return vec, nil
}

// BatchResult pairs a generated vector with an error for one input,
// allowing GenerateBatch to report mixed success/failure (spec §4.3, §7).
type BatchResult struct {
	Vector []float32
	Err    error
}

// GenerateBatch generates embeddings for every text, preserving input
// order, with bounded fan-out via errgroup (spec §4.3's "Parallelises
// generation"; pattern grounded on the teacher's
// internal/perception/semantic_classifier.go errgroup usage). Failures are
// per-item; the batch call itself only errors on a cancelled context.
func (s *Service) GenerateBatch(ctx context.Context, texts []string) ([]BatchResult, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "GenerateBatch")
	defer timer.Stop()

	results := make([]BatchResult, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := s.Generate(gctx, text)
			results[i] = BatchResult{Vector: vec, Err: err}
			return nil // per-item errors don't abort the batch
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, apperror.Wrap(apperror.Cancelled, "embedding batch cancelled", err)
	}
	return results, nil
}

// Store upserts an entry by content_id, enforcing NaN/Inf/zero-vector
// rejection and recording the model identity implicitly via the service's
// configured dimensions (spec §4.3).
func (s *Service) Store(entry *model.EmbeddingCacheEntry) error {
	if err := entry.Validate(s.cfg.Dimensions); err != nil {
		return apperror.Wrap(apperror.Validation, "invalid embedding entry", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.cache.Put(entry, true)
	_ = s.store.AppendEmbeddingLog("store", entry.ContentID, string(entry.ContentType), time.Now())
	if s.ann != nil {
		if err := s.ann.Upsert(context.Background(), entry.ContentID, string(entry.ContentType), entry.Vector); err != nil {
			logging.Get(logging.CategoryEmbedding).Warn("ANN upsert failed for %s: %v", entry.ContentID, err)
		}
	}
	return nil
}

// IndexText is the Indexer surface consumed by internal/agent.Manager
// (and, symmetrically, by any other in-memory manager that needs to
// re-embed a changed entity): generate, normalise, and store an entry for
// contentID under contentType.
func (s *Service) IndexText(contentID string, contentType model.ContentType, text string, tags []string) error {
	vec, err := s.Generate(context.Background(), text)
	if err != nil {
		return err
	}
	entry := &model.EmbeddingCacheEntry{
		ContentID:   contentID,
		ContentType: contentType,
		Vector:      vec,
		TextHash:    textHash(text),
		Tags:        tags,
		CreatedAt:   time.Now().UTC(),
		TTLSeconds:  int64(s.cfg.CacheTTL.Seconds()),
	}
	return s.Store(entry)
}

// Get returns the cached entry for contentID, if present and fresh.
func (s *Service) Get(contentID string) (*model.EmbeddingCacheEntry, bool) {
	return s.cache.Get(contentID, time.Now())
}

// Delete removes an entry, e.g. when its underlying entity is deleted.
func (s *Service) Delete(contentID string) {
	s.cache.Delete(contentID)
	if s.ann != nil {
		if err := s.ann.Delete(context.Background(), contentID); err != nil {
			logging.Get(logging.CategoryEmbedding).Warn("ANN delete failed for %s: %v", contentID, err)
		}
	}
}

// Len reports the number of entries currently cached.
func (s *Service) Len() int { return s.cache.Len() }

// entriesOfTypes is a small helper shared by search.go/analysis.go: a
// snapshot of non-expired entity entries optionally restricted to
// contentTypes. Generate's query memo entries (no content type) are left out.
func (s *Service) entriesOfTypes(types []model.ContentType) []*model.EmbeddingCacheEntry {
	all := s.cache.All(time.Now(), types...)
	out := all[:0]
	for _, e := range all {
		if e.ContentType != "" {
			out = append(out, e)
		}
	}
	return out
}
