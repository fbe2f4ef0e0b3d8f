package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/model"
)

func (s *Store) embeddingCachePath() string {
	return filepath.Join(s.embeddingsDir(), "cache.bin")
}

func (s *Store) embeddingLogPath() string {
	return filepath.Join(s.embeddingsDir(), "log.jsonl")
}

// SaveEmbeddingCache atomically writes the full cache snapshot (spec §4.1,
// §6.5). The container is JSON despite the ".bin" extension, matching the
// spec's "self-describing binary or JSON container" allowance — JSON keeps
// the snapshot diffable and avoids a bespoke binary codec for a cache that
// is fully rebuildable from the content store.
func (s *Store) SaveEmbeddingCache(f *model.EmbeddingCacheFile) error {
	return writeJSONAtomic(s.embeddingCachePath(), f)
}

// LoadEmbeddingCache loads the persisted cache snapshot, or nil if none
// exists yet (a fresh workspace has no cache file).
func (s *Store) LoadEmbeddingCache() (*model.EmbeddingCacheFile, error) {
	data, err := readFileIfExists(s.embeddingCachePath())
	if err != nil {
		return nil, apperror.Wrapf(apperror.Io, err, "read %s", s.embeddingCachePath())
	}
	if data == nil {
		return nil, nil
	}
	var f model.EmbeddingCacheFile
	if err := unmarshalJSON(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// embeddingLogRecord is one append-only line in embeddings/log.jsonl,
// recording a mutating cache operation for diagnostic replay (spec §4.1's
// workspace layout names this file; its consumer is operational tooling,
// not the cache's own correctness, so a line-oriented JSON log is
// sufficient for a boundary-adjacent audit trail).
type embeddingLogRecord struct {
	Timestamp time.Time `json:"ts"`
	Operation string    `json:"op"`
	ContentID string    `json:"content_id"`
	Detail    string    `json:"detail,omitempty"`
}

// AppendEmbeddingLog appends one record to the embedding operation log.
// Best-effort: failures here never block a cache mutation from completing
// (spec §4.3: "Cache writes are best-effort and never block entity
// persistence").
func (s *Store) AppendEmbeddingLog(operation, contentID, detail string, now time.Time) error {
	if err := ensureDir(s.embeddingsDir()); err != nil {
		return err
	}
	rec := embeddingLogRecord{Timestamp: now.UTC(), Operation: operation, ContentID: contentID, Detail: detail}
	data, err := json.Marshal(rec)
	if err != nil {
		return apperror.Wrap(apperror.Serialization, "marshal embedding log record", err)
	}
	f, err := os.OpenFile(s.embeddingLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return apperror.Wrapf(apperror.Io, err, "open %s", s.embeddingLogPath())
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return apperror.Wrapf(apperror.Io, err, "append %s", s.embeddingLogPath())
	}
	return nil
}
