package embedding

import (
	"encoding/json"
	"os"
	"time"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/model"
)

// BackupCache writes the full cache (spec §4.3's cache-level backup(path),
// distinct from the whole-workspace tar.gz in internal/backup) to an
// arbitrary path as a portable JSON document.
func (s *Service) BackupCache(path string) error {
	all := s.cache.All(time.Now())
	file := model.EmbeddingCacheFile{
		ModelName:  s.cfg.ModelName,
		Dimensions: s.cfg.Dimensions,
		CreatedAt:  time.Now().UTC(),
	}
	for _, e := range all {
		file.Entries = append(file.Entries, *e)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return apperror.Wrap(apperror.Serialization, "marshal cache backup", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperror.Wrapf(apperror.Io, err, "write cache backup %s", path)
	}
	return nil
}

// RestoreCache replaces the in-memory cache with the contents of a file
// written by BackupCache. Unlike Load's snapshot reconciliation, it does
// not check model_name against the service's configuration: an explicit
// restore is assumed to be deliberate, and spec §8's
// `restore(backup(cache)) = cache` round-trip law carries no
// model-mismatch clause.
func (s *Service) RestoreCache(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperror.Wrapf(apperror.Io, err, "read cache backup %s", path)
	}
	var file model.EmbeddingCacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return apperror.DeserializationError(path, err)
	}

	fresh := NewCache(s.cache.maxBytes, s.cache.ttl)
	fresh.SetEvictHandler(s.cache.onEvict)
	fresh.LoadSnapshot(file.Entries)
	s.cache = fresh
	return nil
}
