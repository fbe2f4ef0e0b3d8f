// Package store implements todozi's persistence layer: atomic, per-entity,
// file-backed storage rooted at a workspace directory (spec §4.1). Every
// entity kind gets its own JSON file; writes go through a temp-file-then-
// rename sequence so a reader never observes a partially written file.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/todozi/todozi/internal/apperror"
)

// writeJSONAtomic serialises v to path via a sibling temporary file, fsyncs
// it, then renames over path. The OS rename guarantee serialises concurrent
// writers to the same path (spec §4.1's "Atomic write").
func writeJSONAtomic(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperror.Wrapf(apperror.Io, err, "create directory for %s", path)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperror.Wrapf(apperror.Serialization, err, "marshal %s", path)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return apperror.Wrapf(apperror.Io, err, "open temp file for %s", path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperror.Wrapf(apperror.Io, err, "write temp file for %s", path)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return apperror.Wrapf(apperror.Io, err, "fsync temp file for %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return apperror.Wrapf(apperror.Io, err, "close temp file for %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperror.Wrapf(apperror.Io, err, "rename temp file onto %s", path)
	}
	return nil
}

// readJSON deserialises the file at path into v. A missing file reports
// apperror.NotFound; a malformed file reports apperror.Serialization with
// path attached and is never auto-corrected (spec §4.1's failure modes).
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return apperror.New(apperror.NotFound, "file not found: "+path)
	}
	if err != nil {
		return apperror.Wrapf(apperror.Io, err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperror.DeserializationError(path, err)
	}
	return nil
}

// unmarshalJSON wraps json.Unmarshal, reporting a decode failure as an
// apperror.Serialization error; unlike readJSON it has no file path to
// attach (data has already been read).
func unmarshalJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return apperror.Wrap(apperror.Serialization, "failed to deserialize cached state", err)
	}
	return nil
}

// readFileIfExists returns the file's contents, or nil with no error if the
// file does not exist.
func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// listSubdirs returns the full paths of every directory directly under dir.
func listSubdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrapf(apperror.Io, err, "list %s", dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// removeFile deletes path, returning the raw os error for isNotExist checks.
func removeFile(path string) error {
	return os.Remove(path)
}

// isNotExist reports whether err indicates a missing file.
func isNotExist(err error) bool {
	return os.IsNotExist(err)
}

// ensureDir creates dir (and parents) if absent.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperror.Wrapf(apperror.Io, err, "create directory %s", dir)
	}
	return nil
}

// listJSONFiles returns every *.json file directly under dir, sorted
// lexicographically by filename (os.ReadDir's own guarantee). A missing
// directory yields an empty, nil-error result (nothing has been written
// yet).
func listJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrapf(apperror.Io, err, "list %s", dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}
