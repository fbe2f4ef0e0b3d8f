package backup

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/todozi/todozi/internal/store"
)

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return ts
}

func TestCreateRestoreRoundTrip(t *testing.T) {
	srcRoot := t.TempDir()
	st := store.New(srcRoot)
	if err := st.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcRoot, "tasks", "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "backup.tar.gz")
	manifest, err := Create(srcRoot, archivePath, "test")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if manifest.FileCount == 0 {
		t.Fatal("expected at least one file recorded in the manifest")
	}

	destRoot := t.TempDir()
	restored, err := Restore(archivePath, destRoot)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.FileCount != manifest.FileCount {
		t.Fatalf("FileCount mismatch: got %d, want %d", restored.FileCount, manifest.FileCount)
	}

	got, err := os.ReadFile(filepath.Join(destRoot, "tasks", "hello.txt"))
	if err != nil {
		t.Fatalf("ReadFile restored file: %v", err)
	}
	if string(got) != "hi" {
		t.Fatalf("restored content=%q, want %q", got, "hi")
	}
}

func TestRestoreRejectsArchiveWithoutManifest(t *testing.T) {
	// A plain empty gzip stream has no tar entries at all, so it's missing
	// manifest.yaml.
	emptyPath := filepath.Join(t.TempDir(), "empty.tar.gz")
	f, err := os.Create(emptyPath)
	if err != nil {
		t.Fatalf("Create empty archive: %v", err)
	}
	if err := gzip.NewWriter(f).Close(); err != nil {
		t.Fatalf("write empty gzip stream: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close empty archive: %v", err)
	}
	if _, err := Restore(emptyPath, t.TempDir()); err == nil {
		t.Fatal("expected Restore to reject an archive without manifest.yaml")
	}

	path := filepath.Join(t.TempDir(), "backup.tar.gz")
	srcRoot := t.TempDir()
	if _, err := Create(srcRoot, path, "test"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Sanity: a well-formed archive does have a manifest and restores fine.
	if _, err := Restore(path, t.TempDir()); err != nil {
		t.Fatalf("expected well-formed archive to restore, got: %v", err)
	}
}

func TestDefaultArchiveNameIsTimestamped(t *testing.T) {
	a := DefaultArchiveName(mustParseTime(t, "2026-01-02T03:04:05Z"))
	want := "todozi_backup_20260102_030405.tar.gz"
	if a != want {
		t.Fatalf("DefaultArchiveName=%q, want %q", a, want)
	}
}
