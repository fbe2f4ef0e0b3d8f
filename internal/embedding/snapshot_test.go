package embedding

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/todozi/todozi/internal/model"
	"github.com/todozi/todozi/internal/store"
)

func TestCacheBackupRestoreRoundTrip(t *testing.T) {
	st := store.New(t.TempDir())
	if err := st.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	cfg := ServiceConfig{ModelName: "fake", Dimensions: 16, CacheTTL: time.Hour, MaxCacheBytes: 1 << 20}
	svc := NewService(newFakeEngine(16), st, cfg)

	if err := svc.IndexText("t-1", model.ContentTypeTask, "ship the release", []string{"release"}); err != nil {
		t.Fatalf("IndexText: %v", err)
	}
	before, _ := svc.Get("t-1")

	path := filepath.Join(t.TempDir(), "cache-backup.json")
	if err := svc.BackupCache(path); err != nil {
		t.Fatalf("BackupCache: %v", err)
	}
	if err := svc.RestoreCache(path); err != nil {
		t.Fatalf("RestoreCache: %v", err)
	}

	after, ok := svc.Get("t-1")
	if !ok {
		t.Fatal("expected t-1 to survive backup/restore")
	}
	if len(before.Vector) != len(after.Vector) {
		t.Fatalf("vector length changed: %d vs %d", len(before.Vector), len(after.Vector))
	}
	for i := range before.Vector {
		if before.Vector[i] != after.Vector[i] {
			t.Fatalf("vector component %d changed across restore", i)
		}
	}
}
