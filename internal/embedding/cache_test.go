package embedding

import (
	"testing"
	"time"

	"github.com/todozi/todozi/internal/model"
)

func entry(id string, dims int) *model.EmbeddingCacheEntry {
	vec := make([]float32, dims)
	vec[0] = 1
	return &model.EmbeddingCacheEntry{
		ContentID: id,
		Vector:    vec,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCacheGetMissOnExpiry(t *testing.T) {
	c := NewCache(1<<20, time.Millisecond)
	e := entry("x", 4)
	e.TTLSeconds = 0 // 0 disables TTL on the entry itself; set below via Expired check path
	c.Put(e, true)

	// Force an already-expired entry by backdating CreatedAt.
	e.CreatedAt = time.Now().Add(-time.Hour)
	e.TTLSeconds = 1

	if _, ok := c.Get("x", time.Now()); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted on lookup, Len()=%d", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsedOverBudget(t *testing.T) {
	var evicted []string
	c := NewCache(0, 0) // maxBytes set below once entrySize is known
	c.SetEvictHandler(func(e *model.EmbeddingCacheEntry) { evicted = append(evicted, e.ContentID) })

	first := entry("first", 4)
	second := entry("second", 4)
	c.maxBytes = entrySize(second) // room for exactly one entry ("second" is the larger)
	c.Put(first, true)
	c.Put(second, true)

	if c.Len() != 1 {
		t.Fatalf("expected exactly 1 entry to remain, got %d", c.Len())
	}
	if _, ok := c.Get("second", time.Now()); !ok {
		t.Fatal("expected the most recently inserted entry to survive eviction")
	}
	if len(evicted) != 1 || evicted[0] != "first" {
		t.Fatalf("expected 'first' to be flushed via onEvict, got %v", evicted)
	}
}

func TestCachePutUpdatesExistingEntry(t *testing.T) {
	c := NewCache(1<<20, 0)
	c.Put(entry("x", 4), true)
	c.MarkClean("x")

	updated := entry("x", 4)
	updated.Vector[1] = 5
	c.Put(updated, true)

	got, ok := c.Get("x", time.Now())
	if !ok {
		t.Fatal("expected entry to still be present after update")
	}
	if got.Vector[1] != 5 {
		t.Fatalf("expected updated vector to replace the old one, got %v", got.Vector)
	}
	dirty := c.DirtyEntries()
	if len(dirty) != 1 {
		t.Fatalf("expected the updated entry to be dirty again, got %d dirty entries", len(dirty))
	}
}
