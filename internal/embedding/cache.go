package embedding

import (
	"container/list"
	"sync"
	"time"

	"github.com/todozi/todozi/internal/logging"
	"github.com/todozi/todozi/internal/model"
)

// entrySize approximates an EmbeddingCacheEntry's in-memory footprint in
// bytes, used for the LRU's memory bound (spec §4.3: "an LRU bound on total
// memory"). Four bytes per float32 component plus a fixed per-entry
// overhead for the surrounding metadata is precise enough for an eviction
// heuristic; it is not meant to match runtime.MemStats exactly.
func entrySize(e *model.EmbeddingCacheEntry) int64 {
	const overhead = 256
	return int64(len(e.Vector)*4) + int64(len(e.ContentID)) + int64(len(e.TextHash)) + overhead
}

type cacheNode struct {
	entry   *model.EmbeddingCacheEntry
	dirty   bool
	element *list.Element
}

// Cache is the in-memory, LRU-bounded, TTL-expiring embedding cache
// described by spec §4.3. A single RWMutex guards it: reads (lookups,
// search) take the read lock and may run concurrently; writes (store,
// evict) take the write lock exclusively, so no reader ever observes a
// partial write (spec §5).
type Cache struct {
	mu       sync.RWMutex
	nodes    map[string]*cacheNode
	order    *list.List // front = most recently used
	maxBytes int64
	curBytes int64
	ttl      time.Duration

	// onEvict is invoked (with the write lock held) for an entry evicted while
	// still dirty, so the caller can best-effort flush it before it's
	// dropped from memory (spec §4.3: "on eviction the entry is flushed if
	// dirty").
	onEvict func(e *model.EmbeddingCacheEntry)
}

// NewCache constructs an empty Cache bounded to maxBytes (<=0 means no byte
// bound). ttl is recorded on the Cache but not used for expiry: each entry
// expires by its own TTLSeconds, and a non-positive TTLSeconds never expires.
func NewCache(maxBytes int64, ttl time.Duration) *Cache {
	return &Cache{
		nodes:    make(map[string]*cacheNode),
		order:    list.New(),
		maxBytes: maxBytes,
		ttl:      ttl,
	}
}

// SetEvictHandler registers the best-effort dirty-flush callback.
func (c *Cache) SetEvictHandler(fn func(e *model.EmbeddingCacheEntry)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get returns the cached entry for contentID if present and not expired.
func (c *Cache) Get(contentID string, now time.Time) (*model.EmbeddingCacheEntry, bool) {
	c.mu.RLock()
	n, ok := c.nodes[contentID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if n.entry.Expired(now) {
		c.mu.Lock()
		c.removeLocked(contentID)
		c.mu.Unlock()
		return nil, false
	}
	c.mu.Lock()
	c.order.MoveToFront(n.element)
	c.mu.Unlock()
	return n.entry, true
}

// Put upserts an entry by content_id, marking it dirty when dirty is true
// (an already-dirty entry stays dirty), and evicts
// least-recently-used entries until the cache is back under its byte
// budget (spec §4.3).
func (c *Cache) Put(e *model.EmbeddingCacheEntry, dirty bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.nodes[e.ContentID]; ok {
		c.curBytes -= entrySize(existing.entry)
		existing.entry = e
		existing.dirty = existing.dirty || dirty
		c.order.MoveToFront(existing.element)
		c.curBytes += entrySize(e)
	} else {
		el := c.order.PushFront(e.ContentID)
		c.nodes[e.ContentID] = &cacheNode{entry: e, dirty: dirty, element: el}
		c.curBytes += entrySize(e)
	}

	c.evictLocked()
}

// MarkClean clears an entry's dirty bit after a successful flush.
func (c *Cache) MarkClean(contentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.nodes[contentID]; ok {
		n.dirty = false
	}
}

func (c *Cache) evictLocked() {
	if c.maxBytes <= 0 {
		return
	}
	for c.curBytes > c.maxBytes && c.order.Len() > 0 {
		back := c.order.Back()
		id := back.Value.(string)
		n := c.nodes[id]
		if n.dirty && c.onEvict != nil {
			c.onEvict(n.entry)
		}
		c.removeLockedByElement(id, back)
		logging.EmbeddingDebug("evicted cache entry %s (curBytes=%d, maxBytes=%d)", id, c.curBytes, c.maxBytes)
	}
}

func (c *Cache) removeLocked(contentID string) {
	n, ok := c.nodes[contentID]
	if !ok {
		return
	}
	c.removeLockedByElement(contentID, n.element)
}

func (c *Cache) removeLockedByElement(contentID string, el *list.Element) {
	n, ok := c.nodes[contentID]
	if !ok {
		return
	}
	c.curBytes -= entrySize(n.entry)
	c.order.Remove(el)
	delete(c.nodes, contentID)
}

// Delete removes an entry outright (e.g. on entity deletion).
func (c *Cache) Delete(contentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(contentID)
}

// All returns a snapshot slice of every non-expired entry, optionally
// filtered by contentType (empty filter returns all types).
func (c *Cache) All(now time.Time, types ...model.ContentType) []*model.EmbeddingCacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	typeSet := make(map[model.ContentType]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	out := make([]*model.EmbeddingCacheEntry, 0, len(c.nodes))
	for _, n := range c.nodes {
		if n.entry.Expired(now) {
			continue
		}
		if len(typeSet) > 0 && !typeSet[n.entry.ContentType] {
			continue
		}
		out = append(out, n.entry)
	}
	return out
}

// Len returns the number of entries currently cached (including expired
// ones not yet swept).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// DirtyEntries returns every entry still marked dirty, for batched flush.
func (c *Cache) DirtyEntries() []*model.EmbeddingCacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*model.EmbeddingCacheEntry
	for _, n := range c.nodes {
		if n.dirty {
			out = append(out, n.entry)
		}
	}
	return out
}

// LoadSnapshot bulk-loads entries from a persisted cache file, e.g. at
// startup (spec §4.3). Loaded entries start clean (not dirty).
func (c *Cache) LoadSnapshot(entries []model.EmbeddingCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range entries {
		e := entries[i]
		el := c.order.PushFront(e.ContentID)
		c.nodes[e.ContentID] = &cacheNode{entry: &e, dirty: false, element: el}
		c.curBytes += entrySize(&e)
	}
}
