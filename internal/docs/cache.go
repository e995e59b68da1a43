package docs

import (
	"sort"
	"sync"
	"time"
)

// perEntryOverhead is the fixed byte estimate added per cache entry when
// computing Stats.EstimatedMemoryUsage (map bucket, struct, bookkeeping).
const perEntryOverhead = 256

// Fields stores the formatter-produced parts of a document. URL, key,
// timestamps and counters are owned by the cache itself.
type Fields struct {
	Markdown string
	Title    string
	DocType  string
}

// Cache is an in-memory store of formatted documents keyed by the SHA-256
// digest of their source URL. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*CachedDocument
	now     func() time.Time
}

// NewCache creates an empty document cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*CachedDocument),
		now:     time.Now,
	}
}

// Store inserts or overwrites the entry for url. The access count resets to
// zero and CreatedAt is refreshed, so a re-stored document is "new" for
// eviction ordering. Never fails — an unparseable URL still hashes fine.
func (c *Cache) Store(url string, fields Fields) {
	key := DeriveKey(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	docType := fields.DocType
	if docType == "" {
		docType = DocTypeDefault
	}
	c.entries[key] = &CachedDocument{
		URL:         url,
		Key:         key,
		Markdown:    fields.Markdown,
		Title:       fields.Title,
		DocType:     docType,
		CreatedAt:   c.now(),
		AccessCount: 0,
	}
}

// Get looks up a document by its source URL. On a hit the access count is
// incremented before the copy is returned; a miss has no side effects.
func (c *Cache) Get(url string) (CachedDocument, bool) {
	return c.GetByKey(DeriveKey(url))
}

// GetByKey looks up a document by its derived key, used when the caller
// already holds the key (e.g. from a resource URI). Increments the access
// count on a hit.
func (c *Cache) GetByKey(key string) (CachedDocument, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return CachedDocument{}, false
	}
	entry.AccessCount++
	return *entry, true
}

// Has reports whether a document for url is cached. No side effects —
// the access count is not touched.
func (c *Cache) Has(url string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.entries[DeriveKey(url)]
	return ok
}

// Delete removes the entry for url, reporting whether one was removed.
func (c *Cache) Delete(url string) bool {
	return c.DeleteByKey(DeriveKey(url))
}

// DeleteByKey removes the entry for key, reporting whether one was removed.
func (c *Cache) DeleteByKey(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// ListAll returns a snapshot of every cached document. Order follows map
// iteration and is not meaningful.
func (c *Cache) ListAll() []CachedDocument {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CachedDocument, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, *entry)
	}
	return out
}

// ListAllKeys returns a snapshot of every cache key.
func (c *Cache) ListAllKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.entries))
	for key := range c.entries {
		out = append(out, key)
	}
	return out
}

// Size returns the number of cached documents.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CachedDocument)
}

// Stats computes aggregate statistics from the current snapshot. The memory
// estimate is advisory (character counts plus a fixed per-entry overhead)
// and plays no part in eviction decisions.
func (c *Cache) Stats() Stats {
	all := c.ListAll()

	stats := Stats{TotalDocuments: len(all)}
	for _, doc := range all {
		stats.TotalAccessCount += doc.AccessCount
		stats.EstimatedMemoryUsage += len(doc.Markdown) + len(doc.Title) + len(doc.URL) + perEntryOverhead
	}
	if len(all) > 0 {
		stats.AverageAccessCount = float64(stats.TotalAccessCount) / float64(len(all))
	}
	return stats
}

// LeastRecentlyUsed returns up to count eviction candidates: ascending by
// access count, ties broken by oldest CreatedAt. Never-accessed documents
// therefore come first, oldest-inserted ahead of newer ones.
func (c *Cache) LeastRecentlyUsed(count int) []CachedDocument {
	if count < 0 {
		count = 0
	}
	all := c.ListAll()

	sort.Slice(all, func(i, j int) bool {
		if all[i].AccessCount != all[j].AccessCount {
			return all[i].AccessCount < all[j].AccessCount
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if count < len(all) {
		all = all[:count]
	}
	return all
}

// EvictLRU removes up to count entries selected by LeastRecentlyUsed and
// returns the keys actually removed. Deleting an already-absent key is a
// no-op excluded from the result.
func (c *Cache) EvictLRU(count int) []string {
	candidates := c.LeastRecentlyUsed(count)

	evicted := make([]string, 0, len(candidates))
	for _, doc := range candidates {
		if c.DeleteByKey(doc.Key) {
			evicted = append(evicted, doc.Key)
		}
	}
	return evicted
}
