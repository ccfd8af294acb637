// internal/cache/cache.go
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/law-makers/shelf/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache stores search responses by query.
type Cache interface {
	// Get returns the cached response for key and whether it was found.
	Get(key string) (*models.SearchResponse, bool)

	// Set stores a response with the given TTL, replacing any existing entry.
	Set(key string, resp *models.SearchResponse, ttl time.Duration)

	// Delete removes key. Missing keys are ignored.
	Delete(key string)

	// Clear removes every entry.
	Clear()
}

type cacheEntry struct {
	Data      *models.SearchResponse
	ExpiresAt time.Time
	Key       string
}

// MemoryCache is an in-process LRU cache with per-entry expiry.
type MemoryCache struct {
	store      map[string]*list.Element
	lruList    *list.List
	mu         sync.Mutex
	maxEntries int
	defaultTTL time.Duration
	hits       uint64
	misses     uint64

	now func() time.Time
}

// Stats is a point-in-time snapshot of cache usage.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// NewMemoryCache creates a cache holding at most maxEntries responses.
func NewMemoryCache(maxEntries int, defaultTTL time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}

	return &MemoryCache{
		store:      make(map[string]*list.Element),
		lruList:    list.New(),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get retrieves a cached response and marks it most recently used.
// Expired entries are dropped on access.
func (mc *MemoryCache) Get(key string) (*models.SearchResponse, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		return nil, false
	}

	entry := element.Value.(*cacheEntry)
	if mc.now().After(entry.ExpiresAt) {
		mc.misses++
		mc.removeElement(element)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Data, true
}

// Set stores resp under key. A non-positive ttl uses the cache default.
func (mc *MemoryCache) Set(key string, resp *models.SearchResponse, ttl time.Duration) {
	if ttl <= 0 {
		ttl = mc.defaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	entry := &cacheEntry{
		Data:      resp,
		ExpiresAt: mc.now().Add(ttl),
		Key:       key,
	}

	if element, exists := mc.store[key]; exists {
		element.Value = entry
		mc.lruList.MoveToFront(element)
		return
	}

	for mc.lruList.Len() >= mc.maxEntries {
		mc.evictLRU()
	}

	mc.store[key] = mc.lruList.PushFront(entry)
	log.Debug().Str("key", key).Dur("ttl", ttl).Msg("Cached search response")
}

// Delete removes a cached response.
func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.removeElement(element)
	}
}

// Clear removes all cached responses and resets the counters.
func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.hits = 0
	mc.misses = 0
}

// Prune drops every expired entry and returns how many were removed.
func (mc *MemoryCache) Prune() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	removed := 0
	var next *list.Element
	for element := mc.lruList.Front(); element != nil; element = next {
		next = element.Next()
		if now.After(element.Value.(*cacheEntry).ExpiresAt) {
			mc.removeElement(element)
			removed++
		}
	}
	return removed
}

// Stats returns entry count and hit rate.
func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	s := Stats{Entries: mc.lruList.Len(), Hits: mc.hits, Misses: mc.misses}
	if total := mc.hits + mc.misses; total > 0 {
		s.HitRate = float64(mc.hits) / float64(total) * 100
	}
	return s
}

// evictLRU must be called with the lock held.
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}
	log.Debug().Str("key", element.Value.(*cacheEntry).Key).Msg("Evicted from cache (LRU)")
	mc.removeElement(element)
}

func (mc *MemoryCache) removeElement(element *list.Element) {
	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
}

// KeyFromQuery normalizes a search query into a cache key. Queries that
// differ only in case or surrounding whitespace share an entry.
func KeyFromQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
