package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/decktutor/combo-backend/models"
	"github.com/sirupsen/logrus"
)

// ComboCache stores combo lookup results keyed by lowercased card name.
// The interface keeps lifetime and eviction policy pluggable and testable
// in isolation from the matcher.
type ComboCache interface {
	Get(key string) ([]models.ComboRecord, bool)
	Set(key string, records []models.ComboRecord)
}

// comboCacheEntry is a cached lookup result with optional expiration
type comboCacheEntry struct {
	Records   []models.ComboRecord
	ExpiresAt time.Time
}

// IsExpired checks if the cache entry has expired. Entries written with a
// zero TTL never expire.
func (e *comboCacheEntry) IsExpired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// MemoryComboCache is a thread-safe in-memory combo lookup cache with
// optional TTL and simple FIFO eviction at the size bound. With a zero TTL
// (the default) entries live for the process lifetime.
type MemoryComboCache struct {
	cache      map[string]*comboCacheEntry
	mutex      sync.RWMutex
	defaultTTL time.Duration
	maxSize    int
}

// NewMemoryComboCache creates a cache with the given TTL and size bound.
// A zero defaultTTL disables expiration; cleanup only runs when a TTL is set.
func NewMemoryComboCache(defaultTTL time.Duration, maxSize int) *MemoryComboCache {
	c := &MemoryComboCache{
		cache:      make(map[string]*comboCacheEntry),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
	}

	if defaultTTL > 0 {
		go c.cleanupExpired()
	}

	return c
}

// Get retrieves the cached records for a key. The returned slice is shared;
// callers must not mutate it.
func (c *MemoryComboCache) Get(key string) ([]models.ComboRecord, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[key]
	if !exists || entry.IsExpired() {
		return nil, false
	}

	return entry.Records, true
}

// Set stores records for a key. Negative results (empty slices) are cached
// exactly like positive ones.
func (c *MemoryComboCache) Set(key string, records []models.ComboRecord) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.cache) >= c.maxSize {
		c.evictOldest()
	}

	var expiresAt time.Time
	if c.defaultTTL > 0 {
		expiresAt = time.Now().Add(c.defaultTTL)
	}

	c.cache[key] = &comboCacheEntry{
		Records:   records,
		ExpiresAt: expiresAt,
	}
}

// Delete removes a key from the cache
func (c *MemoryComboCache) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.cache, key)
}

// Clear removes all cached entries
func (c *MemoryComboCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]*comboCacheEntry)
}

// Size returns the number of cached entries
func (c *MemoryComboCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// evictOldest removes the entry closest to expiry (FIFO when TTLs are equal)
func (c *MemoryComboCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.cache {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.cache, oldestKey)
	}
}

// cleanupExpired periodically removes expired entries
func (c *MemoryComboCache) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		for key, entry := range c.cache {
			if entry.IsExpired() {
				delete(c.cache, key)
			}
		}
		c.mutex.Unlock()
	}
}

// CachedComboProvider wraps a ComboProvider with the combo lookup cache.
// Lookups are total: provider failures are logged and cached as empty data,
// so a transient failure poisons that key for the entry lifetime. This is a
// documented limitation, not silently worked around.
type CachedComboProvider struct {
	provider ComboProvider
	cache    ComboCache
}

// NewCachedComboProvider creates a caching wrapper around a combo provider
func NewCachedComboProvider(provider ComboProvider, cache ComboCache) *CachedComboProvider {
	return &CachedComboProvider{
		provider: provider,
		cache:    cache,
	}
}

// Provider returns the wrapped provider
func (p *CachedComboProvider) Provider() ComboProvider {
	return p.provider
}

// GetCardCombos returns the combo records for a card. Cache keys are the
// lowercased card name; the provider is called with the original casing.
// Concurrent misses on the same key may both call the provider; the lookup
// is idempotent and side-effect free, so last write wins on insert.
func (p *CachedComboProvider) GetCardCombos(ctx context.Context, cardName string) []models.ComboRecord {
	cacheKey := strings.ToLower(cardName)

	if records, found := p.cache.Get(cacheKey); found {
		return records
	}

	records, err := p.provider.GetCardCombos(ctx, cardName)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "CachedComboProvider",
			"provider":  p.provider.Name(),
			"card_name": cardName,
		}).WithError(err).Warn("Combo lookup failed, caching empty result")
		records = nil
	}

	// An empty provider result is cached just like a populated one
	if records == nil {
		records = []models.ComboRecord{}
	}
	p.cache.Set(cacheKey, records)

	return records
}
