package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"signal-backtest/internal/model"
)

// Cache stores fetched candle series by request key.
type Cache interface {
	Get(ctx context.Context, key string) (model.Series, bool, error)
	Set(ctx context.Context, key string, series model.Series) error
}

// CacheKey creates a deterministic key for a candle request.
func CacheKey(exchange, symbol, timeframe string, limit int) string {
	keyStr := fmt.Sprintf("%s:%s:%s:%d",
		strings.ToLower(exchange),
		strings.ToUpper(symbol),
		timeframe,
		ClampLimit(limit),
	)
	// Hash the key to keep it reasonably sized
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}

type cacheEntry struct {
	series    model.Series
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache. Expired entries are never returned
// and are swept by Cleanup.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a cached series if available and not expired
func (c *MemoryCache) Get(_ context.Context, key string) (model.Series, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return append(model.Series(nil), entry.series...), true, nil
}

// Set stores a copy of series
func (c *MemoryCache) Set(_ context.Context, key string, series model.Series) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = cacheEntry{
		series:    append(model.Series(nil), series...),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Clear removes all entries from the cache
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry)
}

// Sweep removes expired entries and reports how many were dropped.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			n++
		}
	}
	return n
}

// Cleanup sweeps every interval until ctx is done.
func (c *MemoryCache) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
