package users

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cache is a bounded TTL cache of user display names. It is passed into the
// components that need name lookups; there is no package-level instance.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

type cacheEntry struct {
	name    string
	addedAt time.Time
}

// Config holds cache configuration
type Config struct {
	MaxEntries    int
	TTL           time.Duration
	SweepInterval time.Duration
}

// NewCache creates a bounded display-name cache
func NewCache(config Config) *Cache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1024
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		maxEntries: config.MaxEntries,
		ttl:        config.TTL,
		now:        time.Now,
	}
}

// Get returns the cached name for a user, if present and not expired
func (c *Cache) Get(userID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.addedAt) > c.ttl {
		delete(c.entries, userID)
		return "", false
	}
	return entry.name, true
}

// Put stores a name, evicting the oldest entry when the cache is full
func (c *Cache) Put(userID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[userID]; !ok && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[userID] = cacheEntry{name: name, addedAt: c.now()}
}

// Invalidate drops a single user's cached name
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes all expired entries and reports how many were dropped
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.ttl)
	dropped := 0
	for id, entry := range c.entries {
		if entry.addedAt.Before(cutoff) {
			delete(c.entries, id)
			dropped++
		}
	}
	return dropped
}

func (c *Cache) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, entry := range c.entries {
		if oldestID == "" || entry.addedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = entry.addedAt
		}
	}
	if oldestID != "" {
		delete(c.entries, oldestID)
	}
}

// Sweeper periodically removes expired cache entries
type Sweeper struct {
	cache    *Cache
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a cache sweeper
func NewSweeper(cache *Cache, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{cache: cache, interval: interval, logger: logger}
}

// Start sweeps the cache until the context is cancelled
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("starting user cache sweeper", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping user cache sweeper")
			return ctx.Err()
		case <-ticker.C:
			dropped := s.cache.Sweep()
			s.logger.Debug("user cache sweep completed", "dropped", dropped, "size", s.cache.Len())
		}
	}
}
