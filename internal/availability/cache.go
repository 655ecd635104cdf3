package availability

import (
	"context"
	"sync"
	"time"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

// DefaultCacheTTL keeps windows memoized just long enough to soak repeated
// reads while admin edits and new bookings still show up almost immediately.
const DefaultCacheTTL = 10 * time.Second

// CacheMetrics receives hit/miss observations.
type CacheMetrics interface {
	ObserveCache(hit bool)
}

type cacheEntry struct {
	windows   []schedule.Window
	expiresAt time.Time
}

// Cache memoizes window lookups per (date, audience) with a short TTL. It is
// purely an optimization: the booking finalizer never consults it, so
// correctness holds even with TTL zero. Configuration is explicit, no
// module-global state.
type Cache struct {
	source  schedule.WindowSource
	ttl     time.Duration
	now     func() time.Time
	metrics CacheMetrics

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache wraps a window source with TTL memoization. A zero ttl uses
// DefaultCacheTTL; the now function is injected for tests and defaults to
// time.Now.
func NewCache(source schedule.WindowSource, ttl time.Duration, now func() time.Time) *Cache {
	if source == nil {
		panic("availability: window source required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		source:  source,
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// WithMetrics attaches cache hit/miss metrics.
func (c *Cache) WithMetrics(m CacheMetrics) *Cache {
	c.metrics = m
	return c
}

// ListWindows implements schedule.WindowSource with memoization.
func (c *Cache) ListWindows(ctx context.Context, date string, audience schedule.Audience) ([]schedule.Window, error) {
	key := date + "|" + string(audience)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && c.now().Before(entry.expiresAt) {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.ObserveCache(true)
		}
		return entry.windows, nil
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.ObserveCache(false)
	}
	windows, err := c.source.ListWindows(ctx, date, audience)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{windows: windows, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return windows, nil
}

// InvalidateDate drops both audience entries for a date. Called on every
// window edit and on every booking creation or cancellation for the date.
func (c *Cache) InvalidateDate(date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, date+"|"+string(schedule.AudienceClient))
	delete(c.entries, date+"|"+string(schedule.AudienceAdmin))
}

// InvalidateAll clears the whole cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
