package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

type countingSource struct {
	windows []schedule.Window
	err     error
	calls   int
}

func (s *countingSource) ListWindows(context.Context, string, schedule.Audience) ([]schedule.Window, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.windows, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCache_HitWithinTTL(t *testing.T) {
	source := &countingSource{windows: []schedule.Window{{Start: "09:00", End: "12:00"}}}
	clock := &fakeClock{now: time.Now()}
	cache := NewCache(source, 10*time.Second, clock.Now)

	ctx := context.Background()
	if _, err := cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock.Advance(5 * time.Second)
	if _, err := cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected a single source read within the TTL, got %d", source.calls)
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	source := &countingSource{}
	clock := &fakeClock{now: time.Now()}
	cache := NewCache(source, 10*time.Second, clock.Now)

	ctx := context.Background()
	_, _ = cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	clock.Advance(11 * time.Second)
	_, _ = cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	if source.calls != 2 {
		t.Fatalf("expected a fresh read after TTL expiry, got %d calls", source.calls)
	}
}

func TestCache_AudiencesAreSeparate(t *testing.T) {
	source := &countingSource{}
	clock := &fakeClock{now: time.Now()}
	cache := NewCache(source, 10*time.Second, clock.Now)

	ctx := context.Background()
	_, _ = cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	_, _ = cache.ListWindows(ctx, "2026-03-10", schedule.AudienceAdmin)
	if source.calls != 2 {
		t.Fatalf("admin and client views must be cached separately, got %d calls", source.calls)
	}
}

func TestCache_InvalidateDate(t *testing.T) {
	source := &countingSource{}
	clock := &fakeClock{now: time.Now()}
	cache := NewCache(source, time.Minute, clock.Now)

	ctx := context.Background()
	_, _ = cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	_, _ = cache.ListWindows(ctx, "2026-03-11", schedule.AudienceClient)
	cache.InvalidateDate("2026-03-10")
	_, _ = cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	_, _ = cache.ListWindows(ctx, "2026-03-11", schedule.AudienceClient)

	// 2026-03-10 was invalidated and re-read; 2026-03-11 stayed cached.
	if source.calls != 3 {
		t.Fatalf("expected 3 source reads, got %d", source.calls)
	}
}

func TestCache_InvalidateAll(t *testing.T) {
	source := &countingSource{}
	clock := &fakeClock{now: time.Now()}
	cache := NewCache(source, time.Minute, clock.Now)

	ctx := context.Background()
	_, _ = cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	_, _ = cache.ListWindows(ctx, "2026-03-11", schedule.AudienceAdmin)
	cache.InvalidateAll()
	_, _ = cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient)
	_, _ = cache.ListWindows(ctx, "2026-03-11", schedule.AudienceAdmin)
	if source.calls != 4 {
		t.Fatalf("expected every entry to be dropped, got %d calls", source.calls)
	}
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	source := &countingSource{err: errors.New("timeout")}
	clock := &fakeClock{now: time.Now()}
	cache := NewCache(source, time.Minute, clock.Now)

	ctx := context.Background()
	if _, err := cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient); err == nil {
		t.Fatal("expected error")
	}
	source.err = nil
	if _, err := cache.ListWindows(ctx, "2026-03-10", schedule.AudienceClient); err != nil {
		t.Fatalf("recovered source must serve again: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", source.calls)
	}
}
