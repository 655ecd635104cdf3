package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	// StepMinutes is the stepping interval between candidate start times.
	StepMinutes = 15

	// HomeVisitProbeMinutes is the nominal duration used to screen home-visit
	// start candidates. The real duration is chosen later by picking an end
	// time, so generation only rules out obviously conflicting starts; the
	// finalizer re-validates with the actual duration.
	HomeVisitProbeMinutes = 30

	// MinHomeVisitMinutes is the shortest bookable home visit.
	MinHomeVisitMinutes = 30
)

// Audience distinguishes client-facing from admin-facing availability.
// Admin-only windows are invisible to clients.
type Audience string

const (
	AudienceClient Audience = "client"
	AudienceAdmin  Audience = "admin"
)

// ServiceSpec carries the two service attributes the generator needs.
type ServiceSpec struct {
	Type            ServiceType
	DurationMinutes int
}

// WindowSource lists the active admin-configured windows for a date, already
// filtered to the requesting audience.
type WindowSource interface {
	ListWindows(ctx context.Context, date string, audience Audience) ([]Window, error)
}

// OccupancySource reads the day's active bookings. Implementations must
// return fresh data; the generator falls back to this source whenever the
// caller did not supply occupancies itself.
type OccupancySource interface {
	ListActiveOccupancies(ctx context.Context, date string) ([]Occupancy, error)
}

// GeneratorMetrics receives timing observations from slot generation.
type GeneratorMetrics interface {
	ObserveGeneration(audience string, seconds float64)
}

// Generator enumerates admissible start times for a service on a date.
type Generator struct {
	windows     WindowSource
	occupancies OccupancySource
	now         func() time.Time
	metrics     GeneratorMetrics
}

// NewGenerator creates a slot generator. The now function is injected so
// tests can pin the clock; nil defaults to time.Now.
func NewGenerator(windows WindowSource, occupancies OccupancySource, now func() time.Time) *Generator {
	if windows == nil {
		panic("schedule: window source required")
	}
	if occupancies == nil {
		panic("schedule: occupancy source required")
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{windows: windows, occupancies: occupancies, now: now}
}

// WithMetrics attaches generation metrics.
func (g *Generator) WithMetrics(m GeneratorMetrics) *Generator {
	g.metrics = m
	return g
}

// GenerateFilteredTimeSlots walks the merged admin windows for date at the
// stepping interval and keeps every candidate start the conflict detector
// admits, sorted ascending. Candidates on the current date inside the
// same-day lead time are dropped.
//
// center and home may be nil, in which case the generator fetches the
// freshest same-day occupancies itself. Stale caller-provided occupancies
// are the path to double bookings, so callers that are not certain their
// data is current should pass nil.
//
// An empty result is a legitimate "no availability" answer, never an error:
// a date with no configured windows is fail-closed.
func (g *Generator) GenerateFilteredTimeSlots(ctx context.Context, svc ServiceSpec, date string, center, home []Occupancy, audience Audience) ([]string, error) {
	start := g.now()
	defer func() {
		if g.metrics != nil {
			g.metrics.ObserveGeneration(string(audience), time.Since(start).Seconds())
		}
	}()

	windows, err := g.windows.ListWindows(ctx, date, audience)
	if err != nil {
		return nil, fmt.Errorf("schedule: list windows: %w", err)
	}
	if len(windows) == 0 {
		return nil, nil
	}

	if center == nil && home == nil {
		all, err := g.occupancies.ListActiveOccupancies(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("schedule: list occupancies: %w", err)
		}
		center, home = SplitOccupancies(all)
	}

	probeDuration := svc.DurationMinutes
	if svc.Type.IsHomeVisit() {
		probeDuration = HomeVisitProbeMinutes
	}

	seen := make(map[int]struct{})
	var candidates []int
	for _, window := range MergeConsecutiveWindows(windows) {
		windowStart := TimeToMinutes(window.Start)
		windowEnd := TimeToMinutes(window.End)

		// Fixed-duration services must fit entirely inside the window. Home
		// visits pick their end time later, so their candidates run through
		// the whole window.
		last := windowEnd - svc.DurationMinutes
		if svc.Type.IsHomeVisit() {
			last = windowEnd
		}

		for candidate := windowStart; candidate <= last; candidate += StepMinutes {
			if _, dup := seen[candidate]; dup {
				continue
			}
			if IsTimeSlotBlocked(MinutesToTime(candidate), probeDuration, center, home) {
				continue
			}
			seen[candidate] = struct{}{}
			candidates = append(candidates, candidate)
		}
	}

	sort.Ints(candidates)
	times := make([]string, 0, len(candidates))
	for _, c := range candidates {
		times = append(times, MinutesToTime(c))
	}
	return FilterTodayCutoff(g.now(), date, times), nil
}
