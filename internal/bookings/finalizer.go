package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/schedule"
	"github.com/fisiocan/booking-platform/internal/services"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

// Outcome is the terminal result of a finalization attempt.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeConflict  Outcome = "conflict"
	OutcomeError     Outcome = "error"
)

// Result carries the finalization outcome. Booking is set only on
// OutcomeCommitted; Err explains the other two.
type Result struct {
	Outcome Outcome
	Booking *Booking
	Err     error
}

// Store is the slice of the repository the finalizer needs.
type Store interface {
	ListActiveOccupancies(ctx context.Context, date string) ([]schedule.Occupancy, error)
	CreateAtomic(ctx context.Context, p *CreateParams) (*Booking, error)
	UpdateState(ctx context.Context, id uuid.UUID, state State) error
	ResolveSpace(ctx context.Context, t schedule.ServiceType) (*uuid.UUID, error)
}

// Notifier receives booking lifecycle events. Implementations must not
// block the booking path; the finalizer calls them fire-and-forget.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking)
	BookingPendingConfirmation(ctx context.Context, b *Booking)
	BookingConfirmed(ctx context.Context, b *Booking)
	BookingCancelled(ctx context.Context, b *Booking)
	BookingReminder(ctx context.Context, b *Booking)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) BookingCreated(context.Context, *Booking)             {}
func (NopNotifier) BookingPendingConfirmation(context.Context, *Booking) {}
func (NopNotifier) BookingConfirmed(context.Context, *Booking)           {}
func (NopNotifier) BookingCancelled(context.Context, *Booking)           {}
func (NopNotifier) BookingReminder(context.Context, *Booking)            {}

// CacheInvalidator drops cached availability for a date after a write.
type CacheInvalidator interface {
	InvalidateDate(date string)
}

// Broadcaster announces slot changes to other sessions.
type Broadcaster interface {
	SlotsChanged(ctx context.Context, date string) error
}

// FinalizerMetrics counts finalization outcomes.
type FinalizerMetrics interface {
	ObserveFinalize(outcome string)
}

// Finalizer runs the booking commit sequence: a fresh occupancy read,
// the in-process conflict check, the atomic insert, then the admin
// confirmation classifier and side effects. The in-process check gives
// good errors; the insert's exclusion constraint is the backstop when
// two sessions race past it.
type Finalizer struct {
	store    Store
	notifier Notifier
	cache    CacheInvalidator
	events   Broadcaster
	metrics  FinalizerMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewFinalizer wires the commit sequence. notifier, cache and events may
// be nil when the caller has no use for them.
func NewFinalizer(store Store, notifier Notifier, cache CacheInvalidator, events Broadcaster, logger *logging.Logger, now func() time.Time) *Finalizer {
	if store == nil {
		panic("bookings: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Finalizer{
		store:    store,
		notifier: notifier,
		cache:    cache,
		events:   events,
		logger:   logger,
		now:      now,
	}
}

// WithMetrics attaches outcome counters.
func (f *Finalizer) WithMetrics(m FinalizerMetrics) *Finalizer {
	f.metrics = m
	return f
}

// Finalize attempts to commit the booking for the given client and
// service. The request must already be validated; Finalize re-checks it
// anyway so a broken caller cannot slip an invalid row in.
func (f *Finalizer) Finalize(ctx context.Context, clientID uuid.UUID, req *CreateBookingRequest, svc *services.Service) *Result {
	duration, err := req.Validate(svc.Type, svc.DurationMinutes)
	if err != nil {
		return f.done(&Result{Outcome: OutcomeError, Err: err})
	}

	// Re-read occupancies straight from the repository. Cached
	// availability is never trusted at commit time.
	occupancies, err := f.store.ListActiveOccupancies(ctx, req.Date)
	if err != nil {
		return f.done(&Result{Outcome: OutcomeError, Err: fmt.Errorf("bookings: pre-commit read: %w", err)})
	}
	center, home := schedule.SplitOccupancies(occupancies)
	if schedule.IsTimeSlotBlocked(req.StartTime, duration, center, home) {
		return f.done(&Result{Outcome: OutcomeConflict, Err: ErrSlotConflict})
	}

	spaceID, err := f.store.ResolveSpace(ctx, svc.Type)
	if err != nil {
		return f.done(&Result{Outcome: OutcomeError, Err: err})
	}

	booking, err := f.store.CreateAtomic(ctx, &CreateParams{
		ID:           uuid.New(),
		ClientID:     clientID,
		DogID:        req.DogID,
		ServiceID:    svc.ID,
		SpaceID:      spaceID,
		Date:         req.Date,
		StartTime:    req.StartTime,
		Duration:     duration,
		RestMinutes:  schedule.RestMinutes(svc.Type),
		PriceCents:   svc.PriceCents,
		State:        StatePendiente,
		IsHomeVisit:  svc.Type.IsHomeVisit(),
		HomeAddress:  req.HomeAddress,
		Observations: req.Observations,
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			return f.done(&Result{Outcome: OutcomeConflict, Err: ErrSlotConflict})
		}
		return f.done(&Result{Outcome: OutcomeError, Err: err})
	}
	booking.ServiceType = svc.Type

	if schedule.RequiresAdminConfirmation(f.now(), booking.Date) {
		if err := f.store.UpdateState(ctx, booking.ID, StatePendienteConfirmacion); err != nil {
			// The row exists, so the slot is held either way. Log and
			// carry on with the stored state.
			f.logger.Error("promote to pending confirmation failed",
				"booking_id", booking.ID, "error", err)
		} else {
			booking.State = StatePendienteConfirmacion
		}
	}

	f.afterCommit(ctx, booking)
	return f.done(&Result{Outcome: OutcomeCommitted, Booking: booking})
}

func (f *Finalizer) afterCommit(ctx context.Context, b *Booking) {
	if f.cache != nil {
		f.cache.InvalidateDate(b.Date)
	}
	if f.events != nil {
		if err := f.events.SlotsChanged(ctx, b.Date); err != nil {
			f.logger.Error("slot change broadcast failed", "date", b.Date, "error", err)
		}
	}
	if b.State == StatePendienteConfirmacion {
		f.notifier.BookingPendingConfirmation(ctx, b)
	} else {
		f.notifier.BookingCreated(ctx, b)
	}
}

func (f *Finalizer) done(res *Result) *Result {
	if f.metrics != nil {
		f.metrics.ObserveFinalize(string(res.Outcome))
	}
	return res
}
