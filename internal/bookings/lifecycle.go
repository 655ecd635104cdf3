package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/schedule"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

// lifecycleStore is the repository slice the lifecycle service needs.
type lifecycleStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	Cancel(ctx context.Context, id uuid.UUID, surchargeCents int) error
	UpdateState(ctx context.Context, id uuid.UUID, state State) error
}

// Lifecycle handles transitions after a booking exists: client or admin
// cancellation with the late surcharge, and admin confirmation of
// same-evening bookings.
type Lifecycle struct {
	store    lifecycleStore
	notifier Notifier
	cache    CacheInvalidator
	events   Broadcaster
	logger   *logging.Logger
	now      func() time.Time
}

// NewLifecycle wires the transition service. notifier, cache and events
// may be nil.
func NewLifecycle(store lifecycleStore, notifier Notifier, cache CacheInvalidator, events Broadcaster, logger *logging.Logger, now func() time.Time) *Lifecycle {
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
	return &Lifecycle{
		store:    store,
		notifier: notifier,
		cache:    cache,
		events:   events,
		logger:   logger,
		now:      now,
	}
}

// SurchargeFor returns the late-cancellation surcharge in cents, zero
// when the booking starts more than the late window away.
func (l *Lifecycle) SurchargeFor(b *Booking) int {
	now := l.now()
	start, err := time.ParseInLocation(schedule.DateLayout+" 15:04", b.Date+" "+b.StartTime, now.Location())
	if err != nil {
		return 0
	}
	if start.Sub(now) >= LateCancelWindow {
		return 0
	}
	return b.PriceCents * LateCancelSurchargePct / 100
}

// Cancel cancels the booking on behalf of the actor. Non-admin actors
// can only cancel their own bookings; a stranger's booking reads as not
// found so ids cannot be probed.
func (l *Lifecycle) Cancel(ctx context.Context, actorID uuid.UUID, isAdmin bool, bookingID uuid.UUID) (*Booking, error) {
	b, err := l.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.ClientID != actorID {
		return nil, ErrBookingNotFound
	}
	surcharge := l.SurchargeFor(b)
	if err := l.store.Cancel(ctx, bookingID, surcharge); err != nil {
		return nil, err
	}
	b.State = StateCancelada
	b.SurchargeCents = surcharge

	if l.cache != nil {
		l.cache.InvalidateDate(b.Date)
	}
	if l.events != nil {
		if err := l.events.SlotsChanged(ctx, b.Date); err != nil {
			l.logger.Error("slot change broadcast failed", "date", b.Date, "error", err)
		}
	}
	l.notifier.BookingCancelled(ctx, b)
	return b, nil
}

// Confirm moves a booking out of pendiente_confirmacion. Only the admin
// calls this.
func (l *Lifecycle) Confirm(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	b, err := l.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.State != StatePendienteConfirmacion {
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.State)
	}
	if err := l.store.UpdateState(ctx, bookingID, StateConfirmada); err != nil {
		return nil, err
	}
	b.State = StateConfirmada
	l.notifier.BookingConfirmed(ctx, b)
	return b, nil
}
