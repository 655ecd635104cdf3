package bookings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type stubLifecycleStore struct {
	booking   *Booking
	cancelled bool
	surcharge int
	newState  State
	cancelErr error
	updateErr error
}

func (s *stubLifecycleStore) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	if s.booking == nil || s.booking.ID != id {
		return nil, ErrBookingNotFound
	}
	b := *s.booking
	return &b, nil
}

func (s *stubLifecycleStore) Cancel(_ context.Context, _ uuid.UUID, surchargeCents int) error {
	if s.cancelErr != nil {
		return s.cancelErr
	}
	s.cancelled = true
	s.surcharge = surchargeCents
	return nil
}

func (s *stubLifecycleStore) UpdateState(_ context.Context, _ uuid.UUID, state State) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.newState = state
	return nil
}

func pendingBooking(clientID uuid.UUID, date, start string, state State) *Booking {
	return &Booking{
		ID:         uuid.New(),
		ClientID:   clientID,
		Date:       date,
		StartTime:  start,
		PriceCents: 4000,
		State:      state,
	}
}

func TestCancelLateChargesHalfPrice(t *testing.T) {
	clientID := uuid.New()
	store := &stubLifecycleStore{
		booking: pendingBooking(clientID, "2026-03-11", "09:00", StatePendiente),
	}
	// 2026-03-10 10:00 is under 24h before the 2026-03-11 09:00 start.
	lc := NewLifecycle(store, nil, nil, nil, nil, fixedNow(t, "2026-03-10 10:00"))

	b, err := lc.Cancel(context.Background(), clientID, false, store.booking.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if b.State != StateCancelada {
		t.Errorf("state = %s, want cancelada", b.State)
	}
	if store.surcharge != 2000 {
		t.Errorf("surcharge = %d cents, want 2000", store.surcharge)
	}
}

func TestCancelEarlyHasNoSurcharge(t *testing.T) {
	clientID := uuid.New()
	store := &stubLifecycleStore{
		booking: pendingBooking(clientID, "2026-03-11", "09:00", StatePendiente),
	}
	lc := NewLifecycle(store, nil, nil, nil, nil, fixedNow(t, "2026-03-09 09:00"))

	if _, err := lc.Cancel(context.Background(), clientID, false, store.booking.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if store.surcharge != 0 {
		t.Errorf("surcharge = %d cents, want 0", store.surcharge)
	}
}

func TestCancelOthersBookingReadsAsNotFound(t *testing.T) {
	ownerID := uuid.New()
	store := &stubLifecycleStore{
		booking: pendingBooking(ownerID, "2026-03-11", "09:00", StatePendiente),
	}
	lc := NewLifecycle(store, nil, nil, nil, nil, fixedNow(t, "2026-03-09 09:00"))

	_, err := lc.Cancel(context.Background(), uuid.New(), false, store.booking.ID)
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if store.cancelled {
		t.Error("booking was cancelled by a stranger")
	}
}

func TestCancelAsAdminSkipsOwnershipCheck(t *testing.T) {
	store := &stubLifecycleStore{
		booking: pendingBooking(uuid.New(), "2026-03-11", "09:00", StatePendiente),
	}
	lc := NewLifecycle(store, nil, nil, nil, nil, fixedNow(t, "2026-03-09 09:00"))

	if _, err := lc.Cancel(context.Background(), uuid.Nil, true, store.booking.ID); err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if !store.cancelled {
		t.Error("booking was not cancelled")
	}
}

func TestConfirmPendingBooking(t *testing.T) {
	store := &stubLifecycleStore{
		booking: pendingBooking(uuid.New(), "2026-03-11", "09:00", StatePendienteConfirmacion),
	}
	lc := NewLifecycle(store, nil, nil, nil, nil, fixedNow(t, "2026-03-10 19:00"))

	b, err := lc.Confirm(context.Background(), store.booking.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if b.State != StateConfirmada || store.newState != StateConfirmada {
		t.Errorf("state = %s / stored %s, want confirmada", b.State, store.newState)
	}
}

func TestConfirmRejectsWrongState(t *testing.T) {
	store := &stubLifecycleStore{
		booking: pendingBooking(uuid.New(), "2026-03-11", "09:00", StatePendiente),
	}
	lc := NewLifecycle(store, nil, nil, nil, nil, fixedNow(t, "2026-03-10 19:00"))

	_, err := lc.Confirm(context.Background(), store.booking.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
