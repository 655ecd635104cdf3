package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/bookings"
	"github.com/fisiocan/booking-platform/internal/profiles"
)

type mockEmailSender struct {
	sent    []EmailMessage
	callErr error
}

func (m *mockEmailSender) Send(_ context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

type mockProfiles struct {
	profile *profiles.Profile
	err     error
}

func (m *mockProfiles) GetByID(_ context.Context, _ uuid.UUID) (*profiles.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

func newTestService(email *mockEmailSender, dir ProfileDirectory) *Service {
	svc := NewService(email, dir, "clinica@fisiocan.example", nil)
	svc.async = false
	return svc
}

func sampleBooking() *bookings.Booking {
	return &bookings.Booking{
		ID:         uuid.New(),
		ClientID:   uuid.New(),
		Date:       "2026-03-11",
		StartTime:  "11:00",
		PriceCents: 4000,
		State:      bookings.StatePendiente,
	}
}

func TestBookingCreatedEmailsClientAndAdmin(t *testing.T) {
	email := &mockEmailSender{}
	dir := &mockProfiles{profile: &profiles.Profile{
		FullName: "Ana García",
		Email:    "ana@example.com",
	}}
	svc := newTestService(email, dir)

	svc.BookingCreated(context.Background(), sampleBooking())

	if len(email.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(email.sent))
	}
	if email.sent[0].To != "ana@example.com" {
		t.Errorf("client email to %q", email.sent[0].To)
	}
	if email.sent[1].To != "clinica@fisiocan.example" {
		t.Errorf("admin email to %q", email.sent[1].To)
	}
}

func TestBookingConfirmedSkipsAdmin(t *testing.T) {
	email := &mockEmailSender{}
	dir := &mockProfiles{profile: &profiles.Profile{Email: "ana@example.com"}}
	svc := newTestService(email, dir)

	svc.BookingConfirmed(context.Background(), sampleBooking())

	if len(email.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(email.sent))
	}
	if !strings.Contains(email.sent[0].Subject, "confirmada") {
		t.Errorf("subject = %q", email.sent[0].Subject)
	}
}

func TestBookingCancelledMentionsSurcharge(t *testing.T) {
	email := &mockEmailSender{}
	dir := &mockProfiles{profile: &profiles.Profile{Email: "ana@example.com"}}
	svc := newTestService(email, dir)

	b := sampleBooking()
	b.SurchargeCents = 2000
	svc.BookingCancelled(context.Background(), b)

	if len(email.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(email.sent))
	}
	if !strings.Contains(email.sent[0].Body, "20.00") {
		t.Errorf("client body missing surcharge: %q", email.sent[0].Body)
	}
}

func TestProfileLookupFailureSkipsClientEmail(t *testing.T) {
	email := &mockEmailSender{}
	dir := &mockProfiles{err: errors.New("db down")}
	svc := newTestService(email, dir)

	svc.BookingCreated(context.Background(), sampleBooking())

	// Admin still gets notified even when the client lookup fails.
	if len(email.sent) != 1 || email.sent[0].To != "clinica@fisiocan.example" {
		t.Fatalf("sent = %+v, want admin email only", email.sent)
	}
}

func TestSendFailureIsSwallowed(t *testing.T) {
	email := &mockEmailSender{callErr: errors.New("provider down")}
	dir := &mockProfiles{profile: &profiles.Profile{Email: "ana@example.com"}}
	svc := newTestService(email, dir)

	// Must not panic or propagate.
	svc.BookingReminder(context.Background(), sampleBooking())
}
