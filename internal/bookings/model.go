// Package bookings holds the booking lifecycle: the finalizer state
// machine, the Postgres repository with its atomic insert backstop, the
// HTTP surface and the completion sweeper.
package bookings

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

// State is the booking lifecycle state. Values are stored as-is, so they
// stay in Spanish to match the rest of the platform.
type State string

const (
	StatePendiente              State = "pendiente"
	StatePendienteConfirmacion  State = "pendiente_confirmacion"
	StateConfirmada             State = "confirmada"
	StateCompletada             State = "completada"
	StateCancelada              State = "cancelada"
)

// ActiveStates are the states that occupy their slot. Cancelled and
// completed bookings free the calendar.
var ActiveStates = []State{StatePendiente, StatePendienteConfirmacion, StateConfirmada}

const (
	// LateCancelWindow is how close to the start a cancellation counts
	// as late and triggers the surcharge.
	LateCancelWindow = 24 * time.Hour

	// LateCancelSurchargePct is applied to the booking price on late
	// cancellations.
	LateCancelSurchargePct = 50
)

// Booking is one appointment row.
type Booking struct {
	ID              uuid.UUID            `json:"id"`
	ClientID        uuid.UUID            `json:"client_id"`
	DogID           uuid.UUID            `json:"dog_id"`
	ServiceID       uuid.UUID            `json:"service_id"`
	ServiceType     schedule.ServiceType `json:"service_type"`
	SpaceID         uuid.UUID            `json:"space_id,omitempty"`
	Date            string               `json:"date"`
	StartTime       string               `json:"start_time"`
	EndTime         string               `json:"end_time"`
	DurationMinutes int                  `json:"duration_minutes"`
	PriceCents      int                  `json:"price_cents"`
	State           State                `json:"state"`
	IsHomeVisit     bool                 `json:"is_home_visit"`
	HomeAddress     string               `json:"home_address,omitempty"`
	Observations    string               `json:"observations,omitempty"`
	SurchargeCents  int                  `json:"surcharge_cents,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// CreateBookingRequest is the client payload for a new booking. EndTime
// and HomeAddress are only meaningful for home visits, where the client
// chooses how long the visit runs.
type CreateBookingRequest struct {
	ServiceID    uuid.UUID `json:"service_id"`
	DogID        uuid.UUID `json:"dog_id"`
	Date         string    `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time,omitempty"`
	HomeAddress  string    `json:"home_address,omitempty"`
	Observations string    `json:"observations,omitempty"`
}

// Validate checks the request against the service being booked and
// returns the effective duration in minutes.
func (r *CreateBookingRequest) Validate(svcType schedule.ServiceType, svcDuration int) (int, error) {
	if r.ServiceID == uuid.Nil {
		return 0, fmt.Errorf("%w: service_id is required", ErrValidation)
	}
	if r.DogID == uuid.Nil {
		return 0, fmt.Errorf("%w: dog_id is required", ErrValidation)
	}
	if _, err := time.Parse(schedule.DateLayout, strings.TrimSpace(r.Date)); err != nil {
		return 0, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if _, err := time.Parse("15:04", strings.TrimSpace(r.StartTime)); err != nil {
		return 0, fmt.Errorf("%w: start_time must be HH:MM", ErrValidation)
	}
	if !svcType.IsHomeVisit() {
		if svcDuration <= 0 {
			return 0, fmt.Errorf("%w: service has no duration", ErrValidation)
		}
		return svcDuration, nil
	}

	if strings.TrimSpace(r.HomeAddress) == "" {
		return 0, fmt.Errorf("%w: home_address is required for home visits", ErrValidation)
	}
	if _, err := time.Parse("15:04", strings.TrimSpace(r.EndTime)); err != nil {
		return 0, fmt.Errorf("%w: end_time must be HH:MM", ErrValidation)
	}
	duration := schedule.TimeToMinutes(r.EndTime) - schedule.TimeToMinutes(r.StartTime)
	if duration <= 0 {
		return 0, fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	if duration < schedule.MinHomeVisitMinutes {
		return 0, fmt.Errorf("%w: home visits last at least %d minutes", ErrValidation, schedule.MinHomeVisitMinutes)
	}
	return duration, nil
}
