// Package availability manages the admin-configured open time windows and
// the short-lived cache in front of them.
package availability

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

// MinWindowMinutes is the smallest grant an admin can configure.
const MinWindowMinutes = 30

var (
	ErrWindowNotFound = errors.New("availability: window not found")
	ErrInvalidRange   = errors.New("availability: start must be before end")
	ErrWindowTooShort = errors.New("availability: window shorter than 30 minutes")
	ErrWindowOverlap  = errors.New("availability: window overlaps an existing one")
	ErrInvalidDate    = errors.New("availability: date must be YYYY-MM-DD")
)

// Window is an admin-configured open-for-booking range on a calendar date.
// Windows are soft-deleted only; Active=false rows stay in the table.
type Window struct {
	ID        uuid.UUID `json:"id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	AdminOnly bool      `json:"admin_only"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertWindowRequest is the admin payload for creating or editing a window.
type UpsertWindowRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	AdminOnly bool   `json:"admin_only"`
}

// Validate rejects malformed windows before any persistence write.
func (r *UpsertWindowRequest) Validate() error {
	if _, err := time.Parse(schedule.DateLayout, strings.TrimSpace(r.Date)); err != nil {
		return ErrInvalidDate
	}
	start := schedule.TimeToMinutes(r.StartTime)
	end := schedule.TimeToMinutes(r.EndTime)
	if r.StartTime == "" || r.EndTime == "" || start >= end {
		return ErrInvalidRange
	}
	if end-start < MinWindowMinutes {
		return ErrWindowTooShort
	}
	return nil
}

// overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Touching boundaries are fine; contiguous windows get merged downstream.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
