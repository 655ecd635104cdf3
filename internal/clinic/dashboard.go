// Package clinic serves the admin day dashboard: every appointment for
// a date with dog and owner details, plus per-state counts.
package clinic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

type dashboardDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DayEntry is one appointment row on the dashboard.
type DayEntry struct {
	BookingID   uuid.UUID `json:"booking_id"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	ServiceName string    `json:"service_name"`
	ServiceType string    `json:"service_type"`
	DogName     string    `json:"dog_name"`
	OwnerName   string    `json:"owner_name"`
	OwnerPhone  string    `json:"owner_phone,omitempty"`
	State       string    `json:"state"`
	IsHomeVisit bool      `json:"is_home_visit"`
	HomeAddress string    `json:"home_address,omitempty"`
}

// DayDashboard is the full dashboard payload for a date.
type DayDashboard struct {
	Date         string         `json:"date"`
	Entries      []DayEntry     `json:"entries"`
	CountByState map[string]int `json:"count_by_state"`
	BookedMin    int            `json:"booked_minutes"`
}

// DashboardRepository queries the day's appointments from the database.
type DashboardRepository struct {
	db dashboardDB
}

func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	if pool == nil {
		panic("clinic: pgx pool required for dashboard")
	}
	return &DashboardRepository{db: pool}
}

func NewDashboardRepositoryWithDB(db dashboardDB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// DayView loads every booking for the date, cancelled ones included so
// the admin sees what changed.
func (r *DashboardRepository) DayView(ctx context.Context, date string) (*DayDashboard, error) {
	if _, err := time.Parse(schedule.DateLayout, date); err != nil {
		return nil, fmt.Errorf("clinic dashboard: invalid date %q", date)
	}

	query := `
		SELECT b.id, to_char(b.start_time, 'HH24:MI'), b.duration_minutes,
		       s.name, s.service_type, d.name,
		       p.full_name, COALESCE(p.phone, ''),
		       b.state, b.is_home_visit, COALESCE(b.home_address, '')
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		JOIN dogs d ON d.id = b.dog_id
		JOIN profiles p ON p.id = b.client_id
		WHERE b.booking_date = $1
		ORDER BY b.start_time
	`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("clinic dashboard: query day: %w", err)
	}
	defer rows.Close()

	dash := &DayDashboard{
		Date:         date,
		Entries:      []DayEntry{},
		CountByState: make(map[string]int),
	}
	for rows.Next() {
		var e DayEntry
		var duration int
		err := rows.Scan(&e.BookingID, &e.StartTime, &duration,
			&e.ServiceName, &e.ServiceType, &e.DogName,
			&e.OwnerName, &e.OwnerPhone,
			&e.State, &e.IsHomeVisit, &e.HomeAddress)
		if err != nil {
			return nil, fmt.Errorf("clinic dashboard: scan row: %w", err)
		}
		e.EndTime = schedule.MinutesToTime(schedule.TimeToMinutes(e.StartTime) + duration)
		dash.Entries = append(dash.Entries, e)
		dash.CountByState[e.State]++
		if e.State != "cancelada" {
			dash.BookedMin += duration
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clinic dashboard: iterate rows: %w", err)
	}
	return dash, nil
}
