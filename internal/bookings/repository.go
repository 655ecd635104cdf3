package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists bookings in Postgres. The bookings table carries a
// generated occupied range column with a gist exclusion constraint over
// active states, so two inserts for overlapping slots cannot both land
// even when the in-process conflict check races.
type Repository struct {
	db querier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db querier) *Repository {
	return &Repository{db: db}
}

func activeStateStrings() []string {
	out := make([]string, len(ActiveStates))
	for i, s := range ActiveStates {
		out[i] = string(s)
	}
	return out
}

// ListActiveOccupancies returns every slot-occupying booking for the
// date, joined with the service catalog for the service type. Implements
// schedule.OccupancySource.
func (r *Repository) ListActiveOccupancies(ctx context.Context, date string) ([]schedule.Occupancy, error) {
	query := `
		SELECT to_char(b.start_time, 'HH24:MI'), b.duration_minutes, s.service_type
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.booking_date = $1 AND b.state = ANY($2)
		ORDER BY b.start_time
	`
	rows, err := r.db.Query(ctx, query, date, activeStateStrings())
	if err != nil {
		return nil, fmt.Errorf("bookings: list occupancies: %w", err)
	}
	defer rows.Close()

	var out []schedule.Occupancy
	for rows.Next() {
		var occ schedule.Occupancy
		if err := rows.Scan(&occ.Start, &occ.DurationMinutes, &occ.ServiceType); err != nil {
			return nil, fmt.Errorf("bookings: scan occupancy: %w", err)
		}
		out = append(out, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate occupancies: %w", err)
	}
	return out, nil
}

// CreateParams is everything the insert needs. RestMinutes widens the
// occupied range so the buffer after hydrotherapy is enforced by the
// exclusion constraint too.
type CreateParams struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	DogID        uuid.UUID
	ServiceID    uuid.UUID
	SpaceID      *uuid.UUID
	Date         string
	StartTime    string
	Duration     int
	RestMinutes  int
	PriceCents   int
	State        State
	IsHomeVisit  bool
	HomeAddress  string
	Observations string
}

// CreateAtomic inserts the booking. A gist exclusion or unique violation
// means another transaction took the slot first and maps to
// ErrSlotConflict.
func (r *Repository) CreateAtomic(ctx context.Context, p *CreateParams) (*Booking, error) {
	query := `
		INSERT INTO bookings (
			id, client_id, dog_id, service_id, space_id,
			booking_date, start_time, duration_minutes, rest_minutes,
			price_cents, state, is_home_visit, home_address, observations
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''), NULLIF($14, ''))
		RETURNING created_at, updated_at
	`
	b := &Booking{
		ID:              p.ID,
		ClientID:        p.ClientID,
		DogID:           p.DogID,
		ServiceID:       p.ServiceID,
		Date:            p.Date,
		StartTime:       p.StartTime,
		EndTime:         schedule.MinutesToTime(schedule.TimeToMinutes(p.StartTime) + p.Duration),
		DurationMinutes: p.Duration,
		PriceCents:      p.PriceCents,
		State:           p.State,
		IsHomeVisit:     p.IsHomeVisit,
		HomeAddress:     p.HomeAddress,
		Observations:    p.Observations,
	}
	if p.SpaceID != nil {
		b.SpaceID = *p.SpaceID
	}
	err := r.db.QueryRow(ctx, query,
		p.ID, p.ClientID, p.DogID, p.ServiceID, p.SpaceID,
		p.Date, p.StartTime, p.Duration, p.RestMinutes,
		p.PriceCents, string(p.State), p.IsHomeVisit, p.HomeAddress, p.Observations,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgExclusionViolation || pgErr.Code == pgUniqueViolation) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("bookings: insert booking: %w", err)
	}
	return b, nil
}

// GetByID loads one booking with its service type.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := selectBooking + ` WHERE b.id = $1`
	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: load booking: %w", err)
	}
	return b, nil
}

// UpdateState moves the booking to the given state.
func (r *Repository) UpdateState(ctx context.Context, id uuid.UUID, state State) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET state = $2, updated_at = now() WHERE id = $1`,
		id, string(state),
	)
	if err != nil {
		return fmt.Errorf("bookings: update state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// Cancel marks an active booking cancelled, recording any late-cancel
// surcharge. Returns ErrInvalidTransition when the booking already left
// an active state.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, surchargeCents int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET state = $2, surcharge_cents = $3, updated_at = now()
		WHERE id = $1 AND state = ANY($4)
	`, id, string(StateCancelada), surchargeCents, activeStateStrings())
	if err != nil {
		return fmt.Errorf("bookings: cancel booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// MarkCompletedBefore completes every booking whose end has passed and
// returns how many rows changed. Bookings still waiting on admin
// confirmation are left alone.
func (r *Repository) MarkCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET state = $2, updated_at = now()
		WHERE state = ANY($3)
		  AND booking_date + start_time + make_interval(mins => duration_minutes) <= $1
	`, cutoff, string(StateCompletada), []string{string(StatePendiente), string(StateConfirmada)})
	if err != nil {
		return 0, fmt.Errorf("bookings: mark completed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListRemindersDue returns active bookings for the date that have not
// been reminded yet.
func (r *Repository) ListRemindersDue(ctx context.Context, date string) ([]*Booking, error) {
	query := selectBooking + `
		WHERE b.booking_date = $1 AND b.state = ANY($2) AND b.reminder_sent_at IS NULL
		ORDER BY b.start_time
	`
	return r.list(ctx, query, date, activeStateStrings())
}

// MarkReminderSent records that the reminder for this booking went out.
func (r *Repository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET reminder_sent_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bookings: mark reminder sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListPendingConfirmation returns every booking waiting on the admin,
// oldest date first.
func (r *Repository) ListPendingConfirmation(ctx context.Context) ([]*Booking, error) {
	query := selectBooking + `
		WHERE b.state = $1
		ORDER BY b.booking_date, b.start_time
	`
	return r.list(ctx, query, string(StatePendienteConfirmacion))
}

// ListByClient returns the client's bookings, newest date first.
func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Booking, error) {
	query := selectBooking + `
		WHERE b.client_id = $1
		ORDER BY b.booking_date DESC, b.start_time DESC
	`
	return r.list(ctx, query, clientID)
}

// ResolveSpace maps a service type to the clinic space it occupies. Home
// visits use no space and return nil.
func (r *Repository) ResolveSpace(ctx context.Context, t schedule.ServiceType) (*uuid.UUID, error) {
	if t.IsHomeVisit() {
		return nil, nil
	}
	code := "cabina_rehabilitacion"
	if t == schedule.ServiceHidroterapia || t == schedule.ServiceHidroRehabilitacion {
		code = "piscina"
	}
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM spaces WHERE code = $1`, code).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("bookings: resolve space %q: %w", code, err)
	}
	return &id, nil
}

const selectBooking = `
	SELECT b.id, b.client_id, b.dog_id, b.service_id, s.service_type,
	       COALESCE(b.space_id, '00000000-0000-0000-0000-000000000000'::uuid),
	       to_char(b.booking_date, 'YYYY-MM-DD'), to_char(b.start_time, 'HH24:MI'),
	       b.duration_minutes, b.price_cents, b.state, b.is_home_visit,
	       COALESCE(b.home_address, ''), COALESCE(b.observations, ''),
	       b.surcharge_cents, b.created_at, b.updated_at
	FROM bookings b
	JOIN services s ON s.id = b.service_id`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.ClientID, &b.DogID, &b.ServiceID, &b.ServiceType,
		&b.SpaceID, &b.Date, &b.StartTime, &b.DurationMinutes,
		&b.PriceCents, &b.State, &b.IsHomeVisit, &b.HomeAddress,
		&b.Observations, &b.SurchargeCents, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.EndTime = schedule.MinutesToTime(schedule.TimeToMinutes(b.StartTime) + b.DurationMinutes)
	return &b, nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("bookings: list bookings: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate bookings: %w", err)
	}
	return out, nil
}
