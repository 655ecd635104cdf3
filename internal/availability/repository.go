package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists admin-configured windows in Postgres.
type Repository struct {
	db querier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db querier) *Repository {
	return &Repository{db: db}
}

// ListWindows returns the active windows for a date visible to the audience,
// ordered by start time. Clients never see admin-only windows.
func (r *Repository) ListWindows(ctx context.Context, date string, audience schedule.Audience) ([]schedule.Window, error) {
	query := `
		SELECT to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM available_time_slots
		WHERE slot_date = $1 AND is_active AND (NOT admin_only OR $2)
		ORDER BY start_time
	`
	rows, err := r.db.Query(ctx, query, date, audience == schedule.AudienceAdmin)
	if err != nil {
		return nil, fmt.Errorf("availability: list windows: %w", err)
	}
	defer rows.Close()

	var windows []schedule.Window
	for rows.Next() {
		var w schedule.Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, fmt.Errorf("availability: scan window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// ListForDate returns every active window row for a date, admin view.
func (r *Repository) ListForDate(ctx context.Context, date string) ([]Window, error) {
	query := `
		SELECT id, to_char(slot_date, 'YYYY-MM-DD'),
		       to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       admin_only, is_active, created_at, updated_at
		FROM available_time_slots
		WHERE slot_date = $1 AND is_active
		ORDER BY start_time
	`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("availability: list for date: %w", err)
	}
	defer rows.Close()

	var windows []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.Date, &w.StartTime, &w.EndTime, &w.AdminOnly, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("availability: scan window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// Create validates and inserts a new window. Overlap with another active
// window on the same date is a ValidationError, rejected before the write.
func (r *Repository) Create(ctx context.Context, req *UpsertWindowRequest) (*Window, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := r.checkOverlap(ctx, req, uuid.Nil); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO available_time_slots (id, slot_date, start_time, end_time, admin_only, is_active)
		VALUES ($1, $2, $3::time, $4::time, $5, true)
		RETURNING created_at, updated_at
	`
	w := &Window{
		ID:        id,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		AdminOnly: req.AdminOnly,
		Active:    true,
	}
	if err := r.db.QueryRow(ctx, query, id, req.Date, req.StartTime, req.EndTime, req.AdminOnly).Scan(&w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, fmt.Errorf("availability: insert window: %w", err)
	}
	return w, nil
}

// Update validates and rewrites an existing active window.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req *UpsertWindowRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := r.checkOverlap(ctx, req, id); err != nil {
		return err
	}

	query := `
		UPDATE available_time_slots
		SET slot_date = $2, start_time = $3::time, end_time = $4::time, admin_only = $5, updated_at = now()
		WHERE id = $1 AND is_active
	`
	ct, err := r.db.Exec(ctx, query, id, req.Date, req.StartTime, req.EndTime, req.AdminOnly)
	if err != nil {
		return fmt.Errorf("availability: update window: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

// Deactivate soft-deletes a window. Rows are never physically removed.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE available_time_slots
		SET is_active = false, updated_at = now()
		WHERE id = $1 AND is_active
	`
	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("availability: deactivate window: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func (r *Repository) checkOverlap(ctx context.Context, req *UpsertWindowRequest, ignore uuid.UUID) error {
	existing, err := r.ListForDate(ctx, req.Date)
	if err != nil {
		return err
	}
	start := schedule.TimeToMinutes(req.StartTime)
	end := schedule.TimeToMinutes(req.EndTime)
	for _, w := range existing {
		if w.ID == ignore {
			continue
		}
		if overlaps(start, end, schedule.TimeToMinutes(w.StartTime), schedule.TimeToMinutes(w.EndTime)) {
			return ErrWindowOverlap
		}
	}
	return nil
}
