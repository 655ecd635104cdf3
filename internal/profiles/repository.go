// Package profiles reads the client records bookings and notifications
// reference. Registration and profile editing live outside this service.
package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProfileNotFound is returned when no profile matches the id.
var ErrProfileNotFound = errors.New("profiles: profile not found")

// Profile is a clinic client.
type Profile struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone,omitempty"`
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads profiles from Postgres.
type Repository struct {
	db rowQuerier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("profiles: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db rowQuerier) *Repository {
	return &Repository{db: db}
}

// GetByID loads one profile.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT id, full_name, email, COALESCE(phone, '')
		FROM profiles
		WHERE id = $1
	`
	var p Profile
	if err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.FullName, &p.Email, &p.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profiles: load profile: %w", err)
	}
	return &p, nil
}
