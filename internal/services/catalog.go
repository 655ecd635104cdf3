// Package services exposes the read-only service catalog: the four
// physiotherapy services the clinic offers, their durations and prices.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fisiocan/booking-platform/internal/schedule"
)

// ErrServiceNotFound is returned when no active service matches the id.
var ErrServiceNotFound = errors.New("services: service not found")

// Service is a bookable catalog entry. Immutable during a booking flow.
// Home visits have no fixed duration; theirs is derived from the chosen end
// time, so DurationMinutes holds the bookable minimum instead.
type Service struct {
	ID              uuid.UUID            `json:"id"`
	Type            schedule.ServiceType `json:"type"`
	Name            string               `json:"name"`
	DurationMinutes int                  `json:"duration_minutes"`
	PriceCents      int                  `json:"price_cents"`
	Active          bool                 `json:"is_active"`
}

// Spec converts a catalog entry into the generator's service spec.
func (s *Service) Spec() schedule.ServiceSpec {
	return schedule.ServiceSpec{Type: s.Type, DurationMinutes: s.DurationMinutes}
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads the service catalog from Postgres.
type Repository struct {
	db rowQuerier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("services: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db rowQuerier) *Repository {
	return &Repository{db: db}
}

// GetByID loads one active service.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Service, error) {
	query := `
		SELECT id, service_type, name, duration_minutes, price_cents, is_active
		FROM services
		WHERE id = $1 AND is_active
	`
	var s Service
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Type, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("services: load service: %w", err)
	}
	return &s, nil
}

// ListActive returns the bookable catalog in display order.
func (r *Repository) ListActive(ctx context.Context) ([]*Service, error) {
	query := `
		SELECT id, service_type, name, duration_minutes, price_cents, is_active
		FROM services
		WHERE is_active
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("services: list catalog: %w", err)
	}
	defer rows.Close()

	var catalog []*Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Type, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active); err != nil {
			return nil, fmt.Errorf("services: scan service: %w", err)
		}
		catalog = append(catalog, &s)
	}
	return catalog, rows.Err()
}
