// Package dogs holds the patient records referenced by bookings: each dog
// belongs to an owner profile, and a booking must pair a client with one of
// their own dogs.
package dogs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDogNotFound = errors.New("dogs: dog not found")
	ErrNotOwner    = errors.New("dogs: dog does not belong to this client")
)

// Dog is the clinic's record for a patient.
type Dog struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads dog records from Postgres.
type Repository struct {
	db rowQuerier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("dogs: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db rowQuerier) *Repository {
	return &Repository{db: db}
}

// GetForOwner loads a dog and verifies ownership in one query.
func (r *Repository) GetForOwner(ctx context.Context, ownerID, dogID uuid.UUID) (*Dog, error) {
	query := `
		SELECT id, owner_id, name, COALESCE(breed, ''), COALESCE(notes, ''), created_at
		FROM dogs
		WHERE id = $1
	`
	var d Dog
	err := r.db.QueryRow(ctx, query, dogID).Scan(&d.ID, &d.OwnerID, &d.Name, &d.Breed, &d.Notes, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDogNotFound
		}
		return nil, fmt.Errorf("dogs: load dog: %w", err)
	}
	if d.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return &d, nil
}

// ListByOwner returns a client's dogs, oldest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Dog, error) {
	query := `
		SELECT id, owner_id, name, COALESCE(breed, ''), COALESCE(notes, ''), created_at
		FROM dogs
		WHERE owner_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("dogs: list by owner: %w", err)
	}
	defer rows.Close()

	var result []*Dog
	for rows.Next() {
		var d Dog
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Breed, &d.Notes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("dogs: scan dog: %w", err)
		}
		result = append(result, &d)
	}
	return result, rows.Err()
}
