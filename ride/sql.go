package ride

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound         = errors.New("ride not found")
	ErrNotEnoughSeats   = errors.New("not enough available seats on ride")
	ErrCapacityExceeded = errors.New("release would exceed ride total seats")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a ride with all seats available.
func (r *Repository) Create(ctx context.Context, driverID string, totalSeats int) (Ride, error) {
	var ride Ride
	err := r.db.GetContext(ctx, &ride, createRideQuery, uuid.New(), driverID, totalSeats)
	return ride, err
}

const createRideQuery = `
INSERT INTO rides (id, driver_id, total_seats, available_seats, created_at)
VALUES ($1, $2, $3, $3, now())
RETURNING *
`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Ride, error) {
	var ride Ride
	err := r.db.GetContext(ctx, &ride, getRideByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Ride{}, ErrNotFound
	}
	return ride, err
}

const getRideByIDQuery = `SELECT * FROM rides WHERE id = $1`

// Reserve atomically takes seats from a ride. The decrement only applies
// while enough seats remain, so concurrent reservations can never drive
// available_seats negative.
func (r *Repository) Reserve(ctx context.Context, id uuid.UUID, seats int) error {
	res, err := r.db.ExecContext(ctx, reserveSeatsQuery, id, seats)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotEnoughSeats
	}
	return nil
}

const reserveSeatsQuery = `
UPDATE rides SET available_seats = available_seats - $2
WHERE id = $1 AND retired = false AND available_seats >= $2
`

// Release atomically returns seats to a ride, bounded above by total_seats.
func (r *Repository) Release(ctx context.Context, id uuid.UUID, seats int) error {
	res, err := r.db.ExecContext(ctx, releaseSeatsQuery, id, seats)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCapacityExceeded
	}
	return nil
}

const releaseSeatsQuery = `
UPDATE rides SET available_seats = available_seats + $2
WHERE id = $1 AND available_seats + $2 <= total_seats
`

// Retire marks a ride as no longer accepting reservations. The row is kept
// because bookings continue to reference it.
func (r *Repository) Retire(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, retireRideQuery, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const retireRideQuery = `UPDATE rides SET retired = true WHERE id = $1`
