package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound       = errors.New("booking not found")
	ErrStatusConflict = errors.New("booking is not in the expected status")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a booking. Seat capacity must already have been reserved on
// the ride; this write records the reservation only.
func (r *Repository) Create(ctx context.Context, b *Booking) error {
	return r.db.GetContext(ctx, b, createBookingQuery,
		b.ID, b.PassengerID, b.RideID, b.Seats, b.TotalPrice, b.Status.String(), b.Notes)
}

const createBookingQuery = `
INSERT INTO bookings (id, passenger_id, ride_id, seats, total_price, status, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
RETURNING *
`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, getBookingByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	return b, err
}

const getBookingByIDQuery = `SELECT * FROM bookings WHERE id = $1`

// GetByPassenger fetches a passenger's bookings, optionally filtered by
// status, newest first.
func (r *Repository) GetByPassenger(ctx context.Context, passengerID string, status *Status) ([]Booking, error) {
	var bookings []Booking
	if status != nil {
		err := r.db.SelectContext(ctx, &bookings, getByPassengerStatusQuery, passengerID, status.String())
		return bookings, err
	}
	err := r.db.SelectContext(ctx, &bookings, getByPassengerQuery, passengerID)
	return bookings, err
}

const getByPassengerQuery = `SELECT * FROM bookings WHERE passenger_id = $1 ORDER BY created_at DESC`

const getByPassengerStatusQuery = `
SELECT * FROM bookings WHERE passenger_id = $1 AND status = $2 ORDER BY created_at DESC
`

// TransitionStatus moves a booking between statuses only if it is still in
// the expected one. A zero row count means the booking was missing or had
// already moved on; callers distinguish via GetByID if they care.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	res, err := r.db.ExecContext(ctx, transitionStatusQuery, id, from.String(), to.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}

const transitionStatusQuery = `UPDATE bookings SET status = $3 WHERE id = $1 AND status = $2`
