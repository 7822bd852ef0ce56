package transfer

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound           = errors.New("transfer request not found")
	ErrConflictingRequest = errors.New("a pending transfer request already exists for this booking")
	ErrNotPending         = errors.New("transfer request is no longer pending")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a pending request. The insert is guarded twice against a
// second offer for the same booking: a NOT EXISTS clause and, for the
// window two inserts race through it, the partial unique index on
// (origin_booking_id) WHERE status = 'pending'.
func (r *Repository) Create(ctx context.Context, req *Request) error {
	err := r.db.GetContext(ctx, req, createRequestQuery,
		req.ID, req.OriginBookingID, req.OriginRideID, req.TargetRideID,
		req.PassengerID, req.Priority, req.Benefits, req.Deadline)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrConflictingRequest
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflictingRequest
	}
	return err
}

const createRequestQuery = `
INSERT INTO transfer_requests
    (id, origin_booking_id, origin_ride_id, target_ride_id, passenger_id, status, priority, benefits, created_at, deadline)
SELECT $1, $2, $3, $4, $5, 'pending', $6, $7, now(), $8
WHERE NOT EXISTS (
    SELECT 1 FROM transfer_requests WHERE origin_booking_id = $2 AND status = 'pending'
)
RETURNING *
`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Request, error) {
	var req Request
	err := r.db.GetContext(ctx, &req, getRequestByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

const getRequestByIDQuery = `SELECT * FROM transfer_requests WHERE id = $1`

// Claim stamps the response time on a still-pending, unanswered request
// before its deadline. Exactly one concurrent responder wins the stamp; the
// expiry sweep ignores claimed rows, so the winner holds the request for the
// duration of its saga.
func (r *Repository) Claim(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.exec(ctx, claimRequestQuery, id, now)
}

const claimRequestQuery = `
UPDATE transfer_requests SET responded_at = $2
WHERE id = $1 AND status = 'pending' AND responded_at IS NULL AND deadline > $2
`

// Unclaim clears the response stamp so an aborted saga leaves the request
// answerable again.
func (r *Repository) Unclaim(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, unclaimRequestQuery, id)
}

const unclaimRequestQuery = `
UPDATE transfer_requests SET responded_at = NULL
WHERE id = $1 AND status = 'pending'
`

// Resolve moves a pending request to a terminal status, recording the
// replacement booking when one was created.
func (r *Repository) Resolve(ctx context.Context, id uuid.UUID, to Status, targetBookingID uuid.NullUUID) error {
	return r.exec(ctx, resolveRequestQuery, id, to.String(), targetBookingID)
}

const resolveRequestQuery = `
UPDATE transfer_requests SET status = $2, target_booking_id = $3
WHERE id = $1 AND status = 'pending'
`

// Expire flips a single unanswered request past its deadline to expired.
func (r *Repository) Expire(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.exec(ctx, expireRequestQuery, id, now)
}

const expireRequestQuery = `
UPDATE transfer_requests SET status = 'expired'
WHERE id = $1 AND status = 'pending' AND responded_at IS NULL AND deadline < $2
`

// ExpireOverdue flips every unanswered pending request whose deadline has
// passed. Requests already terminal, and requests claimed by an in-flight
// response, are untouched, so repeated sweeps are no-ops.
func (r *Repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, expireOverdueQuery, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const expireOverdueQuery = `
UPDATE transfer_requests SET status = 'expired'
WHERE status = 'pending' AND responded_at IS NULL AND deadline < $1
`

func (r *Repository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}
