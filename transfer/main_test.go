package transfer

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/riddhik19/RideShare-sub001/booking"
	"github.com/riddhik19/RideShare-sub001/internal/notify"
	"github.com/riddhik19/RideShare-sub001/ride"
)

// Mirrors booking.transitionStatusQuery for cross-package expectations.
const transitionBookingStatusPattern = `UPDATE bookings SET status = $3 WHERE id = $1 AND status = $2`

var requestColumns = []string{
	"id", "origin_booking_id", "origin_ride_id", "target_ride_id", "target_booking_id",
	"passenger_id", "status", "priority", "benefits", "created_at", "deadline", "responded_at",
}

var bookingColumns = []string{
	"id", "passenger_id", "ride_id", "seats", "total_price", "status", "notes", "created_at",
}

type fixture struct {
	req      Request
	origin   booking.Booking
	now      time.Time
	notifier *notify.Fake
	mock     sqlmock.Sqlmock
	repo     *Repository
	proc     *Processor
	mgr      *Manager
	watcher  *Watcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sdb := sqlx.NewDb(db, "sqlmock")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := NewRepository(sdb)
	bkr := booking.NewRepository(sdb)
	rr := ride.NewRepository(sdb)
	notifier := notify.NewFake()

	now := time.Now()
	origin := booking.Booking{
		ID:          uuid.New(),
		PassengerID: "auth0|passenger",
		RideID:      uuid.New(),
		Seats:       2,
		TotalPrice:  1800,
		Status:      booking.StatusConfirmed,
		CreatedAt:   now.Add(-time.Hour),
	}
	req := Request{
		ID:              uuid.New(),
		OriginBookingID: origin.ID,
		OriginRideID:    origin.RideID,
		TargetRideID:    uuid.New(),
		PassengerID:     origin.PassengerID,
		Status:          StatusPending,
		Priority:        "high",
		Benefits:        Benefits{"higher rated driver", "departs 10 minutes earlier"},
		CreatedAt:       now,
		Deadline:        now.Add(OfferWindow),
	}

	return &fixture{
		req:      req,
		origin:   origin,
		now:      now,
		notifier: notifier,
		mock:     mock,
		repo:     repo,
		proc:     NewProcessor(repo, bkr, rr, notifier, logger),
		mgr:      NewManager(repo, bkr),
		watcher:  NewWatcher(repo, logger),
	}
}

func (f *fixture) requestRows(req Request) *sqlmock.Rows {
	var target any
	if req.TargetBookingID.Valid {
		target = req.TargetBookingID.UUID.String()
	}
	var responded any
	if req.RespondedAt.Valid {
		responded = req.RespondedAt.Time
	}
	benefits, _ := req.Benefits.Value()
	return sqlmock.NewRows(requestColumns).AddRow(
		req.ID.String(), req.OriginBookingID.String(), req.OriginRideID.String(),
		req.TargetRideID.String(), target, req.PassengerID, req.Status.String(),
		req.Priority, benefits, req.CreatedAt, req.Deadline, responded,
	)
}

func (f *fixture) bookingRows(b booking.Booking) *sqlmock.Rows {
	var notes any
	if b.Notes.Valid {
		notes = b.Notes.String
	}
	return sqlmock.NewRows(bookingColumns).AddRow(
		b.ID.String(), b.PassengerID, b.RideID.String(), b.Seats, b.TotalPrice,
		b.Status.String(), notes, b.CreatedAt,
	)
}

func (f *fixture) expectMet(t *testing.T) {
	t.Helper()
	if err := f.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
