package transfer

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/riddhik19/RideShare-sub001/booking"
)

func TestOpenCreatesPendingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cand := Candidate{
		TargetRideID: f.req.TargetRideID,
		Priority:     "high",
		Benefits:     []string{"higher rated driver", "departs 10 minutes earlier"},
	}

	f.mock.ExpectQuery(`SELECT \* FROM bookings WHERE id = \$1`).
		WithArgs(f.origin.ID).
		WillReturnRows(f.bookingRows(f.origin))
	f.mock.ExpectQuery(`INSERT INTO transfer_requests`).
		WithArgs(sqlmock.AnyArg(), f.origin.ID, f.origin.RideID, cand.TargetRideID,
			f.origin.PassengerID, cand.Priority, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(f.requestRows(f.req))

	req, err := f.mgr.Open(ctx, f.origin.ID, cand)
	if err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", req.Status)
	}
	if req.OriginRideID != f.origin.RideID {
		t.Fatalf("origin ride must come from the booking row, got %s", req.OriginRideID)
	}
	if !req.Deadline.After(req.CreatedAt) {
		t.Fatalf("deadline must fall after creation: %s vs %s", req.Deadline, req.CreatedAt)
	}
	f.expectMet(t)
}

func TestOpenRejectsUnconfirmedBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, status := range []booking.Status{booking.StatusPending, booking.StatusCancelled} {
		b := f.origin
		b.Status = status

		f.mock.ExpectQuery(`SELECT \* FROM bookings WHERE id = \$1`).
			WithArgs(f.origin.ID).
			WillReturnRows(f.bookingRows(b))

		_, err := f.mgr.Open(ctx, f.origin.ID, Candidate{TargetRideID: f.req.TargetRideID, Priority: "high"})
		if !errors.Is(err, ErrInvalidBooking) {
			t.Fatalf("expected ErrInvalidBooking for %s booking, got %v", status, err)
		}
	}
	f.expectMet(t)
}

func TestOpenConflictingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mock.ExpectQuery(`SELECT \* FROM bookings WHERE id = \$1`).
		WithArgs(f.origin.ID).
		WillReturnRows(f.bookingRows(f.origin))
	// The guarded insert matches nothing while another offer is pending.
	f.mock.ExpectQuery(`INSERT INTO transfer_requests`).
		WillReturnRows(sqlmock.NewRows(requestColumns))

	_, err := f.mgr.Open(ctx, f.origin.ID, Candidate{TargetRideID: f.req.TargetRideID, Priority: "high"})
	if !errors.Is(err, ErrConflictingRequest) {
		t.Fatalf("expected ErrConflictingRequest, got %v", err)
	}
	f.expectMet(t)
}

func TestLookupScopedToPassenger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mock.ExpectQuery(regexp.QuoteMeta(getRequestByIDQuery)).
		WithArgs(f.req.ID).
		WillReturnRows(f.requestRows(f.req))

	_, err := f.mgr.Lookup(ctx, f.req.ID, "auth0|somebody-else")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign request, got %v", err)
	}
	f.expectMet(t)
}

func TestLookupLazilyExpiresOverdueRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	overdue := f.req
	overdue.Deadline = time.Now().Add(-time.Minute)
	expired := overdue
	expired.Status = StatusExpired

	f.mock.ExpectQuery(regexp.QuoteMeta(getRequestByIDQuery)).
		WithArgs(f.req.ID).
		WillReturnRows(f.requestRows(overdue))
	f.mock.ExpectExec(regexp.QuoteMeta(expireRequestQuery)).
		WithArgs(f.req.ID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery(regexp.QuoteMeta(getRequestByIDQuery)).
		WithArgs(f.req.ID).
		WillReturnRows(f.requestRows(expired))

	req, err := f.mgr.Lookup(ctx, f.req.ID, f.req.PassengerID)
	if err != nil {
		t.Fatalf("expected lookup to succeed, got %v", err)
	}
	if req.Status != StatusExpired {
		t.Fatalf("expected expired status after lazy expiry, got %s", req.Status)
	}
	f.expectMet(t)
}
