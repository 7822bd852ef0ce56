package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/riddhik19/RideShare-sub001/booking"
	"github.com/riddhik19/RideShare-sub001/internal/notify"
	"github.com/riddhik19/RideShare-sub001/ride"
)

type Decision int

const (
	Decline Decision = iota
	Accept
)

var (
	ErrStaleBooking   = errors.New("originating booking is no longer confirmed")
	ErrTargetRideFull = errors.New("target ride no longer has enough seats")
)

// AlreadyResolvedError reports that a request cannot be answered, carrying
// the status the caller raced against so the UI can say which outcome won.
// Status may still be pending when another response is in flight.
type AlreadyResolvedError struct {
	Status Status
}

func (e *AlreadyResolvedError) Error() string {
	return "transfer request already resolved: " + e.Status.String()
}

// ResolvedStatus unpacks the racing status from an AlreadyResolvedError.
func ResolvedStatus(err error) (Status, bool) {
	var are *AlreadyResolvedError
	if errors.As(err, &are) {
		return are.Status, true
	}
	return StatusPending, false
}

// PersistenceError reports a storage failure mid-saga, naming the step that
// failed after compensations were attempted.
type PersistenceError struct {
	Step string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("transfer saga failed at %s: %v", e.Step, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Result reports a completed response. NewBookingID is set only when the
// transfer was accepted.
type Result struct {
	Request      Request
	NewBookingID uuid.NullUUID
	OldBookingID uuid.UUID
}

// Processor applies a passenger's decision to a pending request. On accept
// it runs the re-booking saga: each step is a single atomic write against
// its own store, with ordered compensations instead of a transaction.
type Processor struct {
	requests *Repository
	bookings *booking.Repository
	rides    *ride.Repository
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewProcessor(requests *Repository, bookings *booking.Repository, rides *ride.Repository, notifier notify.Notifier, logger *slog.Logger) *Processor {
	return &Processor{
		requests: requests,
		bookings: bookings,
		rides:    rides,
		notifier: notifier,
		logger:   logger,
	}
}

func (p *Processor) Respond(ctx context.Context, requestID uuid.UUID, passengerID string, d Decision) (Result, error) {
	req, err := p.requests.GetByID(ctx, requestID)
	if err != nil {
		return Result{}, err
	}
	if req.PassengerID != passengerID {
		return Result{}, ErrNotFound
	}

	if req.Status.Terminal() {
		return Result{}, &AlreadyResolvedError{Status: req.Status}
	}

	now := time.Now()
	if !req.Deadline.After(now) {
		// Same effect as the watcher firing: the offer lapses, the
		// passenger keeps their original seat.
		err := p.requests.Expire(ctx, req.ID, now)
		if err != nil && !errors.Is(err, ErrNotPending) {
			return Result{}, err
		}
		return p.alreadyResolved(ctx, requestID)
	}

	// Claim the request before touching anything else. Exactly one of any
	// set of concurrent responders wins the stamp, and the expiry sweep
	// skips claimed rows for the duration of the saga.
	if err := p.requests.Claim(ctx, req.ID, now); err != nil {
		if errors.Is(err, ErrNotPending) {
			return p.alreadyResolved(ctx, requestID)
		}
		return Result{}, err
	}
	req.RespondedAt.Time, req.RespondedAt.Valid = now, true

	if d == Decline {
		return p.decline(ctx, req)
	}
	return p.accept(ctx, req)
}

func (p *Processor) alreadyResolved(ctx context.Context, requestID uuid.UUID) (Result, error) {
	cur, err := p.requests.GetByID(ctx, requestID)
	if err != nil {
		return Result{}, err
	}
	return Result{}, &AlreadyResolvedError{Status: cur.Status}
}

func (p *Processor) decline(ctx context.Context, req Request) (Result, error) {
	if err := p.requests.Resolve(ctx, req.ID, StatusDeclined, uuid.NullUUID{}); err != nil {
		if errors.Is(err, ErrNotPending) {
			return p.alreadyResolved(ctx, req.ID)
		}
		return Result{}, err
	}
	req.Status = StatusDeclined
	resolvedTotal.WithLabelValues("declined").Inc()

	p.publish(ctx, p.notifier.TransferDeclined, req, nil)

	return Result{Request: req, OldBookingID: req.OriginBookingID}, nil
}

// accept runs the re-booking saga:
//
//	(a) re-read the originating booking
//	(b) reserve seats on the target ride
//	(c) create the replacement booking, confirmed
//	(d) release seats on the originating ride
//	(e) cancel the originating booking
//	(f) mark the request accepted
//
// Failures through (d) are fully compensated and leave the request pending
// and answerable again. Failures at (e) or (f) happen after the seat move
// and are left for manual reconciliation; the seats are never re-opened,
// because a third party may already have taken them.
func (p *Processor) accept(ctx context.Context, req Request) (Result, error) {
	logger := p.logger.With(
		slog.String("request_id", req.ID.String()),
		slog.String("origin_booking_id", req.OriginBookingID.String()),
	)

	// (a) Nothing has been mutated yet, so an unconfirmed origin just
	// aborts. The request stays open for a retry or natural expiry.
	orig, err := p.bookings.GetByID(ctx, req.OriginBookingID)
	if err != nil && !errors.Is(err, booking.ErrNotFound) {
		p.unclaim(ctx, logger, req.ID)
		return Result{}, p.sagaFailure("read_origin", err)
	}
	if err != nil || orig.Status != booking.StatusConfirmed {
		p.unclaim(ctx, logger, req.ID)
		sagaFailuresTotal.WithLabelValues("read_origin").Inc()
		return Result{}, ErrStaleBooking
	}

	// (b)
	if err := p.rides.Reserve(ctx, req.TargetRideID, orig.Seats); err != nil {
		p.unclaim(ctx, logger, req.ID)
		if errors.Is(err, ride.ErrNotEnoughSeats) {
			sagaFailuresTotal.WithLabelValues("reserve_target").Inc()
			return Result{}, ErrTargetRideFull
		}
		return Result{}, p.sagaFailure("reserve_target", err)
	}

	// (c)
	replacement := &booking.Booking{
		ID:          uuid.New(),
		PassengerID: orig.PassengerID,
		RideID:      req.TargetRideID,
		Seats:       orig.Seats,
		TotalPrice:  orig.TotalPrice,
		Status:      booking.StatusConfirmed,
		Notes:       orig.Notes,
	}
	if err := p.bookings.Create(ctx, replacement); err != nil {
		if p.compensate(ctx, logger, "release_target_seats", func() error {
			return p.rides.Release(ctx, req.TargetRideID, orig.Seats)
		}) {
			p.unclaim(ctx, logger, req.ID)
		}
		return Result{}, p.sagaFailure("create_replacement", err)
	}

	// (d) Failing the whole transfer loudly beats leaving two confirmed
	// bookings for the same physical seats.
	if err := p.rides.Release(ctx, req.OriginRideID, orig.Seats); err != nil {
		ok := p.compensate(ctx, logger, "cancel_replacement", func() error {
			return p.bookings.TransitionStatus(ctx, replacement.ID, booking.StatusConfirmed, booking.StatusCancelled)
		})
		ok = p.compensate(ctx, logger, "release_target_seats", func() error {
			return p.rides.Release(ctx, req.TargetRideID, orig.Seats)
		}) && ok
		if ok {
			p.unclaim(ctx, logger, req.ID)
		}
		return Result{}, p.sagaFailure("release_origin", err)
	}

	// (e) The seat move is committed. An uncancelled origin booking is a
	// reconciliation item, not a rollback: re-opening the origin seats here
	// could double-allocate them.
	if err := p.bookings.TransitionStatus(ctx, orig.ID, booking.StatusConfirmed, booking.StatusCancelled); err != nil {
		reconciliationTotal.Inc()
		logger.ErrorContext(ctx, "reconciliation_required: origin booking left uncancelled after seat move",
			"error", err, "replacement_booking_id", replacement.ID)
		return Result{}, p.sagaFailure("cancel_origin", err)
	}

	// (f)
	targetBookingID := uuid.NullUUID{UUID: replacement.ID, Valid: true}
	if err := p.requests.Resolve(ctx, req.ID, StatusAccepted, targetBookingID); err != nil {
		reconciliationTotal.Inc()
		logger.ErrorContext(ctx, "reconciliation_required: transfer applied but request not marked accepted",
			"error", err, "replacement_booking_id", replacement.ID)
		return Result{}, p.sagaFailure("resolve_request", err)
	}

	req.Status = StatusAccepted
	req.TargetBookingID = targetBookingID
	resolvedTotal.WithLabelValues("accepted").Inc()

	p.publish(ctx, p.notifier.TransferAccepted, req, &replacement.ID)

	return Result{
		Request:      req,
		NewBookingID: targetBookingID,
		OldBookingID: orig.ID,
	}, nil
}

func (p *Processor) sagaFailure(step string, err error) error {
	sagaFailuresTotal.WithLabelValues(step).Inc()
	return &PersistenceError{Step: step, Err: err}
}

// compensate runs an undo action, logging instead of propagating a failure:
// once a compensation fails there is no further fallback, only the
// reconciliation log.
func (p *Processor) compensate(ctx context.Context, logger *slog.Logger, step string, fn func() error) bool {
	if err := fn(); err != nil {
		reconciliationTotal.Inc()
		logger.ErrorContext(ctx, "reconciliation_required: compensation failed", "step", step, "error", err)
		return false
	}
	return true
}

// unclaim makes an aborted request answerable again.
func (p *Processor) unclaim(ctx context.Context, logger *slog.Logger, id uuid.UUID) {
	if err := p.requests.Unclaim(ctx, id); err != nil && !errors.Is(err, ErrNotPending) {
		logger.ErrorContext(ctx, "failed to release claim on transfer request", "error", err)
	}
}

func (p *Processor) publish(ctx context.Context, fn func(context.Context, notify.Event) error, req Request, targetBookingID *uuid.UUID) {
	e := notify.Event{
		RequestID:       req.ID,
		PassengerID:     req.PassengerID,
		OriginBookingID: req.OriginBookingID,
		OriginRideID:    req.OriginRideID,
		TargetRideID:    req.TargetRideID,
		TargetBookingID: targetBookingID,
	}
	if err := fn(context.WithoutCancel(ctx), e); err != nil {
		p.logger.WarnContext(ctx, "failed to publish transfer event",
			"request_id", req.ID, "error", err)
	}
}
