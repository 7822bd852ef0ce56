package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/riddhik19/RideShare-sub001/booking"
)

// OfferWindow is how long a passenger has to answer a transfer offer. Short
// enough that the target ride's seats are unlikely to be claimed by someone
// else first, long enough to read the benefits and decide.
const OfferWindow = 2 * time.Minute

var ErrInvalidBooking = errors.New("originating booking is not confirmed")

// Manager owns the TransferRequest lifecycle: it opens offers against
// confirmed bookings and looks them up for display.
type Manager struct {
	requests *Repository
	bookings *booking.Repository
	window   time.Duration
}

func NewManager(requests *Repository, bookings *booking.Repository) *Manager {
	return &Manager{
		requests: requests,
		bookings: bookings,
		window:   OfferWindow,
	}
}

// Open records a pending offer to move originBookingID onto the candidate's
// ride. The origin ride id is always taken from the booking row, never from
// the caller.
func (m *Manager) Open(ctx context.Context, originBookingID uuid.UUID, cand Candidate) (Request, error) {
	orig, err := m.bookings.GetByID(ctx, originBookingID)
	if errors.Is(err, booking.ErrNotFound) {
		return Request{}, ErrInvalidBooking
	}
	if err != nil {
		return Request{}, err
	}
	if orig.Status != booking.StatusConfirmed {
		return Request{}, ErrInvalidBooking
	}

	now := time.Now()
	req := Request{
		ID:              uuid.New(),
		OriginBookingID: orig.ID,
		OriginRideID:    orig.RideID,
		TargetRideID:    cand.TargetRideID,
		PassengerID:     orig.PassengerID,
		Status:          StatusPending,
		Priority:        cand.Priority,
		Benefits:        Benefits(cand.Benefits),
		Deadline:        now.Add(m.window),
	}
	if err := m.requests.Create(ctx, &req); err != nil {
		return Request{}, err
	}
	openedTotal.Inc()
	return req, nil
}

// Lookup fetches a request scoped to its passenger. A request belonging to
// someone else is indistinguishable from a missing one. An unanswered
// request past its deadline is expired before being returned, so a client
// never sees a live offer that the watcher simply has not swept yet.
func (m *Manager) Lookup(ctx context.Context, requestID uuid.UUID, passengerID string) (Request, error) {
	req, err := m.requests.GetByID(ctx, requestID)
	if err != nil {
		return Request{}, err
	}
	if req.PassengerID != passengerID {
		return Request{}, ErrNotFound
	}

	if req.Status == StatusPending && !req.RespondedAt.Valid && !req.Deadline.After(time.Now()) {
		err := m.requests.Expire(ctx, req.ID, time.Now())
		if err != nil && !errors.Is(err, ErrNotPending) {
			return Request{}, err
		}
		return m.requests.GetByID(ctx, requestID)
	}
	return req, nil
}
