package acceptance

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

type bookingPayload struct {
	ID     uuid.UUID `json:"id"`
	RideID uuid.UUID `json:"rideId"`
	Seats  int       `json:"seats"`
	Status string    `json:"status"`
}

func TestBookingLifecycleAdjustsCapacity(t *testing.T) {
	ts := NewTestServer(t)
	rideID := ts.CreateTestRide(t, "driver-1", 4, 4)

	// Creating a booking holds no seats yet.
	w := ts.POST("/bookings", map[string]any{
		"rideId":     rideID,
		"seats":      2,
		"totalPrice": 1200,
	}, asUser(passenger))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected booking to be created, got %d: %s", w.Code, w.Body.String())
	}
	var b bookingPayload
	decode(t, w, &b)
	if b.Status != "pending" {
		t.Fatalf("expected pending booking, got %s", b.Status)
	}
	if got := ts.AvailableSeats(t, rideID); got != 4 {
		t.Fatalf("pending booking must not hold seats, got %d available", got)
	}

	// Confirming reserves the seats.
	w = ts.POST("/bookings/"+b.ID.String()+"/confirm", nil, asUser(passenger))
	if w.Code != http.StatusOK {
		t.Fatalf("expected confirm to succeed, got %d: %s", w.Code, w.Body.String())
	}
	if got := ts.AvailableSeats(t, rideID); got != 2 {
		t.Fatalf("confirm should hold 2 seats, got %d available", got)
	}
	ts.AssertCapacityConserved(t, rideID)

	// Cancelling releases them again.
	w = ts.POST("/bookings/"+b.ID.String()+"/cancel", nil, asUser(passenger))
	if w.Code != http.StatusOK {
		t.Fatalf("expected cancel to succeed, got %d: %s", w.Code, w.Body.String())
	}
	if got := ts.AvailableSeats(t, rideID); got != 4 {
		t.Fatalf("cancel should release the seats, got %d available", got)
	}
	ts.AssertCapacityConserved(t, rideID)
}

func TestConfirmFailsWhenRideFull(t *testing.T) {
	ts := NewTestServer(t)
	rideID := ts.CreateTestRide(t, "driver-1", 4, 1)

	w := ts.POST("/bookings", map[string]any{
		"rideId": rideID,
		"seats":  2,
	}, asUser(passenger))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected booking to be created, got %d: %s", w.Code, w.Body.String())
	}
	var b bookingPayload
	decode(t, w, &b)

	w = ts.POST("/bookings/"+b.ID.String()+"/confirm", nil, asUser(passenger))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 when ride is full, got %d: %s", w.Code, w.Body.String())
	}
	if got := ts.AvailableSeats(t, rideID); got != 1 {
		t.Fatalf("failed confirm must not hold seats, got %d available", got)
	}
	if got := ts.BookingStatus(t, b.ID); got != "pending" {
		t.Fatalf("failed confirm must leave booking pending, got %s", got)
	}
}

func TestBookingSeatCountBoundedByRideCapacity(t *testing.T) {
	ts := NewTestServer(t)
	rideID := ts.CreateTestRide(t, "driver-1", 4, 4)

	w := ts.POST("/bookings", map[string]any{
		"rideId": rideID,
		"seats":  5,
	}, asUser(passenger))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversize booking, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBookingsAreScopedToPassenger(t *testing.T) {
	ts := NewTestServer(t)
	rideID := ts.CreateTestRide(t, "driver-1", 4, 4)
	bookingID := ts.CreateTestBooking(t, passenger, rideID, 2, 1200, "confirmed")

	w := ts.POST("/bookings/"+bookingID.String()+"/cancel", nil, asUser("auth0|somebody-else"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign booking, got %d", w.Code)
	}
	if got := ts.BookingStatus(t, bookingID); got != "confirmed" {
		t.Fatalf("foreign cancel must not change status, got %s", got)
	}
}
