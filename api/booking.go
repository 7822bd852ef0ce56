package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riddhik19/RideShare-sub001/booking"
	"github.com/riddhik19/RideShare-sub001/internal/middleware"
	"github.com/riddhik19/RideShare-sub001/ride"
)

type bookingResponse struct {
	ID          uuid.UUID      `json:"id"`
	PassengerID string         `json:"passengerId"`
	RideID      uuid.UUID      `json:"rideId"`
	Seats       int            `json:"seats"`
	TotalPrice  int            `json:"totalPrice"`
	Status      booking.Status `json:"status"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func toBookingResponse(b booking.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		PassengerID: b.PassengerID,
		RideID:      b.RideID,
		Seats:       b.Seats,
		TotalPrice:  b.TotalPrice,
		Status:      b.Status,
		Notes:       b.Notes.String,
		CreatedAt:   b.CreatedAt,
	}
}

type createBookingRequest struct {
	RideID     string `json:"rideId" binding:"required"`
	Seats      int    `json:"seats" binding:"required,min=1"`
	TotalPrice int    `json:"totalPrice" binding:"min=0"`
	Notes      string `json:"notes"`
}

func (a *API) createBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	rideID, err := uuid.Parse(req.RideID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid rideId"})
		return
	}

	r, err := a.rr.GetByID(c, rideID)
	if err != nil {
		if errors.Is(err, ride.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "RIDE_NOT_FOUND", "message": "Ride not found"})
			return
		}
		logger.ErrorContext(c, "failed to get ride", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if req.Seats > r.TotalSeats {
		c.JSON(http.StatusBadRequest, gin.H{"code": "TOO_MANY_SEATS", "message": "Requested seats exceed ride capacity"})
		return
	}

	b := &booking.Booking{
		ID:          uuid.New(),
		PassengerID: userID,
		RideID:      r.ID,
		Seats:       req.Seats,
		TotalPrice:  req.TotalPrice,
		Status:      booking.StatusPending,
		Notes:       sql.NullString{String: req.Notes, Valid: req.Notes != ""},
	}
	if err := a.bkr.Create(c, b); err != nil {
		logger.ErrorContext(c, "failed to create booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(*b))
}

func (a *API) getBookingsHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var statusPtr *booking.Status
	if statusStr := c.Query("status"); statusStr != "" {
		var status booking.Status
		switch statusStr {
		case "pending":
			status = booking.StatusPending
		case "confirmed":
			status = booking.StatusConfirmed
		case "cancelled":
			status = booking.StatusCancelled
		default:
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid status filter"})
			return
		}
		statusPtr = &status
	}

	bookings, err := a.bkr.GetByPassenger(c, userID, statusPtr)
	if err != nil {
		logger.ErrorContext(c, "failed to get bookings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, toBookingResponse(b))
	}

	c.JSON(http.StatusOK, responses)
}

// confirmBookingHandler takes the booking from pending to confirmed. Seats
// are reserved on the ride first; a booking only counts against capacity
// once confirmed.
func (a *API) confirmBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	b, ok := a.ownBooking(c)
	if !ok {
		return
	}

	if b.Status != booking.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"code": "NOT_PENDING", "message": "Booking is not pending"})
		return
	}

	if err := a.rr.Reserve(c, b.RideID, b.Seats); err != nil {
		if errors.Is(err, ride.ErrNotEnoughSeats) {
			c.JSON(http.StatusConflict, gin.H{"code": "RIDE_FULL", "message": "Not enough seats left on ride"})
			return
		}
		logger.ErrorContext(c, "failed to reserve seats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := a.bkr.TransitionStatus(c, b.ID, booking.StatusPending, booking.StatusConfirmed); err != nil {
		// Hand the seats back; the booking changed underneath us.
		if rerr := a.rr.Release(c, b.RideID, b.Seats); rerr != nil {
			logger.ErrorContext(c, "reconciliation_required: failed to release seats after confirm conflict", "error", rerr)
		}
		if errors.Is(err, booking.ErrStatusConflict) {
			c.JSON(http.StatusConflict, gin.H{"code": "NOT_PENDING", "message": "Booking is not pending"})
			return
		}
		logger.ErrorContext(c, "failed to confirm booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	b.Status = booking.StatusConfirmed
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (a *API) cancelBookingHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	b, ok := a.ownBooking(c)
	if !ok {
		return
	}

	switch b.Status {
	case booking.StatusPending:
		if err := a.bkr.TransitionStatus(c, b.ID, booking.StatusPending, booking.StatusCancelled); err != nil {
			a.cancelTransitionError(c, err)
			return
		}
	case booking.StatusConfirmed:
		if err := a.bkr.TransitionStatus(c, b.ID, booking.StatusConfirmed, booking.StatusCancelled); err != nil {
			a.cancelTransitionError(c, err)
			return
		}
		if err := a.rr.Release(c, b.RideID, b.Seats); err != nil {
			logger.ErrorContext(c, "reconciliation_required: failed to release seats after cancel", "error", err)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"code": "CANNOT_CANCEL", "message": "Booking is already cancelled"})
		return
	}

	b.Status = booking.StatusCancelled
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (a *API) cancelTransitionError(c *gin.Context, err error) {
	if errors.Is(err, booking.ErrStatusConflict) {
		c.JSON(http.StatusConflict, gin.H{"code": "STATUS_CONFLICT", "message": "Booking status changed, retry"})
		return
	}
	middleware.GetLogger(c).ErrorContext(c, "failed to cancel booking", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// ownBooking loads the booking from the path and verifies it belongs to the
// caller. A booking owned by someone else is reported as not found.
func (a *API) ownBooking(c *gin.Context) (booking.Booking, bool) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return booking.Booking{}, false
	}

	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid bookingId"})
		return booking.Booking{}, false
	}

	b, err := a.bkr.GetByID(c, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "BOOKING_NOT_FOUND", "message": "Booking not found"})
			return booking.Booking{}, false
		}
		logger.ErrorContext(c, "failed to get booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return booking.Booking{}, false
	}
	if b.PassengerID != userID {
		c.JSON(http.StatusNotFound, gin.H{"code": "BOOKING_NOT_FOUND", "message": "Booking not found"})
		return booking.Booking{}, false
	}

	return b, true
}
