package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riddhik19/RideShare-sub001/booking"
	"github.com/riddhik19/RideShare-sub001/internal/middleware"
	"github.com/riddhik19/RideShare-sub001/transfer"
)

type transferResponse struct {
	ID               uuid.UUID       `json:"id"`
	OriginBookingID  uuid.UUID       `json:"originBookingId"`
	OriginRideID     uuid.UUID       `json:"originRideId"`
	TargetRideID     uuid.UUID       `json:"targetRideId"`
	TargetBookingID  *uuid.UUID      `json:"targetBookingId,omitempty"`
	Status           transfer.Status `json:"status"`
	Priority         string          `json:"priority"`
	Benefits         []string        `json:"benefits"`
	CreatedAt        time.Time       `json:"createdAt"`
	Deadline         time.Time       `json:"deadline"`
	ExpiresInSeconds int             `json:"expiresInSeconds"`
	RespondedAt      *time.Time      `json:"respondedAt,omitempty"`
}

// The countdown is a pure read of deadline minus now; the watcher, not the
// client, enforces expiry.
func toTransferResponse(req transfer.Request) transferResponse {
	resp := transferResponse{
		ID:              req.ID,
		OriginBookingID: req.OriginBookingID,
		OriginRideID:    req.OriginRideID,
		TargetRideID:    req.TargetRideID,
		Status:          req.Status,
		Priority:        req.Priority,
		Benefits:        req.Benefits,
		CreatedAt:       req.CreatedAt,
		Deadline:        req.Deadline,
	}
	if req.Status == transfer.StatusPending {
		if remaining := time.Until(req.Deadline); remaining > 0 {
			resp.ExpiresInSeconds = int(remaining.Seconds())
		}
	}
	if req.TargetBookingID.Valid {
		id := req.TargetBookingID.UUID
		resp.TargetBookingID = &id
	}
	if req.RespondedAt.Valid {
		t := req.RespondedAt.Time
		resp.RespondedAt = &t
	}
	return resp
}

type openTransferRequest struct {
	BookingID string           `json:"bookingId" binding:"required"`
	Candidate candidatePayload `json:"candidate" binding:"required"`
}

type candidatePayload struct {
	TargetRideID string   `json:"targetRideId" binding:"required"`
	Priority     string   `json:"priority" binding:"required"`
	Benefits     []string `json:"benefits"`
}

func (a *API) openTransferHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req openTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid bookingId"})
		return
	}
	targetRideID, err := uuid.Parse(req.Candidate.TargetRideID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid targetRideId"})
		return
	}

	// Ownership check before anything else; someone else's booking looks
	// like a missing one.
	b, err := a.bkr.GetByID(c, bookingID)
	if err != nil && !errors.Is(err, booking.ErrNotFound) {
		logger.ErrorContext(c, "failed to get booking", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if err != nil || b.PassengerID != userID {
		c.JSON(http.StatusNotFound, gin.H{"code": "BOOKING_NOT_FOUND", "message": "Booking not found"})
		return
	}

	created, err := a.mgr.Open(c, bookingID, transfer.Candidate{
		TargetRideID: targetRideID,
		Priority:     req.Candidate.Priority,
		Benefits:     req.Candidate.Benefits,
	})
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrConflictingRequest):
			c.JSON(http.StatusConflict, gin.H{"code": "CONFLICTING_REQUEST", "message": "A pending transfer offer already exists for this booking"})
		case errors.Is(err, transfer.ErrInvalidBooking):
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BOOKING", "message": "Booking is not confirmed"})
		default:
			logger.ErrorContext(c, "failed to open transfer request", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, toTransferResponse(created))
}

func (a *API) getTransferHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid requestId"})
		return
	}

	req, err := a.mgr.Lookup(c, requestID, userID)
	if err != nil {
		if errors.Is(err, transfer.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "REQUEST_NOT_FOUND", "message": "Transfer request not found"})
			return
		}
		logger.ErrorContext(c, "failed to look up transfer request", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toTransferResponse(req))
}

type respondTransferRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept decline"`
}

type respondTransferResponse struct {
	RequestID    uuid.UUID       `json:"requestId"`
	Status       transfer.Status `json:"status"`
	OldBookingID uuid.UUID       `json:"oldBookingId"`
	NewBookingID *uuid.UUID      `json:"newBookingId,omitempty"`
}

func (a *API) respondTransferHandler(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": "Invalid requestId"})
		return
	}

	var req respondTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	decision := transfer.Decline
	if req.Decision == "accept" {
		decision = transfer.Accept
	}

	result, err := a.proc.Respond(c, requestID, userID, decision)
	if err != nil {
		a.respondError(c, err)
		return
	}

	resp := respondTransferResponse{
		RequestID:    result.Request.ID,
		Status:       result.Request.Status,
		OldBookingID: result.OldBookingID,
	}
	if result.NewBookingID.Valid {
		id := result.NewBookingID.UUID
		resp.NewBookingID = &id
	}
	c.JSON(http.StatusOK, resp)
}

func (a *API) respondError(c *gin.Context, err error) {
	logger := middleware.GetLogger(c)

	if status, ok := transfer.ResolvedStatus(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "ALREADY_RESOLVED",
			"message": "This offer is no longer open",
			"status":  status.String(),
		})
		return
	}

	var perr *transfer.PersistenceError
	switch {
	case errors.Is(err, transfer.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "REQUEST_NOT_FOUND", "message": "Transfer request not found"})
	case errors.Is(err, transfer.ErrStaleBooking):
		c.JSON(http.StatusConflict, gin.H{"code": "STALE_BOOKING", "message": "Your original booking is no longer confirmed"})
	case errors.Is(err, transfer.ErrTargetRideFull):
		c.JSON(http.StatusConflict, gin.H{"code": "TARGET_RIDE_FULL", "message": "The target ride no longer has enough seats"})
	case errors.As(err, &perr):
		logger.ErrorContext(c, "transfer saga failed", "step", perr.Step, "error", perr.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "PERSISTENCE_ERROR", "message": "Transfer could not be completed"})
	default:
		logger.ErrorContext(c, "failed to respond to transfer request", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
