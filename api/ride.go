package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riddhik19/RideShare-sub001/internal/middleware"
	"github.com/riddhik19/RideShare-sub001/ride"
)

type rideResponse struct {
	ID             uuid.UUID `json:"id"`
	DriverID       string    `json:"driverId"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	Retired        bool      `json:"retired"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toRideResponse(r ride.Ride) rideResponse {
	return rideResponse{
		ID:             r.ID,
		DriverID:       r.DriverID,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		Retired:        r.Retired,
		CreatedAt:      r.CreatedAt,
	}
}

type createRideRequest struct {
	TotalSeats int `json:"totalSeats" binding:"required,min=1"`
}

func (a *API) createRideHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return
	}

	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	r, err := a.rr.Create(c, userID, req.TotalSeats)
	if err != nil {
		logger.ErrorContext(c, "failed to create ride", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, toRideResponse(r))
}

func (a *API) getRideHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	rideID, err := uuid.Parse(c.Param("rideId"))
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

	c.JSON(http.StatusOK, toRideResponse(r))
}
