package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riddhik19/RideShare-sub001/booking"
	"github.com/riddhik19/RideShare-sub001/internal/middleware"
	"github.com/riddhik19/RideShare-sub001/internal/o11y"
	"github.com/riddhik19/RideShare-sub001/ride"
	"github.com/riddhik19/RideShare-sub001/transfer"
)

type API struct {
	r    *gin.Engine
	rr   *ride.Repository
	bkr  *booking.Repository
	mgr  *transfer.Manager
	proc *transfer.Processor
}

func New(rr *ride.Repository, bkr *booking.Repository, mgr *transfer.Manager, proc *transfer.Processor,
	obs *o11y.Observability, auth gin.HandlerFunc, metricsUsername, metricsPassword string) *API {
	a := &API{
		r:    gin.New(),
		rr:   rr,
		bkr:  bkr,
		mgr:  mgr,
		proc: proc,
	}

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Logging(obs.Logger))
	a.r.Use(middleware.Metrics(obs.Registry))

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	metrics := a.r.Group("/metrics", gin.BasicAuth(gin.Accounts{metricsUsername: metricsPassword}))
	metrics.GET("", gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})))

	protected := a.r.Group("/")
	protected.Use(auth)
	{
		protected.POST("/rides", a.createRideHandler)
		protected.GET("/rides/:rideId", a.getRideHandler)

		protected.POST("/bookings", a.createBookingHandler)
		protected.GET("/bookings", a.getBookingsHandler)
		protected.POST("/bookings/:bookingId/confirm", a.confirmBookingHandler)
		protected.POST("/bookings/:bookingId/cancel", a.cancelBookingHandler)

		protected.POST("/transfers", a.openTransferHandler)
		protected.GET("/transfers/:requestId", a.getTransferHandler)
		protected.POST("/transfers/:requestId/respond", a.respondTransferHandler)
	}

	return a
}

func (a *API) Router() *gin.Engine {
	return a.r
}
