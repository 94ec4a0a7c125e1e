package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/handler"
)

// RegisterRoutes registers infrastructure routes on the provided Echo
// instance. The health check lives outside /api so probes skip the
// middleware applied to the API group.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers or monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterReservations registers the reservation lifecycle endpoints
// under /api/reservations. Routes are unauthenticated; the reservation
// number acts as the shareable external handle. mw applies to the whole
// group, which is where rate limiting and response caching plug in.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api/reservations", mw...)
	// Create a reservation; responds 201 with the stored representation.
	g.POST("", r.Create)
	// List reservations with optional status/from/to filters and paging.
	g.GET("", r.List)
	// Lookup by internal numeric id.
	g.GET("/:id", r.GetByID)
	// Lookup by public reservation number (RSV-...). The static segment
	// keeps the route from colliding with /:id.
	g.GET("/number/:number", r.GetByNumber)
	// Cancel transitions the reservation to CANCELED; repeated calls
	// respond 409 once the reservation is finalized.
	g.PATCH("/:id/cancel", r.Cancel)
}
