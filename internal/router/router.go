// Package router wires HTTP routes to their handlers.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-booking-engine/internal/handler"
	"github.com/iliyamo/hotel-booking-engine/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the guest-facing shop flow: availability
// search, quoting and booking creation. These are unauthenticated because
// guests book without accounts; abuse control is expected at the edge.
//
// Availability is the hottest read path, so it carries a short Redis TTL
// cache. Pass a nil client to disable caching.
func RegisterPublic(e *echo.Echo, av *handler.AvailabilityHandler, q *handler.QuoteHandler, b *handler.BookingHandler, rdb *redis.Client, cacheTTL time.Duration) {
	e.GET("/v1/properties/:id/availability", av.Query, middleware.AvailabilityCache(rdb, cacheTTL))

	e.POST("/v1/properties/:id/quotes", q.Create)
	e.GET("/v1/quotes/:token", q.Get)

	e.POST("/v1/properties/:id/bookings", b.Create)
}

// RegisterStaff registers the authenticated booking lifecycle and rate
// management. Reading and cancelling a booking needs any valid staff
// token; relocation, manual finalization and rate grid writes are
// restricted to ADMIN and MANAGER.
func RegisterStaff(e *echo.Echo, b *handler.BookingHandler, r *handler.RateHandler, bl *handler.BlockHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	auth.GET("/bookings/:id", b.Get)
	auth.POST("/bookings/:id/cancel", b.Cancel)

	admin := auth.Group("")
	admin.Use(middleware.RequireRole("ADMIN", "MANAGER"))
	admin.POST("/bookings/:id/move", b.Move)
	admin.POST("/bookings/:id/finalize", b.Finalize)
	admin.PUT("/rates/bulk", r.BulkUpdate)
	admin.POST("/rooms/:id/blocks", bl.Create)
}

// RegisterWebhooks registers inbound callbacks from external systems.
// The payment webhook authenticates by shared knowledge of booking and
// payment reference; providers do not send our bearer tokens.
func RegisterWebhooks(e *echo.Echo, w *handler.PaymentWebhookHandler) {
	e.POST("/v1/payments/webhook", w.Receive)
}
