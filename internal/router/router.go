// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/baltgc/gomotel/internal/config"
	"github.com/baltgc/gomotel/internal/handler"
	"github.com/baltgc/gomotel/internal/middleware"
	"github.com/baltgc/gomotel/internal/model"
)

// Handlers bundles every handler the router needs.
type Handlers struct {
	Auth         *handler.AuthHandler
	Motels       *handler.MotelHandler
	Rooms        *handler.RoomHandler
	Reservations *handler.ReservationHandler
	Payments     *handler.PaymentHandler
	Webhooks     *handler.WebhookHandler
}

// Register mounts all routes on e. Redis is optional; with a nil client
// the rate limiter and response cache pass requests straight through.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rl := middleware.RateLimit(cfg.RateLimit, rdb)
	cache := middleware.CacheResponses(cfg.Cache, rdb)

	// Gateway notifications are unauthenticated; the service re-fetches
	// every payment from the gateway before trusting it.
	e.POST("/v1/webhooks/mercadopago", h.Webhooks.MercadoPago)

	// Unauthenticated auth endpoints.
	authGroup := e.Group("/v1/auth", rl)
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)

	// Public browse endpoints.
	e.GET("/v1/motels", h.Motels.List, rl, cache)
	e.GET("/v1/motels/:id", h.Motels.Get, rl, cache)
	e.GET("/v1/motels/:id/rooms", h.Rooms.List, rl, cache)
	e.GET("/v1/motels/:id/rooms/available", h.Rooms.Available, rl, cache)
	e.GET("/v1/rooms/:id", h.Rooms.Get, rl, cache)

	// Everything below requires a valid access token.
	auth := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), rl)
	auth.GET("/me", h.Auth.Me)
	auth.POST("/logout", h.Auth.Logout)

	staff := middleware.RequireRole(model.RoleOwner, model.RoleAdmin)

	// Motel and room management, restricted to owners and admins. The
	// handlers additionally check the motel belongs to the caller.
	auth.POST("/motels", h.Motels.Create, staff)
	auth.GET("/motels/mine", h.Motels.ListMine, staff)
	auth.PUT("/motels/:id", h.Motels.Update, staff)
	auth.POST("/motels/:id/deactivate", h.Motels.Deactivate, staff)
	auth.DELETE("/motels/:id", h.Motels.Delete, staff)
	auth.POST("/motels/:id/rooms", h.Rooms.Create, staff)
	auth.PUT("/motels/:id/rooms/:roomID", h.Rooms.Update, staff)
	auth.POST("/motels/:id/rooms/:roomID/availability", h.Rooms.SetAvailability, staff)
	auth.DELETE("/motels/:id/rooms/:roomID", h.Rooms.Delete, staff)
	auth.GET("/motels/:id/reservations", h.Reservations.ListByMotel, staff)

	// Booking lifecycle.
	auth.POST("/reservations", h.Reservations.Create, middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))
	auth.GET("/reservations/mine", h.Reservations.ListMine)
	auth.GET("/reservations/:id", h.Reservations.Get)
	auth.POST("/reservations/:id/cancel", h.Reservations.Cancel)
	auth.POST("/reservations/:id/confirm", h.Reservations.Confirm, staff)
	auth.POST("/reservations/:id/check-in", h.Reservations.CheckIn, staff)
	auth.POST("/reservations/:id/check-out", h.Reservations.CheckOut, staff)

	// Payments.
	auth.POST("/reservations/:id/payments", h.Payments.Create)
	auth.GET("/reservations/:id/payment", h.Payments.GetByReservation)
	auth.GET("/payments/mine", h.Payments.ListMine)
	auth.GET("/payments/:id", h.Payments.Get)
	auth.POST("/payments/:id/process", h.Payments.Process)
	auth.POST("/payments/:id/refund", h.Payments.Refund, staff)
}
