// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/parkwell/parking-backend/internal/config"
	"github.com/parkwell/parking-backend/internal/handler"
	"github.com/parkwell/parking-backend/internal/middleware"
	"github.com/parkwell/parking-backend/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg     config.Config
	Redis   *redis.Client
	Auth    *handler.AuthHandler
	Booking *handler.BookingHandler
	Admin   *handler.AdminHandler
}

// Register sets up the full route table.
//
// The booking lifecycle endpoints are token free and sit behind the
// Redis rate limiter. Admin management endpoints require a JWT with the
// Admin role. The lot list and profit report additionally go through
// the response cache so repeated dashboard refreshes skip the heavier
// queries.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Auth endpoints, open.
	e.POST("/register", d.Auth.Register)
	e.POST("/user-login-api", d.Auth.UserLogin)
	e.POST("/login", d.Auth.AdminLogin)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	api := e.Group("/api")

	// Booking lifecycle and per-user reports.
	api.POST("/book-spot", d.Booking.BookSpot, limiter)
	api.POST("/release-spot/:booking_id", d.Booking.ReleaseSpot, limiter)
	api.GET("/my-bookings/:user_id", d.Booking.MyBookings, limiter)
	api.GET("/user-summary/:user_id", d.Booking.UserSummary, limiter)
	api.GET("/summary/profit-by-lot", d.Admin.ProfitSummary, limiter, cache)

	// Lot list is open: the customer dashboard reads it to find a free
	// spot. Responses go through the cache like the profit report.
	api.GET("/lots", d.Admin.ListLots, limiter, cache)

	// Profile lookup, authenticated (self or admin).
	api.GET("/user-details/:user_id", d.Auth.UserDetails, middleware.JWTAuth(d.Cfg.JWTSecret))

	// Admin management.
	admin := api.Group("", middleware.JWTAuth(d.Cfg.JWTSecret), middleware.RequireRole(model.RoleAdmin))
	admin.POST("/lots", d.Admin.CreateLot)
	admin.PUT("/lots/:lot_id", d.Admin.UpdateLot)
	admin.DELETE("/lots/:lot_id", d.Admin.DeleteLot)
	admin.DELETE("/spots/:spot_id", d.Admin.DeleteSpot)
	admin.DELETE("/users/:user_id", d.Admin.DeleteUser)
}
