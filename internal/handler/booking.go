package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parkwell/parking-backend/internal/model"
	"github.com/parkwell/parking-backend/internal/repository"
	"github.com/parkwell/parking-backend/internal/service"
)

// BookingLister serves the per-user booking history.
type BookingLister interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
}

// BillingLister serves the per-user billing history.
type BillingLister interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.BillingDetail, error)
}

// BookingHandler exposes the booking lifecycle and per-user reporting
// endpoints backed by the booking engine.
type BookingHandler struct {
	Engine   *service.BookingEngine
	Users    service.UserStore
	Bookings BookingLister
	Billings BillingLister
}

func NewBookingHandler(engine *service.BookingEngine, users service.UserStore, bookings BookingLister, billings BillingLister) *BookingHandler {
	return &BookingHandler{Engine: engine, Users: users, Bookings: bookings, Billings: billings}
}

type releaseResp struct {
	BookingID     uint64  `json:"booking_id"`
	Status        string  `json:"status"`
	FinalCost     float64 `json:"final_cost"`
	DurationHours int     `json:"duration_hours"`
}

// BookSpot handles POST /api/book-spot. It reserves a free spot for a
// vehicle and opens the billing record in one transaction.
func (h *BookingHandler) BookSpot(c echo.Context) error {
	var in service.CreateBookingInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	receipt, err := h.Engine.CreateBooking(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrSpotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "spot not found"})
		case errors.Is(err, repository.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, repository.ErrSpotOccupied):
			return c.JSON(http.StatusConflict, echo.Map{"error": "spot already occupied"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
	return c.JSON(http.StatusCreated, receipt)
}

// ReleaseSpot handles POST /api/release-spot/:booking_id. It completes
// the booking, computes the final cost and frees the spot.
func (h *BookingHandler) ReleaseSpot(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("booking_id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Engine.ReleaseBooking(ctx, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrBookingCompleted):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking already completed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
	}

	return c.JSON(http.StatusOK, releaseResp{
		BookingID:     res.BookingID,
		Status:        string(model.BookingStatusCompleted),
		FinalCost:     res.FinalCost,
		DurationHours: res.DurationHours,
	})
}

// MyBookings handles GET /api/my-bookings/:user_id, newest first. An
// unknown user is a 404, not an empty list.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.resolveUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	items, err := h.Bookings.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// UserSummary handles GET /api/user-summary/:user_id and lists the
// user's billing history including open Reserved bills. An unknown user
// is a 404, not an empty list.
func (h *BookingHandler) UserSummary(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.resolveUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	items, err := h.Billings.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BookingHandler) resolveUser(ctx context.Context, userID uint64) error {
	_, err := h.Users.GetByID(ctx, userID)
	return err
}
