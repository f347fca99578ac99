// Package service implements the booking and billing engine: input
// validation, lookup ordering and event publication around the atomic
// storage transitions. Handlers stay thin and map engine errors onto
// HTTP status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/parkwell/parking-backend/internal/model"
	"github.com/parkwell/parking-backend/internal/queue"
	"github.com/parkwell/parking-backend/internal/repository"
)

// ErrInvalidInput marks malformed or missing request fields. Wrapped
// errors carry the field-specific message; handlers translate the whole
// family into HTTP 400.
var ErrInvalidInput = errors.New("invalid input")

// SpotStore resolves parking spots.
type SpotStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Spot, error)
}

// UserStore resolves users.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// BookingStore performs the atomic booking transitions.
type BookingStore interface {
	CreateActive(ctx context.Context, spotID, customerID uint64, vehicleNumber string, start time.Time) (bookingID, billingID uint64, err error)
	Release(ctx context.Context, bookingID uint64, end time.Time) (*repository.ReleaseResult, error)
}

// EventPublisher pushes billing events to the message broker. A nil
// publisher disables publication.
type EventPublisher interface {
	PublishBillingCompleted(ctx context.Context, ev queue.BillingCompletedEvent) error
}

// BookingEngine drives the booking lifecycle. The clock is a field so
// tests can pin a deterministic time.
type BookingEngine struct {
	spots     SpotStore
	users     UserStore
	bookings  BookingStore
	publisher EventPublisher
	now       func() time.Time
}

func NewBookingEngine(spots SpotStore, users UserStore, bookings BookingStore, publisher EventPublisher) *BookingEngine {
	return &BookingEngine{
		spots:     spots,
		users:     users,
		bookings:  bookings,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateBookingInput is the payload of POST /api/book-spot.
type CreateBookingInput struct {
	SpotID        uint64 `json:"spot_id"`
	UserID        uint64 `json:"user_id"`
	VehicleNumber string `json:"vehicle_number"`
}

// BookingReceipt is returned to the caller after a successful booking.
type BookingReceipt struct {
	BookingID uint64 `json:"booking_id"`
	BillingID uint64 `json:"billing_id"`
	Status    string `json:"status"`
}

// CreateBooking validates the input, resolves the spot and the user in
// that order, and delegates the atomic create to the store. The spot's
// occupancy is re-checked under a row lock inside the store, so a stale
// read here can only turn into ErrSpotOccupied, never a double booking.
func (e *BookingEngine) CreateBooking(ctx context.Context, in CreateBookingInput) (*BookingReceipt, error) {
	if in.SpotID == 0 {
		return nil, fmt.Errorf("%w: spot_id is required", ErrInvalidInput)
	}
	if in.UserID == 0 {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	vehicle := strings.TrimSpace(in.VehicleNumber)
	if vehicle == "" {
		return nil, fmt.Errorf("%w: vehicle_number is required", ErrInvalidInput)
	}

	if _, err := e.spots.GetByID(ctx, in.SpotID); err != nil {
		return nil, err
	}
	if _, err := e.users.GetByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	bookingID, billingID, err := e.bookings.CreateActive(ctx, in.SpotID, in.UserID, vehicle, e.now().UTC())
	if err != nil {
		return nil, err
	}
	return &BookingReceipt{
		BookingID: bookingID,
		BillingID: billingID,
		Status:    string(model.BillingStatusReserved),
	}, nil
}

// ReleaseBooking completes an Active booking, finalizes its bill and
// frees the spot. On success a billing.completed event is published;
// publish failures are logged and do not fail the release, which has
// already committed.
func (e *BookingEngine) ReleaseBooking(ctx context.Context, bookingID uint64) (*repository.ReleaseResult, error) {
	if bookingID == 0 {
		return nil, fmt.Errorf("%w: booking_id is required", ErrInvalidInput)
	}
	res, err := e.bookings.Release(ctx, bookingID, e.now().UTC())
	if err != nil {
		return nil, err
	}
	if e.publisher != nil {
		ev := queue.BillingCompletedEvent{
			BookingID:     res.BookingID,
			BillingID:     res.BillingID,
			SpotID:        res.SpotID,
			LotID:         res.LotID,
			LotName:       res.LotName,
			CustomerID:    res.CustomerID,
			VehicleNumber: res.VehicleNumber,
			FinalCost:     res.FinalCost,
			DurationHours: res.DurationHours,
			ReleasedAt:    res.ReleasedAt.UTC().Format(time.RFC3339),
		}
		if err := e.publisher.PublishBillingCompleted(ctx, ev); err != nil {
			log.Printf("billing event publish failed for booking %d: %v", res.BookingID, err)
		}
	}
	return res, nil
}
