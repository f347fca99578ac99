// This file implements the booking state machine at the storage level.
// The occupancy flag on a spot and the lifecycle of its bookings are
// only ever written together, inside one transaction, with the affected
// rows locked via SELECT ... FOR UPDATE. Two concurrent bookings on the
// same spot therefore serialize: the loser observes is_occupied = 1 and
// receives ErrSpotOccupied, never a second Active booking.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/parkwell/parking-backend/internal/billing"
	"github.com/parkwell/parking-backend/internal/model"
)

// BookingRepo encapsulates database access for bookings and the
// transitions that touch their spot and billing rows.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateActive books a free spot: it locks the spot row, verifies it is
// unoccupied, inserts an Active booking starting at the given time,
// inserts the linked Reserved billing with no cost, and flips the
// occupied flag. All five steps are one transaction.
func (r *BookingRepo) CreateActive(ctx context.Context, spotID, customerID uint64, vehicleNumber string, start time.Time) (bookingID, billingID uint64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var occupied bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_occupied FROM parking_spots WHERE id = ? FOR UPDATE`, spotID).Scan(&occupied)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrSpotNotFound
		}
		return 0, 0, err
	}
	if occupied {
		return 0, 0, ErrSpotOccupied
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (spot_id, customer_id, vehicle_number, start_time, status) VALUES (?, ?, ?, ?, ?)`,
		spotID, customerID, vehicleNumber, start, model.BookingStatusActive)
	if err != nil {
		return 0, 0, err
	}
	bid, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	bookingID = uint64(bid)

	res, err = tx.ExecContext(ctx,
		`INSERT INTO billings (booking_id, status) VALUES (?, ?)`,
		bookingID, model.BillingStatusReserved)
	if err != nil {
		return 0, 0, err
	}
	blid, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}
	billingID = uint64(blid)

	if _, err = tx.ExecContext(ctx,
		`UPDATE parking_spots SET is_occupied = 1 WHERE id = ?`, spotID); err != nil {
		return 0, 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, 0, err
	}
	committed = true
	return bookingID, billingID, nil
}

// ReleaseResult carries everything a caller needs after a successful
// release: the finalized amounts plus context for the published event.
type ReleaseResult struct {
	BookingID     uint64
	BillingID     uint64
	SpotID        uint64
	LotID         uint64
	LotName       string
	CustomerID    *uint64
	VehicleNumber string
	FinalCost     float64
	DurationHours int
	ReleasedAt    time.Time
}

// Release completes an Active booking at the given end time. The booking
// row is locked first, so a concurrent second release blocks and then
// fails with ErrBookingCompleted. Within the same transaction the
// billed hours (ceiling of elapsed seconds over 3600, minimum 1) and
// final cost are written to the billing row and the spot is freed.
func (r *BookingRepo) Release(ctx context.Context, bookingID uint64, end time.Time) (*ReleaseResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		status     string
		start      time.Time
		spotID     uint64
		customerID sql.NullInt64
		vehicle    string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status, start_time, spot_id, customer_id, vehicle_number
		 FROM bookings WHERE id = ? FOR UPDATE`, bookingID).
		Scan(&status, &start, &spotID, &customerID, &vehicle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if status != string(model.BookingStatusActive) {
		return nil, ErrBookingCompleted
	}

	var (
		lotID        uint64
		lotName      string
		pricePerHour float64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT l.id, l.name, l.price_per_hour
		 FROM parking_spots s
		 JOIN parking_lots l ON l.id = s.lot_id
		 WHERE s.id = ?`, spotID).Scan(&lotID, &lotName, &pricePerHour)
	if err != nil {
		return nil, err
	}

	hours := billing.BilledHours(end.Sub(start.UTC()))
	cost := billing.Cost(hours, pricePerHour)

	if _, err = tx.ExecContext(ctx,
		`UPDATE bookings SET end_time = ?, status = ? WHERE id = ?`,
		end, model.BookingStatusCompleted, bookingID); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE billings SET final_cost = ?, billing_time = ?, status = ? WHERE booking_id = ?`,
		cost, end, model.BillingStatusCompleted, bookingID); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE parking_spots SET is_occupied = 0 WHERE id = ?`, spotID); err != nil {
		return nil, err
	}

	var billingID uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT id FROM billings WHERE booking_id = ?`, bookingID).Scan(&billingID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	out := &ReleaseResult{
		BookingID:     bookingID,
		BillingID:     billingID,
		SpotID:        spotID,
		LotID:         lotID,
		LotName:       lotName,
		VehicleNumber: vehicle,
		FinalCost:     cost,
		DurationHours: hours,
		ReleasedAt:    end,
	}
	if customerID.Valid {
		cid := uint64(customerID.Int64)
		out.CustomerID = &cid
	}
	return out, nil
}

// formatLotLocation renders the display label used for a booking's
// location, e.g. "Lot #3: Center Plaza".
func formatLotLocation(lotID uint64, lotName string) string {
	return fmt.Sprintf("Lot #%d: %s", lotID, lotName)
}

// BookingDetail is a booking joined with its lot for display on the
// "my bookings" page.
type BookingDetail struct {
	BookingID       uint64 `json:"booking_id"`
	ParkingLocation string `json:"parking_location"`
	VehicleNumber   string `json:"vehicle_number"`
	TimeStamp       string `json:"time_stamp"`
	Status          string `json:"status"`
}

// ListByUser returns every booking made by the user, newest first by
// start time, each joined with its lot's name. An empty slice is
// returned when the user has no bookings.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, l.id, l.name, b.vehicle_number, b.start_time, b.status
	           FROM bookings b
	           JOIN parking_spots s ON s.id = b.spot_id
	           JOIN parking_lots l ON l.id = s.lot_id
	           WHERE b.customer_id = ?
	           ORDER BY b.start_time DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BookingDetail, 0)
	for rows.Next() {
		var (
			d       BookingDetail
			lotID   uint64
			lotName string
			start   time.Time
		)
		if err := rows.Scan(&d.BookingID, &lotID, &lotName, &d.VehicleNumber, &start, &d.Status); err != nil {
			return nil, err
		}
		d.ParkingLocation = formatLotLocation(lotID, lotName)
		d.TimeStamp = start.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
