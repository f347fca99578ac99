// This file defines repository methods for parking lots. A lot owns a
// fixed set of spots created together with it; deleting a lot removes
// every dependent spot, booking and billing inside a single transaction
// so that no orphaned rows can be observed.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/parkwell/parking-backend/internal/model"
)

// LotRepo encapsulates all database queries related to parking lots.
type LotRepo struct {
	db *sql.DB
}

func NewLotRepo(db *sql.DB) *LotRepo { return &LotRepo{db: db} }

// SpotStatus is a spot row enriched with the active booking that
// justifies its occupied flag, for dashboard rendering.
type SpotStatus struct {
	ID            uint64  `json:"id"`
	LotID         uint64  `json:"lot_id"`
	SpotNumber    int     `json:"spot_number"`
	Occupied      bool    `json:"occupied"`
	CustomerID    *uint64 `json:"customer_id,omitempty"`
	VehicleNumber *string `json:"vehicle_number,omitempty"`
}

// LotDetail is a lot together with its derived occupied count and full
// spot list, as served by GET /api/lots.
type LotDetail struct {
	ID            uint64       `json:"id"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	Pincode       string       `json:"pincode"`
	PricePerHour  float64      `json:"price_per_hour"`
	MaxSpots      int          `json:"max_spots"`
	OccupiedCount int          `json:"occupied"`
	Spots         []SpotStatus `json:"spots"`
}

// Create inserts a lot and its parking_spots rows numbered 1..MaxSpots in
// one transaction. On success the lot's ID is populated; either all rows
// exist or none do.
func (r *LotRepo) Create(ctx context.Context, lot *model.Lot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO parking_lots (name, address, pincode, price_per_hour, max_spots) VALUES (?, ?, ?, ?, ?)`,
		lot.Name, lot.Address, lot.Pincode, lot.PricePerHour, lot.MaxSpots)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	lot.ID = uint64(id)

	// Bulk insert the spots in a single statement.
	query := `INSERT INTO parking_spots (lot_id, spot_number, is_occupied) VALUES `
	args := make([]interface{}, 0, lot.MaxSpots*2)
	for i := 1; i <= lot.MaxSpots; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?, ?, 0)"
		args = append(args, lot.ID, i)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a lot by its ID. It returns ErrLotNotFound if no row
// is found.
func (r *LotRepo) GetByID(ctx context.Context, id uint64) (*model.Lot, error) {
	const q = `SELECT id, name, address, pincode, price_per_hour, max_spots, created_at
	           FROM parking_lots WHERE id = ?`
	var l model.Lot
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&l.ID, &l.Name, &l.Address, &l.Pincode, &l.PricePerHour, &l.MaxSpots, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLotNotFound
		}
		return nil, err
	}
	return &l, nil
}

// ListWithSpots returns every lot with its spot list and occupied count.
// Occupied spots carry the customer and vehicle of their Active booking.
// Spots are loaded in a single follow-up query and grouped by lot.
func (r *LotRepo) ListWithSpots(ctx context.Context) ([]LotDetail, error) {
	const q = `SELECT id, name, address, pincode, price_per_hour, max_spots
	           FROM parking_lots ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]LotDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d LotDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.Address, &d.Pincode, &d.PricePerHour, &d.MaxSpots); err != nil {
			return nil, err
		}
		d.Spots = []SpotStatus{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	const spotQ = `SELECT s.id, s.lot_id, s.spot_number, s.is_occupied, b.customer_id, b.vehicle_number
	               FROM parking_spots s
	               LEFT JOIN bookings b ON b.spot_id = s.id AND b.status = 'Active'
	               ORDER BY s.lot_id, s.spot_number`
	srows, err := r.db.QueryContext(ctx, spotQ)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var s SpotStatus
		var customerID sql.NullInt64
		var vehicle sql.NullString
		if err := srows.Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.Occupied, &customerID, &vehicle); err != nil {
			return nil, err
		}
		if customerID.Valid {
			cid := uint64(customerID.Int64)
			s.CustomerID = &cid
		}
		if vehicle.Valid {
			v := vehicle.String
			s.VehicleNumber = &v
		}
		idx, ok := index[s.LotID]
		if !ok {
			continue
		}
		if s.Occupied {
			details[idx].OccupiedCount++
		}
		details[idx].Spots = append(details[idx].Spots, s)
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// UpdateInfo updates the mutable lot fields: name, address, pincode and
// hourly price. Spot count is intentionally not part of this statement;
// callers reject max_spots changes with ErrLotResized before getting
// here. Returns ErrLotNotFound when no row is affected.
func (r *LotRepo) UpdateInfo(ctx context.Context, id uint64, name, address, pincode string, pricePerHour float64) error {
	const q = `UPDATE parking_lots
	           SET name = ?, address = ?, pincode = ?, price_per_hour = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, name, address, pincode, pricePerHour, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLotNotFound
	}
	return nil
}

// DeleteCascade removes a lot and all dependent records: billings of
// bookings on the lot's spots, those bookings, the spots, and finally
// the lot itself. The deletion occurs within a transaction so a failure
// leaves every row in place.
func (r *LotRepo) DeleteCascade(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM parking_lots WHERE id = ?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLotNotFound
		}
		return err
	}
	// Cascade order: billings -> bookings -> spots -> lot.
	if _, err := tx.ExecContext(ctx,
		`DELETE bl FROM billings bl
		 JOIN bookings b ON b.id = bl.booking_id
		 JOIN parking_spots s ON s.id = b.spot_id
		 WHERE s.lot_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE b FROM bookings b
		 JOIN parking_spots s ON s.id = b.spot_id
		 WHERE s.lot_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE lot_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
