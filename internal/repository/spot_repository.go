package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/parkwell/parking-backend/internal/model"
)

// SpotRepo encapsulates database queries for individual parking spots.
// Occupancy transitions are not performed here; they belong to the
// booking repository where they happen atomically with the booking
// lifecycle.
type SpotRepo struct {
	db *sql.DB
}

func NewSpotRepo(db *sql.DB) *SpotRepo { return &SpotRepo{db: db} }

// GetByID fetches a spot by its ID. It returns ErrSpotNotFound when no
// row exists.
func (r *SpotRepo) GetByID(ctx context.Context, id uint64) (*model.Spot, error) {
	const q = `SELECT id, lot_id, spot_number, is_occupied FROM parking_spots WHERE id = ?`
	var s model.Spot
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.IsOccupied); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DeleteCascade removes a spot together with its booking history and the
// billings attached to those bookings, in one transaction. Occupied
// spots cannot be deleted; the active booking must be released first.
func (r *SpotRepo) DeleteCascade(ctx context.Context, id uint64) error {
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

	var occupied bool
	if err := tx.QueryRowContext(ctx, `SELECT is_occupied FROM parking_spots WHERE id = ? FOR UPDATE`, id).Scan(&occupied); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSpotNotFound
		}
		return err
	}
	if occupied {
		return ErrSpotOccupied
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE bl FROM billings bl
		 JOIN bookings b ON b.id = bl.booking_id
		 WHERE b.spot_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE spot_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
