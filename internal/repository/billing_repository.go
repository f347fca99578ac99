package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/parkwell/parking-backend/internal/model"
)

// BillingRepo provides read access to billing records. Billing rows are
// created and finalized by BookingRepo inside the booking transactions;
// this repository only serves the summary views.
type BillingRepo struct {
	db *sql.DB
}

func NewBillingRepo(db *sql.DB) *BillingRepo { return &BillingRepo{db: db} }

// BillingDetail is a billing row joined with its booking for the user
// summary page. FinalCost and BillingTime stay null for bills still in
// the Reserved state.
type BillingDetail struct {
	BillingID   uint64   `json:"billing_id"`
	BookingID   uint64   `json:"booking_id"`
	CustomerID  *uint64  `json:"customer_id"`
	FinalCost   *float64 `json:"final_cost"`
	BillingTime *string  `json:"billing_time"`
	StartTime   string   `json:"start_time"`
	Status      string   `json:"status"`
}

// ListByUser returns the user's billing history ordered by booking id
// descending, each row joined with the booking's start time so callers
// can display the parked duration.
func (r *BillingRepo) ListByUser(ctx context.Context, userID uint64) ([]BillingDetail, error) {
	const q = `SELECT bl.id, bl.booking_id, b.customer_id, bl.final_cost, bl.billing_time, b.start_time, bl.status
	           FROM billings bl
	           JOIN bookings b ON b.id = bl.booking_id
	           WHERE b.customer_id = ?
	           ORDER BY b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BillingDetail, 0)
	for rows.Next() {
		var (
			d           BillingDetail
			customerID  sql.NullInt64
			finalCost   sql.NullFloat64
			billingTime sql.NullTime
			start       time.Time
		)
		if err := rows.Scan(&d.BillingID, &d.BookingID, &customerID, &finalCost, &billingTime, &start, &d.Status); err != nil {
			return nil, err
		}
		if customerID.Valid {
			cid := uint64(customerID.Int64)
			d.CustomerID = &cid
		}
		if finalCost.Valid {
			c := finalCost.Float64
			d.FinalCost = &c
		}
		if billingTime.Valid {
			iso := billingTime.Time.UTC().Format(time.RFC3339)
			d.BillingTime = &iso
		}
		d.StartTime = start.UTC().Format(time.RFC3339)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LotProfit is one row of the profit-by-lot summary.
type LotProfit struct {
	LotID       uint64  `json:"lot_id"`
	LotName     string  `json:"lot_name"`
	TotalProfit float64 `json:"total_profit"`
}

// ProfitByLot sums final_cost over Completed billings grouped by lot,
// reached through the billing -> booking -> spot -> lot join chain. The
// joins start from parking_lots so a lot with no completed billings
// still appears with a total of 0 rather than being omitted.
func (r *BillingRepo) ProfitByLot(ctx context.Context) ([]LotProfit, error) {
	const q = `SELECT l.id, l.name,
	           COALESCE(SUM(CASE WHEN bl.status = ? THEN bl.final_cost ELSE 0 END), 0)
	           FROM parking_lots l
	           LEFT JOIN parking_spots s ON s.lot_id = l.id
	           LEFT JOIN bookings b ON b.spot_id = s.id
	           LEFT JOIN billings bl ON bl.booking_id = b.id
	           GROUP BY l.id, l.name
	           ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, q, model.BillingStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LotProfit, 0)
	for rows.Next() {
		var p LotProfit
		if err := rows.Scan(&p.LotID, &p.LotName, &p.TotalProfit); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
