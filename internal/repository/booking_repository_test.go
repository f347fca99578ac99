package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCreateActiveBooksFreeSpot(t *testing.T) {
	db, mock := newMockDB(t)
	start := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_occupied FROM parking_spots WHERE id = ? FOR UPDATE`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"is_occupied"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings (spot_id, customer_id, vehicle_number, start_time, status) VALUES (?, ?, ?, ?, ?)`)).
		WithArgs(7, 42, "KA-01-1234", start, "Active").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO billings (booking_id, status) VALUES (?, ?)`)).
		WithArgs(11, "Reserved").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE parking_spots SET is_occupied = 1 WHERE id = ?`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	bookingID, billingID, err := NewBookingRepo(db).CreateActive(context.Background(), 7, 42, "KA-01-1234", start)

	require.NoError(t, err)
	assert.Equal(t, uint64(11), bookingID)
	assert.Equal(t, uint64(12), billingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Booking an occupied spot rolls back without touching the bookings,
// billings or parking_spots tables.
func TestCreateActiveOccupiedSpotRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_occupied FROM parking_spots WHERE id = ? FOR UPDATE`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"is_occupied"}).AddRow(true))
	mock.ExpectRollback()

	_, _, err := NewBookingRepo(db).CreateActive(context.Background(), 7, 42, "KA-01-1234", time.Now().UTC())

	assert.ErrorIs(t, err, ErrSpotOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateActiveUnknownSpot(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_occupied FROM parking_spots WHERE id = ? FOR UPDATE`)).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err := NewBookingRepo(db).CreateActive(context.Background(), 99, 42, "KA-01-1234", time.Now().UTC())

	assert.ErrorIs(t, err, ErrSpotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The release transaction finalizes the bill and frees the spot in the
// same commit: the occupied flag never diverges from the presence of an
// Active booking.
func TestReleaseComputesBillAndFreesSpot(t *testing.T) {
	db, mock := newMockDB(t)
	start := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute) // 2 billed hours

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, start_time, spot_id, customer_id, vehicle_number`)).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"status", "start_time", "spot_id", "customer_id", "vehicle_number"}).
			AddRow("Active", start, 7, 42, "KA-01-1234"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT l.id, l.name, l.price_per_hour`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price_per_hour"}).
			AddRow(3, "Central Garage", 10.0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET end_time = ?, status = ? WHERE id = ?`)).
		WithArgs(end, "Completed", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE billings SET final_cost = ?, billing_time = ?, status = ? WHERE booking_id = ?`)).
		WithArgs(20.0, end, "Completed", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE parking_spots SET is_occupied = 0 WHERE id = ?`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM billings WHERE booking_id = ?`)).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	res, err := NewBookingRepo(db).Release(context.Background(), 11, end)

	require.NoError(t, err)
	assert.Equal(t, uint64(12), res.BillingID)
	assert.Equal(t, 2, res.DurationHours)
	assert.Equal(t, 20.0, res.FinalCost)
	assert.Equal(t, "Central Garage", res.LotName)
	require.NotNil(t, res.CustomerID)
	assert.Equal(t, uint64(42), *res.CustomerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A second release of the same booking fails with a conflict and leaves
// every row untouched.
func TestReleaseSecondAttemptLeavesStateUntouched(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, start_time, spot_id, customer_id, vehicle_number`)).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"status", "start_time", "spot_id", "customer_id", "vehicle_number"}).
			AddRow("Completed", time.Now().UTC(), 7, 42, "KA-01-1234"))
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).Release(context.Background(), 11, time.Now().UTC())

	assert.ErrorIs(t, err, ErrBookingCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseUnknownBooking(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, start_time, spot_id, customer_id, vehicle_number`)).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).Release(context.Background(), 99, time.Now().UTC())

	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
