package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The driver reports duplicates as MySQL error 1062; Create translates
// that into the sentinel so handlers can answer 409.
func TestUserCreateDuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password_hash, role, full_name) VALUES (?,?,?,?)`)).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))

	_, err := NewUserRepo(db).Create(context.Background(), "Alice", "secret", "Alice A", "User", 4)

	assert.ErrorIs(t, err, ErrUsernameExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateNormalizesUsername(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password_hash, role, full_name) VALUES (?,?,?,?)`)).
		WithArgs("alice", sqlmock.AnyArg(), "User", "Alice A").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := NewUserRepo(db).Create(context.Background(), "  Alice ", "secret", "Alice A", "User", 4)

	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Deleting a user detaches their bookings instead of removing them, so
// the booking and billing history stays queryable.
func TestUserDeletePreservesBookingHistory(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET customer_id = NULL WHERE customer_id = ?`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewUserRepo(db).Delete(context.Background(), 42)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDeleteUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET customer_id = NULL WHERE customer_id = ?`)).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = ?`)).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewUserRepo(db).Delete(context.Background(), 99)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
