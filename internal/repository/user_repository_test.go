package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupMockUserDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *UserRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewUserRepo(db)
}

var userCols = []string{"id", "username", "password_hash", "nick_name", "email",
	"phone_number", "is_frozen", "is_admin", "created_at", "updated_at"}

func TestSetFrozen_BlocksAccount(t *testing.T) {
	db, mock, repo := setupMockUserDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET is_frozen=\? WHERE id=\?`).
		WithArgs(true, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetFrozen(context.Background(), 7, true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetFrozen_RepeatedFreezeIsNoOp(t *testing.T) {
	db, mock, repo := setupMockUserDB(t)
	defer db.Close()

	// Freezing an already frozen account changes nothing; the existence
	// probe keeps that from surfacing as not-found.
	mock.ExpectExec(`UPDATE users SET is_frozen=\? WHERE id=\?`).
		WithArgs(true, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM users WHERE id=\?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	require.NoError(t, repo.SetFrozen(context.Background(), 7, true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetFrozen_UnknownID(t *testing.T) {
	db, mock, repo := setupMockUserDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET is_frozen=\? WHERE id=\?`).
		WithArgs(false, uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM users WHERE id=\?`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	err := repo.SetFrozen(context.Background(), 99, false)

	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// bcryptHashOf matches any bcrypt hash of the expected plaintext.
type bcryptHashOf string

func (m bcryptHashOf) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s), []byte(m)) == nil
}

func TestUpdatePassword_WritesBcryptHash(t *testing.T) {
	db, mock, repo := setupMockUserDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET password_hash=\? WHERE id=\?`).
		WithArgs(bcryptHashOf("s3cret-new"), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePassword(context.Background(), 7, "s3cret-new", bcrypt.MinCost)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword_UnknownID(t *testing.T) {
	db, mock, repo := setupMockUserDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET password_hash=\? WHERE id=\?`).
		WithArgs(sqlmock.AnyArg(), uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM users WHERE id=\?`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	err := repo.UpdatePassword(context.Background(), 99, "s3cret-new", bcrypt.MinCost)

	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserList_FiltersAndPaginates(t *testing.T) {
	db, mock, repo := setupMockUserDB(t)
	defer db.Close()

	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE username LIKE \? AND email LIKE \?`).
		WithArgs("%sam%", "%example.com%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM users WHERE username LIKE \? AND email LIKE \? ORDER BY id LIMIT \? OFFSET \?`).
		WithArgs("%sam%", "%example.com%", 10, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(7, "sam", "hash", "Sam", "sam@example.com", nil, true, false, now, now))

	users, total, err := repo.List(context.Background(), UserFilter{
		Username: "sam",
		Email:    "example.com",
		PageNo:   1,
		PageSize: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "sam", users[0].Username)
	assert.True(t, users[0].IsFrozen)
	assert.Nil(t, users[0].PhoneNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}
