package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

func setupMockBookingDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *BookingRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewBookingRepo(db)
}

var bookingCols = []string{"id", "user_id", "room_id", "start_time", "end_time", "status", "note", "created_at", "updated_at"}

func TestFindConflicting_ContainedInterval(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	start := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(bookingCols).AddRow(
		42, 7, 1,
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		model.StatusApproved, "", now, now,
	)
	// The containment comparison and the status filter are the contract here:
	// start_time < proposed start, end_time > proposed end, REJECTED and
	// UNBOUND excluded.
	mock.ExpectQuery(`SELECT .+ FROM bookings\s+WHERE room_id = \? AND start_time < \? AND end_time > \?\s+AND status NOT IN`).
		WithArgs(uint64(1), start, end, model.StatusRejected, model.StatusUnbound).
		WillReturnRows(rows)

	b, err := repo.FindConflicting(context.Background(), 1, start, end)

	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, uint64(42), b.ID)
	assert.Equal(t, model.StatusApproved, b.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindConflicting_NoMatch(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM bookings`).
		WithArgs(uint64(1), start, end, model.StatusRejected, model.StatusUnbound).
		WillReturnError(sql.ErrNoRows)

	b, err := repo.FindConflicting(context.Background(), 1, start, end)

	require.NoError(t, err)
	assert.Nil(t, b)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_PopulatesGeneratedFields(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(uint64(7), uint64(1), start, end, model.StatusPending, "standup").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id=\?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(3, 7, 1, start, end, model.StatusPending, "standup", now, now))

	b := &model.Booking{UserID: 7, RoomID: 1, StartTime: start, EndTime: end, Status: model.StatusPending, Note: "standup"}
	err := repo.Insert(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, uint64(3), b.ID)
	assert.Equal(t, now, b.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_Changed(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).
		WithArgs(model.StatusApproved, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 5, model.StatusApproved))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_RepeatedTransitionIsNoOp(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	// MySQL reports zero changed rows when the status is already set; the
	// repository must probe for existence instead of reporting not-found.
	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).
		WithArgs(model.StatusApproved, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM bookings WHERE id=\?`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 5, model.StatusApproved))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_UnknownID(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).
		WithArgs(model.StatusUnbound, uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM bookings WHERE id=\?`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	err := repo.UpdateStatus(context.Background(), 99, model.StatusUnbound)

	require.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByUser(t *testing.T) {
	db, mock, repo := setupMockBookingDB(t)
	defer db.Close()

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT u.id, u.username, COUNT\(b.id\)`).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "count"}).
			AddRow(7, "sam", 4).
			AddRow(8, "alex", 1))

	counts, err := repo.CountByUser(context.Background(), start, end)

	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, UserBookingCount{UserID: 7, Username: "sam", Count: 4}, counts[0])
	require.NoError(t, mock.ExpectationsWereMet())
}
