package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

func newMockDB(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReservationRepo(db), mock
}

func mockReservation(t *testing.T) *model.Reservation {
	t.Helper()
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	tr, err := model.NewTimeRange(start, start.Add(3*time.Hour))
	require.NoError(t, err)
	price, err := model.NewMoney(5000, "USD")
	require.NoError(t, err)
	room, err := model.NewRoom(uuid.New(), "101", "Standard Queen", "", model.RoomTypeStandard, 2, price, nil)
	require.NoError(t, err)
	res, err := model.NewReservation(room.MotelID, room.ID, uuid.New(), room, tr, nil)
	require.NoError(t, err)
	return res
}

func TestCreateWithOverlapGuard(t *testing.T) {
	t.Run("CommitsWhenRoomIsFree", func(t *testing.T) {
		repo, mock := newMockDB(t)
		res := mockReservation(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \? FOR UPDATE`).
			WithArgs(res.RoomID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(res.RoomID.String()))
		mock.ExpectQuery(`SELECT id FROM reservations`).
			WithArgs(res.RoomID, res.TimeRange.End, res.TimeRange.Start).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec(`INSERT INTO reservations`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.CreateWithOverlapGuard(context.Background(), res)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackOnOverlap", func(t *testing.T) {
		repo, mock := newMockDB(t)
		res := mockReservation(t)
		winner := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \? FOR UPDATE`).
			WithArgs(res.RoomID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(res.RoomID.String()))
		mock.ExpectQuery(`SELECT id FROM reservations`).
			WithArgs(res.RoomID, res.TimeRange.End, res.TimeRange.Start).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(winner.String()))
		mock.ExpectRollback()

		err := repo.CreateWithOverlapGuard(context.Background(), res)
		require.Error(t, err)
		assert.Equal(t, apperr.KindBookingConflict, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownRoomIsNotFound", func(t *testing.T) {
		repo, mock := newMockDB(t)
		res := mockReservation(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \? FOR UPDATE`).
			WithArgs(res.RoomID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		err := repo.CreateWithOverlapGuard(context.Background(), res)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConfirmWithOverlapGuard(t *testing.T) {
	t.Run("CommitsWhenStillFree", func(t *testing.T) {
		repo, mock := newMockDB(t)
		res := mockReservation(t)
		require.NoError(t, res.Confirm())

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \? FOR UPDATE`).
			WithArgs(res.RoomID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(res.RoomID.String()))
		mock.ExpectQuery(`SELECT id FROM reservations`).
			WithArgs(res.RoomID, res.ID, res.TimeRange.End, res.TimeRange.Start).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec(`UPDATE reservations SET status = \?`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.ConfirmWithOverlapGuard(context.Background(), res))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackWhenRivalConfirmedFirst", func(t *testing.T) {
		repo, mock := newMockDB(t)
		res := mockReservation(t)
		require.NoError(t, res.Confirm())
		rival := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \? FOR UPDATE`).
			WithArgs(res.RoomID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(res.RoomID.String()))
		mock.ExpectQuery(`SELECT id FROM reservations`).
			WithArgs(res.RoomID, res.ID, res.TimeRange.End, res.TimeRange.Start).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(rival.String()))
		mock.ExpectRollback()

		err := repo.ConfirmWithOverlapGuard(context.Background(), res)
		require.Error(t, err)
		assert.Equal(t, apperr.KindBookingConflict, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func reservationRow(res *model.Reservation) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "motel_id", "room_id", "user_id", "start_time", "end_time",
		"status", "total_amount_cents", "currency", "payment_id", "special_requests",
		"check_in_time", "check_out_time", "created_at", "updated_at",
	}).AddRow(
		res.ID.String(), res.MotelID.String(), res.RoomID.String(), res.UserID.String(),
		res.TimeRange.Start, res.TimeRange.End,
		string(res.Status), res.TotalAmount.AmountCents, res.TotalAmount.Currency,
		nil, nil, nil, nil, res.CreatedAt, res.UpdatedAt,
	)
}

func TestReservationGetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mock := newMockDB(t)
		res := mockReservation(t)

		mock.ExpectQuery(`FROM reservations WHERE id = \?`).
			WithArgs(res.ID).
			WillReturnRows(reservationRow(res))

		got, err := repo.GetByID(context.Background(), res.ID)
		require.NoError(t, err)
		assert.Equal(t, res.ID, got.ID)
		assert.Equal(t, model.ReservationPending, got.Status)
		assert.Nil(t, got.PaymentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		repo, mock := newMockDB(t)
		id := uuid.New()

		mock.ExpectQuery(`FROM reservations WHERE id = \?`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), id)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestListBlockingByMotelGroupsByRoom(t *testing.T) {
	repo, mock := newMockDB(t)
	a := mockReservation(t)
	b := mockReservation(t)
	b.MotelID = a.MotelID

	rows := reservationRow(a)
	rows.AddRow(
		b.ID.String(), b.MotelID.String(), b.RoomID.String(), b.UserID.String(),
		b.TimeRange.Start, b.TimeRange.End,
		string(b.Status), b.TotalAmount.AmountCents, b.TotalAmount.Currency,
		nil, nil, nil, nil, b.CreatedAt, b.UpdatedAt,
	)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	mock.ExpectQuery(`FROM reservations`).
		WithArgs(a.MotelID, end, start).
		WillReturnRows(rows)

	byRoom, err := repo.ListBlockingByMotel(context.Background(), a.MotelID, start, end)
	require.NoError(t, err)
	assert.Len(t, byRoom, 2)
	assert.Len(t, byRoom[a.RoomID], 1)
	assert.Len(t, byRoom[b.RoomID], 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationUpdate(t *testing.T) {
	t.Run("PersistsTransitionColumns", func(t *testing.T) {
		repo, mock := newMockDB(t)
		res := mockReservation(t)
		require.NoError(t, res.Confirm())

		mock.ExpectExec(`UPDATE reservations SET status = \?`).
			WithArgs(string(res.Status), nil, nil, nil, res.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), res))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingRowIsNotFound", func(t *testing.T) {
		repo, mock := newMockDB(t)
		res := mockReservation(t)

		mock.ExpectExec(`UPDATE reservations SET status = \?`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), res)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}
