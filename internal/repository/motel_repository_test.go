package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

func newMotelRepo(t *testing.T) (*MotelRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMotelRepo(db), mock
}

func mockMotel(t *testing.T) *model.Motel {
	t.Helper()
	addr := model.Address{Street: "12 Route 66", City: "Amarillo", State: "TX", ZipCode: "79101", Country: "US"}
	m, err := model.NewMotel(uuid.New(), "Sunset Inn", "Roadside motel", addr, "+1-806-555-0101", "desk@sunsetinn.test", nil)
	require.NoError(t, err)
	return m
}

func motelRow(m *model.Motel) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "description",
		"street", "city", "state", "zip_code", "country",
		"phone_number", "email", "is_active", "image_url", "created_at", "updated_at",
	}).AddRow(
		m.ID.String(), m.OwnerID.String(), m.Name, m.Description,
		m.Address.Street, m.Address.City, m.Address.State, m.Address.ZipCode, m.Address.Country,
		m.PhoneNumber, m.Email, m.IsActive, nil, m.CreatedAt, m.UpdatedAt,
	)
}

func TestMotelCreate(t *testing.T) {
	repo, mock := newMotelRepo(t)
	m := mockMotel(t)

	mock.ExpectExec(`INSERT INTO motels`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMotelGetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mock := newMotelRepo(t)
		m := mockMotel(t)

		mock.ExpectQuery(`FROM motels WHERE id = \?`).
			WithArgs(m.ID).
			WillReturnRows(motelRow(m))

		got, err := repo.GetByID(context.Background(), m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.Name, got.Name)
		assert.Equal(t, m.Address, got.Address)
		assert.True(t, got.IsActive)
	})

	t.Run("Missing", func(t *testing.T) {
		repo, mock := newMotelRepo(t)
		id := uuid.New()

		mock.ExpectQuery(`FROM motels WHERE id = \?`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), id)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestMotelListByOwner(t *testing.T) {
	repo, mock := newMotelRepo(t)
	m := mockMotel(t)

	mock.ExpectQuery(`FROM motels WHERE owner_id = \?`).
		WithArgs(m.OwnerID).
		WillReturnRows(motelRow(m))

	list, err := repo.ListByOwner(context.Background(), m.OwnerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)
}

func TestMotelUpdateMissingRow(t *testing.T) {
	repo, mock := newMotelRepo(t)
	m := mockMotel(t)

	mock.ExpectExec(`UPDATE motels SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), m)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMotelDelete(t *testing.T) {
	repo, mock := newMotelRepo(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM motels WHERE id = \?`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}
