package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

// MotelRepo provides CRUD operations for motels.  IDs are CHAR(36) UUIDs
// generated by the application, not the database.  All timestamp columns
// are stored in UTC.
type MotelRepo struct {
	db *sql.DB
}

// NewMotelRepo returns a new MotelRepo bound to the given database.
func NewMotelRepo(db *sql.DB) *MotelRepo { return &MotelRepo{db: db} }

const motelColumns = `id, owner_id, name, description,
	street, city, state, zip_code, country,
	phone_number, email, is_active, image_url, created_at, updated_at`

// Create inserts a new motel row.
func (r *MotelRepo) Create(ctx context.Context, m *model.Motel) error {
	const q = `INSERT INTO motels
		(id, owner_id, name, description, street, city, state, zip_code, country, phone_number, email, is_active, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.OwnerID, m.Name, m.Description,
		m.Address.Street, m.Address.City, m.Address.State, m.Address.ZipCode, m.Address.Country,
		m.PhoneNumber, m.Email, m.IsActive, m.ImageURL)
	if err != nil {
		return apperr.Internal("create motel", err)
	}
	return nil
}

// GetByID fetches a motel by id.
func (r *MotelRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Motel, error) {
	const q = `SELECT ` + motelColumns + ` FROM motels WHERE id = ?`
	m, err := scanMotel(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("motel", id)
	}
	if err != nil {
		return nil, apperr.Internal("get motel", err)
	}
	return m, nil
}

// ListActive returns all motels open for booking.
func (r *MotelRepo) ListActive(ctx context.Context) ([]*model.Motel, error) {
	const q = `SELECT ` + motelColumns + ` FROM motels WHERE is_active = TRUE ORDER BY name`
	return r.list(ctx, q)
}

// ListByOwner returns all motels administered by the given user, active or
// not.
func (r *MotelRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Motel, error) {
	const q = `SELECT ` + motelColumns + ` FROM motels WHERE owner_id = ? ORDER BY name`
	return r.list(ctx, q, ownerID)
}

func (r *MotelRepo) list(ctx context.Context, q string, args ...any) ([]*model.Motel, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal("list motels", err)
	}
	defer rows.Close()

	var out []*model.Motel
	for rows.Next() {
		m, err := scanMotel(rows)
		if err != nil {
			return nil, apperr.Internal("scan motel", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list motels", err)
	}
	return out, nil
}

// Update persists the mutable columns of a motel.
func (r *MotelRepo) Update(ctx context.Context, m *model.Motel) error {
	const q = `UPDATE motels SET name = ?, description = ?,
		street = ?, city = ?, state = ?, zip_code = ?, country = ?,
		phone_number = ?, email = ?, is_active = ?, image_url = ?, updated_at = UTC_TIMESTAMP()
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		m.Name, m.Description,
		m.Address.Street, m.Address.City, m.Address.State, m.Address.ZipCode, m.Address.Country,
		m.PhoneNumber, m.Email, m.IsActive, m.ImageURL, m.ID)
	if err != nil {
		return apperr.Internal("update motel", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("motel", m.ID)
	}
	return nil
}

// Delete removes a motel.  The rooms foreign key is declared ON DELETE
// CASCADE, so the motel's rooms go with it.
func (r *MotelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM motels WHERE id = ?`, id)
	if err != nil {
		return apperr.Internal("delete motel", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("motel", id)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMotel(row rowScanner) (*model.Motel, error) {
	var m model.Motel
	var imageURL sql.NullString
	err := row.Scan(
		&m.ID, &m.OwnerID, &m.Name, &m.Description,
		&m.Address.Street, &m.Address.City, &m.Address.State, &m.Address.ZipCode, &m.Address.Country,
		&m.PhoneNumber, &m.Email, &m.IsActive, &imageURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		m.ImageURL = &imageURL.String
	}
	return &m, nil
}
