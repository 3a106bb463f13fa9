package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

// RoomRepo provides CRUD operations for rooms.  Room prices are stored as
// integer cents plus a currency code.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, motel_id, room_number, name, description, room_type,
	capacity, price_per_hour_cents, currency, is_available, image_url, created_at, updated_at`

// Create inserts a new room row.  The (motel_id, room_number) pair carries a
// unique index; violating it reports a Conflict.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms
		(id, motel_id, room_number, name, description, room_type, capacity, price_per_hour_cents, currency, is_available, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		room.ID, room.MotelID, room.RoomNumber, room.Name, room.Description, room.Type,
		room.Capacity, room.PricePerHour.AmountCents, room.PricePerHour.Currency,
		room.IsAvailable, room.ImageURL)
	if isDuplicateKey(err) {
		return apperr.Conflict("duplicate room number",
			"room number %s already exists in this motel", room.RoomNumber)
	}
	if err != nil {
		return apperr.Internal("create room", err)
	}
	return nil
}

// GetByID fetches a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("room", id)
	}
	if err != nil {
		return nil, apperr.Internal("get room", err)
	}
	return room, nil
}

// ListByMotel returns all rooms of a motel ordered by room number.
func (r *RoomRepo) ListByMotel(ctx context.Context, motelID uuid.UUID) ([]*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE motel_id = ? ORDER BY room_number`
	rows, err := r.db.QueryContext(ctx, q, motelID)
	if err != nil {
		return nil, apperr.Internal("list rooms", err)
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, apperr.Internal("scan room", err)
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list rooms", err)
	}
	return out, nil
}

// Update persists the mutable columns of a room.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	const q = `UPDATE rooms SET room_number = ?, name = ?, description = ?, room_type = ?,
		capacity = ?, price_per_hour_cents = ?, currency = ?, is_available = ?, image_url = ?,
		updated_at = UTC_TIMESTAMP()
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		room.RoomNumber, room.Name, room.Description, room.Type,
		room.Capacity, room.PricePerHour.AmountCents, room.PricePerHour.Currency,
		room.IsAvailable, room.ImageURL, room.ID)
	if isDuplicateKey(err) {
		return apperr.Conflict("duplicate room number",
			"room number %s already exists in this motel", room.RoomNumber)
	}
	if err != nil {
		return apperr.Internal("update room", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("room", room.ID)
	}
	return nil
}

// Delete removes a room.  The reservations foreign key is declared ON
// DELETE RESTRICT, so a room with reservation history cannot be removed;
// that surfaces as a Conflict.
func (r *RoomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Conflict("room has reservations",
				"room %s has reservation history and cannot be deleted", id)
		}
		return apperr.Internal("delete room", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("room", id)
	}
	return nil
}

func scanRoom(row rowScanner) (*model.Room, error) {
	var room model.Room
	var imageURL sql.NullString
	err := row.Scan(
		&room.ID, &room.MotelID, &room.RoomNumber, &room.Name, &room.Description, &room.Type,
		&room.Capacity, &room.PricePerHour.AmountCents, &room.PricePerHour.Currency,
		&room.IsAvailable, &imageURL, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		room.ImageURL = &imageURL.String
	}
	return &room, nil
}
