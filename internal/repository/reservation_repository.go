package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

// ReservationRepo provides persistence for reservations.  Booking runs
// inside a single transaction that serializes on the room row, because
// MySQL cannot express an exclusion constraint over time ranges; the row
// lock is the only thing standing between two concurrent bookings of the
// same room.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, motel_id, room_id, user_id, start_time, end_time,
	status, total_amount_cents, currency, payment_id, special_requests,
	check_in_time, check_out_time, created_at, updated_at`

// blockingStatuses is the SQL fragment matching reservations that count
// against availability.  Must stay in sync with model.Reservation.Blocks.
const blockingStatuses = `('CONFIRMED', 'CHECKED_IN')`

// CreateWithOverlapGuard atomically inserts a reservation after proving no
// blocking reservation overlaps its range.  Sequence, all in one
// transaction:
//
//  1. Lock the room row with SELECT ... FOR UPDATE, serializing concurrent
//     bookings of the same room.
//  2. Check for an overlapping CONFIRMED or CHECKED_IN reservation under
//     half-open semantics.
//  3. Insert and commit.
//
// Of two concurrent requests for an overlapping range, exactly one commits;
// the other observes the winner's row and receives a BookingConflict.
func (r *ReservationRepo) CreateWithOverlapGuard(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal("begin booking transaction", err)
	}
	defer tx.Rollback()

	var roomID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM rooms WHERE id = ? FOR UPDATE`, res.RoomID,
	).Scan(&roomID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("room", res.RoomID)
	}
	if err != nil {
		return apperr.Internal("lock room", err)
	}

	// Half-open overlap: existing.start < new.end AND existing.end > new.start.
	var conflictID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM reservations
		 WHERE room_id = ? AND status IN `+blockingStatuses+`
		   AND start_time < ? AND end_time > ?
		 LIMIT 1`,
		res.RoomID, res.TimeRange.End, res.TimeRange.Start,
	).Scan(&conflictID)
	if err == nil {
		return apperr.BookingConflict(res.RoomID, res.TimeRange.Start, res.TimeRange.End, conflictID)
	}
	if err != sql.ErrNoRows {
		return apperr.Internal("check booking overlap", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reservations
		 (id, motel_id, room_id, user_id, start_time, end_time, status, total_amount_cents, currency, special_requests)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.MotelID, res.RoomID, res.UserID,
		res.TimeRange.Start, res.TimeRange.End, res.Status,
		res.TotalAmount.AmountCents, res.TotalAmount.Currency, res.SpecialRequests)
	if err != nil {
		return apperr.Internal("insert reservation", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal("commit booking transaction", err)
	}
	return nil
}

// ConfirmWithOverlapGuard persists a confirmation after re-proving the
// window is still free.  Pending reservations do not block at creation, so
// two overlapping Pendings can coexist; whichever confirms first wins and
// the guard here makes the loser's confirm fail with a BookingConflict.
// Same transaction shape as CreateWithOverlapGuard: lock the room row,
// re-check blocking overlaps (excluding this reservation), then update.
func (r *ReservationRepo) ConfirmWithOverlapGuard(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal("begin confirm transaction", err)
	}
	defer tx.Rollback()

	var roomID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM rooms WHERE id = ? FOR UPDATE`, res.RoomID,
	).Scan(&roomID)
	if err == sql.ErrNoRows {
		return apperr.NotFound("room", res.RoomID)
	}
	if err != nil {
		return apperr.Internal("lock room", err)
	}

	var conflictID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM reservations
		 WHERE room_id = ? AND id <> ? AND status IN `+blockingStatuses+`
		   AND start_time < ? AND end_time > ?
		 LIMIT 1`,
		res.RoomID, res.ID, res.TimeRange.End, res.TimeRange.Start,
	).Scan(&conflictID)
	if err == nil {
		return apperr.BookingConflict(res.RoomID, res.TimeRange.Start, res.TimeRange.End, conflictID)
	}
	if err != sql.ErrNoRows {
		return apperr.Internal("check confirm overlap", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, payment_id = ?,
		 check_in_time = ?, check_out_time = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		res.Status, uuidPtr(res.PaymentID), res.CheckInTime, res.CheckOutTime, res.ID)
	if err != nil {
		return apperr.Internal("confirm reservation", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("reservation", res.ID)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal("commit confirm transaction", err)
	}
	return nil
}

// GetByID fetches a reservation by id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("reservation", id)
	}
	if err != nil {
		return nil, apperr.Internal("get reservation", err)
	}
	return res, nil
}

// ListByUser returns the user's reservations, most recent first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
		WHERE user_id = ? ORDER BY start_time DESC`
	return r.list(ctx, "list user reservations", q, userID)
}

// ListByMotel returns all reservations across a motel's rooms, for owner
// views.
func (r *ReservationRepo) ListByMotel(ctx context.Context, motelID uuid.UUID) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
		WHERE motel_id = ? ORDER BY start_time DESC`
	return r.list(ctx, "list motel reservations", q, motelID)
}

// ListBlockingByMotel returns the motel's CONFIRMED and CHECKED_IN
// reservations overlapping [start, end), grouped by room.  Used by the
// availability search to filter candidate rooms in one query.
func (r *ReservationRepo) ListBlockingByMotel(ctx context.Context, motelID uuid.UUID, start, end time.Time) (map[uuid.UUID][]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
		WHERE motel_id = ? AND status IN ` + blockingStatuses + `
		  AND start_time < ? AND end_time > ?`
	all, err := r.list(ctx, "list blocking reservations", q, motelID, end, start)
	if err != nil {
		return nil, err
	}
	byRoom := make(map[uuid.UUID][]*model.Reservation, len(all))
	for _, res := range all {
		byRoom[res.RoomID] = append(byRoom[res.RoomID], res)
	}
	return byRoom, nil
}

// ListNoShowCandidates returns CONFIRMED reservations whose window ended at
// or before the cutoff.  Consumed by the no-show sweeper.
func (r *ReservationRepo) ListNoShowCandidates(ctx context.Context, cutoff time.Time) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
		WHERE status = 'CONFIRMED' AND end_time <= ?`
	return r.list(ctx, "list no-show candidates", q, cutoff)
}

func (r *ReservationRepo) list(ctx context.Context, op, q string, args ...any) ([]*model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	defer rows.Close()

	var out []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, apperr.Internal(op, err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(op, err)
	}
	return out, nil
}

// Update persists the columns a transition can change: status, payment link
// and the check-in/out stamps.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations SET status = ?, payment_id = ?,
		check_in_time = ?, check_out_time = ?, updated_at = UTC_TIMESTAMP()
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q,
		res.Status, uuidPtr(res.PaymentID), res.CheckInTime, res.CheckOutTime, res.ID)
	if err != nil {
		return apperr.Internal("update reservation", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("reservation", res.ID)
	}
	return nil
}

// uuidPtr adapts *uuid.UUID to a nullable driver value.
func uuidPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	var paymentID uuid.NullUUID
	var specialRequests sql.NullString
	var checkIn, checkOut sql.NullTime
	err := row.Scan(
		&res.ID, &res.MotelID, &res.RoomID, &res.UserID,
		&res.TimeRange.Start, &res.TimeRange.End,
		&res.Status, &res.TotalAmount.AmountCents, &res.TotalAmount.Currency,
		&paymentID, &specialRequests, &checkIn, &checkOut,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paymentID.Valid {
		id := paymentID.UUID
		res.PaymentID = &id
	}
	if specialRequests.Valid {
		res.SpecialRequests = &specialRequests.String
	}
	if checkIn.Valid {
		t := checkIn.Time
		res.CheckInTime = &t
	}
	if checkOut.Valid {
		t := checkOut.Time
		res.CheckOutTime = &t
	}
	return &res, nil
}
