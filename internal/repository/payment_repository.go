package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

// PaymentRepo provides persistence for payments.  The reservation_id column
// carries a unique index enforcing the one-payment-per-reservation rule at
// the storage layer, backing up the same check in the service.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, reservation_id, amount_cents, currency, status,
	payment_method, transaction_id, failure_reason, processed_at, created_at, updated_at`

// Create inserts a new payment row.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments
		(id, reservation_id, amount_cents, currency, status, payment_method)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.ReservationID, p.Amount.AmountCents, p.Amount.Currency, p.Status, p.PaymentMethod)
	if isDuplicateKey(err) {
		return apperr.Conflict("duplicate payment",
			"reservation %s already has a payment", p.ReservationID)
	}
	if err != nil {
		return apperr.Internal("create payment", err)
	}
	return nil
}

// GetByID fetches a payment by id.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("payment", id)
	}
	if err != nil {
		return nil, apperr.Internal("get payment", err)
	}
	return p, nil
}

// GetByReservationID fetches the payment belonging to a reservation, if any.
func (r *PaymentRepo) GetByReservationID(ctx context.Context, reservationID uuid.UUID) (*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id = ? LIMIT 1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, q, reservationID))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("payment for reservation", reservationID)
	}
	if err != nil {
		return nil, apperr.Internal("get payment by reservation", err)
	}
	return p, nil
}

// ListByUser returns all payments behind the user's reservations, most
// recent first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Payment, error) {
	const q = `SELECT p.id, p.reservation_id, p.amount_cents, p.currency, p.status,
			p.payment_method, p.transaction_id, p.failure_reason, p.processed_at, p.created_at, p.updated_at
		FROM payments p
		JOIN reservations r ON r.id = p.reservation_id
		WHERE r.user_id = ?
		ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, apperr.Internal("list user payments", err)
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, apperr.Internal("scan payment", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list user payments", err)
	}
	return out, nil
}

// Update persists the columns a transition can change: status, gateway
// transaction id, failure reason and the processed stamp.
func (r *PaymentRepo) Update(ctx context.Context, p *model.Payment) error {
	const q = `UPDATE payments SET status = ?, transaction_id = ?, failure_reason = ?,
		processed_at = ?, updated_at = UTC_TIMESTAMP()
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		p.Status, p.TransactionID, p.FailureReason, p.ProcessedAt, p.ID)
	if err != nil {
		return apperr.Internal("update payment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("payment", p.ID)
	}
	return nil
}

func scanPayment(row rowScanner) (*model.Payment, error) {
	var p model.Payment
	var txnID, reason sql.NullString
	var processedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.ReservationID, &p.Amount.AmountCents, &p.Amount.Currency, &p.Status,
		&p.PaymentMethod, &txnID, &reason, &processedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if txnID.Valid {
		p.TransactionID = &txnID.String
	}
	if reason.Valid {
		p.FailureReason = &reason.String
	}
	if processedAt.Valid {
		t := processedAt.Time
		p.ProcessedAt = &t
	}
	return &p, nil
}
