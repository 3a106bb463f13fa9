package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentCreated    PaymentStatus = "CREATED"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentApproved   PaymentStatus = "APPROVED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// Payment is a monetary transaction for exactly one reservation, driven
// through the external gateway.  The amount is copied from the reservation's
// total at creation and must still match it at processing time.  Approved
// and Refunded are terminal; Failed is terminal except that it can never be
// refunded (refund requires prior approval).
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	ReservationID uuid.UUID     `json:"reservation_id"`
	Amount        Money         `json:"amount"`
	Status        PaymentStatus `json:"status"`
	PaymentMethod string        `json:"payment_method"`
	TransactionID *string       `json:"transaction_id,omitempty"`
	FailureReason *string       `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time    `json:"processed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	events []Event
}

// NewPayment validates and constructs a payment in Created for the given
// reservation.
func NewPayment(reservationID uuid.UUID, amount Money, paymentMethod string) (*Payment, error) {
	if reservationID == uuid.Nil {
		return nil, apperr.InvalidInput("reservation ID cannot be empty")
	}
	if strings.TrimSpace(paymentMethod) == "" {
		return nil, apperr.InvalidInput("payment method cannot be empty")
	}
	return &Payment{
		ID:            uuid.New(),
		ReservationID: reservationID,
		Amount:        amount,
		Status:        PaymentCreated,
		PaymentMethod: paymentMethod,
	}, nil
}

// MarkProcessing moves a Created payment to Processing.  Processing must be
// entered before any terminal outcome is recorded.
func (p *Payment) MarkProcessing() error {
	if p.Status != PaymentCreated {
		return apperr.InvalidOperation("process payment", string(p.Status), string(PaymentCreated))
	}
	p.Status = PaymentProcessing
	return nil
}

// Approve moves a Processing payment to the terminal Approved state, records
// the gateway transaction id, stamps the processing time and records a
// PaymentApprovedEvent.
func (p *Payment) Approve(transactionID string) error {
	if p.Status != PaymentProcessing {
		return apperr.InvalidOperation("approve payment", string(p.Status), string(PaymentProcessing))
	}
	if strings.TrimSpace(transactionID) == "" {
		return apperr.InvalidInput("transaction ID cannot be empty")
	}
	now := time.Now().UTC()
	p.Status = PaymentApproved
	p.TransactionID = &transactionID
	p.ProcessedAt = &now
	p.events = append(p.events, PaymentApprovedEvent{
		PaymentID:     p.ID,
		ReservationID: p.ReservationID,
		TransactionID: transactionID,
		OccurredAt:    now,
	})
	return nil
}

// Fail moves the payment to Failed with the given reason.  Approved and
// Refunded payments can never be failed; a stale failure notification
// arriving after approval is therefore rejected here.
func (p *Payment) Fail(reason string) error {
	if p.Status == PaymentApproved || p.Status == PaymentRefunded {
		return apperr.InvalidOperation("fail payment", string(p.Status), "not APPROVED or REFUNDED")
	}
	if strings.TrimSpace(reason) == "" {
		return apperr.InvalidInput("failure reason cannot be empty")
	}
	now := time.Now().UTC()
	p.Status = PaymentFailed
	p.FailureReason = &reason
	p.ProcessedAt = &now
	return nil
}

// Refund moves an Approved payment to the terminal Refunded state.
func (p *Payment) Refund() error {
	if p.Status != PaymentApproved {
		return apperr.InvalidOperation("refund payment", string(p.Status), string(PaymentApproved))
	}
	p.Status = PaymentRefunded
	return nil
}

// DrainEvents returns and clears the events recorded since the last drain.
func (p *Payment) DrainEvents() []Event {
	evs := p.events
	p.events = nil
	return evs
}
