package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is a plain immutable record describing something that happened to an
// aggregate.  Entities append events to a per-operation list during a state
// transition; delivery (broker publish, logging) is an external concern and
// is never required for correctness.
type Event interface {
	// EventName is the stable name used as the message routing key.
	EventName() string
}

// ReservationCreatedEvent is recorded when a reservation enters Pending.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	MotelID       uuid.UUID `json:"motel_id"`
	RoomID        uuid.UUID `json:"room_id"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (ReservationCreatedEvent) EventName() string { return "reservation.created" }

// ReservationCancelledEvent is recorded when a reservation is cancelled.
type ReservationCancelledEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (ReservationCancelledEvent) EventName() string { return "reservation.cancelled" }

// PaymentApprovedEvent is recorded when a payment reaches Approved.  The
// idempotency guard in the webhook reconciler guarantees it is recorded at
// most once per payment.
type PaymentApprovedEvent struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	TransactionID string    `json:"transaction_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (PaymentApprovedEvent) EventName() string { return "payment.approved" }
