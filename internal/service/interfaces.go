// Package service implements the application's use cases over small storage
// interfaces.  Handlers call services; services own transactionally
// meaningful sequencing (booking guard, payment transitions, reservation
// cascades) and publish domain events after persisting.  Role and ownership
// checks stay at the HTTP boundary.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/gateway"
	"github.com/baltgc/gomotel/internal/model"
)

// MotelStore is the slice of motel persistence the services need.
type MotelStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Motel, error)
}

// RoomStore is the slice of room persistence the services need.
type RoomStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	ListByMotel(ctx context.Context, motelID uuid.UUID) ([]*model.Room, error)
}

// ReservationStore persists reservations.  CreateWithOverlapGuard and
// ConfirmWithOverlapGuard are the booking linearization points:
// implementations must make the overlap check and the insert/update atomic.
// The confirm-time guard exists because Pending reservations do not block,
// so overlapping Pendings can coexist until exactly one of them confirms.
type ReservationStore interface {
	CreateWithOverlapGuard(ctx context.Context, res *model.Reservation) error
	ConfirmWithOverlapGuard(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Reservation, error)
	ListByMotel(ctx context.Context, motelID uuid.UUID) ([]*model.Reservation, error)
	ListBlockingByMotel(ctx context.Context, motelID uuid.UUID, start, end time.Time) (map[uuid.UUID][]*model.Reservation, error)
	ListNoShowCandidates(ctx context.Context, cutoff time.Time) ([]*model.Reservation, error)
	Update(ctx context.Context, res *model.Reservation) error
}

// PaymentStore persists payments.
type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetByReservationID(ctx context.Context, reservationID uuid.UUID) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Payment, error)
	Update(ctx context.Context, p *model.Payment) error
}

// Gateway is the external payment processor surface.
type Gateway interface {
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Payment, error)
	GetPayment(ctx context.Context, id string) (*gateway.Payment, error)
	Refund(ctx context.Context, id string) error
}

// EventPublisher delivers domain events to the broker.  Delivery is
// best-effort; services log failures and move on.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.Event) error
}
