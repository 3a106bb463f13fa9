package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/gateway"
	"github.com/baltgc/gomotel/internal/model"
)

// PaymentService drives payments through the external gateway and keeps the
// paired reservation consistent.  The payment's status is the source of
// truth; the reservation cascade (confirm on approval, cancel on refund) is
// an idempotent dependent effect that is safe to re-apply.
type PaymentService struct {
	payments     PaymentStore
	reservations ReservationStore
	gateway      Gateway
	publisher    EventPublisher
}

// NewPaymentService wires a PaymentService.
func NewPaymentService(payments PaymentStore, reservations ReservationStore, gw Gateway, publisher EventPublisher) *PaymentService {
	return &PaymentService{payments: payments, reservations: reservations, gateway: gw, publisher: publisher}
}

// CreateForReservation creates the single payment a reservation may carry,
// copying the reservation's total.  A second create is a Conflict.
func (s *PaymentService) CreateForReservation(ctx context.Context, reservationID uuid.UUID, paymentMethod string) (*model.Payment, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.PaymentID != nil {
		return nil, apperr.Conflict("duplicate payment", "reservation %s already has a payment", reservationID)
	}
	p, err := model.NewPayment(reservationID, res.TotalAmount, paymentMethod)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := res.AssignPayment(p.ID); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, res); err != nil {
		return nil, err
	}
	return p, nil
}

// Process charges a Created payment through the gateway.  The payment is
// moved to Processing before the call; if the call itself errors the
// payment is failed first and the gateway error propagates after, so a
// payment never stays stuck in Processing.  The gateway's answer maps to
// local transitions: approved → Approve (and cascade-confirm), rejected or
// cancelled → Fail, pending → stay Processing.
func (s *PaymentService) Process(ctx context.Context, paymentID uuid.UUID, payerEmail string) (*model.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	res, err := s.reservations.GetByID(ctx, p.ReservationID)
	if err != nil {
		return nil, err
	}
	if p.Amount.AmountCents != res.TotalAmount.AmountCents || p.Amount.Currency != res.TotalAmount.Currency {
		log.Printf("payments: SEVERE amount mismatch: payment %s has %s, reservation %s totals %s",
			p.ID, p.Amount, res.ID, res.TotalAmount)
		return nil, apperr.AmountMismatch(p.ID, p.Amount.AmountCents, res.TotalAmount.AmountCents)
	}

	if err := p.MarkProcessing(); err != nil {
		return nil, err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return nil, err
	}

	gp, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		Amount:            p.Amount,
		Description:       fmt.Sprintf("reservation %s", p.ReservationID),
		PaymentMethodID:   p.PaymentMethod,
		PayerEmail:        payerEmail,
		ExternalReference: p.ID.String(),
		IdempotencyKey:    p.ID.String(),
	})
	if err != nil {
		// Fail-safe: never leave the payment dangling in Processing.
		if ferr := p.Fail(err.Error()); ferr == nil {
			if uerr := s.payments.Update(ctx, p); uerr != nil {
				log.Printf("payments: record gateway failure for %s: %v", p.ID, uerr)
			}
		}
		return nil, err
	}

	if err := s.applyGatewayStatus(ctx, p, gp); err != nil {
		return nil, err
	}
	return p, nil
}

// applyGatewayStatus maps a gateway-side payment status onto local
// transitions.  Both the synchronous flow and the webhook reconciler run
// through here, so cascades behave identically regardless of trigger.
func (s *PaymentService) applyGatewayStatus(ctx context.Context, p *model.Payment, gp *gateway.Payment) error {
	switch gp.Status {
	case gateway.StatusApproved:
		return s.approve(ctx, p, fmt.Sprintf("%d", gp.ID))
	case gateway.StatusRejected, gateway.StatusCancelled:
		return s.fail(ctx, p, gp.StatusDetail)
	case gateway.StatusRefunded:
		return s.refundLocally(ctx, p)
	case gateway.StatusPending:
		// Not terminal on the gateway side; stay in Processing until a
		// webhook resolves it.
		return nil
	default:
		log.Printf("payments: unknown gateway status %q for payment %s", gp.Status, p.ID)
		return nil
	}
}

// approve records the approval and cascade-confirms the reservation when it
// is still Pending.  A reservation already Confirmed or later is left
// alone, which makes re-delivery of an approval harmless.  The confirm runs
// through the overlap guard: when a competing overlapping reservation
// confirmed first, the cascade fails with a BookingConflict, the payment
// stays Approved, and the caller can refund it.
func (s *PaymentService) approve(ctx context.Context, p *model.Payment, transactionID string) error {
	if err := p.Approve(transactionID); err != nil {
		return err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return err
	}
	res, err := s.reservations.GetByID(ctx, p.ReservationID)
	if err != nil {
		return err
	}
	if res.Status == model.ReservationPending {
		if err := res.Confirm(); err != nil {
			return err
		}
		if err := s.reservations.ConfirmWithOverlapGuard(ctx, res); err != nil {
			log.Printf("payments: confirm after approval of %s failed, refund required: %v", p.ID, err)
			return err
		}
	}
	s.publishPayment(ctx, p)
	s.publishReservation(ctx, res)
	return nil
}

func (s *PaymentService) fail(ctx context.Context, p *model.Payment, reason string) error {
	if reason == "" {
		reason = "rejected by gateway"
	}
	if err := p.Fail(reason); err != nil {
		return err
	}
	return s.payments.Update(ctx, p)
}

// Refund refunds an Approved payment.  The gateway refund is best-effort:
// on gateway failure the local refund still proceeds and the divergence is
// logged for manual reconciliation.  The reservation is cancelled afterwards
// unless the stay already finished or was cancelled.
func (s *PaymentService) Refund(ctx context.Context, paymentID uuid.UUID) (*model.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentApproved {
		return nil, apperr.InvalidOperation("refund payment", string(p.Status), string(model.PaymentApproved))
	}
	if p.TransactionID != nil {
		if err := s.gateway.Refund(ctx, *p.TransactionID); err != nil {
			log.Printf("payments: RECONCILIATION REQUIRED: gateway refund of %s (txn %s) failed: %v",
				p.ID, *p.TransactionID, err)
		}
	}
	if err := s.refundLocally(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// refundLocally applies the local refund transition and cancels the
// reservation unless it is CheckedOut or Cancelled.
func (s *PaymentService) refundLocally(ctx context.Context, p *model.Payment) error {
	if err := p.Refund(); err != nil {
		return err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return err
	}
	res, err := s.reservations.GetByID(ctx, p.ReservationID)
	if err != nil {
		return err
	}
	if res.Status != model.ReservationCheckedOut && res.Status != model.ReservationCancelled {
		if err := res.Cancel(); err != nil {
			return err
		}
		if err := s.reservations.Update(ctx, res); err != nil {
			return err
		}
		s.publishReservation(ctx, res)
	}
	return nil
}

// Get fetches a payment by id.
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

// GetByReservation fetches the payment attached to a reservation.
func (s *PaymentService) GetByReservation(ctx context.Context, reservationID uuid.UUID) (*model.Payment, error) {
	return s.payments.GetByReservationID(ctx, reservationID)
}

// ListByUser returns the payments behind the user's reservations.
func (s *PaymentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

func (s *PaymentService) publishPayment(ctx context.Context, p *model.Payment) {
	for _, ev := range p.DrainEvents() {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Printf("payments: publish %s failed: %v", ev.EventName(), err)
		}
	}
}

func (s *PaymentService) publishReservation(ctx context.Context, res *model.Reservation) {
	for _, ev := range res.DrainEvents() {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Printf("payments: publish %s failed: %v", ev.EventName(), err)
		}
	}
}
