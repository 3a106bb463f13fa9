package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/gateway"
	"github.com/baltgc/gomotel/internal/model"
)

// WebhookService reconciles asynchronous gateway notifications against
// local payment state.  Notification payloads are treated as hints only:
// the current status is always re-fetched from the gateway by id.  The
// reconciler never lets a bad notification take the process down; every
// failure path logs and discards.
type WebhookService struct {
	payments PaymentStore
	gateway  Gateway
	apply    *PaymentService
}

// NewWebhookService wires a WebhookService.  Transitions run through the
// PaymentService so webhook-triggered cascades match the synchronous flow.
func NewWebhookService(payments PaymentStore, gw Gateway, apply *PaymentService) *WebhookService {
	return &WebhookService{payments: payments, gateway: gw, apply: apply}
}

// HandleNotification processes one gateway notification.  Non-payment
// types, unresolvable references, fetch failures and unknown statuses are
// all logged and dropped.  A notification reporting the status the payment
// already has is an idempotent no-op, never a duplicate event.
func (s *WebhookService) HandleNotification(ctx context.Context, notificationType, gatewayID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("webhook: panic handling notification %s: %v", gatewayID, r)
		}
	}()

	if notificationType != "payment" {
		log.Printf("webhook: ignoring notification type %q", notificationType)
		return
	}
	gp, err := s.gateway.GetPayment(ctx, gatewayID)
	if err != nil {
		log.Printf("webhook: fetch gateway payment %s: %v", gatewayID, err)
		return
	}

	paymentID, err := uuid.Parse(gp.ExternalReference)
	if err != nil {
		log.Printf("webhook: unresolvable external reference %q on gateway payment %s", gp.ExternalReference, gatewayID)
		return
	}
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		log.Printf("webhook: payment %s not found for gateway payment %s: %v", paymentID, gatewayID, err)
		return
	}

	desired, known := desiredStatus(gp.Status)
	if !known {
		log.Printf("webhook: unknown gateway status %q for payment %s", gp.Status, p.ID)
		return
	}
	if desired == "" || p.Status == desired {
		// pending, or already reconciled: nothing to apply.
		return
	}

	if err := s.apply.applyGatewayStatus(ctx, p, gp); err != nil {
		// Stale or out-of-order notifications trip state-machine
		// preconditions; that is the machine doing its job.
		log.Printf("webhook: apply status %q to payment %s: %v", gp.Status, p.ID, err)
	}
}

// desiredStatus maps a gateway status to the local status it asks for.  An
// empty result with known=true means the status requires no local change.
func desiredStatus(gatewayStatus string) (model.PaymentStatus, bool) {
	switch gatewayStatus {
	case gateway.StatusApproved:
		return model.PaymentApproved, true
	case gateway.StatusRejected, gateway.StatusCancelled:
		return model.PaymentFailed, true
	case gateway.StatusRefunded:
		return model.PaymentRefunded, true
	case gateway.StatusPending:
		return "", true
	default:
		return "", false
	}
}
