package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baltgc/gomotel/internal/gateway"
	"github.com/baltgc/gomotel/internal/model"
)

type webhookFixture struct {
	*paymentFixture
	svc *WebhookService
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	pf := newPaymentFixture(t)
	return &webhookFixture{
		paymentFixture: pf,
		svc:            NewWebhookService(pf.payments, pf.gateway, pf.svc),
	}
}

func TestWebhookHandleNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("ApprovedConfirmsViaSamePath", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		require.NoError(t, p.MarkProcessing())
		f.gateway.getResp = &gateway.Payment{ID: 555, Status: gateway.StatusApproved, ExternalReference: p.ID.String()}

		f.svc.HandleNotification(ctx, "payment", "555")

		assert.Equal(t, model.PaymentApproved, p.Status)
		assert.Equal(t, model.ReservationConfirmed, f.reservation.Status)
		assert.Contains(t, f.publisher.names(), "payment.approved")
	})

	t.Run("DuplicateNotificationIsNoOp", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		require.NoError(t, p.MarkProcessing())
		f.gateway.getResp = &gateway.Payment{ID: 555, Status: gateway.StatusApproved, ExternalReference: p.ID.String()}

		f.svc.HandleNotification(ctx, "payment", "555")
		eventsAfterFirst := len(f.publisher.events)
		f.svc.HandleNotification(ctx, "payment", "555")

		assert.Equal(t, model.PaymentApproved, p.Status)
		assert.Len(t, f.publisher.events, eventsAfterFirst, "no duplicate events on re-delivery")
	})

	t.Run("RejectedFailsPayment", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		require.NoError(t, p.MarkProcessing())
		f.gateway.getResp = &gateway.Payment{ID: 556, Status: gateway.StatusRejected, StatusDetail: "expired card", ExternalReference: p.ID.String()}

		f.svc.HandleNotification(ctx, "payment", "556")
		assert.Equal(t, model.PaymentFailed, p.Status)
	})

	t.Run("StaleFailureAfterApprovalRejected", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		require.NoError(t, p.MarkProcessing())
		require.NoError(t, p.Approve("555"))
		f.gateway.getResp = &gateway.Payment{ID: 555, Status: gateway.StatusRejected, ExternalReference: p.ID.String()}

		f.svc.HandleNotification(ctx, "payment", "555")
		assert.Equal(t, model.PaymentApproved, p.Status, "approved payment survives a stale failure")
	})

	t.Run("RefundedRefundsAndCancels", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		require.NoError(t, p.MarkProcessing())
		require.NoError(t, p.Approve("557"))
		require.NoError(t, f.reservation.Confirm())
		f.gateway.getResp = &gateway.Payment{ID: 557, Status: gateway.StatusRefunded, ExternalReference: p.ID.String()}

		f.svc.HandleNotification(ctx, "payment", "557")
		assert.Equal(t, model.PaymentRefunded, p.Status)
		assert.Equal(t, model.ReservationCancelled, f.reservation.Status)
	})

	t.Run("NonPaymentTypeIgnored", func(t *testing.T) {
		f := newWebhookFixture(t)
		f.svc.HandleNotification(ctx, "merchant_order", "1")
		assert.Empty(t, f.gateway.refundCalls)
	})

	t.Run("GatewayFetchFailureDiscarded", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		f.gateway.getErr = errBoom
		f.svc.HandleNotification(ctx, "payment", "558")
		assert.Equal(t, model.PaymentCreated, p.Status)
	})

	t.Run("UnresolvableReferenceDiscarded", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		f.gateway.getResp = &gateway.Payment{ID: 559, Status: gateway.StatusApproved, ExternalReference: "not-a-uuid"}
		f.svc.HandleNotification(ctx, "payment", "559")
		assert.Equal(t, model.PaymentCreated, p.Status)
	})

	t.Run("UnknownStatusLoggedOnly", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		require.NoError(t, p.MarkProcessing())
		f.gateway.getResp = &gateway.Payment{ID: 560, Status: "in_mediation", ExternalReference: p.ID.String()}
		f.svc.HandleNotification(ctx, "payment", "560")
		assert.Equal(t, model.PaymentProcessing, p.Status)
	})

	t.Run("PendingIsNoOp", func(t *testing.T) {
		f := newWebhookFixture(t)
		p := f.createPayment(t)
		require.NoError(t, p.MarkProcessing())
		f.gateway.getResp = &gateway.Payment{ID: 561, Status: gateway.StatusPending, ExternalReference: p.ID.String()}
		f.svc.HandleNotification(ctx, "payment", "561")
		assert.Equal(t, model.PaymentProcessing, p.Status)
	})
}
