package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baltgc/gomotel/internal/service"
)

// WebhookHandler receives MercadoPago notifications. It always answers
// 200 so the gateway stops retrying; reconciliation failures are logged
// inside the service.
type WebhookHandler struct {
	Webhooks *service.WebhookService
}

func NewWebhookHandler(webhooks *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{Webhooks: webhooks}
}

type webhookNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	// Some notification formats carry the id at the top level.
	ID string `json:"id"`
}

// MercadoPago handles POST /v1/webhooks/mercadopago.
func (h *WebhookHandler) MercadoPago(c echo.Context) error {
	var n webhookNotification
	if err := c.Bind(&n); err != nil {
		return c.NoContent(http.StatusOK)
	}
	gatewayID := n.Data.ID
	if gatewayID == "" {
		gatewayID = n.ID
	}
	h.Webhooks.HandleNotification(c.Request().Context(), n.Type, gatewayID)
	return c.NoContent(http.StatusOK)
}
