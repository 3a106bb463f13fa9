// Package gateway implements the MercadoPago payments REST client.  Amounts
// cross the wire as decimal, so the client converts from integer cents at
// the boundary and nowhere else.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

// Charge statuses reported by MercadoPago.
const (
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusPending   = "pending"
	StatusRefunded  = "refunded"
)

// ChargeRequest describes one charge attempt.  ExternalReference carries our
// payment id so asynchronous notifications can be correlated back, and the
// idempotency key makes gateway-side retries safe.
type ChargeRequest struct {
	Amount            model.Money
	Description       string
	PaymentMethodID   string
	PayerEmail        string
	ExternalReference string
	IdempotencyKey    string
}

// Payment is a gateway-side payment as reported by MercadoPago.
type Payment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail"`
	ExternalReference string `json:"external_reference"`
}

// Client calls the MercadoPago payments API.  Every request is bounded by
// the configured timeout.
type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

// NewClient builds a Client against baseURL with the given access token.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		http:        &http.Client{Timeout: timeout},
	}
}

type chargeBody struct {
	TransactionAmount float64     `json:"transaction_amount"`
	Description       string      `json:"description"`
	PaymentMethodID   string      `json:"payment_method_id"`
	Payer             chargePayer `json:"payer"`
	ExternalReference string      `json:"external_reference"`
}

type chargePayer struct {
	Email string `json:"email"`
}

// CreateCharge submits a charge and returns the gateway's view of it.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Payment, error) {
	body := chargeBody{
		TransactionAmount: float64(req.Amount.AmountCents) / 100,
		Description:       req.Description,
		PaymentMethodID:   req.PaymentMethodID,
		Payer:             chargePayer{Email: req.PayerEmail},
		ExternalReference: req.ExternalReference,
	}
	headers := map[string]string{"X-Idempotency-Key": req.IdempotencyKey}
	return c.do(ctx, http.MethodPost, "/v1/payments", body, headers, "create charge")
}

// GetPayment fetches a payment's current state by gateway id.  The webhook
// reconciler uses this instead of trusting notification payloads.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	return c.do(ctx, http.MethodGet, "/v1/payments/"+id, nil, nil, "get payment")
}

// Refund refunds a payment in full.
func (c *Client) Refund(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/payments/%s/refunds", id), struct{}{}, nil, "refund")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, op string) (*Payment, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.GatewayFailure(op, err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperr.GatewayFailure(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.GatewayFailure(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.GatewayFailure(op,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, slurp))
	}

	var p Payment
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperr.GatewayFailure(op, err)
	}
	return &p, nil
}
