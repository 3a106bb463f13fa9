package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/middleware"
	"github.com/baltgc/gomotel/internal/model"
	"github.com/baltgc/gomotel/internal/service"
)

// PaymentHandler serves payment creation, processing and refunds.
type PaymentHandler struct {
	Payments *service.PaymentService
	Booking  *service.BookingService
}

func NewPaymentHandler(payments *service.PaymentService, booking *service.BookingService) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Booking: booking}
}

// Create handles POST /v1/reservations/:id/payments. Only the booking
// customer may attach a payment.
func (h *PaymentHandler) Create(c echo.Context) error {
	res, err := h.ownReservation(c)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.Payments.CreateForReservation(c.Request().Context(), res.ID, req.PaymentMethod)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Process handles POST /v1/payments/:id/process, charging the gateway.
func (h *PaymentHandler) Process(c echo.Context) error {
	p, err := h.ownPayment(c)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		PayerEmail string `json:"payer_email"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PayerEmail == "" {
		return respondError(c, apperr.InvalidInput("payer_email is required"))
	}
	processed, err := h.Payments.Process(c.Request().Context(), p.ID, req.PayerEmail)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, processed)
}

// Get handles GET /v1/payments/:id.
func (h *PaymentHandler) Get(c echo.Context) error {
	p, err := h.ownPayment(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GetByReservation handles GET /v1/reservations/:id/payment.
func (h *PaymentHandler) GetByReservation(c echo.Context) error {
	res, err := h.ownReservation(c)
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.Payments.GetByReservation(c.Request().Context(), res.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListMine handles GET /v1/payments/mine.
func (h *PaymentHandler) ListMine(c echo.Context) error {
	list, err := h.Payments.ListByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Refund handles POST /v1/payments/:id/refund. Route-level role checks
// restrict this to OWNER and ADMIN.
func (h *PaymentHandler) Refund(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.Payments.Refund(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ownReservation loads reservation :id and checks the caller booked it
// (admins pass).
func (h *PaymentHandler) ownReservation(c echo.Context) (*model.Reservation, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	res, err := h.Booking.Get(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if res.UserID != middleware.UserID(c) && middleware.Role(c) != model.RoleAdmin {
		return nil, apperr.Forbidden("reservation belongs to another user")
	}
	return res, nil
}

// ownPayment loads payment :id and checks it hangs off the caller's
// reservation (admins pass).
func (h *PaymentHandler) ownPayment(c echo.Context) (*model.Payment, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	p, err := h.Payments.Get(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if middleware.Role(c) == model.RoleAdmin {
		return p, nil
	}
	res, err := h.Booking.Get(c.Request().Context(), p.ReservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != middleware.UserID(c) {
		return nil, apperr.Forbidden("payment belongs to another user")
	}
	return p, nil
}
