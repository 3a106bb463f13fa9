package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/middleware"
	"github.com/baltgc/gomotel/internal/model"
	"github.com/baltgc/gomotel/internal/repository"
	"github.com/baltgc/gomotel/internal/service"
)

// ReservationHandler serves the booking lifecycle: creation by customers
// and state transitions by motel staff.
type ReservationHandler struct {
	Booking *service.BookingService
	Motels  *repository.MotelRepo
}

func NewReservationHandler(booking *service.BookingService, motels *repository.MotelRepo) *ReservationHandler {
	return &ReservationHandler{Booking: booking, Motels: motels}
}

type createReservationReq struct {
	MotelID         uuid.UUID `json:"motel_id"`
	RoomID          uuid.UUID `json:"room_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	SpecialRequests *string   `json:"special_requests"`
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Booking.CreateReservation(c.Request().Context(),
		req.MotelID, req.RoomID, middleware.UserID(c), req.Start, req.End, req.SpecialRequests)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/reservations/:id. Visible to the booking customer,
// the motel owner, and admins.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.visibleReservation(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListMine handles GET /v1/reservations/mine.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	list, err := h.Booking.ListByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListByMotel handles GET /v1/motels/:id/reservations for the motel owner.
func (h *ReservationHandler) ListByMotel(c echo.Context) error {
	motelID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := h.requireMotelOwner(c, motelID); err != nil {
		return respondError(c, err)
	}
	list, err := h.Booking.ListByMotel(c.Request().Context(), motelID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Confirm handles POST /v1/reservations/:id/confirm.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	return h.staffTransition(c, h.Booking.Confirm)
}

// CheckIn handles POST /v1/reservations/:id/check-in.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	return h.staffTransition(c, h.Booking.CheckIn)
}

// CheckOut handles POST /v1/reservations/:id/check-out.
func (h *ReservationHandler) CheckOut(c echo.Context) error {
	return h.staffTransition(c, h.Booking.CheckOut)
}

// Cancel handles POST /v1/reservations/:id/cancel. Allowed for the booking
// customer as well as motel staff.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	res, err := h.visibleReservation(c)
	if err != nil {
		return respondError(c, err)
	}
	cancelled, err := h.Booking.Cancel(c.Request().Context(), res.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cancelled)
}

// staffTransition loads the reservation, verifies motel ownership and
// applies the given lifecycle transition.
func (h *ReservationHandler) staffTransition(c echo.Context, apply func(ctx context.Context, id uuid.UUID) (*model.Reservation, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.Booking.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if _, err := h.requireMotelOwner(c, res.MotelID); err != nil {
		return respondError(c, err)
	}
	updated, err := apply(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// visibleReservation loads :id and checks the caller may see it: the
// booking customer, the motel owner, or an admin.
func (h *ReservationHandler) visibleReservation(c echo.Context) (*model.Reservation, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	res, err := h.Booking.Get(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	caller := middleware.UserID(c)
	if res.UserID == caller || middleware.Role(c) == model.RoleAdmin {
		return res, nil
	}
	motel, err := h.Motels.GetByID(c.Request().Context(), res.MotelID)
	if err != nil {
		return nil, err
	}
	if motel.OwnerID != caller {
		return nil, apperr.Forbidden("reservation belongs to another user")
	}
	return res, nil
}

// requireMotelOwner loads the motel and checks the caller owns it
// (admins pass).
func (h *ReservationHandler) requireMotelOwner(c echo.Context, motelID uuid.UUID) (*model.Motel, error) {
	motel, err := h.Motels.GetByID(c.Request().Context(), motelID)
	if err != nil {
		return nil, err
	}
	if motel.OwnerID != middleware.UserID(c) && middleware.Role(c) != model.RoleAdmin {
		return nil, apperr.Forbidden("motel belongs to another owner")
	}
	return motel, nil
}
