package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/middleware"
	"github.com/baltgc/gomotel/internal/model"
	"github.com/baltgc/gomotel/internal/repository"
)

// MotelHandler serves motel CRUD.  Writes are restricted to the motel's
// owner (or an admin); reads of the active catalog are public.
type MotelHandler struct {
	Motels *repository.MotelRepo
}

func NewMotelHandler(motels *repository.MotelRepo) *MotelHandler {
	return &MotelHandler{Motels: motels}
}

type motelReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	ZipCode     string  `json:"zip_code"`
	Country     string  `json:"country"`
	PhoneNumber string  `json:"phone_number"`
	Email       string  `json:"email"`
	ImageURL    *string `json:"image_url"`
}

// Create handles POST /v1/motels.
func (h *MotelHandler) Create(c echo.Context) error {
	var req motelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	addr, err := model.NewAddress(req.Street, req.City, req.State, req.ZipCode, req.Country)
	if err != nil {
		return respondError(c, err)
	}
	motel, err := model.NewMotel(middleware.UserID(c), req.Name, req.Description, addr, req.PhoneNumber, req.Email, req.ImageURL)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Motels.Create(c.Request().Context(), motel); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, motel)
}

// List handles GET /v1/motels: the public catalog of active motels.
func (h *MotelHandler) List(c echo.Context) error {
	motels, err := h.Motels.ListActive(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, motels)
}

// ListMine handles GET /v1/motels/mine for owners.
func (h *MotelHandler) ListMine(c echo.Context) error {
	motels, err := h.Motels.ListByOwner(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, motels)
}

// Get handles GET /v1/motels/:id.
func (h *MotelHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	motel, err := h.Motels.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, motel)
}

// Update handles PUT /v1/motels/:id.
func (h *MotelHandler) Update(c echo.Context) error {
	motel, err := h.ownedMotel(c)
	if err != nil {
		return respondError(c, err)
	}
	var req motelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	addr, err := model.NewAddress(req.Street, req.City, req.State, req.ZipCode, req.Country)
	if err != nil {
		return respondError(c, err)
	}
	updated, err := model.NewMotel(motel.OwnerID, req.Name, req.Description, addr, req.PhoneNumber, req.Email, req.ImageURL)
	if err != nil {
		return respondError(c, err)
	}
	updated.ID = motel.ID
	updated.IsActive = motel.IsActive
	updated.CreatedAt = motel.CreatedAt
	if err := h.Motels.Update(c.Request().Context(), updated); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Deactivate handles POST /v1/motels/:id/deactivate: stop taking bookings
// without touching history.
func (h *MotelHandler) Deactivate(c echo.Context) error {
	motel, err := h.ownedMotel(c)
	if err != nil {
		return respondError(c, err)
	}
	motel.IsActive = false
	if err := h.Motels.Update(c.Request().Context(), motel); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, motel)
}

// Delete handles DELETE /v1/motels/:id.  Rooms cascade.
func (h *MotelHandler) Delete(c echo.Context) error {
	motel, err := h.ownedMotel(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Motels.Delete(c.Request().Context(), motel.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ownedMotel loads the motel in :id and checks the caller owns it (admins
// pass regardless).
func (h *MotelHandler) ownedMotel(c echo.Context) (*model.Motel, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	motel, err := h.Motels.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if motel.OwnerID != middleware.UserID(c) && middleware.Role(c) != model.RoleAdmin {
		return nil, apperr.Forbidden("motel %s does not belong to you", id)
	}
	return motel, nil
}
