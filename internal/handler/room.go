package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
	"github.com/baltgc/gomotel/internal/repository"
	"github.com/baltgc/gomotel/internal/service"
)

// RoomHandler serves room CRUD under a motel plus the availability search.
type RoomHandler struct {
	Rooms    *repository.RoomRepo
	Motels   *MotelHandler // reuses the ownership check
	Booking  *service.BookingService
	Currency string
}

func NewRoomHandler(rooms *repository.RoomRepo, motels *MotelHandler, booking *service.BookingService, currency string) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Motels: motels, Booking: booking, Currency: currency}
}

type roomReq struct {
	RoomNumber        string  `json:"room_number"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Type              string  `json:"type"`
	Capacity          int     `json:"capacity"`
	PricePerHourCents int64   `json:"price_per_hour_cents"`
	ImageURL          *string `json:"image_url"`
}

// Create handles POST /v1/motels/:id/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	motel, err := h.Motels.ownedMotel(c)
	if err != nil {
		return respondError(c, err)
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	price, err := model.NewMoney(req.PricePerHourCents, h.Currency)
	if err != nil {
		return respondError(c, err)
	}
	room, err := model.NewRoom(motel.ID, req.RoomNumber, req.Name, req.Description,
		model.RoomType(req.Type), req.Capacity, price, req.ImageURL)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// List handles GET /v1/motels/:id/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	motelID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	rooms, err := h.Rooms.ListByMotel(c.Request().Context(), motelID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Update handles PUT /v1/motels/:id/rooms/:roomID.
func (h *RoomHandler) Update(c echo.Context) error {
	room, err := h.ownedRoom(c)
	if err != nil {
		return respondError(c, err)
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	price, err := model.NewMoney(req.PricePerHourCents, h.Currency)
	if err != nil {
		return respondError(c, err)
	}
	updated, err := model.NewRoom(room.MotelID, req.RoomNumber, req.Name, req.Description,
		model.RoomType(req.Type), req.Capacity, price, req.ImageURL)
	if err != nil {
		return respondError(c, err)
	}
	updated.ID = room.ID
	updated.IsAvailable = room.IsAvailable
	updated.CreatedAt = room.CreatedAt
	if err := h.Rooms.Update(c.Request().Context(), updated); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// SetAvailability handles POST /v1/motels/:id/rooms/:roomID/availability
// flipping the administrative flag.
func (h *RoomHandler) SetAvailability(c echo.Context) error {
	room, err := h.ownedRoom(c)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Available bool `json:"available"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	room.IsAvailable = req.Available
	if err := h.Rooms.Update(c.Request().Context(), room); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /v1/motels/:id/rooms/:roomID.
func (h *RoomHandler) Delete(c echo.Context) error {
	room, err := h.ownedRoom(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Rooms.Delete(c.Request().Context(), room.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Available handles GET /v1/motels/:id/rooms/available?start=&end=&capacity=.
// Timestamps are RFC 3339.
func (h *RoomHandler) Available(c echo.Context) error {
	motelID, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return respondError(c, apperr.InvalidInput("start must be RFC 3339"))
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return respondError(c, apperr.InvalidInput("end must be RFC 3339"))
	}
	capacity := 0
	if raw := c.QueryParam("capacity"); raw != "" {
		capacity, err = strconv.Atoi(raw)
		if err != nil || capacity < 0 {
			return respondError(c, apperr.InvalidInput("capacity must be a non-negative integer"))
		}
	}
	rooms, err := h.Booking.AvailableRooms(c.Request().Context(), motelID, start, end, capacity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// ownedRoom checks motel ownership on :id, then loads :roomID and verifies
// it belongs to that motel.
func (h *RoomHandler) ownedRoom(c echo.Context) (*model.Room, error) {
	motel, err := h.Motels.ownedMotel(c)
	if err != nil {
		return nil, err
	}
	roomID, err := pathID(c, "roomID")
	if err != nil {
		return nil, err
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), roomID)
	if err != nil {
		return nil, err
	}
	if room.MotelID != motel.ID {
		return nil, apperr.NotFound("room", roomID)
	}
	return room, nil
}
