package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
)

// RoomType categorizes a room for display and pricing tiers.
type RoomType string

const (
	RoomTypeStandard RoomType = "STANDARD"
	RoomTypeDeluxe   RoomType = "DELUXE"
	RoomTypeSuite    RoomType = "SUITE"
)

// Room is a bookable unit within a motel, priced per hour.  A room belongs
// to exactly one motel and is referenced by reservations by id; it never
// owns them (a room with reservations cannot be hard-deleted).
//
// Fields:
//  ID            – primary key identifier.
//  MotelID       – owning motel.
//  RoomNumber    – number unique within the motel.
//  Name          – display name.
//  Description   – free-form description.
//  Type          – STANDARD, DELUXE or SUITE.
//  Capacity      – maximum number of guests, always > 0.
//  PricePerHour  – hourly rate.
//  IsAvailable   – administrative flag, independent of booking state.
//  ImageURL      – optional photo.
type Room struct {
	ID           uuid.UUID `json:"id"`
	MotelID      uuid.UUID `json:"motel_id"`
	RoomNumber   string    `json:"room_number"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Type         RoomType  `json:"type"`
	Capacity     int       `json:"capacity"`
	PricePerHour Money     `json:"price_per_hour"`
	IsAvailable  bool      `json:"is_available"`
	ImageURL     *string   `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewRoom validates and constructs an available Room with a fresh id.
func NewRoom(motelID uuid.UUID, roomNumber, name, description string, roomType RoomType, capacity int, pricePerHour Money, imageURL *string) (*Room, error) {
	if motelID == uuid.Nil {
		return nil, apperr.InvalidInput("motel ID cannot be empty")
	}
	if strings.TrimSpace(roomNumber) == "" {
		return nil, apperr.InvalidInput("room number cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidInput("room name cannot be empty")
	}
	if capacity <= 0 {
		return nil, apperr.InvalidInput("capacity must be greater than zero")
	}
	switch roomType {
	case RoomTypeStandard, RoomTypeDeluxe, RoomTypeSuite:
	default:
		return nil, apperr.InvalidInput("unknown room type %q", roomType)
	}
	return &Room{
		ID:           uuid.New(),
		MotelID:      motelID,
		RoomNumber:   roomNumber,
		Name:         name,
		Description:  description,
		Type:         roomType,
		Capacity:     capacity,
		PricePerHour: pricePerHour,
		IsAvailable:  true,
		ImageURL:     imageURL,
	}, nil
}
