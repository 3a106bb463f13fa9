package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
)

// Motel is the top-level bookable property.  A motel exclusively owns its
// rooms (deleting a motel cascades to its rooms) and references its owner by
// id only.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user who administers this motel.
//  Name        – display name.
//  Description – free-form description.
//  Address     – postal address value object.
//  PhoneNumber – contact phone.
//  Email       – contact email.
//  IsActive    – administrative flag; inactive motels accept no bookings.
//  ImageURL    – optional cover image.
type Motel struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     Address   `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewMotel validates and constructs an active Motel with a fresh id.  There
// is no other construction path; a motel never exists in a partially
// initialized state.
func NewMotel(ownerID uuid.UUID, name, description string, address Address, phone, email string, imageURL *string) (*Motel, error) {
	if ownerID == uuid.Nil {
		return nil, apperr.InvalidInput("owner ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperr.InvalidInput("motel name cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return nil, apperr.InvalidInput("motel email cannot be empty")
	}
	return &Motel{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Address:     address,
		PhoneNumber: phone,
		Email:       email,
		IsActive:    true,
		ImageURL:    imageURL,
	}, nil
}
