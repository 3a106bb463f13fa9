package model

import (
	"time"

	"github.com/google/uuid"
)

// Role names used for authorization.  Customers book reservations,
// owners manage motels and rooms, admins can do both.
const (
	RoleCustomer = "CUSTOMER"
	RoleOwner    = "OWNER"
	RoleAdmin    = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  The password is never stored in plain text; only
// its bcrypt hash.
type User struct {
	ID           uuid.UUID // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
type RefreshToken struct {
	ID        uuid.UUID  // refresh_tokens.id
	UserID    uuid.UUID  // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
