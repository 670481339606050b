package models

import "github.com/golang-jwt/jwt/v5"

// UserRole distinguishes dashboard owners from guardian portal sessions.
type UserRole string

const (
	RoleOwner    UserRole = "OWNER"
	RoleGuardian UserRole = "GUARDIAN"
)

// JWTClaims represents the access token payload.
//
// Owner tokens carry user_id (or sub) only; guardian tokens add owner_id and phone_number.
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	Role        UserRole `json:"role,omitempty"`
	OwnerID     string   `json:"owner_id,omitempty"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

// TenantID returns the owner every query of this session is scoped to.
func (c *JWTClaims) TenantID() string {
	if c == nil {
		return ""
	}
	if c.Role == RoleGuardian {
		return c.OwnerID
	}
	if c.UserID == "" {
		return c.Subject
	}
	return c.UserID
}
