package models

import "time"

// GuardianAccess lets a parent sign in with the phone number recorded on their children.
type GuardianAccess struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	PasskeyHash string    `db:"passkey_hash" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// GuardianLoginRequest is the portal sign-in payload.
type GuardianLoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,len=11,numeric"`
	Passkey     string `json:"passkey" validate:"required,min=4"`
}

// GuardianLoginResponse carries the guardian token.
type GuardianLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
