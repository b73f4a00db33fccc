package models

import "time"

// TokenPurpose distinguishes one-time tokens sent by email.
type TokenPurpose string

const (
	PurposePasswordReset     TokenPurpose = "password_reset"
	PurposeEmailVerification TokenPurpose = "email_verification"
)

// OneTimeToken is a single-use secret delivered in an emailed link.
type OneTimeToken struct {
	Token     string
	UserID    string
	Email     string
	Purpose   TokenPurpose
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t *OneTimeToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}
