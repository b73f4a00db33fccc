// Package models defines the records kept by the development API.
package models

import "time"

type User struct {
	ID              string
	Username        string
	Email           string
	Phone           string
	FirstName       string
	LastName        string
	PasswordHash    []byte
	Level           string
	Points          int
	EmailVerifiedAt *time.Time
	// Tokens issued before this instant are rejected; set on password reset.
	TokensValidAfter time.Time
	CreatedAt        time.Time
}

// Verified reports whether the email address has been confirmed.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}
