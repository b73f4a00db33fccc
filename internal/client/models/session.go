package models

import (
	"fmt"
	"time"
)

// SessionInfo is derived from the credential record for display; it is
// never stored.
type SessionInfo struct {
	HasExpiry        bool
	ExpiresAt        time.Time
	RemainingTime    time.Duration
	ExpiresAtDisplay string
}

// NewSessionInfo computes remaining time relative to now. A zero expiresAt
// yields an info without expiry.
func NewSessionInfo(expiresAt, now time.Time) SessionInfo {
	if expiresAt.IsZero() {
		return SessionInfo{ExpiresAtDisplay: "unknown"}
	}
	remaining := expiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return SessionInfo{
		HasExpiry:        true,
		ExpiresAt:        expiresAt,
		RemainingTime:    remaining,
		ExpiresAtDisplay: expiresAt.Local().Format("Jan 2, 2006 15:04"),
	}
}

// RemainingDisplay renders the remaining time as "Xd Yh", "Xh Ym" or "Ym".
func (s SessionInfo) RemainingDisplay() string {
	if !s.HasExpiry {
		return "unknown"
	}
	d := s.RemainingTime
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// CredentialRecord is the persisted bundle behind a signed-in session. An
// empty Token means unauthenticated whatever the other fields hold.
type CredentialRecord struct {
	Token      string
	ExpiresAt  time.Time
	RememberMe bool
	User       *UserProfile
}
