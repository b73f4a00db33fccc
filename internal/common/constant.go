// Package common contains shared constants and sentinel errors used across
// nYtevibe components.
package common

// AuthorizationHeaderName carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// Durable client-side storage keys of the credential record.
const (
	KeyAuthToken      = "auth_token"
	KeyTokenExpiresAt = "token_expires_at"
	KeyRememberMe     = "remember_me"
	KeyUserData       = "user_data"
)

// CredentialKeys lists every key owned by the credential store.
var CredentialKeys = []string{KeyAuthToken, KeyTokenExpiresAt, KeyRememberMe, KeyUserData}
