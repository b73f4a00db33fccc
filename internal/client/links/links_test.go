package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVerificationLink(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want VerificationParams
	}{
		{
			name: "bare path",
			raw:  "/verify/u123/h456",
			want: VerificationParams{UserID: "u123", Hash: "h456", Format: FormatPath},
		},
		{
			name: "signed link under /email",
			raw:  "https://nytevibe.app/email/verify/42/abcdef?expires=1700000000&signature=deadbeef",
			want: VerificationParams{UserID: "42", Hash: "abcdef", Expires: "1700000000", Signature: "deadbeef", Format: FormatPath},
		},
		{
			name: "trailing slash",
			raw:  "https://nytevibe.app/verify/42/abcdef/",
			want: VerificationParams{UserID: "42", Hash: "abcdef", Format: FormatPath},
		},
		{
			name: "query params",
			raw:  "?user_id=u123&hash=h456",
			want: VerificationParams{UserID: "u123", Hash: "h456", Format: FormatParams},
		},
		{
			name: "id alias",
			raw:  "https://nytevibe.app/verify-email?id=7&hash=x&expires=9",
			want: VerificationParams{UserID: "7", Hash: "x", Expires: "9", Format: FormatParams},
		},
		{
			name: "query without leading question mark",
			raw:  "user_id=u123&hash=h456",
			want: VerificationParams{UserID: "u123", Hash: "h456", Format: FormatParams},
		},
		{
			name: "legacy token",
			raw:  "?token=legacy123",
			want: VerificationParams{Token: "legacy123", Format: FormatToken},
		},
		{
			name: "user id without hash falls through to token",
			raw:  "/verify-email?user_id=u1&token=t1",
			want: VerificationParams{Token: "t1", Format: FormatToken},
		},
		{
			name: "path wins over query",
			raw:  "/verify/a/b?user_id=c&hash=d&token=e",
			want: VerificationParams{UserID: "a", Hash: "b", Format: FormatPath},
		},
		{name: "nothing recognised", raw: "https://nytevibe.app/home?tab=venues", want: VerificationParams{}},
		{name: "empty", raw: "", want: VerificationParams{}},
		{name: "verify with one segment", raw: "/verify/u123", want: VerificationParams{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseVerificationLink(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Format != "", got.Found())
		})
	}
}

func TestValidateResetLink(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
		wantToken string
		wantEmail string
		wantErrs  []string
	}{
		{
			name:      "valid",
			raw:       "?token=abc&email=test@example.com",
			wantValid: true,
			wantToken: "abc",
			wantEmail: "test@example.com",
		},
		{
			name:      "valid full url with encoded email",
			raw:       "https://nytevibe.app/reset-password?token=Zm9v.YmFy_-~%3D&email=nia%2Bclub%40example.com",
			wantValid: true,
			wantToken: "Zm9v.YmFy_-~=",
			wantEmail: "nia+club@example.com",
		},
		{
			name:      "missing token",
			raw:       "?email=test@example.com",
			wantEmail: "test@example.com",
			wantErrs:  []string{ErrResetTokenMissing},
		},
		{
			name:      "missing email",
			raw:       "?token=abc",
			wantToken: "abc",
			wantErrs:  []string{ErrResetEmailMissing},
		},
		{
			name:      "bad email",
			raw:       "?token=abc&email=not-an-email",
			wantToken: "abc",
			wantEmail: "not-an-email",
			wantErrs:  []string{ErrResetEmailInvalid},
		},
		{
			name:     "nothing",
			raw:      "https://nytevibe.app/reset-password",
			wantErrs: []string{ErrResetTokenMissing, ErrResetEmailMissing},
		},
		{
			name:      "every defect reported",
			raw:       "?token=a%20b%3Cc&email=not-an-email",
			wantToken: "a b<c",
			wantEmail: "not-an-email",
			wantErrs:  []string{ErrResetEmailInvalid, ErrResetTokenInvalid},
		},
		{
			name:      "missing token and bad email",
			raw:       "?email=not-an-email",
			wantEmail: "not-an-email",
			wantErrs:  []string{ErrResetTokenMissing, ErrResetEmailInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateResetLink(tt.raw)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantToken, got.Token)
			assert.Equal(t, tt.wantEmail, got.Email)
			assert.Equal(t, tt.wantErrs, got.Errors)
		})
	}
}

func TestIsEmail(t *testing.T) {
	for _, ok := range []string{"a@b.co", "nia.k+x@club.example.com"} {
		assert.True(t, IsEmail(ok), ok)
	}
	for _, bad := range []string{"", "a@b", "@b.co", "a b@c.de", "a@@b.co"} {
		assert.False(t, IsEmail(bad), bad)
	}
}

func TestStripParams(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		keys []string
		want string
	}{
		{
			name: "reset link",
			raw:  "https://nytevibe.app/reset-password?token=abc&email=test%40example.com&ref=mail",
			keys: ResetKeys,
			want: "https://nytevibe.app/reset-password?ref=mail",
		},
		{
			name: "params verification",
			raw:  "https://nytevibe.app/verify-email?user_id=u1&hash=h&expires=1&signature=s",
			keys: VerificationKeys,
			want: "https://nytevibe.app/verify-email",
		},
		{
			name: "path verification",
			raw:  "https://nytevibe.app/email/verify/u1/h?expires=1&signature=s",
			keys: VerificationKeys,
			want: "https://nytevibe.app/email",
		},
		{
			name: "root path verification",
			raw:  "https://nytevibe.app/verify/u1/h",
			keys: VerificationKeys,
			want: "https://nytevibe.app/",
		},
		{
			name: "nothing to strip",
			raw:  "https://nytevibe.app/home",
			keys: ResetKeys,
			want: "https://nytevibe.app/home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripParams(tt.raw, tt.keys...))
		})
	}
}
