// Package links recovers password-reset and email-verification parameters
// from the URLs the API sends by email.
package links

import (
	"net/url"
	"regexp"
	"strings"
)

// Link formats, in the order they are tried.
const (
	FormatPath   = "path"
	FormatParams = "params"
	FormatToken  = "token"
)

// Reset-link validation messages.
const (
	ErrResetTokenMissing = "Reset token is missing from the URL"
	ErrResetEmailMissing = "Email is missing from the URL"
	ErrResetEmailInvalid = "Invalid email format in URL"
	ErrResetTokenInvalid = "Invalid reset token format"
)

// VerificationParams are the parts of an email-verification link. Format is
// empty when nothing was recognised.
type VerificationParams struct {
	UserID    string
	Hash      string
	Token     string
	Expires   string
	Signature string
	Format    string
}

// Found reports whether any format matched.
func (p VerificationParams) Found() bool { return p.Format != "" }

var (
	verifyPath   = regexp.MustCompile(`/verify/([^/?#]+)/([^/?#]+)/?$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9._~=-]+$`)
)

// ParseVerificationLink accepts a full URL, a path, or a bare query string.
// It tries /verify/{userId}/{hash} anywhere in the path, then the user_id
// (or id) and hash query parameters, then a legacy token parameter.
func ParseVerificationLink(raw string) VerificationParams {
	u, ok := parse(raw)
	if !ok {
		return VerificationParams{}
	}
	q := u.Query()
	signed := func(p VerificationParams) VerificationParams {
		p.Expires = q.Get("expires")
		p.Signature = q.Get("signature")
		return p
	}

	if m := verifyPath.FindStringSubmatch(u.EscapedPath()); m != nil {
		userID, err1 := url.PathUnescape(m[1])
		hash, err2 := url.PathUnescape(m[2])
		if err1 == nil && err2 == nil {
			return signed(VerificationParams{UserID: userID, Hash: hash, Format: FormatPath})
		}
	}

	userID := q.Get("user_id")
	if userID == "" {
		userID = q.Get("id")
	}
	if hash := q.Get("hash"); userID != "" && hash != "" {
		return signed(VerificationParams{UserID: userID, Hash: hash, Format: FormatParams})
	}

	if token := q.Get("token"); token != "" {
		return VerificationParams{Token: token, Format: FormatToken}
	}
	return VerificationParams{}
}

// ResetLinkParams is the outcome of ValidateResetLink. Errors lists every
// violated rule.
type ResetLinkParams struct {
	Token  string
	Email  string
	Valid  bool
	Errors []string
}

// ValidateResetLink requires token and email query parameters, a
// local@domain.tld email and a URL-safe token.
func ValidateResetLink(raw string) ResetLinkParams {
	var p ResetLinkParams
	if u, ok := parse(raw); ok {
		q := u.Query()
		p.Token = strings.TrimSpace(q.Get("token"))
		p.Email = strings.TrimSpace(q.Get("email"))
	}

	if p.Token == "" {
		p.Errors = append(p.Errors, ErrResetTokenMissing)
	}
	if p.Email == "" {
		p.Errors = append(p.Errors, ErrResetEmailMissing)
	} else if !IsEmail(p.Email) {
		p.Errors = append(p.Errors, ErrResetEmailInvalid)
	}
	if p.Token != "" && !tokenPattern.MatchString(p.Token) {
		p.Errors = append(p.Errors, ErrResetTokenInvalid)
	}
	p.Valid = len(p.Errors) == 0
	return p
}

// IsEmail checks the local@domain.tld shape only.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// StripParams removes keys from the query of raw, and the
// /verify/{userId}/{hash} suffix when present, so a consumed link cannot
// be replayed. Unparseable input is returned unchanged.
func StripParams(raw string, keys ...string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, k := range keys {
		q.Del(k)
	}
	u.RawQuery = q.Encode()

	if loc := verifyPath.FindStringIndex(u.EscapedPath()); loc != nil {
		trimmed := u.EscapedPath()[:loc[0]]
		if trimmed == "" {
			trimmed = "/"
		}
		if p, err := url.PathUnescape(trimmed); err == nil {
			u.Path = p
			u.RawPath = ""
		}
	}
	return u.String()
}

// VerificationKeys are the query parameters consumed by email verification.
var VerificationKeys = []string{"user_id", "id", "hash", "token", "expires", "signature"}

// ResetKeys are the query parameters consumed by a password reset.
var ResetKeys = []string{"token", "email"}

func parse(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	if !strings.ContainsAny(raw, "/:") && !strings.HasPrefix(raw, "?") && strings.Contains(raw, "=") {
		raw = "?" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	return u, true
}
