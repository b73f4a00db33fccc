package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/nytevibe/nytevibe/internal/common"
	"github.com/nytevibe/nytevibe/internal/logging"
	"github.com/nytevibe/nytevibe/internal/server/users"
)

const msgInvalidData = "The given data was invalid."

type handlers struct {
	users  *users.Service
	logger logging.Logger
	login  *limiter
	mail   *limiter
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return false
	}
	return true
}

// throttle answers 429 when key is out of attempts.
func (h *handlers) throttle(w http.ResponseWriter, l *limiter, key, what string) bool {
	ok, retryAfter := l.allow(key, time.Now())
	if ok {
		return false
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeJSON(w, http.StatusTooManyRequests, envelope{
		"success":     false,
		"message":     fmt.Sprintf("Too many %s. Please try again in %d seconds.", what, retryAfter),
		"code":        "RATE_LIMIT_EXCEEDED",
		"retry_after": retryAfter,
	})
	return true
}

// serviceError writes validation and conflict errors as 422 and anything
// else as 500.
func (h *handlers) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var fe users.FieldErrors
	var ce *users.ConflictError
	switch {
	case errors.As(err, &fe):
		writeFieldErrors(w, msgInvalidData, fe)
	case errors.As(err, &ce):
		writeFieldErrors(w, ce.Message(), map[string]string{ce.Field: ce.Message()})
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "")
	}
}

func (h *handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"status": "ok"})
}

type loginRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (h *handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	login := strings.TrimSpace(firstNonEmpty(req.Email, req.Username, req.Identifier))

	fields := map[string]string{}
	if login == "" {
		fields["email"] = "The email or username field is required."
	}
	if req.Password == "" {
		fields["password"] = "The password field is required."
	}
	if len(fields) > 0 {
		writeFieldErrors(w, msgInvalidData, fields)
		return
	}

	if h.throttle(w, h.login, clientIP(r)+"|"+strings.ToLower(login), "login attempts") {
		return
	}

	s, err := h.users.Login(r.Context(), login, req.Password, req.RememberMe)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidLoginPassword) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
			return
		}
		h.serviceError(w, r, err)
		return
	}

	writeOK(w, "Login successful", envelope{
		"token":            s.Token,
		"user":             userJSON(s.User),
		"token_expires_at": s.ExpiresAt.UTC().Format(time.RFC3339),
		"remember_me":      s.RememberMe,
	})
}

func (h *handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterInput
	if !decode(w, r, &req) {
		return
	}

	s, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Registration successful. Please check your email to verify your account.",
		"data": envelope{
			"token":            s.Token,
			"user":             userJSON(s.User),
			"token_expires_at": s.ExpiresAt.UTC().Format(time.RFC3339),
			"remember_me":      false,
		},
	})
}

// ValidateToken answers 401 with valid:false instead of going through
// authenticated, so clients can read the flag on failure.
func (h *handlers) ValidateToken(w http.ResponseWriter, r *http.Request) {
	user, claims, err := h.authenticate(r)
	if err != nil {
		status, code, msg := tokenFailure(err)
		writeJSON(w, status, envelope{"success": false, "valid": false, "message": msg, "code": code})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"valid":   true,
		"message": "Token is valid",
		"data": envelope{
			"user":       userJSON(user),
			"expires_at": claims.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

func (h *handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	s, err := h.users.Refresh(r.Context(), userFrom(r.Context()), claimsFrom(r.Context()))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeOK(w, "Token refreshed", envelope{
		"token":            s.Token,
		"token_expires_at": s.ExpiresAt.UTC().Format(time.RFC3339),
		"remember_me":      s.RememberMe,
	})
}

func (h *handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), claimsFrom(r.Context())); err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeOK(w, "Logged out successfully", nil)
}

func (h *handlers) User(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "", envelope{"user": userJSON(userFrom(r.Context()))})
}

func (h *handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Identifier string `json:"identifier"`
	}
	if !decode(w, r, &req) {
		return
	}
	login := strings.TrimSpace(firstNonEmpty(req.Email, req.Identifier))
	if h.throttle(w, h.mail, clientIP(r)+"|"+strings.ToLower(login), "password reset requests") {
		return
	}

	if err := h.users.ForgotPassword(r.Context(), login); err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeOK(w, "If an account exists for that email, a password reset link has been sent.", nil)
}

func (h *handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req users.ResetInput
	if !decode(w, r, &req) {
		return
	}
	if err := h.users.ResetPassword(r.Context(), req); err != nil {
		if linkFailure(w, err, "password reset link") {
			return
		}
		h.serviceError(w, r, err)
		return
	}
	writeOK(w, "Your password has been reset. Please log in with your new password.", nil)
}

func (h *handlers) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.users.VerifyResetToken(r.Context(), req.Token, req.Email); err != nil {
		if !linkFailure(w, err, "password reset link") {
			h.serviceError(w, r, err)
		}
		return
	}
	writeOK(w, "Reset token is valid", envelope{"valid": true, "email": req.Email})
}

func (h *handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	q := r.URL.Query()
	user, err := h.users.VerifyEmail(r.Context(), vars["userId"], vars["hash"], q.Get("expires"), q.Get("signature"))
	if err != nil {
		if linkFailure(w, err, "verification link") {
			return
		}
		h.serviceError(w, r, err)
		return
	}
	writeOK(w, "Email verified successfully", envelope{"verified": true, "user": userJSON(user)})
}

func (h *handlers) VerifyEmailToken(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.VerifyEmailToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		if linkFailure(w, err, "verification link") {
			return
		}
		h.serviceError(w, r, err)
		return
	}
	writeOK(w, "Email verified successfully", envelope{"verified": true, "user": userJSON(user)})
}

func (h *handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if h.throttle(w, h.mail, clientIP(r)+"|"+strings.ToLower(strings.TrimSpace(req.Email)), "verification requests") {
		return
	}
	if err := h.users.ResendVerification(r.Context(), req.Email); err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeOK(w, "If the address needs verification, a new link has been sent.", nil)
}

func (h *handlers) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]
	var req map[string]string
	if !decode(w, r, &req) {
		return
	}

	available, err := h.users.Available(r.Context(), field, req[field])
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	msg := fmt.Sprintf("The %s is available.", field)
	if !available {
		msg = fmt.Sprintf("The %s has already been taken.", field)
	}
	writeOK(w, msg, envelope{"field": field, "available": available})
}

// linkFailure answers 422 with INVALID_TOKEN or TOKEN_EXPIRED for token
// errors and reports whether it wrote a response.
func linkFailure(w http.ResponseWriter, err error, what string) bool {
	var code, msg string
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		code, msg = "TOKEN_EXPIRED", fmt.Sprintf("This %s has expired.", what)
	case errors.Is(err, common.ErrInvalidToken):
		code, msg = "INVALID_TOKEN", fmt.Sprintf("This %s is invalid.", what)
	default:
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, envelope{
		"success": false,
		"message": msg,
		"code":    code,
		"data":    envelope{"valid": false},
	})
	return true
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
