package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForgotPassword(t *testing.T) {
	var got map[string]any
	svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/forgot-password", r.URL.Path)
		got = nil
		_ = json.NewDecoder(r.Body).Decode(&got)
		reply(w, http.StatusOK, `{"success":true,"message":"Reset link sent"}`)
	})
	ctx := context.Background()

	res := svc.ForgotPassword(ctx, "nia@example.com")
	require.True(t, res.Success)
	assert.Equal(t, "Reset link sent", res.Message)
	assert.Equal(t, map[string]any{"email": "nia@example.com"}, got)

	svc.ForgotPassword(ctx, "nightowl")
	assert.Equal(t, map[string]any{"identifier": "nightowl"}, got)

	assert.Equal(t, CodeValidationError, svc.ForgotPassword(ctx, " ").Code)
}

func TestForgotPassword_NetworkError(t *testing.T) {
	res := NewAuthService(&failingClient{}, newStore(t), nil).ForgotPassword(context.Background(), "nightowl")
	assert.False(t, res.Success)
	assert.Equal(t, "Network error occurred", res.Message)
}

func TestResetPassword_TokenRejections(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		rejected bool
	}{
		{"gone", 410, `{"message":"This link is no longer valid"}`, CodeTokenExpired, true},
		{"explicit code", 400, `{"code":"TOKEN_EXPIRED","message":"Expired"}`, CodeTokenExpired, true},
		{"invalid token message", 422, `{"message":"This password reset token is invalid."}`, CodeInvalidToken, true},
		{"expired token message", 400, `{"message":"Reset token has expired"}`, CodeTokenExpired, true},
		{"token field error", 422, `{"message":"The given data was invalid.","errors":{"token":["Bad"]}}`, CodeInvalidToken, true},
		{"password field error", 422, `{"message":"The given data was invalid.","errors":{"password":["Too common"]}}`, "", false},
		{"server error", 500, `{"message":"token store down"}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
				reply(w, tt.status, tt.body)
			})

			res := svc.ResetPassword(context.Background(), "abc", "nia@example.com", "Dance4Ever!", "Dance4Ever!")
			require.False(t, res.Success)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.Equal(t, tt.rejected, res.TokenRejected())
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestResetPassword_SendsConfirmation(t *testing.T) {
	var got map[string]any
	svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		reply(w, http.StatusOK, `{"success":true}`)
	})

	res := svc.ResetPassword(context.Background(), "abc", "nia@example.com", "Dance4Ever!", "Dance4Ever!")
	require.True(t, res.Success)
	assert.Equal(t, map[string]any{
		"token":                 "abc",
		"email":                 "nia@example.com",
		"password":              "Dance4Ever!",
		"password_confirmation": "Dance4Ever!",
	}, got)
}

func TestResetPassword_Validation(t *testing.T) {
	fc := &failingClient{}
	res := NewAuthService(fc, newStore(t), nil).ResetPassword(context.Background(), "abc", "nia@example.com", "short", "shorter")
	assert.Equal(t, CodeValidationError, res.Code)
	assert.Equal(t, "Password must be at least 8 characters", res.Errors["password"])
	assert.Equal(t, "Passwords do not match", res.Errors["password_confirmation"])
	assert.Zero(t, fc.calls.Load())
}

func TestVerifyResetToken(t *testing.T) {
	svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["token"] == "good" {
			reply(w, http.StatusOK, `{"success":true,"data":{"valid":true}}`)
			return
		}
		reply(w, http.StatusOK, `{"success":true,"data":{"valid":false}}`)
	})
	ctx := context.Background()

	assert.True(t, svc.VerifyResetToken(ctx, "good", "nia@example.com").Success)

	res := svc.VerifyResetToken(ctx, "bad", "nia@example.com")
	assert.False(t, res.Success)
	assert.Equal(t, CodeInvalidToken, res.Code)

	assert.True(t, svc.VerifyResetToken(ctx, "", "nia@example.com").TokenRejected())
}

func TestVerifyEmail_PathAndSignature(t *testing.T) {
	var path, query string
	svc, creds := setup(t, func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		reply(w, http.StatusOK, `{"success":true,"message":"Email verified","data":{"user":{"id":"u123","username":"nightowl","level":"Verified"}}}`)
	})
	ctx := context.Background()
	signIn(t, creds, "tok")

	res := svc.VerifyEmail(ctx, "u123", "h456", "1700000000", "sig")
	require.True(t, res.Success)
	assert.Equal(t, "/email/verify/u123/h456", path)
	assert.Equal(t, "expires=1700000000&signature=sig", query)
	assert.Equal(t, "Verified", creds.StoredUser(ctx).Level)

	svc.VerifyEmail(ctx, "u123", "h456", "", "")
	assert.Empty(t, query)
}

func TestVerifyEmail_Expired(t *testing.T) {
	svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusForbidden, `{"message":"Invalid signature."}`)
	})

	res := svc.VerifyEmail(context.Background(), "u123", "h456", "1", "sig")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid signature.", res.Message)

	res = svc.VerifyEmail(context.Background(), "", "h456", "", "")
	assert.Equal(t, CodeInvalidToken, res.Code)
}

func TestVerifyEmailToken(t *testing.T) {
	var query string
	svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("token")
		reply(w, http.StatusGone, `{"message":"Verification link expired"}`)
	})

	res := svc.VerifyEmailToken(context.Background(), "legacy123")
	assert.Equal(t, "legacy123", query)
	assert.Equal(t, CodeTokenExpired, res.Code)
}

func TestResendVerificationEmail_RateLimited(t *testing.T) {
	svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusTooManyRequests, `{"code":"RATE_LIMIT_EXCEEDED","message":"Slow down","retry_after":45}`)
	})

	res := svc.ResendVerificationEmail(context.Background(), "nia@example.com")
	assert.True(t, res.RateLimited())
	assert.Equal(t, "Slow down", res.Message)
	assert.Equal(t, 45*time.Second, res.RetryAfter)

	assert.Equal(t, CodeValidationError, svc.ResendVerificationEmail(context.Background(), "nope").Code)
}

func TestAvailabilityChecks(t *testing.T) {
	svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/auth/check-username":
			reply(w, http.StatusOK, `{"success":true,"data":{"available":false}}`)
		case "/auth/check-email":
			reply(w, http.StatusOK, `{"available":true}`)
		default:
			reply(w, http.StatusUnprocessableEntity, `{"errors":{"phone":["Invalid phone"]}}`)
		}
	})
	ctx := context.Background()

	available, ok := svc.CheckUsername(ctx, "nightowl").Flag("available")
	require.True(t, ok)
	assert.False(t, available)

	available, ok = svc.CheckEmail(ctx, "nia@example.com").Flag("available")
	require.True(t, ok)
	assert.True(t, available)

	res := svc.CheckPhone(ctx, "+15551234567")
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid phone", res.Errors["phone"])

	assert.Equal(t, CodeValidationError, svc.CheckUsername(ctx, "").Code)
}
