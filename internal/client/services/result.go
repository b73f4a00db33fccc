// Package services contains the application services of the nYtevibe client.
// Every public operation returns a Result; transport failures and error
// replies never escape as Go errors.
package services

import (
	"errors"
	"time"

	"github.com/nytevibe/nytevibe/internal/client/client"
	"github.com/nytevibe/nytevibe/internal/client/models"
)

// Result codes. The first three mirror codes sent by the API.
const (
	CodeRateLimited     = client.CodeRateLimited
	CodeInvalidToken    = client.CodeInvalidToken
	CodeTokenExpired    = client.CodeTokenExpired
	CodeNetworkError    = "NETWORK_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeCanceled        = "CANCELED"
)

// MsgNetworkError is the message of every transport failure.
const MsgNetworkError = "Network error occurred"

// Result is the uniform outcome of an API operation.
type Result struct {
	Success bool
	// Data is the "data" object of the reply, or the whole body when the
	// deployment returns fields at the top level.
	Data    map[string]any
	Message string
	Code    string
	// Errors holds field-level validation messages.
	Errors map[string]string
	// RetryAfter is set for CodeRateLimited.
	RetryAfter time.Duration
	// User is set by operations that return the signed-in profile.
	User *models.UserProfile
}

// Canceled reports whether the caller abandoned the request. Such results
// must be discarded rather than applied.
func (r Result) Canceled() bool { return r.Code == CodeCanceled }

// RateLimited reports whether the API throttled the request.
func (r Result) RateLimited() bool { return r.Code == CodeRateLimited }

// TokenRejected reports an invalid or expired reset/verification token, for
// which the only recovery is requesting a new link.
func (r Result) TokenRejected() bool {
	return r.Code == CodeInvalidToken || r.Code == CodeTokenExpired
}

// Flag returns a boolean field of Data, e.g. "available" or "valid".
func (r Result) Flag(name string) (bool, bool) {
	v, ok := r.Data[name].(bool)
	return v, ok
}

func succeeded(resp *client.Response) Result {
	r := Result{Success: true, Data: client.Data(resp.Body)}
	if msg, ok := resp.Body["message"].(string); ok {
		r.Message = msg
	}
	return r
}

func failed(resp *client.Response) Result {
	r := Result{
		Data:    client.Data(resp.Body),
		Message: client.ExtractErrorMessage(resp),
		Code:    client.ExtractCode(resp),
		Errors:  client.FieldErrors(resp),
	}
	if r.Code == CodeRateLimited {
		r.RetryAfter = client.ExtractRetryAfter(resp)
	}
	return r
}

func transportFailure(err error) Result {
	if errors.Is(err, client.ErrCanceled) {
		return Result{Message: "Request canceled", Code: CodeCanceled}
	}
	return Result{Message: MsgNetworkError, Code: CodeNetworkError}
}

func invalid(errs map[string]string) Result {
	return Result{
		Message: firstError(errs),
		Code:    CodeValidationError,
		Errors:  errs,
	}
}

func unauthenticated() Result {
	return Result{Message: "Not signed in", Code: CodeUnauthenticated}
}
