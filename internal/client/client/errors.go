package client

import "errors"

var (
	// ErrUnavailable wraps every transport-level failure (dial, TLS, timeout,
	// unreadable body).
	ErrUnavailable = errors.New("server unavailable")
	// ErrCanceled is returned when the caller abandoned the request.
	ErrCanceled = errors.New("request canceled")
)
