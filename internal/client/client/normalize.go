package client

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Codes surfaced by the API or synthesised by the client.
const (
	CodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeTokenExpired = "TOKEN_EXPIRED"
)

// SuccessRule recognises one backend shape of a successful reply. Rules only
// see 2xx responses.
type SuccessRule func(r *Response) bool

// LoginSuccessRules are tried in order; any match means success. New
// deployment shapes are supported by appending here.
var LoginSuccessRules = []SuccessRule{
	ExplicitSuccessFlag,
	SuccessMessage,
	TokenPresent,
	SuccessStatus,
}

// ExplicitSuccessFlag matches {"success": true}.
func ExplicitSuccessFlag(r *Response) bool {
	v, ok := r.Body["success"].(bool)
	return ok && v
}

// SuccessMessage matches a message that contains "success".
func SuccessMessage(r *Response) bool {
	msg, ok := r.Body["message"].(string)
	return ok && strings.Contains(strings.ToLower(msg), "success")
}

// TokenPresent matches a token anywhere in the payload.
func TokenPresent(r *Response) bool {
	return FindToken(r.Body) != ""
}

// SuccessStatus matches {"status": "success"} or {"status": true}.
func SuccessStatus(r *Response) bool {
	switch v := r.Body["status"].(type) {
	case string:
		return strings.EqualFold(v, "success")
	case bool:
		return v
	}
	return false
}

// IsLoginSuccess requires a 2xx status and at least one matching rule.
func IsLoginSuccess(r *Response) bool {
	if !r.OK() {
		return false
	}
	return slices.ContainsFunc(LoginSuccessRules, func(rule SuccessRule) bool { return rule(r) })
}

// IsExplicitSuccess is the stricter check used by endpoints other than
// login: 2xx and either success:true or status "success".
func IsExplicitSuccess(r *Response) bool {
	return r.OK() && (ExplicitSuccessFlag(r) || SuccessStatus(r) || (r.Body == nil && r.Status == http.StatusNoContent))
}

var tokenKeys = []string{"token", "access_token", "accessToken"}

// FindToken searches the payload breadth-first, a few levels deep, for a
// non-empty token string.
func FindToken(body map[string]any) string {
	level := []map[string]any{body}
	for depth := 0; depth < 4 && len(level) > 0; depth++ {
		var next []map[string]any
		for _, m := range level {
			for _, k := range tokenKeys {
				if s, ok := m[k].(string); ok && s != "" {
					return s
				}
			}
			for _, k := range sortedKeys(m) {
				if child, ok := m[k].(map[string]any); ok {
					next = append(next, child)
				}
			}
		}
		level = next
	}
	return ""
}

// Data returns body["data"] when it is an object, otherwise the body itself.
// Several deployments return fields at the top level.
func Data(body map[string]any) map[string]any {
	if d, ok := body["data"].(map[string]any); ok {
		return d
	}
	return body
}

// Lookup returns the first present value among names, checking body["data"]
// before the top level.
func Lookup(body map[string]any, names ...string) (any, bool) {
	for _, m := range []map[string]any{Data(body), body} {
		for _, n := range names {
			if v, ok := m[n]; ok && v != nil {
				return v, true
			}
		}
	}
	return nil, false
}

// ExtractErrorMessage picks the most specific message available:
// message → error → first of errors[] → first value of errors{} → status line.
func ExtractErrorMessage(r *Response) string {
	if r == nil {
		return "Request failed"
	}
	if s, ok := r.Body["message"].(string); ok && s != "" {
		return s
	}
	switch e := r.Body["error"].(type) {
	case string:
		if e != "" {
			return e
		}
	case map[string]any:
		if s, ok := e["message"].(string); ok && s != "" {
			return s
		}
	}
	switch errs := r.Body["errors"].(type) {
	case []any:
		if len(errs) > 0 {
			if s := firstMessage(errs[0]); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, k := range sortedKeys(errs) {
			if s := firstMessage(errs[k]); s != "" {
				return s
			}
		}
	}
	return statusLine(r)
}

// FieldErrors flattens an errors{} map into field → first message.
func FieldErrors(r *Response) map[string]string {
	errs, ok := r.Body["errors"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		if s := firstMessage(v); s != "" {
			out[k] = s
		}
	}
	return out
}

// ExtractCode returns the machine-readable error code. A 429 without a code
// is reported as CodeRateLimited.
func ExtractCode(r *Response) string {
	if r == nil {
		return ""
	}
	for _, k := range []string{"code", "error_code", "errorCode"} {
		if s, ok := r.Body[k].(string); ok && s != "" {
			return s
		}
	}
	if e, ok := r.Body["error"].(map[string]any); ok {
		if s, ok := e["code"].(string); ok && s != "" {
			return s
		}
	}
	if r.Status == http.StatusTooManyRequests {
		return CodeRateLimited
	}
	return ""
}

// ExtractRetryAfter reads retry_after (seconds) from the body, falling back
// to the Retry-After header.
func ExtractRetryAfter(r *Response) time.Duration {
	if r == nil {
		return 0
	}
	if v, ok := Lookup(r.Body, "retry_after", "retryAfter"); ok {
		if secs, err := strconv.ParseFloat(fmt.Sprint(v), 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	if h := r.Header.Get("Retry-After"); h != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func firstMessage(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if s := firstMessage(item); s != "" {
				return s
			}
		}
	case map[string]any:
		if s, ok := t["message"].(string); ok {
			return s
		}
	}
	return ""
}

func statusLine(r *Response) string {
	if r.StatusLine != "" {
		return r.StatusLine
	}
	return strings.TrimSpace(fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status)))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
