package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/nytevibe/nytevibe/internal/client/client"
)

// ForgotPassword requests a reset link for a username or email address.
func (a *authService) ForgotPassword(ctx context.Context, identifier string) Result {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return invalid(map[string]string{"identifier": label("identifier") + " is required"})
	}
	body := map[string]any{"identifier": identifier}
	if strings.Contains(identifier, "@") {
		body = map[string]any{"email": identifier}
	}
	return a.call(ctx, http.MethodPost, "/auth/forgot-password", body, false)
}

// ResetPassword sets a new password with the token of a reset link.
func (a *authService) ResetPassword(ctx context.Context, token, email, password, confirmation string) Result {
	form := PasswordReset{
		Token:                strings.TrimSpace(token),
		Email:                strings.TrimSpace(email),
		Password:             password,
		PasswordConfirmation: confirmation,
	}
	if errs := Validate(form); errs != nil {
		return invalid(errs)
	}
	return a.call(ctx, http.MethodPost, "/auth/reset-password", form, true)
}

// VerifyResetToken checks a reset link before the new-password form is
// shown.
func (a *authService) VerifyResetToken(ctx context.Context, token, email string) Result {
	if token == "" || email == "" {
		return Result{Message: "Reset link is incomplete", Code: CodeInvalidToken}
	}
	res := a.call(ctx, http.MethodPost, "/auth/verify-reset-token", map[string]any{"token": token, "email": email}, true)
	if valid, ok := res.Flag("valid"); res.Success && ok && !valid {
		res.Success = false
		res.Code = CodeInvalidToken
		if res.Message == "" {
			res.Message = "This reset link is invalid"
		}
	}
	return res
}

// VerifyEmail confirms an address with the parts of a signed verification
// link. expires and signature may be empty for unsigned links.
func (a *authService) VerifyEmail(ctx context.Context, userID, hash, expires, signature string) Result {
	if userID == "" || hash == "" {
		return Result{Message: "Verification link is incomplete", Code: CodeInvalidToken}
	}
	path := "/email/verify/" + url.PathEscape(userID) + "/" + url.PathEscape(hash)
	q := url.Values{}
	if expires != "" {
		q.Set("expires", expires)
	}
	if signature != "" {
		q.Set("signature", signature)
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return a.verified(ctx, a.call(ctx, http.MethodGet, path, nil, true))
}

// VerifyEmailToken confirms an address with a legacy single-token link.
func (a *authService) VerifyEmailToken(ctx context.Context, token string) Result {
	if token == "" {
		return Result{Message: "Verification link is incomplete", Code: CodeInvalidToken}
	}
	path := "/email/verify?" + url.Values{"token": {token}}.Encode()
	return a.verified(ctx, a.call(ctx, http.MethodGet, path, nil, true))
}

// verified refreshes the cached profile of a signed-in user after the
// address was confirmed.
func (a *authService) verified(ctx context.Context, res Result) Result {
	if !res.Success || a.creds.Token(ctx) == "" {
		return res
	}
	if u := userFrom(map[string]any{"data": res.Data}); u != nil {
		if err := a.creds.SetUser(ctx, u); err != nil {
			a.logger.Warn(ctx, "cached user not updated", "error", err)
		}
		res.User = u
	}
	return res
}

// ResendVerificationEmail asks for a new verification link.
func (a *authService) ResendVerificationEmail(ctx context.Context, email string) Result {
	email = strings.TrimSpace(email)
	if errs := validate.Var(email, "required,email"); errs != nil {
		return invalid(map[string]string{"email": "Please enter a valid email address"})
	}
	return a.call(ctx, http.MethodPost, "/email/resend-verification", map[string]any{"email": email}, false)
}

// CheckUsername reports availability in Data["available"].
func (a *authService) CheckUsername(ctx context.Context, username string) Result {
	return a.check(ctx, "username", username)
}

// CheckEmail reports availability in Data["available"].
func (a *authService) CheckEmail(ctx context.Context, email string) Result {
	return a.check(ctx, "email", email)
}

// CheckPhone reports availability in Data["available"].
func (a *authService) CheckPhone(ctx context.Context, phone string) Result {
	return a.check(ctx, "phone", phone)
}

func (a *authService) check(ctx context.Context, field, value string) Result {
	value = strings.TrimSpace(value)
	if value == "" {
		return invalid(map[string]string{field: label(field) + " is required"})
	}
	return a.call(ctx, http.MethodPost, "/auth/check-"+field, map[string]any{field: value}, false)
}

// call runs an anonymous request whose success is a 2xx reply that does
// not say success:false. With tokenFlow set, rejections of the link token
// get a distinct code.
func (a *authService) call(ctx context.Context, method, path string, body any, tokenFlow bool) Result {
	resp, res := a.do(ctx, method, path, body, "")
	if resp == nil {
		return res
	}
	if resp.OK() && !explicitFailure(resp) {
		return succeeded(resp)
	}
	res = failed(resp)
	if tokenFlow {
		if code := tokenRejection(resp, res); code != "" {
			res.Code = code
		}
	}
	return res
}

// tokenRejection classifies 400/404/410/422 replies that blame the link
// token. 410 Gone always means expired.
func tokenRejection(resp *client.Response, res Result) string {
	switch res.Code {
	case CodeInvalidToken, CodeTokenExpired:
		return res.Code
	}
	switch resp.Status {
	case http.StatusGone:
		return CodeTokenExpired
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
	default:
		return ""
	}

	text := strings.ToLower(res.Code + " " + res.Message)
	if !strings.Contains(text, "token") && !strings.Contains(text, "link") {
		if _, ok := res.Errors["token"]; !ok {
			return ""
		}
	}
	if strings.Contains(text, "expire") {
		return CodeTokenExpired
	}
	return CodeInvalidToken
}
