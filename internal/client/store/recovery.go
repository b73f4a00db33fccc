package store

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/nytevibe/nytevibe/internal/client/links"
	"github.com/nytevibe/nytevibe/internal/client/models"
	"github.com/nytevibe/nytevibe/internal/client/services"
)

// OpenLink routes an emailed link to the reset or verification view and
// remembers it as the current location.
func (a *Actions) OpenLink(raw string) View {
	raw = strings.TrimSpace(raw)
	a.store.Dispatch(LocationReplaced{URL: raw})

	view := ViewHome
	switch {
	case isResetLink(raw):
		view = ViewResetPassword
	case links.ParseVerificationLink(raw).Found():
		view = ViewVerifyEmail
	}
	a.store.Dispatch(Navigated{View: view})
	return view
}

func isResetLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.Contains(u.Path, "reset") || u.Query().Has("email") && u.Query().Has("token")
}

// ForgotPassword requests a reset link.
func (a *Actions) ForgotPassword(ctx context.Context, identifier string) services.Result {
	a.loading(true)
	res := a.auth.ForgotPassword(ctx, identifier)
	a.loading(false)

	switch {
	case res.Canceled(), res.Code == services.CodeValidationError:
	case res.Success:
		a.Notify(models.NotificationSuccess, "If an account exists, a reset link is on its way.", 5*time.Second)
	default:
		a.Notify(models.NotificationError, res.Message, 0)
	}
	return res
}

// ResetPassword completes the reset started by the link at the current
// location. A malformed link reports every problem at once and makes no
// call.
func (a *Actions) ResetPassword(ctx context.Context, password, confirmation string) services.Result {
	loc := a.store.State().Location
	p := links.ValidateResetLink(loc)
	if !p.Valid {
		return services.Result{
			Message: strings.Join(p.Errors, "; "),
			Code:    services.CodeInvalidToken,
		}
	}

	a.loading(true)
	res := a.auth.ResetPassword(ctx, p.Token, p.Email, password, confirmation)
	a.loading(false)

	switch {
	case res.Canceled(), res.Code == services.CodeValidationError:
	case res.Success:
		a.store.Dispatch(LocationReplaced{URL: links.StripParams(loc, links.ResetKeys...)})
		a.store.Dispatch(Navigated{View: ViewLogin})
		a.Notify(models.NotificationSuccess, "Password reset. Please log in with your new password.", 0)
	case res.TokenRejected():
		a.Notify(models.NotificationError, "This reset link is invalid or has expired. Please request a new one.", 0)
	default:
		a.Notify(models.NotificationError, res.Message, 0)
	}
	return res
}

// VerifyEmail confirms the address named by the link at the current
// location, in whichever of the three link formats it came.
func (a *Actions) VerifyEmail(ctx context.Context) services.Result {
	loc := a.store.State().Location
	p := links.ParseVerificationLink(loc)

	var res services.Result
	a.loading(true)
	switch p.Format {
	case links.FormatPath, links.FormatParams:
		res = a.auth.VerifyEmail(ctx, p.UserID, p.Hash, p.Expires, p.Signature)
	case links.FormatToken:
		res = a.auth.VerifyEmailToken(ctx, p.Token)
	default:
		res = services.Result{Message: "This verification link is incomplete", Code: services.CodeInvalidToken}
	}
	a.loading(false)

	switch {
	case res.Canceled():
	case res.Success:
		a.store.Dispatch(LocationReplaced{URL: links.StripParams(loc, links.VerificationKeys...)})
		if res.User != nil {
			a.UpdateUser(ctx, *res.User)
		}
		next := ViewLogin
		if a.store.State().Authenticated {
			next = ViewHome
		}
		a.store.Dispatch(Navigated{View: next})
		a.Notify(models.NotificationSuccess, "Email verified!", 0)
	case res.TokenRejected():
		a.Notify(models.NotificationError, "This verification link is invalid or has expired. Request a new one.", 0)
	default:
		a.Notify(models.NotificationError, res.Message, 0)
	}
	return res
}

// ResendVerification asks for a new verification link.
func (a *Actions) ResendVerification(ctx context.Context, email string) services.Result {
	res := a.auth.ResendVerificationEmail(ctx, email)
	switch {
	case res.Canceled(), res.Code == services.CodeValidationError:
	case res.Success:
		a.Notify(models.NotificationSuccess, "Verification email sent.", 0)
	default:
		a.Notify(models.NotificationError, res.Message, 0)
	}
	return res
}
