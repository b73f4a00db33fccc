package cli

import (
	"context"
	"fmt"

	"github.com/nytevibe/nytevibe/internal/client/links"
	"github.com/nytevibe/nytevibe/internal/client/services"
	"github.com/nytevibe/nytevibe/internal/client/store"
)

// ForgotPassword requests a reset link for a username or email.
func (a *App) ForgotPassword(ctx context.Context) error {
	if a.coolingDown() {
		return nil
	}
	identifier, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}
	a.report(a.actions.ForgotPassword(ctx, identifier))
	return nil
}

// OpenLink handles a pasted reset or verification link.
func (a *App) OpenLink(ctx context.Context, raw string) error {
	switch a.actions.OpenLink(raw) {
	case store.ViewResetPassword:
		return a.resetPassword(ctx, raw)
	case store.ViewVerifyEmail:
		a.report(a.actions.VerifyEmail(ctx))
	default:
		printlnFn("Not a password reset or email verification link.")
	}
	return nil
}

// resetPassword checks the link locally and with the server before asking
// for the new password, so a dead link fails fast.
func (a *App) resetPassword(ctx context.Context, raw string) error {
	p := links.ValidateResetLink(raw)
	if !p.Valid {
		printlnFn("This reset link is not usable:")
		for _, e := range p.Errors {
			printlnFn("  " + e)
		}
		return nil
	}

	check := a.auth.VerifyResetToken(ctx, p.Token, p.Email)
	if check.Canceled() {
		return ctx.Err()
	}
	if valid, ok := check.Flag("valid"); check.TokenRejected() || ok && !valid {
		printlnFn("This reset link is invalid or has expired. Use 'forgot' to request a new one.")
		return nil
	}

	printlnFn("Resetting the password for", p.Email)
	pw, err := a.readSecret("New password")
	if err != nil {
		return err
	}
	printlnFn("Password strength:", services.StrengthLabel(services.PasswordStrength(pw)))
	confirmation, err := a.readSecret("Confirm new password")
	if err != nil {
		return err
	}

	a.report(a.actions.ResetPassword(ctx, pw, confirmation))
	return nil
}

// ResendVerification asks for a new verification email, defaulting to the
// signed-in user's address.
func (a *App) ResendVerification(ctx context.Context) error {
	prompt := "Email"
	var fallback string
	if u := a.store.State().User; u != nil && u.Email != "" {
		fallback = u.Email
		prompt = fmt.Sprintf("Email (empty for %s)", fallback)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email == "" {
		email = fallback
	}
	a.report(a.actions.ResendVerification(ctx, email))
	return nil
}

var checkers = map[string]func(services.AuthService, context.Context, string) services.Result{
	"username": services.AuthService.CheckUsername,
	"email":    services.AuthService.CheckEmail,
	"phone":    services.AuthService.CheckPhone,
}

// Check looks up availability once input settles; a newer check of the
// same field replaces a pending one and its answer is never printed.
func (a *App) Check(field, value string) error {
	fn, ok := checkers[field]
	if !ok {
		return fmt.Errorf("unknown field %q, use username, email or phone", field)
	}
	if form, ok := localCheck(field, value); !ok {
		printFieldErrors(services.Validate(form))
		return nil
	}

	a.checks.Submit(field, func(ctx context.Context) {
		res := fn(a.auth, ctx, value)
		if res.Canceled() || ctx.Err() != nil {
			return
		}
		printlnFn(availability(field, value, res))
	})
	return nil
}

// localCheck validates value the way the sign-up form would before any
// request is made.
func localCheck(field, value string) (any, bool) {
	var form any
	switch field {
	case "username":
		form = struct {
			Username string `json:"username" validate:"required,min=3,max=30,username"`
		}{value}
	case "email":
		form = struct {
			Email string `json:"email" validate:"required,email"`
		}{value}
	case "phone":
		form = struct {
			Phone string `json:"phone" validate:"required,e164"`
		}{value}
	}
	return form, len(services.Validate(form)) == 0
}

func availability(field, value string, res services.Result) string {
	if !res.Success {
		if msg, ok := res.Errors[field]; ok {
			return fmt.Sprintf("%s %q: %s", field, value, msg)
		}
		return fmt.Sprintf("%s %q: check failed: %s", field, value, res.Message)
	}
	if available, ok := res.Flag("available"); ok && !available {
		return fmt.Sprintf("%s %q is taken", field, value)
	}
	return fmt.Sprintf("%s %q is available", field, value)
}

// Focus asks the session monitor for an immediate check, as returning to
// the app would.
func (a *App) Focus(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}
	a.monitor.Trigger("focus")
	printlnFn("Checking session...")
	return nil
}
