package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nytevibe/nytevibe/internal/client/models"
	"github.com/nytevibe/nytevibe/internal/client/services"
	"github.com/nytevibe/nytevibe/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
)

var errAlreadyLoggedIn = errors.New("already logged in, log out first")

// coolingDown reports an active rate-limit cooldown to the user.
func (a *App) coolingDown() bool {
	if left := a.cooldown.Remaining(); left > 0 {
		printlnFn(fmt.Sprintf("Too many attempts. Try again in %ds.", int(left.Seconds())))
		return true
	}
	return false
}

// report prints what the actions did not already raise as a notification:
// field errors and the start of a cooldown.
func (a *App) report(res services.Result) {
	if a.cooldown.Observe(res) {
		printlnFn(fmt.Sprintf("Try again in %ds.", int(a.cooldown.Remaining().Seconds())))
	}
	printFieldErrors(res.Errors)
}

func printFieldErrors(errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		printlnFn(fmt.Sprintf("  %s: %s", f, errs[f]))
	}
}

// readSecret reads a password and returns it as a string, wiping the bytes
// read from the terminal.
func (a *App) readSecret(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register prompts for the sign-up form and creates the account. The
// password strength is shown before the confirmation is asked for.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		return errAlreadyLoggedIn
	}
	if a.coolingDown() {
		return nil
	}

	var reg services.Registration
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Username", &reg.Username},
		{"Email", &reg.Email},
		{"Phone (optional, +15551234567)", &reg.Phone},
		{"First name", &reg.FirstName},
		{"Last name (optional)", &reg.LastName},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	pw, err := a.readSecret("Password")
	if err != nil {
		return err
	}
	printlnFn("Password strength:", services.StrengthLabel(services.PasswordStrength(pw)))
	confirmation, err := a.readSecret("Confirm password")
	if err != nil {
		return err
	}
	reg.Password, reg.PasswordConfirmation = pw, confirmation

	a.report(a.actions.Register(ctx, reg))
	return nil
}

// Login prompts for an identifier, a password and "remember me", then
// signs in.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		return errAlreadyLoggedIn
	}
	if a.coolingDown() {
		return nil
	}

	identifier, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}
	pw, err := a.readSecret("Password")
	if err != nil {
		return err
	}
	remember := getConfirmation(a.reader, "Remember me for 30 days?", a.out)

	res := a.actions.Login(ctx, services.Credentials{Identifier: identifier, Password: pw}, remember)
	if res.Success {
		a.cooldown.Reset()
	}
	a.report(res)
	return nil
}

// Logout ends the session. The local session is cleared even when the
// server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in.")
		return nil
	}
	a.actions.Logout(ctx)
	return nil
}

// Status prints the signed-in profile and the session expiry.
func (a *App) Status(ctx context.Context) error {
	s := a.store.State()
	if !s.Authenticated || s.User == nil {
		printlnFn("Not logged in.")
		return nil
	}

	u := s.User
	rec := a.creds.Load(ctx)
	info := models.NewSessionInfo(rec.ExpiresAt, time.Now())
	lines := []string{
		fmt.Sprintf("User:     %s (@%s)", u.DisplayName(), u.Username),
		fmt.Sprintf("Email:    %s", u.Email),
		fmt.Sprintf("Level:    %s, %d points", u.Level, u.Points),
		fmt.Sprintf("Session:  expires %s (%s left)", info.ExpiresAtDisplay, info.RemainingDisplay()),
	}
	if rec.RememberMe {
		lines = append(lines, "          remembered on this device")
	}
	printlnFn(strings.Join(lines, "\n"))
	return nil
}
