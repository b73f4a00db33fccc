package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nytevibe/nytevibe/internal/client/links"
	"github.com/nytevibe/nytevibe/internal/client/services"
	"github.com/nytevibe/nytevibe/internal/client/store"
)

func TestForgotAndResetPassword(t *testing.T) {
	printed := capturePrint(t)
	base, box := devAPI(t, nil)
	ctx := context.Background()

	app := newTestApp(t, base, registerInput+"owl@example.com\nnight.owl\nn\n",
		"Sup3r-secret", "Sup3r-secret", "N3w-Secret!!", "N3w-Secret!!", "N3w-Secret!!")
	watch(t, app)

	require.NoError(t, app.Register(ctx))
	require.NoError(t, app.Logout(ctx))

	require.NoError(t, app.ForgotPassword(ctx))
	link := box.link(t, 0)
	require.Contains(t, link, "https://app.example/reset-password?")

	require.NoError(t, app.OpenLink(ctx, link))
	s := app.store.State()
	assert.Equal(t, store.ViewLogin, s.View)
	assert.NotContains(t, s.Location, "token=")

	require.NoError(t, app.Login(ctx))
	assert.True(t, app.isLoggedIn())

	out := joined(printed())
	assert.Contains(t, out, "[success] If an account exists, a reset link is on its way.")
	assert.Contains(t, out, "Resetting the password for owl@example.com")
	assert.Contains(t, out, "[success] Password reset. Please log in with your new password.")
	assert.Contains(t, out, "[success] Welcome back, Nia!")

	// The link is single use.
	require.NoError(t, app.OpenLink(ctx, link))
	assert.Contains(t, joined(printed()), "This reset link is invalid or has expired. Use 'forgot' to request a new one.")
}

func TestForgotPassword_Validation(t *testing.T) {
	printed := capturePrint(t)
	base, box := devAPI(t, nil)

	app := newTestApp(t, base, "\n")
	require.NoError(t, app.ForgotPassword(context.Background()))

	assert.Empty(t, box.mail)
	assert.NotEmpty(t, printed())
	assert.True(t, strings.HasPrefix(printed()[0], "  "), "field error expected, got %v", printed())
}

func TestOpenLink_Unusable(t *testing.T) {
	tests := []struct {
		name string
		link string
		want []string
	}{
		{
			name: "reset link without token",
			link: "https://app.example/reset-password?email=owl%40example.com",
			want: []string{"This reset link is not usable:", "  " + links.ErrResetTokenMissing},
		},
		{
			name: "reset link with bad email and token",
			link: "https://app.example/reset-password?email=owl&token=a%20b",
			want: []string{"This reset link is not usable:", "  " + links.ErrResetEmailInvalid, "  " + links.ErrResetTokenInvalid},
		},
		{
			name: "unrelated link",
			link: "https://app.example/venues/3",
			want: []string{"Not a password reset or email verification link."},
		},
	}

	base, box := devAPI(t, nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			printed := capturePrint(t)
			app := newTestApp(t, base, "")

			require.NoError(t, app.OpenLink(context.Background(), tc.link))
			assert.Equal(t, tc.want, printed())
		})
	}
	assert.Empty(t, box.mail)
}

func TestOpenLink_VerifyEmail(t *testing.T) {
	// Mails carry the signed path link first and the token link second.
	for i, name := range []string{"signed path link", "token link"} {
		t.Run(name, func(t *testing.T) {
			printed := capturePrint(t)
			base, box := devAPI(t, nil)
			ctx := context.Background()

			app := newTestApp(t, base, registerInput, "Sup3r-secret", "Sup3r-secret")
			watch(t, app)
			require.NoError(t, app.Register(ctx))

			require.NoError(t, app.OpenLink(ctx, box.link(t, i)))
			assert.Equal(t, store.ViewHome, app.store.State().View)
			assert.Contains(t, joined(printed()), "[success] Email verified!")
		})
	}
}

func TestOpenLink_VerifyEmailTampered(t *testing.T) {
	printed := capturePrint(t)
	base, box := devAPI(t, nil)
	ctx := context.Background()

	app := newTestApp(t, base, registerInput, "Sup3r-secret", "Sup3r-secret")
	watch(t, app)
	require.NoError(t, app.Register(ctx))

	link := strings.Replace(box.link(t, 0), "signature=", "signature=00", 1)
	require.NoError(t, app.OpenLink(ctx, link))

	assert.Contains(t, joined(printed()), "[error] This verification link is invalid or has expired. Request a new one.")
}

func TestResendVerification_DefaultsToSignedInEmail(t *testing.T) {
	printed := capturePrint(t)
	base, box := devAPI(t, nil)
	ctx := context.Background()

	app := newTestApp(t, base, registerInput+"\n", "Sup3r-secret", "Sup3r-secret")
	watch(t, app)
	require.NoError(t, app.Register(ctx))
	require.Len(t, box.mail, 1)

	require.NoError(t, app.ResendVerification(ctx))

	assert.Len(t, box.mail, 2)
	assert.Equal(t, "owl@example.com", box.mail[1].To)
	assert.Contains(t, joined(printed()), "[success] Verification email sent.")
}

func TestCheck(t *testing.T) {
	printed := capturePrint(t)
	base, _ := devAPI(t, nil)
	ctx := context.Background()

	app := newTestApp(t, base, registerInput, "Sup3r-secret", "Sup3r-secret")
	require.NoError(t, app.Register(ctx))

	require.Error(t, app.Check("color", "red"))

	require.NoError(t, app.Check("username", "x"))
	assert.Contains(t, printed(), "  username: Username must be at least 3 characters")

	// Only the last of two quick checks of a field is answered.
	require.NoError(t, app.Check("username", "night.ow"))
	require.NoError(t, app.Check("username", "night.owl"))
	require.NoError(t, app.Check("email", "new@example.com"))
	require.NoError(t, app.Check("phone", "+15551234567"))

	require.Eventually(t, func() bool {
		out := joined(printed())
		return strings.Contains(out, `username "night.owl" is taken`) &&
			strings.Contains(out, `email "new@example.com" is available`) &&
			strings.Contains(out, `phone "+15551234567" is available`)
	}, 5*time.Second, 10*time.Millisecond)
	assert.NotContains(t, joined(printed()), `"night.ow" is`)
}

func TestAvailability(t *testing.T) {
	tests := []struct {
		name string
		res  services.Result
		want string
	}{
		{
			name: "available",
			res:  services.Result{Success: true, Data: map[string]any{"available": true}},
			want: `email "a@b.co" is available`,
		},
		{
			name: "taken",
			res:  services.Result{Success: true, Data: map[string]any{"available": false}},
			want: `email "a@b.co" is taken`,
		},
		{
			name: "field error",
			res:  services.Result{Errors: map[string]string{"email": "Please enter a valid email address"}},
			want: `email "a@b.co": Please enter a valid email address`,
		},
		{
			name: "network",
			res:  services.Result{Message: services.MsgNetworkError, Code: services.CodeNetworkError},
			want: `email "a@b.co": check failed: Network error occurred`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, availability("email", "a@b.co", tc.res))
		})
	}
}
