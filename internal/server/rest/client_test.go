package rest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nytevibe/nytevibe/internal/client/client"
	"github.com/nytevibe/nytevibe/internal/client/credentials"
	"github.com/nytevibe/nytevibe/internal/client/links"
	"github.com/nytevibe/nytevibe/internal/client/services"
	"github.com/nytevibe/nytevibe/internal/server/config"
)

// The tests below drive the real client stack against the API.

func newClient(t *testing.T, api *testAPI) (services.AuthService, *credentials.Store) {
	t.Helper()
	db, err := client.OpenStateDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	creds := credentials.New(db)
	return services.NewAuthService(client.NewHTTPClient(api.ts.URL+"/api", 5*time.Second), creds, nil), creds
}

func clientRegistration() services.Registration {
	return services.Registration{
		Username:             "night.owl",
		Email:                "owl@example.com",
		FirstName:            "Nia",
		Password:             "Sup3r-secret",
		PasswordConfirmation: "Sup3r-secret",
	}
}

func TestClient_SessionLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	auth, creds := newClient(t, api)
	ctx := context.Background()

	res := auth.Register(ctx, clientRegistration())
	require.True(t, res.Success, res.Message)
	require.NotNil(t, res.User)
	assert.Equal(t, "night.owl", res.User.Username)
	assert.True(t, creds.IsAuthenticated(ctx))

	res = auth.Logout(ctx)
	require.True(t, res.Success)
	assert.False(t, creds.IsAuthenticated(ctx))

	res = auth.Login(ctx, services.Credentials{Identifier: "night.owl", Password: "Sup3r-secret"}, true)
	require.True(t, res.Success, res.Message)
	token := creds.Token(ctx)
	require.NotEmpty(t, token)
	assert.True(t, creds.RememberMe(ctx))
	exp, ok := creds.ExpiresAt(ctx)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), exp, time.Minute)
	assert.False(t, creds.NeedsRefresh(ctx))

	res = auth.ValidateToken(ctx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "owl@example.com", creds.StoredUser(ctx).Email)

	next, ok := auth.RefreshToken(ctx)
	require.True(t, ok)
	assert.NotEqual(t, token, next)
	assert.Equal(t, next, creds.Token(ctx))

	res = auth.CurrentUser(ctx)
	require.True(t, res.Success, res.Message)

	res = auth.Logout(ctx)
	require.True(t, res.Success)
	assert.Empty(t, creds.Token(ctx))
}

func TestClient_RevokedTokenFailsClosed(t *testing.T) {
	api := newTestAPI(t, nil)
	auth, creds := newClient(t, api)
	ctx := context.Background()

	require.True(t, auth.Register(ctx, clientRegistration()).Success)
	stale := creds.Token(ctx)

	_, ok := auth.RefreshToken(ctx)
	require.True(t, ok)

	require.NoError(t, creds.SetToken(ctx, stale, time.Now().Add(48*time.Hour)))
	res := auth.ValidateToken(ctx)

	assert.False(t, res.Success)
	assert.Equal(t, services.CodeInvalidToken, res.Code)
	assert.False(t, creds.IsAuthenticated(ctx))
	assert.Nil(t, creds.StoredUser(ctx))
}

func TestClient_LoginFailures(t *testing.T) {
	api := newTestAPI(t, func(c *config.Config) { c.LoginRate = 1; c.LoginBurst = 1 })
	auth, creds := newClient(t, api)
	ctx := context.Background()

	require.True(t, auth.Register(ctx, clientRegistration()).Success)
	auth.Logout(ctx)

	res := auth.Login(ctx, services.Credentials{Identifier: "owl@example.com", Password: "wrong-password"}, false)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Message)

	res = auth.Login(ctx, services.Credentials{Identifier: "owl@example.com", Password: "Sup3r-secret"}, false)
	assert.False(t, res.Success)
	assert.True(t, res.RateLimited())
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.False(t, creds.IsAuthenticated(ctx))

	cd := services.NewCooldown(time.Now)
	assert.True(t, cd.Observe(res))
	assert.True(t, cd.Active())
}

func TestClient_PasswordRecovery(t *testing.T) {
	api := newTestAPI(t, nil)
	auth, _ := newClient(t, api)
	ctx := context.Background()

	require.True(t, auth.Register(ctx, clientRegistration()).Success)

	res := auth.ForgotPassword(ctx, "night.owl")
	require.True(t, res.Success, res.Message)

	params := links.ValidateResetLink(api.outbox.link(t, 0).String())
	require.True(t, params.Valid, params.Errors)

	res = auth.VerifyResetToken(ctx, params.Token, params.Email)
	require.True(t, res.Success, res.Message)

	res = auth.ResetPassword(ctx, params.Token, params.Email, "N3w-password!", "N3w-password!")
	require.True(t, res.Success, res.Message)

	res = auth.ResetPassword(ctx, params.Token, params.Email, "N3w-password!", "N3w-password!")
	assert.False(t, res.Success)
	assert.True(t, res.TokenRejected())
	assert.Equal(t, services.CodeInvalidToken, res.Code)

	res = auth.Login(ctx, services.Credentials{Identifier: "night.owl", Password: "N3w-password!"}, false)
	assert.True(t, res.Success, res.Message)
}

func TestClient_EmailVerification(t *testing.T) {
	api := newTestAPI(t, nil)
	auth, creds := newClient(t, api)
	ctx := context.Background()

	require.True(t, auth.Register(ctx, clientRegistration()).Success)

	p := links.ParseVerificationLink(api.outbox.link(t, 0).String())
	require.Equal(t, links.FormatPath, p.Format)

	res := auth.VerifyEmail(ctx, p.UserID, p.Hash, p.Expires, "tampered")
	assert.True(t, res.TokenRejected())

	res = auth.VerifyEmail(ctx, p.UserID, p.Hash, p.Expires, p.Signature)
	require.True(t, res.Success, res.Message)

	require.True(t, auth.ResendVerificationEmail(ctx, "owl@example.com").Success)
	assert.True(t, creds.IsAuthenticated(ctx))
}

func TestClient_AvailabilityChecks(t *testing.T) {
	api := newTestAPI(t, nil)
	auth, _ := newClient(t, api)
	ctx := context.Background()

	require.True(t, auth.Register(ctx, clientRegistration()).Success)

	res := auth.CheckUsername(ctx, "night.owl")
	require.True(t, res.Success, res.Message)
	available, ok := res.Flag("available")
	require.True(t, ok)
	assert.False(t, available)

	res = auth.CheckEmail(ctx, "new@example.com")
	available, _ = res.Flag("available")
	assert.True(t, available)
}
