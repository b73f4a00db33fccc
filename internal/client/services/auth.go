package services

import (
	"context"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/nytevibe/nytevibe/internal/client/client"
	"github.com/nytevibe/nytevibe/internal/client/credentials"
	"github.com/nytevibe/nytevibe/internal/client/models"
	"github.com/nytevibe/nytevibe/internal/logging"
)

// AuthService is the network boundary for every auth operation.
//
// Contract:
//   - No method returns an error; callers branch on Result.Success and
//     Result.Code.
//   - Login and Register persist credentials on success.
//   - ValidateToken is fail-closed: any failure clears local credentials.
//   - RefreshToken never clears credentials.
//   - Logout always clears local credentials, whatever the network does.
//
// All methods honor context cancellation; a canceled call yields a Result
// with CodeCanceled that callers discard.
type AuthService interface {
	Login(ctx context.Context, c Credentials, rememberMe bool) Result
	Register(ctx context.Context, reg Registration) Result
	ValidateToken(ctx context.Context) Result
	RefreshToken(ctx context.Context) (string, bool)
	Logout(ctx context.Context) Result
	CurrentUser(ctx context.Context) Result

	ForgotPassword(ctx context.Context, identifier string) Result
	ResetPassword(ctx context.Context, token, email, password, confirmation string) Result
	VerifyResetToken(ctx context.Context, token, email string) Result
	VerifyEmail(ctx context.Context, userID, hash, expires, signature string) Result
	VerifyEmailToken(ctx context.Context, token string) Result
	ResendVerificationEmail(ctx context.Context, email string) Result

	CheckUsername(ctx context.Context, username string) Result
	CheckEmail(ctx context.Context, email string) Result
	CheckPhone(ctx context.Context, phone string) Result
}

// CredentialStore is the part of credentials.Store the service writes to.
type CredentialStore interface {
	SetAuthData(ctx context.Context, payload map[string]any) error
	SetToken(ctx context.Context, token string, expiresAt time.Time) error
	SetUser(ctx context.Context, u *models.UserProfile) error
	Token(ctx context.Context) string
	Clear(ctx context.Context)
}

var _ CredentialStore = (*credentials.Store)(nil)

type authService struct {
	client client.Client
	creds  CredentialStore
	logger logging.Logger
}

// NewAuthService constructs an AuthService bound to the API client and the
// credential store.
func NewAuthService(c client.Client, creds CredentialStore, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{client: c, creds: creds, logger: logger.With("component", "auth")}
}

// do runs one call. A nil response means the transport failed and the
// returned Result describes the failure.
func (a *authService) do(ctx context.Context, method, path string, body any, token string) (*client.Response, Result) {
	resp, err := a.client.Do(ctx, client.Request{Method: method, Path: path, Body: body, Token: token})
	if err != nil {
		a.logger.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return nil, transportFailure(err)
	}
	a.logger.Debug(ctx, "request done", "method", method, "path", path, "status", resp.Status)
	return resp, Result{}
}

// Login authenticates with a username or an email address. The identifier
// is sent as "email" when it contains '@', as "username" otherwise.
func (a *authService) Login(ctx context.Context, c Credentials, rememberMe bool) Result {
	c.Identifier = strings.TrimSpace(c.Identifier)
	if errs := Validate(c); errs != nil {
		return invalid(errs)
	}

	body := map[string]any{"password": c.Password, "remember_me": rememberMe}
	if strings.Contains(c.Identifier, "@") {
		body["email"] = c.Identifier
	} else {
		body["username"] = c.Identifier
	}

	resp, res := a.do(ctx, http.MethodPost, "/auth/login", body, "")
	if resp == nil {
		return res
	}
	if !client.IsLoginSuccess(resp) {
		return failed(resp)
	}

	payload := maps.Clone(resp.Body)
	if _, ok := client.Lookup(payload, "remember_me", "rememberMe"); !ok {
		payload["remember_me"] = rememberMe
	}
	if err := a.creds.SetAuthData(ctx, payload); err != nil {
		a.logger.Warn(ctx, "credentials partially stored", "error", err)
	}

	res = succeeded(resp)
	res.User = userFrom(resp.Body)
	return res
}

// Register creates an account. Replies that already carry a token sign the
// user in.
func (a *authService) Register(ctx context.Context, reg Registration) Result {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if errs := Validate(reg); errs != nil {
		return invalid(errs)
	}

	resp, res := a.do(ctx, http.MethodPost, "/auth/register", reg, "")
	if resp == nil {
		return res
	}
	if !resp.OK() || explicitFailure(resp) {
		return failed(resp)
	}
	if client.FindToken(resp.Body) != "" {
		if err := a.creds.SetAuthData(ctx, resp.Body); err != nil {
			a.logger.Warn(ctx, "credentials partially stored", "error", err)
		}
	}
	res = succeeded(resp)
	res.User = userFrom(resp.Body)
	return res
}

// ValidateToken asks the API whether the stored token is still good. A
// valid reply replaces the cached profile and, when present, the expiry.
// Anything else clears the credentials. Without a stored token no call is
// made.
func (a *authService) ValidateToken(ctx context.Context) Result {
	token := a.creds.Token(ctx)
	if token == "" {
		return unauthenticated()
	}

	resp, res := a.do(ctx, http.MethodGet, "/auth/validate-token", nil, token)
	if res.Canceled() {
		return res
	}
	if resp == nil {
		a.creds.Clear(ctx)
		return res
	}

	user := userFrom(resp.Body)
	if !resp.OK() || !(flag(resp.Body, "success") || flag(resp.Body, "valid")) || user == nil {
		a.logger.Info(ctx, "token rejected", "status", resp.Status)
		a.creds.Clear(ctx)
		res = failed(resp)
		if res.Code == "" {
			res.Code = CodeInvalidToken
		}
		return res
	}

	if err := a.creds.SetUser(ctx, user); err != nil {
		a.logger.Warn(ctx, "cached user not updated", "error", err)
	}
	if v, ok := client.Lookup(resp.Body, "expires_at", "token_expires_at", "expiresAt"); ok {
		if exp, ok := credentials.ParseExpiry(v); ok {
			if err := a.creds.SetToken(ctx, token, exp); err != nil {
				a.logger.Warn(ctx, "expiry not updated", "error", err)
			}
		}
	}

	res = succeeded(resp)
	res.User = user
	return res
}

// RefreshToken exchanges the stored token for a new one and stores the new
// token and expiry; the cached user is left alone. On any failure it
// returns false and keeps the existing credentials.
func (a *authService) RefreshToken(ctx context.Context) (string, bool) {
	token := a.creds.Token(ctx)
	if token == "" {
		return "", false
	}

	resp, _ := a.do(ctx, http.MethodPost, "/auth/refresh-token", nil, token)
	if resp == nil || !resp.OK() || explicitFailure(resp) {
		return "", false
	}
	newToken := client.FindToken(resp.Body)
	if newToken == "" {
		return "", false
	}

	var exp time.Time
	if v, ok := client.Lookup(resp.Body, "token_expires_at", "expires_at", "expiresAt"); ok {
		exp, _ = credentials.ParseExpiry(v)
	}
	if err := a.creds.SetToken(ctx, newToken, exp); err != nil {
		a.logger.Error(ctx, "refreshed token not stored", "error", err)
		return "", false
	}
	a.logger.Info(ctx, "token refreshed")
	return newToken, true
}

// Logout tells the API to end the session and clears local credentials.
// The local clear runs even when the call fails or ctx is canceled.
func (a *authService) Logout(ctx context.Context) Result {
	defer a.creds.Clear(context.WithoutCancel(ctx))

	token := a.creds.Token(ctx)
	if token == "" {
		return Result{Success: true, Message: "Logged out"}
	}
	if resp, _ := a.do(ctx, http.MethodPost, "/auth/logout", nil, token); resp != nil && !resp.OK() {
		a.logger.Debug(ctx, "server-side logout rejected", "status", resp.Status)
	}
	return Result{Success: true, Message: "Logged out"}
}

// CurrentUser fetches the signed-in profile and caches it.
func (a *authService) CurrentUser(ctx context.Context) Result {
	token := a.creds.Token(ctx)
	if token == "" {
		return unauthenticated()
	}
	resp, res := a.do(ctx, http.MethodGet, "/auth/user", nil, token)
	if resp == nil {
		return res
	}
	user := userFrom(resp.Body)
	if !resp.OK() || user == nil {
		return failed(resp)
	}
	if err := a.creds.SetUser(ctx, user); err != nil {
		a.logger.Warn(ctx, "cached user not updated", "error", err)
	}
	res = succeeded(resp)
	res.User = user
	return res
}

// userFrom finds the user object under "user" or "data.user", or takes
// "data" itself when it looks like a profile.
func userFrom(body map[string]any) *models.UserProfile {
	raw, ok := client.Lookup(body, "user")
	m, isMap := raw.(map[string]any)
	if !ok || !isMap {
		m = client.Data(body)
		if _, hasID := m["id"]; !hasID {
			return nil
		}
	}
	u, err := models.UserFromMap(m)
	if err != nil {
		return nil
	}
	return u
}

func flag(body map[string]any, name string) bool {
	v, ok := client.Lookup(body, name)
	b, isBool := v.(bool)
	return ok && isBool && b
}

// explicitFailure matches 2xx replies that still say success:false.
func explicitFailure(resp *client.Response) bool {
	v, ok := resp.Body["success"].(bool)
	return ok && !v
}
