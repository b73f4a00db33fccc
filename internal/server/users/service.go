// Package users implements accounts, sessions, password recovery and email
// verification for the development API.
package users

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nytevibe/nytevibe/internal/common"
	"github.com/nytevibe/nytevibe/internal/logging"
	"github.com/nytevibe/nytevibe/internal/server/auth"
	"github.com/nytevibe/nytevibe/internal/server/config"
	"github.com/nytevibe/nytevibe/internal/server/models"
	"github.com/nytevibe/nytevibe/internal/server/tokens"
)

// Session is a freshly issued access token.
type Session struct {
	Token      string
	ExpiresAt  time.Time
	RememberMe bool
	User       *models.User
}

type Service struct {
	repo                        Repository
	tokens                      tokens.Repository
	mailer                      Mailer
	logger                      logging.Logger
	jwtSecret                   []byte
	publicURL                   string
	accessTokenValidityDuration time.Duration
	rememberMeValidityDuration  time.Duration
	linkValidityDuration        time.Duration
	bcryptCost                  int
	now                         func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(repo Repository, tokenRepo tokens.Repository, mailer Mailer, cfg *config.Config, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		repo:                        repo,
		tokens:                      tokenRepo,
		mailer:                      mailer,
		logger:                      logger.With("module", "users"),
		jwtSecret:                   []byte(cfg.SecretKey),
		publicURL:                   strings.TrimRight(cfg.PublicURL, "/"),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		rememberMeValidityDuration:  cfg.RememberMeValidityDuration,
		linkValidityDuration:        cfg.LinkValidityDuration,
		bcryptCost:                  bcrypt.DefaultCost,
		now:                         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates an account, sends the verification mail and signs the
// new user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if err := check(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		Level:        "Explorer",
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user registered", "user_id", user.ID)

	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.Warn(ctx, "verification mail not sent", "user_id", user.ID, "error", err)
	}

	return s.issue(user, false)
}

// Login checks the password of the account matching login (username or
// email).
func (s *Service) Login(ctx context.Context, login, password string, rememberMe bool) (*Session, error) {
	user, err := s.repo.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidLoginPassword
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorInvalidLoginPassword
	}

	return s.issue(user, rememberMe)
}

// Authenticate resolves a bearer token to its user. Revoked tokens and
// tokens issued before the last password reset are invalid.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret, s.now())
	if err != nil {
		return nil, nil, err
	}
	if s.tokens.Revoked(ctx, claims.ID) {
		return nil, nil, common.ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, common.ErrInvalidToken
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Time.Before(user.TokensValidAfter.Truncate(time.Second)) {
		return nil, nil, common.ErrInvalidToken
	}

	return user, claims, nil
}

// Refresh revokes the presented token and issues a new one with the same
// remember-me lifetime.
func (s *Service) Refresh(ctx context.Context, user *models.User, claims *auth.Claims) (*Session, error) {
	if err := s.Logout(ctx, claims); err != nil {
		return nil, err
	}
	return s.issue(user, claims.RememberMe)
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	until := s.now()
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.tokens.Revoke(ctx, claims.ID, until)
}

func (s *Service) issue(user *models.User, rememberMe bool) (*Session, error) {
	validity := s.accessTokenValidityDuration
	if rememberMe {
		validity = s.rememberMeValidityDuration
	}
	token, claims, err := auth.GenerateToken(user.ID, rememberMe, s.jwtSecret, s.now(), validity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, RememberMe: rememberMe, User: user}, nil
}

// ForgotPassword mails a reset link to the account matching login (email
// or username). Unknown accounts succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, login string) error {
	login = strings.TrimSpace(login)
	switch {
	case login == "":
		return FieldErrors{"email": "The email field is required."}
	case strings.Contains(login, "@") && validate.Var(login, "email") != nil:
		return FieldErrors{"email": "The email must be a valid email address."}
	}

	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "password reset for unknown account")
			return nil
		}
		return err
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}
	err = s.tokens.Create(ctx, &models.OneTimeToken{
		Token:   token,
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: models.PurposePasswordReset,
		Expires: s.now().Add(s.linkValidityDuration),
	})
	if err != nil {
		return err
	}

	link := s.publicURL + "/reset-password?" + url.Values{"token": {token}, "email": {user.Email}}.Encode()
	return s.mailer.Send(ctx, Mail{To: user.Email, Subject: "Reset your nYtevibe password", Links: []string{link}})
}

// VerifyResetToken checks that token is a live reset token issued for email.
func (s *Service) VerifyResetToken(ctx context.Context, token, email string) error {
	_, err := s.resetToken(ctx, token, email)
	return err
}

func (s *Service) resetToken(ctx context.Context, token, email string) (*models.OneTimeToken, error) {
	if token == "" || email == "" {
		return nil, common.ErrInvalidToken
	}
	t, err := s.tokens.Find(ctx, models.PurposePasswordReset, token)
	if err != nil || !strings.EqualFold(t.Email, strings.TrimSpace(email)) {
		return nil, common.ErrInvalidToken
	}
	if t.Expired(s.now()) {
		_ = s.tokens.Delete(ctx, models.PurposePasswordReset, token)
		return nil, common.ErrTokenExpired
	}
	return t, nil
}

// ResetPassword sets a new password, consumes the token and invalidates
// every access token issued so far.
func (s *Service) ResetPassword(ctx context.Context, in ResetInput) error {
	if err := check(in); err != nil {
		return err
	}
	t, err := s.resetToken(ctx, in.Token, in.Email)
	if err != nil {
		return err
	}

	user, err := s.repo.GetUserByID(ctx, t.UserID)
	if err != nil {
		return common.ErrInvalidToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	user.PasswordHash = hash
	user.TokensValidAfter = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return s.tokens.Delete(ctx, models.PurposePasswordReset, in.Token)
}

// ResendVerification mails a new verification link. Unknown and already
// verified addresses succeed silently.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return FieldErrors{"email": "The email must be a valid email address."}
	}
	user, err := s.repo.GetUserByLogin(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}
	if user.Verified() {
		return nil
	}
	return s.sendVerification(ctx, user)
}

// sendVerification mails both link formats: the signed
// /verify/{id}/{hash}?expires=&signature= link and the legacy ?token= link.
func (s *Service) sendVerification(ctx context.Context, user *models.User) error {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}
	expires := s.now().Add(s.linkValidityDuration)
	err = s.tokens.Create(ctx, &models.OneTimeToken{
		Token:   token,
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: models.PurposeEmailVerification,
		Expires: expires,
	})
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, Mail{
		To:      user.Email,
		Subject: "Verify your nYtevibe email address",
		Links: []string{
			s.SignedVerificationLink(user, expires),
			s.publicURL + "/verify-email?" + url.Values{"token": {token}}.Encode(),
		},
	})
}

// SignedVerificationLink builds the /verify/{id}/{hash} link valid until
// expires.
func (s *Service) SignedVerificationLink(user *models.User, expires time.Time) string {
	hash := emailHash(user.Email)
	exp := strconv.FormatInt(expires.Unix(), 10)
	q := url.Values{"expires": {exp}, "signature": {s.sign(user.ID, hash, exp)}}
	return s.publicURL + "/verify/" + url.PathEscape(user.ID) + "/" + hash + "?" + q.Encode()
}

func (s *Service) sign(userID, hash, expires string) string {
	mac := hmac.New(sha256.New, s.jwtSecret)
	mac.Write([]byte(userID + "/" + hash + "?expires=" + expires))
	return hex.EncodeToString(mac.Sum(nil))
}

func emailHash(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(email)))
	return hex.EncodeToString(sum[:])
}

// VerifyEmail confirms the address behind a /verify/{id}/{hash} link. When
// expires and signature are both empty only the hash is checked.
func (s *Service) VerifyEmail(ctx context.Context, userID, hash, expires, signature string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(hash), []byte(emailHash(user.Email))) != 1 {
		return nil, common.ErrInvalidToken
	}

	if expires != "" || signature != "" {
		if !hmac.Equal([]byte(signature), []byte(s.sign(userID, hash, expires))) {
			return nil, common.ErrInvalidToken
		}
		exp, err := strconv.ParseInt(expires, 10, 64)
		if err != nil {
			return nil, common.ErrInvalidToken
		}
		if !s.now().Before(time.Unix(exp, 0)) {
			return nil, common.ErrTokenExpired
		}
	}

	return s.markVerified(ctx, user)
}

// VerifyEmailToken confirms the address behind a legacy ?token= link.
func (s *Service) VerifyEmailToken(ctx context.Context, token string) (*models.User, error) {
	t, err := s.tokens.Find(ctx, models.PurposeEmailVerification, token)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if t.Expired(s.now()) {
		_ = s.tokens.Delete(ctx, models.PurposeEmailVerification, token)
		return nil, common.ErrTokenExpired
	}
	user, err := s.repo.GetUserByID(ctx, t.UserID)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	_ = s.tokens.Delete(ctx, models.PurposeEmailVerification, token)
	return s.markVerified(ctx, user)
}

func (s *Service) markVerified(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Verified() {
		return user, nil
	}
	now := s.now().UTC()
	user.EmailVerifiedAt = &now
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "email verified", "user_id", user.ID)
	return user, nil
}

// Available reports whether no account uses value for field (username,
// email or phone).
func (s *Service) Available(ctx context.Context, field, value string) (bool, error) {
	value = strings.TrimSpace(value)

	var err error
	switch field {
	case "username":
		if !usernamePattern.MatchString(value) {
			return false, FieldErrors{field: "The username may only contain letters, numbers, dots and underscores."}
		}
		_, err = s.repo.GetUserByLogin(ctx, value)
	case "email":
		if validate.Var(value, "required,email") != nil {
			return false, FieldErrors{field: "The email must be a valid email address."}
		}
		_, err = s.repo.GetUserByLogin(ctx, value)
	case "phone":
		if validate.Var(value, "required,e164") != nil {
			return false, FieldErrors{field: "The phone format is invalid."}
		}
		_, err = s.repo.GetUserByPhone(ctx, value)
	default:
		return false, common.ErrorValidation
	}

	if errors.Is(err, common.ErrorNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}
