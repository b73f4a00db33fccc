// Package credentials persists the credential record (access token, expiry,
// remember-me flag and cached user profile) in the client state database.
//
// All reads fall back to zero values on missing or corrupt data; writes of
// heterogeneous server payloads store every field they can find.
package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nytevibe/nytevibe/internal/client/client"
	"github.com/nytevibe/nytevibe/internal/client/models"
	"github.com/nytevibe/nytevibe/internal/client/repositories/metadata"
	"github.com/nytevibe/nytevibe/internal/common"
	"github.com/nytevibe/nytevibe/internal/dbx"
	"github.com/nytevibe/nytevibe/internal/logging"
	"go.uber.org/multierr"
)

// DefaultRefreshWindow is how long before expiry a token is due for refresh.
const DefaultRefreshWindow = 24 * time.Hour

// Store is the single owner of the credential keys. It is safe for
// concurrent use.
type Store struct {
	mu            sync.RWMutex
	db            *sql.DB
	logger        logging.Logger
	now           func() time.Time
	refreshWindow time.Duration
}

type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithRefreshWindow overrides DefaultRefreshWindow.
func WithRefreshWindow(d time.Duration) Option {
	return func(s *Store) { s.refreshWindow = d }
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:            db,
		logger:        logging.Nop(),
		now:           time.Now,
		refreshWindow: DefaultRefreshWindow,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// SetAuthData stores whatever credential fields payload carries. Field name
// variants of the different backend deployments are accepted, at the top
// level or under "data". The token is found the same way a login reply is
// judged successful, so a nested token is stored too. Each field is written on its own: one failing or
// missing field does not prevent the others from being saved. The returned
// error combines the individual write failures.
func (s *Store) SetAuthData(ctx context.Context, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo := s.repo(s.db)
	var err error

	token := client.FindToken(payload)
	if token != "" {
		err = multierr.Append(err, repo.Set(ctx, common.KeyAuthToken, []byte(token)))
	}

	if raw, ok := client.Lookup(payload, "user"); ok {
		if m, ok := raw.(map[string]any); ok {
			err = multierr.Append(err, s.writeUser(ctx, repo, m))
		}
	}

	expiresAt, ok := lookupTime(payload, "token_expires_at", "expires_at", "tokenExpiresAt", "expiresAt")
	if !ok && token != "" {
		expiresAt, ok = TokenExpiry(token)
	}
	if ok {
		err = multierr.Append(err, repo.Set(ctx, common.KeyTokenExpiresAt, []byte(expiresAt.UTC().Format(time.RFC3339))))
	}

	if rm, ok := lookupBool(payload, "remember_me", "rememberMe"); ok {
		b, _ := json.Marshal(rm)
		err = multierr.Append(err, repo.Set(ctx, common.KeyRememberMe, b))
	}

	return err
}

func (s *Store) writeUser(ctx context.Context, repo metadata.Repository, raw map[string]any) error {
	u, err := models.UserFromMap(raw)
	if err != nil {
		return fmt.Errorf("user payload: %w", err)
	}
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return repo.Set(ctx, common.KeyUserData, b)
}

// SetToken replaces token and expiry together; the cached user is kept.
// A zero expiresAt is derived from the token's exp claim when possible.
func (s *Store) SetToken(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", common.ErrInvalidToken)
	}
	if expiresAt.IsZero() {
		expiresAt, _ = TokenExpiry(token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, common.KeyAuthToken, []byte(token)); err != nil {
			return err
		}
		if expiresAt.IsZero() {
			return repo.Delete(ctx, common.KeyTokenExpiresAt)
		}
		return repo.Set(ctx, common.KeyTokenExpiresAt, []byte(expiresAt.UTC().Format(time.RFC3339)))
	})
}

// SetUser replaces the cached profile.
func (s *Store) SetUser(ctx context.Context, u *models.UserProfile) error {
	if u == nil {
		return errors.New("nil user")
	}
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo(s.db).Set(ctx, common.KeyUserData, b)
}

func (s *Store) get(ctx context.Context, key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, err := s.repo(s.db).Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "credential read failed", "key", key, "error", err)
		return nil
	}
	return v
}

// Token returns the stored access token or "".
func (s *Store) Token(ctx context.Context) string {
	return string(s.get(ctx, common.KeyAuthToken))
}

// StoredUser returns the cached profile, or nil when absent or corrupt.
func (s *Store) StoredUser(ctx context.Context) *models.UserProfile {
	return s.decodeUser(ctx, s.get(ctx, common.KeyUserData))
}

// RememberMe returns the stored flag, false when absent or corrupt.
func (s *Store) RememberMe(ctx context.Context) bool {
	return decodeBool(s.get(ctx, common.KeyRememberMe))
}

// ExpiresAt returns the stored expiry and whether one is stored.
func (s *Store) ExpiresAt(ctx context.Context) (time.Time, bool) {
	return decodeTime(s.get(ctx, common.KeyTokenExpiresAt))
}

// Load reads the whole record in one query, so a concurrent write cannot
// pair a new token with an old expiry.
func (s *Store) Load(ctx context.Context) models.CredentialRecord {
	s.mu.RLock()
	values, err := s.repo(s.db).GetMany(ctx, common.CredentialKeys...)
	s.mu.RUnlock()
	if err != nil {
		s.logger.Warn(ctx, "credential read failed", "error", err)
		return models.CredentialRecord{}
	}

	exp, _ := decodeTime(values[common.KeyTokenExpiresAt])
	return models.CredentialRecord{
		Token:      string(values[common.KeyAuthToken]),
		ExpiresAt:  exp,
		RememberMe: decodeBool(values[common.KeyRememberMe]),
		User:       s.decodeUser(ctx, values[common.KeyUserData]),
	}
}

func (s *Store) decodeUser(ctx context.Context, b []byte) *models.UserProfile {
	if len(b) == 0 {
		return nil
	}
	var u models.UserProfile
	if err := json.Unmarshal(b, &u); err != nil {
		s.logger.Warn(ctx, "corrupt cached user", "error", err)
		return nil
	}
	return &u
}

func decodeBool(b []byte) bool {
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return false
	}
	return v
}

func decodeTime(b []byte) (time.Time, bool) {
	if len(b) == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, string(b))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsAuthenticated is true iff a token is stored.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// NeedsRefresh reports whether the token is due for refresh: no expiry is
// stored, or less than the refresh window remains. This is not a check for
// actual expiry.
func (s *Store) NeedsRefresh(ctx context.Context) bool {
	exp, ok := s.ExpiresAt(ctx)
	if !ok {
		return true
	}
	return exp.Sub(s.now()) < s.refreshWindow
}

// SessionInfo derives display data from the stored expiry.
func (s *Store) SessionInfo(ctx context.Context) models.SessionInfo {
	exp, _ := s.ExpiresAt(ctx)
	return models.NewSessionInfo(exp, s.now())
}

// Clear removes all credential keys. It is idempotent and never fails from
// the caller's point of view; storage errors are logged.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repo(tx).Delete(ctx, common.CredentialKeys...)
	})
	if err != nil {
		s.logger.Error(ctx, "clearing credentials failed", "error", err)
	}
}

// TokenExpiry reads the exp claim of a JWT without verifying it. Opaque
// tokens yield false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func lookupBool(payload map[string]any, names ...string) (bool, bool) {
	v, ok := client.Lookup(payload, names...)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case float64:
		return t != 0, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	return false, false
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

func lookupTime(payload map[string]any, names ...string) (time.Time, bool) {
	v, ok := client.Lookup(payload, names...)
	if !ok {
		return time.Time{}, false
	}
	return ParseExpiry(v)
}

// ParseExpiry accepts RFC 3339 (or SQL-style) strings and unix epochs.
// Epochs above msEpochCutoff are read as milliseconds.
func ParseExpiry(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil && n > 0 {
			return fromEpoch(n), true
		}
	case float64:
		if t > 0 {
			return fromEpoch(int64(t)), true
		}
	}
	return time.Time{}, false
}

// msEpochCutoff is year 5138 in seconds and March 1973 in milliseconds.
const msEpochCutoff = 1e11

func fromEpoch(n int64) time.Time {
	if n > msEpochCutoff {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
