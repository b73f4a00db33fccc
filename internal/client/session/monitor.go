// Package session keeps a signed-in session alive in the background: it
// refreshes the token before it expires, re-validates it periodically and
// on demand, and forces logout once the API rejects it.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nytevibe/nytevibe/internal/client/models"
	"github.com/nytevibe/nytevibe/internal/client/services"
	"github.com/nytevibe/nytevibe/internal/logging"
)

// DefaultInterval is the period of the recurring check.
const DefaultInterval = time.Hour

// Auth is the part of services.AuthService the monitor calls.
type Auth interface {
	ValidateToken(ctx context.Context) services.Result
	RefreshToken(ctx context.Context) (string, bool)
}

// Credentials is the read side of the credential store.
type Credentials interface {
	Token(ctx context.Context) string
	NeedsRefresh(ctx context.Context) bool
	StoredUser(ctx context.Context) *models.UserProfile
}

// Sink receives the only two side effects the monitor has. It is
// implemented by the application state store; the monitor never navigates.
type Sink interface {
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, u models.UserProfile)
}

// CheckResult is the outcome of one check.
type CheckResult int

const (
	// CheckSkipped: another check was in flight, or ctx was canceled.
	CheckSkipped CheckResult = iota
	// CheckNoSession: no stored token; nothing was sent.
	CheckNoSession
	// CheckRefreshed: the token was near expiry and has been replaced.
	CheckRefreshed
	// CheckRefreshFailed: refresh failed but the token still validates.
	CheckRefreshFailed
	// CheckLoggedOut: the API rejected the token and the sink logged out.
	CheckLoggedOut
	// CheckUserUpdated: the token is valid and the profile changed.
	CheckUserUpdated
	// CheckOK: the token is valid and nothing changed.
	CheckOK
)

func (r CheckResult) String() string {
	switch r {
	case CheckSkipped:
		return "skipped"
	case CheckNoSession:
		return "no-session"
	case CheckRefreshed:
		return "refreshed"
	case CheckRefreshFailed:
		return "refresh-failed"
	case CheckLoggedOut:
		return "logged-out"
	case CheckUserUpdated:
		return "user-updated"
	case CheckOK:
		return "ok"
	}
	return "unknown"
}

// Monitor is the background session task. Run owns its lifetime; Stop ends
// it. Check may also be called directly.
type Monitor struct {
	auth     Auth
	creds    Credentials
	sink     Sink
	logger   logging.Logger
	interval time.Duration

	checking atomic.Bool
	trigger  chan string

	mu     sync.Mutex
	cancel context.CancelFunc
}

type Option func(*Monitor)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

func NewMonitor(auth Auth, creds Credentials, sink Sink, opts ...Option) *Monitor {
	m := &Monitor{
		auth:     auth,
		creds:    creds,
		sink:     sink,
		logger:   logging.Nop(),
		interval: DefaultInterval,
		trigger:  make(chan string, 1),
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = m.logger.With("component", "session")
	return m
}

// Run waits until ready is closed, checks once, then checks on every tick
// and every Trigger until ctx is canceled or Stop is called. Waiting for
// ready keeps the first check from racing a login that is still being
// applied to application state.
func (m *Monitor) Run(ctx context.Context, ready <-chan struct{}) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return nil
	}

	m.logger.Debug(ctx, "session monitor started", "interval", m.interval)
	m.run(ctx, "start")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug(ctx, "session monitor stopped")
			return nil
		case <-ticker.C:
			m.run(ctx, "interval")
		case reason := <-m.trigger:
			m.run(ctx, reason)
		}
	}
}

func (m *Monitor) run(ctx context.Context, reason string) {
	res := m.Check(ctx)
	m.logger.Debug(ctx, "session check", "reason", reason, "result", res.String())

	// Triggers that raced the check are covered by it.
	select {
	case <-m.trigger:
	default:
	}
}

// Stop ends Run. It is safe to call before Run or more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

// Trigger requests an out-of-band check, e.g. when the user returns to the
// app. It never blocks. A trigger arriving while a check is in flight is
// dropped; triggers arriving while one is pending collapse into it.
func (m *Monitor) Trigger(reason string) {
	if m.checking.Load() {
		m.logger.Debug(context.Background(), "session check in flight, trigger dropped", "reason", reason)
		return
	}
	select {
	case m.trigger <- reason:
	default:
	}
}

// Check runs one session check. A call that overlaps one in flight returns
// CheckSkipped at once instead of queuing.
//
// A token inside the refresh window is refreshed. A failed refresh alone
// does not end the session: the token is validated and only a rejection
// logs out. Outside the window the token is validated and a changed
// profile is pushed to the sink.
func (m *Monitor) Check(ctx context.Context) CheckResult {
	if !m.checking.CompareAndSwap(false, true) {
		return CheckSkipped
	}
	defer m.checking.Store(false)

	if m.creds.Token(ctx) == "" {
		return CheckNoSession
	}

	if m.creds.NeedsRefresh(ctx) {
		if _, ok := m.auth.RefreshToken(ctx); ok {
			return CheckRefreshed
		}
		if ctx.Err() != nil {
			return CheckSkipped
		}
		m.logger.Warn(ctx, "token refresh failed, validating")
		res := m.auth.ValidateToken(ctx)
		switch {
		case res.Canceled():
			return CheckSkipped
		case !res.Success:
			return m.logout(ctx, res)
		}
		return CheckRefreshFailed
	}

	before := m.creds.StoredUser(ctx)
	res := m.auth.ValidateToken(ctx)
	switch {
	case res.Canceled():
		return CheckSkipped
	case !res.Success:
		return m.logout(ctx, res)
	case res.User != nil && !res.User.Equal(before):
		m.sink.UpdateUser(ctx, *res.User)
		return CheckUserUpdated
	}
	return CheckOK
}

func (m *Monitor) logout(ctx context.Context, res services.Result) CheckResult {
	m.logger.Info(ctx, "session invalidated", "code", res.Code, "message", res.Message)
	m.sink.Logout(context.WithoutCancel(ctx))
	return CheckLoggedOut
}
