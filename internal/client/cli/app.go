package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nytevibe/nytevibe/internal/client/client"
	"github.com/nytevibe/nytevibe/internal/client/config"
	"github.com/nytevibe/nytevibe/internal/client/credentials"
	"github.com/nytevibe/nytevibe/internal/client/debounce"
	"github.com/nytevibe/nytevibe/internal/client/services"
	"github.com/nytevibe/nytevibe/internal/client/session"
	"github.com/nytevibe/nytevibe/internal/client/store"
	"github.com/nytevibe/nytevibe/internal/logging"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	creds    *credentials.Store
	auth     services.AuthService
	store    *store.Store
	actions  *store.Actions
	monitor  *session.Monitor
	checks   *debounce.Debouncer
	cooldown *services.Cooldown
	reader   *bufio.Reader
	out      io.Writer

	mu   sync.Mutex
	seen map[string]bool
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stderr)

	db, err := client.OpenStateDB(context.Background(), c.StateDSN)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	creds := credentials.New(db,
		credentials.WithRefreshWindow(c.RefreshWindow),
		credentials.WithLogger(logger),
	)
	api := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, client.WithRetries(2, 200*time.Millisecond))

	return newApp(c, logger, db, creds, api, bufio.NewReader(os.Stdin), os.Stdout), nil
}

// newApp wires everything above the transport; tests pass their own API
// client and I/O.
func newApp(c *config.Config, logger logging.Logger, db *sql.DB, creds *credentials.Store, api client.Client, in *bufio.Reader, out io.Writer) *App {
	auth := services.NewAuthService(api, creds, logger)
	st := store.New(store.Initial())
	actions := store.NewActions(st, auth, creds, logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		creds:    creds,
		auth:     auth,
		store:    st,
		actions:  actions,
		monitor:  session.NewMonitor(auth, creds, actions, session.WithInterval(c.SessionCheckInterval), session.WithLogger(logger)),
		checks:   debounce.New(c.DebounceDelay),
		cooldown: services.NewCooldown(time.Now),
		reader:   in,
		out:      out,
		seen:     make(map[string]bool),
	}
}

// Run restores the stored session, starts the session monitor and runs the
// REPL until the user exits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	unsubscribe := a.store.Subscribe(a.printNotifications)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.actions.Hydrate(ctx) {
		a.logger.Info(ctx, "stored session found, validating")
	}
	a.actions.MarkInitialized()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.monitor.Run(gctx, a.actions.Ready())
	})
	g.Go(func() error {
		defer cancel()
		a.Root(gctx)
		return nil
	})
	return g.Wait()
}

func (a *App) close() {
	a.monitor.Stop()
	a.checks.Stop()
	a.actions.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Warn(context.Background(), "close state database", "error", err)
	}
}

// printNotifications prints every notification the first time it appears
// in state.
func (a *App) printNotifications(s store.State) {
	a.mu.Lock()
	defer a.mu.Unlock()

	live := make(map[string]bool, len(s.Notifications))
	for _, n := range s.Notifications {
		live[n.ID] = true
		if a.seen[n.ID] {
			continue
		}
		a.seen[n.ID] = true
		printlnFn(fmt.Sprintf("[%s] %s", n.Type, n.Message))
	}
	for id := range a.seen {
		if !live[id] {
			delete(a.seen, id)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.State().Authenticated
}

// Root prints the banner and runs the REPL on stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to nYtevibe CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) getStatus() string {
	s := a.store.State()
	status := string(s.View)
	if s.Authenticated && s.User != nil {
		status = s.User.DisplayName() + " " + status
	}
	return fmt.Sprintf("(%s)", status)
}
