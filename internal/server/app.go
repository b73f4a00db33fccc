// Package server wires the development API: in-memory repositories, the
// account service and the HTTP server, with graceful shutdown on SIGINT,
// SIGTERM and SIGQUIT.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nytevibe/nytevibe/internal/logging"
	"github.com/nytevibe/nytevibe/internal/server/config"
	"github.com/nytevibe/nytevibe/internal/server/rest"
	"github.com/nytevibe/nytevibe/internal/server/tokens"
	"github.com/nytevibe/nytevibe/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout)

	us := users.NewService(
		users.NewMemoryRepository(),
		tokens.NewMemoryRepository(nil),
		users.NewLogMailer(logger),
		c,
		logger,
	)

	return &App{config: c, logger: logger, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is canceled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	s := rest.NewServer(app.config, app.logger, app.userService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
