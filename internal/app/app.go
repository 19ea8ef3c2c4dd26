// Package app provides the top-level application lifecycle for the weather
// alert bot. It wires the Gamma client, tracker, Telegram bot, scheduler, and
// health server together and runs them until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Teeee306/PM-alert-bot3/internal/config"
)

// App is the root application object.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies and runs the scheduler, the Telegram update
// loop, and (when enabled) the HTTP server until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	deps, err := Wire(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Scheduler.Run(ctx)
	})

	g.Go(func() error {
		return deps.Bot.Run(ctx)
	})

	if deps.Server != nil {
		g.Go(func() error {
			return deps.Server.Start()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := deps.Server.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
			}
			return ctx.Err()
		})
	}

	return g.Wait()
}
