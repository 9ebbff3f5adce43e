// Package app provides top-level application lifecycle management for
// marketlens. It wires the upstream client, resolver, scoring engine, and
// analysis service together, then runs either a one-shot analysis or the
// HTTP server.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/quantbay/marketlens/internal/config"
)

// App is the root application object. It owns the configuration and logger.
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

// Run wires dependencies and starts the HTTP server. It blocks until the
// context is cancelled or the server fails, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
		slog.Int("port", a.cfg.Server.Port),
	)

	deps := Wire(a.cfg, a.logger)
	srv := buildServer(a.cfg, deps, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("app: server: %w", err)
		}
		return nil
	}
}

// AnalyzeOnce runs a single analysis for the given identifier and writes the
// resulting JSON document to stdout. It is used by the -id command line mode.
func (a *App) AnalyzeOnce(ctx context.Context, identifier string) error {
	deps := Wire(a.cfg, a.logger)

	analysis, err := deps.Analysis.Analyze(ctx, identifier)
	if err != nil {
		return fmt.Errorf("app: analyze %q: %w", identifier, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		return fmt.Errorf("app: encode analysis: %w", err)
	}
	return nil
}
