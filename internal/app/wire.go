package app

import (
	"log/slog"

	"github.com/quantbay/marketlens/internal/config"
	"github.com/quantbay/marketlens/internal/platform/predix"
	"github.com/quantbay/marketlens/internal/resolver"
	"github.com/quantbay/marketlens/internal/scoring"
	"github.com/quantbay/marketlens/internal/server"
	"github.com/quantbay/marketlens/internal/server/handler"
	"github.com/quantbay/marketlens/internal/service"
)

// Dependencies bundles the service-level objects the application needs to
// operate. It is constructed by Wire.
type Dependencies struct {
	Client   *predix.Client
	Resolver *resolver.Resolver
	Engine   *scoring.Engine
	Analysis *service.AnalysisService
}

// Wire constructs all concrete dependency implementations from the given
// configuration.
func Wire(cfg *config.Config, logger *slog.Logger) *Dependencies {
	client := predix.New(predix.Config{
		BaseURL:    cfg.Upstream.BaseURL,
		APIKey:     cfg.Upstream.APIKey,
		APISecret:  cfg.Upstream.APISecret,
		Timeout:    cfg.Upstream.Timeout.Duration,
		RateLimit:  cfg.Upstream.RateLimit,
		RateBurst:  cfg.Upstream.RateBurst,
		MarketType: cfg.Upstream.MarketType,
		SpecPath:   cfg.Upstream.SpecPath,
		SpecTTL:    cfg.Upstream.SpecTTL.Duration,
	}, logger)

	res := resolver.New(client, cfg.Upstream.PageSize, cfg.Upstream.MaxPages, logger)

	engine := scoring.NewEngine(scoring.Thresholds{
		DepthOK:    cfg.Scoring.DepthOK,
		DepthWait:  cfg.Scoring.DepthWait,
		SpreadOK:   cfg.Scoring.SpreadOKPct,
		SpreadWait: cfg.Scoring.SpreadWaitPct,
		MoveOK:     cfg.Scoring.MoveOKPct,
		MoveWait:   cfg.Scoring.MoveWaitPct,
		VolumeOK:   cfg.Scoring.VolumeOK,
		VolumeWait: cfg.Scoring.VolumeWait,
	})

	analysis := service.NewAnalysisService(res, client, engine, logger)

	return &Dependencies{
		Client:   client,
		Resolver: res,
		Engine:   engine,
		Analysis: analysis,
	}
}

// buildServer assembles the HTTP server around the wired dependencies.
func buildServer(cfg *config.Config, deps *Dependencies, logger *slog.Logger) *server.Server {
	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(logger),
		Analysis: handler.NewAnalysisHandler(deps.Analysis, logger),
	}
	return server.NewServer(server.Config{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, handlers, logger)
}
