package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/quantbay/marketlens/internal/domain"
	"github.com/quantbay/marketlens/internal/metrics"
	"github.com/quantbay/marketlens/internal/platform/predix"
	"github.com/quantbay/marketlens/internal/resolver"
	"github.com/quantbay/marketlens/internal/scoring"
)

// historyInterval is the bucket size of the price history used for the
// 1h-move metric.
const historyInterval = "1h"

// AnalysisService orchestrates a full market analysis: market resolution,
// concurrent data fetches for both outcome tokens, metric computation, and
// scoring.
type AnalysisService struct {
	resolver *resolver.Resolver
	client   *predix.Client
	engine   *scoring.Engine
	logger   *slog.Logger
}

// NewAnalysisService creates an AnalysisService with all required
// dependencies.
func NewAnalysisService(r *resolver.Resolver, client *predix.Client, engine *scoring.Engine, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		resolver: r,
		client:   client,
		engine:   engine,
		logger:   logger.With(slog.String("component", "analysis")),
	}
}

// Resolve exposes market resolution to the boundary layer without running a
// full analysis.
func (s *AnalysisService) Resolve(ctx context.Context, identifier string) (domain.ResolvedMarket, error) {
	return s.resolver.Resolve(ctx, identifier)
}

// Analyze resolves the identifier and renders the full MarketAnalysis. The
// two tokens are analyzed concurrently, and each token's three upstream
// fetches fan out concurrently as well — up to six requests in flight —
// joined before scoring. The branches share no mutable state; each writes
// only its own slot.
func (s *AnalysisService) Analyze(ctx context.Context, identifier string) (domain.MarketAnalysis, error) {
	start := time.Now()

	rm, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return domain.MarketAnalysis{}, err
	}

	sides := [2]struct {
		side    domain.TokenSide
		tokenID string
	}{
		{domain.SideYes, rm.YesTokenID},
		{domain.SideNo, rm.NoTokenID},
	}

	var verdicts [2]domain.TokenVerdict
	g, gctx := errgroup.WithContext(ctx)
	for i, tk := range sides {
		i, tk := i, tk
		g.Go(func() error {
			v, err := s.analyzeToken(gctx, tk.side, tk.tokenID, rm.Volume24h)
			if err != nil {
				return err
			}
			verdicts[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.MarketAnalysis{}, fmt.Errorf("analysis: %w", err)
	}

	overall := s.engine.Combine(verdicts[0], verdicts[1])

	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("market_id", rm.Market.ID),
		slog.String("verdict", string(overall.Verdict)),
		slog.Int("confidence", overall.Confidence),
		slog.Duration("duration", time.Since(start)),
	)

	return domain.MarketAnalysis{
		ID:          uuid.NewString(),
		MarketID:    rm.Market.ID,
		TopicID:     rm.Market.TopicID,
		Overall:     overall,
		Tokens:      verdicts[:],
		Resolved:    rm,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// analyzeToken fetches the token's latest price, orderbook, and 1h history
// concurrently, then computes metrics and scores them. Fetch failures
// propagate; missing fields inside successful payloads degrade to zero.
func (s *AnalysisService) analyzeToken(ctx context.Context, side domain.TokenSide, tokenID string, volume24h float64) (domain.TokenVerdict, error) {
	var (
		latest  float64
		book    domain.OrderbookSnapshot
		history []domain.PricePoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		latest, err = s.client.LatestPrice(gctx, tokenID)
		return err
	})
	g.Go(func() error {
		var err error
		book, err = s.client.OrderBook(gctx, tokenID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.client.PriceHistory(gctx, tokenID, historyInterval)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.TokenVerdict{}, fmt.Errorf("token %s (%s): %w", tokenID, side, err)
	}

	m := metrics.Compute(latest, book, history, volume24h)
	return s.engine.Score(side, tokenID, m), nil
}
