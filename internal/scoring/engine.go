// Package scoring maps token metrics to qualitative verdicts. Each of the
// four metrics is checked against a monotone three-level step function; the
// thresholds are deploy-time policy, not domain law, and default to the
// values below.
package scoring

import (
	"fmt"
	"math"

	"github.com/quantbay/marketlens/internal/domain"
)

// Thresholds holds the step-function boundaries for the four metric checks.
// Depth and volume are direct (higher is better); spread and 1h move are
// inverse (lower is better).
type Thresholds struct {
	DepthOK    float64 // depth ≥ DepthOK scores OK
	DepthWait  float64 // depth ≥ DepthWait scores WAIT
	SpreadOK   float64 // spread% ≤ SpreadOK scores OK
	SpreadWait float64 // spread% ≤ SpreadWait scores WAIT
	MoveOK     float64 // move% ≤ MoveOK scores OK
	MoveWait   float64 // move% ≤ MoveWait scores WAIT
	VolumeOK   float64 // volume ≥ VolumeOK scores OK
	VolumeWait float64 // volume ≥ VolumeWait scores WAIT
}

// DefaultThresholds returns the stock scoring policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DepthOK:    25000,
		DepthWait:  10000,
		SpreadOK:   2.5,
		SpreadWait: 5,
		MoveOK:     6,
		MoveWait:   12,
		VolumeOK:   50000,
		VolumeWait: 20000,
	}
}

// Engine scores token metrics against a fixed threshold policy.
type Engine struct {
	th Thresholds
}

// NewEngine creates an Engine with the given thresholds. Zero-valued
// thresholds fall back to the defaults.
func NewEngine(th Thresholds) *Engine {
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	return &Engine{th: th}
}

// Score maps one token's metrics to a TokenVerdict: four independent
// three-level checks summed into a total in [-4, +4], a verdict from the
// total, and a confidence that linearly rescales the total into [0, 100].
func (e *Engine) Score(side domain.TokenSide, tokenID string, m domain.TokenMetrics) domain.TokenVerdict {
	liquidity := scoreDirect(m.Depth, e.th.DepthOK, e.th.DepthWait)
	spread := scoreInverse(m.SpreadPct, e.th.SpreadOK, e.th.SpreadWait)
	move := scoreInverse(m.Move1hPct, e.th.MoveOK, e.th.MoveWait)
	volume := scoreDirect(m.Volume24h, e.th.VolumeOK, e.th.VolumeWait)

	total := liquidity.Contribution + spread.Contribution + move.Contribution + volume.Contribution

	return domain.TokenVerdict{
		Side:       side,
		TokenID:    tokenID,
		Verdict:    verdictFor(float64(total)),
		Confidence: confidenceFor(float64(total)),
		TotalScore: total,
		Metrics:    m,
		Facts: []domain.Fact{
			{Label: "1% depth", Value: fmt.Sprintf("%.0f", m.Depth), Status: liquidity.Label},
			{Label: "Spread", Value: fmt.Sprintf("%.2f%%", m.SpreadPct), Status: spread.Label},
			{Label: "1h move", Value: fmt.Sprintf("%.2f%%", m.Move1hPct), Status: move.Label},
			{Label: "24h volume", Value: fmt.Sprintf("%.0f", m.Volume24h), Status: volume.Label},
		},
		Why: rationale(liquidity.Label, spread.Label, move.Label),
	}
}

// Combine derives the market-level verdict as the arithmetic mean of the
// two token totals and confidences, re-mapped through the same three-level
// rule.
func (e *Engine) Combine(yes, no domain.TokenVerdict) domain.Overall {
	meanTotal := (float64(yes.TotalScore) + float64(no.TotalScore)) / 2
	meanConfidence := (float64(yes.Confidence) + float64(no.Confidence)) / 2

	return domain.Overall{
		Verdict:    verdictFor(meanTotal),
		Confidence: int(math.Round(meanConfidence)),
	}
}

// scoreDirect applies a higher-is-better step function.
func scoreDirect(v, ok, wait float64) domain.ScoreResult {
	switch {
	case v >= ok:
		return domain.ScoreResult{Label: domain.ScoreOK, Contribution: 1}
	case v >= wait:
		return domain.ScoreResult{Label: domain.ScoreWait, Contribution: 0}
	default:
		return domain.ScoreResult{Label: domain.ScoreNoTrade, Contribution: -1}
	}
}

// scoreInverse applies a lower-is-better step function.
func scoreInverse(v, ok, wait float64) domain.ScoreResult {
	switch {
	case v <= ok:
		return domain.ScoreResult{Label: domain.ScoreOK, Contribution: 1}
	case v <= wait:
		return domain.ScoreResult{Label: domain.ScoreWait, Contribution: 0}
	default:
		return domain.ScoreResult{Label: domain.ScoreNoTrade, Contribution: -1}
	}
}

// verdictFor maps a (possibly fractional) total to the three-level verdict:
// ≥ 1 trades, < 0 avoids, anything between waits.
func verdictFor(total float64) domain.ScoreLabel {
	switch {
	case total >= 1:
		return domain.ScoreOK
	case total < 0:
		return domain.ScoreNoTrade
	default:
		return domain.ScoreWait
	}
}

// confidenceFor linearly rescales a total in [-4, +4] to [0, 100]. This is
// a display heuristic, deliberately not a statistical probability.
func confidenceFor(total float64) int {
	return int(math.Round((total + 4) / 8 * 100))
}

// rationale renders up to three fixed template strings, one per headline
// metric, switching between an OK and a caution phrasing.
func rationale(liquidity, spread, move domain.ScoreLabel) []string {
	why := make([]string, 0, 3)

	if liquidity == domain.ScoreOK {
		why = append(why, "Resting liquidity near mid is deep enough to fill without moving the price.")
	} else {
		why = append(why, "Thin liquidity near mid: fills are likely to slip against you.")
	}

	if spread == domain.ScoreOK {
		why = append(why, "Bid/ask spread is tight, so round-trip cost is low.")
	} else {
		why = append(why, "Wide bid/ask spread: crossing it gives up meaningful edge.")
	}

	if move == domain.ScoreOK {
		why = append(why, "Price has been stable over the last hour.")
	} else {
		why = append(why, "Price moved sharply in the last hour; wait for it to settle.")
	}

	return why
}
