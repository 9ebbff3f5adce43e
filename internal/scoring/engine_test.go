package scoring

import (
	"testing"

	"github.com/quantbay/marketlens/internal/domain"
)

// healthyMetrics mirrors the reference book: mid 0.405, tight spread, deep
// band, calm hour.
func healthyMetrics(volume float64) domain.TokenMetrics {
	return domain.TokenMetrics{
		BestBid:   0.40,
		BestAsk:   0.41,
		Mid:       0.405,
		SpreadPct: 2.47,
		Depth:     60000,
		Move1hPct: 2.56,
		Volume24h: volume,
	}
}

func TestScoreAllGreen(t *testing.T) {
	v := NewEngine(Thresholds{}).Score(domain.SideYes, "tok-1", healthyMetrics(60000))

	if v.TotalScore != 4 {
		t.Fatalf("expected total 4, got %d", v.TotalScore)
	}
	if v.Verdict != domain.ScoreOK {
		t.Fatalf("expected OK verdict, got %s", v.Verdict)
	}
	if v.Confidence != 100 {
		t.Fatalf("expected confidence 100, got %d", v.Confidence)
	}
	if len(v.Facts) != 4 {
		t.Fatalf("expected 4 facts, got %d", len(v.Facts))
	}
	if len(v.Why) == 0 || len(v.Why) > 3 {
		t.Fatalf("expected 1..3 rationale strings, got %d", len(v.Why))
	}
}

func TestScoreLowVolumePenalty(t *testing.T) {
	v := NewEngine(Thresholds{}).Score(domain.SideYes, "tok-1", healthyMetrics(5000))

	// liquidity/spread/move OK (+3), volume NO TRADE (-1) => total 2.
	if v.TotalScore != 2 {
		t.Fatalf("expected total 2, got %d", v.TotalScore)
	}
	if v.Verdict != domain.ScoreOK {
		t.Fatalf("expected OK verdict, got %s", v.Verdict)
	}
	if v.Confidence != 75 {
		t.Fatalf("expected confidence 75, got %d", v.Confidence)
	}
}

func TestScoreDepthBoundaries(t *testing.T) {
	e := NewEngine(Thresholds{})
	tests := []struct {
		depth float64
		want  domain.ScoreLabel
	}{
		{25000, domain.ScoreOK},    // inclusive upper threshold
		{24999.99, domain.ScoreWait},
		{10000, domain.ScoreWait},
		{9999.99, domain.ScoreNoTrade},
	}

	for _, tt := range tests {
		m := healthyMetrics(60000)
		m.Depth = tt.depth
		v := e.Score(domain.SideYes, "tok", m)
		if got := v.Facts[0].Status; got != tt.want {
			t.Errorf("depth %v: expected %s, got %s", tt.depth, tt.want, got)
		}
	}
}

func TestScoreSpreadAndMoveAreInverse(t *testing.T) {
	e := NewEngine(Thresholds{})

	m := healthyMetrics(60000)
	m.SpreadPct = 5.01
	if v := e.Score(domain.SideYes, "tok", m); v.Facts[1].Status != domain.ScoreNoTrade {
		t.Fatalf("spread 5.01%% must score NO TRADE, got %s", v.Facts[1].Status)
	}

	m = healthyMetrics(60000)
	m.Move1hPct = 12
	if v := e.Score(domain.SideYes, "tok", m); v.Facts[2].Status != domain.ScoreWait {
		t.Fatalf("move 12%% must score WAIT (inclusive), got %s", v.Facts[2].Status)
	}
}

func TestScoreDegradedDataStillRenders(t *testing.T) {
	// Empty-book degradation: mid from latest price, zero depth.
	m := domain.TokenMetrics{Mid: 0.5, Volume24h: 60000}
	v := NewEngine(Thresholds{}).Score(domain.SideNo, "tok", m)

	if v.Facts[0].Status != domain.ScoreNoTrade {
		t.Fatalf("zero depth must report NO TRADE, got %s", v.Facts[0].Status)
	}
	// spread 0 -> OK, move 0 -> OK, volume -> OK, depth -> NO TRADE: total 2.
	if v.TotalScore != 2 {
		t.Fatalf("expected total 2, got %d", v.TotalScore)
	}
}

func TestVerdictRule(t *testing.T) {
	tests := []struct {
		total float64
		want  domain.ScoreLabel
	}{
		{4, domain.ScoreOK},
		{1, domain.ScoreOK},
		{0.5, domain.ScoreWait},
		{0, domain.ScoreWait},
		{-0.5, domain.ScoreNoTrade},
		{-4, domain.ScoreNoTrade},
	}
	for _, tt := range tests {
		if got := verdictFor(tt.total); got != tt.want {
			t.Errorf("total %v: expected %s, got %s", tt.total, tt.want, got)
		}
	}
}

func TestConfidenceBounds(t *testing.T) {
	if got := confidenceFor(-4); got != 0 {
		t.Errorf("total -4: expected 0, got %d", got)
	}
	if got := confidenceFor(0); got != 50 {
		t.Errorf("total 0: expected 50, got %d", got)
	}
	if got := confidenceFor(4); got != 100 {
		t.Errorf("total 4: expected 100, got %d", got)
	}
}

func TestCombineAveragesTokens(t *testing.T) {
	e := NewEngine(Thresholds{})
	yes := domain.TokenVerdict{TotalScore: 4, Confidence: 100}
	no := domain.TokenVerdict{TotalScore: 0, Confidence: 50}

	overall := e.Combine(yes, no)
	if overall.Verdict != domain.ScoreOK {
		t.Fatalf("mean total 2 must be OK, got %s", overall.Verdict)
	}
	if overall.Confidence != 75 {
		t.Fatalf("expected mean confidence 75, got %d", overall.Confidence)
	}

	// Fractional mean below 1 waits rather than trades.
	no.TotalScore = -3
	no.Confidence = 13
	overall = e.Combine(yes, no)
	if overall.Verdict != domain.ScoreWait {
		t.Fatalf("mean total 0.5 must be WAIT, got %s", overall.Verdict)
	}
}

func TestCustomThresholdsArePolicy(t *testing.T) {
	e := NewEngine(Thresholds{
		DepthOK: 1, DepthWait: 0.5,
		SpreadOK: 50, SpreadWait: 99,
		MoveOK: 50, MoveWait: 99,
		VolumeOK: 1, VolumeWait: 0.5,
	})
	m := domain.TokenMetrics{Depth: 2, SpreadPct: 10, Move1hPct: 10, Volume24h: 2, Mid: 0.5}
	v := e.Score(domain.SideYes, "tok", m)
	if v.TotalScore != 4 {
		t.Fatalf("relaxed policy should score 4, got %d", v.TotalScore)
	}
}
