package domain

import "time"

// ScoreLabel is the qualitative level assigned to a metric or a whole token.
type ScoreLabel string

const (
	ScoreOK      ScoreLabel = "OK"
	ScoreWait    ScoreLabel = "WAIT"
	ScoreNoTrade ScoreLabel = "NO TRADE"
)

// TokenSide identifies which outcome of a binary market a token represents.
type TokenSide string

const (
	SideYes TokenSide = "YES"
	SideNo  TokenSide = "NO"
)

// ScoreResult is one metric's qualitative label plus its numeric
// contribution in {+1, 0, -1}.
type ScoreResult struct {
	Label        ScoreLabel `json:"label"`
	Contribution int        `json:"contribution"`
}

// Fact is a display triple describing one scored metric.
type Fact struct {
	Label  string     `json:"label"`
	Value  string     `json:"value"`
	Status ScoreLabel `json:"status"`
}

// TokenVerdict aggregates the four per-metric scores for one outcome token.
// TotalScore ranges over [-4, +4]; Confidence is a linear rescaling of the
// total into [0, 100] and is a display heuristic, not a probability.
type TokenVerdict struct {
	Side       TokenSide    `json:"side"`
	TokenID    string       `json:"tokenId"`
	Verdict    ScoreLabel   `json:"verdict"`
	Confidence int          `json:"confidence"`
	TotalScore int          `json:"totalScore"`
	Metrics    TokenMetrics `json:"metrics"`
	Facts      []Fact       `json:"facts"`
	Why        []string     `json:"why"`
}

// Overall is the market-level verdict derived from both token verdicts.
type Overall struct {
	Verdict    ScoreLabel `json:"verdict"`
	Confidence int        `json:"confidence"`
}

// MarketAnalysis is the final analysis response: resolved market identity,
// per-token verdicts for YES and NO, and the combined overall verdict. The
// resolved market record is passed through as a side channel for caller
// inspection and plays no part in the verdict itself.
type MarketAnalysis struct {
	ID          string         `json:"id"`
	MarketID    string         `json:"marketId"`
	TopicID     string         `json:"topicId"`
	Overall     Overall        `json:"overall"`
	Tokens      []TokenVerdict `json:"tokens"`
	Resolved    ResolvedMarket `json:"resolved"`
	GeneratedAt time.Time      `json:"generatedAt"`
}
