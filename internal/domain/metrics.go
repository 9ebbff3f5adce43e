package domain

// TokenMetrics is the normalized metric set derived for one outcome token.
// All fields are plain numbers; missing or degenerate upstream data degrades
// to zero so scoring can still render a conservative verdict.
type TokenMetrics struct {
	BestBid   float64 `json:"bestBid"`
	BestAsk   float64 `json:"bestAsk"`
	Mid       float64 `json:"mid"`
	SpreadPct float64 `json:"spread"`
	Depth     float64 `json:"depth"`
	Move1hPct float64 `json:"move1h"`
	Volume24h float64 `json:"volume24h"`
}
