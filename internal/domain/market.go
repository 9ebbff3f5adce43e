package domain

// Market represents one prediction-market topic as returned by the upstream
// listing. A topic may expose its YES/NO token pair directly, or carry child
// markets (sub-outcomes of a multi-outcome topic) that do.
type Market struct {
	ID         string   `json:"marketId"`
	TopicID    string   `json:"topicId"`
	Title      string   `json:"title"`
	Volume24h  float64  `json:"volume24h"`
	YesTokenID string   `json:"yesTokenId,omitempty"`
	NoTokenID  string   `json:"noTokenId,omitempty"`
	Children   []Market `json:"children,omitempty"`
}

// Tradable reports whether the market exposes both outcome-token IDs and can
// therefore be analyzed directly.
func (m Market) Tradable() bool {
	return m.YesTokenID != "" && m.NoTokenID != ""
}

// Matches reports whether the market's own ID or topic ID equals target.
func (m Market) Matches(target string) bool {
	return (m.ID != "" && m.ID == target) || (m.TopicID != "" && m.TopicID == target)
}

// ResolvedMarket is the output of market resolution: the selected tradable
// record, its parent (when the selection descended into a child market), the
// token pair, and the carried-forward 24h volume.
type ResolvedMarket struct {
	Market     Market  `json:"market"`
	Parent     *Market `json:"parent,omitempty"`
	YesTokenID string  `json:"yesTokenId"`
	NoTokenID  string  `json:"noTokenId"`
	Volume24h  float64 `json:"volume24h"`
}
