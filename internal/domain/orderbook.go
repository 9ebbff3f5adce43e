package domain

import "time"

// PriceLevel is a single price+size entry in an orderbook.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderbookSnapshot holds the resting bids and asks for one outcome token.
// The upstream gives no ordering guarantee within a side, so best bid/ask
// must be taken as explicit extrema, never as index 0.
type OrderbookSnapshot struct {
	TokenID string       `json:"tokenId"`
	Bids    []PriceLevel `json:"bids"`
	Asks    []PriceLevel `json:"asks"`
}

// BestBid returns the highest bid price, or 0 when the side is empty.
func (s OrderbookSnapshot) BestBid() float64 {
	var best float64
	for _, l := range s.Bids {
		if l.Price > best {
			best = l.Price
		}
	}
	return best
}

// BestAsk returns the lowest ask price, or 0 when the side is empty.
func (s OrderbookSnapshot) BestAsk() float64 {
	var best float64
	for _, l := range s.Asks {
		if l.Price > 0 && (best == 0 || l.Price < best) {
			best = l.Price
		}
	}
	return best
}

// PricePoint is a timestamped price sample from the interval-bucketed
// history endpoint. Samples arrive in chronological ascending order.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}
