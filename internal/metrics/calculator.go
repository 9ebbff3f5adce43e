// Package metrics derives the normalized per-token metric set from raw
// market data. Compute is a pure function: it performs no I/O, never fails,
// and never mutates its inputs — missing or degenerate data degrades to
// zero so scoring can still render a conservative verdict.
package metrics

import (
	"math"

	"github.com/quantbay/marketlens/internal/domain"
)

// depthBand is the half-width of the depth band around mid price, in
// percentage points of price. Prediction-market prices live in [0,1], so
// one percent of price scale is 0.01 absolute.
const depthBand = 0.01

// Compute derives TokenMetrics for one outcome token.
//
// Best bid/ask are explicit extrema over their side — the upstream gives no
// ordering guarantee, so index 0 is never trusted. When either side is
// empty the mid falls back to latestPrice. All ratios guard their
// denominators: a zero mid yields zero spread and depth, never NaN or Inf.
func Compute(latestPrice float64, book domain.OrderbookSnapshot, history []domain.PricePoint, volume24h float64) domain.TokenMetrics {
	bestBid := book.BestBid()
	bestAsk := book.BestAsk()

	mid := latestPrice
	if bestBid > 0 && bestAsk > 0 {
		mid = (bestBid + bestAsk) / 2
	}

	var spreadPct float64
	if mid > 0 && bestBid > 0 && bestAsk > 0 {
		spreadPct = (bestAsk - bestBid) / mid * 100
	}

	return domain.TokenMetrics{
		BestBid:   bestBid,
		BestAsk:   bestAsk,
		Mid:       mid,
		SpreadPct: spreadPct,
		Depth:     bandDepth(book, mid),
		Move1hPct: movePct(history),
		Volume24h: volume24h,
	}
}

// bandDepth sums resting size within the band around mid: bids at price ≥
// mid−band plus asks at price ≤ mid+band. Zero when mid is zero.
func bandDepth(book domain.OrderbookSnapshot, mid float64) float64 {
	if mid <= 0 {
		return 0
	}
	var depth float64
	for _, l := range book.Bids {
		if l.Price >= mid-depthBand {
			depth += l.Size
		}
	}
	for _, l := range book.Asks {
		if l.Price <= mid+depthBand {
			depth += l.Size
		}
	}
	return depth
}

// movePct is the absolute relative change between the last two chronological
// history points, as a percentage. Zero with fewer than two points or a
// zero prior price.
func movePct(history []domain.PricePoint) float64 {
	if len(history) < 2 {
		return 0
	}
	latest := history[len(history)-1].Price
	prior := history[len(history)-2].Price
	if prior == 0 {
		return 0
	}
	return math.Abs(latest-prior) / prior * 100
}
