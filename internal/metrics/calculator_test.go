package metrics

import (
	"math"
	"reflect"
	"testing"

	"github.com/quantbay/marketlens/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeReferenceBook(t *testing.T) {
	book := domain.OrderbookSnapshot{
		Bids: []domain.PriceLevel{{Price: 0.40, Size: 30000}},
		Asks: []domain.PriceLevel{{Price: 0.41, Size: 30000}},
	}
	history := []domain.PricePoint{{Price: 0.39}, {Price: 0.40}}

	m := Compute(0, book, history, 60000)

	if !almostEqual(m.Mid, 0.405) {
		t.Fatalf("mid: expected 0.405, got %v", m.Mid)
	}
	if !almostEqual(m.SpreadPct, 0.01/0.405*100) {
		t.Fatalf("spread: expected ~2.47, got %v", m.SpreadPct)
	}
	if m.Depth != 60000 {
		t.Fatalf("depth: expected 60000, got %v", m.Depth)
	}
	if !almostEqual(m.Move1hPct, 0.01/0.39*100) {
		t.Fatalf("move: expected ~2.56, got %v", m.Move1hPct)
	}
	if m.Volume24h != 60000 {
		t.Fatalf("volume: expected 60000, got %v", m.Volume24h)
	}
}

func TestComputeBestPricesAreExtremaNotIndexZero(t *testing.T) {
	// Both sides deliberately unsorted: the first entry is never the best.
	book := domain.OrderbookSnapshot{
		Bids: []domain.PriceLevel{
			{Price: 0.35, Size: 10},
			{Price: 0.40, Size: 20},
			{Price: 0.38, Size: 30},
		},
		Asks: []domain.PriceLevel{
			{Price: 0.50, Size: 10},
			{Price: 0.41, Size: 20},
			{Price: 0.45, Size: 30},
		},
	}

	m := Compute(0, book, nil, 0)
	if m.BestBid != 0.40 {
		t.Fatalf("best bid must be the maximum, got %v", m.BestBid)
	}
	if m.BestAsk != 0.41 {
		t.Fatalf("best ask must be the minimum, got %v", m.BestAsk)
	}
}

func TestComputeEmptyBookFallsBackToLatestPrice(t *testing.T) {
	m := Compute(0.5, domain.OrderbookSnapshot{}, nil, 0)
	if m.Mid != 0.5 {
		t.Fatalf("mid: expected latest-price fallback 0.5, got %v", m.Mid)
	}
	if m.SpreadPct != 0 {
		t.Fatalf("spread: expected 0 for empty book, got %v", m.SpreadPct)
	}
	if m.Depth != 0 {
		t.Fatalf("depth: expected 0 for empty book, got %v", m.Depth)
	}
	if m.Move1hPct != 0 {
		t.Fatalf("move: expected 0 for empty history, got %v", m.Move1hPct)
	}
}

func TestComputeZeroMidNeverNaN(t *testing.T) {
	m := Compute(0, domain.OrderbookSnapshot{}, nil, 0)

	for name, v := range map[string]float64{
		"mid":    m.Mid,
		"spread": m.SpreadPct,
		"depth":  m.Depth,
		"move":   m.Move1hPct,
	} {
		if v != 0 {
			t.Errorf("%s: expected 0, got %v", name, v)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s: must never be NaN/Inf, got %v", name, v)
		}
	}
}

func TestComputeZeroPriorMove(t *testing.T) {
	history := []domain.PricePoint{{Price: 0}, {Price: 0.4}}
	m := Compute(0.4, domain.OrderbookSnapshot{}, history, 0)
	if m.Move1hPct != 0 {
		t.Fatalf("zero prior must yield zero move, got %v", m.Move1hPct)
	}
}

func TestComputeSinglePointHistory(t *testing.T) {
	m := Compute(0.4, domain.OrderbookSnapshot{}, []domain.PricePoint{{Price: 0.4}}, 0)
	if m.Move1hPct != 0 {
		t.Fatalf("single-point history must yield zero move, got %v", m.Move1hPct)
	}
}

func TestComputeDepthBandExcludesFarLevels(t *testing.T) {
	book := domain.OrderbookSnapshot{
		Bids: []domain.PriceLevel{
			{Price: 0.50, Size: 100}, // within band of mid 0.505
			{Price: 0.30, Size: 9999},
		},
		Asks: []domain.PriceLevel{
			{Price: 0.51, Size: 200}, // within band
			{Price: 0.90, Size: 9999},
		},
	}
	m := Compute(0, book, nil, 0)
	if m.Depth != 300 {
		t.Fatalf("depth must exclude levels outside the band: expected 300, got %v", m.Depth)
	}
}

func TestComputeIsPureAndDoesNotMutateInputs(t *testing.T) {
	book := domain.OrderbookSnapshot{
		Bids: []domain.PriceLevel{{Price: 0.38, Size: 10}, {Price: 0.40, Size: 20}},
		Asks: []domain.PriceLevel{{Price: 0.45, Size: 10}, {Price: 0.41, Size: 20}},
	}
	history := []domain.PricePoint{{Price: 0.39}, {Price: 0.40}}

	bookBefore := domain.OrderbookSnapshot{
		Bids: append([]domain.PriceLevel(nil), book.Bids...),
		Asks: append([]domain.PriceLevel(nil), book.Asks...),
	}
	historyBefore := append([]domain.PricePoint(nil), history...)

	first := Compute(0.4, book, history, 1000)
	second := Compute(0.4, book, history, 1000)

	if first != second {
		t.Fatalf("identical inputs produced different outputs:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(book.Bids, bookBefore.Bids) || !reflect.DeepEqual(book.Asks, bookBefore.Asks) {
		t.Fatal("orderbook input was mutated")
	}
	if !reflect.DeepEqual(history, historyBefore) {
		t.Fatal("history input was mutated")
	}
}
