package predix

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantbay/marketlens/internal/domain"
)

// The upstream API has drifted across versions: the same logical field
// appears under different names depending on deployment. Each logical field
// has an ordered candidate list, tried in priority order, and normalization
// happens here at the boundary so business logic never sees alias chains.
var (
	marketIDKeys  = []string{"marketId", "market_id", "id"}
	topicIDKeys   = []string{"topicId", "topic_id"}
	titleKeys     = []string{"title", "question", "name"}
	volumeKeys    = []string{"volume24h", "volume_24h", "volume24hr", "amount24h", "totalVolume", "volume"}
	yesTokenKeys  = []string{"yesTokenId", "yes_token_id", "yesToken", "tokenYes"}
	noTokenKeys   = []string{"noTokenId", "no_token_id", "noToken", "tokenNo"}
	childrenKeys  = []string{"childMarkets", "children", "markets", "subMarkets"}
	totalKeys     = []string{"total", "totalCount", "count"}
	listKeys      = []string{"list", "data", "items", "records"}
	bidsKeys      = []string{"bids", "buys"}
	asksKeys      = []string{"asks", "sells"}
	priceKeys     = []string{"price", "lastPrice", "latestPrice", "last", "close", "p"}
	sizeKeys      = []string{"size", "amount", "quantity", "s"}
	historyKeys   = []string{"list", "history", "points", "data", "klines"}
	timestampKeys = []string{"timestamp", "time", "ts", "t"}
)

// MarketPage is one decoded page of the upstream market listing.
type MarketPage struct {
	Total   int
	Markets []domain.Market
}

// DecodeMarketPage decodes a listing payload of shape {total, list[]} (with
// drifted key spellings) into normalized domain markets.
func DecodeMarketPage(raw json.RawMessage) (MarketPage, error) {
	obj, err := asObject(raw)
	if err != nil {
		// Some deployments return the list bare, without a total.
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return MarketPage{}, fmt.Errorf("listing payload is neither object nor array")
		}
		return MarketPage{Total: len(items), Markets: decodeMarkets(items)}, nil
	}

	page := MarketPage{Total: int(probeFloat(obj, totalKeys...))}

	for _, key := range listKeys {
		rawList, ok := obj[key]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(rawList, &items); err != nil {
			continue
		}
		page.Markets = decodeMarkets(items)
		break
	}

	if page.Total < len(page.Markets) {
		page.Total = len(page.Markets)
	}
	return page, nil
}

// DecodeMarket normalizes a single market record, recursing one level into
// child records when present.
func DecodeMarket(raw json.RawMessage) (domain.Market, error) {
	obj, err := asObject(raw)
	if err != nil {
		return domain.Market{}, fmt.Errorf("market payload is not an object")
	}
	return decodeMarketObject(obj), nil
}

func decodeMarkets(items []json.RawMessage) []domain.Market {
	markets := make([]domain.Market, 0, len(items))
	for _, item := range items {
		m, err := DecodeMarket(item)
		if err != nil {
			continue
		}
		markets = append(markets, m)
	}
	return markets
}

func decodeMarketObject(obj map[string]json.RawMessage) domain.Market {
	m := domain.Market{
		ID:         probeString(obj, marketIDKeys...),
		TopicID:    probeString(obj, topicIDKeys...),
		Title:      probeString(obj, titleKeys...),
		Volume24h:  probeFloat(obj, volumeKeys...),
		YesTokenID: probeString(obj, yesTokenKeys...),
		NoTokenID:  probeString(obj, noTokenKeys...),
	}

	for _, key := range childrenKeys {
		rawList, ok := obj[key]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(rawList, &items); err != nil {
			continue
		}
		for _, item := range items {
			childObj, err := asObject(item)
			if err != nil {
				continue
			}
			m.Children = append(m.Children, decodeMarketObject(childObj))
		}
		break
	}

	return m
}

// DecodeLatestPrice extracts a latest-price value from payloads that are
// either a bare number or an object carrying the price under one of several
// known spellings. Missing or unparseable payloads yield 0.
func DecodeLatestPrice(raw json.RawMessage) float64 {
	var f flexFloat
	if err := json.Unmarshal(raw, &f); err == nil {
		return float64(f)
	}

	obj, err := asObject(raw)
	if err != nil {
		return 0
	}
	return probeFloat(obj, priceKeys...)
}

// DecodeOrderBook normalizes an orderbook payload. Missing sides yield
// empty slices; per-level prices/sizes accept both numbers and quoted
// numbers.
func DecodeOrderBook(raw json.RawMessage) domain.OrderbookSnapshot {
	obj, err := asObject(raw)
	if err != nil {
		return domain.OrderbookSnapshot{}
	}
	return domain.OrderbookSnapshot{
		Bids: decodeLevels(obj, bidsKeys),
		Asks: decodeLevels(obj, asksKeys),
	}
}

func decodeLevels(obj map[string]json.RawMessage, keys []string) []domain.PriceLevel {
	for _, key := range keys {
		rawList, ok := obj[key]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(rawList, &items); err != nil {
			continue
		}
		levels := make([]domain.PriceLevel, 0, len(items))
		for _, item := range items {
			if lvl, ok := decodeLevel(item); ok {
				levels = append(levels, lvl)
			}
		}
		return levels
	}
	return nil
}

// decodeLevel accepts either an object ({price, size} with aliases) or a
// two-element [price, size] array.
func decodeLevel(raw json.RawMessage) (domain.PriceLevel, bool) {
	if obj, err := asObject(raw); err == nil {
		return domain.PriceLevel{
			Price: probeFloat(obj, priceKeys...),
			Size:  probeFloat(obj, sizeKeys...),
		}, true
	}

	var pair []flexFloat
	if err := json.Unmarshal(raw, &pair); err == nil && len(pair) >= 2 {
		return domain.PriceLevel{Price: float64(pair[0]), Size: float64(pair[1])}, true
	}

	return domain.PriceLevel{}, false
}

// DecodeHistory normalizes a price-history payload, which arrives either as
// a bare array of points or as an object holding the array under one of
// several known field names. Unrecognized payloads yield an empty history.
func DecodeHistory(raw json.RawMessage) []domain.PricePoint {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return decodePoints(items)
	}

	obj, err := asObject(raw)
	if err != nil {
		return nil
	}
	for _, key := range historyKeys {
		rawList, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(rawList, &items); err != nil {
			continue
		}
		return decodePoints(items)
	}
	return nil
}

func decodePoints(items []json.RawMessage) []domain.PricePoint {
	points := make([]domain.PricePoint, 0, len(items))
	for _, item := range items {
		obj, err := asObject(item)
		if err != nil {
			continue
		}
		p := domain.PricePoint{Price: probeFloat(obj, priceKeys...)}
		if ts := probeFloat(obj, timestampKeys...); ts > 0 {
			p.Timestamp = timeFromEpoch(ts)
		}
		points = append(points, p)
	}
	return points
}

// timeFromEpoch accepts Unix seconds or milliseconds.
func timeFromEpoch(ts float64) time.Time {
	n := int64(ts)
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// --------------------------------------------------------------------------
// Probe helpers
// --------------------------------------------------------------------------

// flexFloat decodes a JSON number, a quoted number, or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// probeFloat returns the value of the first present, parseable key. A key
// that is present but empty or null does not stop the probe.
func probeFloat(obj map[string]json.RawMessage, keys ...string) float64 {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok || string(raw) == "null" {
			continue
		}
		var f flexFloat
		if err := json.Unmarshal(raw, &f); err == nil {
			return float64(f)
		}
	}
	return 0
}

// probeString returns the first present key's value as a string, accepting
// both JSON strings and bare numbers (token IDs drift between the two).
func probeString(obj map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s == "" {
				continue
			}
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return ""
}
