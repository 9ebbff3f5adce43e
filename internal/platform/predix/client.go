// Package predix is the REST client for the upstream prediction-market data
// API. The API has drifted across deployments: successful payloads arrive
// wrapped in one of two envelope shapes ({code,msg,result} or
// {errno,errmsg,result}) or entirely unwrapped, and the same endpoint has
// been observed to use either shape. The client therefore detects the
// envelope by inspecting the decoded value's keys, never by endpoint name.
package predix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantbay/marketlens/internal/crypto"
	"github.com/quantbay/marketlens/internal/domain"
)

// maxBodySnippet bounds how much of an upstream body is carried on errors.
const maxBodySnippet = 512

// Config holds the upstream client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables throttling
	RateBurst  int
	MarketType string // listing filter, e.g. "binary"
	SpecPath   string // path of the upstream OpenAPI document
	SpecTTL    time.Duration
}

// Client issues authenticated GET requests against the upstream API,
// unwraps response envelopes, and normalizes payloads into domain types.
type Client struct {
	baseURL    string
	marketType string
	httpClient *http.Client
	auth       *crypto.HMACAuth
	limiter    *rate.Limiter
	spec       *specCache
	logger     *slog.Logger
}

// New creates a Client from cfg. When cfg.APIKey is empty, requests are sent
// unauthenticated.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var auth *crypto.HMACAuth
	if cfg.APIKey != "" {
		auth = &crypto.HMACAuth{Key: cfg.APIKey, Secret: cfg.APISecret}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	specPath := cfg.SpecPath
	if specPath == "" {
		specPath = "/openapi.json"
	}
	specTTL := cfg.SpecTTL
	if specTTL <= 0 {
		specTTL = 10 * time.Minute
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		marketType: cfg.MarketType,
		httpClient: &http.Client{Timeout: timeout},
		auth:       auth,
		limiter:    limiter,
		spec:       &specCache{path: specPath, ttl: specTTL},
		logger:     logger.With(slog.String("component", "predix")),
	}
}

// Get issues an authenticated GET against pathAndQuery and returns the
// unwrapped JSON payload. It fails with *domain.UpstreamError on non-2xx
// responses, unparseable bodies, and envelopes carrying a non-zero status
// code. Payloads with no detectable envelope pass through unchanged.
func (c *Client) Get(ctx context.Context, pathAndQuery string) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("predix: rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("predix: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		for k, v := range c.auth.Headers(http.MethodGet, pathAndQuery) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predix: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("predix: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{
			Status: resp.StatusCode,
			Body:   snippet(body),
		}
	}

	return unwrapEnvelope(body)
}

// unwrapEnvelope inspects the decoded body for either known envelope shape
// and returns the inner result on success. Detection is values-first: the
// shape is decided by which keys are actually present, not by which endpoint
// produced the body.
func unwrapEnvelope(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, &domain.UpstreamError{
			Status:    http.StatusOK,
			Body:      snippet(body),
			Malformed: true,
		}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		// Arrays and scalars cannot be envelopes; pass them through.
		return json.RawMessage(body), nil
	}

	// Shape A: {code, msg, result}.
	if raw, ok := obj["code"]; ok {
		if _, hasResult := obj["result"]; hasResult || hasKey(obj, "msg") {
			return unwrapStatus(obj, raw, "msg", snippet(body))
		}
	}

	// Shape B: {errno, errmsg, result}.
	if raw, ok := obj["errno"]; ok {
		return unwrapStatus(obj, raw, "errmsg", snippet(body))
	}

	// No detectable envelope: raw payload.
	return json.RawMessage(body), nil
}

// unwrapStatus interprets one envelope: a zero status code yields the result
// payload, a non-zero code yields an error carrying the upstream's message.
func unwrapStatus(obj map[string]json.RawMessage, codeRaw json.RawMessage, msgKey, bodySnippet string) (json.RawMessage, error) {
	code, ok := decodeCode(codeRaw)
	if !ok {
		return nil, &domain.UpstreamError{
			Status:    http.StatusOK,
			Body:      bodySnippet,
			Malformed: true,
		}
	}

	if code != 0 {
		var msg string
		if raw, ok := obj[msgKey]; ok {
			_ = json.Unmarshal(raw, &msg)
		}
		if msg == "" {
			msg = "request failed"
		}
		return nil, &domain.UpstreamError{
			Status:  http.StatusOK,
			Code:    code,
			Message: msg,
			Body:    bodySnippet,
		}
	}

	result, ok := obj["result"]
	if !ok || string(result) == "null" {
		// Success with no payload; callers probe and degrade to empty.
		return json.RawMessage("null"), nil
	}
	return result, nil
}

// decodeCode accepts the envelope status code as a JSON number or a quoted
// numeric string.
func decodeCode(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v, true
		}
	}
	return 0, false
}

func hasKey(obj map[string]json.RawMessage, key string) bool {
	_, ok := obj[key]
	return ok
}

func snippet(body []byte) string {
	if len(body) > maxBodySnippet {
		return string(body[:maxBodySnippet])
	}
	return string(body)
}

// --------------------------------------------------------------------------
// Typed endpoint wrappers
// --------------------------------------------------------------------------

// ListMarkets returns one page of the market listing together with the
// upstream's total record count.
func (c *Client) ListMarkets(ctx context.Context, page, pageSize int) (MarketPage, error) {
	params := url.Values{}
	params.Set("pageNo", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	if c.marketType != "" {
		params.Set("marketType", c.marketType)
	}

	raw, err := c.Get(ctx, "/market/list?"+params.Encode())
	if err != nil {
		return MarketPage{}, fmt.Errorf("predix: list markets page %d: %w", page, err)
	}

	mp, err := DecodeMarketPage(raw)
	if err != nil {
		return MarketPage{}, fmt.Errorf("predix: decode market page %d: %w", page, err)
	}
	return mp, nil
}

// LatestPrice returns the latest traded price for a token, probed across the
// known field-name spellings. A payload with no recognizable price yields 0.
func (c *Client) LatestPrice(ctx context.Context, tokenID string) (float64, error) {
	params := url.Values{}
	params.Set("tokenId", tokenID)

	raw, err := c.Get(ctx, "/market/price?"+params.Encode())
	if err != nil {
		return 0, fmt.Errorf("predix: latest price for %s: %w", tokenID, err)
	}
	return DecodeLatestPrice(raw), nil
}

// OrderBook returns the resting bids and asks for a token.
func (c *Client) OrderBook(ctx context.Context, tokenID string) (domain.OrderbookSnapshot, error) {
	params := url.Values{}
	params.Set("tokenId", tokenID)

	raw, err := c.Get(ctx, "/market/orderbook?"+params.Encode())
	if err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("predix: orderbook for %s: %w", tokenID, err)
	}

	snap := DecodeOrderBook(raw)
	snap.TokenID = tokenID
	return snap, nil
}

// PriceHistory returns interval-bucketed price samples for a token in the
// chronological order the upstream delivered them.
func (c *Client) PriceHistory(ctx context.Context, tokenID, interval string) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Set("tokenId", tokenID)
	params.Set("interval", interval)

	raw, err := c.Get(ctx, "/market/history?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("predix: price history for %s: %w", tokenID, err)
	}
	return DecodeHistory(raw), nil
}
