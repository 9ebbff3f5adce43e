package predix

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// specCache holds the upstream's OpenAPI document with a time-based
// staleness check. It is owned by the Client; there is no package-level
// state.
type specCache struct {
	mu        sync.Mutex
	path      string
	ttl       time.Duration
	value     json.RawMessage
	fetchedAt time.Time
}

// SpecDoc returns the upstream's OpenAPI document, refetching it when the
// cached copy is older than the configured TTL. It is the only piece of
// upstream data cached across requests; market data is always fetched fresh.
func (c *Client) SpecDoc(ctx context.Context) (json.RawMessage, error) {
	c.spec.mu.Lock()
	defer c.spec.mu.Unlock()

	if c.spec.value != nil && time.Since(c.spec.fetchedAt) < c.spec.ttl {
		return c.spec.value, nil
	}

	raw, err := c.Get(ctx, c.spec.path)
	if err != nil {
		return nil, fmt.Errorf("predix: fetch spec document: %w", err)
	}

	c.spec.value = raw
	c.spec.fetchedAt = time.Now()
	return raw, nil
}
