// Package resolver maps a user-supplied market identifier to a concrete
// tradable YES/NO token pair by scanning the upstream market listing.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/quantbay/marketlens/internal/domain"
	"github.com/quantbay/marketlens/internal/platform/predix"
)

// IdentifierParam is the query parameter read from identifier URLs.
const IdentifierParam = "topicId"

// detailPathVariants are the known market-detail endpoint spellings, tried
// in order when a matched record lacks its token pair. The first variant
// that returns parseable data wins; an all-miss is non-fatal.
var detailPathVariants = []string{
	"/market/detail?marketId=%s",
	"/market/info?marketId=%s",
	"/market/get?id=%s",
}

// Resolver locates markets on the upstream listing and derives their
// tradable token pair.
type Resolver struct {
	client   *predix.Client
	pageSize int
	maxPages int
	logger   *slog.Logger
}

// New creates a Resolver. pageSize is the listing page size; maxPages caps
// the scan to bound worst-case latency against a large listing.
func New(client *predix.Client, pageSize, maxPages int, logger *slog.Logger) *Resolver {
	if pageSize <= 0 {
		pageSize = 20
	}
	if maxPages <= 0 {
		maxPages = 50
	}
	return &Resolver{
		client:   client,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger.With(slog.String("component", "resolver")),
	}
}

// ParseIdentifier extracts the target ID from a user-supplied identifier: a
// raw numeric string is accepted as-is, and a URL is accepted when it
// carries the ID in its "topicId" query parameter. Anything else fails with
// *domain.InvalidIdentifierError.
func ParseIdentifier(identifier string) (string, error) {
	s := strings.TrimSpace(identifier)
	if s == "" {
		return "", &domain.InvalidIdentifierError{Input: identifier, Reason: "empty identifier"}
	}

	if isNumeric(s) {
		return s, nil
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", &domain.InvalidIdentifierError{Input: identifier, Reason: "unparseable URL"}
		}
		id := u.Query().Get(IdentifierParam)
		if id == "" {
			return "", &domain.InvalidIdentifierError{
				Input:  identifier,
				Reason: fmt.Sprintf("URL has no %q query parameter", IdentifierParam),
			}
		}
		if !isNumeric(id) {
			return "", &domain.InvalidIdentifierError{
				Input:  identifier,
				Reason: fmt.Sprintf("%q query parameter is not numeric", IdentifierParam),
			}
		}
		return id, nil
	}

	return "", &domain.InvalidIdentifierError{
		Input:  identifier,
		Reason: "expected a numeric ID or a market URL",
	}
}

// Resolve parses the identifier, scans the listing for a matching record,
// and derives the tradable token pair per the resolution rules: the match
// itself when directly tradable, otherwise its best tradable child,
// otherwise a detail-endpoint merge, otherwise *domain.AmbiguousTokensError.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (domain.ResolvedMarket, error) {
	target, err := ParseIdentifier(identifier)
	if err != nil {
		return domain.ResolvedMarket{}, err
	}

	match, parent, pagesScanned, err := r.scanListing(ctx, target)
	if err != nil {
		return domain.ResolvedMarket{}, err
	}
	if match == nil {
		return domain.ResolvedMarket{}, &domain.NotFoundError{Target: target, PagesScanned: pagesScanned}
	}

	selected := *match

	// Directly tradable records win without any child traversal.
	if !selected.Tradable() && len(selected.Children) > 0 {
		if child, ok := bestChild(selected.Children); ok && child.Tradable() {
			p := *match
			parent = &p
			selected = child
		}
	}

	// Neither tradable nor holding a tradable child: try the detail
	// endpoints and re-check with the merged record.
	if !selected.Tradable() {
		r.mergeDetail(ctx, &selected)
		if !selected.Tradable() && len(selected.Children) > 0 {
			if child, ok := bestChild(selected.Children); ok && child.Tradable() {
				p := selected
				parent = &p
				selected = child
			}
		}
	}

	if !selected.Tradable() {
		kids := selected.Children
		if len(kids) == 0 {
			kids = match.Children
		}
		return domain.ResolvedMarket{}, &domain.AmbiguousTokensError{
			MarketID:   match.ID,
			Candidates: candidates(kids),
		}
	}

	volume := selected.Volume24h
	if volume == 0 && parent != nil {
		volume = parent.Volume24h
	}

	r.logger.DebugContext(ctx, "resolved market",
		slog.String("target", target),
		slog.String("market_id", selected.ID),
		slog.Int("pages_scanned", pagesScanned),
	)

	return domain.ResolvedMarket{
		Market:     selected,
		Parent:     parent,
		YesTokenID: selected.YesTokenID,
		NoTokenID:  selected.NoTokenID,
		Volume24h:  volume,
	}, nil
}

// scanListing pages through the market listing sequentially, stopping at
// the first match, the upstream-reported end, or the safety cap. Page fetch
// failures propagate immediately.
func (r *Resolver) scanListing(ctx context.Context, target string) (match, parent *domain.Market, pagesScanned int, err error) {
	totalPages := r.maxPages

	for page := 1; page <= totalPages; page++ {
		mp, err := r.client.ListMarkets(ctx, page, r.pageSize)
		if err != nil {
			return nil, nil, pagesScanned, fmt.Errorf("resolver: scan page %d: %w", page, err)
		}
		pagesScanned++

		// The upstream total drives the page count, capped for safety.
		if mp.Total > 0 {
			if n := (mp.Total + r.pageSize - 1) / r.pageSize; n < totalPages {
				totalPages = n
			}
		}

		for i := range mp.Markets {
			root := mp.Markets[i]
			if root.Matches(target) {
				return &root, nil, pagesScanned, nil
			}
			for j := range root.Children {
				if root.Children[j].Matches(target) {
					child := root.Children[j]
					rootCopy := root
					return &child, &rootCopy, pagesScanned, nil
				}
			}
		}

		if len(mp.Markets) == 0 {
			break
		}
	}

	return nil, nil, pagesScanned, nil
}

// bestChild selects the most tradable child deterministically: children
// carrying both token IDs beat those that do not, and within a group the
// higher 24h volume wins.
func bestChild(children []domain.Market) (domain.Market, bool) {
	best := -1
	for i := range children {
		if best < 0 {
			best = i
			continue
		}
		b, c := children[best], children[i]
		switch {
		case c.Tradable() && !b.Tradable():
			best = i
		case c.Tradable() == b.Tradable() && c.Volume24h > b.Volume24h:
			best = i
		}
	}
	if best < 0 {
		return domain.Market{}, false
	}
	return children[best], true
}

// mergeDetail tries the known detail-endpoint variants in order and merges
// the first parseable record's fields into m. Failures are non-fatal; the
// caller re-checks tradability afterwards.
func (r *Resolver) mergeDetail(ctx context.Context, m *domain.Market) {
	id := m.ID
	if id == "" {
		id = m.TopicID
	}
	if id == "" {
		return
	}

	for _, variant := range detailPathVariants {
		path := fmt.Sprintf(variant, url.QueryEscape(id))
		raw, err := r.client.Get(ctx, path)
		if err != nil {
			r.logger.DebugContext(ctx, "detail variant failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		detail, err := predix.DecodeMarket(raw)
		if err != nil {
			continue
		}
		mergeMarket(m, detail)
		return
	}
}

// mergeMarket fills m's empty fields from detail without overwriting data
// the listing already provided.
func mergeMarket(m *domain.Market, detail domain.Market) {
	if m.YesTokenID == "" {
		m.YesTokenID = detail.YesTokenID
	}
	if m.NoTokenID == "" {
		m.NoTokenID = detail.NoTokenID
	}
	if m.Title == "" {
		m.Title = detail.Title
	}
	if m.Volume24h == 0 {
		m.Volume24h = detail.Volume24h
	}
	if len(m.Children) == 0 {
		m.Children = detail.Children
	}
}

func candidates(children []domain.Market) []domain.CandidateMarket {
	out := make([]domain.CandidateMarket, 0, len(children))
	for _, c := range children {
		out = append(out, domain.CandidateMarket{
			ID:        c.ID,
			Title:     c.Title,
			Volume24h: c.Volume24h,
			HasTokens: c.Tradable(),
		})
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
