package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the four failure kinds. Callers dispatch with
// errors.Is; the richer error structs below unwrap to these.
var (
	ErrInvalidIdentifier = errors.New("invalid market identifier")
	ErrNotFound          = errors.New("market not found")
	ErrAmbiguousTokens   = errors.New("no tradable token pair")
	ErrUpstream          = errors.New("upstream API error")
)

// InvalidIdentifierError reports a user-supplied identifier that could not
// be parsed into a topic or market ID.
type InvalidIdentifierError struct {
	Input  string
	Reason string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: %s", e.Input, e.Reason)
}

func (e *InvalidIdentifierError) Unwrap() error { return ErrInvalidIdentifier }

// NotFoundError reports that the target ID was absent from every scanned
// listing page.
type NotFoundError struct {
	Target       string
	PagesScanned int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("market %q not found after scanning %d listing page(s)", e.Target, e.PagesScanned)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CandidateMarket describes one child record considered during token
// resolution, carried on AmbiguousTokensError for caller diagnostics.
type CandidateMarket struct {
	ID        string  `json:"marketId"`
	Title     string  `json:"title"`
	Volume24h float64 `json:"volume24h"`
	HasTokens bool    `json:"hasTokens"`
}

// AmbiguousTokensError reports that a market matched the identifier but no
// YES/NO token pair could be derived from it or any of its children.
type AmbiguousTokensError struct {
	MarketID   string
	Candidates []CandidateMarket
}

func (e *AmbiguousTokensError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("market %s has no tradable token pair", e.MarketID)
	}
	ids := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		ids = append(ids, c.ID)
	}
	return fmt.Sprintf("market %s has no tradable token pair (candidates: %s)",
		e.MarketID, strings.Join(ids, ", "))
}

func (e *AmbiguousTokensError) Unwrap() error { return ErrAmbiguousTokens }

// UpstreamError reports a failed upstream call: a non-2xx HTTP response, a
// body that was not parseable JSON, or an envelope carrying a non-zero
// status code. Message holds the upstream's own human-readable message when
// one was present.
type UpstreamError struct {
	Status    int    // HTTP status code (0 if the request never completed)
	Code      int    // envelope status code (code/errno), 0 unless set
	Message   string // upstream's own error message, if any
	Body      string // truncated raw body for diagnostics
	Malformed bool   // body was not parseable JSON
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Malformed:
		return fmt.Sprintf("upstream returned malformed JSON (HTTP %d): %s", e.Status, e.Body)
	case e.Message != "":
		return fmt.Sprintf("upstream error (code %d): %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("upstream HTTP %d: %s", e.Status, e.Body)
	}
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }
