package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantbay/marketlens/internal/domain"
)

// stubService returns a canned result or error for every call.
type stubService struct {
	analysis domain.MarketAnalysis
	resolved domain.ResolvedMarket
	err      error
}

func (s *stubService) Analyze(ctx context.Context, identifier string) (domain.MarketAnalysis, error) {
	return s.analysis, s.err
}

func (s *stubService) Resolve(ctx context.Context, identifier string) (domain.ResolvedMarket, error) {
	return s.resolved, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyzeMissingID(t *testing.T) {
	h := NewAnalysisHandler(&stubService{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	svc := &stubService{
		analysis: domain.MarketAnalysis{
			ID:       "a1",
			MarketID: "42",
			Overall:  domain.Overall{Verdict: domain.ScoreOK, Confidence: 88},
		},
	}
	h := NewAnalysisHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/analyze?id=42", nil)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got domain.MarketAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.MarketID != "42" || got.Overall.Verdict != domain.ScoreOK {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestAnalyzeErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "invalid identifier",
			err:        &domain.InvalidIdentifierError{Input: "abc", Reason: "not numeric"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        &domain.NotFoundError{Target: "999", PagesScanned: 50},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "ambiguous tokens",
			err: &domain.AmbiguousTokensError{
				MarketID: "42",
				Candidates: []domain.CandidateMarket{
					{ID: "42-a", Title: "Option A", HasTokens: true},
					{ID: "42-b", Title: "Option B", HasTokens: true},
				},
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "upstream failure",
			err:        &domain.UpstreamError{Status: 500, Message: "boom"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unexpected error",
			err:        io.ErrUnexpectedEOF,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAnalysisHandler(&stubService{err: tt.err}, discardLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/analyze?id=42", nil)
			rec := httptest.NewRecorder()
			h.Analyze(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAnalyzeAmbiguousIncludesCandidates(t *testing.T) {
	svc := &stubService{
		err: &domain.AmbiguousTokensError{
			MarketID: "42",
			Candidates: []domain.CandidateMarket{
				{ID: "42-a", Title: "Option A", Volume24h: 1000, HasTokens: true},
				{ID: "42-b", Title: "Option B", Volume24h: 2000, HasTokens: true},
			},
		},
	}
	h := NewAnalysisHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/analyze?id=42", nil)
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var body struct {
		Error      string                   `json:"error"`
		Candidates []domain.CandidateMarket `json:"candidates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(body.Candidates))
	}
	if body.Candidates[1].ID != "42-b" {
		t.Fatalf("candidate[1].ID = %q, want %q", body.Candidates[1].ID, "42-b")
	}
}

func TestResolveSuccess(t *testing.T) {
	svc := &stubService{
		resolved: domain.ResolvedMarket{
			Market:     domain.Market{ID: "42", Title: "Test market"},
			YesTokenID: "y42",
			NoTokenID:  "n42",
			Volume24h:  60000,
		},
	}
	h := NewAnalysisHandler(svc, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/resolve?id=42", nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got domain.ResolvedMarket
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.YesTokenID != "y42" || got.NoTokenID != "n42" {
		t.Fatalf("unexpected body: %+v", got)
	}
}
