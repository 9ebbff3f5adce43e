package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quantbay/marketlens/internal/domain"
)

// AnalysisService defines the methods that the analysis handler requires
// from the service layer. It is declared locally so the handler package does
// not depend on the concrete service implementation.
type AnalysisService interface {
	Analyze(ctx context.Context, identifier string) (domain.MarketAnalysis, error)
	Resolve(ctx context.Context, identifier string) (domain.ResolvedMarket, error)
}

// AnalysisHandler serves the analysis and resolution HTTP endpoints.
type AnalysisHandler struct {
	service AnalysisService
	logger  *slog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler with the given service and
// logger.
func NewAnalysisHandler(service AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// Analyze runs a full market analysis for the identifier in the "id" query
// parameter.
// GET /api/analyze?id={topicId|marketId|url}
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id query parameter")
		return
	}

	analysis, err := h.service.Analyze(r.Context(), id)
	if err != nil {
		h.writeAnalysisError(w, r, id, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// Resolve locates the market for an identifier without analyzing it.
// GET /api/resolve?id={topicId|marketId|url}
func (h *AnalysisHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id query parameter")
		return
	}

	resolved, err := h.service.Resolve(r.Context(), id)
	if err != nil {
		h.writeAnalysisError(w, r, id, err)
		return
	}

	writeJSON(w, http.StatusOK, resolved)
}

// writeAnalysisError maps each error kind to an HTTP status. Ambiguous
// resolutions include the candidate children so callers can pick a
// sub-market themselves.
func (h *AnalysisHandler) writeAnalysisError(w http.ResponseWriter, r *http.Request, id string, err error) {
	var amb *domain.AmbiguousTokensError

	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &amb):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      amb.Error(),
			"candidates": amb.Candidates,
		})
	case errors.Is(err, domain.ErrUpstream):
		logHandler(h.logger, "analysis").ErrorContext(r.Context(), "upstream failure",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "upstream API failure")
	default:
		logHandler(h.logger, "analysis").ErrorContext(r.Context(), "analysis failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}
