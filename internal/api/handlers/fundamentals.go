package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
)

// SeriesProvider serves the two outbound series for a ticker
type SeriesProvider interface {
	Financials(ctx context.Context, ticker string) ([]contracts.AnnualRecord, error)
	Ratios(ctx context.Context, ticker string) ([]contracts.DynamicRatioPoint, error)
}

// FundamentalsHandler handles the financials and ratios endpoints
// ⭐ SSOT: fundamentals API handlers live in this struct only
type FundamentalsHandler struct {
	series SeriesProvider
	logger *logger.Logger
}

// NewFundamentalsHandler creates a new fundamentals handler
func NewFundamentalsHandler(series SeriesProvider, log *logger.Logger) *FundamentalsHandler {
	return &FundamentalsHandler{
		series: series,
		logger: logger.OrNop(log).WithModule("api"),
	}
}

// FinancialsResponse is the annual series payload
type FinancialsResponse struct {
	Ticker  string                   `json:"ticker"`
	Count   int                      `json:"count"`
	Records []contracts.AnnualRecord `json:"records"`
}

// RatiosResponse is the daily ratio series payload
type RatiosResponse struct {
	Ticker string                        `json:"ticker"`
	Count  int                           `json:"count"`
	Points []contracts.DynamicRatioPoint `json:"points"`
}

// share classes use a dot or dash, e.g. BRK.B, BF-B
var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,9}$`)

// GetFinancials returns the annual financial-statement series
// GET /api/financials/{ticker}
func (h *FundamentalsHandler) GetFinancials(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}

	records, err := h.series.Financials(r.Context(), ticker)
	if err != nil {
		h.fail(w, ticker, "financials", err)
		return
	}

	respondJSON(w, http.StatusOK, FinancialsResponse{
		Ticker:  ticker,
		Count:   len(records),
		Records: records,
	})
}

// GetRatios returns the daily dynamic-ratio series
// GET /api/ratios/{ticker}?from=2023-01-01&to=2023-12-31
func (h *FundamentalsHandler) GetRatios(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if !validDate(from) || !validDate(to) {
		respondError(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
		return
	}

	points, err := h.series.Ratios(r.Context(), ticker)
	if err != nil {
		h.fail(w, ticker, "ratios", err)
		return
	}

	points = between(points, from, to)
	respondJSON(w, http.StatusOK, RatiosResponse{
		Ticker: ticker,
		Count:  len(points),
		Points: points,
	})
}

func (h *FundamentalsHandler) fail(w http.ResponseWriter, ticker, series string, err error) {
	h.logger.WithError(err).WithFields(map[string]interface{}{
		"ticker": ticker,
		"series": series,
	}).Error("Failed to compute series")

	var fe *httputil.FetchError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "upstream timed out")
	case errors.As(err, &fe):
		respondError(w, http.StatusBadGateway, "upstream data source failed")
	default:
		respondError(w, http.StatusInternalServerError, "failed to compute "+series)
	}
}

func tickerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))
	if !tickerPattern.MatchString(ticker) {
		respondError(w, http.StatusBadRequest, "invalid ticker")
		return "", false
	}
	return ticker, true
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	return dateLayout.MatchString(s)
}

var dateLayout = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// between keeps points with from <= date <= to; empty bounds are open
func between(points []contracts.DynamicRatioPoint, from, to string) []contracts.DynamicRatioPoint {
	if from == "" && to == "" {
		return points
	}
	out := make([]contracts.DynamicRatioPoint, 0, len(points))
	for _, p := range points {
		if from != "" && p.Date < from {
			continue
		}
		if to != "" && p.Date > to {
			continue
		}
		out = append(out, p)
	}
	return out
}
