package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscope/internal/api/handlers"
	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
)

type fakeSeries struct {
	annual []contracts.AnnualRecord
	ratios []contracts.DynamicRatioPoint
	err    error
	asked  []string
}

func (f *fakeSeries) Financials(_ context.Context, ticker string) ([]contracts.AnnualRecord, error) {
	f.asked = append(f.asked, ticker)
	return f.annual, f.err
}

func (f *fakeSeries) Ratios(_ context.Context, ticker string) ([]contracts.DynamicRatioPoint, error) {
	f.asked = append(f.asked, ticker)
	return f.ratios, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func serve(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func newTestRouter(series *fakeSeries, db Pinger) http.Handler {
	return NewRouter(handlers.NewFundamentalsHandler(series, nil), db, logger.Nop())
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantStore  string
	}{
		{"store disabled", nil, http.StatusOK, "disabled"},
		{"store ok", fakePinger{}, http.StatusOK, "ok"},
		{"store down", fakePinger{err: errors.New("refused")}, http.StatusServiceUnavailable, "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, newTestRouter(&fakeSeries{}, tt.db), "/health")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStore, body["store"])
		})
	}
}

func TestGetFinancials(t *testing.T) {
	series := &fakeSeries{annual: []contracts.AnnualRecord{
		{Period: "2023-FY", PeriodDate: "2023-12-31", Revenue: contracts.Float(1000)},
	}}

	rec, body := serve(t, newTestRouter(series, nil), "/api/financials/aapl")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "AAPL", body["ticker"])
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, []string{"AAPL"}, series.asked)

	records := body["records"].([]interface{})
	first := records[0].(map[string]interface{})
	assert.Equal(t, "2023-FY", first["period"])
	assert.EqualValues(t, 1000, first["revenue"])
	assert.Nil(t, first["net_income"], "absent values serialize as null")
}

func TestGetFinancialsShareClassTicker(t *testing.T) {
	series := &fakeSeries{annual: []contracts.AnnualRecord{}}

	rec, body := serve(t, newTestRouter(series, nil), "/api/financials/brk.b")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BRK.B", body["ticker"])
	assert.EqualValues(t, 0, body["count"])
}

func TestGetFinancialsRejectsBadTicker(t *testing.T) {
	series := &fakeSeries{}

	rec, body := serve(t, newTestRouter(series, nil), "/api/financials/THIS-IS-TOO-LONG")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid ticker", body["error"])
	assert.Empty(t, series.asked)
}

func TestGetRatiosDateFilter(t *testing.T) {
	series := &fakeSeries{ratios: []contracts.DynamicRatioPoint{
		{Date: "2023-12-29", Price: 50},
		{Date: "2024-01-02", Price: 51},
		{Date: "2024-01-03", Price: 52},
	}}
	h := newTestRouter(series, nil)

	rec, body := serve(t, h, "/api/ratios/ACME?from=2024-01-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["count"])

	rec, body = serve(t, h, "/api/ratios/ACME?from=2024-01-01&to=2024-01-02")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])

	rec, _ = serve(t, h, "/api/ratios/ACME?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpstreamFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"fetch error", &httputil.FetchError{URL: "u", StatusCode: 503, Status: "503"}, http.StatusBadGateway},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, newTestRouter(&fakeSeries{err: tt.err}, nil), "/api/ratios/ACME")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map")
	}))

	rec, body := serve(t, h, "/anything")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["error"])
}
