package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/config"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
)

// 2020-08-28, 2020-08-31, 2020-09-01 (00:00 UTC + 13:30)
const chartBody = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "AAPL"},
			"timestamp": [1598621400, 1598880600, 1598967000],
			"events": {
				"splits": {
					"1598880600": {"date": 1598880600, "numerator": 4, "denominator": 1, "splitRatio": "4:1"},
					"1": {"date": 1, "numerator": 2, "denominator": 0},
					"2": {"date": 2, "numerator": "x", "denominator": 1},
					"1087831800": {"date": 1087831800, "numerator": 2, "denominator": 1}
				}
			},
			"indicators": {
				"quote": [{
					"open":   [504.05, 127.58, 132.76],
					"high":   [505.77, 131.0, 134.8],
					"low":    [498.31, 126.0, 130.53],
					"close":  [499.23, null, 134.18],
					"volume": [46907500, 225702700, 151948100]
				}]
			}
		}],
		"error": null
	}
}`

func TestParseChart(t *testing.T) {
	h, err := ParseChart("AAPL", []byte(chartBody))
	require.NoError(t, err)

	require.Len(t, h.Bars, 2, "bar with null close is dropped")
	assert.Equal(t, "2020-08-28", h.Bars[0].Date)
	assert.Equal(t, 499.23, h.Bars[0].Close)
	assert.Equal(t, int64(46907500), h.Bars[0].Volume)
	assert.Equal(t, "2020-09-01", h.Bars[1].Date)

	require.Len(t, h.Splits, 2, "malformed splits are skipped")
	assert.Equal(t, contracts.SplitEvent{Date: "2004-06-21", Factor: 2}, h.Splits[0])
	assert.Equal(t, contracts.SplitEvent{Date: "2020-08-31", Factor: 4}, h.Splits[1])
}

func TestParseChartErrors(t *testing.T) {
	_, err := ParseChart("NOPE", []byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = ParseChart("AAPL", []byte(`{not json`))
	assert.ErrorIs(t, err, contracts.ErrMalformed)
}

func TestHistoryRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "946684800", r.URL.Query().Get("period1"))
		assert.Equal(t, "split", r.URL.Query().Get("events"))
		assert.Equal(t, BrowserUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(chartBody))
	}))
	defer server.Close()

	hc := httputil.New(&config.Config{}, logger.Nop()).WithUserAgent(BrowserUserAgent)
	client := NewClient(hc, config.YahooConfig{
		BaseURL:      server.URL,
		HistoryStart: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		CacheTTL:     time.Hour,
	}, nil)

	h, err := client.History(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", h.Ticker)
	assert.Len(t, h.Bars, 2)
}

func TestHistoryNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	hc := httputil.New(&config.Config{}, nil)
	client := NewClient(hc, config.YahooConfig{BaseURL: server.URL}, nil)

	_, err := client.History(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}
