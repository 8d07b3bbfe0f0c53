package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/config"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
	"github.com/wonny/fundscope/pkg/redis"
)

// BrowserUserAgent is sent instead of the regulator UA; the chart endpoint
// rejects non-browser agents.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

const dateLayout = "2006-01-02"

// Client reads daily bars and split events from the chart endpoint.
// It implements contracts.PriceSource.
type Client struct {
	http    *httputil.Client
	logger  *logger.Logger
	baseURL string
	start   time.Time
	ttl     time.Duration
	shared  *redis.Cache
	now     func() time.Time
}

// NewClient creates a price client. httpClient should carry BrowserUserAgent.
func NewClient(httpClient *httputil.Client, cfg config.YahooConfig, log *logger.Logger) *Client {
	return &Client{
		http:    httpClient,
		logger:  logger.OrNop(log).WithModule("yahoo"),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		start:   cfg.HistoryStart,
		ttl:     cfg.CacheTTL,
		now:     time.Now,
	}
}

// WithSharedCache caches parsed histories in Redis
func (c *Client) WithSharedCache(rc *redis.Cache) *Client {
	c.shared = rc
	return c
}

// History returns the ticker's daily bars and splits, both ascending.
// An unknown symbol yields contracts.ErrNotFound.
func (c *Client) History(ctx context.Context, ticker string) (*contracts.PriceHistory, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	log := c.logger.WithField("ticker", ticker)

	var cached contracts.PriceHistory
	found, err := c.shared.Get(ctx, redis.PriceHistoryKey(ticker), &cached)
	if err != nil {
		log.WithError(err).Warn("Shared price cache read failed")
	}
	if found {
		return &cached, nil
	}

	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", c.start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", c.now().Unix()))
	q.Set("interval", "1d")
	q.Set("events", "split")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())

	body, err := c.http.GetBytes(ctx, endpoint)
	if httputil.IsStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("price history %s: %w", ticker, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("price history %s: %w", ticker, err)
	}

	history, err := ParseChart(ticker, body)
	if err != nil {
		return nil, err
	}

	if err := c.shared.Set(ctx, redis.PriceHistoryKey(ticker), history, c.ttl); err != nil {
		log.WithError(err).Warn("Shared price cache write failed")
	}

	log.WithFields(map[string]interface{}{
		"bars":   len(history.Bars),
		"splits": len(history.Splits),
	}).Debug("Loaded price history")
	return history, nil
}

// ParseChart converts a v8 chart response. Bars without a positive close are
// dropped, as are split events with a missing or zero denominator.
func ParseChart(ticker string, body []byte) (*contracts.PriceHistory, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: chart response for %s", contracts.ErrMalformed, ticker)
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		desc := gjson.GetBytes(body, "chart.error.description").String()
		if desc == "" {
			desc = "empty result"
		}
		return nil, fmt.Errorf("price history %s: %s: %w", ticker, desc, contracts.ErrNotFound)
	}

	history := &contracts.PriceHistory{
		Ticker: ticker,
		Bars:   parseBars(result),
		Splits: parseSplits(result),
	}
	return history, nil
}

func parseBars(result gjson.Result) []contracts.PriceBar {
	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	byDate := make(map[string]contracts.PriceBar, len(timestamps))
	for i, ts := range timestamps {
		last := at(closes, i)
		if last <= 0 {
			continue
		}
		date := time.Unix(ts.Int(), 0).UTC().Format(dateLayout)
		byDate[date] = contracts.PriceBar{
			Date:   date,
			Open:   at(opens, i),
			High:   at(highs, i),
			Low:    at(lows, i),
			Close:  last,
			Volume: int64(at(volumes, i)),
		}
	}

	bars := make([]contracts.PriceBar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars
}

func parseSplits(result gjson.Result) []contracts.SplitEvent {
	var splits []contracts.SplitEvent
	result.Get("events.splits").ForEach(func(_, v gjson.Result) bool {
		num := v.Get("numerator")
		den := v.Get("denominator")
		date := v.Get("date")
		if num.Type != gjson.Number || den.Type != gjson.Number || date.Type != gjson.Number {
			return true
		}
		if den.Float() == 0 || num.Float() <= 0 {
			return true
		}
		splits = append(splits, contracts.SplitEvent{
			Date:   time.Unix(date.Int(), 0).UTC().Format(dateLayout),
			Factor: num.Float() / den.Float(),
		})
		return true
	})
	sort.Slice(splits, func(i, j int) bool { return splits[i].Date < splits[j].Date })
	return splits
}

// at returns arr[i] as a number, or 0 when missing or null
func at(arr []gjson.Result, i int) float64 {
	if i >= len(arr) || arr[i].Type != gjson.Number {
		return 0
	}
	return arr[i].Float()
}
