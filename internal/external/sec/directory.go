package sec

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/cache"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
)

const directoryPath = "/files/company_tickers.json"

// Entry is one row of the bulk ticker directory
type Entry struct {
	Ticker string            `json:"ticker"`
	CIK    contracts.FilerID `json:"cik"`
	Title  string            `json:"title"`
}

type directoryRow struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Directory resolves tickers against the regulator's bulk ticker document.
// ⭐ SSOT: ticker -> filer id mapping happens here only
//
// The document is fetched at most once per TTL; concurrent cold lookups share
// one request.
type Directory struct {
	http    *httputil.Client
	logger  *logger.Logger
	baseURL string
	ttl     time.Duration
	cache   *cache.Cache[map[string]Entry]
}

// NewDirectory creates a directory reading from baseURL (e.g. https://www.sec.gov)
func NewDirectory(httpClient *httputil.Client, baseURL string, ttl time.Duration, log *logger.Logger) *Directory {
	return &Directory{
		http:    httpClient,
		logger:  logger.OrNop(log).WithModule("sec.directory"),
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		cache:   cache.New[map[string]Entry](),
	}
}

// Resolve returns the filer id for ticker, or contracts.ErrNotFound
func (d *Directory) Resolve(ctx context.Context, ticker string) (contracts.FilerID, error) {
	e, err := d.Lookup(ctx, ticker)
	if err != nil {
		return "", err
	}
	return e.CIK, nil
}

// Lookup returns the full directory entry for ticker
func (d *Directory) Lookup(ctx context.Context, ticker string) (Entry, error) {
	entries, err := d.entries(ctx)
	if err != nil {
		return Entry{}, err
	}
	e, ok := entries[normalizeTicker(ticker)]
	if !ok {
		return Entry{}, fmt.Errorf("ticker %s: %w", ticker, contracts.ErrNotFound)
	}
	return e, nil
}

// Size returns the number of indexed tickers, loading the document if needed
func (d *Directory) Size(ctx context.Context) (int, error) {
	entries, err := d.entries(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (d *Directory) entries(ctx context.Context) (map[string]Entry, error) {
	return d.cache.GetOrFetch(ctx, "directory", d.ttl, d.load)
}

func (d *Directory) load(ctx context.Context) (map[string]Entry, error) {
	url := d.baseURL + directoryPath

	var rows map[string]directoryRow
	if err := d.http.GetJSON(ctx, url, &rows); err != nil {
		return nil, fmt.Errorf("ticker directory: %w", err)
	}

	entries := make(map[string]Entry, len(rows))
	for _, row := range rows {
		if row.Ticker == "" || row.CIK <= 0 {
			continue
		}
		key := normalizeTicker(row.Ticker)
		entries[key] = Entry{
			Ticker: key,
			CIK:    contracts.NewFilerID(row.CIK),
			Title:  row.Title,
		}
	}

	d.logger.WithField("tickers", len(entries)).Info("Loaded ticker directory")
	return entries, nil
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
