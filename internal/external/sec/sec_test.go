package sec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/config"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
)

const tickersBody = `{
	"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
	"1": {"cik_str": 789019, "ticker": "msft", "title": "MICROSOFT CORP"},
	"2": {"cik_str": 0, "ticker": "BAD", "title": "missing cik"}
}`

const factsBody = `{
	"cik": 320193,
	"entityName": "Apple Inc.",
	"facts": {
		"us-gaap": {
			"Revenues": {
				"label": "Revenues",
				"units": {"USD": [
					{"end": "2023-09-30", "start": "2022-10-01", "val": 383285000000, "fp": "FY", "form": "10-K", "filed": "2023-11-03"}
				]}
			}
		}
	}
}`

func testClient() *httputil.Client {
	cfg := &config.Config{SEC: config.SECConfig{UserAgent: "fundscope-test ops@example.com"}}
	return httputil.New(cfg, logger.Nop())
}

func TestDirectoryResolve(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/files/company_tickers.json", r.URL.Path)
		w.Write([]byte(tickersBody))
	}))
	defer server.Close()

	dir := NewDirectory(testClient(), server.URL, time.Hour, nil)
	ctx := context.Background()

	id, err := dir.Resolve(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, contracts.FilerID("0000320193"), id)

	entry, err := dir.Lookup(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, contracts.FilerID("0000789019"), entry.CIK)
	assert.Equal(t, "MICROSOFT CORP", entry.Title)

	_, err = dir.Resolve(ctx, "BAD")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = dir.Resolve(ctx, "ZZZZ")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	n, err := dir.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "directory should be fetched once per TTL")
}

func TestDirectoryColdCacheSharesOneFetch(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.Write([]byte(tickersBody))
	}))
	defer server.Close()

	dir := NewDirectory(testClient(), server.URL, time.Hour, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := dir.Resolve(context.Background(), "AAPL")
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestDirectoryFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	dir := NewDirectory(testClient(), server.URL, time.Hour, nil)
	_, err := dir.Resolve(context.Background(), "AAPL")
	require.Error(t, err)

	var fe *httputil.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusForbidden, fe.StatusCode)
	assert.False(t, errors.Is(err, contracts.ErrNotFound))
}

func TestFactStoreFacts(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/api/xbrl/companyfacts/CIK0000320193.json", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(factsBody))
	}))
	defer server.Close()

	store := NewFactStore(testClient(), server.URL+"/", time.Hour, nil)
	ctx := context.Background()

	doc, err := store.Facts(ctx, "0000320193")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", doc.EntityName)
	assert.Equal(t, contracts.FilerID("0000320193"), doc.CIK)

	c, err := doc.Concept(contracts.TaxonomyGAAP, "Revenues")
	require.NoError(t, err)
	require.Len(t, c.Points(), 1)
	assert.Equal(t, 383285000000.0, c.Points()[0].Val)

	_, err = store.Facts(ctx, "0000320193")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	store.Invalidate(ctx, "0000320193")
	_, err = store.Facts(ctx, "0000320193")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFactStoreNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	store := NewFactStore(testClient(), server.URL, time.Hour, nil)
	_, err := store.Facts(context.Background(), "0000000001")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestFactStoreServerErrorNotCached(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(factsBody))
	}))
	defer server.Close()

	store := NewFactStore(testClient(), server.URL, time.Hour, nil)
	ctx := context.Background()

	_, err := store.Facts(ctx, "0000320193")
	var fe *httputil.FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Retryable())

	doc, err := store.Facts(ctx, "0000320193")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", doc.EntityName)
}

func TestFactStoreMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	}))
	defer server.Close()

	store := NewFactStore(testClient(), server.URL, time.Hour, nil)
	_, err := store.Facts(context.Background(), "0000320193")
	assert.ErrorIs(t, err, contracts.ErrMalformed)
}
