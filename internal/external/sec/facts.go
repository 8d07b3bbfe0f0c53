package sec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/cache"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
	"github.com/wonny/fundscope/pkg/redis"
)

// FactStore fetches and caches per-filer facts documents.
// ⭐ SSOT: the only reader of the companyfacts endpoint
type FactStore struct {
	http    *httputil.Client
	logger  *logger.Logger
	dataURL string
	ttl     time.Duration
	cache   *cache.Cache[*contracts.FactDocument]
	shared  *redis.Cache // optional, raw documents shared across processes
}

// NewFactStore creates a store reading from dataURL (e.g. https://data.sec.gov)
func NewFactStore(httpClient *httputil.Client, dataURL string, ttl time.Duration, log *logger.Logger) *FactStore {
	return &FactStore{
		http:    httpClient,
		logger:  logger.OrNop(log).WithModule("sec.facts"),
		dataURL: strings.TrimRight(dataURL, "/"),
		ttl:     ttl,
		cache:   cache.New[*contracts.FactDocument](),
	}
}

// WithSharedCache adds a Redis second-level cache for raw documents
func (s *FactStore) WithSharedCache(c *redis.Cache) *FactStore {
	s.shared = c
	return s
}

// Facts returns the filer's document. A filer the regulator does not know
// yields contracts.ErrNotFound; other non-2xx responses surface as
// *httputil.FetchError.
//
// The returned document is shared with the cache and must not be mutated.
func (s *FactStore) Facts(ctx context.Context, id contracts.FilerID) (*contracts.FactDocument, error) {
	return s.cache.GetOrFetch(ctx, string(id), s.ttl, func(ctx context.Context) (*contracts.FactDocument, error) {
		return s.load(ctx, id)
	})
}

// Invalidate drops a filer's cached document
func (s *FactStore) Invalidate(ctx context.Context, id contracts.FilerID) {
	s.cache.Invalidate(string(id))
	if err := s.shared.Delete(ctx, redis.FactsKey(string(id))); err != nil {
		s.logger.WithError(err).Warn("Failed to drop shared facts entry")
	}
}

func (s *FactStore) load(ctx context.Context, id contracts.FilerID) (*contracts.FactDocument, error) {
	log := s.logger.WithField("cik", string(id))

	var raw json.RawMessage
	found, err := s.shared.Get(ctx, redis.FactsKey(string(id)), &raw)
	if err != nil {
		log.WithError(err).Warn("Shared facts cache read failed")
	}

	if !found {
		url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", s.dataURL, id)
		raw, err = s.http.GetBytes(ctx, url)
		if httputil.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("facts for CIK%s: %w", id, contracts.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if err := s.shared.Set(ctx, redis.FactsKey(string(id)), raw, s.ttl); err != nil {
			log.WithError(err).Warn("Shared facts cache write failed")
		}
	}

	doc, err := contracts.ParseFactDocument(raw)
	if err != nil {
		return nil, err
	}
	if doc.CIK == "" {
		doc.CIK = id
	}

	log.WithFields(map[string]interface{}{
		"concepts": doc.ConceptCount(),
		"shared":   found,
	}).Debug("Loaded facts document")
	return doc, nil
}
