package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/fundscope/internal/annual"
	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/internal/ratio"
	"github.com/wonny/fundscope/internal/split"
	"github.com/wonny/fundscope/internal/ttm"
	"github.com/wonny/fundscope/pkg/config"
	"github.com/wonny/fundscope/pkg/logger"
)

// Result is everything one run produced for a ticker.
// A ticker without a filer or facts document yields an empty Result.
type Result struct {
	Ticker   string                        `json:"ticker"`
	RunID    string                        `json:"run_id"`
	CIK      contracts.FilerID             `json:"cik,omitempty"`
	Annual   []contracts.AnnualRecord      `json:"annual"`
	Quarters []contracts.FinancialSnapshot `json:"quarters"`
	TTM      []contracts.TTMSnapshot       `json:"ttm"`
	Ratios   []contracts.DynamicRatioPoint `json:"ratios"`
	Coverage Coverage                      `json:"coverage"`
}

// Runner orchestrates the per-ticker pipeline
// ⭐ SSOT: the only place the engine stages are wired together
type Runner struct {
	filers    contracts.FilerResolver
	facts     contracts.FactSource
	prices    contracts.PriceSource
	annual    *annual.Builder
	assembler *ttm.Assembler
	projector *ratio.Projector
	store     contracts.ResultRepository
	maxAge    time.Duration
	logger    *logger.Logger
}

// NewRunner creates a runner. prices may be nil, in which case no ratios
// are produced.
func NewRunner(
	filers contracts.FilerResolver,
	facts contracts.FactSource,
	prices contracts.PriceSource,
	cfg config.EngineConfig,
	log *logger.Logger,
) *Runner {
	log = logger.OrNop(log)
	return &Runner{
		filers:    filers,
		facts:     facts,
		prices:    prices,
		annual:    annual.NewBuilder(log),
		assembler: ttm.NewAssembler(nil, log),
		projector: ratio.NewProjector(cfg),
		maxAge:    cfg.ResultTTL,
		logger:    log.WithModule("pipeline"),
	}
}

// WithStore enables the results cache. Reads younger than maxAge are served
// from it; every computed series is written back.
func (r *Runner) WithStore(repo contracts.ResultRepository) *Runner {
	r.store = repo
	return r
}

// Run computes both series for ticker and persists them when a store is set
func (r *Runner) Run(ctx context.Context, ticker string) (*Result, error) {
	res, log := r.begin(ticker)
	start := time.Now()

	doc, err := r.document(ctx, log, res)
	if err != nil || doc == nil {
		return res, err
	}

	res.Annual = r.annual.Build(doc)
	log.WithField("stage", contracts.StageAnnual).Debugf("%d fiscal years", len(res.Annual))

	if err := r.quarterly(ctx, log, res, doc); err != nil {
		return res, err
	}

	r.saveAnnual(ctx, log, res)
	r.saveRatios(ctx, log, res)

	log.WithFields(map[string]interface{}{
		"annual":   len(res.Annual),
		"quarters": len(res.Quarters),
		"ratios":   len(res.Ratios),
		"duration": time.Since(start).String(),
	}).Info("Pipeline run completed")

	return res, nil
}

// Financials returns the annual series, from the store when fresh
func (r *Runner) Financials(ctx context.Context, ticker string) ([]contracts.AnnualRecord, error) {
	res, log := r.begin(ticker)

	if r.store != nil {
		records, ok, err := r.store.LoadAnnual(ctx, res.Ticker, r.maxAge)
		if err != nil {
			log.WithError(err).Warn("Failed to read stored annual series")
		} else if ok {
			log.Debug("Annual series served from store")
			return records, nil
		}
	}

	doc, err := r.document(ctx, log, res)
	if err != nil || doc == nil {
		return orEmpty(res.Annual), err
	}

	res.Annual = r.annual.Build(doc)
	r.saveAnnual(ctx, log, res)
	return orEmpty(res.Annual), nil
}

// Ratios returns the daily ratio series, from the store when fresh
func (r *Runner) Ratios(ctx context.Context, ticker string) ([]contracts.DynamicRatioPoint, error) {
	res, log := r.begin(ticker)

	if r.store != nil {
		points, ok, err := r.store.LoadRatios(ctx, res.Ticker, r.maxAge)
		if err != nil {
			log.WithError(err).Warn("Failed to read stored ratio series")
		} else if ok {
			log.Debug("Ratio series served from store")
			return points, nil
		}
	}

	doc, err := r.document(ctx, log, res)
	if err != nil || doc == nil {
		return orEmpty(res.Ratios), err
	}

	if err := r.quarterly(ctx, log, res, doc); err != nil {
		return nil, err
	}
	r.saveRatios(ctx, log, res)
	return orEmpty(res.Ratios), nil
}

func (r *Runner) begin(ticker string) (*Result, *logger.Logger) {
	res := &Result{
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
		RunID:  uuid.New().String(),
	}
	log := r.logger.WithFields(map[string]interface{}{
		"ticker": res.Ticker,
		"run_id": res.RunID,
	})
	return res, log
}

// document resolves the filer and loads its facts. A missing filer or facts
// document returns (nil, nil).
func (r *Runner) document(ctx context.Context, log *logger.Logger, res *Result) (*contracts.FactDocument, error) {
	cik, err := r.filers.Resolve(ctx, res.Ticker)
	if errors.Is(err, contracts.ErrNotFound) {
		log.WithField("stage", contracts.StageResolve).Info("No filer for ticker")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve filer: %w", err)
	}
	res.CIK = cik

	doc, err := r.facts.Facts(ctx, cik)
	if errors.Is(err, contracts.ErrNotFound) {
		log.WithFields(map[string]interface{}{
			"stage": contracts.StageFacts,
			"cik":   string(cik),
		}).Info("No facts document for filer")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch facts %s: %w", cik, err)
	}

	log.WithFields(map[string]interface{}{
		"stage":    contracts.StageFacts,
		"cik":      string(cik),
		"concepts": doc.ConceptCount(),
	}).Debug("Facts loaded")

	return doc, nil
}

// quarterly runs prices -> split -> quarters -> ttm -> ratios
func (r *Runner) quarterly(ctx context.Context, log *logger.Logger, res *Result, doc *contracts.FactDocument) error {
	if r.prices == nil {
		res.Quarters = r.assembler.Snapshots(doc, nil)
		res.TTM = ttm.Aggregate(res.Quarters)
		res.Coverage = MeasureCoverage(res.Quarters)
		return nil
	}

	hist, err := r.prices.History(ctx, res.Ticker)
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		log.WithField("stage", contracts.StagePrices).Info("No price history for ticker")
		hist = &contracts.PriceHistory{Ticker: res.Ticker}
	case err != nil:
		return fmt.Errorf("fetch prices: %w", err)
	}

	adj := split.NewAdjuster(hist.Splits)
	res.Quarters = r.assembler.Snapshots(doc, adj)
	res.TTM = ttm.Aggregate(res.Quarters)
	res.Ratios = r.projector.Project(hist.Bars, res.TTM)
	res.Coverage = MeasureCoverage(res.Quarters)

	log.WithFields(map[string]interface{}{
		"stage":    contracts.StageRatios,
		"splits":   adj.Len(),
		"bars":     len(hist.Bars),
		"quarters": len(res.Quarters),
		"ttm":      len(res.TTM),
		"points":   len(res.Ratios),
		"coverage": res.Coverage.Score,
	}).Debug("Quarterly path completed")

	return nil
}

// Store write failures are logged, never returned: the store is a cache.
func (r *Runner) saveAnnual(ctx context.Context, log *logger.Logger, res *Result) {
	if r.store == nil || len(res.Annual) == 0 {
		return
	}
	if err := r.store.SaveAnnual(ctx, res.Ticker, res.RunID, res.Annual); err != nil {
		log.WithError(err).Warn("Failed to store annual series")
	}
}

func (r *Runner) saveRatios(ctx context.Context, log *logger.Logger, res *Result) {
	if r.store == nil || len(res.Ratios) == 0 {
		return
	}
	if err := r.store.SaveRatios(ctx, res.Ticker, res.RunID, res.Ratios); err != nil {
		log.WithError(err).Warn("Failed to store ratio series")
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
