package ttm

import (
	"sort"
	"time"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/internal/extract"
	"github.com/wonny/fundscope/internal/quarter"
	"github.com/wonny/fundscope/internal/split"
	"github.com/wonny/fundscope/pkg/logger"
)

// MaxDeltaGapDays bounds the gap between two accumulated-depreciation balances
// used to derive one quarter's D&A. Wider gaps span several quarters.
const MaxDeltaGapDays = 200

// Assembler builds quarterly FinancialSnapshots from a facts document
type Assembler struct {
	isolator *quarter.Isolator
	logger   *logger.Logger
}

// NewAssembler creates an assembler
func NewAssembler(iso *quarter.Isolator, log *logger.Logger) *Assembler {
	if iso == nil {
		iso = quarter.New(log)
	}
	return &Assembler{
		isolator: iso,
		logger:   logger.OrNop(log).WithModule("ttm"),
	}
}

// Snapshots returns one snapshot per quarter end, ascending. Share counts and
// EPS are put on the split-adjusted basis of adj. Quarters without revenue,
// net income or total assets are dropped.
func (a *Assembler) Snapshots(doc *contracts.FactDocument, adj *split.Adjuster) []contracts.FinancialSnapshot {
	if adj == nil {
		adj = split.NewAdjuster(nil)
	}
	ex := extract.New(doc, a.logger)
	isolate := func(chain extract.Chain) contracts.QuarterValues {
		return a.isolator.Isolate(ex.QuarterlyRaw(chain))
	}

	revenue := isolate(extract.Revenue)
	netIncome := isolate(extract.NetIncomeQuarterly)
	grossProfit := isolate(extract.GrossProfit)
	operatingIncome := isolate(extract.OperatingIncomeQuarterly)
	incomeTax := isolate(extract.IncomeTax)
	interest := isolate(extract.InterestExpense)
	operatingCF := isolate(extract.OperatingCashFlow)
	capex := isolate(extract.Capex)
	eps := isolate(extract.EPS)
	depreciation := a.depreciation(ex, isolate)

	assets := ex.BalanceChain(extract.TotalAssets)
	equity := ex.BalanceChain(extract.TotalEquity)
	debt := ex.BalanceChain(extract.TotalDebt)
	cash := ex.BalanceChain(extract.Cash)
	shares, estimated := sharesSeries(ex)
	sharesVal := shares.Values()

	dates := unionDates(revenue, netIncome, grossProfit, operatingIncome, assets, equity)

	snaps := make([]contracts.FinancialSnapshot, 0, len(dates))
	for _, date := range dates {
		filed := ""
		if sv, ok := shares.LatestOnOrBefore(date); ok {
			filed = sv.Filed
		}
		factor := adj.Factor(date, filed)

		s := contracts.FinancialSnapshot{
			Date:            date,
			Revenue:         revenue.At(date),
			NetIncome:       netIncome.At(date),
			GrossProfit:     grossProfit.At(date),
			OperatingIncome: operatingIncome.At(date),
			OperatingCF:     operatingCF.At(date),
			Depreciation:    depreciation.At(date),
			IncomeTax:       incomeTax.At(date),
			InterestExpense: interest.At(date),

			TotalAssets: assets.LatestOnOrBefore(date),
			TotalEquity: equity.LatestOnOrBefore(date),
			TotalDebt:   debt.LatestOnOrBefore(date),
			Cash:        cash.LatestOnOrBefore(date),
		}
		if v := capex.At(date); v != nil {
			s.Capex = contracts.Float(-*v)
		}
		if v := eps.At(date); v != nil {
			s.EPS = contracts.Float(*v / factor)
		}
		if v := sharesVal.LatestOnOrBefore(date); v != nil {
			s.Shares = contracts.Float(*v * factor)
			s.SharesEstimated = estimated
		}

		if s.HasCoreData() {
			snaps = append(snaps, s)
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"cik":              string(doc.CIK),
		"quarters":         len(dates),
		"snapshots":        len(snaps),
		"shares_estimated": estimated,
	}).Debug("Assembled quarterly snapshots")

	return snaps
}

// depreciation merges, highest priority first: the combined D&A tags, the sum
// of the separate depreciation and amortization tags, and the quarterly delta
// of accumulated depreciation.
func (a *Assembler) depreciation(ex *extract.Extractor, isolate func(extract.Chain) contracts.QuarterValues) contracts.QuarterValues {
	combined := isolate(extract.DepreciationCombined)

	dep := isolate(extract.DepreciationOnly)
	amort := isolate(extract.AmortizationOnly)
	summed := make(contracts.QuarterValues, len(dep))
	for d, v := range dep {
		summed[d] = v
	}
	for d, v := range amort {
		summed[d] += v
	}

	delta := BalanceDelta(ex.BalanceChain(extract.AccumulatedDepreciation), MaxDeltaGapDays)

	return overlay(combined, summed, delta)
}

// BalanceDelta derives per-period flows from a cumulative balance: the
// positive change between consecutive dates at most maxGapDays apart.
func BalanceDelta(balance contracts.DateSeries, maxGapDays float64) contracts.DateSeries {
	out := make(contracts.DateSeries)
	dates := balance.Dates()
	for i := 1; i < len(dates); i++ {
		prev, cur := dates[i-1], dates[i]
		delta := balance[cur] - balance[prev]
		if delta <= 0 {
			continue
		}
		gap, ok := daysBetween(prev, cur)
		if !ok || gap > maxGapDays {
			continue
		}
		out[cur] = delta
	}
	return out
}

// sharesSeries returns split-unadjusted share counts with filing dates. When no
// share tag exists the count is estimated as public float / share price, with
// the float date standing in as the filing date.
func sharesSeries(ex *extract.Extractor) (contracts.FiledSeries, bool) {
	shares := ex.BalanceFiledChain(extract.Shares)
	if len(shares) > 0 {
		return shares, false
	}

	publicFloat := ex.Balance(extract.PublicFloat)
	price := ex.Balance(extract.SharePrice)
	for date, fv := range publicFloat {
		sp := price.LatestOnOrBefore(date)
		if sp == nil || *sp <= 0 {
			continue
		}
		shares[date] = contracts.FiledValue{Val: fv / *sp, Filed: date}
	}
	return shares, len(shares) > 0
}

// overlay merges series, earlier arguments taking precedence per date
func overlay(layers ...contracts.DateSeries) contracts.DateSeries {
	out := make(contracts.DateSeries)
	for i := len(layers) - 1; i >= 0; i-- {
		for d, v := range layers[i] {
			out[d] = v
		}
	}
	return out
}

func unionDates(series ...contracts.DateSeries) []string {
	seen := make(map[string]struct{})
	for _, s := range series {
		for d := range s {
			seen[d] = struct{}{}
		}
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func daysBetween(from, to string) (float64, bool) {
	f, err := time.Parse("2006-01-02", from)
	if err != nil {
		return 0, false
	}
	t, err := time.Parse("2006-01-02", to)
	if err != nil {
		return 0, false
	}
	return t.Sub(f).Hours() / 24, true
}
