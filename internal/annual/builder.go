package annual

import (
	"math"
	"sort"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/internal/extract"
	"github.com/wonny/fundscope/pkg/logger"
)

// Builder produces the annual financial-statement series
type Builder struct {
	logger *logger.Logger
}

// NewBuilder creates a builder
func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{logger: logger.OrNop(log).WithModule("annual")}
}

// Build returns one record per fiscal year, newest first. Years without
// revenue, net income, total assets or operating cash flow are skipped.
func (b *Builder) Build(doc *contracts.FactDocument) []contracts.AnnualRecord {
	ex := extract.New(doc, b.logger)

	revenue := ex.AnnualChain(extract.Revenue)
	netIncome := ex.AnnualChain(extract.NetIncomeAnnual)
	eps := ex.AnnualChain(extract.EPSAnnual)
	grossProfit := ex.AnnualChain(extract.GrossProfit)
	operatingIncome := ex.AnnualChain(extract.OperatingIncomeAnnual)
	assets := ex.AnnualChain(extract.TotalAssets)
	equity := ex.AnnualChain(extract.TotalEquity)
	debt := ex.AnnualChain(extract.TotalDebt)
	cash := ex.AnnualChain(extract.Cash)
	shares := ex.AnnualChain(extract.SharesAnnual)
	operatingCF := ex.AnnualChain(extract.OperatingCashFlow)
	capex := ex.AnnualChain(extract.Capex)
	depreciation := ex.AnnualChain(extract.DepreciationCombined)

	all := []contracts.DateSeries{
		revenue, netIncome, eps, grossProfit, operatingIncome, assets, equity,
		debt, cash, shares, operatingCF, capex, depreciation,
	}

	byPeriod := make(map[string]contracts.AnnualRecord)
	for _, end := range unionDates(all) {
		if !contracts.IsDate(end) {
			b.logger.WithField("end", end).Debug("Skipping malformed period end")
			continue
		}
		r := contracts.AnnualRecord{
			Period:            end[:4] + "-FY",
			PeriodDate:        end,
			Revenue:           revenue.At(end),
			NetIncome:         netIncome.At(end),
			GrossProfit:       grossProfit.At(end),
			OperatingIncome:   operatingIncome.At(end),
			EPS:               eps.At(end),
			OperatingCashFlow: operatingCF.At(end),
			Depreciation:      depreciation.At(end),
			TotalAssets:       assets.At(end),
			TotalEquity:       equity.At(end),
			TotalDebt:         debt.At(end),
			Cash:              cash.At(end),
			SharesOutstanding: shares.At(end),
		}
		if r.Revenue == nil && r.NetIncome == nil && r.TotalAssets == nil && r.OperatingCashFlow == nil {
			continue
		}
		if v := capex.At(end); v != nil {
			r.CapitalExpenditure = contracts.Float(-*v)
		}
		derive(&r)

		// two fiscal year ends in one calendar year: keep the later
		if held, ok := byPeriod[r.Period]; !ok || r.PeriodDate > held.PeriodDate {
			byPeriod[r.Period] = r
		}
	}

	records := make([]contracts.AnnualRecord, 0, len(byPeriod))
	for _, r := range byPeriod {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].PeriodDate > records[j].PeriodDate })
	ApplyGrowth(records)

	b.logger.WithFields(map[string]interface{}{
		"cik":   string(doc.CIK),
		"years": len(records),
	}).Debug("Built annual series")

	return records
}

// derive fills EBITDA, free cash flow, margins and per-share fields
func derive(r *contracts.AnnualRecord) {
	if r.OperatingIncome != nil && r.Depreciation != nil {
		r.EBITDA = contracts.Float(*r.OperatingIncome + *r.Depreciation)
	}
	if r.OperatingCashFlow != nil && r.CapitalExpenditure != nil {
		r.FreeCashFlow = contracts.Float(*r.OperatingCashFlow + *r.CapitalExpenditure)
	}
	if r.Revenue != nil && *r.Revenue != 0 {
		r.GrossMargin = ratio(r.GrossProfit, *r.Revenue)
		r.OperatingMargin = ratio(r.OperatingIncome, *r.Revenue)
		r.NetMargin = ratio(r.NetIncome, *r.Revenue)
	}
	if r.TotalEquity != nil && *r.TotalEquity != 0 {
		r.ROE = ratio(r.NetIncome, *r.TotalEquity)
		r.DebtToEquity = ratio(r.TotalDebt, *r.TotalEquity)
	}
	if r.TotalEquity != nil && r.SharesOutstanding != nil && *r.SharesOutstanding > 0 {
		r.BookValuePerShare = contracts.Float(*r.TotalEquity / *r.SharesOutstanding)
	}
}

// ApplyGrowth sets revenue and EPS growth against the next (older) record.
// records must be newest first.
func ApplyGrowth(records []contracts.AnnualRecord) {
	for i := 0; i+1 < len(records); i++ {
		cur, prev := &records[i], &records[i+1]
		cur.RevenueGrowth = growth(cur.Revenue, prev.Revenue)
		cur.EPSGrowth = growth(cur.EPS, prev.EPS)
	}
}

func growth(cur, prev *float64) *float64 {
	if cur == nil || prev == nil || *prev == 0 {
		return nil
	}
	return contracts.Float((*cur - *prev) / math.Abs(*prev))
}

func ratio(num *float64, den float64) *float64 {
	if num == nil {
		return nil
	}
	return contracts.Float(*num / den)
}

func unionDates(series []contracts.DateSeries) []string {
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
