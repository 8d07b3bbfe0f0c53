package annual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscope/internal/contracts"
)

func fy(end string, val float64) contracts.FactPoint {
	return contracts.FactPoint{
		Start: end[:4] + "-01-01",
		End:   end,
		Filed: end[:4] + "-02-15",
		FP:    "FY",
		Form:  "10-K",
		Val:   val,
	}
}

func concept(unit string, points ...contracts.FactPoint) *contracts.Concept {
	return &contracts.Concept{Units: map[string][]contracts.FactPoint{unit: points}}
}

func gaapDoc(t *testing.T, gaap map[string]*contracts.Concept) *contracts.FactDocument {
	t.Helper()
	doc, err := contracts.NewFactDocument("0000000042", map[string]map[string]*contracts.Concept{
		contracts.TaxonomyGAAP: gaap,
	})
	require.NoError(t, err)
	return doc
}

func TestBuildDerivesRatios(t *testing.T) {
	gaap := map[string]*contracts.Concept{}
	gaap["Revenues"] = concept("USD", fy("2022-12-31", 800), fy("2023-12-31", 1000))
	gaap["NetIncomeLoss"] = concept("USD", fy("2022-12-31", 80), fy("2023-12-31", 120))
	gaap["GrossProfit"] = concept("USD", fy("2023-12-31", 400))
	gaap["OperatingIncomeLoss"] = concept("USD", fy("2023-12-31", 200))
	gaap["DepreciationDepletionAndAmortization"] = concept("USD", fy("2023-12-31", 50))
	gaap["NetCashProvidedByUsedInOperatingActivities"] = concept("USD", fy("2023-12-31", 300))
	gaap["PaymentsToAcquirePropertyPlantAndEquipment"] = concept("USD", fy("2023-12-31", 70))
	gaap["StockholdersEquity"] = concept("USD", fy("2023-12-31", 600))
	gaap["LongTermDebtNoncurrent"] = concept("USD", fy("2023-12-31", 300))
	gaap["CommonStockSharesOutstanding"] = concept("shares", fy("2023-12-31", 60))
	gaap["EarningsPerShareDiluted"] = concept("USD/shares", fy("2022-12-31", 1.6), fy("2023-12-31", 2.0))

	records := NewBuilder(nil).Build(gaapDoc(t, gaap))
	require.Len(t, records, 2)

	latest := records[0]
	assert.Equal(t, "2023-FY", latest.Period)
	assert.Equal(t, "2023-12-31", latest.PeriodDate)
	assert.InDelta(t, 250, *latest.EBITDA, 1e-9)
	assert.InDelta(t, -70, *latest.CapitalExpenditure, 1e-9)
	assert.InDelta(t, 230, *latest.FreeCashFlow, 1e-9)
	assert.InDelta(t, 0.4, *latest.GrossMargin, 1e-9)
	assert.InDelta(t, 0.2, *latest.OperatingMargin, 1e-9)
	assert.InDelta(t, 0.12, *latest.NetMargin, 1e-9)
	assert.InDelta(t, 0.2, *latest.ROE, 1e-9)
	assert.InDelta(t, 0.5, *latest.DebtToEquity, 1e-9)
	assert.InDelta(t, 10, *latest.BookValuePerShare, 1e-9)
	assert.InDelta(t, 0.25, *latest.RevenueGrowth, 1e-9)
	assert.InDelta(t, 0.25, *latest.EPSGrowth, 1e-9)

	oldest := records[1]
	assert.Equal(t, "2022-FY", oldest.Period)
	assert.Nil(t, oldest.RevenueGrowth)
	assert.Nil(t, oldest.EBITDA)
	assert.Nil(t, oldest.GrossMargin)
	assert.NotNil(t, oldest.NetMargin)
}

func TestBuildSkipsYearsWithoutCoreData(t *testing.T) {
	gaap := map[string]*contracts.Concept{}
	gaap["Revenues"] = concept("USD", fy("2023-12-31", 1000))
	// cash alone does not make a year
	gaap["CashAndCashEquivalentsAtCarryingValue"] = concept("USD", fy("2021-12-31", 5), fy("2023-12-31", 9))

	records := NewBuilder(nil).Build(gaapDoc(t, gaap))
	require.Len(t, records, 1)
	assert.Equal(t, "2023-FY", records[0].Period)
	assert.InDelta(t, 9, *records[0].Cash, 1e-9)
}

func TestBuildKeepsLaterYearEndInSameCalendarYear(t *testing.T) {
	gaap := map[string]*contracts.Concept{}
	gaap["Revenues"] = concept("USD", fy("2023-01-31", 900), fy("2023-12-30", 1000))

	records := NewBuilder(nil).Build(gaapDoc(t, gaap))
	require.Len(t, records, 1)
	assert.Equal(t, "2023-12-30", records[0].PeriodDate)
	assert.InDelta(t, 1000, *records[0].Revenue, 1e-9)
}

func TestBuildPrefersModernRevenueTag(t *testing.T) {
	gaap := map[string]*contracts.Concept{}
	gaap["RevenueFromContractWithCustomerExcludingAssessedTax"] = concept("USD", fy("2023-12-31", 1000))
	gaap["SalesRevenueNet"] = concept("USD", fy("2023-12-31", 999), fy("2017-12-31", 700))

	records := NewBuilder(nil).Build(gaapDoc(t, gaap))
	require.Len(t, records, 2)
	assert.InDelta(t, 1000, *records[0].Revenue, 1e-9)
	assert.InDelta(t, 700, *records[1].Revenue, 1e-9)
}

func TestBuildSkipsMalformedPeriodEnd(t *testing.T) {
	gaap := map[string]*contracts.Concept{}
	gaap["Revenues"] = concept("USD",
		contracts.FactPoint{End: "930", Filed: "2023-11-01", FP: "FY", Form: "10-K", Val: 5},
		fy("2023-12-31", 1000),
	)

	var records []contracts.AnnualRecord
	require.NotPanics(t, func() { records = NewBuilder(nil).Build(gaapDoc(t, gaap)) })
	require.Len(t, records, 1)
	assert.Equal(t, "2023-FY", records[0].Period)
}

func TestBuildPrefersBasicEPSAndPointInTimeShares(t *testing.T) {
	gaap := map[string]*contracts.Concept{}
	gaap["Revenues"] = concept("USD", fy("2023-12-31", 1000))
	gaap["StockholdersEquity"] = concept("USD", fy("2023-12-31", 600))
	gaap["EarningsPerShareBasic"] = concept("USD/shares", fy("2023-12-31", 2.1))
	gaap["EarningsPerShareDiluted"] = concept("USD/shares", fy("2023-12-31", 2.0))
	gaap["CommonStockSharesOutstanding"] = concept("shares", fy("2023-12-31", 60))
	gaap["WeightedAverageNumberOfDilutedSharesOutstanding"] = concept("shares", fy("2023-12-31", 62))

	records := NewBuilder(nil).Build(gaapDoc(t, gaap))
	require.Len(t, records, 1)
	assert.InDelta(t, 2.1, *records[0].EPS, 1e-9)
	assert.InDelta(t, 60, *records[0].SharesOutstanding, 1e-9)
	assert.InDelta(t, 10, *records[0].BookValuePerShare, 1e-9)
}

func TestBuildEmptyDocument(t *testing.T) {
	records := NewBuilder(nil).Build(gaapDoc(t, map[string]*contracts.Concept{}))
	assert.Empty(t, records)
}

func TestApplyGrowth(t *testing.T) {
	records := []contracts.AnnualRecord{
		{Period: "2023-FY", Revenue: contracts.Float(90), EPS: contracts.Float(1)},
		{Period: "2022-FY", Revenue: contracts.Float(-100), EPS: contracts.Float(0)},
		{Period: "2021-FY", Revenue: nil, EPS: contracts.Float(2)},
	}
	ApplyGrowth(records)

	// negative base divides by its magnitude
	assert.InDelta(t, 1.9, *records[0].RevenueGrowth, 1e-9)
	assert.Nil(t, records[0].EPSGrowth, "zero base has no growth")
	assert.Nil(t, records[1].RevenueGrowth)
	assert.InDelta(t, -1, *records[1].EPSGrowth, 1e-9)
	assert.Nil(t, records[2].RevenueGrowth)
}
