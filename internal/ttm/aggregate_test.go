package ttm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscope/internal/contracts"
)

var f = contracts.Float

func quarters(dates ...string) []contracts.FinancialSnapshot {
	out := make([]contracts.FinancialSnapshot, len(dates))
	for i, d := range dates {
		out[i].Date = d
	}
	return out
}

func TestAggregateFourQuarters(t *testing.T) {
	snaps := quarters("2023-03-31", "2023-06-30", "2023-09-30", "2023-12-31")
	for i, rev := range []float64{100, 110, 120, 130} {
		snaps[i].Revenue = f(rev)
		snaps[i].NetIncome = f([]float64{10, 12, 14, 16}[i])
		snaps[i].Shares = f(float64(9 + i/3)) // only the latest quarter counts
	}

	got := Aggregate(snaps)
	require.Len(t, got, 1)
	assert.Equal(t, "2023-12-31", got[0].Date)
	assert.Equal(t, 460.0, *got[0].RevenueTTM)
	assert.Equal(t, 52.0, *got[0].NetIncomeTTM)
	assert.Equal(t, 10.0, *got[0].Shares)
	assert.Nil(t, got[0].GrossProfitTTM)
	assert.Nil(t, got[0].EBITDATTM)
}

func TestAggregateRequiresEveryQuarter(t *testing.T) {
	snaps := quarters("2022-12-31", "2023-03-31", "2023-06-30", "2023-09-30", "2023-12-31")
	for i := range snaps {
		snaps[i].TotalAssets = f(1000)
		if i > 0 {
			snaps[i].Revenue = f(100)
		}
	}

	got := Aggregate(snaps)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].RevenueTTM, "first window includes a quarter without revenue")
	require.NotNil(t, got[1].RevenueTTM)
	assert.Equal(t, 400.0, *got[1].RevenueTTM)
	assert.Equal(t, 1000.0, *got[1].TotalAssets)
}

func TestAggregateTooFewQuarters(t *testing.T) {
	assert.Empty(t, Aggregate(quarters("2023-03-31", "2023-06-30", "2023-09-30")))
}

func TestAggregateFreeCashFlow(t *testing.T) {
	snaps := quarters("2023-03-31", "2023-06-30", "2023-09-30", "2023-12-31")
	for i := range snaps {
		snaps[i].OperatingCF = f(25)
		snaps[i].Capex = f(-5)
	}
	got := Aggregate(snaps)
	require.NotNil(t, got[0].FCFTTM)
	assert.Equal(t, 80.0, *got[0].FCFTTM)

	snaps[2].Capex = nil
	assert.Nil(t, Aggregate(snaps)[0].FCFTTM)
}

func TestAggregateEBITDAPaths(t *testing.T) {
	snaps := quarters("2023-03-31", "2023-06-30", "2023-09-30", "2023-12-31")
	for i := range snaps {
		snaps[i].OperatingIncome = f(10)
		snaps[i].NetIncome = f(5)
		snaps[i].Depreciation = f(2)
	}

	got := Aggregate(snaps)[0]
	assert.Equal(t, 48.0, *got.EBITDATTM)
	assert.Equal(t, contracts.EBITDAFromOperatingIncome, got.EBITDASource)

	// operating income missing in one quarter falls through to net income
	snaps[1].OperatingIncome = nil
	snaps[0].IncomeTax = f(1)
	snaps[3].IncomeTax = f(1)
	snaps[2].InterestExpense = f(-3)

	got = Aggregate(snaps)[0]
	assert.Nil(t, got.OperatingIncomeTTM)
	assert.Equal(t, 33.0, *got.EBITDATTM)
	assert.Equal(t, contracts.EBITDAFromNetIncome, got.EBITDASource)

	// D&A is required on both paths
	snaps[2].Depreciation = nil
	got = Aggregate(snaps)[0]
	assert.Nil(t, got.EBITDATTM)
	assert.Empty(t, got.EBITDASource)
}

func TestResolveEBITDA(t *testing.T) {
	tests := []struct {
		name   string
		in     EBITDAInputs
		want   *float64
		source string
	}{
		{"operating path", EBITDAInputs{OperatingIncome: f(100), NetIncome: f(60), Depreciation: f(20)}, f(120), contracts.EBITDAFromOperatingIncome},
		{"net income path without add-backs", EBITDAInputs{NetIncome: f(60), Depreciation: f(20)}, f(80), contracts.EBITDAFromNetIncome},
		{"net income path with add-backs", EBITDAInputs{NetIncome: f(60), Depreciation: f(20), IncomeTax: f(15), Interest: f(5)}, f(100), contracts.EBITDAFromNetIncome},
		{"negative net interest added back", EBITDAInputs{NetIncome: f(60), Depreciation: f(20), Interest: f(-5)}, f(85), contracts.EBITDAFromNetIncome},
		{"no depreciation", EBITDAInputs{OperatingIncome: f(100), NetIncome: f(60)}, nil, ""},
		{"nothing to derive from", EBITDAInputs{Depreciation: f(20)}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source := ResolveEBITDA(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.source, source)
		})
	}
}
