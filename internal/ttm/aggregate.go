package ttm

import (
	"math"

	"github.com/wonny/fundscope/internal/contracts"
)

// Window is the number of consecutive quarters in a trailing window
const Window = 4

type field func(*contracts.FinancialSnapshot) *float64

// Aggregate returns one TTMSnapshot per run of four consecutive snapshots,
// anchored on the latest. snaps must be ascending by date.
//
// Flow fields are summed only when all four quarters report them. Balance
// fields come from the latest quarter.
func Aggregate(snaps []contracts.FinancialSnapshot) []contracts.TTMSnapshot {
	if len(snaps) < Window {
		return nil
	}

	out := make([]contracts.TTMSnapshot, 0, len(snaps)-Window+1)
	for i := Window - 1; i < len(snaps); i++ {
		q := snaps[i-Window+1 : i+1]
		latest := q[Window-1]

		operatingIncome := sumAll(q, func(s *contracts.FinancialSnapshot) *float64 { return s.OperatingIncome })
		netIncome := sumAll(q, func(s *contracts.FinancialSnapshot) *float64 { return s.NetIncome })
		depreciation := sumAll(q, func(s *contracts.FinancialSnapshot) *float64 { return s.Depreciation })
		operatingCF := sumAll(q, func(s *contracts.FinancialSnapshot) *float64 { return s.OperatingCF })
		capex := sumAll(q, func(s *contracts.FinancialSnapshot) *float64 { return s.Capex })

		ebitda, source := ResolveEBITDA(EBITDAInputs{
			OperatingIncome: operatingIncome,
			NetIncome:       netIncome,
			Depreciation:    depreciation,
			IncomeTax:       sumAny(q, func(s *contracts.FinancialSnapshot) *float64 { return s.IncomeTax }),
			Interest:        sumAny(q, func(s *contracts.FinancialSnapshot) *float64 { return s.InterestExpense }),
		})

		t := contracts.TTMSnapshot{
			Date:               latest.Date,
			RevenueTTM:         sumAll(q, func(s *contracts.FinancialSnapshot) *float64 { return s.Revenue }),
			NetIncomeTTM:       netIncome,
			GrossProfitTTM:     sumAll(q, func(s *contracts.FinancialSnapshot) *float64 { return s.GrossProfit }),
			OperatingIncomeTTM: operatingIncome,
			EBITDATTM:          ebitda,
			EPSTTM:             sumAll(q, func(s *contracts.FinancialSnapshot) *float64 { return s.EPS }),
			EBITDASource:       source,

			TotalAssets: latest.TotalAssets,
			TotalEquity: latest.TotalEquity,
			TotalDebt:   latest.TotalDebt,
			Cash:        latest.Cash,
			Shares:      latest.Shares,

			SharesEstimated: latest.SharesEstimated,
		}
		if operatingCF != nil && capex != nil {
			t.FCFTTM = contracts.Float(*operatingCF + *capex)
		}
		out = append(out, t)
	}
	return out
}

// EBITDAInputs are the trailing sums EBITDA can be derived from.
// IncomeTax and Interest may be partial sums.
type EBITDAInputs struct {
	OperatingIncome *float64
	NetIncome       *float64
	Depreciation    *float64
	IncomeTax       *float64
	Interest        *float64
}

// ResolveEBITDA derives EBITDA as operating income + D&A, or failing that as
// net income + tax + |interest| + D&A. Missing tax or interest count as zero
// on the second path; D&A is required on both.
func ResolveEBITDA(in EBITDAInputs) (*float64, string) {
	if in.Depreciation == nil {
		return nil, ""
	}
	if in.OperatingIncome != nil {
		return contracts.Float(*in.OperatingIncome + *in.Depreciation), contracts.EBITDAFromOperatingIncome
	}
	if in.NetIncome == nil {
		return nil, ""
	}

	v := *in.NetIncome + *in.Depreciation
	if in.IncomeTax != nil {
		v += *in.IncomeTax
	}
	if in.Interest != nil {
		// net interest tags are negative when expense exceeds income
		v += math.Abs(*in.Interest)
	}
	return contracts.Float(v), contracts.EBITDAFromNetIncome
}

// sumAll sums f over q, or nil unless every quarter has a value
func sumAll(q []contracts.FinancialSnapshot, f field) *float64 {
	total := 0.0
	for i := range q {
		v := f(&q[i])
		if v == nil {
			return nil
		}
		total += *v
	}
	return &total
}

// sumAny sums the quarters that have a value, or nil when none do
func sumAny(q []contracts.FinancialSnapshot, f field) *float64 {
	total, n := 0.0, 0
	for i := range q {
		if v := f(&q[i]); v != nil {
			total += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &total
}
