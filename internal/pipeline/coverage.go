package pipeline

import "github.com/wonny/fundscope/internal/contracts"

// Coverage reports how much of the quarterly history the filer actually
// disclosed. Gaps surface here instead of as fabricated values.
type Coverage struct {
	Quarters int                `json:"quarters"`
	Fields   map[string]float64 `json:"fields"` // fraction of quarters with the field
	Score    float64            `json:"score"`  // weighted, 0.0 - 1.0
}

// coverage weights (sum = 1.0); fields the ratios cannot do without weigh most
var coverageWeights = map[string]float64{
	"revenue":          0.20,
	"net_income":       0.20,
	"shares":           0.20,
	"operating_income": 0.10,
	"depreciation":     0.10,
	"total_equity":     0.10,
	"total_debt":       0.05,
	"cash":             0.05,
}

// MeasureCoverage computes field coverage over quarterly snapshots
func MeasureCoverage(snaps []contracts.FinancialSnapshot) Coverage {
	c := Coverage{
		Quarters: len(snaps),
		Fields:   make(map[string]float64, len(coverageWeights)),
	}
	if len(snaps) == 0 {
		return c
	}

	counts := make(map[string]int, len(coverageWeights))
	for i := range snaps {
		s := &snaps[i]
		for name, v := range map[string]*float64{
			"revenue":          s.Revenue,
			"net_income":       s.NetIncome,
			"shares":           s.Shares,
			"operating_income": s.OperatingIncome,
			"depreciation":     s.Depreciation,
			"total_equity":     s.TotalEquity,
			"total_debt":       s.TotalDebt,
			"cash":             s.Cash,
		} {
			if v != nil {
				counts[name]++
			}
		}
	}

	for name, weight := range coverageWeights {
		frac := float64(counts[name]) / float64(len(snaps))
		c.Fields[name] = frac
		c.Score += frac * weight
	}
	return c
}
