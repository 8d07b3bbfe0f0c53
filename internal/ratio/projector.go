package ratio

import (
	"math"
	"sort"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/config"
)

// Default ceilings. Multiples beyond them are treated as data artifacts
// (mis-isolated quarters, stale share counts) and published as absent.
const (
	DefaultRatioCeiling   = 500.0
	DefaultNetDebtCeiling = 50.0
)

// Projector aligns daily closes with trailing fundamentals
type Projector struct {
	ratioCeiling   float64
	netDebtCeiling float64
}

// NewProjector creates a projector from engine config. Non-positive ceilings
// fall back to the defaults.
func NewProjector(cfg config.EngineConfig) *Projector {
	p := &Projector{
		ratioCeiling:   cfg.RatioCeiling,
		netDebtCeiling: cfg.NetDebtCeiling,
	}
	if p.ratioCeiling <= 0 {
		p.ratioCeiling = DefaultRatioCeiling
	}
	if p.netDebtCeiling <= 0 {
		p.netDebtCeiling = DefaultNetDebtCeiling
	}
	return p
}

// Project returns one point per bar that has a TTM snapshot dated on or
// before it. Bars before the first snapshot are skipped.
func (p *Projector) Project(bars []contracts.PriceBar, snaps []contracts.TTMSnapshot) []contracts.DynamicRatioPoint {
	if len(bars) == 0 || len(snaps) == 0 {
		return nil
	}

	ordered := make([]contracts.TTMSnapshot, len(snaps))
	copy(ordered, snaps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date < ordered[j].Date })

	out := make([]contracts.DynamicRatioPoint, 0, len(bars))
	for _, bar := range bars {
		// first snapshot dated after the bar; the one before it applies
		i := sort.Search(len(ordered), func(i int) bool { return ordered[i].Date > bar.Date })
		if i == 0 {
			continue
		}
		out = append(out, p.Point(bar, &ordered[i-1]))
	}
	return out
}

// Point computes one day's ratios from a close and a TTM snapshot
func (p *Projector) Point(bar contracts.PriceBar, s *contracts.TTMSnapshot) contracts.DynamicRatioPoint {
	pt := contracts.DynamicRatioPoint{
		Date:            bar.Date,
		Price:           bar.Close,
		RevenueTTM:      s.RevenueTTM,
		NetIncomeTTM:    s.NetIncomeTTM,
		EBITDATTM:       s.EBITDATTM,
		FCFTTM:          s.FCFTTM,
		SharesEstimated: s.SharesEstimated,
	}

	var marketCap *float64
	if positive(s.Shares) {
		marketCap = contracts.Float(bar.Close * *s.Shares)
	}
	pt.MarketCap = marketCap

	debt := valueOr(s.TotalDebt, 0)
	cash := valueOr(s.Cash, 0)

	if marketCap != nil {
		if positive(s.NetIncomeTTM) {
			pt.PE = p.bound(*marketCap / *s.NetIncomeTTM)
		}
		if positive(s.EBITDATTM) {
			ev := *marketCap + debt - cash
			pt.EVEBITDA = p.bound(ev / *s.EBITDATTM)
		}
		if positive(s.TotalEquity) {
			pt.PB = p.bound(*marketCap / *s.TotalEquity)
		}
		if nonZero(s.RevenueTTM) {
			pt.PS = p.bound(*marketCap / *s.RevenueTTM)
		}
	}

	if positive(s.EBITDATTM) {
		netDebt := debt - cash
		pt.NetDebtToEBITDA = within(netDebt / *s.EBITDATTM, p.netDebtCeiling)
	}

	if nonZero(s.RevenueTTM) {
		pt.GrossMargin = div(s.GrossProfitTTM, *s.RevenueTTM)
		pt.OperatingMargin = div(s.OperatingIncomeTTM, *s.RevenueTTM)
		pt.NetMargin = div(s.NetIncomeTTM, *s.RevenueTTM)
	}
	if nonZero(s.TotalEquity) {
		pt.ROE = div(s.NetIncomeTTM, *s.TotalEquity)
		pt.DebtToEquity = div(s.TotalDebt, *s.TotalEquity)
	}

	return pt
}

// bound drops multiples outside the ratio ceiling
func (p *Projector) bound(v float64) *float64 {
	return within(v, p.ratioCeiling)
}

func within(v, ceiling float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > ceiling {
		return nil
	}
	return &v
}

func div(num *float64, den float64) *float64 {
	if num == nil || den == 0 {
		return nil
	}
	v := *num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func nonZero(v *float64) bool {
	return v != nil && *v != 0
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
