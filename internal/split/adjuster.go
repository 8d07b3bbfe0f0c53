package split

import (
	"sort"

	"github.com/wonny/fundscope/internal/contracts"
)

// Adjuster converts as-disclosed share counts and per-share values onto the
// fully split-adjusted basis of the price history.
type Adjuster struct {
	dates  []string
	suffix []float64 // suffix[i] = product of factors i..n-1; suffix[n] = 1
}

// NewAdjuster builds the suffix-product table. Events with a non-positive
// factor are ignored.
func NewAdjuster(splits []contracts.SplitEvent) *Adjuster {
	events := make([]contracts.SplitEvent, 0, len(splits))
	for _, s := range splits {
		if s.Factor > 0 {
			events = append(events, s)
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date < events[j].Date })

	a := &Adjuster{
		dates:  make([]string, len(events)),
		suffix: make([]float64, len(events)+1),
	}
	a.suffix[len(events)] = 1
	for i := len(events) - 1; i >= 0; i-- {
		a.dates[i] = events[i].Date
		a.suffix[i] = events[i].Factor * a.suffix[i+1]
	}
	return a
}

// Factor returns the product of splits not yet reflected in a value for the
// period ending periodEnd and filed on filed.
//
// Without a filing date, or when filed is not after periodEnd, every split
// after periodEnd applies. A later filing has already restated the value for
// splits before it, so only splits on or after filed apply.
func (a *Adjuster) Factor(periodEnd, filed string) float64 {
	if filed == "" || filed <= periodEnd {
		i := sort.Search(len(a.dates), func(i int) bool { return a.dates[i] > periodEnd })
		return a.suffix[i]
	}
	return a.suffix[sort.SearchStrings(a.dates, filed)]
}

// Shares multiplies a share count by its factor
func (a *Adjuster) Shares(v float64, periodEnd, filed string) float64 {
	return v * a.Factor(periodEnd, filed)
}

// PerShare divides a per-share value by its factor
func (a *Adjuster) PerShare(v float64, periodEnd, filed string) float64 {
	return v / a.Factor(periodEnd, filed)
}

// Len returns the number of split events
func (a *Adjuster) Len() int {
	return len(a.dates)
}
