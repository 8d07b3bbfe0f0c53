package extract

import (
	"strings"

	"github.com/wonny/fundscope/internal/contracts"
)

// Candidate is a disclosed point together with the chain position of the tag
// it came from. Rank 0 is the highest-priority tag.
type Candidate struct {
	contracts.FactPoint
	Rank int
	Tag  Tag
}

// Compare orders two candidates for the same key. A positive result means a
// should replace b; zero means neither is preferred.
type Compare func(a, b Candidate) int

// PickBest reduces candidates to one per key. An incoming candidate replaces
// the held one only when cmp prefers it strictly, so on a full tie the first
// candidate seen is kept.
func PickBest(cands []Candidate, key func(Candidate) string, cmp Compare) map[string]Candidate {
	best := make(map[string]Candidate, len(cands))
	for _, c := range cands {
		k := key(c)
		held, ok := best[k]
		if !ok || cmp(c, held) > 0 {
			best[k] = c
		}
	}
	return best
}

// Then chains comparators; the first non-zero result decides
func Then(cmps ...Compare) Compare {
	return func(a, b Candidate) int {
		for _, cmp := range cmps {
			if r := cmp(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// LatestFiled prefers the more recent filing
func LatestFiled(a, b Candidate) int {
	return strings.Compare(a.Filed, b.Filed)
}

// LatestEnd prefers the later period end
func LatestEnd(a, b Candidate) int {
	return strings.Compare(a.End, b.End)
}

// EarliestStart prefers the earlier period start, i.e. the longer span.
// A missing start sorts as earliest.
func EarliestStart(a, b Candidate) int {
	return strings.Compare(b.Start, a.Start)
}

// QuarterlyForm prefers a 10-Q over any annual form
func QuarterlyForm(a, b Candidate) int {
	aq := a.Form == contracts.FormQuarterly
	bq := b.Form == contracts.FormQuarterly
	switch {
	case aq && !bq:
		return 1
	case bq && !aq:
		return -1
	}
	return 0
}

// HigherPriority prefers the tag listed earlier in its chain
func HigherPriority(a, b Candidate) int {
	switch {
	case a.Rank < b.Rank:
		return 1
	case a.Rank > b.Rank:
		return -1
	}
	return 0
}

// ByEnd keys candidates by period end
func ByEnd(c Candidate) string {
	return c.End
}

// ByEndAndPeriod keys candidates by period end and fiscal-period label
func ByEndAndPeriod(c Candidate) string {
	return c.End + "|" + c.FP
}

// ByPeriod keys candidates by fiscal-period label
func ByPeriod(c Candidate) string {
	return c.FP
}
