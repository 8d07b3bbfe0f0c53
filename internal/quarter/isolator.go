package quarter

import (
	"sort"
	"time"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/internal/extract"
	"github.com/wonny/fundscope/pkg/logger"
)

// MinAnnualSpanDays is the shortest start-to-end span accepted for an annual
// anchor. Annual reports re-publish comparative quarters under the FY label;
// those span roughly 90 days.
const MinAnnualSpanDays = 270

const dateLayout = "2006-01-02"

// Isolator converts cumulative year-to-date disclosures into single-quarter
// values.
//
// Fiscal years are the windows (previous anchor end, anchor end] between
// consecutive annual anchors, so years that straddle a calendar boundary stay
// intact. Within a window:
//
//	Q1 = Q1
//	Q2 = Q2_ytd - Q1        (Q2_ytd alone without Q1)
//	Q3 = Q3_ytd - Q2_ytd    (Q3_ytd alone without Q2)
//	Q4 = FY - Q3_ytd        (only when Q3 is known)
//
// Quarters after the last anchor form the open fiscal year and follow the
// same chain without Q4.
type Isolator struct {
	logger *logger.Logger
}

// New creates an isolator
func New(log *logger.Logger) *Isolator {
	return &Isolator{logger: logger.OrNop(log).WithModule("quarter")}
}

// duplicates of one (end, fiscal label) pair: quarterly form, then the longer
// span, then the later filing, then the higher-priority tag
var cleanRule = extract.Then(
	extract.QuarterlyForm,
	extract.EarliestStart,
	extract.LatestFiled,
	extract.HigherPriority,
)

// one label inside a closed fiscal year: the later end, then the later filing
var windowRule = extract.Then(extract.LatestEnd, extract.LatestFiled)

// one label inside the open fiscal year: the later filing, then the later end
var openRule = extract.Then(extract.LatestFiled, extract.LatestEnd)

// Isolate returns single-quarter values keyed by quarter end. Without any
// annual anchor the result is empty.
func (iso *Isolator) Isolate(points []extract.Candidate) contracts.QuarterValues {
	out := make(contracts.QuarterValues)

	anchors := AnnualAnchors(points)
	if len(anchors) == 0 {
		return out
	}

	clean := extract.PickBest(points, extract.ByEndAndPeriod, cleanRule)

	prevEnd := ""
	for _, anchor := range anchors {
		window := interimIn(clean, prevEnd, anchor.End)
		byFP := extract.PickBest(window, extract.ByPeriod, windowRule)

		q3 := chain(out, byFP)
		if q3 != nil {
			out[anchor.End] = anchor.Val - q3.Val
		}
		prevEnd = anchor.End
	}

	trailing := interimIn(clean, prevEnd, "")
	chain(out, extract.PickBest(trailing, extract.ByPeriod, openRule))

	iso.logger.WithFields(map[string]interface{}{
		"points":   len(points),
		"anchors":  len(anchors),
		"quarters": len(out),
	}).Debug("Isolated quarters")

	return out
}

// AnnualAnchors returns the genuine annual totals among points, one per
// period end (latest filing wins), ascending by end.
func AnnualAnchors(points []extract.Candidate) []extract.Candidate {
	var annual []extract.Candidate
	for _, p := range points {
		if isAnchor(p.FactPoint) {
			annual = append(annual, p)
		}
	}

	byEnd := extract.PickBest(annual, extract.ByEnd, extract.LatestFiled)
	anchors := make([]extract.Candidate, 0, len(byEnd))
	for _, a := range byEnd {
		anchors = append(anchors, a)
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].End < anchors[j].End })
	return anchors
}

func isAnchor(p contracts.FactPoint) bool {
	if !p.IsAnnualForm() {
		return false
	}
	// some filers label the annual total Q4
	if p.FP != contracts.PeriodFY && p.FP != contracts.PeriodQ4 {
		return false
	}
	if p.Start == "" {
		return true
	}
	days, ok := spanDays(p.Start, p.End)
	return !ok || days >= MinAnnualSpanDays
}

// spanDays returns end - start in days; ok is false when either date is unparseable
func spanDays(start, end string) (float64, bool) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return 0, false
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return 0, false
	}
	return e.Sub(s).Hours() / 24, true
}

// interimIn returns the Q1/Q2/Q3 points ending in (after, upTo]. An empty
// upTo leaves the window open.
func interimIn(clean map[string]extract.Candidate, after, upTo string) []extract.Candidate {
	var out []extract.Candidate
	for _, p := range clean {
		if !isInterim(p.FP) || p.End <= after {
			continue
		}
		if upTo != "" && p.End > upTo {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isInterim(fp string) bool {
	return fp == contracts.PeriodQ1 || fp == contracts.PeriodQ2 || fp == contracts.PeriodQ3
}

// chain writes the Q1..Q3 subtraction chain into out and returns the
// cumulative Q3 point, if any
func chain(out contracts.QuarterValues, byFP map[string]extract.Candidate) *extract.Candidate {
	q1, hasQ1 := byFP[contracts.PeriodQ1]
	q2, hasQ2 := byFP[contracts.PeriodQ2]
	q3, hasQ3 := byFP[contracts.PeriodQ3]

	if hasQ1 {
		out[q1.End] = q1.Val
	}
	if hasQ2 {
		if hasQ1 {
			out[q2.End] = q2.Val - q1.Val
		} else {
			out[q2.End] = q2.Val
		}
	}
	if !hasQ3 {
		return nil
	}
	if hasQ2 {
		out[q3.End] = q3.Val - q2.Val
	} else {
		out[q3.End] = q3.Val
	}
	return &q3
}
