package extract

import (
	"errors"
	"math"

	"github.com/wonny/fundscope/internal/contracts"
	"github.com/wonny/fundscope/pkg/logger"
)

// Extractor reads concept series out of one facts document.
// Absent or malformed concepts yield empty results, never errors.
type Extractor struct {
	doc    *contracts.FactDocument
	logger *logger.Logger
}

// New creates an extractor over doc
func New(doc *contracts.FactDocument, log *logger.Logger) *Extractor {
	return &Extractor{
		doc:    doc,
		logger: logger.OrNop(log).WithModule("extract"),
	}
}

// Annual returns the FY values of tag disclosed on a 10-K or 10-K/A, one per
// period end, keeping the most recently filed restatement.
func (e *Extractor) Annual(t Tag) contracts.ConceptSeries {
	cands := e.candidates(Single(t), isAnnualTotal)
	return toSeries(PickBest(cands, ByEnd, LatestFiled))
}

// AnnualChain merges Annual over a synonym chain
func (e *Extractor) AnnualChain(chain Chain) contracts.ConceptSeries {
	return MergeByPriority(chain, e.Annual)
}

// QuarterlyRaw returns every periodic-form point of every tag in chain with no
// deduplication. Period conflicts are settled by the quarter isolator.
func (e *Extractor) QuarterlyRaw(chain Chain) []Candidate {
	return e.candidates(chain, isPeriodic)
}

// Balance returns point-in-time values of tag by period end, keeping the most
// recently filed value per date.
func (e *Extractor) Balance(t Tag) contracts.DateSeries {
	return e.BalanceFiled(t).Values()
}

// BalanceChain merges Balance over a synonym chain
func (e *Extractor) BalanceChain(chain Chain) contracts.DateSeries {
	return MergeByPriority(chain, e.Balance)
}

// BalanceFiled is Balance keeping each value's filing date
func (e *Extractor) BalanceFiled(t Tag) contracts.FiledSeries {
	best := PickBest(e.candidates(Single(t), isPeriodic), ByEnd, LatestFiled)
	out := make(contracts.FiledSeries, len(best))
	for end, c := range best {
		out[end] = contracts.FiledValue{Val: c.Val, Filed: c.Filed}
	}
	return out
}

// BalanceFiledChain merges BalanceFiled over a synonym chain
func (e *Extractor) BalanceFiledChain(chain Chain) contracts.FiledSeries {
	return MergeByPriority(chain, e.BalanceFiled)
}

func (e *Extractor) candidates(chain Chain, keep func(contracts.FactPoint) bool) []Candidate {
	var out []Candidate
	for rank, tag := range chain {
		for _, p := range e.points(tag) {
			if !keep(p) {
				continue
			}
			out = append(out, Candidate{FactPoint: p, Rank: rank, Tag: tag})
		}
	}
	return out
}

func (e *Extractor) points(t Tag) []contracts.FactPoint {
	c, err := e.doc.Concept(t.Taxonomy, t.Name)
	if err != nil {
		if errors.Is(err, contracts.ErrMalformed) {
			e.logger.WithField("tag", t.String()).WithError(err).Debug("Skipping malformed concept")
		}
		return nil
	}
	return c.Points()
}

func isAnnualTotal(p contracts.FactPoint) bool {
	return p.FP == contracts.PeriodFY && p.IsAnnualForm() && finite(p.Val)
}

func isPeriodic(p contracts.FactPoint) bool {
	return p.IsPeriodicForm() && finite(p.Val)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toSeries(best map[string]Candidate) contracts.DateSeries {
	out := make(contracts.DateSeries, len(best))
	for end, c := range best {
		out[end] = c.Val
	}
	return out
}
