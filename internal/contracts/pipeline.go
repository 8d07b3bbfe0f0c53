package contracts

// Stage names one step of a per-ticker run.
// Every log line and stored run carries one of these.
//
//	resolve -> facts -> annual
//	                 -> quarters -> split -> ttm -> ratios (needs prices)
type Stage string

const (
	StageResolve  Stage = "resolve"
	StageFacts    Stage = "facts"
	StagePrices   Stage = "prices"
	StageAnnual   Stage = "annual"
	StageQuarters Stage = "quarters"
	StageTTM      Stage = "ttm"
	StageRatios   Stage = "ratios"
)

func (s Stage) String() string {
	return string(s)
}

// Description returns a human-readable label
func (s Stage) Description() string {
	switch s {
	case StageResolve:
		return "ticker to filer id"
	case StageFacts:
		return "facts document"
	case StagePrices:
		return "price and split history"
	case StageAnnual:
		return "annual statement series"
	case StageQuarters:
		return "quarterly snapshots"
	case StageTTM:
		return "trailing twelve months"
	case StageRatios:
		return "daily valuation ratios"
	default:
		return "unknown"
	}
}

// AllStages returns stages in execution order
func AllStages() []Stage {
	return []Stage{
		StageResolve,
		StageFacts,
		StagePrices,
		StageAnnual,
		StageQuarters,
		StageTTM,
		StageRatios,
	}
}
