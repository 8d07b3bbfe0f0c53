package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: repository interfaces are declared here only

// ResultKind names one of the two outbound series
type ResultKind string

const (
	ResultAnnual ResultKind = "annual"
	ResultRatios ResultKind = "ratios"
)

// ResultRepository persists computed series keyed by ticker.
// Load returns found=false when nothing was stored or the stored copy is
// older than maxAge.
type ResultRepository interface {
	SaveAnnual(ctx context.Context, ticker, runID string, records []AnnualRecord) error
	SaveRatios(ctx context.Context, ticker, runID string, points []DynamicRatioPoint) error
	LoadAnnual(ctx context.Context, ticker string, maxAge time.Duration) ([]AnnualRecord, bool, error)
	LoadRatios(ctx context.Context, ticker string, maxAge time.Duration) ([]DynamicRatioPoint, bool, error)
}
