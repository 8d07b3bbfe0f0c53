package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/fundscope/internal/contracts"
)

// ResultRepository implements contracts.ResultRepository on Postgres.
// One row per (ticker, kind); every save replaces the previous run.
// ⭐ SSOT: computed series are persisted here only
type ResultRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewResultRepository creates a new result repository
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool, now: time.Now}
}

var _ contracts.ResultRepository = (*ResultRepository)(nil)

// SaveAnnual stores the annual series for ticker
func (r *ResultRepository) SaveAnnual(ctx context.Context, ticker, runID string, records []contracts.AnnualRecord) error {
	return r.save(ctx, ticker, contracts.ResultAnnual, runID, records)
}

// SaveRatios stores the daily ratio series for ticker
func (r *ResultRepository) SaveRatios(ctx context.Context, ticker, runID string, points []contracts.DynamicRatioPoint) error {
	return r.save(ctx, ticker, contracts.ResultRatios, runID, points)
}

// LoadAnnual returns the stored annual series when younger than maxAge
func (r *ResultRepository) LoadAnnual(ctx context.Context, ticker string, maxAge time.Duration) ([]contracts.AnnualRecord, bool, error) {
	var records []contracts.AnnualRecord
	ok, err := r.load(ctx, ticker, contracts.ResultAnnual, maxAge, &records)
	return records, ok, err
}

// LoadRatios returns the stored ratio series when younger than maxAge
func (r *ResultRepository) LoadRatios(ctx context.Context, ticker string, maxAge time.Duration) ([]contracts.DynamicRatioPoint, bool, error) {
	var points []contracts.DynamicRatioPoint
	ok, err := r.load(ctx, ticker, contracts.ResultRatios, maxAge, &points)
	return points, ok, err
}

// Delete removes every stored series for ticker
func (r *ResultRepository) Delete(ctx context.Context, ticker string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM fundamentals_results WHERE ticker = $1`, ticker)
	return err
}

// Purge removes rows computed before cutoff and returns how many went
func (r *ResultRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fundamentals_results WHERE computed_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ResultRepository) save(ctx context.Context, ticker string, kind contracts.ResultKind, runID string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s series: %w", kind, err)
	}

	query := `
		INSERT INTO fundamentals_results (ticker, kind, run_id, payload, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticker, kind) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			payload = EXCLUDED.payload,
			computed_at = EXCLUDED.computed_at
	`

	if _, err := r.pool.Exec(ctx, query, ticker, string(kind), runID, payload, r.now()); err != nil {
		return fmt.Errorf("save %s series for %s: %w", kind, ticker, err)
	}
	return nil
}

// load decodes the stored payload into dest. maxAge <= 0 accepts any age.
func (r *ResultRepository) load(ctx context.Context, ticker string, kind contracts.ResultKind, maxAge time.Duration, dest interface{}) (bool, error) {
	query := `
		SELECT payload, computed_at
		FROM fundamentals_results
		WHERE ticker = $1 AND kind = $2
	`

	var (
		payload    []byte
		computedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, ticker, string(kind)).Scan(&payload, &computedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s series for %s: %w", kind, ticker, err)
	}

	if maxAge > 0 && r.now().Sub(computedAt) > maxAge {
		return false, nil
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s series for %s: %w", kind, ticker, err)
	}
	return true, nil
}
