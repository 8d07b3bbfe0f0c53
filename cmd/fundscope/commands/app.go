package commands

import (
	"context"
	"fmt"

	"github.com/wonny/fundscope/internal/external/sec"
	"github.com/wonny/fundscope/internal/external/yahoo"
	"github.com/wonny/fundscope/internal/pipeline"
	"github.com/wonny/fundscope/internal/store"
	"github.com/wonny/fundscope/pkg/config"
	"github.com/wonny/fundscope/pkg/database"
	"github.com/wonny/fundscope/pkg/httputil"
	"github.com/wonny/fundscope/pkg/logger"
	"github.com/wonny/fundscope/pkg/ratelimit"
	"github.com/wonny/fundscope/pkg/redis"
)

// app bundles the wired dependencies shared by every command
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	redis  *redis.Client
	db     *database.DB // nil when DATABASE_URL is empty
	store  *store.ResultRepository
	runner *pipeline.Runner
}

// newApp loads config and wires clients, caches and the pipeline.
// withStore connects the results database when one is configured.
func newApp(withStore bool) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if envOverride != "" {
		cfg.Env = envOverride
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Optional Redis (shared rate budget + L2 caches)
	rc, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	limiter := redis.NewRateLimiter(rc, "fundscope")
	shared := redis.NewCache(rc, "fundscope")

	// 4. Regulator client: one process-wide gate for both SEC hosts
	gate := ratelimit.NewGate(cfg.SEC.MinInterval)
	secHTTP := httputil.New(cfg, log).
		WithGate(gate).
		WithRateLimiter(limiter, redis.SECRateLimit)

	directory := sec.NewDirectory(secHTTP, cfg.SEC.BaseURL, cfg.SEC.DirectoryTTL, log)
	facts := sec.NewFactStore(secHTTP, cfg.SEC.DataURL, cfg.SEC.FactsTTL, log).
		WithSharedCache(shared)

	// 5. Price collaborator
	priceHTTP := httputil.New(cfg, log).
		WithUserAgent(yahoo.BrowserUserAgent).
		WithRateLimiter(limiter, redis.YahooRateLimit)
	prices := yahoo.NewClient(priceHTTP, cfg.Yahoo, log).WithSharedCache(shared)

	// 6. Pipeline
	runner := pipeline.NewRunner(directory, facts, prices, cfg.Engine, log)

	a := &app{cfg: cfg, log: log, redis: rc, runner: runner}

	// 7. Optional results store
	if withStore && cfg.StoreEnabled() {
		db, err := database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db

		if err := db.Migrate(context.Background()); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}

		a.store = store.NewResultRepository(db.Pool)
		runner.WithStore(a.store)
		log.Info("Results store enabled")
	}

	return a, nil
}

// Close releases the database pool and Redis connection
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
