package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hmesh/presale-dashboard/internal/chain"
	"github.com/hmesh/presale-dashboard/internal/config"
	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/domain/promoter"
	"github.com/hmesh/presale-dashboard/internal/domain/round"
	"github.com/hmesh/presale-dashboard/internal/domain/submission"
	"github.com/hmesh/presale-dashboard/internal/ledger"
	"github.com/hmesh/presale-dashboard/internal/mcp"
	"github.com/hmesh/presale-dashboard/internal/metrics"
	"github.com/hmesh/presale-dashboard/internal/redisledger"
	"github.com/hmesh/presale-dashboard/internal/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	db       *sqlite.DB
	redis    *redis.Client
	mirror   ledger.Mirror
	reader   *ledger.CachedReader
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	networks *chain.Registry

	rounds      *round.Service
	claims      *claim.Service
	promoters   *promoter.Service
	submissions *submission.Service
	apiKeys     *sqlite.APIKeyRepository
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if err := ensureDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	a.db = db
	if err := db.RunMigrations(); err != nil {
		a.Close()
		return nil, err
	}

	switch strings.ToLower(cfg.Ledger.Backend) {
	case "", "sqlite":
		a.mirror = sqlite.NewLedgerRepository(db)
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		a.mirror = redisledger.New(a.redis, cfg.Redis.Prefix)
	default:
		a.Close()
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.metrics = metrics.NewMetrics(cfg.Metrics.Namespace, a.registry)
	}

	a.reader = ledger.NewCachedReader(a.mirror, cfg.Ledger.CacheTTL, a.metrics)
	a.networks = chain.NewRegistry(cfg.Chains)

	a.rounds = round.NewService(a.reader, logger)
	a.claims = claim.NewService(a.reader, a.metrics, logger)
	a.promoters = promoter.NewService(a.reader, logger)
	a.submissions = submission.NewService(
		sqlite.NewSubmissionRepository(db),
		a.reader,
		a.networks,
		a.claims,
		a.metrics,
		submission.Options{
			DefaultSlippage: cfg.Presale.DefaultSlippage,
			MaxSlippage:     cfg.Presale.MaxSlippage,
		},
		logger,
	)
	a.apiKeys = sqlite.NewAPIKeyRepository(db)
	return a, nil
}

// handler builds the request dispatcher shared by MCP and JSON-RPC.
func (a *app) handler() *mcp.Handler {
	return mcp.NewHandler(mcp.Services{
		Rounds:      a.rounds,
		Claims:      a.claims,
		Promoters:   a.promoters,
		Submissions: a.submissions,
		Networks:    a.networks,
	}, mcp.HandlerOptions{
		DefaultChainID: a.cfg.Presale.DefaultChainID,
		Recorder:       a.metrics,
	})
}

// importSnapshot loads a snapshot file into the mirror and drops cached reads.
func (a *app) importSnapshot(ctx context.Context, path string) ([]ledger.ChainState, error) {
	states, err := ledger.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	if err := ledger.Import(ctx, a.mirror, states, a.logger); err != nil {
		return nil, err
	}
	a.reader.Invalidate()
	return states, nil
}

func (a *app) Close() {
	if a.reader != nil {
		a.reader.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
}
