// Package app wires the report service to its Postgres catalog.
package app

import (
	"context"
	"fmt"

	"stockreport/internal/domain/reports"
	"stockreport/internal/infrastructure/config"
	"stockreport/internal/infrastructure/storage/postgres"
	"stockreport/internal/infrastructure/storage/postgres/report_repo"
	"stockreport/pkg/logger"
)

// App holds the long-lived components shared by the server and the CLI.
type App struct {
	Pool    *postgres.Pool
	Tx      *postgres.TxManager
	Repo    *report_repo.ReportRepo
	Reports *reports.Service
}

// New connects to the database and builds the report service.
// appName tags the database connections.
func New(ctx context.Context, cfg *config.Config, appName string) (*App, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, cfg.Database.PoolConfig(appName))
	if err != nil {
		return nil, err
	}

	txm := postgres.NewTxManager(pool).WithStatementTimeout(cfg.Database.StatementTimeout)

	repo, err := report_repo.NewReportRepo(txm, cfg.Catalog.TablePrefix)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("report repository: %w", err)
	}

	opts := []reports.Option{reports.WithOrderStatuses(cfg.Catalog.OrderStatuses)}
	if cfg.Catalog.SnapshotReads {
		opts = append(opts, reports.WithSnapshotReads(txm))
	}

	logger.Info(ctx, "report service ready",
		"table_prefix", cfg.Catalog.TablePrefix,
		"order_statuses", cfg.Catalog.OrderStatuses,
		"snapshot_reads", cfg.Catalog.SnapshotReads,
	)

	return &App{
		Pool:    pool,
		Tx:      txm,
		Repo:    repo,
		Reports: reports.NewService(repo, opts...),
	}, nil
}

// Close releases database connections.
func (a *App) Close() {
	a.Pool.Close()
}
