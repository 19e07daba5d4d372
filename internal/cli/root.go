// Package cli provides the Cobra-based stockreport command line.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stockreport/internal/app"
	"stockreport/internal/infrastructure/config"
	"stockreport/internal/infrastructure/http/v1/handlers"
	"stockreport/pkg/logger"
)

// SalesTotals sums sold quantities per product or variation.
type SalesTotals interface {
	BulkSales(ctx context.Context, ids []int64, isVariation bool, start, end time.Time) (map[int64]int64, error)
}

// CategoryExpander resolves categories to themselves plus all descendants.
type CategoryExpander interface {
	Expand(ctx context.Context, ids []int64) ([]int64, error)
}

// Backend is what the commands need from a connected catalog.
type Backend struct {
	Reports    handlers.ProductReporter
	Catalog    handlers.CatalogProbe
	Sales      SalesTotals
	Categories CategoryExpander
	Close      func()
}

// Opener connects to the catalog described by cfg.
type Opener func(ctx context.Context, cfg *config.Config) (*Backend, error)

// openPostgres is the production Opener.
func openPostgres(ctx context.Context, cfg *config.Config) (*Backend, error) {
	a, err := app.New(ctx, cfg, cfg.App.Name+"-cli")
	if err != nil {
		return nil, err
	}
	return &Backend{
		Reports:    a.Reports,
		Catalog:    a.Repo,
		Sales:      a.Reports.Sales(),
		Categories: a.Reports.Categories(),
		Close:      a.Close,
	}, nil
}

type rootOptions struct {
	configFile string
	logLevel   string

	cfg  *config.Config
	open Opener
}

// NewRootCommand builds the command tree. open may be nil to use Postgres.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = openPostgres
	}
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:           "stockreport",
		Short:         "Product sales and stock reports over a store catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			opts.cfg = cfg

			lc := cfg.Log.LoggerConfig()
			lc.OutputPaths = []string{"stderr"}
			log, err := logger.New(lc)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cmd.SetContext(logger.WithLogger(cmd.Context(), log))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newProductsCommand(opts))
	root.AddCommand(newSalesCommand(opts))
	root.AddCommand(newCategoriesCommand(opts))
	root.AddCommand(newCheckCommand(opts))

	return root
}

// connect opens the backend. Callers must call the returned release func.
func (o *rootOptions) connect(ctx context.Context) (*Backend, func(), error) {
	b, err := o.open(ctx, o.cfg)
	if err != nil {
		return nil, nil, err
	}
	return b, func() {
		if b.Close != nil {
			b.Close()
		}
	}, nil
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(nil).ExecuteContext(ctx)
}
