// Package report_repo provides the PostgreSQL implementation of the product
// report catalog and sales ledger.
package report_repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"stockreport/internal/core/apperror"
	"stockreport/internal/domain/reports"
	"stockreport/internal/infrastructure/storage/postgres"
)

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// tables holds the prefixed names of every table the report reads.
type tables struct {
	posts             string
	postmeta          string
	terms             string
	termTaxonomy      string
	termRelationships string
	orderLookup       string
	orderStats        string
}

func newTables(prefix string) tables {
	return tables{
		posts:             prefix + "posts",
		postmeta:          prefix + "postmeta",
		terms:             prefix + "terms",
		termTaxonomy:      prefix + "term_taxonomy",
		termRelationships: prefix + "term_relationships",
		orderLookup:       prefix + "wc_order_product_lookup",
		orderStats:        prefix + "wc_order_stats",
	}
}

func (t tables) all() []string {
	return []string{t.posts, t.postmeta, t.terms, t.termTaxonomy, t.termRelationships, t.orderLookup, t.orderStats}
}

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	t       tables
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository reading tables named prefix+"posts" etc.
func NewReportRepo(txm *postgres.TxManager, prefix string) (*ReportRepo, error) {
	if !tablePrefixPattern.MatchString(prefix) {
		return nil, apperror.NewValidation("table prefix may only contain letters, digits and underscores").
			WithDetail("prefix", prefix)
	}
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		t:       newTables(prefix),
	}, nil
}

func (r *ReportRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Available reports whether every catalog and ledger table exists in the current schema.
func (r *ReportRepo) Available(ctx context.Context) (bool, error) {
	required := r.t.all()
	sql, args, err := r.builder.
		Select("COUNT(DISTINCT table_name)").
		From("information_schema.tables").
		Where("table_schema = current_schema()").
		Where(squirrel.Eq{"table_name": required}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build availability query: %w", err)
	}

	var found int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, mapError("check availability", err)
	}
	return found == len(required), nil
}

// Postgres error codes that mean the catalog does not have the expected shape.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// mapError converts driver failures into application errors.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable, pgUndefinedColumn:
			return apperror.NewUnavailable("catalog").
				WithDetail("operation", op).
				WithCause(err)
		}
		return apperror.NewDatabase(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
