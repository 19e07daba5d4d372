package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockreport/internal/domain/reports"
)

func (r *ReportRepo) salesQuery(ids []int64, byVariation bool, statuses []string, w reports.Window) squirrel.SelectBuilder {
	col := "lookup.product_id"
	if byVariation {
		col = "lookup.variation_id"
	}
	return r.builder.
		Select(col+" AS id", "SUM(lookup.product_qty)::bigint AS total_sales").
		From(r.t.orderLookup+" lookup").
		Join(r.t.orderStats+" stats ON stats.order_id = lookup.order_id").
		Where(squirrel.Eq{col: ids}).
		Where(squirrel.Eq{"stats.status": statuses}).
		Where("stats.date_created BETWEEN ? AND ?", w.From(), w.To()).
		GroupBy(col)
}

// SalesByItem sums sold quantities per product (or variation) id in one query.
func (r *ReportRepo) SalesByItem(ctx context.Context, ids []int64, byVariation bool, statuses []string, w reports.Window) (map[int64]int64, error) {
	out := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := r.salesQuery(ids, byVariation, statuses, w).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sales query: %w", err)
	}

	var rows []struct {
		ID         int64 `db:"id"`
		TotalSales int64 `db:"total_sales"`
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, mapError("sales by item", err)
	}

	for _, row := range rows {
		out[row.ID] = row.TotalSales
	}
	return out, nil
}
