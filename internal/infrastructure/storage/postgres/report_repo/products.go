package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"stockreport/internal/core/apperror"
	"stockreport/internal/core/types"
	"stockreport/internal/domain/filter"
	"stockreport/internal/domain/reports"
)

// numericPattern matches meta values that cast cleanly to numeric.
// No '?' quantifier: squirrel would read it as a placeholder.
const numericPattern = `'^-{0,1}[0-9]*\.{0,1}[0-9]+$'`

// Coerced meta values. Non-numeric text becomes NULL instead of failing the cast.
var (
	stockExpr = `CASE WHEN btrim(pm.stock) ~ ` + numericPattern +
		` THEN LEAST(GREATEST(trunc(btrim(pm.stock)::numeric), -2147483648), 2147483647)::bigint END`
	priceExpr = `CASE WHEN btrim(pm.price) ~ ` + numericPattern + ` THEN btrim(pm.price)::numeric END`
)

const salesExpr = "COALESCE(sales.total_sales, 0)"

// metaPivot flattens the meta rows the report needs into one row per post.
func (r *ReportRepo) metaPivot() string {
	return `(SELECT post_id,
	MAX(meta_value) FILTER (WHERE meta_key = '_sku') AS sku,
	MAX(meta_value) FILTER (WHERE meta_key = '_stock') AS stock,
	MAX(meta_value) FILTER (WHERE meta_key = '_stock_status') AS stock_status,
	MAX(meta_value) FILTER (WHERE meta_key = '_regular_price') AS regular_price,
	MAX(meta_value) FILTER (WHERE meta_key = '_sale_price') AS sale_price,
	MAX(meta_value) FILTER (WHERE meta_key = '_price') AS price,
	MAX(meta_value) FILTER (WHERE meta_key = '_product_type') AS product_type
	FROM ` + r.t.postmeta + `
	WHERE meta_key IN ('_sku', '_stock', '_stock_status', '_regular_price', '_sale_price', '_price', '_product_type')
	GROUP BY post_id) pm ON pm.post_id = p.id`
}

// salesSubquery sums order-line quantities per product, and per variation when
// variations are report rows. Placeholders are left as '?' for the outer builder.
func (r *ReportRepo) salesSubquery(q reports.ProductQuery) (string, []any, error) {
	part := func(col string) squirrel.SelectBuilder {
		return squirrel.
			Select(col+" AS id", "SUM(lookup.product_qty) AS total_sales").
			From(r.t.orderLookup+" lookup").
			Join(r.t.orderStats+" stats ON stats.order_id = lookup.order_id").
			Where(squirrel.Eq{"stats.status": q.OrderStatuses}).
			Where("stats.date_created BETWEEN ? AND ?", q.Window.From(), q.Window.To()).
			GroupBy(col)
	}

	sql, args, err := part("lookup.product_id").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build product sales: %w", err)
	}
	if !q.IncludeVariations {
		return sql, args, nil
	}

	vsql, vargs, err := part("lookup.variation_id").Where("lookup.variation_id > 0").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build variation sales: %w", err)
	}
	return sql + " UNION ALL " + vsql, append(args, vargs...), nil
}

// productsQuery builds the filtered report query without ordering or pagination.
func (r *ReportRepo) productsQuery(q reports.ProductQuery) (squirrel.SelectBuilder, error) {
	salesSQL, salesArgs, err := r.salesSubquery(q)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}

	postTypes := []string{reports.PostTypeProduct}
	if q.IncludeVariations {
		postTypes = append(postTypes, reports.PostTypeVariation)
	}

	sb := r.builder.
		Select(
			"p.id AS id",
			"p.post_type AS post_type",
			"p.post_title AS name",
			"p.post_status AS status",
			"COALESCE(pm.sku, '') AS sku",
			stockExpr+" AS stock_quantity",
			"COALESCE(pm.stock_status, '') AS stock_status",
			"pm.regular_price AS regular_price",
			"pm.sale_price AS sale_price",
			"COALESCE(pm.product_type, '') AS stored_type",
			salesExpr+"::bigint AS total_sales",
		).
		From(r.t.posts+" p").
		LeftJoin(r.metaPivot()).
		LeftJoin("("+salesSQL+") sales ON sales.id = p.id", salesArgs...).
		Where(squirrel.Eq{"p.post_type": postTypes}).
		Where(squirrel.Eq{"p.post_status": "publish"})

	return r.applyFilters(sb, q.Filters)
}

// applyFilters adds one parameterized predicate per filter item.
// Only known fields are accepted; values never reach the query text.
func (r *ReportRepo) applyFilters(sb squirrel.SelectBuilder, items []filter.Item) (squirrel.SelectBuilder, error) {
	for _, item := range items {
		switch item.Field {
		case filter.Category, filter.Tag:
			ids, ok := item.Value.([]int64)
			if !ok || item.Operator != filter.InList {
				return sb, invalidFilter(item)
			}
			taxonomy := "product_cat"
			if item.Field == filter.Tag {
				taxonomy = "product_tag"
			}
			sub, args, err := r.termObjects(taxonomy, ids)
			if err != nil {
				return sb, err
			}
			sb = sb.Where(squirrel.Expr("p.id IN ("+sub+")", args...))

		case filter.StockStatus:
			values, ok := item.Value.([]string)
			if !ok || item.Operator != filter.InList {
				return sb, invalidFilter(item)
			}
			sb = sb.Where(squirrel.Eq{"pm.stock_status": values})

		case filter.Price:
			amount, ok := item.Value.(decimal.Decimal)
			if !ok {
				return sb, invalidFilter(item)
			}
			switch item.Operator {
			case filter.GreaterOrEqual:
				sb = sb.Where(squirrel.Expr(priceExpr+" >= ?::numeric", amount.String()))
			case filter.LessOrEqual:
				sb = sb.Where(squirrel.Expr(priceExpr+" <= ?::numeric", amount.String()))
			default:
				return sb, invalidFilter(item)
			}

		case filter.TotalSales:
			n, ok := item.Value.(int64)
			if !ok {
				return sb, invalidFilter(item)
			}
			switch item.Operator {
			case filter.GreaterOrEqual:
				sb = sb.Where(squirrel.GtOrEq{salesExpr: n})
			case filter.LessOrEqual:
				sb = sb.Where(squirrel.LtOrEq{salesExpr: n})
			default:
				return sb, invalidFilter(item)
			}

		default:
			return sb, invalidFilter(item)
		}
	}
	return sb, nil
}

// termObjects selects the ids of posts linked to any of termIDs in taxonomy.
func (r *ReportRepo) termObjects(taxonomy string, termIDs []int64) (string, []any, error) {
	sql, args, err := squirrel.
		Select("tr.object_id").
		From(r.t.termRelationships+" tr").
		Join(r.t.termTaxonomy+" tt ON tt.term_taxonomy_id = tr.term_taxonomy_id").
		Where(squirrel.Eq{"tt.taxonomy": taxonomy}).
		Where(squirrel.Eq{"tt.term_id": termIDs}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build %s filter: %w", taxonomy, err)
	}
	return sql, args, nil
}

func invalidFilter(item filter.Item) error {
	return apperror.NewValidation("unsupported filter").
		WithDetail("field", string(item.Field)).
		WithDetail("operator", string(item.Operator))
}

// orderBy returns the ORDER BY terms. Name and id always close the list so
// pages never overlap.
func orderBy(field reports.SortField, dir reports.SortDirection) []string {
	d := "DESC"
	if dir == reports.Asc {
		d = "ASC"
	}
	switch field {
	case reports.SortByTotalSales:
		return []string{"total_sales " + d, "p.post_title ASC", "p.id ASC"}
	case reports.SortByStockQuantity:
		return []string{"COALESCE(" + stockExpr + ", 0) " + d, "p.post_title ASC", "p.id ASC"}
	default:
		return []string{"p.post_title ASC", "p.id ASC"}
	}
}

func (r *ReportRepo) countQuery(q reports.ProductQuery) (squirrel.SelectBuilder, error) {
	sb, err := r.productsQuery(q)
	if err != nil {
		return sb, err
	}
	return r.builder.Select("COUNT(*)").FromSelect(sb, "sub"), nil
}

func (r *ReportRepo) listQuery(q reports.ProductQuery) (squirrel.SelectBuilder, error) {
	sb, err := r.productsQuery(q)
	if err != nil {
		return sb, err
	}
	sb = sb.OrderBy(orderBy(q.SortBy, q.SortOrder)...)
	if q.Limit > 0 {
		sb = sb.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		sb = sb.Offset(uint64(q.Offset))
	}
	return sb, nil
}

// CountProducts returns the number of report rows matching q.
func (r *ReportRepo) CountProducts(ctx context.Context, q reports.ProductQuery) (int, error) {
	sb, err := r.countQuery(q)
	if err != nil {
		return 0, err
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, mapError("count products", err)
	}
	return total, nil
}

// catalogRow is the scan target for report rows.
type catalogRow struct {
	ID            int64   `db:"id"`
	PostType      string  `db:"post_type"`
	Name          string  `db:"name"`
	Status        string  `db:"status"`
	SKU           string  `db:"sku"`
	StockQuantity *int64  `db:"stock_quantity"`
	StockStatus   string  `db:"stock_status"`
	RegularPrice  *string `db:"regular_price"`
	SalePrice     *string `db:"sale_price"`
	StoredType    string  `db:"stored_type"`
	TotalSales    int64   `db:"total_sales"`
}

func (c catalogRow) toDomain() reports.CatalogRow {
	return reports.CatalogRow{
		ID:            c.ID,
		PostType:      c.PostType,
		Name:          c.Name,
		Status:        c.Status,
		SKU:           c.SKU,
		StockQuantity: types.StockQuantityFromInt(c.StockQuantity),
		StockStatus:   c.StockStatus,
		RegularPrice:  types.ParseNullMoney(c.RegularPrice),
		SalePrice:     types.ParseNullMoney(c.SalePrice),
		StoredType:    c.StoredType,
		TotalSales:    c.TotalSales,
	}
}

// ListProducts returns one page of report rows in the requested order.
func (r *ReportRepo) ListProducts(ctx context.Context, q reports.ProductQuery) ([]reports.CatalogRow, error) {
	sb, err := r.listQuery(q)
	if err != nil {
		return nil, err
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []catalogRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, mapError("list products", err)
	}

	out := make([]reports.CatalogRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
