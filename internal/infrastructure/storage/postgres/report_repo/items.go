package report_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockreport/internal/core/apperror"
	"stockreport/internal/core/types"
	"stockreport/internal/domain/reports"
)

// Statuses of variations that belong to a variable product's child list.
var childVariationStatuses = []string{"publish", "private"}

// Post statuses that no longer resolve to a live item.
var deadPostStatuses = []string{"trash", "auto-draft"}

const attributePrefix = "attribute_"

type itemRow struct {
	ID            int64   `db:"id"`
	ParentID      int64   `db:"parent_id"`
	PostType      string  `db:"post_type"`
	Name          string  `db:"name"`
	Status        string  `db:"status"`
	SKU           string  `db:"sku"`
	StockQuantity *int64  `db:"stock_quantity"`
	StockStatus   string  `db:"stock_status"`
	RegularPrice  *string `db:"regular_price"`
	SalePrice     *string `db:"sale_price"`
	TypeTerm      string  `db:"type_term"`
}

// itemQuery selects one live product or variation. The product type comes from
// the product_type taxonomy, falling back to the stored meta value.
func (r *ReportRepo) itemQuery(id int64) squirrel.SelectBuilder {
	typeTerm := `(SELECT t.name FROM ` + r.t.termRelationships + ` tr
	JOIN ` + r.t.termTaxonomy + ` tt ON tt.term_taxonomy_id = tr.term_taxonomy_id
	JOIN ` + r.t.terms + ` t ON t.term_id = tt.term_id
	WHERE tr.object_id = p.id AND tt.taxonomy = 'product_type'
	ORDER BY t.term_id LIMIT 1)`

	return r.builder.
		Select(
			"p.id AS id",
			"p.post_parent AS parent_id",
			"p.post_type AS post_type",
			"p.post_title AS name",
			"p.post_status AS status",
			"COALESCE(pm.sku, '') AS sku",
			stockExpr+" AS stock_quantity",
			"COALESCE(pm.stock_status, '') AS stock_status",
			"pm.regular_price AS regular_price",
			"pm.sale_price AS sale_price",
			"COALESCE("+typeTerm+", pm.product_type, '') AS type_term",
		).
		From(r.t.posts+" p").
		LeftJoin(r.metaPivot()).
		Where(squirrel.Eq{"p.id": id}).
		Where(squirrel.Eq{"p.post_type": []string{reports.PostTypeProduct, reports.PostTypeVariation}}).
		Where(squirrel.NotEq{"p.post_status": deadPostStatuses}).
		Limit(1)
}

func (r *ReportRepo) childrenQuery(parentID int64) squirrel.SelectBuilder {
	return r.builder.
		Select("id").
		From(r.t.posts).
		Where(squirrel.Eq{"post_parent": parentID}).
		Where(squirrel.Eq{"post_type": reports.PostTypeVariation}).
		Where(squirrel.Eq{"post_status": childVariationStatuses}).
		OrderBy("menu_order", "id")
}

func (r *ReportRepo) attributesQuery(id int64) squirrel.SelectBuilder {
	return r.builder.
		Select("meta_key", "meta_value").
		From(r.t.postmeta).
		Where(squirrel.Eq{"post_id": id}).
		Where(squirrel.Like{"meta_key": `attribute\_%`}).
		OrderBy("meta_key")
}

// GetItem returns the live detail of a product or variation.
func (r *ReportRepo) GetItem(ctx context.Context, id int64) (*reports.Item, error) {
	sql, args, err := r.itemQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}

	querier := r.querier(ctx)

	var row itemRow
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", id)
		}
		return nil, mapError("get item", err)
	}

	item := &reports.Item{
		ID:            row.ID,
		ParentID:      row.ParentID,
		Type:          itemType(row),
		Name:          row.Name,
		SKU:           row.SKU,
		StockQuantity: types.StockQuantityFromInt(row.StockQuantity),
		StockStatus:   row.StockStatus,
		RegularPrice:  types.ParseNullMoney(row.RegularPrice),
		SalePrice:     types.ParseNullMoney(row.SalePrice),
		Status:        row.Status,
	}

	switch item.Type {
	case reports.TypeVariable:
		sql, args, err := r.childrenQuery(id).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build children query: %w", err)
		}
		if err := pgxscan.Select(ctx, querier, &item.Children, sql, args...); err != nil {
			return nil, mapError("list variations", err)
		}

	case reports.TypeVariation:
		sql, args, err := r.attributesQuery(id).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build attributes query: %w", err)
		}
		var metas []struct {
			Key   string  `db:"meta_key"`
			Value *string `db:"meta_value"`
		}
		if err := pgxscan.Select(ctx, querier, &metas, sql, args...); err != nil {
			return nil, mapError("list attributes", err)
		}
		item.Attributes = make(map[string]string, len(metas))
		for _, m := range metas {
			var v string
			if m.Value != nil {
				v = *m.Value
			}
			item.Attributes[strings.TrimPrefix(m.Key, attributePrefix)] = v
		}
	}

	return item, nil
}

func itemType(row itemRow) string {
	if row.PostType == reports.PostTypeVariation {
		return reports.TypeVariation
	}
	if t := strings.TrimSpace(row.TypeTerm); t != "" {
		return t
	}
	return reports.TypeSimple
}

// ChildCategories returns the direct children of a product category.
func (r *ReportRepo) ChildCategories(ctx context.Context, parentID int64) ([]int64, error) {
	sql, args, err := r.builder.
		Select("term_id").
		From(r.t.termTaxonomy).
		Where(squirrel.Eq{"taxonomy": "product_cat"}).
		Where(squirrel.Eq{"parent": parentID}).
		OrderBy("term_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build child categories query: %w", err)
	}

	var ids []int64
	if err := pgxscan.Select(ctx, r.querier(ctx), &ids, sql, args...); err != nil {
		return nil, mapError("child categories", err)
	}
	return ids, nil
}
