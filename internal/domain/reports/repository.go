package reports

import (
	"context"
)

// Catalog reads report rows from the product catalog joined with the sales ledger.
type Catalog interface {
	// Available reports whether the catalog and ledger are installed.
	Available(ctx context.Context) (bool, error)

	// CountProducts returns the number of rows matching q, ignoring Limit/Offset.
	CountProducts(ctx context.Context, q ProductQuery) (int, error)

	// ListProducts returns the rows matching q in q's order, honouring Limit/Offset.
	ListProducts(ctx context.Context, q ProductQuery) ([]CatalogRow, error)
}

// ItemLookup resolves live catalog detail for one item.
type ItemLookup interface {
	// GetItem returns apperror NotFound when id no longer resolves to a live item.
	GetItem(ctx context.Context, id int64) (*Item, error)
}

// CategoryTree exposes the product category hierarchy.
type CategoryTree interface {
	// ChildCategories returns direct children of parentID, empty categories included.
	ChildCategories(ctx context.Context, parentID int64) ([]int64, error)
}

// Ledger aggregates order-line quantities.
type Ledger interface {
	// SalesByItem sums quantities per id for orders with a status in statuses
	// created inside w. Ids without sales are absent from the result.
	SalesByItem(ctx context.Context, ids []int64, byVariation bool, statuses []string, w Window) (map[int64]int64, error)
}

// Repository is everything the report service reads.
type Repository interface {
	Catalog
	ItemLookup
	CategoryTree
	Ledger
}
