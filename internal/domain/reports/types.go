// Package reports provides the product sales and stock report.
package reports

import (
	"strings"

	"stockreport/internal/core/types"
	"stockreport/internal/domain/filter"
)

// Pagination defaults.
const (
	DefaultPage    = 1
	DefaultPerPage = 50
)

// Catalog item types.
const (
	TypeSimple    = "simple"
	TypeVariable  = "variable"
	TypeVariation = "variation"
)

// Catalog post types.
const (
	PostTypeProduct   = "product"
	PostTypeVariation = "product_variation"
)

// CountedOrderStatuses are the order statuses whose lines count as sales.
var CountedOrderStatuses = []string{"wc-completed", "wc-processing"}

// SortField selects the primary ordering of report rows.
type SortField string

const (
	SortByName          SortField = ""
	SortByTotalSales    SortField = "total_sales"
	SortByStockQuantity SortField = "stock_quantity"
)

// ParseSortField maps request input to a SortField. Unknown values sort by name.
func ParseSortField(s string) SortField {
	switch SortField(strings.ToLower(strings.TrimSpace(s))) {
	case SortByTotalSales:
		return SortByTotalSales
	case SortByStockQuantity:
		return SortByStockQuantity
	default:
		return SortByName
	}
}

// SortDirection is ASC or DESC.
type SortDirection string

const (
	Asc  SortDirection = "ASC"
	Desc SortDirection = "DESC"
)

// ParseSortDirection returns Asc only for "asc" (any case); everything else is Desc.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return Asc
	}
	return Desc
}

// ReportRequest holds the caller's report parameters. Every field is optional.
type ReportRequest struct {
	// Window bounds as dates ("2006-01-02"). If either is empty or malformed
	// the default window is used for both.
	StartDate string
	EndDate   string

	SortBy    string // "total_sales", "stock_quantity"; anything else sorts by name
	SortOrder string // "ASC" or "DESC" (default)

	Page    int
	PerPage int

	CategoryIDs   []int64
	TagIDs        []int64
	StockStatuses []string

	// Bounds are inclusive; zero means unbounded.
	MinPrice types.Money
	MaxPrice types.Money
	MinSales int64
	MaxSales int64

	// IncludeVariations surfaces variations as top-level rows instead of nesting them.
	IncludeVariations bool
}

// normalized returns a copy with paging defaults applied.
func (r ReportRequest) normalized() ReportRequest {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.PerPage < 1 {
		r.PerPage = DefaultPerPage
	}
	return r
}

// ProductRow is one top-level report row.
type ProductRow struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	StockQuantity int             `json:"stockQuantity"`
	StockStatus   string          `json:"stockStatus"`
	RegularPrice  types.NullMoney `json:"regularPrice"`
	SalePrice     types.NullMoney `json:"salePrice"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	TotalSales    int64           `json:"totalSales"`
	Variations    []VariationRow  `json:"variations"`
}

// VariationRow is a variation nested under its variable parent.
type VariationRow struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	SKU           string            `json:"sku"`
	StockQuantity int               `json:"stockQuantity"`
	StockStatus   string            `json:"stockStatus"`
	RegularPrice  types.NullMoney   `json:"regularPrice"`
	SalePrice     types.NullMoney   `json:"salePrice"`
	Type          string            `json:"type"`
	Status        string            `json:"status"`
	TotalSales    int64             `json:"totalSales"`
	Attributes    map[string]string `json:"attributes"`
}

// ReportResult is one page of the report.
type ReportResult struct {
	Rows        []ProductRow `json:"products"`
	TotalCount  int          `json:"totalCount"`
	TotalPages  int          `json:"totalPages"`
	CurrentPage int          `json:"currentPage"`
	PerPage     int          `json:"perPage"`
}

// TotalPages is ceil(total/perPage), and 0 when total is 0.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// --- Collaborator records ---

// ProductQuery is the filtered, sorted and paginated catalog read handed to the Catalog.
type ProductQuery struct {
	Window            Window
	IncludeVariations bool
	OrderStatuses     []string
	Filters           []filter.Item
	SortBy            SortField
	SortOrder         SortDirection

	// Limit 0 means no limit.
	Limit  int
	Offset int
}

// CatalogRow is a catalog item joined with its sales total in the window.
// Values are already coerced: absent stock is 0, absent prices are invalid NullMoney.
type CatalogRow struct {
	ID            int64
	PostType      string
	Name          string
	Status        string
	SKU           string
	StockQuantity int
	StockStatus   string
	RegularPrice  types.NullMoney
	SalePrice     types.NullMoney
	// StoredType is the product type recorded in item metadata; it may be stale.
	StoredType string
	TotalSales int64
}

// Item is the live catalog detail for a product or variation.
type Item struct {
	ID            int64
	ParentID      int64
	Type          string
	Name          string
	SKU           string
	StockQuantity int
	StockStatus   string
	RegularPrice  types.NullMoney
	SalePrice     types.NullMoney
	Status        string
	// Children lists variation ids of a variable product in catalog order.
	Children []int64
	// Attributes holds variation attributes keyed by attribute name.
	Attributes map[string]string
}
