// Package filter describes report filter clauses as data.
// Storage adapters translate each Item into a parameterized predicate; values are
// never spliced into query text.
package filter

import "github.com/shopspring/decimal"

// ComparisonType defines the comparison an Item applies.
type ComparisonType string

const (
	InList         ComparisonType = "in"  // value is a non-empty slice
	GreaterOrEqual ComparisonType = "gte" // inclusive lower bound
	LessOrEqual    ComparisonType = "lte" // inclusive upper bound
)

// Field names the report attribute an Item filters on.
type Field string

const (
	Category    Field = "category"     // []int64 category term ids, already expanded
	Tag         Field = "tag"          // []int64 tag term ids
	StockStatus Field = "stock_status" // []string
	Price       Field = "price"        // decimal.Decimal on the effective price
	TotalSales  Field = "total_sales"  // int64 on aggregated sales in the window
)

// Item is one filter clause.
type Item struct {
	Field    Field          `json:"field"`
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// IDsIn matches items linked to any of ids. Empty ids yield no clause.
func IDsIn(field Field, ids []int64) (Item, bool) {
	if len(ids) == 0 {
		return Item{}, false
	}
	return Item{Field: field, Operator: InList, Value: ids}, true
}

// StringsIn matches items whose field is one of values. Empty values yield no clause.
func StringsIn(field Field, values []string) (Item, bool) {
	if len(values) == 0 {
		return Item{}, false
	}
	return Item{Field: field, Operator: InList, Value: values}, true
}

// AmountBound bounds field by amount. Zero and negative amounts mean unbounded.
func AmountBound(field Field, op ComparisonType, amount decimal.Decimal) (Item, bool) {
	if !amount.IsPositive() {
		return Item{}, false
	}
	return Item{Field: field, Operator: op, Value: amount}, true
}

// CountBound bounds field by n. Zero and negative counts mean unbounded.
func CountBound(field Field, op ComparisonType, n int64) (Item, bool) {
	if n <= 0 {
		return Item{}, false
	}
	return Item{Field: field, Operator: op, Value: n}, true
}
