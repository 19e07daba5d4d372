package reports

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stockreport/internal/core/apperror"
	"stockreport/internal/core/types"
	"stockreport/internal/domain/filter"
)

// fakeProduct is one catalog post in the in-memory store.
type fakeProduct struct {
	row        CatalogRow
	item       *Item // nil: the live lookup fails
	categories []int64
	tags       []int64
	price      *decimal.Decimal
}

type fakeSale struct {
	productID   int64
	variationID int64
	qty         int64
	status      string
	created     time.Time
}

// fakeRepo is an in-memory Repository with the same filter, sort and paging rules
// as the Postgres adapter.
type fakeRepo struct {
	mu sync.Mutex

	products []*fakeProduct
	sales    []fakeSale
	children map[int64][]int64

	unavailable bool
	failOn      map[string]error

	salesCalls    int
	lastSalesIDs  []int64
	childCalls    int
	lastQuery     ProductQuery
	getItemCalled []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		children: map[int64][]int64{},
		failOn:   map[string]error{},
	}
}

func (f *fakeRepo) addSimple(id int64, name string, stock int) *fakeProduct {
	f.products = append(f.products, &fakeProduct{
		row: CatalogRow{
			ID:            id,
			PostType:      PostTypeProduct,
			Name:          name,
			Status:        "publish",
			SKU:           "SKU-" + name,
			StockQuantity: stock,
			StockStatus:   "instock",
			StoredType:    TypeSimple,
		},
		item: &Item{ID: id, Type: TypeSimple, Name: name, Status: "publish", StockQuantity: stock},
	})
	return f.products[len(f.products)-1]
}

func (f *fakeRepo) addVariable(id int64, name string, children ...int64) {
	f.products = append(f.products, &fakeProduct{
		row: CatalogRow{
			ID:          id,
			PostType:    PostTypeProduct,
			Name:        name,
			Status:      "publish",
			StockStatus: "instock",
			StoredType:  TypeVariable,
		},
		item: &Item{ID: id, Type: TypeVariable, Name: name, Status: "publish", Children: children},
	})
}

func (f *fakeRepo) addVariation(id, parent int64, name string, attrs map[string]string) {
	f.products = append(f.products, &fakeProduct{
		row: CatalogRow{
			ID:          id,
			PostType:    PostTypeVariation,
			Name:        name,
			Status:      "publish",
			StockStatus: "instock",
		},
		item: &Item{ID: id, ParentID: parent, Type: TypeVariation, Name: name, Status: "publish", Attributes: attrs},
	})
}

func (f *fakeRepo) sell(productID, variationID, qty int64, status string, created time.Time) {
	f.sales = append(f.sales, fakeSale{productID, variationID, qty, status, created})
}

func (f *fakeRepo) Available(ctx context.Context) (bool, error) {
	if err := f.failOn["available"]; err != nil {
		return false, err
	}
	return !f.unavailable, nil
}

func (f *fakeRepo) CountProducts(ctx context.Context, q ProductQuery) (int, error) {
	if err := f.failOn["count"]; err != nil {
		return 0, err
	}
	return len(f.match(q)), nil
}

func (f *fakeRepo) ListProducts(ctx context.Context, q ProductQuery) ([]CatalogRow, error) {
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()

	if err := f.failOn["list"]; err != nil {
		return nil, err
	}
	rows := f.match(q)
	if q.Offset >= len(rows) {
		return nil, nil
	}
	rows = rows[q.Offset:]
	if q.Limit > 0 && q.Limit < len(rows) {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (f *fakeRepo) GetItem(ctx context.Context, id int64) (*Item, error) {
	f.mu.Lock()
	f.getItemCalled = append(f.getItemCalled, id)
	f.mu.Unlock()

	if err := f.failOn["item"]; err != nil {
		return nil, err
	}
	for _, p := range f.products {
		if p.row.ID == id && p.item != nil {
			item := *p.item
			return &item, nil
		}
	}
	return nil, apperror.NewNotFound("item", id)
}

func (f *fakeRepo) ChildCategories(ctx context.Context, parentID int64) ([]int64, error) {
	f.mu.Lock()
	f.childCalls++
	f.mu.Unlock()

	if err := f.failOn["children"]; err != nil {
		return nil, err
	}
	return f.children[parentID], nil
}

func (f *fakeRepo) SalesByItem(ctx context.Context, ids []int64, byVariation bool, statuses []string, w Window) (map[int64]int64, error) {
	f.mu.Lock()
	f.salesCalls++
	f.lastSalesIDs = slices.Clone(ids)
	f.mu.Unlock()

	if err := f.failOn["sales"]; err != nil {
		return nil, err
	}
	out := map[int64]int64{}
	for _, id := range ids {
		var sum int64
		var seen bool
		for _, s := range f.sales {
			key := s.productID
			if byVariation {
				key = s.variationID
			}
			if key != id || !f.counts(s, statuses, w) {
				continue
			}
			sum += s.qty
			seen = true
		}
		if seen {
			out[id] = sum
		}
	}
	return out, nil
}

func (f *fakeRepo) counts(s fakeSale, statuses []string, w Window) bool {
	if !slices.Contains(statuses, s.status) {
		return false
	}
	return !s.created.Before(w.From()) && !s.created.After(w.To())
}

func (f *fakeRepo) totalSales(row CatalogRow, q ProductQuery) int64 {
	var sum int64
	for _, s := range f.sales {
		if !f.counts(s, q.OrderStatuses, q.Window) {
			continue
		}
		if row.PostType == PostTypeVariation {
			if s.variationID == row.ID {
				sum += s.qty
			}
		} else if s.productID == row.ID {
			sum += s.qty
		}
	}
	return sum
}

func (f *fakeRepo) match(q ProductQuery) []CatalogRow {
	var rows []CatalogRow
	for _, p := range f.products {
		if p.row.PostType == PostTypeVariation && !q.IncludeVariations {
			continue
		}
		row := p.row
		row.TotalSales = f.totalSales(row, q)
		if !matchesAll(p, row, q.Filters) {
			continue
		}
		rows = append(rows, row)
	}

	slices.SortFunc(rows, func(a, b CatalogRow) int {
		var c int
		switch q.SortBy {
		case SortByTotalSales:
			c = cmp.Compare(a.TotalSales, b.TotalSales)
		case SortByStockQuantity:
			c = cmp.Compare(a.StockQuantity, b.StockQuantity)
		default:
			// Name order ignores the requested direction.
			if c = cmp.Compare(a.Name, b.Name); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		}
		if q.SortOrder == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return rows
}

func matchesAll(p *fakeProduct, row CatalogRow, items []filter.Item) bool {
	for _, it := range items {
		switch it.Field {
		case filter.Category:
			if !overlaps(p.categories, it.Value.([]int64)) {
				return false
			}
		case filter.Tag:
			if !overlaps(p.tags, it.Value.([]int64)) {
				return false
			}
		case filter.StockStatus:
			if !slices.Contains(it.Value.([]string), row.StockStatus) {
				return false
			}
		case filter.Price:
			bound := it.Value.(decimal.Decimal)
			if p.price == nil {
				return false
			}
			if it.Operator == filter.GreaterOrEqual && p.price.LessThan(bound) {
				return false
			}
			if it.Operator == filter.LessOrEqual && p.price.GreaterThan(bound) {
				return false
			}
		case filter.TotalSales:
			bound := it.Value.(int64)
			if it.Operator == filter.GreaterOrEqual && row.TotalSales < bound {
				return false
			}
			if it.Operator == filter.LessOrEqual && row.TotalSales > bound {
				return false
			}
		}
	}
	return true
}

func overlaps(have, want []int64) bool {
	for _, id := range have {
		if slices.Contains(want, id) {
			return true
		}
	}
	return false
}

func money(s string) *decimal.Decimal {
	d := types.MustMoney(s)
	return &d
}
