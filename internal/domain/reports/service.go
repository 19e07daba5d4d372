package reports

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockreport/internal/core/apperror"
	"stockreport/internal/core/tx"
	"stockreport/internal/domain/filter"
	"stockreport/pkg/logger"
)

var tracer = otel.Tracer("stockreport/reports")

// Service builds product reports.
type Service struct {
	repo       Repository
	categories *CategoryExpander
	sales      *SalesAggregator
	snapshots  tx.ReadOnlyManager
	statuses   []string
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for the default window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.sales.now = now
	}
}

// WithSnapshotReads runs all reads of one report in a single read-only transaction.
func WithSnapshotReads(m tx.ReadOnlyManager) Option {
	return func(s *Service) {
		s.snapshots = m
	}
}

// WithOrderStatuses overrides which order statuses count as sales.
func WithOrderStatuses(statuses []string) Option {
	return func(s *Service) {
		if len(statuses) == 0 {
			return
		}
		s.statuses = statuses
		s.sales.statuses = statuses
	}
}

// NewService creates a new reports service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		categories: NewCategoryExpander(repo),
		sales:      NewSalesAggregator(repo),
		statuses:   CountedOrderStatuses,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns the service's category expander.
func (s *Service) Categories() *CategoryExpander {
	return s.categories
}

// Sales returns the service's sales aggregator.
func (s *Service) Sales() *SalesAggregator {
	return s.sales
}

// GetProducts builds one page of the products report.
// An unavailable catalog yields an empty report, not an error.
func (s *Service) GetProducts(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	req = req.normalized()

	ctx, span := tracer.Start(ctx, "reports.get_products",
		trace.WithAttributes(
			attribute.Int("page", req.Page),
			attribute.Int("per_page", req.PerPage),
			attribute.Bool("include_variations", req.IncludeVariations),
		))
	defer span.End()

	started := time.Now()

	var result *ReportResult
	run := func(ctx context.Context) error {
		var err error
		result, err = s.build(ctx, req)
		return err
	}

	var err error
	if s.snapshots != nil {
		err = s.snapshots.ReadOnly(ctx, run)
	} else {
		err = run(ctx)
	}

	if err != nil {
		if apperror.IsUnavailable(err) && result != nil {
			logger.Warn(ctx, "catalog unavailable, returning empty report",
				"error", err,
				"total_count", result.TotalCount,
			)
			return result, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "products report failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("total_count", result.TotalCount), attribute.Int("rows", len(result.Rows)))
	logger.Debug(ctx, "products report built",
		"rows", len(result.Rows),
		"total_count", result.TotalCount,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return result, nil
}

// build runs the report reads. For an unavailable collaborator it returns the
// empty result together with the unavailable error.
func (s *Service) build(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	ok, err := s.repo.Available(ctx)
	if err != nil {
		if apperror.IsUnavailable(err) {
			return emptyResult(req, 0), err
		}
		return nil, fmt.Errorf("check catalog availability: %w", err)
	}
	if !ok {
		return emptyResult(req, 0), apperror.NewUnavailable("catalog")
	}

	window := ResolveWindow(req.StartDate, req.EndDate, s.now())

	var categories []int64
	if len(req.CategoryIDs) > 0 {
		categories, err = s.categories.Expand(ctx, req.CategoryIDs)
		if err != nil {
			if apperror.IsUnavailable(err) {
				return emptyResult(req, 0), err
			}
			return nil, err
		}
	}

	q := ProductQuery{
		Window:            window,
		IncludeVariations: req.IncludeVariations,
		OrderStatuses:     s.statuses,
		Filters:           BuildFilters(req, categories),
		SortBy:            ParseSortField(req.SortBy),
		SortOrder:         ParseSortDirection(req.SortOrder),
		Limit:             req.PerPage,
		Offset:            (req.Page - 1) * req.PerPage,
	}

	total, err := s.repo.CountProducts(ctx, q)
	if err != nil {
		if apperror.IsUnavailable(err) {
			return emptyResult(req, 0), err
		}
		return nil, fmt.Errorf("count products: %w", err)
	}

	rows, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		if apperror.IsUnavailable(err) {
			return emptyResult(req, total), err
		}
		return nil, fmt.Errorf("list products: %w", err)
	}

	result := &ReportResult{
		Rows:        []ProductRow{},
		TotalCount:  total,
		TotalPages:  TotalPages(total, req.PerPage),
		CurrentPage: req.Page,
		PerPage:     req.PerPage,
	}
	if len(rows) == 0 {
		return result, nil
	}

	result.Rows, err = s.assemble(ctx, rows, req.IncludeVariations, window)
	if err != nil {
		if apperror.IsUnavailable(err) {
			return emptyResult(req, total), err
		}
		return nil, err
	}
	return result, nil
}

// BuildFilters turns request filters into clauses. categories must already be expanded.
func BuildFilters(req ReportRequest, categories []int64) []filter.Item {
	var items []filter.Item
	add := func(item filter.Item, ok bool) {
		if ok {
			items = append(items, item)
		}
	}

	add(filter.IDsIn(filter.Category, categories))
	add(filter.IDsIn(filter.Tag, req.TagIDs))
	add(filter.StringsIn(filter.StockStatus, req.StockStatuses))
	add(filter.AmountBound(filter.Price, filter.GreaterOrEqual, req.MinPrice))
	add(filter.AmountBound(filter.Price, filter.LessOrEqual, req.MaxPrice))
	add(filter.CountBound(filter.TotalSales, filter.GreaterOrEqual, req.MinSales))
	add(filter.CountBound(filter.TotalSales, filter.LessOrEqual, req.MaxSales))

	return items
}

// assemble resolves live item types and attaches variation rollups to variable parents.
func (s *Service) assemble(ctx context.Context, rows []CatalogRow, includeVariations bool, w Window) ([]ProductRow, error) {
	items := make(map[int64]*Item, len(rows))
	var childIDs []int64

	for _, row := range rows {
		item, err := s.repo.GetItem(ctx, row.ID)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("lookup item %d: %w", row.ID, err)
		}
		items[row.ID] = item
		if item.Type == TypeVariable && !includeVariations {
			childIDs = append(childIDs, item.Children...)
		}
	}

	sales, err := s.sales.salesIn(ctx, childIDs, true, w)
	if err != nil {
		return nil, err
	}

	products := make([]ProductRow, 0, len(rows))
	for _, row := range rows {
		product := ProductRow{
			ID:            row.ID,
			Name:          row.Name,
			SKU:           row.SKU,
			StockQuantity: row.StockQuantity,
			StockStatus:   row.StockStatus,
			RegularPrice:  row.RegularPrice,
			SalePrice:     row.SalePrice,
			Type:          fallbackType(row),
			Status:        row.Status,
			TotalSales:    row.TotalSales,
			Variations:    []VariationRow{},
		}

		if item, ok := items[row.ID]; ok {
			product.Type = item.Type
			if item.Type == TypeVariable && !includeVariations {
				product.Variations, err = s.variationRows(ctx, item.Children, sales)
				if err != nil {
					return nil, err
				}
			}
		}

		products = append(products, product)
	}

	return products, nil
}

func (s *Service) variationRows(ctx context.Context, childIDs []int64, sales map[int64]int64) ([]VariationRow, error) {
	rows := make([]VariationRow, 0, len(childIDs))
	for _, id := range childIDs {
		v, err := s.repo.GetItem(ctx, id)
		if err != nil {
			if apperror.IsNotFound(err) {
				logger.Debug(ctx, "skipping unresolved variation", "variation_id", id)
				continue
			}
			return nil, fmt.Errorf("lookup variation %d: %w", id, err)
		}

		attrs := v.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		rows = append(rows, VariationRow{
			ID:            id,
			Name:          v.Name,
			SKU:           v.SKU,
			StockQuantity: v.StockQuantity,
			StockStatus:   v.StockStatus,
			RegularPrice:  v.RegularPrice,
			SalePrice:     v.SalePrice,
			Type:          TypeVariation,
			Status:        v.Status,
			TotalSales:    sales[id],
			Attributes:    attrs,
		})
	}
	return rows, nil
}

// fallbackType is used when the live lookup no longer resolves the row.
func fallbackType(row CatalogRow) string {
	if row.PostType == PostTypeVariation {
		return TypeVariation
	}
	return TypeSimple
}

func emptyResult(req ReportRequest, total int) *ReportResult {
	return &ReportResult{
		Rows:        []ProductRow{},
		TotalCount:  total,
		TotalPages:  0,
		CurrentPage: req.Page,
		PerPage:     req.PerPage,
	}
}
