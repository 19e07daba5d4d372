package reports

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SalesAggregator sums sold quantities per product or variation.
type SalesAggregator struct {
	ledger   Ledger
	statuses []string
	now      func() time.Time
}

// NewSalesAggregator creates a new sales aggregator counting CountedOrderStatuses.
func NewSalesAggregator(ledger Ledger) *SalesAggregator {
	return &SalesAggregator{
		ledger:   ledger,
		statuses: CountedOrderStatuses,
		now:      time.Now,
	}
}

// BulkSales returns the quantity sold per id between start and end (whole days,
// inclusive). A zero start or end selects the default window for both.
// Ids with no sales are absent from the result; callers default them to 0.
func (a *SalesAggregator) BulkSales(ctx context.Context, ids []int64, isVariation bool, start, end time.Time) (map[int64]int64, error) {
	if len(ids) == 0 {
		return map[int64]int64{}, nil
	}
	return a.salesIn(ctx, ids, isVariation, NewWindow(start, end, a.now()))
}

func (a *SalesAggregator) salesIn(ctx context.Context, ids []int64, isVariation bool, w Window) (map[int64]int64, error) {
	if len(ids) == 0 {
		return map[int64]int64{}, nil
	}

	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	ctx, span := tracer.Start(ctx, "reports.bulk_sales",
		trace.WithAttributes(
			attribute.Int("items", len(unique)),
			attribute.Bool("variations", isVariation),
		))
	defer span.End()

	sales, err := a.ledger.SalesByItem(ctx, unique, isVariation, a.statuses, w)
	if err != nil {
		return nil, fmt.Errorf("bulk sales: %w", err)
	}
	if sales == nil {
		sales = map[int64]int64{}
	}
	return sales, nil
}
