//go:build integration

package report_repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"stockreport/internal/core/apperror"
	"stockreport/internal/core/types"
	"stockreport/internal/domain/reports"
	"stockreport/internal/infrastructure/storage/postgres"
)

// startCatalog runs a Postgres container seeded with testdata/catalog.sql.
func startCatalog(t *testing.T) *postgres.TxManager {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("stockreport_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.WithInitScripts(filepath.Join("testdata", "catalog.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return postgres.NewTxManager(pool)
}

func TestReportRepo_Integration(t *testing.T) {
	txm := startCatalog(t)
	ctx := context.Background()

	repo, err := NewReportRepo(txm, "wp_")
	require.NoError(t, err)

	jan := reports.Window{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	t.Run("available", func(t *testing.T) {
		ok, err := repo.Available(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		other, err := NewReportRepo(txm, "shop_")
		require.NoError(t, err)
		ok, err = other.Available(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing tables map to unavailable", func(t *testing.T) {
		other, err := NewReportRepo(txm, "shop_")
		require.NoError(t, err)
		_, err = other.CountProducts(ctx, reports.ProductQuery{Window: jan, OrderStatuses: reports.CountedOrderStatuses})
		require.Error(t, err)
		assert.True(t, apperror.IsUnavailable(err))
	})

	t.Run("count and list sorted by sales", func(t *testing.T) {
		q := reports.ProductQuery{
			Window:        jan,
			OrderStatuses: reports.CountedOrderStatuses,
			SortBy:        reports.SortByTotalSales,
			SortOrder:     reports.Desc,
			Limit:         2,
		}
		total, err := repo.CountProducts(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 4, total)

		rows, err := repo.ListProducts(ctx, q)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Zed", rows[0].Name)
		assert.Equal(t, int64(10), rows[0].TotalSales)
		assert.Equal(t, "Tee", rows[1].Name)
		assert.Equal(t, int64(6), rows[1].TotalSales)

		assert.Equal(t, "Z-1", rows[0].SKU)
		assert.Equal(t, 3, rows[0].StockQuantity)
		assert.True(t, rows[0].RegularPrice.Valid)
		assert.True(t, rows[0].RegularPrice.Decimal.Equal(types.MustMoney("10")))
		assert.False(t, rows[0].SalePrice.Valid)
	})

	t.Run("stock coercion", func(t *testing.T) {
		rows, err := repo.ListProducts(ctx, reports.ProductQuery{
			Window:        jan,
			OrderStatuses: reports.CountedOrderStatuses,
			SortBy:        reports.SortByStockQuantity,
			SortOrder:     reports.Desc,
		})
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "Zed", rows[0].Name)
		// Empty and non-numeric stock both read as 0 and fall back to name order.
		for _, row := range rows[1:] {
			assert.Zero(t, row.StockQuantity, row.Name)
		}
		assert.Equal(t, []string{"Ant", "Mid", "Tee"}, []string{rows[1].Name, rows[2].Name, rows[3].Name})
	})

	t.Run("variations as rows", func(t *testing.T) {
		q := reports.ProductQuery{
			Window:            jan,
			IncludeVariations: true,
			OrderStatuses:     reports.CountedOrderStatuses,
		}
		rows, err := repo.ListProducts(ctx, q)
		require.NoError(t, err)

		sales := map[string]int64{}
		for _, row := range rows {
			sales[row.Name] = row.TotalSales
		}
		assert.Equal(t, map[string]int64{
			"Ant": 0, "Mid": 5, "Tee": 6, "Tee - Blue": 1, "Tee - Red": 5, "Zed": 10,
		}, sales)
	})

	t.Run("filters", func(t *testing.T) {
		tests := []struct {
			name  string
			req   reports.ReportRequest
			cats  []int64
			names []string
		}{
			{name: "grandchild category", cats: []int64{10, 11, 12, 13}, names: []string{"Tee"}},
			{name: "tag", req: reports.ReportRequest{TagIDs: []int64{20}}, names: []string{"Zed"}},
			{name: "stock status", req: reports.ReportRequest{StockStatuses: []string{"outofstock"}}, names: []string{"Ant"}},
			{name: "min price", req: reports.ReportRequest{MinPrice: types.MustMoney("11")}, names: []string{"Mid", "Tee"}},
			{name: "price range", req: reports.ReportRequest{MinPrice: types.MustMoney("5"), MaxPrice: types.MustMoney("10")}, names: []string{"Ant", "Zed"}},
			{name: "sales range", req: reports.ReportRequest{MinSales: 5, MaxSales: 6}, names: []string{"Mid", "Tee"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rows, err := repo.ListProducts(ctx, reports.ProductQuery{
					Window:        jan,
					OrderStatuses: reports.CountedOrderStatuses,
					Filters:       reports.BuildFilters(tt.req, tt.cats),
				})
				require.NoError(t, err)
				var got []string
				for _, row := range rows {
					got = append(got, row.Name)
				}
				assert.Equal(t, tt.names, got)
			})
		}
	})

	t.Run("child categories", func(t *testing.T) {
		ids, err := repo.ChildCategories(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{11, 13}, ids)

		ids, err = repo.ChildCategories(ctx, 12)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("get item", func(t *testing.T) {
		tee, err := repo.GetItem(ctx, 103)
		require.NoError(t, err)
		assert.Equal(t, reports.TypeVariable, tee.Type)
		assert.Equal(t, []int64{105, 104}, tee.Children)

		red, err := repo.GetItem(ctx, 104)
		require.NoError(t, err)
		assert.Equal(t, reports.TypeVariation, red.Type)
		assert.Equal(t, int64(103), red.ParentID)
		assert.Equal(t, 2, red.StockQuantity)
		assert.Equal(t, map[string]string{"pa_color": "red"}, red.Attributes)

		blue, err := repo.GetItem(ctx, 105)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"pa_color": "blue", "size": "L"}, blue.Attributes)

		_, err = repo.GetItem(ctx, 107)
		assert.True(t, apperror.IsNotFound(err))

		_, err = repo.GetItem(ctx, 999)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("sales by item", func(t *testing.T) {
		byVariation, err := repo.SalesByItem(ctx, []int64{104, 105, 107}, true, reports.CountedOrderStatuses, jan)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int64{104: 5, 105: 1}, byVariation)

		byProduct, err := repo.SalesByItem(ctx, []int64{100, 101}, false, reports.CountedOrderStatuses, jan)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int64{100: 10}, byProduct)
	})

	t.Run("service end to end", func(t *testing.T) {
		svc := reports.NewService(repo, reports.WithSnapshotReads(txm))

		res, err := svc.GetProducts(ctx, reports.ReportRequest{
			StartDate: "2024-01-01",
			EndDate:   "2024-01-31",
			SortBy:    "total_sales",
			SortOrder: "DESC",
			PerPage:   2,
		})
		require.NoError(t, err)
		assert.Equal(t, 4, res.TotalCount)
		assert.Equal(t, 2, res.TotalPages)
		require.Len(t, res.Rows, 2)

		tee := res.Rows[1]
		assert.Equal(t, reports.TypeVariable, tee.Type)
		require.Len(t, tee.Variations, 2)
		assert.Equal(t, "Tee - Blue", tee.Variations[0].Name)
		assert.Equal(t, int64(1), tee.Variations[0].TotalSales)
		assert.Equal(t, "Tee - Red", tee.Variations[1].Name)
		assert.Equal(t, int64(5), tee.Variations[1].TotalSales)
	})
}
