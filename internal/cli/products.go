package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"stockreport/internal/infrastructure/http/v1/dto"
)

func newProductsCommand(opts *rootOptions) *cobra.Command {
	var (
		q      dto.ProductsReportRequest
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Print one page of the products report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := q.ToReportRequest(opts.cfg.Catalog.MaxPerPage)
			if err != nil {
				return err
			}

			backend, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			result, err := backend.Reports.GetProducts(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(dto.FromReportResult(result)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.StartDate, "start", "", "window start date (YYYY-MM-DD)")
	f.StringVar(&q.EndDate, "end", "", "window end date (YYYY-MM-DD)")
	f.StringVar(&q.SortBy, "sort-by", "", "total_sales, stock_quantity or name")
	f.StringVar(&q.SortOrder, "sort-order", "DESC", "ASC or DESC")
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.PerPage, "per-page", 50, "rows per page")
	f.Int64SliceVar(&q.CategoryIDs, "category", nil, "category ids (descendants included)")
	f.Int64SliceVar(&q.TagIDs, "tag", nil, "tag ids")
	f.StringSliceVar(&q.StockStatuses, "stock-status", nil, "stock statuses, e.g. instock,outofstock")
	f.StringVar(&q.MinPrice, "min-price", "", "minimum price")
	f.StringVar(&q.MaxPrice, "max-price", "", "maximum price")
	f.Int64Var(&q.MinSales, "min-sales", 0, "minimum units sold in the window")
	f.Int64Var(&q.MaxSales, "max-sales", 0, "maximum units sold in the window")
	f.BoolVar(&q.IncludeVariations, "include-variations", false, "report variations as rows instead of nesting them")
	f.BoolVar(&pretty, "pretty", false, "indent JSON output")

	return cmd
}
