package cli

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stockreport/internal/core/apperror"
)

func newSalesCommand(opts *rootOptions) *cobra.Command {
	var (
		ids        []int64
		variations bool
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Print units sold per product (or variation) id as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := parseDay("start", start)
			if err != nil {
				return err
			}
			to, err := parseDay("end", end)
			if err != nil {
				return err
			}

			backend, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			sales, err := backend.Sales.BulkSales(cmd.Context(), ids, variations, from, to)
			if err != nil {
				return err
			}

			out := make(map[int64]int64, len(ids))
			for _, id := range ids {
				out[id] = sales[id]
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
		},
	}

	f := cmd.Flags()
	f.Int64SliceVar(&ids, "id", nil, "product or variation ids")
	f.BoolVar(&variations, "variations", false, "ids are variation ids")
	f.StringVar(&start, "start", "", "window start date (YYYY-MM-DD); both bounds or neither")
	f.StringVar(&end, "end", "", "window end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newCategoriesCommand(opts *rootOptions) *cobra.Command {
	var ids []int64

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Print the given categories and all their descendants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			expanded, err := backend.Categories.Expand(cmd.Context(), ids)
			if err != nil {
				return err
			}
			if expanded == nil {
				expanded = []int64{}
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(expanded)
		},
	}

	cmd.Flags().Int64SliceVar(&ids, "id", nil, "category ids")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// parseDay parses a YYYY-MM-DD flag. Empty input is the zero time.
func parseDay(flag, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date").
			WithDetail("flag", flag).
			WithDetail("value", raw)
	}
	return t, nil
}
