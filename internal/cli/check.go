package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockreport/internal/core/apperror"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the catalog and order tables are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, release, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			ok, err := backend.Catalog.Available(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return apperror.NewUnavailable("catalog").
					WithDetail("table_prefix", opts.cfg.Catalog.TablePrefix)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok (prefix %q)\n", opts.cfg.Catalog.TablePrefix)
			return nil
		},
	}
}
