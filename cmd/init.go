// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the results tables that do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := NewStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			sp, _ := pterm.DefaultSpinner.WithText("Creating results tables...").Start()

			if err := store.Init(ctx); err != nil {
				sp.Fail(fmt.Sprintf("Failed to create results tables: %s", err))
				return err
			}

			sp.Success("Initialization done! perfrun is ready to store results")
			return nil
		},
	}
}
