package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var catalogDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a catalog directory and report CatalogInvalid errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalogDir)
			if err != nil {
				return err
			}
			if err := cat.Build(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog valid: %d tables, %d flows, %d data sources\n",
				len(cat.Tables), len(cat.Flows), len(cat.DataSources))
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogDir, "catalog-dir", "", "catalog directory to load (required)")
	_ = cmd.MarkFlagRequired("catalog-dir")
	return cmd
}
