package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semaflow-labs/semaflow"
	"github.com/semaflow-labs/semaflow/request"
)

func newSQLCmd() *cobra.Command {
	var catalogDir, configPath string

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the rendered SQL for a request read from stdin, without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.Request
			if err := json.NewDecoder(cmd.InOrStdin()).Decode(&req); err != nil {
				return fmt.Errorf("semaflowd: decoding request: %w", err)
			}

			cat, err := loadCatalog(catalogDir)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			clients, err := buildClients(cmd.Context(), cat, cfg)
			if err != nil {
				return err
			}

			handle, err := semaflow.FromParts(cat, clients, semaflow.WithRowCap(cfg.RowCap))
			if err != nil {
				return err
			}
			defer handle.Close()

			built, err := handle.BuildSQL(req)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), built.SQL)
			for i, p := range built.Params {
				fmt.Fprintf(cmd.OutOrStdout(), "  param[%d] = %v\n", i, p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "-- plan shape: %s, joins: %v\n", built.Explain.Shape, built.Explain.JoinedAliases)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogDir, "catalog-dir", "", "catalog directory to load (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "handle configuration file (optional)")
	_ = cmd.MarkFlagRequired("catalog-dir")
	return cmd
}
