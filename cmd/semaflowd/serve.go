package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/semaflow-labs/semaflow"
	"github.com/semaflow-labs/semaflow/api"
)

func newServeCmd() *cobra.Command {
	var catalogDir, configPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP surface over a loaded catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logrus.New()

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

			handle, err := semaflow.FromParts(cat, clients, semaflow.WithRowCap(cfg.RowCap), semaflow.WithLogger(log))
			if err != nil {
				return err
			}
			defer handle.Close()

			server := api.NewServer(handle, log)
			log.WithField("addr", addr).Info("semaflowd listening")
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVar(&catalogDir, "catalog-dir", "", "catalog directory to load (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "handle configuration file (optional)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	_ = cmd.MarkFlagRequired("catalog-dir")
	return cmd
}
