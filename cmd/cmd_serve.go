// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcodagnone/contactmap/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve contacts, suggestions and markers over HTTP",
	Long: `Starts an ingestion pass in the background and serves its progressive
results. POST /api/ingest starts a new pass, superseding the running one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, closeCache, err := newService(ctx, nil)
		if err != nil {
			return err
		}

		defer func() {
			if err := closeCache(); err != nil {
				log.Printf("Closing cache: %s", err)
			}
		}()

		pass := svc.Refresh(ctx)
		log.Printf("Ingestion pass %s started", pass)

		fmt.Printf("Open http://%s/api/status in your browser\n", viper.GetString("addr"))

		err = server.NewServer(svc, newPlacer()).Run(ctx, viper.GetString("addr"))

		svc.Close()

		m := svc.Metrics()
		log.Printf(
			"Served passes ingested %d records - %d geocoded, %d fallbacks, %d renamed",
			m.Records, m.Geocoded, m.Fallbacks, m.Renamed,
		)
		logResolverMetrics(svc.Pipeline().Resolver().Metrics())

		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
