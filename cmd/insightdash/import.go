package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davicafu/insightdash/internal/insight/application"
	insightEvents "github.com/davicafu/insightdash/internal/insight/infra/inbound/events"
	"github.com/davicafu/insightdash/internal/insight/infra/inbound/filesystem"
)

func importCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the JSON dump into the data store",
		Long: `Reads a JSON array of insight objects, drops rows without a country,
skips rows that break the numeric invariants and bulk-inserts the rest.
Prints the import report as JSON on stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rows, err := filesystem.NewJSONDumpReader(file).ReadAll(ctx)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			bus, closeBus := openEventBus(cfg, insightEvents.NewImportConsumer(nil, log), log)
			defer func() {
				if err := closeBus(); err != nil {
					log.Warn("Failed to close event bus", zap.Error(err))
				}
			}()

			service := application.NewImportService(store, bus, cfg.BatchSize, log)
			report, err := service.Import(ctx, rows)
			if err != nil {
				log.Error("Import failed", zap.Int("inserted", report.Inserted), zap.Error(err))
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the JSON dump")
	return cmd
}
