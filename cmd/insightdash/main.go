package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davicafu/insightdash/internal/config"
	"github.com/davicafu/insightdash/pkg/logger"
)

var version = "0.1.0"

// ---------------- Main ----------------
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "insightdash",
		Short: "Insight dashboard data service",
		Long: `insightdash serves the filtered, paginated insight query used by the
dashboard and loads the JSON dump into the configured data store.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "YAML config file (env vars take precedence)")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(importCmd(&configPath))
	return root
}

// bootstrap carga la configuración e inicializa el logger global.
func bootstrap(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger.Logger(), nil
}
