package app

import (
	"os"

	"bilca_backend/internal/config"
	"bilca_backend/internal/logger"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "bilca",
	Short:        "Bilca marketplace backend",
	Long:         `Hire lifecycle, review collection and reminder scheduling for the Bilca marketplace`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config/config.yaml)")
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration and initializes logging for a command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Server.Env)
	logger.SetLevel(cfg.Server.LogLevel)
	return cfg, nil
}
