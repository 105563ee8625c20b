package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/lightmixsearch/internal/config"
	"github.com/cwbudde/lightmixsearch/internal/logger"
)

var (
	logLevel   string
	logFormat  string
	configPath string

	// appConfig holds the loaded --config file, or the defaults.
	appConfig = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "lightmixsearch",
	Short: "Color search strategies against a simulated light mixer",
	Long: `lightmixsearch finds the RGB drive of a simulated light mixer whose
noisy 8-channel sensor reading best matches a target color, using grid,
random or mayfly search.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			appConfig = cfg
		}

		flags := cmd.Flags()
		if flags.Changed("log-level") || configPath == "" {
			appConfig.LogLevel = logLevel
		}
		if flags.Changed("log-format") || configPath == "" {
			appConfig.LogFormat = logFormat
		}

		slog.SetDefault(logger.New(appConfig.LogLevel, appConfig.LogFormat, os.Stderr))
		slog.Debug("Configuration loaded", "config", configPath, "data_dir", appConfig.DataDir, "store", appConfig.Store)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (json, text)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
}

// dataFlags resolves --data-dir and --store against the loaded config.
func dataFlags(cmd *cobra.Command) (dataDir, kind string) {
	dataDir, kind = appConfig.DataDir, appConfig.Store
	if cmd.Flags().Changed("data-dir") {
		dataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("store") {
		kind, _ = cmd.Flags().GetString("store")
	}
	return dataDir, kind
}

func addDataFlags(cmd *cobra.Command, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	flags.String("data-dir", "./data", "Base directory for stored runs")
	flags.String("store", "fs", "Run store backend (fs, sqlite)")
}
