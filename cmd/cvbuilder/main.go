// Package main provides the cvbuilder command: the CV HTTP API server and
// offline tools for rendering, exporting and inspecting CVs.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/logger"
)

var (
	configPath string
	cfg        *config.Config
	appLog     *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cvbuilder",
	Short: "Build, preview and export CVs",
	Long: `cvbuilder stores CVs section by section in PostgreSQL, renders them to a
paginated HTML document with per-field visibility flags, and exports them to
PDF or JPEG through headless Chrome.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if appLog != nil {
			appLog.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (YAML, JSON or TOML)")
}

// setup loads configuration and the logger before any subcommand runs.
func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	merged := loaded.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return err
	}
	cfg = &merged

	appLog, err = logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
