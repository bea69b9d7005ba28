package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tyler180/nfl-archetypes/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "archetypes",
	Short:        "archetypes builds per-position NFL feature tables for archetype analysis.",
	SilenceUsage: true,
}

var (
	configPath string
	season     int
	outDir     string
	htmlDir    string
	logLevel   string
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "YAML config file, applied over the environment")
	f.IntVar(&season, "season", config.DefaultSeason, "season to process")
	f.StringVar(&outDir, "out-dir", ".", "directory for the CSV tables (empty disables)")
	f.StringVar(&htmlDir, "html-dir", "", "read saved PFR pages from this directory instead of fetching")
	f.StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers flags that were set explicitly over env and file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("season") {
		cfg.Season = season
	}
	if f.Changed("out-dir") {
		cfg.OutDir = outDir
	}
	if f.Changed("html-dir") {
		cfg.HTMLDir = htmlDir
	}
	if f.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
