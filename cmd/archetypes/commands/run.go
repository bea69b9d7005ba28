package commands

import (
	"github.com/spf13/cobra"

	"github.com/tyler180/nfl-archetypes/internal/app/archetypes"
	"github.com/tyler180/nfl-archetypes/internal/report"
)

var quiet bool

func init() {
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the leaderboards and summary")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--season <year>] [--out-dir <dir>]",
	Short: "Fetches a season, derives the feature tables and saves them to every configured sink.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := archetypes.NewLogger(cfg)

		clients, err := archetypes.NewClients(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		runner := archetypes.NewRunner(cfg, clients, log, cmd.OutOrStdout())
		if quiet {
			runner.Report = nil
		}

		res, err := runner.Run(cmd.Context(), cfg.Season)
		if err != nil {
			return err
		}
		if quiet {
			return report.Banner(cmd.OutOrStdout(), res.Features, res.Counts())
		}
		return nil
	},
}
