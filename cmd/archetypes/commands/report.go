package commands

import (
	"github.com/spf13/cobra"

	"github.com/tyler180/nfl-archetypes/internal/app/archetypes"
	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
	"github.com/tyler180/nfl-archetypes/internal/report"
)

var reportGroups []string

func init() {
	reportCmd.Flags().StringSliceVarP(&reportGroups, "group", "g", nil, "limit leaderboards to these groups (qb, rb, wr, def)")
	rootCmd.AddCommand(reportCmd)
}

// boardTables keeps the feature tables named by --group, or all of them.
func boardTables(tables map[position.Group]*frame.Frame, names []string) (map[position.Group]*frame.Frame, error) {
	if len(names) == 0 {
		return tables, nil
	}
	out := make(map[position.Group]*frame.Frame, len(names))
	for _, n := range names {
		g, err := position.Parse(n)
		if err != nil {
			return nil, err
		}
		if df, ok := tables[g]; ok {
			out[g] = df
		}
	}
	return out, nil
}

var reportCmd = &cobra.Command{
	Use:   "report [--season <year>] [--group <qb|rb|wr|def>]",
	Short: "Prints leaderboards and the combined summary for a saved season.",
	Long: "Reads the tables a previous run saved, from DynamoDB when TABLE_NAME is set " +
		"and from --out-dir otherwise.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if _, err := boardTables(nil, reportGroups); err != nil {
			return err
		}
		clients, err := archetypes.NewClients(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		res, err := archetypes.Load(cmd.Context(), cfg, clients, cfg.Season)
		if err != nil {
			return err
		}

		boards, err := boardTables(res.Features, reportGroups)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if err := report.Leaderboards(w, report.DefaultBoards(boards)...); err != nil {
			return err
		}
		return report.Summary(w, res.Features, res.Combined)
	},
}
