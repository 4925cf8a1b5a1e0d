package cmd

import (
	"os"

	"linear-gamification/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top employees by XP",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := bootstrap()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = deps.cfg.LeaderboardSize
			}
			leaderboard := services.NewLeaderboardService(deps.db)
			rows, err := leaderboard.TopByXP(cmd.Context(), limit)
			if err != nil {
				return err
			}
			levels, err := leaderboard.LevelTable(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"#", "Name", "XP", "Level", "Title", "Streak", "Best"})
			for i, e := range rows {
				t.AppendRow(table.Row{i + 1, e.Name, e.XP, e.Level, levels.Name(e.Level), e.CurrentStreak, e.MaxStreak})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of rows (defaults to leaderboard_size)")
	return cmd
}
