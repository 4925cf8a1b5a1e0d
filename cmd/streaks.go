package cmd

import (
	"log"
	"time"

	"linear-gamification/services"

	"github.com/spf13/cobra"
)

func newRecomputeStreaksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-streaks",
		Short: "Rebuild current and max streaks for every employee from task history",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := bootstrap()
			if err != nil {
				return err
			}
			changed, err := services.RecomputeAllStreaks(cmd.Context(), deps.db, deps.workweek, time.Now())
			if err != nil {
				return err
			}
			log.Printf("✅ Streaks recomputed, %d employee(s) updated", changed)
			return nil
		},
	}
}
