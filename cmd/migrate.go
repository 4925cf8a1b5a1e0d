package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and seed levels and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := bootstrap()
			if err != nil {
				return err
			}
			if err := migrateAndSeed(deps); err != nil {
				return err
			}
			log.Println("✅ Database migrated")
			return nil
		},
	}
}
