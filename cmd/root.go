// Package cmd wires the command-line entry points.
package cmd

import (
	"fmt"
	"log"

	"linear-gamification/config"
	"linear-gamification/database"
	"linear-gamification/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "gamification",
	Short:         "Turns Linear task completions into XP, levels, streaks and achievements",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	serveCmd := newServeCmd()
	// Running the binary without a subcommand serves, like the container entrypoint expects.
	rootCmd.RunE = serveCmd.RunE
	rootCmd.AddCommand(serveCmd, newMigrateCmd(), newLeaderboardCmd(), newRecomputeStreaksCmd())
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("❌ %v", err)
		return err
	}
	return nil
}

// runtimeDeps is what every command needs after config is loaded.
type runtimeDeps struct {
	cfg      *config.Config
	db       *gorm.DB
	workweek services.Workweek
}

func bootstrap() (*runtimeDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	workweek, err := workweekFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &runtimeDeps{cfg: cfg, db: db, workweek: workweek}, nil
}

func workweekFromConfig(cfg *config.Config) (services.Workweek, error) {
	restDays, err := services.ParseWeekdays(cfg.RestDayNames())
	if err != nil {
		return services.Workweek{}, fmt.Errorf("rest_days: %w", err)
	}
	w := services.NewWorkweek(restDays...)
	if !w.HasWorkdays() {
		return services.Workweek{}, fmt.Errorf("rest_days must leave at least one workday")
	}
	return w, nil
}

func loadCatalog(cfg *config.Config) (services.Catalog, error) {
	if cfg.CatalogFile == "" {
		return services.DefaultCatalog(), nil
	}
	return services.LoadCatalogFile(cfg.CatalogFile)
}

func migrateAndSeed(deps *runtimeDeps) error {
	if err := database.Migrate(deps.db); err != nil {
		return err
	}
	cat, err := loadCatalog(deps.cfg)
	if err != nil {
		return err
	}
	return services.SeedCatalog(deps.db, cat)
}
