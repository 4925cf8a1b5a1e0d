package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linear-gamification/config"
	"linear-gamification/handlers"
	"linear-gamification/metrics"
	"linear-gamification/services"
	"linear-gamification/utils"
	"linear-gamification/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook receiver and dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := bootstrap()
			if err != nil {
				return err
			}
			return serve(deps)
		},
	}
}

// newApp builds the fiber app with every route registered.
func newApp(cfg *config.Config, completions *services.CompletionService, leaderboard *services.LeaderboardService, m *metrics.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB, webhook payloads are small
	})

	app.Use(recover.New())
	app.Use(logger.New())

	// CORS for the dashboard; the API is read-only apart from the webhook
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Origins(),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
		MaxAge:       86400, // 24 hours
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	handlers.SetupWebhookRoutes(app, completions, m, cfg.LinearWebhookSecret)
	handlers.SetupDashboardRoutes(app, leaderboard, cfg.LeaderboardSize, time.Now)
	return app
}

func serve(deps *runtimeDeps) error {
	cfg := deps.cfg

	if err := migrateAndSeed(deps); err != nil {
		return err
	}

	m := metrics.New()
	notifier := services.NewNotifier(cfg.SlackWebhookURL, cfg.NotifyTimeout)

	completions := services.NewCompletionService(deps.db, notifier, deps.workweek)
	completions.Metrics = m
	completions.SummaryEvery = int64(cfg.SummaryEvery)
	completions.SummarySize = cfg.SummarySize
	completions.NotifyTimeout = cfg.NotifyTimeout
	leaderboard := completions.Leaderboard

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DigestSchedule != "" {
		var store workers.SnapshotStore
		if cfg.R2BucketName != "" {
			archive, err := utils.NewR2Archive(ctx, cfg.CloudflareAccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret, cfg.R2BucketName)
			if err != nil {
				return err
			}
			store = archive
		}
		digest := workers.NewDigestWorker(leaderboard, notifier, store, cfg.LeaderboardSize)
		if _, err := workers.StartDigestScheduler(ctx, cfg.DigestSchedule, digest); err != nil {
			return err
		}
		log.Printf("✅ Digest scheduled: %s", cfg.DigestSchedule)
	}

	app := newApp(cfg, completions, leaderboard, m)

	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	log.Printf("✅ Server running on %s", cfg.Port)
	log.Printf("✅ CORS configured for origins: %s", cfg.Origins())

	<-ctx.Done()
	log.Println("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}
