// handlers/dashboard_routes.go
package handlers

import (
	"errors"
	"time"

	"linear-gamification/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxLeaderboardLimit = 100

// SetupDashboardRoutes registers the public read-only API consumed by the dashboard.
func SetupDashboardRoutes(app *fiber.App, leaderboard *services.LeaderboardService, defaultLimit int, now func() time.Time) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Gamification backend is running!")
	})

	api := app.Group("/api")

	api.Get("/leaderboard", func(c *fiber.Ctx) error {
		rows, err := leaderboard.TopByXP(c.UserContext(), limitParam(c, defaultLimit))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(rows)
	})

	api.Get("/achievements", func(c *fiber.Ctx) error {
		rows, err := leaderboard.AchievementsWithUsers(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load achievements",
				"cause": err.Error(),
			})
		}
		return c.JSON(rows)
	})

	api.Get("/levels", func(c *fiber.Ctx) error {
		rows, err := leaderboard.Levels(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load levels",
				"cause": err.Error(),
			})
		}
		return c.JSON(rows)
	})

	api.Get("/top-monthly-xp", func(c *fiber.Ctx) error {
		rows, err := leaderboard.TopMonthly(c.UserContext(), now(), limitParam(c, defaultLimit))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load monthly xp",
				"cause": err.Error(),
			})
		}
		return c.JSON(rows)
	})

	api.Get("/employees/:id", func(c *fiber.Ctx) error {
		emp, err := leaderboard.FindEmployee(c.UserContext(), c.Params("id"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "employee not found",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "DB error fetching employee",
				"cause": err.Error(),
			})
		}
		levels, err := leaderboard.LevelTable(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load levels",
				"cause": err.Error(),
			})
		}
		progress := levels.ForXP(emp.XP)
		return c.JSON(fiber.Map{
			"id":             emp.ID,
			"name":           emp.Name,
			"xp":             emp.XP,
			"level":          emp.Level,
			"level_name":     levels.Name(emp.Level),
			"xp_to_next":     progress.XPToNext,
			"next_level_xp":  progress.NextLevelXP,
			"current_streak": emp.CurrentStreak,
			"max_streak":     emp.MaxStreak,
		})
	})
}

func limitParam(c *fiber.Ctx, def int) int {
	limit := c.QueryInt("limit", def)
	if limit <= 0 || limit > maxLeaderboardLimit {
		return def
	}
	return limit
}
