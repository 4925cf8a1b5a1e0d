// handlers/webhook_routes.go
package handlers

import (
	"errors"
	"log"

	"linear-gamification/metrics"
	"linear-gamification/middleware"
	"linear-gamification/services"

	"github.com/gofiber/fiber/v2"
)

// SetupWebhookRoutes registers the Linear ingestion endpoint.
func SetupWebhookRoutes(app *fiber.App, completions *services.CompletionService, m *metrics.Manager, secret string) {
	app.Post("/api/linear-webhook", middleware.LinearSignatureMiddleware(secret), func(c *fiber.Ctx) error {
		ev, err := services.ParseCompletionEvent(c.Body())
		if err != nil {
			m.RecordWebhook(metrics.OutcomeRejected)
			msg := "invalid webhook delivery"
			if errors.Is(err, services.ErrMissingTaskID) {
				msg = "No task ID found"
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": msg,
				"cause": err.Error(),
			})
		}
		if ev == nil {
			m.RecordWebhook(metrics.OutcomeIgnored)
			return c.JSON(fiber.Map{"status": "ignored"})
		}

		result, err := completions.ProcessCompletion(c.UserContext(), *ev)
		if err != nil {
			m.RecordWebhook(metrics.OutcomeFailed)
			log.Printf("❌ [WEBHOOK] Error updating XP/level for task %s: %v", ev.TaskID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error updating XP/level",
				"cause": err.Error(),
			})
		}
		if result.Status == services.StatusDuplicate {
			m.RecordWebhook(metrics.OutcomeDuplicate)
			log.Printf("➡️ [WEBHOOK] Task %s already processed", ev.TaskID)
		} else {
			m.RecordWebhook(metrics.OutcomeProcessed)
		}
		return c.JSON(result)
	})
}
