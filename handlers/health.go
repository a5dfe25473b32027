package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
)

// HandleCheckHealth pings the database and reports the service status.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if err := store.HealthCheck(ctx); err != nil {
		log.Errorf("health check failed: %v", err)
		return response.ServiceUnavailable(c, "Database unavailable")
	}

	return response.Success(c, fiber.Map{
		"status":   "ok",
		"database": "ok",
		"time":     time.Now().UTC(),
	})
}

func HandlePing(c *fiber.Ctx) error {
	return c.SendString("pong")
}
