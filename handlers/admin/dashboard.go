package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
)

// GetDashboard returns the back-office headline counts, recomputed on
// every call.
// GET /admin/dashboard
func GetDashboard(c *fiber.Ctx, store database.Storage) error {
	stats, err := services.NewDashboardService(store.Direct()).Stats(c.UserContext())
	if err != nil {
		log.Errorf("dashboard stats: %v", err)
		return response.InternalServerError(c, "Failed to compute dashboard statistics")
	}
	return response.Success(c, stats)
}
