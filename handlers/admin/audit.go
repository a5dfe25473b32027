package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/utils/query"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"gorm.io/gorm"
)

// ListAuditLogs retrieves admin audit logs with pagination
// GET /admin/audit-logs
func ListAuditLogs(c *fiber.Ctx, store database.Storage) error {
	page := query.ParsePage(c, 50)

	q := store.DB().WithContext(c.UserContext()).Model(&model.AdminAuditLog{})
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		q = q.Where("resource = ?", resource)
	}
	if adminID := c.Query("admin_id"); adminID != "" {
		q = q.Where("admin_id = ?", adminID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count audit logs")
	}

	logs := make([]model.AdminAuditLog, 0)
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch audit logs")
	}

	return response.Paginated(c, logs, response.CalculatePagination(page.Page, page.Limit, total))
}

// GetAuditLog retrieves a specific audit log entry
// GET /admin/audit-logs/:id
func GetAuditLog(c *fiber.Ctx, store database.Storage) error {
	var entry model.AdminAuditLog
	if err := store.DB().WithContext(c.UserContext()).Where("id = ?", c.Params("id")).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Audit log not found")
		}
		return response.InternalServerError(c, "Failed to fetch audit log")
	}

	return response.Success(c, entry)
}
