package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"gorm.io/gorm"
)

// AdminAuditLog records every mutating request that passes through it.
// It must run after RequireAdmin so the caller is known.
func AdminAuditLog(db *gorm.DB, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}

		err := c.Next()

		user, ok := GetUser(c)
		if !ok {
			return err
		}

		entry := model.AdminAuditLog{
			AdminID:     user.ID,
			AdminEmail:  user.Email,
			Action:      c.Method(),
			Resource:    resource,
			ResourceID:  firstParam(c, "id", "slug"),
			StatusCode:  c.Response().StatusCode(),
			IPAddress:   c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
			Description: c.Method() + " " + c.OriginalURL(),
		}
		if dbErr := db.WithContext(c.UserContext()).Create(&entry).Error; dbErr != nil {
			log.Warnf("audit log write failed: %v", dbErr)
		}

		return err
	}
}

func firstParam(c *fiber.Ctx, names ...string) string {
	for _, n := range names {
		if v := c.Params(n); v != "" {
			return v
		}
	}
	return ""
}
