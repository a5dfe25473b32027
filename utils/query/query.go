// Package query parses list query parameters shared by the handlers.
package query

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// MaxLimit caps page sizes requested by clients.
const MaxLimit = 100

// Page is a parsed page/limit pair.
type Page struct {
	Page  int
	Limit int
}

// Offset is the row offset of the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads ?page and ?limit. Missing or malformed values fall back
// to page 1 and defaultLimit; limit is capped at MaxLimit.
func ParsePage(c *fiber.Ctx, defaultLimit int) Page {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// ParseBool understands the truthy spellings form posts send: true, 1, on,
// yes. The second result is false when raw is empty or unrecognised.
func ParseBool(raw string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "on", "yes":
		return true, true
	case "false", "0", "off", "no":
		return false, true
	}
	return false, false
}

// LikePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func LikePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	term = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(term)
	return "%" + term + "%"
}
