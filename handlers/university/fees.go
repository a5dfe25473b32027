package university

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
)

type UpsertFeesRequest struct {
	Fees    []services.FeeInput `json:"fees"`
	Replace bool                `json:"replace"`
}

type DeleteFeesRequest struct {
	Year *int `json:"year"`
	All  bool `json:"all"`
}

// UpsertFees handles POST /api/universities/:slug/fees
func (h *UniversityHandler) UpsertFees(c *fiber.Ctx) error {
	var req UpsertFeesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	u, err := h.findBySlug(c)
	if err != nil {
		return fetchError(c, err)
	}

	fees, err := h.fees.Upsert(c.UserContext(), u.ID, req.Fees, req.Replace)
	if err != nil {
		var verr *services.FeeValidationError
		if errors.As(err, &verr) {
			return response.ValidationError(c, verr.Fields)
		}
		log.Errorf("upsert fees for %s: %v", u.Slug, err)
		return response.InternalServerError(c, "Failed to save fees")
	}

	return response.SuccessWithMessage(c, "Fees saved successfully", fiber.Map{"fees": fees})
}

// DeleteFees handles DELETE /api/universities/:slug/fees
func (h *UniversityHandler) DeleteFees(c *fiber.Ctx) error {
	var req DeleteFeesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !req.All && req.Year == nil {
		return response.ValidationError(c, map[string]string{"year": "year or all is required"})
	}

	u, err := h.findBySlug(c)
	if err != nil {
		return fetchError(c, err)
	}

	if req.All {
		n, err := h.fees.DeleteAll(c.UserContext(), u.ID)
		if err != nil {
			log.Errorf("delete fees for %s: %v", u.Slug, err)
			return response.InternalServerError(c, "Failed to delete fees")
		}
		return response.SuccessWithMessage(c, "Fees deleted successfully", fiber.Map{"deleted": n})
	}

	if err := h.fees.DeleteYear(c.UserContext(), u.ID, *req.Year); err != nil {
		if errors.Is(err, services.ErrFeeNotFound) {
			return response.NotFound(c, "Fee year not found")
		}
		log.Errorf("delete fee year %d for %s: %v", *req.Year, u.Slug, err)
		return response.InternalServerError(c, "Failed to delete fee")
	}
	return response.SuccessWithMessage(c, "Fee deleted successfully", fiber.Map{"deleted": 1})
}
