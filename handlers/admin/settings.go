package admin

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/database"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var validator = validation.NewValidator()

// SiteSettingsRequest is a partial update of the landing page settings.
type SiteSettingsRequest struct {
	HeroTitle             *string `json:"hero_title" validate:"omitnil,max=500"`
	HeroSubtitle          *string `json:"hero_subtitle" validate:"omitnil,max=1000"`
	HeroVideoMP4URL       *string `json:"hero_video_mp4_url" validate:"omitempty,url"`
	HeroVideoWebmURL      *string `json:"hero_video_webm_url" validate:"omitempty,url"`
	HeroVideoPosterURL    *string `json:"hero_video_poster_url" validate:"omitempty,url"`
	BackgroundThemeID     *string `json:"background_theme_id" validate:"omitnil,max=100"`
	BackgroundGradientCSS *string `json:"background_gradient_css" validate:"omitnil,max=2000"`
}

// StatsRequest is a partial update of the public headline numbers.
type StatsRequest struct {
	StudentsSent       *int     `json:"students_sent" validate:"omitnil,gte=0"`
	YearsOfPartnership *int     `json:"years_of_partnership" validate:"omitnil,gte=0"`
	Countries          *int     `json:"countries" validate:"omitnil,gte=0"`
	SuccessRate        *float64 `json:"success_rate" validate:"omitnil,gte=0,lte=100"`
}

// PricesRequest sets the consultancy's prices.
type PricesRequest struct {
	ConsultationFee *float64 `json:"consultation_fee" validate:"omitnil,gte=0"`
	ApplicationFee  *float64 `json:"application_fee" validate:"omitnil,gte=0"`
	ServiceFee      *float64 `json:"service_fee" validate:"omitnil,gte=0"`
	Currency        *string  `json:"currency" validate:"omitnil,len=3"`
	Notes           *string  `json:"notes"`
}

func loadSettings(db *gorm.DB) (model.SiteSetting, error) {
	settings := model.SiteSetting{Key: model.SingletonKey}
	err := db.Where("key = ?", model.SingletonKey).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return settings, nil
	}
	return settings, err
}

// GetSiteSettings returns the landing page settings, or empty defaults
// before any have been saved.
// GET /settings/public and GET /settings/admin
func GetSiteSettings(c *fiber.Ctx, store database.Storage) error {
	settings, err := loadSettings(store.DB().WithContext(c.UserContext()))
	if err != nil {
		log.Errorf("load site settings: %v", err)
		return response.InternalServerError(c, "Failed to fetch settings")
	}
	return response.Success(c, settings)
}

// UpdateSiteSettings upserts the singleton settings row
// PUT /settings/admin
func UpdateSiteSettings(c *fiber.Ctx, store database.Storage) error {
	var req SiteSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	db := store.DB().WithContext(c.UserContext())
	settings, err := loadSettings(db)
	if err != nil {
		log.Errorf("load site settings: %v", err)
		return response.InternalServerError(c, "Failed to fetch settings")
	}

	for dst, v := range map[*string]*string{
		&settings.HeroTitle:             req.HeroTitle,
		&settings.HeroSubtitle:          req.HeroSubtitle,
		&settings.HeroVideoMP4URL:       req.HeroVideoMP4URL,
		&settings.HeroVideoWebmURL:      req.HeroVideoWebmURL,
		&settings.HeroVideoPosterURL:    req.HeroVideoPosterURL,
		&settings.BackgroundThemeID:     req.BackgroundThemeID,
		&settings.BackgroundGradientCSS: req.BackgroundGradientCSS,
	} {
		if v != nil {
			*dst = *v
		}
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&settings).Error; err != nil {
		log.Errorf("save site settings: %v", err)
		return response.InternalServerError(c, "Failed to save settings")
	}

	return response.SuccessWithMessage(c, "Settings updated successfully", settings)
}

// GetSiteStats returns the public headline numbers
// GET /stats/public
func GetSiteStats(c *fiber.Ctx, store database.Storage) error {
	stats := model.SiteStats{Key: model.SingletonKey}
	err := store.DB().WithContext(c.UserContext()).Where("key = ?", model.SingletonKey).First(&stats).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("load site stats: %v", err)
		return response.InternalServerError(c, "Failed to fetch statistics")
	}
	return response.Success(c, stats)
}

// UpdateSiteStats upserts the singleton stats row
// PUT /stats/admin
func UpdateSiteStats(c *fiber.Ctx, store database.Storage) error {
	var req StatsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	db := store.DB().WithContext(c.UserContext())
	stats := model.SiteStats{Key: model.SingletonKey}
	if err := db.Where("key = ?", model.SingletonKey).First(&stats).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("load site stats: %v", err)
		return response.InternalServerError(c, "Failed to fetch statistics")
	}

	if req.StudentsSent != nil {
		stats.StudentsSent = *req.StudentsSent
	}
	if req.YearsOfPartnership != nil {
		stats.YearsOfPartnership = *req.YearsOfPartnership
	}
	if req.Countries != nil {
		stats.Countries = *req.Countries
	}
	if req.SuccessRate != nil {
		stats.SuccessRate = *req.SuccessRate
	}
	stats.UpdatedAt = time.Now().UTC()

	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&stats).Error; err != nil {
		log.Errorf("save site stats: %v", err)
		return response.InternalServerError(c, "Failed to save statistics")
	}

	return response.SuccessWithMessage(c, "Statistics updated successfully", stats)
}

// GetPrices returns the first price row, or null when none exists.
// GET /prices
func GetPrices(c *fiber.Ctx, store database.Storage) error {
	var prices model.PriceSetting
	err := store.DB().WithContext(c.UserContext()).Order("created_at ASC").First(&prices).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.Success(c, fiber.Map{"prices": nil})
	}
	if err != nil {
		log.Errorf("load prices: %v", err)
		return response.InternalServerError(c, "Failed to fetch prices")
	}
	return response.Success(c, fiber.Map{"prices": prices})
}

func applyPrices(p *model.PriceSetting, req PricesRequest) {
	if req.ConsultationFee != nil {
		p.ConsultationFee = *req.ConsultationFee
	}
	if req.ApplicationFee != nil {
		p.ApplicationFee = *req.ApplicationFee
	}
	if req.ServiceFee != nil {
		p.ServiceFee = *req.ServiceFee
	}
	if req.Currency != nil {
		p.Currency = *req.Currency
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
}

// CreatePrices stores a price row
// POST /prices/admin
func CreatePrices(c *fiber.Ctx, store database.Storage) error {
	var req PricesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	prices := model.PriceSetting{Currency: "INR"}
	applyPrices(&prices, req)
	if err := store.DB().WithContext(c.UserContext()).Create(&prices).Error; err != nil {
		log.Errorf("create prices: %v", err)
		return response.InternalServerError(c, "Failed to save prices")
	}
	return response.CreatedWithMessage(c, "Prices created successfully", fiber.Map{"prices": prices})
}

// UpdatePrices changes an existing price row
// PUT /prices/admin/:id
func UpdatePrices(c *fiber.Ctx, store database.Storage) error {
	var req PricesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	db := store.DB().WithContext(c.UserContext())
	var prices model.PriceSetting
	if err := db.Where("id = ?", c.Params("id")).First(&prices).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Prices not found")
		}
		return response.InternalServerError(c, "Failed to fetch prices")
	}

	applyPrices(&prices, req)
	if err := db.Save(&prices).Error; err != nil {
		log.Errorf("update prices: %v", err)
		return response.InternalServerError(c, "Failed to save prices")
	}
	return response.SuccessWithMessage(c, "Prices updated successfully", fiber.Map{"prices": prices})
}
