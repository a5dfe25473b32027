package university

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"github.com/mathwaksu-byte/MathwaV2/utils/query"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const adminPageSize = 25

// UniversityHandler handles university, fee and university media requests
type UniversityHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	fees      *services.FeeService
	uploads   *services.UploadService
}

func NewUniversityHandler(db *gorm.DB, uploads *services.UploadService) *UniversityHandler {
	return &UniversityHandler{
		db:        db,
		validator: validation.NewValidator(),
		fees:      services.NewFeeService(db),
		uploads:   uploads,
	}
}

// CreateUniversityRequest represents the request body for creating a university
type CreateUniversityRequest struct {
	Slug          string   `json:"slug" validate:"required,max=160,slug"`
	Name          string   `json:"name" validate:"required,max=255"`
	Country       string   `json:"country" validate:"max=100"`
	City          string   `json:"city" validate:"max=100"`
	Overview      string   `json:"overview"`
	Description   string   `json:"description"`
	Ranking       *int     `json:"ranking" validate:"omitnil,gte=1"`
	TuitionFee    *float64 `json:"tuition_fee" validate:"omitnil,gte=0"`
	Duration      string   `json:"duration" validate:"max=100"`
	Medium        string   `json:"medium" validate:"max=100"`
	ImageURL      string   `json:"image_url" validate:"omitempty,url"`
	HeroImageURL  string   `json:"hero_image_url" validate:"omitempty,url"`
	LogoURL       string   `json:"logo_url" validate:"omitempty,url"`
	GalleryURLs   []string `json:"gallery_urls" validate:"omitempty,dive,url"`
	Accreditation []string `json:"accreditation"`
	IntakeMonths  []string `json:"intake_months"`
	Recognition   []string `json:"recognition"`
	IsActive      *bool    `json:"is_active"`
}

// UpdateUniversityRequest carries only the fields to change. Slug may be
// echoed back but never changed.
type UpdateUniversityRequest struct {
	Slug          *string   `json:"slug"`
	Name          *string   `json:"name" validate:"omitnil,min=1,max=255"`
	Country       *string   `json:"country" validate:"omitnil,max=100"`
	City          *string   `json:"city" validate:"omitnil,max=100"`
	Overview      *string   `json:"overview"`
	Description   *string   `json:"description"`
	Ranking       *int      `json:"ranking" validate:"omitnil,gte=1"`
	TuitionFee    *float64  `json:"tuition_fee" validate:"omitnil,gte=0"`
	Duration      *string   `json:"duration" validate:"omitnil,max=100"`
	Medium        *string   `json:"medium" validate:"omitnil,max=100"`
	ImageURL      *string   `json:"image_url" validate:"omitempty,url"`
	Accreditation *[]string `json:"accreditation"`
	IntakeMonths  *[]string `json:"intake_months"`
	Recognition   *[]string `json:"recognition"`
	IsActive      *bool     `json:"is_active"`
}

func cleanList(in []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (h *UniversityHandler) findBySlug(c *fiber.Ctx) (*model.University, error) {
	var u model.University
	if err := h.db.WithContext(c.UserContext()).Where("slug = ?", c.Params("slug")).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (h *UniversityHandler) findByID(c *fiber.Ctx) (*model.University, error) {
	var u model.University
	if err := h.db.WithContext(c.UserContext()).Where("id = ?", c.Params("id")).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func fetchError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "University not found")
	}
	log.Errorf("fetch university: %v", err)
	return response.InternalServerError(c, "Failed to fetch university")
}

// ListUniversities handles GET /api/universities
func (h *UniversityHandler) ListUniversities(c *fiber.Ctx) error {
	q := h.db.WithContext(c.UserContext()).Model(&model.University{}).Where("is_active = ?", true)

	if country := strings.TrimSpace(c.Query("country")); country != "" {
		q = q.Where("LOWER(country) = ?", strings.ToLower(country))
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", query.LikePattern(search))
	}

	universities := make([]model.University, 0)
	if err := q.Order("created_at DESC").Find(&universities).Error; err != nil {
		log.Errorf("list universities: %v", err)
		return response.InternalServerError(c, "Failed to fetch universities")
	}

	return response.List(c, universities)
}

// GetUniversity handles GET /api/universities/:slug
func (h *UniversityHandler) GetUniversity(c *fiber.Ctx) error {
	var u model.University
	err := h.db.WithContext(c.UserContext()).
		Where("slug = ? AND is_active = ?", c.Params("slug"), true).
		First(&u).Error
	if err != nil {
		return fetchError(c, err)
	}

	fees, err := h.fees.List(c.UserContext(), u.ID)
	if err != nil {
		log.Errorf("list fees for %s: %v", u.Slug, err)
		return response.InternalServerError(c, "Failed to fetch fees")
	}

	return response.Success(c, fiber.Map{"university": u, "fees": fees})
}

// AdminListUniversities handles GET /api/universities/admin/all
func (h *UniversityHandler) AdminListUniversities(c *fiber.Ctx) error {
	page := query.ParsePage(c, adminPageSize)
	q := h.db.WithContext(c.UserContext()).Model(&model.University{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := query.LikePattern(search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(slug) LIKE ? ESCAPE '\\' OR LOWER(country) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern)
	}
	if active, ok := query.ParseBool(c.Query("is_active")); ok {
		q = q.Where("is_active = ?", active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Errorf("count universities: %v", err)
		return response.InternalServerError(c, "Failed to count universities")
	}

	universities := make([]model.University, 0)
	if err := q.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&universities).Error; err != nil {
		log.Errorf("list universities: %v", err)
		return response.InternalServerError(c, "Failed to fetch universities")
	}

	return response.Paginated(c, universities, response.CalculatePagination(page.Page, page.Limit, total))
}

// AdminGetUniversity handles GET /api/universities/admin/:id
func (h *UniversityHandler) AdminGetUniversity(c *fiber.Ctx) error {
	u, err := h.findByID(c)
	if err != nil {
		return fetchError(c, err)
	}
	fees, err := h.fees.List(c.UserContext(), u.ID)
	if err != nil {
		log.Errorf("list fees for %s: %v", u.Slug, err)
		return response.InternalServerError(c, "Failed to fetch fees")
	}
	u.Fees = fees
	return response.Success(c, u)
}

// CreateUniversity handles POST /api/universities/admin
func (h *UniversityHandler) CreateUniversity(c *fiber.Ctx) error {
	var req CreateUniversityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Slug = strings.TrimSpace(req.Slug)
	if fields := h.validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	var existing int64
	if err := h.db.WithContext(c.UserContext()).Model(&model.University{}).Where("slug = ?", req.Slug).Count(&existing).Error; err != nil {
		log.Errorf("check slug: %v", err)
		return response.InternalServerError(c, "Failed to create university")
	}
	if existing > 0 {
		return response.Conflict(c, "University with this slug already exists")
	}

	gallery := cleanList(req.GalleryURLs)
	university := model.University{
		Slug:          req.Slug,
		Name:          validation.SanitizeString(req.Name),
		Country:       validation.SanitizeString(req.Country),
		City:          validation.SanitizeString(req.City),
		Overview:      req.Overview,
		Description:   req.Description,
		Ranking:       req.Ranking,
		TuitionFee:    req.TuitionFee,
		Duration:      req.Duration,
		Medium:        req.Medium,
		ImageURL:      req.ImageURL,
		HeroImageURL:  req.HeroImageURL,
		LogoURL:       req.LogoURL,
		GalleryURLs:   gallery,
		GalleryPaths:  make(datatypes.JSONSlice[string], len(gallery)),
		Accreditation: cleanList(req.Accreditation),
		IntakeMonths:  cleanList(req.IntakeMonths),
		Recognition:   cleanList(req.Recognition),
		IsActive:      req.IsActive == nil || *req.IsActive,
	}

	if err := h.db.WithContext(c.UserContext()).Create(&university).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "University with this slug already exists")
		}
		log.Errorf("create university: %v", err)
		return response.InternalServerError(c, "Failed to create university")
	}

	return response.CreatedWithMessage(c, "University created successfully", university)
}

// UpdateUniversity handles PUT /api/universities/admin/:id
func (h *UniversityHandler) UpdateUniversity(c *fiber.Ctx) error {
	var req UpdateUniversityRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := h.validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}

	u, err := h.findByID(c)
	if err != nil {
		return fetchError(c, err)
	}

	if req.Slug != nil && strings.TrimSpace(*req.Slug) != u.Slug {
		return response.ValidationError(c, map[string]string{"slug": "slug cannot be changed"})
	}

	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = validation.SanitizeString(*v)
		}
	}
	setString(&u.Name, req.Name)
	setString(&u.Country, req.Country)
	setString(&u.City, req.City)
	setString(&u.Duration, req.Duration)
	setString(&u.Medium, req.Medium)
	setString(&u.ImageURL, req.ImageURL)
	if req.Overview != nil {
		u.Overview = *req.Overview
	}
	if req.Description != nil {
		u.Description = *req.Description
	}
	if req.Ranking != nil {
		u.Ranking = req.Ranking
	}
	if req.TuitionFee != nil {
		u.TuitionFee = req.TuitionFee
	}
	if req.Accreditation != nil {
		u.Accreditation = cleanList(*req.Accreditation)
	}
	if req.IntakeMonths != nil {
		u.IntakeMonths = cleanList(*req.IntakeMonths)
	}
	if req.Recognition != nil {
		u.Recognition = cleanList(*req.Recognition)
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(c.UserContext()).Save(u).Error; err != nil {
		log.Errorf("update university %s: %v", u.ID, err)
		return response.InternalServerError(c, "Failed to update university")
	}

	return response.SuccessWithMessage(c, "University updated successfully", u)
}

// ToggleUniversity handles PATCH /api/universities/admin/:id/toggle
func (h *UniversityHandler) ToggleUniversity(c *fiber.Ctx) error {
	u, err := h.findByID(c)
	if err != nil {
		return fetchError(c, err)
	}

	u.IsActive = !u.IsActive
	if err := h.db.WithContext(c.UserContext()).Model(u).Update("is_active", u.IsActive).Error; err != nil {
		log.Errorf("toggle university %s: %v", u.ID, err)
		return response.InternalServerError(c, "Failed to update university")
	}

	return response.SuccessWithMessage(c, "University status updated", u)
}

// DeleteUniversity handles DELETE /api/universities/admin/:id
// Rows go in one transaction; stored media is removed afterwards and
// failures there are only logged.
func (h *UniversityHandler) DeleteUniversity(c *fiber.Ctx) error {
	ctx := c.UserContext()
	u, err := h.findByID(c)
	if err != nil {
		return fetchError(c, err)
	}

	var images []model.GalleryImage
	if err := h.db.WithContext(ctx).Where("university_id = ?", u.ID).Find(&images).Error; err != nil {
		log.Errorf("list gallery images for %s: %v", u.ID, err)
		return response.InternalServerError(c, "Failed to delete university")
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []interface{}{&model.Fee{}, &model.Program{}, &model.GalleryImage{}} {
			if err := tx.Where("university_id = ?", u.ID).Delete(table).Error; err != nil {
				return err
			}
		}
		return tx.Delete(u).Error
	})
	if err != nil {
		log.Errorf("delete university %s: %v", u.ID, err)
		return response.InternalServerError(c, "Failed to delete university")
	}

	deleted := h.uploads.Delete(ctx, mediaRefs(u, images)...)
	return response.SuccessWithMessage(c, "University and related data deleted successfully", fiber.Map{"deleted_objects": deleted})
}

// mediaRefs lists every stored object a university owns.
func mediaRefs(u *model.University, images []model.GalleryImage) []storage.Ref {
	refs := []storage.Ref{
		{Bucket: storage.BucketUniversityImages, Path: u.HeroImagePath, URL: u.HeroImageURL},
		{Bucket: storage.BucketUniversityImages, Path: u.LogoPath, URL: u.LogoURL},
	}
	for i, url := range u.GalleryURLs {
		ref := storage.Ref{Bucket: storage.BucketUniversityImages, URL: url}
		if i < len(u.GalleryPaths) {
			ref.Path = u.GalleryPaths[i]
		}
		refs = append(refs, ref)
	}
	for _, img := range images {
		if img.StoragePath != "" {
			refs = append(refs, storage.Ref{Bucket: img.StorageBucket, Path: img.StoragePath})
		}
	}
	return refs
}
