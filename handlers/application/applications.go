package application

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
	"gorm.io/gorm"
)

const (
	adminPageSize = 20

	SubmittedMessage = "Application submitted successfully. Our counsellors will contact you shortly."
)

// ApplicationHandler handles lead submission and review
type ApplicationHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	leads     *services.LeadDispatcher
	uploads   *services.UploadService
}

func NewApplicationHandler(db *gorm.DB, leads *services.LeadDispatcher, uploads *services.UploadService) *ApplicationHandler {
	return &ApplicationHandler{
		db:        db,
		validator: validation.NewValidator(),
		leads:     leads,
		uploads:   uploads,
	}
}

type UpdateStatusRequest struct {
	Status model.ApplicationStatus `json:"status" validate:"required"`
	Notes  *string                 `json:"notes"`
}

// CreateApplication handles POST /api/applications
func (h *ApplicationHandler) CreateApplication(c *fiber.Ctx) error {
	req, err := parseApplication(c)
	if err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if fields := req.fieldErrors(h.validator); fields != nil {
		return response.ValidationError(c, fields)
	}

	app := model.Application{
		Name:                    req.displayName(),
		Email:                   req.Email,
		Phone:                   req.Phone,
		City:                    req.City,
		NEETQualified:           bool(req.NEETQualified),
		PreferredUniversitySlug: req.PreferredUniversitySlug,
		PreferredYear:           req.PreferredYear.Value,
		MarksheetURL:            req.MarksheetURL,
		MarksheetPath:           h.marksheetKey(req.MarksheetPath, req.MarksheetURL),
		Status:                  model.ApplicationPending,
		Source:                  "apply",
	}

	if err := h.db.WithContext(c.UserContext()).Create(&app).Error; err != nil {
		log.Errorf("create application: %v", err)
		return response.InternalServerError(c, "Failed to submit application")
	}

	h.leads.Dispatch(services.ApplicationEvent(&app))

	return response.CreatedWithMessage(c, SubmittedMessage, fiber.Map{
		"application": app,
		"message":     SubmittedMessage,
	})
}

// ListApplications handles GET /api/applications/admin
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	page := query.ParsePage(c, adminPageSize)
	q := h.db.WithContext(c.UserContext()).Model(&model.Application{})

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !model.ApplicationStatus(status).Valid() {
			return response.ValidationError(c, map[string]string{"status": "status must be one of: pending reviewing approved rejected"})
		}
		q = q.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := query.LikePattern(search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR LOWER(phone) LIKE ? ESCAPE '\\' OR LOWER(city) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Errorf("count applications: %v", err)
		return response.InternalServerError(c, "Failed to count applications")
	}

	apps := make([]model.Application, 0)
	if err := q.Order("created_at DESC").Limit(page.Limit).Offset(page.Offset()).Find(&apps).Error; err != nil {
		log.Errorf("list applications: %v", err)
		return response.InternalServerError(c, "Failed to fetch applications")
	}

	return response.Paginated(c, apps, response.CalculatePagination(page.Page, page.Limit, total))
}

func (h *ApplicationHandler) find(c *fiber.Ctx) (*model.Application, error) {
	var app model.Application
	err := h.db.WithContext(c.UserContext()).Where("id = ?", c.Params("id")).First(&app).Error
	return &app, err
}

func fetchError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "Application not found")
	}
	log.Errorf("fetch application: %v", err)
	return response.InternalServerError(c, "Failed to fetch application")
}

// GetApplication handles GET /api/applications/admin/:id
func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	app, err := h.find(c)
	if err != nil {
		return fetchError(c, err)
	}
	return response.Success(c, app)
}

// UpdateStatus handles PATCH /api/applications/admin/:id/status
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Status = model.ApplicationStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if fields := h.validator.Validate(req); fields != nil {
		return response.ValidationError(c, fields)
	}
	if !req.Status.Valid() {
		return response.ValidationError(c, map[string]string{"status": "status must be one of: pending reviewing approved rejected"})
	}

	app, err := h.find(c)
	if err != nil {
		return fetchError(c, err)
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Notes != nil {
		updates["notes"] = strings.TrimSpace(*req.Notes)
	}
	if err := h.db.WithContext(c.UserContext()).Model(app).Updates(updates).Error; err != nil {
		log.Errorf("update application %s: %v", app.ID, err)
		return response.InternalServerError(c, "Failed to update application")
	}

	app.Status = req.Status
	if req.Notes != nil {
		app.Notes = strings.TrimSpace(*req.Notes)
	}
	return response.SuccessWithMessage(c, "Application status updated", app)
}

// marksheetKey returns the storage key a submitted marksheet may be
// tracked under. Keys outside the marksheet folder, and keys whose public
// URL differs from the submitted URL, are dropped.
func (h *ApplicationHandler) marksheetKey(path, url string) string {
	if path == "" {
		return ""
	}
	key, err := storage.CleanKey(path)
	if err != nil || !strings.HasPrefix(key, storage.FolderMarksheets+"/") {
		return ""
	}
	if url != "" && h.uploads != nil && h.uploads.Provider().PublicURL(storage.BucketDocuments, key) != url {
		return ""
	}
	return key
}

// DeleteApplication handles DELETE /api/applications/admin/:id
// The uploaded marksheet goes with it.
func (h *ApplicationHandler) DeleteApplication(c *fiber.Ctx) error {
	app, err := h.find(c)
	if err != nil {
		return fetchError(c, err)
	}

	if err := h.db.WithContext(c.UserContext()).Delete(app).Error; err != nil {
		log.Errorf("delete application %s: %v", app.ID, err)
		return response.InternalServerError(c, "Failed to delete application")
	}

	if app.MarksheetPath != "" && h.uploads != nil {
		var refs int64
		err := h.db.WithContext(c.UserContext()).Model(&model.Application{}).
			Where("marksheet_path = ?", app.MarksheetPath).
			Count(&refs).Error
		switch {
		case err != nil:
			log.Warnf("check marksheet references for %s: %v", app.MarksheetPath, err)
		case refs == 0:
			h.uploads.Delete(c.UserContext(), storage.Ref{Bucket: storage.BucketDocuments, Path: app.MarksheetPath})
		}
	}

	return response.SuccessWithMessage(c, "Application deleted successfully", nil)
}
