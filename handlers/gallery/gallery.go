package gallery

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mathwaksu-byte/MathwaV2/handlers/resource"
	"github.com/mathwaksu-byte/MathwaV2/handlers/upload"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"github.com/mathwaksu-byte/MathwaV2/utils/query"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"github.com/mathwaksu-byte/MathwaV2/utils/validation"
	"gorm.io/gorm"
)

type CreateGalleryRequest struct {
	URL          string  `json:"url" validate:"required,url"`
	Title        string  `json:"title" validate:"max=255"`
	UniversityID *string `json:"university_id"`
	DisplayOrder int     `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

func (r CreateGalleryRequest) Apply(g *model.GalleryImage) {
	g.URL = r.URL
	g.Title = validation.SanitizeString(r.Title)
	g.UniversityID = normaliseID(r.UniversityID)
	g.DisplayOrder = r.DisplayOrder
	g.IsActive = r.IsActive == nil || *r.IsActive
}

type UpdateGalleryRequest struct {
	Title        *string `json:"title" validate:"omitnil,max=255"`
	UniversityID *string `json:"university_id"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

func (r UpdateGalleryRequest) Apply(g *model.GalleryImage) {
	if r.Title != nil {
		g.Title = validation.SanitizeString(*r.Title)
	}
	if r.UniversityID != nil {
		g.UniversityID = normaliseID(r.UniversityID)
	}
	if r.DisplayOrder != nil {
		g.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		g.IsActive = *r.IsActive
	}
}

// normaliseID maps a blank id to nil so the image is unlinked.
func normaliseID(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	v := strings.TrimSpace(*id)
	return &v
}

// GalleryHandler serves /gallery. Images are either uploaded here or
// registered by URL.
type GalleryHandler struct {
	*resource.Handler[model.GalleryImage, CreateGalleryRequest, UpdateGalleryRequest]
	uploads *services.UploadService
}

func NewGalleryHandler(db *gorm.DB, uploads *services.UploadService) *GalleryHandler {
	h := &GalleryHandler{uploads: uploads}
	h.Handler = resource.New[model.GalleryImage, CreateGalleryRequest, UpdateGalleryRequest](db, resource.Config[model.GalleryImage]{
		Name:         "Gallery image",
		ActiveColumn: "is_active",
		Filters:      map[string]string{"university_id": "university_id"},
		Search:       []string{"title"},
		Order:        "display_order ASC, created_at ASC",
		Prepare:      checkUniversity,
		AfterDelete: func(ctx context.Context, g *model.GalleryImage) {
			if g.StoragePath == "" {
				// registered by URL; not ours to delete
				return
			}
			uploads.Delete(ctx, storage.Ref{Bucket: g.StorageBucket, Path: g.StoragePath, URL: g.URL})
		},
	})
	return h
}

func checkUniversity(ctx context.Context, db *gorm.DB, g *model.GalleryImage) error {
	if g.UniversityID == nil {
		return nil
	}
	var u model.University
	err := db.Select("id").Where("id = ?", *g.UniversityID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return resource.FieldErrors{"university_id": "university does not exist"}
	}
	return err
}

// Register mounts the routes, replacing the generic create with one that
// also accepts multipart uploads.
func (h *GalleryHandler) Register(r fiber.Router, admin ...fiber.Handler) {
	r.Get("/", h.ListPublic)

	group := r.Group("/admin", admin...)
	group.Get("/", h.ListAdmin)
	group.Get("/:id", h.GetAdmin)
	group.Post("/", h.Create)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)

	r.Get("/:key", h.GetPublic)
}

// Create handles POST /api/gallery/admin. A multipart body must carry a
// "file"; anything else is treated as a JSON registration of an existing
// URL.
func (h *GalleryHandler) Create(c *fiber.Ctx) error {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return h.Handler.Create(c)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, map[string]string{"file": "file is required"})
	}

	image := model.GalleryImage{
		Title:        validation.SanitizeString(c.FormValue("title")),
		UniversityID: normaliseID(stringPtr(c.FormValue("university_id"))),
		IsActive:     true,
	}
	if v := c.FormValue("display_order"); v != "" {
		order, err := strconv.Atoi(v)
		if err != nil {
			return response.ValidationError(c, map[string]string{"display_order": "display_order must be an integer"})
		}
		image.DisplayOrder = order
	}
	if active, ok := query.ParseBool(c.FormValue("is_active")); ok {
		image.IsActive = active
	}

	// reject a bad university before anything is stored
	if err := checkUniversity(c.UserContext(), h.DB().WithContext(c.UserContext()), &image); err != nil {
		var fields resource.FieldErrors
		if errors.As(err, &fields) {
			return response.ValidationError(c, fields)
		}
		return response.InternalServerError(c, "")
	}

	folder := "general"
	if image.UniversityID != nil {
		folder = "universities/" + *image.UniversityID
	}
	obj, err := h.uploads.UploadFile(c.UserContext(), fh, services.UploadOptions{
		Bucket:     storage.BucketGallery,
		Folder:     folder,
		ImagesOnly: true,
	})
	if err != nil {
		return upload.RespondError(c, err)
	}

	image.URL = obj.URL
	image.StorageBucket = obj.Bucket
	image.StoragePath = obj.Path

	if err := h.CreateEntity(c, &image); err != nil {
		return err
	}
	if c.Response().StatusCode() != fiber.StatusCreated {
		h.uploads.Delete(c.UserContext(), storage.Ref{Bucket: obj.Bucket, Path: obj.Path})
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}
