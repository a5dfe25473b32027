package upload

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"github.com/mathwaksu-byte/MathwaV2/utils/pdfvalidation"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
)

const (
	MaxMultipleFiles = 10
	DefaultBucket    = storage.BucketUploads
)

// UploadHandler stores admin media and public marksheets.
type UploadHandler struct {
	uploads *services.UploadService
}

func NewUploadHandler(uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// RespondError maps an upload failure to its response.
func RespondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrFileTooLarge):
		return response.Error(c, fiber.StatusRequestEntityTooLarge, "File exceeds the maximum allowed size", "FILE_TOO_LARGE")
	case errors.Is(err, services.ErrUnsupportedType), errors.Is(err, services.ErrImageRequired):
		return response.Error(c, fiber.StatusUnsupportedMediaType, err.Error(), "UNSUPPORTED_FILE_TYPE")
	case errors.Is(err, services.ErrBucketNotAllowed):
		return response.ValidationError(c, map[string]string{"bucket": "bucket is not allowed"})
	case errors.Is(err, services.ErrInvalidDocument), errors.Is(err, services.ErrEmptyFile):
		return response.ValidationError(c, map[string]string{"file": err.Error()})
	}
	log.Errorf("upload failed: %v", err)
	return response.InternalServerError(c, "Failed to upload file")
}

func bucketFrom(c *fiber.Ctx) string {
	if b := strings.TrimSpace(c.FormValue("bucket")); b != "" {
		return b
	}
	return DefaultBucket
}

// UploadSingle handles POST /api/uploads/single
func (h *UploadHandler) UploadSingle(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, map[string]string{"file": "file is required"})
	}

	obj, err := h.uploads.UploadFile(c.UserContext(), fh, services.UploadOptions{
		Bucket: bucketFrom(c),
		Folder: c.FormValue("folder"),
	})
	if err != nil {
		return RespondError(c, err)
	}

	return response.CreatedWithMessage(c, "File uploaded successfully", fiber.Map{"file": obj})
}

// UploadMultiple handles POST /api/uploads/multiple. Files already stored
// are removed again when a later one fails.
func (h *UploadHandler) UploadMultiple(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Expected multipart form data")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return response.ValidationError(c, map[string]string{"files": "at least one file is required"})
	}
	if len(files) > MaxMultipleFiles {
		return response.ValidationError(c, map[string]string{"files": "at most 10 files per request"})
	}

	objects, err := h.storeAll(c, files, services.UploadOptions{
		Bucket: bucketFrom(c),
		Folder: c.FormValue("folder"),
	})
	if err != nil {
		return RespondError(c, err)
	}

	return response.CreatedWithMessage(c, "Files uploaded successfully", fiber.Map{"files": objects})
}

func (h *UploadHandler) storeAll(c *fiber.Ctx, files []*multipart.FileHeader, opts services.UploadOptions) ([]storage.Object, error) {
	ctx := c.UserContext()
	objects := make([]storage.Object, 0, len(files))
	for _, fh := range files {
		obj, err := h.uploads.UploadFile(ctx, fh, opts)
		if err != nil {
			refs := make([]storage.Ref, len(objects))
			for i, o := range objects {
				refs[i] = storage.Ref{Bucket: o.Bucket, Path: o.Path}
			}
			h.uploads.Delete(ctx, refs...)
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// UploadMarksheet handles POST /api/uploads/marksheet. It is public so the
// apply form can attach a marksheet before submitting.
func (h *UploadHandler) UploadMarksheet(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, map[string]string{"file": "file is required"})
	}

	limits := pdfvalidation.MarksheetLimits
	obj, err := h.uploads.UploadFile(c.UserContext(), fh, services.UploadOptions{
		Bucket:    storage.BucketDocuments,
		Folder:    storage.FolderMarksheets,
		PDFLimits: &limits,
	})
	if err != nil {
		return RespondError(c, err)
	}

	return response.CreatedWithMessage(c, "Marksheet uploaded successfully", fiber.Map{"file": obj})
}

type DeleteFileRequest struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	URL    string `json:"url"`
}

// DeleteFile handles DELETE /api/uploads
func (h *UploadHandler) DeleteFile(c *fiber.Ctx) error {
	var req DeleteFileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	ref := storage.Ref{Bucket: strings.TrimSpace(req.Bucket), Path: strings.TrimSpace(req.Path), URL: strings.TrimSpace(req.URL)}
	if ref.URL == "" && (ref.Bucket == "" || ref.Path == "") {
		return response.ValidationError(c, map[string]string{"path": "either bucket and path or url is required"})
	}

	provider := h.uploads.Provider()
	bucket, key, err := storage.Resolve(provider, ref)
	if err != nil {
		return response.ValidationError(c, map[string]string{"url": "url does not point at a stored file"})
	}
	if !storage.IsAllowedBucket(bucket) {
		return response.ValidationError(c, map[string]string{"bucket": "bucket is not allowed"})
	}
	if key, err = storage.CleanKey(key); err != nil {
		return response.ValidationError(c, map[string]string{"path": "invalid path"})
	}

	if err := provider.Delete(c.UserContext(), bucket, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return response.NotFound(c, "File not found")
		}
		log.Errorf("delete %s/%s: %v", bucket, key, err)
		return response.InternalServerError(c, "Failed to delete file")
	}

	return response.SuccessWithMessage(c, "File deleted successfully", fiber.Map{"bucket": bucket, "path": key})
}
