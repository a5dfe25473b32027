package university

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/handlers/upload"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"github.com/mathwaksu-byte/MathwaV2/utils/response"
	"gorm.io/datatypes"
)

// MaxGalleryUpload caps images per gallery upload request.
const MaxGalleryUpload = 20

// dpSlot names the url/path columns of a display picture type.
type dpSlot struct {
	folder  string
	urlCol  string
	pathCol string
}

var dpSlots = map[string]dpSlot{
	"hero": {folder: "hero", urlCol: "hero_image_url", pathCol: "hero_image_path"},
	"logo": {folder: "logos", urlCol: "logo_url", pathCol: "logo_path"},
}

func currentDP(u *model.University, kind string) storage.Ref {
	ref := storage.Ref{Bucket: storage.BucketUniversityImages}
	if kind == "hero" {
		ref.Path, ref.URL = u.HeroImagePath, u.HeroImageURL
	} else {
		ref.Path, ref.URL = u.LogoPath, u.LogoURL
	}
	return ref
}

func setDP(u *model.University, kind, url, path string) {
	if kind == "hero" {
		u.HeroImageURL, u.HeroImagePath = url, path
	} else {
		u.LogoURL, u.LogoPath = url, path
	}
}

// UploadDP handles POST /api/universities/:slug/dp?type=hero|logo
func (h *UniversityHandler) UploadDP(c *fiber.Ctx) error {
	kind := c.Query("type")
	slot, ok := dpSlots[kind]
	if !ok {
		return response.ValidationError(c, map[string]string{"type": "type must be hero or logo"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, map[string]string{"file": "file is required"})
	}

	ctx := c.UserContext()
	u, err := h.findBySlug(c)
	if err != nil {
		return fetchError(c, err)
	}

	obj, err := h.uploads.UploadFile(ctx, fh, services.UploadOptions{
		Bucket:     storage.BucketUniversityImages,
		Folder:     slot.folder + "/" + u.Slug,
		ImagesOnly: true,
	})
	if err != nil {
		return upload.RespondError(c, err)
	}

	previous := currentDP(u, kind)
	err = h.db.WithContext(ctx).Model(u).Updates(map[string]interface{}{
		slot.urlCol:  obj.URL,
		slot.pathCol: obj.Path,
	}).Error
	if err != nil {
		h.uploads.Delete(ctx, storage.Ref{Bucket: obj.Bucket, Path: obj.Path})
		log.Errorf("save %s image for %s: %v", kind, u.Slug, err)
		return response.InternalServerError(c, "Failed to update university")
	}
	setDP(u, kind, obj.URL, obj.Path)

	if previous.Path != "" || previous.URL != "" {
		h.uploads.Delete(ctx, previous)
	}

	return response.SuccessWithMessage(c, "Image uploaded successfully", fiber.Map{"university": u, "file": obj})
}

// DeleteDP handles DELETE /api/universities/:slug/dp?type=hero|logo
func (h *UniversityHandler) DeleteDP(c *fiber.Ctx) error {
	kind := c.Query("type")
	slot, ok := dpSlots[kind]
	if !ok {
		return response.ValidationError(c, map[string]string{"type": "type must be hero or logo"})
	}

	ctx := c.UserContext()
	u, err := h.findBySlug(c)
	if err != nil {
		return fetchError(c, err)
	}

	previous := currentDP(u, kind)
	if previous.Path == "" && previous.URL == "" {
		return response.NotFound(c, "No image set")
	}

	err = h.db.WithContext(ctx).Model(u).Updates(map[string]interface{}{
		slot.urlCol:  "",
		slot.pathCol: "",
	}).Error
	if err != nil {
		log.Errorf("clear %s image for %s: %v", kind, u.Slug, err)
		return response.InternalServerError(c, "Failed to update university")
	}
	setDP(u, kind, "", "")

	h.uploads.Delete(ctx, previous)
	return response.SuccessWithMessage(c, "Image removed successfully", fiber.Map{"university": u})
}

// UploadGallery handles POST /api/universities/:slug/gallery
func (h *UniversityHandler) UploadGallery(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Expected multipart form data")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return response.ValidationError(c, map[string]string{"images": "at least one image is required"})
	}
	if len(files) > MaxGalleryUpload {
		return response.ValidationError(c, map[string]string{"images": "at most 20 images per request"})
	}

	ctx := c.UserContext()
	u, err := h.findBySlug(c)
	if err != nil {
		return fetchError(c, err)
	}

	objects, err := h.storeImages(c, files, "gallery/"+u.Slug)
	if err != nil {
		return upload.RespondError(c, err)
	}

	urls, paths := alignedGallery(u)
	for _, obj := range objects {
		urls = append(urls, obj.URL)
		paths = append(paths, obj.Path)
	}

	if err := h.saveGallery(c, u, urls, paths); err != nil {
		refs := make([]storage.Ref, len(objects))
		for i, obj := range objects {
			refs[i] = storage.Ref{Bucket: obj.Bucket, Path: obj.Path}
		}
		h.uploads.Delete(ctx, refs...)
		log.Errorf("save gallery for %s: %v", u.Slug, err)
		return response.InternalServerError(c, "Failed to update gallery")
	}

	return response.CreatedWithMessage(c, "Gallery images uploaded successfully", fiber.Map{"university": u, "files": objects})
}

func (h *UniversityHandler) storeImages(c *fiber.Ctx, files []*multipart.FileHeader, folder string) ([]storage.Object, error) {
	ctx := c.UserContext()
	objects := make([]storage.Object, 0, len(files))
	for _, fh := range files {
		obj, err := h.uploads.UploadFile(ctx, fh, services.UploadOptions{
			Bucket:     storage.BucketUniversityImages,
			Folder:     folder,
			ImagesOnly: true,
		})
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

type DeleteGalleryRequest struct {
	URLs []string `json:"urls"`
}

// DeleteGallery handles DELETE /api/universities/:slug/gallery
func (h *UniversityHandler) DeleteGallery(c *fiber.Ctx) error {
	var req DeleteGalleryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.URLs) == 0 {
		return response.ValidationError(c, map[string]string{"urls": "at least one url is required"})
	}

	ctx := c.UserContext()
	u, err := h.findBySlug(c)
	if err != nil {
		return fetchError(c, err)
	}

	remove := make(map[string]bool, len(req.URLs))
	for _, url := range req.URLs {
		remove[url] = true
	}

	urls, paths := alignedGallery(u)
	keptURLs := make([]string, 0, len(urls))
	keptPaths := make([]string, 0, len(urls))
	var refs []storage.Ref
	for i, url := range urls {
		if remove[url] {
			refs = append(refs, storage.Ref{Bucket: storage.BucketUniversityImages, Path: paths[i], URL: url})
			continue
		}
		keptURLs = append(keptURLs, url)
		keptPaths = append(keptPaths, paths[i])
	}
	if len(refs) == 0 {
		return response.NotFound(c, "None of the urls belong to this gallery")
	}

	if err := h.saveGallery(c, u, keptURLs, keptPaths); err != nil {
		log.Errorf("save gallery for %s: %v", u.Slug, err)
		return response.InternalServerError(c, "Failed to update gallery")
	}

	deleted := h.uploads.Delete(ctx, refs...)
	return response.SuccessWithMessage(c, "Gallery images removed successfully", fiber.Map{
		"university":      u,
		"removed":         len(refs),
		"deleted_objects": deleted,
	})
}

// alignedGallery returns copies of the gallery lists with paths padded to
// the length of urls, for rows written before paths were stored.
func alignedGallery(u *model.University) ([]string, []string) {
	urls := append([]string(nil), u.GalleryURLs...)
	paths := make([]string, len(urls))
	copy(paths, u.GalleryPaths)
	return urls, paths
}

func (h *UniversityHandler) saveGallery(c *fiber.Ctx, u *model.University, urls, paths []string) error {
	gallery := datatypes.JSONSlice[string](urls)
	galleryPaths := datatypes.JSONSlice[string](paths)
	err := h.db.WithContext(c.UserContext()).Model(u).Updates(map[string]interface{}{
		"gallery_urls":  gallery,
		"gallery_paths": galleryPaths,
	}).Error
	if err != nil {
		return err
	}
	u.GalleryURLs, u.GalleryPaths = gallery, galleryPaths
	return nil
}
