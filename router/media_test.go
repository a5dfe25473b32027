package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mathwaksu-byte/MathwaV2/model"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// upload posts files under field plus plain form fields.
func (e *testEnv) upload(t *testing.T, path, token, field string, files [][]byte, fields map[string]string) (int, envelope) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for i, content := range files {
		part, err := w.CreateFormFile(field, filepath.Base(path)+string(rune('a'+i))+".png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func (e *testEnv) stored(bucket, key string) bool {
	_, err := os.Stat(filepath.Join(e.provider.Root(), bucket, filepath.FromSlash(key)))
	return err == nil
}

func (e *testEnv) countObjects(t *testing.T, bucket string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(filepath.Join(e.provider.Root(), bucket), func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", bucket, err)
	}
	return n
}

func TestDisplayPictureReplaceAndRemove(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, model.RoleAdmin)
	u := model.University{Slug: "media-u", Name: "Media", IsActive: true}
	e.db.Create(&u)
	img := pngBytes(t)

	upload := func() storage.Object {
		t.Helper()
		status, env := e.upload(t, "/api/universities/media-u/dp?type=hero", admin, "file", [][]byte{img}, nil)
		if status != http.StatusOK {
			t.Fatalf("upload hero = %d, %+v", status, env.Error)
		}
		return decode[struct {
			File storage.Object `json:"file"`
		}](t, env.Data).File
	}

	first := upload()
	if !e.stored(first.Bucket, first.Path) {
		t.Fatalf("first hero not stored at %s", first.Path)
	}
	second := upload()
	if second.Path == first.Path {
		t.Fatalf("replacement reused key %s", first.Path)
	}
	if e.stored(first.Bucket, first.Path) {
		t.Errorf("previous hero %s still stored", first.Path)
	}

	var got model.University
	e.db.First(&got, "id = ?", u.ID)
	if got.HeroImagePath != second.Path || got.HeroImageURL != second.URL {
		t.Errorf("hero columns = %q %q, want %q", got.HeroImagePath, got.HeroImageURL, second.Path)
	}

	if status, _ := e.upload(t, "/api/universities/media-u/dp?type=banner", admin, "file", [][]byte{img}, nil); status != http.StatusBadRequest {
		t.Errorf("unknown type = %d, want 400", status)
	}

	if status, _ := e.do(t, http.MethodDelete, "/api/universities/media-u/dp?type=hero", admin, nil); status != http.StatusOK {
		t.Fatalf("remove hero = %d", status)
	}
	if e.stored(second.Bucket, second.Path) {
		t.Errorf("removed hero %s still stored", second.Path)
	}
	e.db.First(&got, "id = ?", u.ID)
	if got.HeroImagePath != "" || got.HeroImageURL != "" {
		t.Errorf("hero columns not cleared: %+v", got)
	}
	if status, _ := e.do(t, http.MethodDelete, "/api/universities/media-u/dp?type=hero", admin, nil); status != http.StatusNotFound {
		t.Errorf("remove missing hero = %d, want 404", status)
	}
}

func TestUniversityGalleryKeepsPathsAligned(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, model.RoleAdmin)
	img := pngBytes(t)

	legacy, err := e.provider.Upload(context.Background(), storage.BucketUniversityImages, "gallery/aligned/1-aaaaaaaa.png", bytes.NewReader(img), int64(len(img)), "image/png")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	u := model.University{Slug: "aligned", Name: "Aligned", IsActive: true, GalleryURLs: datatypes.JSONSlice[string]{legacy.URL}}
	e.db.Create(&u)

	status, env := e.upload(t, "/api/universities/aligned/gallery", admin, "images", [][]byte{img, img}, nil)
	if status != http.StatusCreated {
		t.Fatalf("upload gallery = %d, %+v", status, env.Error)
	}
	files := decode[struct {
		Files []storage.Object `json:"files"`
	}](t, env.Data).Files
	if len(files) != 2 {
		t.Fatalf("uploaded %d files, want 2", len(files))
	}

	var got model.University
	e.db.First(&got, "id = ?", u.ID)
	if len(got.GalleryURLs) != 3 || len(got.GalleryPaths) != 3 {
		t.Fatalf("gallery = %v / %v, want 3 aligned entries", got.GalleryURLs, got.GalleryPaths)
	}
	if got.GalleryPaths[0] != "" || got.GalleryPaths[1] != files[0].Path || got.GalleryPaths[2] != files[1].Path {
		t.Errorf("paths = %v", got.GalleryPaths)
	}

	status, env = e.do(t, http.MethodDelete, "/api/universities/aligned/gallery", admin, map[string]interface{}{
		"urls": []string{legacy.URL, files[0].URL},
	})
	if status != http.StatusOK {
		t.Fatalf("delete gallery = %d, %+v", status, env.Error)
	}
	if res := decode[map[string]interface{}](t, env.Data); res["removed"] != float64(2) || res["deleted_objects"] != float64(2) {
		t.Errorf("delete result = %v", res)
	}
	if e.stored(legacy.Bucket, legacy.Path) || e.stored(files[0].Bucket, files[0].Path) {
		t.Errorf("removed gallery images still stored")
	}
	if !e.stored(files[1].Bucket, files[1].Path) {
		t.Errorf("kept gallery image was deleted")
	}

	e.db.First(&got, "id = ?", u.ID)
	if len(got.GalleryURLs) != 1 || got.GalleryURLs[0] != files[1].URL || got.GalleryPaths[0] != files[1].Path {
		t.Errorf("gallery after delete = %v / %v", got.GalleryURLs, got.GalleryPaths)
	}

	if status, _ := e.do(t, http.MethodDelete, "/api/universities/aligned/gallery", admin, map[string]interface{}{"urls": []string{"http://elsewhere/x.png"}}); status != http.StatusNotFound {
		t.Errorf("delete unknown url = %d, want 404", status)
	}
}

func TestGalleryUploadLifecycle(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, model.RoleAdmin)
	u := model.University{Slug: "gallery-u", Name: "Gallery", IsActive: true}
	e.db.Create(&u)

	status, env := e.upload(t, "/api/gallery/admin", admin, "file", [][]byte{pngBytes(t)}, map[string]string{
		"title":         "Campus",
		"university_id": u.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create = %d, %+v", status, env.Error)
	}
	entry := decode[model.GalleryImage](t, env.Data)
	if entry.StorageBucket != storage.BucketGallery || entry.StoragePath == "" || !e.stored(entry.StorageBucket, entry.StoragePath) {
		t.Fatalf("image not stored: %+v", entry)
	}

	if status, _ := e.upload(t, "/api/gallery/admin", admin, "file", [][]byte{pngBytes(t)}, map[string]string{"university_id": "missing"}); status != http.StatusBadRequest {
		t.Errorf("unknown university = %d, want 400", status)
	}
	if n := e.countObjects(t, storage.BucketGallery); n != 1 {
		t.Errorf("gallery bucket holds %d objects, want 1", n)
	}

	if status, _ := e.do(t, http.MethodDelete, "/api/gallery/admin/"+entry.ID, admin, nil); status != http.StatusOK {
		t.Fatalf("delete = %d", status)
	}
	if e.stored(entry.StorageBucket, entry.StoragePath) {
		t.Errorf("deleted image %s still stored", entry.StoragePath)
	}
}

func TestGalleryUploadRemovedWhenInsertFails(t *testing.T) {
	e := newTestEnv(t)
	admin := e.token(t, model.RoleAdmin)

	err := e.db.Callback().Create().Before("gorm:create").Register("test:fail_gallery_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "gallery_images" {
			_ = tx.AddError(errors.New("insert refused"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	status, _ := e.upload(t, "/api/gallery/admin", admin, "file", [][]byte{pngBytes(t)}, map[string]string{"title": "Lost"})
	if status != http.StatusInternalServerError {
		t.Fatalf("create = %d, want 500", status)
	}
	if n := e.countObjects(t, storage.BucketGallery); n != 0 {
		t.Errorf("gallery bucket holds %d objects after a failed insert", n)
	}
}
