package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2/log"
	"github.com/mathwaksu-byte/MathwaV2/services/storage"
	"github.com/mathwaksu-byte/MathwaV2/utils/pdfvalidation"
)

var (
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType  = errors.New("file type is not allowed")
	ErrBucketNotAllowed = errors.New("bucket is not allowed")
	ErrInvalidDocument  = errors.New("invalid document")
	ErrEmptyFile        = errors.New("file is empty")
	ErrImageRequired    = errors.New("only image files are accepted here")
)

var (
	defaultAllowedTypes  = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
	defaultMaxUploadSize = int64(5 << 20)
)

// UploadConfig bounds what the uploader accepts.
type UploadConfig struct {
	MaxFileSize       int64
	AllowedTypes      []string
	MaxImageDimension int
}

// UploadService validates files, normalises images and stores them.
type UploadService struct {
	provider storage.Provider
	cfg      UploadConfig
	allowed  map[string]bool
}

func NewUploadService(provider storage.Provider, cfg UploadConfig) *UploadService {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxUploadSize
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = defaultAllowedTypes
	}
	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}
	// browsers still send the legacy alias
	if allowed["image/jpeg"] {
		allowed["image/jpg"] = true
	}
	return &UploadService{provider: provider, cfg: cfg, allowed: allowed}
}

// Provider exposes the underlying store for deletes.
func (s *UploadService) Provider() storage.Provider {
	return s.provider
}

// UploadOptions select the destination and extra checks of one upload.
type UploadOptions struct {
	Bucket     string
	Folder     string
	ImagesOnly bool
	PDFLimits  *pdfvalidation.Limits
}

// UploadFile reads a multipart file and stores it.
func (s *UploadService) UploadFile(ctx context.Context, fh *multipart.FileHeader, opts UploadOptions) (storage.Object, error) {
	if fh.Size > s.cfg.MaxFileSize {
		return storage.Object{}, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return storage.Object{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxFileSize+1))
	if err != nil {
		return storage.Object{}, fmt.Errorf("failed to read upload: %w", err)
	}

	return s.UploadBytes(ctx, fh.Filename, content, opts)
}

// UploadBytes validates content by its sniffed type, downsizes large images,
// checks PDFs and stores the result under a generated key.
func (s *UploadService) UploadBytes(ctx context.Context, filename string, content []byte, opts UploadOptions) (storage.Object, error) {
	if !storage.IsAllowedBucket(opts.Bucket) {
		return storage.Object{}, fmt.Errorf("%w: %s", ErrBucketNotAllowed, opts.Bucket)
	}
	if len(content) == 0 {
		return storage.Object{}, ErrEmptyFile
	}
	if int64(len(content)) > s.cfg.MaxFileSize {
		return storage.Object{}, ErrFileTooLarge
	}

	mtype := mimetype.Detect(content)
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	if !s.allowed[contentType] {
		return storage.Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	isImage := strings.HasPrefix(contentType, "image/")
	if opts.ImagesOnly && !isImage {
		return storage.Object{}, ErrImageRequired
	}

	ext := mtype.Extension()
	switch {
	case isImage && s.cfg.MaxImageDimension > 0:
		resized, newType, changed, err := FitImage(content, contentType, s.cfg.MaxImageDimension)
		if err != nil {
			return storage.Object{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if changed {
			log.Infof("downscaled %s from %d to %d bytes", filename, len(content), len(resized))
			content, contentType = resized, newType
			ext = extensionFor(newType, ext)
		}
	case contentType == "application/pdf" && opts.PDFLimits != nil:
		if res := pdfvalidation.Validate(content, *opts.PDFLimits); !res.Valid {
			return storage.Object{}, fmt.Errorf("%w: %s", ErrInvalidDocument, res.Reason)
		}
	}

	key := storage.GenerateKey(opts.Folder, strings.TrimSuffix(path.Base(filename), path.Ext(filename))+ext)
	return s.provider.Upload(ctx, opts.Bucket, key, bytes.NewReader(content), int64(len(content)), contentType)
}

// Delete removes objects and logs failures.
func (s *UploadService) Delete(ctx context.Context, refs ...storage.Ref) int {
	return storage.DeleteBestEffort(ctx, s.provider, refs...)
}

func extensionFor(contentType, fallback string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return fallback
}
