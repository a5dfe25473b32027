// Package storage stores uploaded media in object storage buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrUnknownBucket = errors.New("unknown bucket")
	ErrInvalidKey    = errors.New("invalid object key")
)

// Buckets used by the API.
const (
	BucketUploads          = "uploads"
	BucketGallery          = "gallery"
	BucketUniversityImages = "university-images"
	BucketDocuments        = "documents"
)

// FolderMarksheets holds public marksheet uploads in BucketDocuments.
const FolderMarksheets = "marksheets"

var allowedBuckets = map[string]bool{
	BucketUploads:          true,
	BucketGallery:          true,
	BucketUniversityImages: true,
	BucketDocuments:        true,
}

// IsAllowedBucket reports whether clients may address bucket directly.
func IsAllowedBucket(bucket string) bool {
	return allowedBuckets[bucket]
}

// Object describes a stored file. Path is the key inside Bucket and is what
// callers persist next to URL.
type Object struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"mimetype"`
}

// Provider is an object store with publicly readable buckets.
type Provider interface {
	Upload(ctx context.Context, bucket, key string, body io.ReadSeeker, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, bucket, key string) error
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	PublicURL(bucket, key string) string
}

// GenerateKey returns "{folder}/{unix-millis}-{8 hex}{.ext}" for filename.
func GenerateKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// KeyTime recovers the upload time embedded by GenerateKey.
func KeyTime(key string) (time.Time, bool) {
	name := path.Base(key)
	i := strings.IndexByte(name, '-')
	if i <= 0 {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(name[:i], 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// CleanKey normalises a key and rejects ones that escape the bucket.
func CleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
