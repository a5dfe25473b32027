package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider keeps buckets as directories under root. The router serves
// root at the path in baseURL.
type LocalProvider struct {
	root    string
	baseURL string
}

func NewLocalProvider(root, baseURL string) (*LocalProvider, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalProvider{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory holding the buckets.
func (p *LocalProvider) Root() string {
	return p.root
}

func (p *LocalProvider) objectPath(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\.`) {
		return "", ErrUnknownBucket
	}
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(p.root, bucket, filepath.FromSlash(key)), nil
}

func (p *LocalProvider) Upload(ctx context.Context, bucket, key string, body io.ReadSeeker, size int64, contentType string) (Object, error) {
	dst, err := p.objectPath(bucket, key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, err
	}

	f, err := os.Create(dst)
	if err != nil {
		return Object{}, err
	}

	written, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return Object{}, fmt.Errorf("failed to write %s/%s: %w", bucket, key, err)
	}

	key, _ = CleanKey(key)
	return Object{
		Bucket:      bucket,
		Path:        key,
		URL:         p.PublicURL(bucket, key),
		Size:        written,
		ContentType: contentType,
	}, nil
}

func (p *LocalProvider) Delete(ctx context.Context, bucket, key string) error {
	dst, err := p.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (p *LocalProvider) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	dir, err := p.objectPath(bucket, "x")
	if err != nil {
		return nil, err
	}
	bucketDir := filepath.Dir(dir)

	keys := make([]string, 0)
	err = filepath.WalkDir(bucketDir, func(fp string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(bucketDir, fp)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (p *LocalProvider) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", p.baseURL, bucket, key)
}

func (p *LocalProvider) PublicBases() []string {
	return []string{p.baseURL}
}
