package storage

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestURLToPath(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		bases      []string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{
			name:       "supabase public url",
			url:        "https://abc.supabase.co/storage/v1/object/public/university-images/hero/osh/1700000000000-1a2b3c4d.jpg",
			wantBucket: "university-images",
			wantKey:    "hero/osh/1700000000000-1a2b3c4d.jpg",
		},
		{
			name:       "query string stripped",
			url:        "https://abc.supabase.co/storage/v1/object/public/gallery/a%20b.png?width=200",
			wantBucket: "gallery",
			wantKey:    "a b.png",
		},
		{
			name:       "configured base",
			url:        "https://cdn.mathwa.com/media/documents/marksheets/x.pdf",
			bases:      []string{"https://cdn.mathwa.com/media/"},
			wantBucket: "documents",
			wantKey:    "marksheets/x.pdf",
		},
		{name: "foreign url", url: "https://example.com/images/x.png", wantErr: true},
		{name: "bucket only", url: "https://abc.supabase.co/storage/v1/object/public/gallery", wantErr: true},
		{name: "traversal", url: "https://abc.supabase.co/storage/v1/object/public/gallery/../secrets", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := URLToPath(tt.url, tt.bases...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s/%s", bucket, key)
				}
				return
			}
			if err != nil {
				t.Fatalf("URLToPath: %v", err)
			}
			if bucket != tt.wantBucket || key != tt.wantKey {
				t.Errorf("got %s/%s, want %s/%s", bucket, key, tt.wantBucket, tt.wantKey)
			}
		})
	}
}

func TestGenerateKey(t *testing.T) {
	pattern := regexp.MustCompile(`^logos/osh/\d{13}-[0-9a-f]{8}\.png$`)
	key := GenerateKey("logos/osh/", "My Logo.PNG")
	if !pattern.MatchString(key) {
		t.Errorf("GenerateKey = %q", key)
	}
	if GenerateKey("logos/osh", "a.png") == GenerateKey("logos/osh", "a.png") {
		t.Error("keys should not collide")
	}
	if k := GenerateKey("", "x.pdf"); strings.Contains(k, "/") {
		t.Errorf("root key should have no folder: %q", k)
	}
	if k := GenerateKey("../../etc", "x.pdf"); !strings.HasPrefix(k, "etc/") {
		t.Errorf("folder traversal not cleaned: %q", k)
	}
}

func TestKeyTime(t *testing.T) {
	before := time.Now().Add(-time.Second)
	got, ok := KeyTime(GenerateKey("marksheets", "m.pdf"))
	if !ok || got.Before(before) {
		t.Fatalf("KeyTime = %v, %v", got, ok)
	}
	if _, ok := KeyTime("legacy/photo.jpg"); ok {
		t.Error("KeyTime should reject keys without a timestamp prefix")
	}
}

func TestLocalProviderLifecycle(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(t.TempDir(), "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	obj, err := p.Upload(ctx, BucketGallery, "campus/a.jpg", strings.NewReader("jpeg-bytes"), 10, "image/jpeg")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if obj.URL != "http://localhost:8080/files/gallery/campus/a.jpg" || obj.Size != 10 {
		t.Errorf("unexpected object: %+v", obj)
	}

	keys, err := p.List(ctx, BucketGallery, "campus/")
	if err != nil || len(keys) != 1 || keys[0] != "campus/a.jpg" {
		t.Fatalf("List = %v, %v", keys, err)
	}

	if n := DeleteBestEffort(ctx, p, Ref{URL: obj.URL}); n != 1 {
		t.Fatalf("DeleteBestEffort by URL deleted %d", n)
	}
	if err := p.Delete(ctx, BucketGallery, "campus/a.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}

	keys, _ = p.List(ctx, BucketDocuments, "")
	if len(keys) != 0 {
		t.Errorf("empty bucket listed %v", keys)
	}

	if _, err := p.Upload(ctx, BucketGallery, "../escape.txt", strings.NewReader("x"), 1, "text/plain"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("traversal upload: %v", err)
	}
}

var errBrokenBody = errors.New("connection reset")

// brokenBody yields one chunk and then fails.
type brokenBody struct{ sent bool }

func (b *brokenBody) Read(p []byte) (int, error) {
	if b.sent {
		return 0, errBrokenBody
	}
	b.sent = true
	return copy(p, "partial"), nil
}

func (b *brokenBody) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

func TestLocalUploadRemovesPartialFile(t *testing.T) {
	ctx := context.Background()
	p, err := NewLocalProvider(t.TempDir(), "http://localhost:8080/files")
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	if _, err := p.Upload(ctx, BucketDocuments, "marksheets/a.pdf", &brokenBody{}, 100, "application/pdf"); !errors.Is(err, errBrokenBody) {
		t.Fatalf("Upload error = %v, want %v", err, errBrokenBody)
	}
	keys, err := p.List(ctx, BucketDocuments, "marksheets/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("partial upload left %v behind", keys)
	}
	if err := p.Delete(ctx, BucketDocuments, "marksheets/a.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete after failed upload: %v", err)
	}
}
