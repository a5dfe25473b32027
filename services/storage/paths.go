package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// ErrUnrecognisedURL is returned when a URL does not match any known
// public URL layout.
var ErrUnrecognisedURL = errors.New("unrecognised storage URL")

const supabasePublicMarker = "/object/public/"

type publicBaser interface {
	PublicBases() []string
}

// URLToPath recovers bucket and key from a public object URL. It knows the
// Supabase layout (.../object/public/{bucket}/{key}) and any of the given
// base URLs followed by /{bucket}/{key}. Only rows written before paths
// were persisted need it.
func URLToPath(rawURL string, bases ...string) (bucket, key string, err error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", "", ErrUnrecognisedURL
	}
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}

	var rest string
	if i := strings.Index(rawURL, supabasePublicMarker); i >= 0 {
		rest = rawURL[i+len(supabasePublicMarker):]
	} else {
		for _, base := range bases {
			base = strings.TrimRight(base, "/")
			if base != "" && strings.HasPrefix(rawURL, base+"/") {
				rest = strings.TrimPrefix(rawURL, base+"/")
				break
			}
		}
	}
	if rest == "" {
		return "", "", ErrUnrecognisedURL
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", ErrUnrecognisedURL
	}
	if unescaped, uerr := url.PathUnescape(key); uerr == nil {
		key = unescaped
	}
	if key, err = CleanKey(key); err != nil {
		return "", "", err
	}
	return bucket, key, nil
}

// Ref points at a stored object. Path is preferred; URL is the fallback
// for rows that predate persisted paths.
type Ref struct {
	Bucket string
	Path   string
	URL    string
}

// Resolve returns the bucket and key for ref using p's public bases.
func Resolve(p Provider, ref Ref) (string, string, error) {
	if ref.Path != "" && ref.Bucket != "" {
		return ref.Bucket, ref.Path, nil
	}
	var bases []string
	if pb, ok := p.(publicBaser); ok {
		bases = pb.PublicBases()
	}
	bucket, key, err := URLToPath(ref.URL, bases...)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", err, ref.URL)
	}
	if ref.Bucket != "" && ref.Bucket != bucket {
		return "", "", fmt.Errorf("%w: %s is not in bucket %s", ErrUnrecognisedURL, ref.URL, ref.Bucket)
	}
	if ref.Path != "" {
		key = ref.Path
	}
	return bucket, key, nil
}

// DeleteBestEffort removes every ref and logs failures instead of
// returning them. It returns how many objects were deleted.
func DeleteBestEffort(ctx context.Context, p Provider, refs ...Ref) int {
	deleted := 0
	for _, ref := range refs {
		if ref.Path == "" && ref.URL == "" {
			continue
		}
		bucket, key, err := Resolve(p, ref)
		if err != nil {
			log.Warnf("storage: skipping delete: %v", err)
			continue
		}
		if err := p.Delete(ctx, bucket, key); err != nil && !errors.Is(err, ErrNotFound) {
			log.Warnf("storage: failed to delete %s/%s: %v", bucket, key, err)
			continue
		}
		deleted++
	}
	return deleted
}
