package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config configures an S3-compatible endpoint. Supabase Storage exposes
// one at https://<project>.supabase.co/storage/v1/s3 with public URLs under
// https://<project>.supabase.co/storage/v1/object/public.
type S3Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	PublicURL string
}

// S3Provider stores objects through the S3 API.
type S3Provider struct {
	client    *s3.S3
	endpoint  string
	publicURL string
}

func NewS3Provider(cfg S3Config) (*S3Provider, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &S3Provider{
		client:    s3.New(sess),
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

func (p *S3Provider) Upload(ctx context.Context, bucket, key string, body io.ReadSeeker, size int64, contentType string) (Object, error) {
	key, err := CleanKey(key)
	if err != nil {
		return Object{}, err
	}

	_, err = p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=3600"),
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload %s/%s: %w", bucket, key, err)
	}

	return Object{
		Bucket:      bucket,
		Path:        key,
		URL:         p.PublicURL(bucket, key),
		Size:        size,
		ContentType: contentType,
	}, nil
}

func (p *S3Provider) Delete(ctx context.Context, bucket, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}

	_, err = p.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (p *S3Provider) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := p.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, err)
	}
	return keys, nil
}

// PublicURL uses the configured public base, or path-style addressing on
// the API endpoint.
func (p *S3Provider) PublicURL(bucket, key string) string {
	if p.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", p.publicURL, bucket, key)
	}
	return fmt.Sprintf("%s/%s/%s", p.endpoint, bucket, key)
}

// PublicBases lists URL prefixes this provider hands out.
func (p *S3Provider) PublicBases() []string {
	if p.publicURL != "" {
		return []string{p.publicURL, p.endpoint}
	}
	return []string{p.endpoint}
}
