package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/mathwaksu-byte/MathwaV2/services/storage"
)

type multipartBody struct {
	buf         *bytes.Buffer
	contentType string
}

func newMultipart(fileField, filename string, content io.Reader, fields map[string]string) (*multipartBody, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}

	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to write file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	return &multipartBody{buf: buf, contentType: writer.FormDataContentType()}, nil
}

// Upload stores one file in bucket under folder. Empty values use the
// server defaults.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, bucket, folder string) (*storage.Object, error) {
	body, err := newMultipart("file", filename, content, map[string]string{"bucket": bucket, "folder": folder})
	if err != nil {
		return nil, err
	}
	var out struct {
		File storage.Object `json:"file"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/uploads/single", nil, body, &out, true); err != nil {
		return nil, err
	}
	return &out.File, nil
}

// UploadMarksheet stores an applicant's marksheet. No login is needed.
func (c *Client) UploadMarksheet(ctx context.Context, filename string, content io.Reader) (*storage.Object, error) {
	body, err := newMultipart("file", filename, content, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		File storage.Object `json:"file"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/uploads/marksheet", nil, body, &out, false); err != nil {
		return nil, err
	}
	return &out.File, nil
}

// DeleteUpload removes an object by bucket and path.
func (c *Client) DeleteUpload(ctx context.Context, bucket, path string) error {
	body := map[string]string{"bucket": bucket, "path": path}
	_, err := c.do(ctx, http.MethodDelete, "/uploads", nil, body, nil, true)
	return err
}
