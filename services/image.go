package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// FitImage shrinks content so neither side exceeds maxDim. It reports
// changed=false and returns content untouched when the image already fits.
// PNG stays PNG; JPEG and WebP are re-encoded as JPEG.
func FitImage(content []byte, contentType string, maxDim int) ([]byte, string, bool, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return content, contentType, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to decode image: %w", err)
	}
	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	format, outType := imaging.JPEG, "image/jpeg"
	if contentType == "image/png" {
		format, outType = imaging.PNG, "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", false, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), outType, true, nil
}
