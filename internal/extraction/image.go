package extraction

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/heic"
	_ "golang.org/x/image/webp"
)

// MaxImageSide is the longest side sent to a provider
const MaxImageSide = 2048

// MIMETypeForFilename guesses the image type from the extension,
// defaulting to JPEG
func MIMETypeForFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic", ".heif":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

// PrepareImage converts HEIC to JPEG and shrinks oversized images. Data it
// cannot decode is returned unchanged for the provider to judge.
func PrepareImage(data []byte, mimeType string) ([]byte, string, error) {
	if mimeType == "image/heic" {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode HEIC image: %w", err)
		}
		return encode(imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.Lanczos), imaging.JPEG)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Unable to read image dimensions, sending as is", "mime_type", mimeType, "error", err)
		return data, mimeType, nil
	}
	if cfg.Width <= MaxImageSide && cfg.Height <= MaxImageSide {
		return data, mimeType, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	slog.Info("Resizing image", "width", cfg.Width, "height", cfg.Height, "max_side", MaxImageSide)

	format := imaging.JPEG
	if mimeType == "image/png" {
		format = imaging.PNG
	}
	return encode(imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.Lanczos), format)
}

func encode(img image.Image, format imaging.Format) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(90)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	mimeType := "image/jpeg"
	if format == imaging.PNG {
		mimeType = "image/png"
	}
	return buf.Bytes(), mimeType, nil
}
