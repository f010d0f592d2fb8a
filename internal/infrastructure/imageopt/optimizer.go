// Package imageopt shrinks product photos before they are uploaded.
package imageopt

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	// Register decoders for the formats accepted from the file picker
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

const (
	DefaultMaxDimension = 1024
	DefaultQuality      = 85
)

// Config controls the optimizer
type Config struct {
	// MaxDimension is the longest side allowed, in pixels
	MaxDimension int
	// Quality is the JPEG quality used when re-encoding (1-100)
	Quality int
	Logger  *zap.Logger
}

// Optimizer downsizes attachments that exceed MaxDimension
type Optimizer struct {
	maxDim  int
	quality int
	logger  *zap.Logger
}

// New creates an optimizer
func New(cfg Config) *Optimizer {
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = DefaultMaxDimension
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = DefaultQuality
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{maxDim: cfg.MaxDimension, quality: cfg.Quality, logger: logger}
}

// Optimize returns a resized JPEG (PNG stays PNG to keep transparency) when the
// image is larger than the limit, or the attachment unchanged otherwise.
// Non-image attachments pass through untouched.
func (o *Optimizer) Optimize(a *catalog.Attachment) (*catalog.Attachment, error) {
	if a == nil || len(a.Data) == 0 {
		return a, nil
	}
	if a.ContentType != "" && !strings.HasPrefix(a.ContentType, "image/") {
		return a, nil
	}

	img, format, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodeValidation, "Image could not be read", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= o.maxDim && height <= o.maxDim {
		return a, nil
	}

	resized := imaging.Fit(img, o.maxDim, o.maxDim, imaging.Lanczos)

	out := &catalog.Attachment{Filename: a.Filename}
	var buf bytes.Buffer
	if format == "png" {
		err = imaging.Encode(&buf, resized, imaging.PNG)
		out.ContentType = "image/png"
	} else {
		err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(o.quality))
		out.ContentType = "image/jpeg"
		out.Filename = withExtension(a.Filename, ".jpg")
	}
	if err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}
	out.Data = buf.Bytes()

	o.logger.Debug("Image resized",
		zap.String("format", format),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("new_width", resized.Bounds().Dx()),
		zap.Int("new_height", resized.Bounds().Dy()),
		zap.Int("bytes", len(out.Data)))

	return out, nil
}

func withExtension(name, ext string) string {
	if name == "" {
		return "image" + ext
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
