package storage

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/rpupo63/portfolio-backend/errs"
	_ "golang.org/x/image/webp"
)

const DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB

// DefaultImageTypes maps accepted MIME types to the extension stored files get.
var DefaultImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadValidator checks uploaded files before they are stored.
type UploadValidator struct {
	MaxFileSize int64
	Types       map[string]string
}

func NewUploadValidator(maxFileSize int64) *UploadValidator {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxUploadSize
	}
	return &UploadValidator{MaxFileSize: maxFileSize, Types: DefaultImageTypes}
}

// ValidatedFile is an upload that passed validation.
type ValidatedFile struct {
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Validate checks size, sniffs the content type and makes sure the image header decodes.
// The declared client content type is ignored.
func (v *UploadValidator) Validate(data []byte) (*ValidatedFile, error) {
	size := int64(len(data))
	if size == 0 {
		return nil, errs.NewInvalidFieldError("image", "file is empty")
	}
	if size > v.MaxFileSize {
		return nil, errs.NewMaxBodySizeExceededError(v.MaxFileSize)
	}

	detected := http.DetectContentType(data)
	if idx := strings.Index(detected, ";"); idx > 0 {
		detected = strings.TrimSpace(detected[:idx])
	}
	ext, ok := v.Types[detected]
	if !ok {
		return nil, errs.NewUnsupportedMediaTypeError(detected, v.allowed())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errs.NewInvalidFieldError("image", "file is not a valid image")
	}

	return &ValidatedFile{ContentType: detected, Ext: ext, Width: cfg.Width, Height: cfg.Height}, nil
}

func (v *UploadValidator) allowed() []string {
	out := make([]string, 0, len(v.Types))
	for _, t := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if _, ok := v.Types[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
