// Package storage keeps uploaded image files on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/config"
)

// Storage is implemented by every upload backend.
type Storage interface {
	// PutObject stores data under key.
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error

	// DeleteObject removes key. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, key string) error

	// URL returns the public address of key. baseURL is the scheme and host the request
	// arrived on; backends with a fixed public address ignore it.
	URL(key, baseURL string) string

	// KeyFromURL returns the key of an object this backend owns, or false when url
	// points somewhere else. requestBase is the scheme and host the request arrived on.
	KeyFromURL(url, requestBase string) (string, bool)

	// Type returns "local" or "s3".
	Type() string
}

// NewKey returns a random object key that keeps the given extension.
func NewKey(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return uuid.NewString() + ext
}

// validKey accepts only a single flat file name.
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return path.Clean(key) == key
}

// New builds the backend selected by STORAGE_TYPE.
func New(ctx context.Context, c map[string]string) (Storage, error) {
	switch t := config.GetString(c, "STORAGE_TYPE", "local"); t {
	case "", "local":
		return NewLocal(config.GetString(c, "UPLOADS_DIR", "uploads"), config.GetString(c, "PUBLIC_BASE_URL", ""))
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:    config.GetString(c, "S3_BUCKET", ""),
			Region:    config.GetString(c, "S3_REGION", "us-east-1"),
			Endpoint:  config.GetString(c, "S3_ENDPOINT", ""),
			PublicURL: config.GetString(c, "S3_PUBLIC_URL", ""),
			AccessKey: config.GetString(c, "S3_ACCESS_KEY_ID", ""),
			SecretKey: config.GetString(c, "S3_SECRET_ACCESS_KEY", ""),
			PathStyle: config.GetBool(c, "S3_PATH_STYLE", false),
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", t)
	}
}
