package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// URLPrefix is the path local uploads are served under.
const URLPrefix = "/uploads/"

// LocalStorage writes uploads into a single flat directory.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocal creates the upload directory if needed. A non-empty baseURL overrides the
// request host when building public URLs.
func NewLocal(dir, baseURL string) (*LocalStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory files are written to.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	if !validKey(key) {
		return fmt.Errorf("invalid object key %q", key)
	}
	fullPath := filepath.Join(s.dir, key)

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) DeleteObject(ctx context.Context, key string) error {
	if !validKey(key) {
		return fmt.Errorf("invalid object key %q", key)
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(key, baseURL string) string {
	base := s.baseURL
	if base == "" {
		base = strings.TrimRight(baseURL, "/")
	}
	return base + URLPrefix + key
}

// KeyFromURL accepts /uploads/<file> URLs that are relative or point at this server:
// the configured base URL when set, otherwise requestBase.
func (s *LocalStorage) KeyFromURL(raw, requestBase string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Host != "" {
		base := s.baseURL
		if base == "" {
			base = requestBase
		}
		b, err := url.Parse(base)
		if err != nil || b.Host == "" || !strings.EqualFold(b.Host, u.Host) {
			return "", false
		}
	}
	if !strings.HasPrefix(u.Path, URLPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, URLPrefix)
	if !validKey(key) {
		return "", false
	}
	return key, true
}

func (s *LocalStorage) Type() string {
	return "local"
}
