package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpupo63/portfolio-backend/errs"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocal(dir, "")
	if err != nil {
		t.Fatal(err)
	}

	key := NewKey(".PNG")
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("key %q should keep a lowercase extension", key)
	}
	if err := s.PutObject(ctx, key, strings.NewReader("data"), "image/png", 4); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, key)); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	url := s.URL(key, "http://localhost:3001/")
	if url != "http://localhost:3001/uploads/"+key {
		t.Fatalf("url = %q", url)
	}

	got, ok := s.KeyFromURL(url, "http://localhost:3001")
	if !ok || got != key {
		t.Fatalf("KeyFromURL(%q) = %q, %v", url, got, ok)
	}

	if err := s.DeleteObject(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteObject(ctx, key); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}

	t.Run("rejects foreign and traversal urls", func(t *testing.T) {
		for _, raw := range []string{
			"https://cdn.example.com/a.png",
			"http://localhost/uploads/../main.go",
			"http://localhost/uploads/nested/a.png",
			"http://localhost/uploads/",
		} {
			if key, ok := s.KeyFromURL(raw, "http://localhost"); ok {
				t.Errorf("KeyFromURL(%q) accepted key %q", raw, key)
			}
		}
	})

	t.Run("rejects traversal keys", func(t *testing.T) {
		if err := s.PutObject(ctx, "../escape.png", strings.NewReader("x"), "image/png", 1); err == nil {
			t.Fatal("expected error for traversal key")
		}
	})

	t.Run("configured base url wins", func(t *testing.T) {
		fixed, _ := NewLocal(dir, "https://api.example.com/")
		if got := fixed.URL("a.png", "http://internal:3001"); got != "https://api.example.com/uploads/a.png" {
			t.Fatalf("url = %q", got)
		}
		if _, ok := fixed.KeyFromURL("https://elsewhere.example.com/uploads/a.png", "https://elsewhere.example.com"); ok {
			t.Fatal("url on another host should not be owned")
		}
	})

	t.Run("host must match the request", func(t *testing.T) {
		cases := []struct {
			raw  string
			base string
			want bool
		}{
			{"/uploads/a.png", "", true},
			{"http://localhost:3001/uploads/a.png", "http://localhost:3001", true},
			{"http://LOCALHOST:3001/uploads/a.png", "http://localhost:3001", true},
			{"https://cdn.other.com/uploads/a.png", "http://localhost:3001", false},
			{"http://localhost:3001/uploads/a.png", "", false},
		}
		for _, tc := range cases {
			if _, ok := s.KeyFromURL(tc.raw, tc.base); ok != tc.want {
				t.Errorf("KeyFromURL(%q, %q) ok = %v, want %v", tc.raw, tc.base, ok, tc.want)
			}
		}
	})
}

type fakeS3 struct {
	puts    []string
	deletes []string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{}
	s := newS3Storage(fake, S3Config{Bucket: "media", Region: "eu-west-1"})

	if err := s.PutObject(ctx, "a.png", strings.NewReader("x"), "image/png", 1); err != nil {
		t.Fatal(err)
	}
	url := s.URL("a.png", "http://ignored")
	if url != "https://media.s3.eu-west-1.amazonaws.com/a.png" {
		t.Fatalf("url = %q", url)
	}
	key, ok := s.KeyFromURL(url, "")
	if !ok || key != "a.png" {
		t.Fatalf("KeyFromURL = %q, %v", key, ok)
	}
	if err := s.DeleteObject(ctx, key); err != nil {
		t.Fatal(err)
	}
	if len(fake.puts) != 1 || fake.puts[0] != "media/a.png" || len(fake.deletes) != 1 {
		t.Fatalf("unexpected calls: puts=%v deletes=%v", fake.puts, fake.deletes)
	}

	minio := newS3Storage(fake, S3Config{Bucket: "media", Endpoint: "http://minio:9000/", PathStyle: true})
	if got := minio.URL("b.webp", ""); got != "http://minio:9000/media/b.webp" {
		t.Fatalf("path-style url = %q", got)
	}
	if _, ok := minio.KeyFromURL("https://other/b.webp", ""); ok {
		t.Fatal("foreign url should not be owned")
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestUploadValidator(t *testing.T) {
	v := NewUploadValidator(0)

	t.Run("valid png", func(t *testing.T) {
		file, err := v.Validate(pngBytes(t))
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if file.ContentType != "image/png" || file.Ext != ".png" || file.Width != 3 || file.Height != 2 {
			t.Fatalf("unexpected result: %+v", file)
		}
	})

	t.Run("text is unsupported", func(t *testing.T) {
		_, err := v.Validate([]byte("hello world, definitely not an image"))
		if !errs.IsUnsupportedMediaTypeError(err) {
			t.Fatalf("expected unsupported media type, got %v", err)
		}
	})

	t.Run("truncated image", func(t *testing.T) {
		data := append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage")...)
		if _, err := v.Validate(data); !errs.IsInvalidFieldError(err) {
			t.Fatalf("expected invalid field, got %v", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		small := NewUploadValidator(10)
		if _, err := small.Validate(pngBytes(t)); !errs.IsMaxBodySizeExceededError(err) {
			t.Fatalf("expected size error, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := v.Validate(nil); !errs.IsInvalidFieldError(err) {
			t.Fatalf("expected invalid field, got %v", err)
		}
	})
}
