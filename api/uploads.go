package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/storage"
	"github.com/rs/zerolog"
)

// uploadFormField is the multipart field carrying the image file.
const uploadFormField = "image"

// maxFormMemory bounds how much of a multipart form is kept in memory.
const maxFormMemory = 32 << 20

// uploader stores validated image files and cleans up after failed requests.
type uploader struct {
	store     storage.Storage
	validator *storage.UploadValidator
	logger    zerolog.Logger
}

func newUploader(store storage.Storage, validator *storage.UploadValidator, logger zerolog.Logger) uploader {
	return uploader{store: store, validator: validator, logger: logger}
}

// storedFile is an uploaded file that has been written to storage.
type storedFile struct {
	Key string
	URL string
}

// parseForm reads the multipart form, limiting the body to the upload size plus room
// for the other fields.
func (u uploader) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, u.validator.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(u.validator.MaxFileSize)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return errs.NewUnsupportedMediaTypeError(r.Header.Get("Content-Type"), []string{"multipart/form-data"})
		}
		return errs.NewMalformedPayloadError("multipart", err)
	}
	return nil
}

// save validates the "image" file of a parsed form and writes it under a random key.
func (u uploader) save(r *http.Request) (*storedFile, error) {
	if u.store == nil {
		return nil, errs.NewConfigError("STORAGE_TYPE")
	}

	file, _, err := r.FormFile(uploadFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errs.NewMissingRequiredFieldError(uploadFormField)
		}
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, u.validator.MaxFileSize+1))
	if err != nil {
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}

	validated, err := u.validator.Validate(data)
	if err != nil {
		return nil, err
	}

	key := storage.NewKey(validated.Ext)
	if err := u.store.PutObject(r.Context(), key, bytes.NewReader(data), validated.ContentType, int64(len(data))); err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to store upload", err)
	}

	u.logger.Info().
		Str("key", key).
		Str("contentType", validated.ContentType).
		Int("width", validated.Width).
		Int("height", validated.Height).
		Msg("Image stored")

	return &storedFile{Key: key, URL: u.store.URL(key, requestBaseURL(r))}, nil
}

// discard deletes a stored file whose database record could not be written.
func (u uploader) discard(ctx context.Context, f *storedFile) {
	if err := u.store.DeleteObject(context.WithoutCancel(ctx), f.Key); err != nil {
		u.logger.Warn().Err(err).Str("key", f.Key).Msg("Failed to remove orphaned upload")
	}
}

// removeURL deletes the file behind url when this backend owns it and inUse reports no
// other asset pointing at it. Failures are logged only.
func (u uploader) removeURL(r *http.Request, url string, inUse func(ctx context.Context, key string) (bool, error)) {
	if u.store == nil {
		return
	}
	key, ok := u.store.KeyFromURL(url, requestBaseURL(r))
	if !ok {
		return
	}

	ctx := context.WithoutCancel(r.Context())
	used, err := inUse(ctx, key)
	if err != nil {
		u.logger.Warn().Err(err).Str("key", key).Msg("Failed to check image file references")
		return
	}
	if used {
		u.logger.Info().Str("key", key).Msg("Image file kept, another asset still uses it")
		return
	}

	if err := u.store.DeleteObject(ctx, key); err != nil {
		u.logger.Warn().Err(err).Str("key", key).Msg("Failed to remove image file")
	}
}

// requestBaseURL returns the scheme and host the request arrived on.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
