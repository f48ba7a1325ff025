package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type imageHandler struct {
	responder Responder
	logger    zerolog.Logger
	imageRepo *database.ImageRepo
	uploads   uploader
}

func newImageHandler(imageRepo *database.ImageRepo, uploads uploader) imageHandler {
	logger := log.With().Str("handlerName", "imageHandler").Logger()
	uploads.logger = logger

	return imageHandler{
		responder: NewResponder(logger),
		logger:    logger,
		imageRepo: imageRepo,
		uploads:   uploads,
	}
}

type imageURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// listImages returns every image asset, newest first
// @Summary List image assets
// @Tags Images
// @Produce json
// @Success 200 {array} models.Image "Image assets"
// @Router /images [get]
func (h imageHandler) listImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		images, err := h.imageRepo.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, images)
	}
}

// uploadImage stores an uploaded file and registers it as an asset
// @Summary Upload image asset
// @Description Accepts a jpeg, png, gif or webp file in the "image" form field
// @Tags Images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} models.Image "Created asset"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing or invalid file"
// @Failure 413 {object} ErrorResponse "Request Entity Too Large"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type"
// @Router /images [post]
func (h imageHandler) uploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.uploads.parseForm(w, r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		file, err := h.uploads.save(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := h.imageRepo.CreateOrReuse(r.Context(), file.URL)
		if err != nil {
			h.uploads.discard(r.Context(), file)
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, image)
	}
}

// addImageURL registers an external URL as an asset. A known URL returns the existing asset.
// @Summary Register image URL
// @Tags Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param image body imageURLRequest true "Image URL"
// @Success 201 {object} models.Image "Asset"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid URL"
// @Router /images/url [post]
func (h imageHandler) addImageURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req imageURLRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := h.imageRepo.CreateOrReuse(r.Context(), req.URL)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, image)
	}
}

// deleteImage deletes an asset everywhere it is used
// @Summary Delete image asset
// @Description Removes the asset, every project link to it and, for uploaded files, the file itself
// @Tags Images
// @Security BearerAuth
// @Param imageID path string true "Image ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Not Found - Image not found"
// @Router /images/{imageID} [delete]
func (h imageHandler) deleteImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID, err := pathUUID(r, "imageID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, err := h.imageRepo.Delete(r.Context(), imageID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.uploads.removeURL(r, image.URL, h.imageRepo.FileInUse)
		h.logger.Info().Str("imageID", imageID.String()).Msg("Image deleted")
		h.responder.WriteNoContent(w)
	}
}
