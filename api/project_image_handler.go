package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectImageHandler struct {
	responder        Responder
	logger           zerolog.Logger
	projectImageRepo *database.ProjectImageRepo
	uploads          uploader
}

func newProjectImageHandler(projectImageRepo *database.ProjectImageRepo, uploads uploader) projectImageHandler {
	logger := log.With().Str("handlerName", "projectImageHandler").Logger()
	uploads.logger = logger

	return projectImageHandler{
		responder:        NewResponder(logger),
		logger:           logger,
		projectImageRepo: projectImageRepo,
		uploads:          uploads,
	}
}

type attachImageRequest struct {
	ImageID    string                  `json:"image_id" validate:"required,uuid"`
	Type       string                  `json:"type" validate:"required,oneof=hero gallery thumbnail"`
	AltText    models.Nullable[string] `json:"alt_text" swaggertype:"string"`
	OrderIndex *int                    `json:"order_index" validate:"omitnil,min=0"`
}

func (req attachImageRequest) check() []errs.FieldIssue {
	return checkNullableText("alt_text", req.AltText)
}

type imageURLAttachRequest struct {
	URL        string                  `json:"url" validate:"required,url"`
	Type       string                  `json:"type" validate:"required,oneof=hero gallery thumbnail"`
	AltText    models.Nullable[string] `json:"alt_text" swaggertype:"string"`
	OrderIndex *int                    `json:"order_index" validate:"omitnil,min=0"`
}

func (req imageURLAttachRequest) check() []errs.FieldIssue {
	return checkNullableText("alt_text", req.AltText)
}

type imageUpdateRequest struct {
	Type       *string                 `json:"type" validate:"omitnil,oneof=hero gallery thumbnail"`
	AltText    models.Nullable[string] `json:"alt_text" swaggertype:"string"`
	OrderIndex *int                    `json:"order_index" validate:"omitnil,min=0"`
}

func (req imageUpdateRequest) check() []errs.FieldIssue {
	return checkNullableText("alt_text", req.AltText)
}

func (req imageUpdateRequest) patch() database.ImagePatch {
	patch := database.ImagePatch{AltText: req.AltText, OrderIndex: req.OrderIndex}
	if req.Type != nil {
		t := models.ImageType(*req.Type)
		patch.Type = &t
	}
	return patch
}

// uploadFields holds the text fields sent next to an uploaded file.
type uploadFields struct {
	Type       string `json:"type" validate:"required,oneof=hero gallery thumbnail"`
	AltText    string `json:"alt_text"`
	OrderIndex *int   `json:"order_index" validate:"omitnil,min=0"`
}

// readUploadFields pulls the metadata fields out of a parsed multipart form.
// An empty alt_text is treated as no alt text.
func readUploadFields(r *http.Request) (*uploadFields, error) {
	fields := &uploadFields{
		Type:    strings.TrimSpace(r.FormValue("type")),
		AltText: strings.TrimSpace(r.FormValue("alt_text")),
	}
	if raw := strings.TrimSpace(r.FormValue("order_index")); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errs.NewValidationError([]errs.FieldIssue{{Field: "order_index", Message: "must be an integer"}})
		}
		fields.OrderIndex = &index
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (f uploadFields) params() database.AttachParams {
	p := database.AttachParams{Type: models.ImageType(f.Type), OrderIndex: f.OrderIndex}
	if f.AltText != "" {
		alt := f.AltText
		p.AltText = &alt
	}
	return p
}

// listProjectImages returns a project's images in display order
// @Summary List project images
// @Tags Project Images
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {array} models.ProjectImage "Ordered image links"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID}/images [get]
func (h projectImageHandler) listProjectImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		joins, err := h.projectImageRepo.ListForProject(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, joins)
	}
}

// attachImage links an existing asset to a project
// @Summary Attach image
// @Description Links an asset to a project. Attaching an already linked asset updates its metadata.
// @Tags Project Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param link body attachImageRequest true "Link metadata"
// @Success 201 {object} models.ProjectImage "Image link"
// @Failure 404 {object} ErrorResponse "Not Found - Project or image not found"
// @Router /projects/{projectID}/images/attach [post]
func (h projectImageHandler) attachImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req attachImageRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		join, err := h.projectImageRepo.Attach(r.Context(), database.AttachParams{
			ProjectID:  projectID,
			ImageID:    toUUIDs([]string{req.ImageID})[0],
			Type:       models.ImageType(req.Type),
			AltText:    req.AltText.Value,
			OrderIndex: req.OrderIndex,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, join)
	}
}

// uploadProjectImage stores a file and attaches it to the project
// @Summary Upload project image
// @Tags Project Images
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param image formData file true "Image file"
// @Param type formData string true "hero, gallery or thumbnail"
// @Param alt_text formData string false "Alt text"
// @Param order_index formData int false "Position"
// @Success 201 {object} models.ProjectImage "Image link"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing or invalid file or fields"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID}/images [post]
func (h projectImageHandler) uploadProjectImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.uploads.parseForm(w, r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		fields, err := readUploadFields(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		file, err := h.uploads.save(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		params := fields.params()
		params.ProjectID = projectID
		join, err := h.projectImageRepo.AttachURL(r.Context(), file.URL, params)
		if err != nil {
			h.uploads.discard(r.Context(), file)
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, join)
	}
}

// addProjectImageURL registers a URL asset, reusing a known one, and attaches it
// @Summary Attach image URL
// @Tags Project Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param link body imageURLAttachRequest true "URL and link metadata"
// @Success 201 {object} models.ProjectImage "Image link"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID}/images/url [post]
func (h projectImageHandler) addProjectImageURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req imageURLAttachRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		join, err := h.projectImageRepo.AttachURL(r.Context(), req.URL, database.AttachParams{
			ProjectID:  projectID,
			Type:       models.ImageType(req.Type),
			AltText:    req.AltText.Value,
			OrderIndex: req.OrderIndex,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteCreated(w, join)
	}
}

// updateProjectImage patches the metadata of one link
// @Summary Update project image
// @Description alt_text may be null to clear it
// @Tags Project Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param imageID path string true "Image ID" format(uuid)
// @Param link body imageUpdateRequest true "Fields to change"
// @Success 200 {object} models.ProjectImage "Updated link"
// @Failure 404 {object} ErrorResponse "Not Found - Image is not linked to the project"
// @Router /projects/{projectID}/images/{imageID} [patch]
func (h projectImageHandler) updateProjectImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		imageID, err := pathUUID(r, "imageID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req imageUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		join, err := h.projectImageRepo.UpdateMetadata(r.Context(), projectID, imageID, req.patch())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, join)
	}
}

// reorderProjectImages sets the positions of several links in one transaction
// @Summary Reorder project images
// @Description Fails as a whole when an id is not linked or two links would share a position
// @Tags Project Images
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param order body reorderRequest true "New positions"
// @Success 200 {array} models.ProjectImage "Links in their new order"
// @Failure 400 {object} ErrorResponse "Bad Request - Duplicate ids or positions"
// @Failure 404 {object} ErrorResponse "Not Found - Image is not linked to the project"
// @Router /projects/{projectID}/images/reorder [put]
func (h projectImageHandler) reorderProjectImages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		items, err := decodeReorder(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		joins, err := h.projectImageRepo.Reorder(r.Context(), projectID, items)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, joins)
	}
}

// detachProjectImage removes a link. The asset stays available.
// @Summary Detach project image
// @Tags Project Images
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param imageID path string true "Image ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Not Found - Image is not linked to the project"
// @Router /projects/{projectID}/images/{imageID} [delete]
func (h projectImageHandler) detachProjectImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		imageID, err := pathUUID(r, "imageID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectImageRepo.Detach(r.Context(), projectID, imageID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteNoContent(w)
	}
}
