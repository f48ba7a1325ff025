package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type tagHandler struct {
	responder Responder
	logger    zerolog.Logger
	tagRepo   *database.TagRepo
}

func newTagHandler(tagRepo *database.TagRepo) tagHandler {
	logger := log.With().Str("handlerName", "tagHandler").Logger()

	return tagHandler{
		responder: NewResponder(logger),
		logger:    logger,
		tagRepo:   tagRepo,
	}
}

type tagCreateRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

// listTags returns every tag ordered by name
// @Summary List tags
// @Tags Tags
// @Produce json
// @Success 200 {array} models.Tag "Tags"
// @Router /tags [get]
func (h tagHandler) listTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tagRepo.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, tags)
	}
}

// createTag creates a tag
// @Summary Create tag
// @Description Creates a tag. Name and slug must both be unique.
// @Tags Tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tag body tagCreateRequest true "Tag data"
// @Success 201 {object} models.Tag "Created tag"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid data or duplicate name/slug"
// @Router /tags [post]
func (h tagHandler) createTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tag, err := h.tagRepo.Create(r.Context(), req.Name, req.Slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("tagID", tag.ID.String()).Str("slug", tag.Slug).Msg("Tag created")
		h.responder.WriteCreated(w, tag)
	}
}

// deleteTag removes a tag from every project and deletes it
// @Summary Delete tag
// @Tags Tags
// @Security BearerAuth
// @Param tagID path string true "Tag ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Not Found - Tag not found"
// @Router /tags/{tagID} [delete]
func (h tagHandler) deleteTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagID, err := pathUUID(r, "tagID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.tagRepo.Delete(r.Context(), tagID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteNoContent(w)
	}
}
