package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder      Responder
	logger         zerolog.Logger
	projectRepo    *database.ProjectRepo
	projectTagRepo *database.ProjectTagRepo
}

func newProjectHandler(projectRepo *database.ProjectRepo, projectTagRepo *database.ProjectTagRepo) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		projectRepo:    projectRepo,
		projectTagRepo: projectTagRepo,
	}
}

type projectCreateRequest struct {
	Title            string                  `json:"title" validate:"required"`
	Slug             string                  `json:"slug" validate:"required"`
	OrderIndex       *int                    `json:"order_index" validate:"required,min=0"`
	ShortDescription string                  `json:"short_description" validate:"required"`
	Description      string                  `json:"description" validate:"required"`
	KeyFeatures      []string                `json:"key_features" validate:"omitempty,dive,required"`
	Type             string                  `json:"type" validate:"required,oneof=personal work"`
	Status           string                  `json:"status" validate:"required,oneof=live dev archived"`
	ExternalURL      models.Nullable[string] `json:"external_url" swaggertype:"string"`
	GithubURL        models.Nullable[string] `json:"github_url" swaggertype:"string"`
	TagIDs           []string                `json:"tag_ids" validate:"omitempty,dive,uuid"`
}

func (req projectCreateRequest) check() []errs.FieldIssue {
	return append(checkNullableURL("external_url", req.ExternalURL), checkNullableURL("github_url", req.GithubURL)...)
}

func (req projectCreateRequest) project() *models.Project {
	features := req.KeyFeatures
	if features == nil {
		features = []string{}
	}
	return &models.Project{
		Title:            req.Title,
		Slug:             req.Slug,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		KeyFeatures:      features,
		Type:             models.ProjectType(req.Type),
		Status:           models.ProjectStatus(req.Status),
		ExternalURL:      req.ExternalURL.Value,
		GithubURL:        req.GithubURL.Value,
		OrderIndex:       *req.OrderIndex,
	}
}

// projectUpdateRequest is a partial update: absent fields are left as they are.
type projectUpdateRequest struct {
	Title            *string                 `json:"title" validate:"omitnil,min=1"`
	Slug             *string                 `json:"slug" validate:"omitnil,min=1"`
	OrderIndex       *int                    `json:"order_index" validate:"omitnil,min=0"`
	ShortDescription *string                 `json:"short_description" validate:"omitnil,min=1"`
	Description      *string                 `json:"description" validate:"omitnil,min=1"`
	KeyFeatures      *[]string               `json:"key_features" validate:"omitnil,dive,required"`
	Type             *string                 `json:"type" validate:"omitnil,oneof=personal work"`
	Status           *string                 `json:"status" validate:"omitnil,oneof=live dev archived"`
	ExternalURL      models.Nullable[string] `json:"external_url" swaggertype:"string"`
	GithubURL        models.Nullable[string] `json:"github_url" swaggertype:"string"`
	TagIDs           *[]string               `json:"tag_ids" validate:"omitnil,dive,uuid"`
}

func (req projectUpdateRequest) check() []errs.FieldIssue {
	return append(checkNullableURL("external_url", req.ExternalURL), checkNullableURL("github_url", req.GithubURL)...)
}

func (req projectUpdateRequest) patch() database.ProjectPatch {
	patch := database.ProjectPatch{
		Title:            req.Title,
		Slug:             req.Slug,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		KeyFeatures:      req.KeyFeatures,
		ExternalURL:      req.ExternalURL,
		GithubURL:        req.GithubURL,
		OrderIndex:       req.OrderIndex,
	}
	if req.Type != nil {
		t := models.ProjectType(*req.Type)
		patch.Type = &t
	}
	if req.Status != nil {
		s := models.ProjectStatus(*req.Status)
		patch.Status = &s
	}
	if req.TagIDs != nil {
		ids := toUUIDs(*req.TagIDs)
		patch.TagIDs = &ids
	}
	return patch
}

type tagIDsRequest struct {
	TagIDs []string `json:"tag_ids" validate:"omitempty,dive,uuid"`
}

type reorderItem struct {
	ID         string `json:"id" validate:"required,uuid"`
	OrderIndex *int   `json:"order_index" validate:"required"`
}

type reorderRequest struct {
	Items []reorderItem `json:"items" validate:"required,min=1,dive"`
}

func (req reorderRequest) orderItems() []database.OrderItem {
	items := make([]database.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		id := toUUIDs([]string{item.ID})[0]
		items = append(items, database.OrderItem{ID: id, OrderIndex: *item.OrderIndex})
	}
	return items
}

// decodeReorder parses and checks an ordering batch.
func decodeReorder(r *http.Request) ([]database.OrderItem, error) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	items := req.orderItems()
	if err := database.ValidateOrderBatch(items); err != nil {
		return nil, err
	}
	return items, nil
}

// listProjects returns the public portfolio
// @Summary List public projects
// @Description Lists live and dev projects with their tags and ordered images
// @Tags Projects
// @Produce json
// @Success 200 {array} models.Project "Public projects"
// @Failure 500 {object} ErrorResponse "Internal Server Error"
// @Router /projects [get]
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.ListPublic(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

// listAllProjects returns every project, archived ones included
// @Summary List all projects
// @Description Lists every project regardless of status
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Project "All projects"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /admin/projects [get]
func (h projectHandler) listAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.ListAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

// getProject returns one project by slug. Archived projects are only visible to the admin.
// @Summary Get project
// @Description Retrieves a project by its slug with tags and ordered images
// @Tags Projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} models.Project "Project"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{slug} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "projectID")

		project, err := h.projectRepo.FindBySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if !project.Status.IsPublic() && !ctxIsAdmin(r.Context()) {
			h.responder.WriteError(w, errs.NewNotFound("project"))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a project, optionally with tags
// @Summary Create project
// @Description Creates a new project. Unknown tag ids reject the whole request.
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project body projectCreateRequest true "Project data"
// @Success 201 {object} models.Project "Created project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid data or slug already used"
// @Failure 404 {object} ErrorResponse "Not Found - Tag not found"
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.Create(r.Context(), req.project(), toUUIDs(req.TagIDs))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("projectID", project.ID.String()).Str("slug", project.Slug).Msg("Project created")
		h.responder.WriteCreated(w, project)
	}
}

// updateProject applies a partial update
// @Summary Update project
// @Description Updates the given fields. tag_ids, when present, replaces the tag set.
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param project body projectUpdateRequest true "Fields to change"
// @Success 200 {object} models.Project "Updated project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid data or slug already used"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req projectUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.Update(r.Context(), projectID, req.patch())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// deleteProject removes a project and its links
// @Summary Delete project
// @Description Deletes a project with its tag and image links. Image assets are kept.
// @Tags Projects
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("projectID", projectID.String()).Msg("Project deleted")
		h.responder.WriteNoContent(w)
	}
}

// reorderProjects sets the display position of several projects at once
// @Summary Reorder projects
// @Description Applies all positions in one transaction or none of them
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body reorderRequest true "New positions"
// @Success 200 {array} models.Project "All projects in their new order"
// @Failure 400 {object} ErrorResponse "Bad Request - Duplicate ids or positions"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /projects/reorder [put]
func (h projectHandler) reorderProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := decodeReorder(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, err := h.projectRepo.Reorder(r.Context(), items)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, projects)
	}
}

// setTags replaces the project's tags
// @Summary Set project tags
// @Description Replaces the whole tag set. An empty list clears it.
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param tags body tagIDsRequest true "Tag ids"
// @Success 200 {object} models.Project "Project with its new tags"
// @Failure 404 {object} ErrorResponse "Not Found - Project or tag not found"
// @Router /projects/{projectID}/tags [put]
func (h projectHandler) setTags() http.HandlerFunc {
	return h.changeTags(h.projectTagRepo.SetTags)
}

// addTags adds tags, keeping the existing ones
// @Summary Add project tags
// @Description Adds tags to a project. Tags already linked are ignored.
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param tags body tagIDsRequest true "Tag ids"
// @Success 200 {object} models.Project "Project with its tags"
// @Failure 404 {object} ErrorResponse "Not Found - Project or tag not found"
// @Router /projects/{projectID}/tags [post]
func (h projectHandler) addTags() http.HandlerFunc {
	return h.changeTags(h.projectTagRepo.AddTags)
}

func (h projectHandler) changeTags(apply func(ctx context.Context, projectID uuid.UUID, tagIDs []uuid.UUID) (*models.Project, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req tagIDsRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := apply(r.Context(), projectID, toUUIDs(req.TagIDs))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// removeTag unlinks one tag from a project
// @Summary Remove project tag
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param projectID path string true "Project ID" format(uuid)
// @Param tagID path string true "Tag ID" format(uuid)
// @Success 200 {object} models.Project "Project with its remaining tags"
// @Failure 404 {object} ErrorResponse "Not Found - Tag is not linked to the project"
// @Router /projects/{projectID}/tags/{tagID} [delete]
func (h projectHandler) removeTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		tagID, err := pathUUID(r, "tagID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectTagRepo.RemoveTag(r.Context(), projectID, tagID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}
