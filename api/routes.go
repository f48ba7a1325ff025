package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/storage"
)

// healthResponse is returned by the liveness probe.
type healthResponse struct {
	OK            bool  `json:"ok" example:"true"`
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
}

// setupRoutes registers every endpoint. Mutating routes require the admin token.
func setupRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware, rt *router) {
	responder := NewResponder(rt.logger)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		responder.WriteError(w, errs.NewNotFoundError("Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		responder.WriteError(w, errs.NewApiErr(http.StatusMethodNotAllowed, "Method Not Allowed"))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		responder.WriteJSON(w, healthResponse{
			OK:            true,
			UptimeSeconds: int64(time.Since(rt.startupTime).Seconds()),
		})
	})

	r.Post("/auth/login", handlers.authHandler.login())

	r.With(limitByIP(rt.contactLimiter, responder, contactRateLimitMessage)).
		Post("/contact", handlers.contactHandler.sendContact())

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", handlers.projectHandler.listProjects())
		r.With(auth.optionalAdmin).Get("/{projectID}", handlers.projectHandler.getProject())
		r.Get("/{projectID}/images", handlers.projectImageHandler.listProjectImages())

		r.Group(func(r chi.Router) {
			r.Use(auth.requireAdmin)

			// static segments take precedence over {projectID}
			r.Put("/reorder", handlers.projectHandler.reorderProjects())

			r.Post("/", handlers.projectHandler.createProject())
			r.Put("/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/{projectID}", handlers.projectHandler.deleteProject())

			r.Put("/{projectID}/tags", handlers.projectHandler.setTags())
			r.Post("/{projectID}/tags", handlers.projectHandler.addTags())
			r.Delete("/{projectID}/tags/{tagID}", handlers.projectHandler.removeTag())

			r.Post("/{projectID}/images", handlers.projectImageHandler.uploadProjectImage())
			r.Post("/{projectID}/images/attach", handlers.projectImageHandler.attachImage())
			r.Post("/{projectID}/images/url", handlers.projectImageHandler.addProjectImageURL())
			r.Put("/{projectID}/images/reorder", handlers.projectImageHandler.reorderProjectImages())
			r.Patch("/{projectID}/images/{imageID}", handlers.projectImageHandler.updateProjectImage())
			r.Delete("/{projectID}/images/{imageID}", handlers.projectImageHandler.detachProjectImage())
		})
	})

	r.With(auth.requireAdmin).Get("/admin/projects", handlers.projectHandler.listAllProjects())

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", handlers.tagHandler.listTags())
		r.With(auth.requireAdmin).Post("/", handlers.tagHandler.createTag())
		r.With(auth.requireAdmin).Delete("/{tagID}", handlers.tagHandler.deleteTag())
	})

	r.Route("/images", func(r chi.Router) {
		r.Get("/", handlers.imageHandler.listImages())
		r.Group(func(r chi.Router) {
			r.Use(auth.requireAdmin)
			r.Post("/", handlers.imageHandler.uploadImage())
			r.Post("/url", handlers.imageHandler.addImageURL())
			r.Delete("/{imageID}", handlers.imageHandler.deleteImage())
		})
	})

	if local, ok := rt.store.(*storage.LocalStorage); ok {
		fs := http.StripPrefix(storage.URLPrefix, http.FileServer(http.Dir(local.Dir())))
		r.Get(storage.URLPrefix+"*", noDirListing(fs))
	}
}

// noDirListing answers directory requests with 404 instead of an index page.
func noDirListing(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		next.ServeHTTP(w, r)
	}
}
