package api

import (
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, rt *router) *routeHandlers {
	uploads := newUploader(rt.store, rt.uploadValidator, rt.logger)

	return &routeHandlers{
		authHandler:         newAuthHandler(rt.admin, rt.tokens, rt.loginLimiter),
		projectHandler:      newProjectHandler(database.ProjectRepo(), database.ProjectTagRepo()),
		tagHandler:          newTagHandler(database.TagRepo()),
		imageHandler:        newImageHandler(database.ImageRepo(), uploads),
		projectImageHandler: newProjectImageHandler(database.ProjectImageRepo(), uploads),
		contactHandler:      newContactHandler(services.NewContactService(rt.mailer, rt.mailTo)),
	}
}
