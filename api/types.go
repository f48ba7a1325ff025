package api

import "github.com/rpupo63/portfolio-backend/errs"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler         authHandler
	projectHandler      projectHandler
	tagHandler          tagHandler
	imageHandler        imageHandler
	projectImageHandler projectImageHandler
	contactHandler      contactHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string            `json:"error" example:"Tag slug must be unique"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"slug"`
	Details string            `json:"details,omitempty" example:"Additional error details"`
	Issues  []errs.FieldIssue `json:"issues,omitempty"`
}

// OKResponse is returned by endpoints that only acknowledge a request.
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// LoginResponse is returned by a successful admin login.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type" example:"Bearer"`
	ExpiresIn int    `json:"expires_in" example:"86400"`
}
