package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const contactRateLimitMessage = "Too many messages from this IP. Please try again in 15 minutes."

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	contact   *services.ContactService
}

func newContactHandler(contact *services.ContactService) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		contact:   contact,
	}
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Message string `json:"message" validate:"required,max=5000"`
}

// sendContact relays a visitor message to the site owner
// @Summary Send contact message
// @Description Emails the message to the configured inbox with the visitor as reply-to
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body contactRequest true "Contact message"
// @Success 202 {object} OKResponse "Message accepted"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid message"
// @Failure 429 {object} ErrorResponse "Too Many Requests"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Mail delivery failed"
// @Router /contact [post]
func (h contactHandler) sendContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		err := h.contact.Relay(r.Context(), services.ContactMessage{
			Name:    req.Name,
			Email:   req.Email,
			Message: req.Message,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteStatus(w, http.StatusAccepted, OKResponse{OK: true})
	}
}
