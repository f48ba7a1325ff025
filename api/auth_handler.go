package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const loginRateLimitMessage = "Too many login attempts from this IP. Please try again later."

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	admin     auth.Admin
	tokens    *auth.TokenIssuer
	failures  *RateLimiter
}

func newAuthHandler(admin auth.Admin, tokens *auth.TokenIssuer, failures *RateLimiter) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		admin:     admin,
		tokens:    tokens,
		failures:  failures,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// login exchanges the admin credentials for a bearer token
// @Summary Admin login
// @Description Exchanges the admin email and password for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Admin credentials"
// @Success 200 {object} LoginResponse "Access token"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid payload"
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid email or password"
// @Failure 429 {object} ErrorResponse "Too Many Requests - Too many failed attempts"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !h.failures.Check(r.Context(), ip) {
			h.logger.Warn().Str("ip", ip).Msg("Login blocked by rate limiter")
			h.responder.WriteError(w, rateLimitError(w, r, h.failures, ip, loginRateLimitMessage))
			return
		}

		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if h.tokens == nil {
			h.responder.WriteError(w, errs.NewConfigError("JWT_SECRET"))
			return
		}

		if err := h.admin.Authenticate(req.Email, req.Password); err != nil {
			if errs.IsInvalidCredentialsError(err) {
				h.failures.Record(r.Context(), ip)
				h.logger.Warn().Str("ip", ip).Msg("Failed admin login")
			}
			h.responder.WriteError(w, err)
			return
		}

		token, err := h.tokens.Issue(h.admin.Email, auth.RoleAdmin)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, LoginResponse{
			Token:     token,
			TokenType: "Bearer",
			ExpiresIn: int(h.tokens.TTL().Seconds()),
		})
	}
}
