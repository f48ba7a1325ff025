package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rpupo63/portfolio-backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
	router      *router
}

// NewServer builds the HTTP server from the config map. Options override the
// collaborators that would otherwise be derived from config.
func NewServer(c map[string]string, database database.Database, opts ...Option) (Server, error) {
	port := config.GetString(c, "PORT", "3001")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	opts = append([]Option{withConfig(c), withStartupTime(startupTime)}, opts...)
	handler, rt := newRouter(database, opts...)

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 30)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 60)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 120)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime, rt}, nil
}

type router struct {
	config          map[string]string
	startupTime     time.Time
	logger          zerolog.Logger
	mailer          services.Mailer
	mailTo          []string
	store           storage.Storage
	uploadValidator *storage.UploadValidator
	admin           auth.Admin
	tokens          *auth.TokenIssuer
	tokensSet       bool
	redis           *redis.Client
	loginLimiter    *RateLimiter
	contactLimiter  *RateLimiter
}

// Option overrides a router collaborator.
type Option func(*router)

func withConfig(c map[string]string) Option {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) Option {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

// WithMailer sets the mailer used to relay contact messages.
func WithMailer(m services.Mailer) Option {
	return func(r *router) {
		r.mailer = m
	}
}

// WithStorage sets the backend uploads are written to.
func WithStorage(s storage.Storage) Option {
	return func(r *router) {
		r.store = s
	}
}

// WithAdmin sets the admin principal.
func WithAdmin(a auth.Admin) Option {
	return func(r *router) {
		r.admin = a
	}
}

// WithTokens sets the token issuer. A nil issuer makes every admin route fail with a config error.
func WithTokens(t *auth.TokenIssuer) Option {
	return func(r *router) {
		r.tokens = t
		r.tokensSet = true
	}
}

// WithRedis keeps rate limit counters in Redis so they are shared across instances.
func WithRedis(client *redis.Client) Option {
	return func(r *router) {
		r.redis = client
	}
}

// fillDefaults derives every collaborator that was not injected from the config map.
func (rt *router) fillDefaults() {
	c := rt.config
	rt.logger = log.With().Str("handlerName", "router").Logger()

	if rt.startupTime.IsZero() {
		rt.startupTime = time.Now()
	}
	if rt.mailer == nil {
		rt.mailer = services.NewMailer(c)
	}
	rt.mailTo = config.GetList(c, "MAIL_TO")
	if rt.admin == (auth.Admin{}) {
		rt.admin = auth.Admin{
			Email:        config.GetString(c, "ADMIN_EMAIL", ""),
			PasswordHash: config.GetString(c, "ADMIN_PASSWORD_HASH", ""),
		}
	}
	if !rt.tokensSet {
		ttl := time.Duration(config.GetInt(c, "JWT_TTL_SECONDS", 86400)) * time.Second
		tokens, err := auth.NewTokenIssuer(config.GetString(c, "JWT_SECRET", ""), ttl)
		if err != nil {
			rt.logger.Warn().Err(err).Msg("Admin routes are disabled until JWT_SECRET is set")
		}
		rt.tokens = tokens
	}

	rt.uploadValidator = storage.NewUploadValidator(int64(config.GetInt(c, "UPLOAD_MAX_BYTES", storage.DefaultMaxUploadSize)))

	rt.loginLimiter = rt.newLimiter("login",
		config.GetInt(c, "LOGIN_RATE_LIMIT", 10),
		time.Duration(config.GetInt(c, "LOGIN_RATE_WINDOW_MINUTES", 15))*time.Minute,
	)
	rt.contactLimiter = rt.newLimiter("contact",
		config.GetInt(c, "CONTACT_RATE_LIMIT", 5),
		time.Duration(config.GetInt(c, "CONTACT_RATE_WINDOW_MINUTES", 15))*time.Minute,
	)
}

func (rt *router) newLimiter(name string, max int, window time.Duration) *RateLimiter {
	if rt.redis != nil {
		return NewRedisRateLimiter(rt.redis, name, max, window)
	}
	return NewRateLimiter(max, window)
}

// close releases the router's background workers.
func (rt *router) close() {
	rt.loginLimiter.Close()
	rt.contactLimiter.Close()
}

func newRouter(database database.Database, opts ...Option) (*chi.Mux, *router) {
	rt := &router{}
	for _, opt := range opts {
		opt(rt)
	}
	rt.fillDefaults()

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware)
	chiRouter.Use(securityHeaders(config.GetList(rt.config, "CSP_IMG_SRC")))

	acceptedOrigins := config.GetList(rt.config, "CORS_ORIGIN")
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"*"}
	}
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	// Initialize all handlers
	handlers := initializeHandlers(database, rt)

	setupRoutes(chiRouter, handlers, newAuthMiddleware(rt.tokens), rt)

	return chiRouter, rt
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
	s.router.close()
}
