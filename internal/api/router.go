package api

import (
	"net/http"

	"github.com/Rrens/agent-relay/internal/agent"
	"github.com/Rrens/agent-relay/internal/api/handler"
	customMiddleware "github.com/Rrens/agent-relay/internal/api/middleware"
	"github.com/Rrens/agent-relay/internal/config"
	"github.com/Rrens/agent-relay/internal/repository/postgres"
	"github.com/Rrens/agent-relay/internal/repository/redis"
	"github.com/Rrens/agent-relay/internal/security"
	"github.com/Rrens/agent-relay/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(db.Pool)
	leadRepo := postgres.NewLeadRepository(db.Pool)
	messageRepo := postgres.NewMessageRepository(db.Pool)

	// Agent backend client
	agentClient := agent.NewClient(cfg.Agent)

	// Services
	chatService := service.NewChatService(agentClient, sessionRepo, messageRepo)
	leadService := service.NewLeadService(leadRepo, sessionRepo)

	// Handlers
	chatHandler := handler.NewChatHandler(chatService)
	leadHandler := handler.NewLeadHandler(leadService)
	sessionHandler := handler.NewSessionHandler(chatService)

	// Rate limiting and auth
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	tokenManager := security.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	authMiddleware := customMiddleware.NewAuthMiddleware(tokenManager)

	// Health
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(db))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.With(rateLimitMiddleware.Limit).Post("/chat", chatHandler.Relay)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/leads", func(r chi.Router) {
				r.Post("/", leadHandler.Create)
				r.Get("/", leadHandler.List)
				r.Get("/{leadID}", leadHandler.Get)
				r.Patch("/{leadID}", leadHandler.Update)
				r.Delete("/{leadID}", leadHandler.Delete)
			})

			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Get("/messages", sessionHandler.Transcript)
				r.Delete("/", sessionHandler.Delete)
			})
		})
	})

	return r
}
