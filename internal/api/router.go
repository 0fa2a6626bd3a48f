package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mcoot/scorekeeper/internal/api/apierr"
	"github.com/mcoot/scorekeeper/internal/api/handler"
	apimiddleware "github.com/mcoot/scorekeeper/internal/api/middleware"
	"github.com/mcoot/scorekeeper/internal/metrics"
	"github.com/mcoot/scorekeeper/internal/middleware"
	"github.com/mcoot/scorekeeper/internal/services/leaderboard"
	"github.com/mcoot/scorekeeper/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Registry    *registry.Service
	Leaderboard *leaderboard.Service
	// Metrics is exposed on /metrics when set
	Metrics *metrics.Metrics
	// CORSOrigins lists allowed origins; empty allows any
	CORSOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	userHandler := handler.NewUserHandler(cfg.Registry)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Leaderboard)

	// Middleware applied to every matched route
	r.Use(middleware.RequestID)
	r.Use(apimiddleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(apimiddleware.Metrics(cfg.Metrics))
	}

	r.HandleFunc("/register", userHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/score", userHandler.SubmitScore).Methods(http.MethodPost)
	r.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/users", userHandler.ListUsers).Methods(http.MethodGet)
	r.HandleFunc("/dump", userHandler.Dump).Methods(http.MethodGet)
	r.HandleFunc("/health", userHandler.Health).Methods(http.MethodGet)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)
	return cors(r)
}
