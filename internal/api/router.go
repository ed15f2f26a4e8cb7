// Package api exposes the services over a JSON REST API under /api/v1.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mmynk/highlowbuffalo/internal/auth"
	"github.com/mmynk/highlowbuffalo/internal/metrics"
	"github.com/mmynk/highlowbuffalo/internal/middleware"
	"github.com/mmynk/highlowbuffalo/internal/service"
)

// maxBodyBytes bounds request bodies; a 5 MiB image grows by a third as base64.
const maxBodyBytes = 8 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wires the router to its services.
type Config struct {
	Auth          *service.AuthService
	Reflections   *service.ReflectionService
	Users         *service.UserService
	Herds         *service.HerdService
	Notifications *service.NotificationService
	JWT           *auth.JWTManager
	Store         Pinger

	CORSOrigins []string
	// AuthRatePerMinute limits signup and token requests per client IP.
	// Zero disables the limit.
	AuthRatePerMinute int
	Logger            *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// NewRouter builds the chi router with every route mounted.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limitBody)

		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRatePerMinute > 0 {
				r.Use(middleware.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRatePerMinute).Middleware)
			}
			r.Post("/signup", s.handleSignup)
			r.Post("/token", s.handleToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(cfg.JWT))

			r.Route("/reflections", func(r chi.Router) {
				r.Get("/", s.handleListReflections)
				r.Post("/", s.handleCreateReflection)
				r.Get("/feed", s.handleFeed)
				r.Get("/follow-ups", s.handleFollowUps)
				r.Put("/{id}", s.handleUpdateReflection)
				r.Delete("/{id}", s.handleDeleteReflection)
				r.Post("/{id}/react", s.handleReact)
				r.Post("/{id}/flag", s.handleFlag)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", s.handleMe)
				r.Put("/me", s.handleRename)
				r.Get("/me/settings", s.handleGetSettings)
				r.Put("/me/settings", s.handleUpdateSettings)
				r.Get("/friends", s.handleListFriends)
				r.Post("/friends", s.handleAddFriend)
				r.Delete("/friends/{id}", s.handleRemoveFriend)
			})

			r.Route("/herds", func(r chi.Router) {
				r.Get("/", s.handleListHerds)
				r.Post("/", s.handleCreateHerd)
				r.Get("/{id}", s.handleGetHerd)
				r.Put("/{id}", s.handleUpdateHerd)
				r.Delete("/{id}", s.handleDeleteHerd)
				r.Post("/{id}/members", s.handleAddHerdMember)
				r.Delete("/{id}/members/{userId}", s.handleRemoveHerdMember)
			})

			r.Get("/notifications/status", s.handleNotificationStatus)
		})
	})

	return r
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}
