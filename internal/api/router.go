package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/auth-service/internal/api/handlers"
	"github.com/isdelr/auth-service/internal/auth"
	"github.com/isdelr/auth-service/internal/models"
	"github.com/isdelr/auth-service/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(gate *auth.Gate, authService services.AuthServiceProvider, eventService services.EventServiceProvider, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Auth Service Running"}` + "\n"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(gate.Middleware)
			r.Get("/profile", authHandler.Profile)
			r.Get("/me", authHandler.GetMe)

			r.With(auth.RequireRole(models.RoleAdmin)).Get("/events", eventHandler.GetRecent)
		})
	})

	return r
}
