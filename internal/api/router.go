package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/api/handlers"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/auth"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/services"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/uploads"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.Service,
	userService services.UserServiceProvider,
	catService services.CatServiceProvider,
	eventService services.EventServiceProvider,
	storage *uploads.Storage,
	appEnv string,
) *chi.Mux {
	handlers.SetEnvironment(appEnv)

	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens, appEnv)
	userHandler := handlers.NewUserHandler(userService)
	catHandler := handlers.NewCatHandler(catService, storage)
	eventHandler := handlers.NewEventHandler(eventService)
	statusHandler := handlers.NewStatusHandler(storage)

	requireToken := tokens.Middleware()

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.With(requireToken).Get("/me", authHandler.Me)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/", userHandler.GetAll)
			r.Post("/", userHandler.Register)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.With(requireToken).Put("/", userHandler.Update)
				r.With(requireToken).Delete("/", userHandler.Delete)
			})
		})

		r.Route("/cat", func(r chi.Router) {
			r.Get("/", catHandler.GetAll)
			r.With(requireToken).Post("/", catHandler.Create)
			r.Get("/user/{userId}", catHandler.GetByUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", catHandler.Get)
				r.With(requireToken).Put("/", catHandler.Update)
				r.With(requireToken).Delete("/", catHandler.Delete)
			})
		})

		// Operator endpoints
		r.With(requireToken, auth.RequireAdmin).Get("/events", eventHandler.GetRecent)
		r.With(requireToken, auth.RequireAdmin).Get("/status", statusHandler.Get)
	})

	// Serve uploaded images and their thumbnails
	r.Handle("/uploads/*", http.StripPrefix("/uploads", http.FileServer(http.Dir(storage.Dir()))))

	return r
}
