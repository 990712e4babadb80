// Package router sets up the HTTP routes and middleware chains for the
// customization API. Routes are organized into a public group and an
// authenticated agent group; AI-backed endpoints carry a rate limit.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/handlers"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/middleware"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/session"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Auth           *handlers.Auth
	Templates      *handlers.Templates
	Profile        *handlers.Profile
	Customizations *handlers.Customizations
	Attachments    *handlers.Attachments
	Settings       *handlers.Settings
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Login is the only unauthenticated API call.
		r.Post("/login", h.Auth.Login)

		// Authenticated agent area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAgent)

			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)

			r.Route("/templates", func(r chi.Router) {
				r.Get("/", h.Templates.List)
				r.Get("/{id}", h.Templates.Get)
				r.Get("/{id}/prompt", h.Templates.CompiledPrompt)
			})

			r.Get("/profile", h.Profile.Get)
			r.Put("/profile", h.Profile.Put)

			r.Route("/customizations", func(r chi.Router) {
				// AI-backed endpoints: creation may auto-apply the
				// profile and every turn hits a model provider.
				aiLimiter := middleware.NewRateLimiter(30, time.Minute)

				r.Get("/", h.Customizations.List)
				r.With(aiLimiter.Middleware).Post("/", h.Customizations.Create)
				r.Get("/{id}", h.Customizations.Get)
				r.Put("/{id}", h.Customizations.Put)
				r.Delete("/{id}", h.Customizations.Delete)
				r.With(aiLimiter.Middleware).Post("/{id}/turns", h.Customizations.Turn)
				r.Get("/{id}/export", h.Customizations.Export)
			})

			r.Post("/attachments", h.Attachments.Upload)

			r.Route("/settings", func(r chi.Router) {
				r.Get("/ai-provider", h.Settings.GetProvider)
				r.With(middleware.RequireAdmin).Put("/ai-provider", h.Settings.PutProvider)
			})
		})
	})

	return r
}
