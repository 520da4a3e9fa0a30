package routes

import (
	"log/slog"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	"github.com/community-vercel/theekadar-admin/internal/handlers"
	"github.com/community-vercel/theekadar-admin/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Handlers groups the console's HTTP handlers
type Handlers struct {
	Auth       *handlers.AuthHandler
	Users      *handlers.UserHandler
	Directory  *handlers.DirectoryHandler
	Reviews    *handlers.ReviewHandler
	Broadcasts *handlers.BroadcastHandler
	Dashboard  *handlers.DashboardHandler
}

// Limits holds per-minute request budgets
type Limits struct {
	Login   middleware.RateLimitConfig
	Session middleware.RateLimitConfig
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	sessions auth.SessionGetter,
	cookies auth.CookieConfig,
	limits Limits,
	logger *slog.Logger,
) {
	// Public routes - no session required
	router.With(middleware.RateLimitByIP(limits.Login)).Post("/auth/login", h.Auth.Login)

	// Protected routes - console session required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessions, cookies, logger))
		r.Use(middleware.RateLimitBySession(limits.Session))
		r.Use(middleware.CSRFProtection(cookies.Name, logger))

		r.Get("/auth/me", h.Auth.Me)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.ListUsers)
			r.Get("/stats", h.Users.Stats)

			r.Get("/selection", h.Users.GetSelection)
			r.Put("/selection", h.Users.Select)
			r.Delete("/selection", h.Users.Deselect)

			r.Post("/bulk-delete", h.Users.BulkDelete)
			r.Put("/bulk-update", h.Users.BulkUpdate)

			r.Get("/{id}", h.Users.GetUser)
			r.Put("/{id}", h.Users.UpdateUser)
			r.Delete("/{id}", h.Users.DeleteUser)
			r.Post("/{id}/verify", h.Users.VerifyUser)
		})

		r.Get("/verifications/pending", h.Directory.PendingVerifications)
		r.Get("/search/location", h.Directory.SearchByLocation)

		r.Get("/reviews", h.Reviews.ListReviews)
		r.Put("/reviews/{id}", h.Reviews.UpdateReview)
		r.Delete("/reviews/{id}", h.Reviews.DeleteReview)

		r.Post("/broadcasts", h.Broadcasts.BroadcastAll)
		r.Post("/broadcasts/roles", h.Broadcasts.BroadcastToRoles)
		r.Get("/broadcasts/stats", h.Broadcasts.Stats)

		r.Get("/dashboard", h.Dashboard.Dashboard)
	})
}
