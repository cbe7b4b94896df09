package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shubham-ralli/form-b/internal/auth"
	"github.com/shubham-ralli/form-b/internal/handler"
	mw "github.com/shubham-ralli/form-b/internal/middleware"
)

func New(
	jwtSecret string,
	roles auth.RoleSource,
	healthH *handler.HealthHandler,
	authH *handler.AuthHandler,
	formH *handler.FormHandler,
	subH *handler.SubmissionHandler,
	planH *handler.PlanHandler,
	analyticsH *handler.AnalyticsHandler,
	adminH *handler.AdminHandler,
	embedH *handler.EmbedHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Logger)
	r.Use(mw.CORS)

	r.Get("/healthz", healthH.Check)

	// Embeds
	r.Get("/embed.js", embedH.Script)
	r.Get("/embed/{formId}", embedH.Page)
	r.Post("/embed/{formId}", embedH.Submit)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/logout", authH.Logout)
		r.Get("/plans", planH.List)
		r.Get("/forms/public", formH.Public)
		r.Get("/forms/{formId}", formH.Get)
		r.Post("/submissions", subH.Create)
		r.Post("/admin/set-admin", adminH.SetAdmin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(jwtSecret))

			// Auth
			r.Get("/auth/me", authH.Me)
			r.Get("/auth/validate-session", authH.ValidateSession)

			// Plans
			r.Post("/plans", planH.Set)
			r.Post("/upgrade", planH.Upgrade)

			r.Get("/analytics", analyticsH.Get)

			// Forms
			r.Get("/forms", formH.List)
			r.Post("/forms", formH.Create)
			r.Put("/forms/{formId}", formH.Update)
			r.Patch("/forms/{formId}/status", formH.SetStatus)
			r.Delete("/forms/{formId}", formH.Delete)
			r.Get("/forms/{formId}/submissions", formH.Submissions)

			// Submissions
			r.Get("/submissions", subH.List)

			// Admin
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin(roles))
				r.Get("/admin/users", adminH.ListUsers)
				r.Patch("/admin/users/{userId}", adminH.UpdateUser)
				r.Delete("/admin/users/{userId}", adminH.DeleteUser)
				r.Get("/admin/users/{userId}/forms", adminH.UserForms)
			})
		})
	})

	return r
}
