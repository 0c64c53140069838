package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/auth"
	"github.com/BrunoXDR/project-manager-v2/internal/logging"
	"github.com/BrunoXDR/project-manager-v2/internal/storage"
)

func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/api/health", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", h.Login)
		r.Post("/users", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(h.tokens, h.store))
			managers := auth.RequireRoles(auth.ManagersAndAdmins...)
			admins := auth.RequireRoles(auth.AdminsOnly...)

			r.Get("/users/me", h.Me)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", h.ListProjects)
				r.With(managers).Post("/", h.CreateProject)

				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", h.GetProject)
					r.With(managers).Put("/", h.UpdateProject)
					r.With(admins).Delete("/", h.DeleteProject)

					r.With(managers).Post("/advance-phase", h.AdvancePhase)
					r.Get("/quality-gate", h.QualityGate)

					r.Route("/documents", func(r chi.Router) {
						r.Get("/", h.ListDocuments)
						r.Post("/upload", h.UploadDocument)
						r.With(managers).Put("/{documentID}", h.UpdateDocument)
						r.With(managers).Delete("/{documentID}", h.DeleteDocument)
						r.Get("/{documentID}/download", h.DownloadDocument)
					})

					r.Route("/tasks", func(r chi.Router) {
						r.Get("/", h.ListTasks)
						r.Post("/", h.CreateTask)
						r.Get("/{taskID}", h.GetTask)
						r.Put("/{taskID}", h.UpdateTask)
						r.With(managers).Delete("/{taskID}", h.DeleteTask)
					})
				})
			})

			r.Get("/notifications/me", h.MyNotifications)
			r.Post("/notifications/{notificationID}/mark-as-read", h.MarkNotificationRead)

			r.Route("/admin", func(r chi.Router) {
				r.Use(admins)
				r.Get("/task-templates", h.ListTaskTemplates)
				r.Post("/task-templates", h.CreateTaskTemplate)
				r.Get("/audit-logs", h.AuditLogs)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/projects-by-status", h.ProjectsBy(storage.GroupByStatus))
				r.Get("/projects-by-phase", h.ProjectsBy(storage.GroupByPhase))
				r.Get("/projects-by-pm", h.ProjectsBy(storage.GroupByProjectManager))
				r.Get("/projects-by-tl", h.ProjectsBy(storage.GroupByTechnicalLead))
				r.Get("/projects-by-client", h.ProjectsBy(storage.GroupByClient))
				r.Get("/overdue-projects", h.OverdueProjects)
			})
		})
	})

	return r
}
