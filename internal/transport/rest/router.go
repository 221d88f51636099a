package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ebooklet-admin/internal/auth"
	"github.com/frahmantamala/ebooklet-admin/internal/patient"
	"github.com/frahmantamala/ebooklet-admin/internal/permission"
	"github.com/frahmantamala/ebooklet-admin/internal/setting"
	"github.com/frahmantamala/ebooklet-admin/internal/transport/middleware"
	"github.com/frahmantamala/ebooklet-admin/internal/transport/swagger"
	"github.com/frahmantamala/ebooklet-admin/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RegisterAllRoutes wires the full API surface. Route groups are gated by
// capability, not by role name, so a custom permission set behaves exactly
// like the role it was derived from.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, patientHandler *patient.Handler, settingHandler *setting.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
		})

		// Everything below requires a valid token.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/patients", func(er chi.Router) {
				er.Group(func(vr chi.Router) {
					vr.Use(auth.RequireCapability(permission.CapViewPatients))
					vr.Get("/", patientHandler.ListPatients)
				})

				er.Group(func(xr chi.Router) {
					xr.Use(auth.RequireCapability(permission.CapExportCSV))
					xr.Get("/export", patientHandler.ExportCSV)
				})

				er.Group(func(ar chi.Router) {
					ar.Use(auth.RequireCapability(permission.CapAddPatient))
					ar.Post("/", patientHandler.UpsertPatient)
				})

				er.Group(func(dr chi.Router) {
					dr.Use(auth.RequireCapability(permission.CapDeletePatient))
					dr.Delete("/{mrNumber}", patientHandler.DeletePatient)
					dr.Post("/clear-all", patientHandler.ClearAllPatients)
				})
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(auth.RequireCapability(permission.CapManageUsers))
				ur.Get("/", userHandler.ListUsers)
				ur.Post("/", userHandler.CreateUser)
				ur.Post("/password", userHandler.ChangePassword)
				ur.Post("/role", userHandler.ChangeRole)
				ur.Post("/status", userHandler.ToggleStatus)
				ur.Delete("/", userHandler.DeleteUser)
			})

			pr.Route("/settings", func(sr chi.Router) {
				// reads are open to any authenticated staff; writes are
				// restricted to user managers
				sr.Get("/", settingHandler.ListSettings)
				sr.Get("/{key}", settingHandler.GetSetting)

				sr.Group(func(wr chi.Router) {
					wr.Use(auth.RequireCapability(permission.CapManageUsers))
					wr.Put("/", settingHandler.UpsertSetting)
				})
			})
		})
	})
}
