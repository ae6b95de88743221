// Package http assembles the route tree. Applicant-side routes are public;
// every reviewer mutation is gated by the role that owns the fields it
// writes: admin reviews, faculty co-verifies, officer selects and schedules.
package http

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"admitflow/internal/admitcard"
	apphandler "admitflow/internal/application/handler"
	"admitflow/internal/auth"
	coursehandler "admitflow/internal/course/handler"
	docreqhandler "admitflow/internal/docrequest/handler"
	"admitflow/internal/merit"
	notifhandler "admitflow/internal/notification/handler"
	"admitflow/internal/payment"
	"admitflow/internal/platform/middleware"
	"admitflow/internal/platform/redis"
	"admitflow/internal/verification"
)

// Dependencies carries everything the router wires together.
type Dependencies struct {
	Logger    *slog.Logger
	Validator middleware.TokenValidator

	Applications  *apphandler.Handler
	Verification  *verification.Handler
	Merit         *merit.Handler
	Payments      *payment.Handler
	AdmitCards    *admitcard.Handler
	DocRequests   *docreqhandler.Handler
	Notifications *notifhandler.Handler
	Courses       *coursehandler.Handler
	Auth          *auth.Handler

	// Health probes.
	DB    *sql.DB
	Redis *redis.Client

	// UploadRoot is served read-only under /uploads.
	UploadRoot     string
	RequestTimeout time.Duration
}

// NewRouter builds the chi route tree.
func NewRouter(deps Dependencies) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	admin := middleware.RequireRole(deps.Validator, logger, middleware.RoleAdmin)
	faculty := middleware.RequireRole(deps.Validator, logger, middleware.RoleFaculty)
	officer := middleware.RequireRole(deps.Validator, logger, middleware.RoleOfficer)
	reviewers := middleware.RequireRole(deps.Validator, logger,
		middleware.RoleAdmin, middleware.RoleFaculty, middleware.RoleOfficer)
	verifiers := middleware.RequireRole(deps.Validator, logger,
		middleware.RoleAdmin, middleware.RoleFaculty)
	announcers := middleware.RequireRole(deps.Validator, logger,
		middleware.RoleAdmin, middleware.RoleOfficer)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.DB, deps.Redis))
	r.Handle("/metrics", promhttp.Handler())

	if deps.UploadRoot != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadRoot)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		// Multipart intake; registered outside the JSON content-type guard.
		r.With(middleware.DeviceMetadata).Post("/applications", deps.Applications.Submit)
		r.Post("/document-requests/{id}/upload", deps.DocRequests.Upload)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)

			r.Post("/auth/login", deps.Auth.Login)

			// Applicant-side reads. Ownership is proved by id+email, not a token.
			r.Post("/applications/lookup", deps.Applications.Lookup)
			r.Get("/applications/drafts", deps.Applications.ListDrafts)

			r.Get("/courses", deps.Courses.List)
			r.Get("/courses/{id}", deps.Courses.Get)
			r.With(admin).Post("/courses", deps.Courses.Create)
			r.With(admin).Put("/courses/{id}", deps.Courses.Update)
			r.With(admin).Delete("/courses/{id}", deps.Courses.Delete)

			r.Post("/payments/order", deps.Payments.CreateOrder)
			r.Post("/payments/verify", deps.Payments.Verify)

			r.Get("/notifications", deps.Notifications.List)
			r.With(announcers).Post("/notifications", deps.Notifications.Post)

			r.With(reviewers).Get("/applications", deps.Applications.List)
			r.With(reviewers).Get("/applications/{id}", deps.Applications.Get)
			r.With(admin).Patch("/applications/{id}/status", deps.Applications.UpdateStatus)
			r.With(officer).Patch("/applications/{id}/selection", deps.Applications.UpdateSelection)

			r.With(admin).Patch("/applications/{id}/verification/admin", deps.Verification.SetAdmin)
			r.With(faculty).Patch("/applications/{id}/verification/faculty", deps.Verification.SetFaculty)

			r.With(officer).Get("/merit", deps.Merit.List)
			r.With(officer).Patch("/applications/{id}/interview", deps.AdmitCards.ScheduleInterview)
			r.With(officer).Post("/applications/{id}/admit-card", deps.AdmitCards.Generate)

			r.With(verifiers).Post("/applications/{id}/document-requests", deps.DocRequests.Request)
			r.With(reviewers).Get("/applications/{id}/document-requests", deps.DocRequests.ListByApplication)
			r.With(verifiers).Post("/document-requests/{id}/approve", deps.DocRequests.Approve)
		})
	})

	return r
}
