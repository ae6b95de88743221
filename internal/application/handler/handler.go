// Package handler exposes the application lifecycle over HTTP. Intake is a
// multipart form so the six document slots upload in the same request as the
// form fields.
package handler

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"admitflow/internal/application/models"
	"admitflow/internal/application/service"
	"admitflow/internal/transport/http/shared"
	dErrors "admitflow/pkg/domain-errors"
)

const maxUploadBytes = 32 << 20

// FileStore persists uploaded documents.
type FileStore interface {
	SaveDocument(field, originalName string, r io.Reader) (string, error)
	Remove(path string) error
}

// Handler serves the application routes.
type Handler struct {
	svc    *service.Service
	files  FileStore
	logger *slog.Logger
}

// New constructs a Handler.
func New(svc *service.Service, files FileStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, files: files, logger: logger}
}

// Submit handles POST /api/applications. Multipart: form fields plus up to six
// document files. The isDraft flag skips required-field validation.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed multipart form"))
		return
	}

	app := applicationFromForm(r)
	isDraft := r.FormValue("isDraft") == "true"

	id, err := h.svc.Submit(r.Context(), app, isDraft)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// Files attach after the record exists so uploads reference a real id.
	// A failed slot is logged and skipped; the submission already stands.
	for _, field := range models.DocumentFields {
		file, header, err := r.FormFile(string(field))
		if err != nil {
			continue
		}
		h.attachFile(r, id, field, file, header)
	}

	created, err := h.svc.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) attachFile(r *http.Request, id int64, field models.DocumentField, file multipart.File, header *multipart.FileHeader) {
	defer file.Close()

	path, err := h.files.SaveDocument(string(field), header.Filename, file)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to store document",
			"application_id", id, "field", string(field), "error", err)
		return
	}
	previous, err := h.svc.AttachDocument(r.Context(), id, field, path)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to attach document",
			"application_id", id, "field", string(field), "error", err)
		if rmErr := h.files.Remove(path); rmErr != nil {
			h.logger.WarnContext(r.Context(), "orphan file cleanup failed", "path", path, "error", rmErr)
		}
		return
	}
	if previous != nil {
		if rmErr := h.files.Remove(*previous); rmErr != nil {
			h.logger.WarnContext(r.Context(), "replaced file cleanup failed", "path", *previous, "error", rmErr)
		}
	}
}

// Get handles GET /api/applications/{id} for reviewers.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	app, err := h.svc.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app))
}

// Lookup handles POST /api/applications/lookup: the applicant-side fetch
// keyed on id plus email.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApplicationID int64  `json:"application_id"`
		Email         string `json:"email"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	app, err := h.svc.Lookup(r.Context(), req.ApplicationID, strings.TrimSpace(req.Email))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app))
}

// List handles GET /api/applications with optional courseId and status
// filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter models.Filter
	if v := r.URL.Query().Get("courseId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "courseId must be numeric"))
			return
		}
		filter.CourseID = &id
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.Status(v)
		filter.Status = &status
	}

	apps, err := h.svc.ListSubmitted(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toResponse(app))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

// ListDrafts handles GET /api/applications/drafts?email=.
func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.svc.ListDrafts(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]applicationResponse, 0, len(drafts))
	for _, app := range drafts {
		out = append(out, toResponse(app))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

// UpdateStatus handles PATCH /api/applications/{id}/status (admin).
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	app, err := h.svc.UpdateStatus(r.Context(), id, models.Status(req.Status))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app))
}

// UpdateSelection handles PATCH /api/applications/{id}/selection (officer).
func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req struct {
		Selection string `json:"selection"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	app, err := h.svc.SetSelection(r.Context(), id, models.SelectionStatus(req.Selection))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app))
}

func applicationFromForm(r *http.Request) *models.Application {
	app := &models.Application{
		StudentName:   strings.TrimSpace(r.FormValue("name")),
		Email:         strings.TrimSpace(r.FormValue("email")),
		Phone:         r.FormValue("phone"),
		DateOfBirth:   r.FormValue("dob"),
		Gender:        r.FormValue("gender"),
		Address:       r.FormValue("address"),
		City:          r.FormValue("city"),
		State:         r.FormValue("state"),
		Pincode:       r.FormValue("pincode"),
		Qualification: r.FormValue("qualification"),
		Percentage:    r.FormValue("percentage"),
		ExamName:      r.FormValue("examName"),
		ExamRank:      r.FormValue("examRank"),
	}
	if v := r.FormValue("courseId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			app.CourseID = id
		}
	}
	if v := r.FormValue("preferences"); v != "" {
		for _, part := range strings.Split(v, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				app.Preferences = append(app.Preferences, id)
			}
		}
	}
	return app
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "application id must be a positive integer")
	}
	return id, nil
}
