// Package handler exposes the supplementary-document workflow over HTTP.
package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"admitflow/internal/docrequest/models"
	"admitflow/internal/docrequest/service"
	"admitflow/internal/transport/http/shared"
	dErrors "admitflow/pkg/domain-errors"
)

const maxUploadBytes = 16 << 20

// FileStore persists uploaded request files.
type FileStore interface {
	SaveDocument(field, originalName string, r io.Reader) (string, error)
	Remove(path string) error
}

// Handler serves the document-request routes.
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

// Request handles POST /api/applications/{id}/document-requests (reviewer).
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	applicationID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || applicationID <= 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "application id must be a positive integer"))
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	created, err := h.svc.Request(r.Context(), applicationID, req.Reason)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(created))
}

// ListByApplication handles GET /api/applications/{id}/document-requests.
func (h *Handler) ListByApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || applicationID <= 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "application id must be a positive integer"))
		return
	}
	reqs, err := h.svc.ListByApplication(r.Context(), applicationID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]requestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toResponse(req))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

// Upload handles POST /api/document-requests/{id}/upload: a multipart form
// with one "file" part. The applicant side of the workflow.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	requestID, err := requestPathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "a file part is required"))
		return
	}
	defer file.Close()

	path, err := h.files.SaveDocument("requested", header.Filename, file)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store file"))
		return
	}
	updated, err := h.svc.Upload(r.Context(), requestID, path)
	if err != nil {
		// The stored file has no owner if the transition was refused.
		if rmErr := h.files.Remove(path); rmErr != nil {
			h.logger.WarnContext(r.Context(), "orphan file cleanup failed", "path", path, "error", rmErr)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(updated))
}

// Approve handles POST /api/document-requests/{id}/approve (reviewer).
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID, err := requestPathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	updated, err := h.svc.Approve(r.Context(), requestID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(updated))
}

type requestResponse struct {
	ID            int64      `json:"id"`
	ApplicationID int64      `json:"application_id"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	FilePath      *string    `json:"file_path,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UploadedAt    *time.Time `json:"uploaded_at,omitempty"`
}

func toResponse(req *models.Request) requestResponse {
	return requestResponse{
		ID:            req.ID,
		ApplicationID: req.ApplicationID,
		Reason:        req.Reason,
		Status:        string(req.Status),
		FilePath:      req.FilePath,
		CreatedAt:     req.CreatedAt,
		UploadedAt:    req.UploadedAt,
	}
}

func requestPathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "request id must be a positive integer")
	}
	return id, nil
}
