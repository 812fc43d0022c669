/*
handlers.go - HTTP API handlers for the shift pay service

PURPOSE:
  Exposes the pay calculator and upload sessions via REST API. Handles HTTP
  request/response, JSON serialization, file transfer, and delegates to the
  session service.

ENDPOINTS:
  GET    /healthz                        Liveness check
  GET    /api/template?format=csv|xlsx   Blank attendance sheet
  POST   /api/compute                    One record -> breakdown + details
  POST   /api/sessions                   Multipart "file" upload -> session
  GET    /api/sessions/{id}              Session rows and summaries
  GET    /api/sessions/{id}/summary      Summaries only
  GET    /api/sessions/{id}/export       Result sheet download
  DELETE /api/sessions/{id}              Discard a session

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid sheet, invalid record, unknown format
  - 404: Session not found
  - 410: Session expired
  - 413: Upload larger than the configured limit
  - 500: Internal errors

SECURITY NOTE:
  No authentication. Sessions are addressable by anyone holding the ID.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/shift-pay/pay"
	"github.com/warp/shift-pay/session"
	"github.com/warp/shift-pay/sheet"
)

// DefaultMaxUploadBytes bounds an upload when Handler.MaxUploadBytes is 0.
const DefaultMaxUploadBytes = 8 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service        *session.Service
	MaxUploadBytes int64
}

// NewHandler creates a new handler over the given service.
func NewHandler(svc *session.Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{Service: svc, MaxUploadBytes: maxUploadBytes}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// TEMPLATE AND ONE-OFF COMPUTE
// =============================================================================

// GetTemplate downloads the blank attendance sheet.
// GET /api/template?format=csv|xlsx
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	format, err := sheet.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err)
		return
	}

	var buf bytes.Buffer
	if err := sheet.Write(&buf, sheet.Template(), format); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build template", err)
		return
	}
	writeFile(w, sheet.TemplateFileName(format), format, buf.Bytes())
}

// Compute prices one attendance record.
// POST /api/compute
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := sheet.ResolveShiftType(req.ShiftType, h.Service.SheetOptions())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift_type", err)
		return
	}

	rec := pay.AttendanceRecord{
		Date:         req.Date,
		EmployeeName: req.EmployeeName,
		ShiftType:    shift,
		BenefitRate:  req.BenefitRate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakHours:   req.BreakHours,
	}
	if err := sheet.CheckRecord(rec, h.Service.SheetOptions()); err != nil {
		var verr *sheet.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid record", Details: toRowErrorDTOs(verr)})
			return
		}
		writeServiceError(w, err)
		return
	}
	b, details, err := h.Service.Compute(rec)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ComputeResponse{
		Record:    toRecordDTO(rec),
		Breakdown: toBreakdownDTO(b),
		Details:   details,
	})
}

// =============================================================================
// SESSIONS
// =============================================================================

// CreateSession uploads a sheet and computes it.
// POST /api/sessions (multipart/form-data, field "file")
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	file, fh, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Missing file upload", err)
		return
	}
	defer file.Close()

	sess, err := h.Service.Upload(r.Context(), fh.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionDTO(sess, h.Service.Rates()))
}

// GetSession returns a session with rows and summaries.
// GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(sess, h.Service.Rates()))
}

// GetSummary returns only the summaries of a session.
// GET /api/sessions/{id}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(s))
}

// ExportSession downloads the enriched result sheet.
// GET /api/sessions/{id}/export?format=csv|xlsx
func (h *Handler) ExportSession(w http.ResponseWriter, r *http.Request) {
	format, err := sheet.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err)
		return
	}

	var buf bytes.Buffer
	name, err := h.Service.Export(r.Context(), chi.URLParam(r, "id"), &buf, format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeFile(w, name, format, buf.Bytes())
}

// DeleteSession discards a session.
// DELETE /api/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps session, sheet and pay errors to a status.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		verr    *sheet.ValidationError
		missing *sheet.MissingColumnError
	)
	switch {
	case session.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Session not found", err)
	case session.IsExpired(err):
		writeError(w, http.StatusGone, "Session expired", err)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid rows", Details: toRowErrorDTOs(verr)})
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing required columns", Details: missing.Columns})
	case sheet.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	default:
		logrus.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeFile(w http.ResponseWriter, name string, format sheet.Format, data []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
