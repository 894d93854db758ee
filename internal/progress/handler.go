package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/p-n-ai/pai-progress/internal/curriculum"
	"github.com/p-n-ai/pai-progress/internal/report"
)

const (
	maxReportBody = 64 << 10
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler exposes the progress service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates an HTTP handler for svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/subjects", h.handleSubjects)
	mux.HandleFunc("GET /api/v1/subjects/{subject}/tree", h.handleTree)
	mux.HandleFunc("GET /api/v1/subjects/{subject}/knowledge-points", h.handleKnowledgePoints)
	mux.HandleFunc("GET /api/v1/students/{studentID}/progress/{subject}", h.handleProgress)
	mux.HandleFunc("GET /api/v1/students/{studentID}/progress/{subject}/export", h.handleExport)
	mux.HandleFunc("POST /api/v1/students/{studentID}/reports", h.handleCreateReport)
}

func (h *Handler) handleSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"subjects": curriculum.Subjects()})
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Tree(r.PathValue("subject")))
}

func (h *Handler) handleKnowledgePoints(w http.ResponseWriter, r *http.Request) {
	subject := r.PathValue("subject")
	query := r.URL.Query()
	path := make(map[string]string)
	for _, level := range curriculum.Levels(subject) {
		if v := query.Get(level); v != "" {
			path[level] = v
		}
	}
	writeJSON(w, http.StatusOK, h.svc.KnowledgePoints(subject, path))
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	payload, err := h.svc.Progress(r.Context(), Query{
		StudentID:  r.PathValue("studentID"),
		Subject:    r.PathValue("subject"),
		SectionKey: r.URL.Query().Get("sectionKey"),
	})
	if err != nil {
		slog.Error("failed to build progress",
			"student_id", r.PathValue("studentID"),
			"subject", r.PathValue("subject"),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	studentID := r.PathValue("studentID")
	subject := r.PathValue("subject")

	payload, err := h.svc.Progress(r.Context(), Query{StudentID: studentID, Subject: subject})
	if err != nil {
		slog.Error("failed to build progress export", "student_id", studentID, "subject", subject, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, payload); err != nil {
		slog.Error("failed to write progress workbook", "student_id", studentID, "subject", subject, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export progress")
		return
	}

	filename := fmt.Sprintf("progress-%s-%s.xlsx", studentID, subject)
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var in NewReport
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBody))
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.RecordReport(r.Context(), r.PathValue("studentID"), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, created)
	case errors.Is(err, curriculum.ErrUnknownSubject), errors.Is(err, report.ErrInvalidReport):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("failed to record report", "student_id", r.PathValue("studentID"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record report")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
