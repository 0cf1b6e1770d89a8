package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/user/report-service/internal/delivery/http/request"
	"github.com/user/report-service/internal/delivery/http/response"
	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
	"github.com/user/report-service/internal/usecase"
)

// Pinger is the health-probe slice of a backing store client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// PingerFunc adapts a plain function to the Pinger interface.
func PingerFunc(f func(ctx context.Context) error) Pinger { return pingFunc(f) }

type Handler struct {
	manager  usecase.ReportManager
	postgres Pinger
	redis    Pinger
}

func NewHandler(manager usecase.ReportManager, postgres, redis Pinger) *Handler {
	return &Handler{
		manager:  manager,
		postgres: postgres,
		redis:    redis,
	}
}

func (h *Handler) HandleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID <= 0 || req.SiteID <= 0 {
		h.writeJSONError(w, "user_id and site_id are required", http.StatusBadRequest)
		return
	}

	format := entity.ReportFormat(req.Format)
	if req.Format == "" {
		format = entity.FormatXLSX
	}
	if format != entity.FormatXLSX && format != entity.FormatHTML {
		h.writeJSONError(w, "format must be xlsx or html", http.StatusBadRequest)
		return
	}
	if req.Filters.Device != nil && !entity.ValidDevice(*req.Filters.Device) {
		h.writeJSONError(w, "device must be desktop, tablet or mobile", http.StatusBadRequest)
		return
	}
	if req.Filters.Source != nil && !entity.ValidSource(*req.Filters.Source) {
		h.writeJSONError(w, "source must be google or yandex", http.StatusBadRequest)
		return
	}

	report, err := h.manager.Submit(r.Context(), usecase.SubmitReport{
		UserID:  req.UserID,
		SiteID:  req.SiteID,
		Format:  format,
		Filters: req.Filters,
		Force:   req.Force,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDuplicateReport):
			h.writeJSON(w, http.StatusConflict, response.SubmitReportResponse{
				Status:   "duplicate",
				Message:  err.Error(),
				ReportID: report.ID,
			})
		case errors.Is(err, repository.ErrSiteAccess):
			h.writeJSONError(w, err.Error(), http.StatusNotFound)
		default:
			slog.Error("Failed to submit report", "site_id", req.SiteID, "error", err)
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitReportResponse{
		Status:   "success",
		Message:  "Report queued for generation",
		ReportID: report.ID,
	})
}

func (h *Handler) HandleGetReportStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeJSONError(w, "Invalid report id", http.StatusBadRequest)
		return
	}

	report, err := h.manager.GetStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			h.writeJSONError(w, "Report not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get report status", "report_id", id, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ReportStatusResponse{
		ID:          report.ID,
		SiteID:      report.SiteID,
		Format:      string(report.Format),
		Status:      string(report.Status),
		FilePath:    report.FilePath,
		PublicURL:   report.PublicURL,
		Attempts:    report.Attempts,
		CompletedAt: report.CompletedAt,
		CreatedAt:   report.CreatedAt,
	})
}

// HandleDownloadReport streams a completed spreadsheet artifact.
func (h *Handler) HandleDownloadReport(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.writeJSONError(w, "Invalid report id", http.StatusBadRequest)
		return
	}

	report, err := h.manager.GetStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			h.writeJSONError(w, "Report not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to load report for download", "report_id", id, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if report.Status != entity.StatusCompleted || report.FilePath == "" {
		h.writeJSONError(w, "Report has no downloadable artifact", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=report_"+strconv.FormatInt(report.ID, 10)+".xlsx")
	http.ServeFile(w, r, report.FilePath)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"postgres": "healthy", "redis": "healthy"}
	healthy := true

	if err := h.postgres.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		healthy = false
		slog.Error("Health check failed for postgres", "error", err)
	}
	if err := h.redis.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		healthy = false
		slog.Error("Health check failed for redis", "error", err)
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, healthStatus)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
