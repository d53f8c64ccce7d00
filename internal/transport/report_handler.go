package transport

import (
	"fmt"
	"net/http"
	"strconv"

	"brew-stock/internal/middleware"
	"brew-stock/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the dashboard and weekly reports
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes mounts the dashboard for any signed-in user and weekly
// reports for owners
func (h *ReportHandler) RegisterRoutes(r chi.Router, auth, ownerOnly func(http.Handler) http.Handler) {
	r.With(auth).Get("/api/dashboard", h.Dashboard)

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(auth, ownerOnly)
		r.Get("/weekly", h.Weekly)
		r.Get("/weekly/export", h.ExportWeekly)
	})
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		respondError(w, h.logger, err, "failed to build dashboard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, dashboard)
}

// Weekly returns the report for ?offset weeks ago (default 0)
func (h *ReportHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	offset, ok := weekOffset(w, r)
	if !ok {
		return
	}

	report, err := h.reportService.Weekly(r.Context(), offset)
	if err != nil {
		respondError(w, h.logger, err, "failed to build weekly report")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}

// ExportWeekly streams the weekly report as an xlsx attachment
func (h *ReportHandler) ExportWeekly(w http.ResponseWriter, r *http.Request) {
	offset, ok := weekOffset(w, r)
	if !ok {
		return
	}

	data, filename, err := h.reportService.WeeklyWorkbook(r.Context(), offset)
	if err != nil {
		respondError(w, h.logger, err, "failed to export weekly report")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write workbook", zap.Error(err))
	}
}

func weekOffset(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("offset")
	if raw == "" {
		return 0, true
	}

	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return 0, false
	}
	return offset, true
}
