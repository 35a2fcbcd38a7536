package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/urban-guardians/backend/internal/middleware"
	"github.com/urban-guardians/backend/internal/models"
	"github.com/urban-guardians/backend/internal/services"
)

type AdminHandler struct {
	reports   services.ReportStore
	users     services.UserStore
	analytics services.AnalyticsService
	exporter  *services.ExportService
}

func NewAdminHandler(reports services.ReportStore, users services.UserStore, analytics services.AnalyticsService, exporter *services.ExportService) *AdminHandler {
	return &AdminHandler{
		reports:   reports,
		users:     users,
		analytics: analytics,
		exporter:  exporter,
	}
}

// Dashboard bundles the overview stats with the open high-priority queue and
// the newest signups, the three things the admin landing page renders.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analytics.Overview()
	if err != nil {
		log.Printf("[Dashboard] Overview error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to build dashboard"))
		return
	}

	urgent, _, err := h.reports.List(services.ReportFilter{
		Status:   models.StatusPending,
		Priority: models.PriorityUrgent,
	}, 1, 10)
	if err != nil {
		log.Printf("[Dashboard] Urgent reports error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to build dashboard"))
		return
	}

	recentUsers, _, err := h.users.List(services.UserFilter{}, 1, 5)
	if err != nil {
		log.Printf("[Dashboard] Recent users error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to build dashboard"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"overview":       overview,
		"urgent_reports": urgent,
		"recent_users":   recentUsers,
	}))
}

func (h *AdminHandler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	reportID := chi.URLParam(r, "reportId")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	report, err := h.reports.UpdateStatus(reportID, actorID, &req)
	if err != nil {
		if err == services.ErrReportNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
			return
		}
		log.Printf("[UpdateReportStatus] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update report status"))
		return
	}

	log.Printf("[UpdateReportStatus] Report %s set to %s by %s", reportID, req.Status, actorID)
	writeJSON(w, http.StatusOK, models.ReportResponse{Success: true, Report: report})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, limit := pagination(r)

	filter := services.UserFilter{
		Role:   models.Role(query.Get("role")),
		City:   query.Get("city"),
		Search: query.Get("search"),
	}

	users, total, err := h.users.List(filter, page, limit)
	if err != nil {
		log.Printf("[ListUsers] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to fetch users"))
		return
	}

	writeJSON(w, http.StatusOK, models.UserListResponse{
		Success: true,
		Users:   users,
		Total:   total,
		Page:    page,
		Pages:   totalPages(total, limit),
	})
}

// DeleteUser removes an account and cascades to its reports. Admins cannot
// delete themselves.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	targetID := chi.URLParam(r, "userId")

	if targetID == actorID {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Cannot delete your own account"))
		return
	}

	if _, err := h.users.GetByID(targetID); err != nil {
		if err == services.ErrUserNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete user"))
		return
	}

	removed, err := h.reports.DeleteByUser(targetID)
	if err != nil {
		log.Printf("[DeleteUser] Cascade error for %s: %v", targetID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete user's reports"))
		return
	}

	if err := h.users.Delete(targetID); err != nil {
		log.Printf("[DeleteUser] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete user"))
		return
	}

	log.Printf("[DeleteUser] User %s deleted by %s, %d reports removed", targetID, actorID, removed)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"message":         "User deleted successfully",
		"reports_removed": removed,
	}))
}

func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var (
		path string
		err  error
	)
	switch format {
	case "json":
		path, err = h.exporter.ExportJSON()
	case "csv":
		path, err = h.exporter.ExportCSV()
	default:
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Unsupported export format"))
		return
	}
	if err != nil {
		log.Printf("[Export] %s export failed: %v", format, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Export failed"))
		return
	}

	log.Printf("[Export] %s export written to %s", format, path)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{
		"format": format,
		"path":   path,
	}))
}
