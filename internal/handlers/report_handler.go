package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/urban-guardians/backend/internal/middleware"
	"github.com/urban-guardians/backend/internal/models"
	"github.com/urban-guardians/backend/internal/services"
)

type ReportHandler struct {
	reports services.ReportStore
	users   services.UserStore
}

func NewReportHandler(reports services.ReportStore, users services.UserStore) *ReportHandler {
	return &ReportHandler{reports: reports, users: users}
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, limit := pagination(r)

	filter := services.ReportFilter{
		Status:     models.ReportStatus(query.Get("status")),
		Category:   query.Get("category"),
		City:       query.Get("city"),
		PublicOnly: true,
	}

	reports, total, err := h.reports.List(filter, page, limit)
	if err != nil {
		log.Printf("[ListReports] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to fetch reports"))
		return
	}

	writeJSON(w, http.StatusOK, models.ReportListResponse{
		Success: true,
		Reports: reports,
		Total:   total,
		Page:    page,
		Pages:   totalPages(total, limit),
	})
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportId")

	report, err := h.reports.GetByID(reportID)
	if err != nil {
		if err == services.ErrReportNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to fetch report"))
		return
	}

	writeJSON(w, http.StatusOK, models.ReportResponse{Success: true, Report: report})
}

func (h *ReportHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	reports, err := h.reports.ListByUser(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to fetch reports"))
		return
	}

	writeJSON(w, http.StatusOK, models.ReportListResponse{
		Success: true,
		Reports: reports,
		Total:   int64(len(reports)),
		Page:    1,
		Pages:   1,
	})
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		log.Println("[CreateReport] Unauthorized - no user ID in context")
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	req, err := decodeCreateReport(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		log.Printf("[CreateReport] Validation errors: %v", errors)
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	report, err := h.reports.Create(userID, req)
	if err != nil {
		log.Printf("[CreateReport] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create report"))
		return
	}

	log.Printf("[CreateReport] Report created: %s", report.ID)
	writeJSON(w, http.StatusCreated, models.ReportResponse{Success: true, Report: report})
}

// decodeCreateReport accepts either a JSON body or multipart form fields.
// Image files themselves are handled by a separate upload path; only URL
// metadata rides along here.
func decodeCreateReport(r *http.Request) (*models.CreateReportRequest, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req models.CreateReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return nil, err
	}

	req := &models.CreateReportRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Priority:    models.ReportPriority(r.FormValue("priority")),
		Location: models.Location{
			Address:  r.FormValue("address"),
			Landmark: r.FormValue("landmark"),
			City:     r.FormValue("city"),
			State:    r.FormValue("state"),
			Pincode:  r.FormValue("pincode"),
		},
		IsAnonymous: r.FormValue("is_anonymous") == "true",
	}

	if latStr, lngStr := r.FormValue("lat"), r.FormValue("lng"); latStr != "" && lngStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lng, err2 := strconv.ParseFloat(lngStr, 64)
		if err1 == nil && err2 == nil {
			req.Location.Coordinates = &models.Coordinates{Lat: lat, Lng: lng}
		}
	}
	for _, url := range r.MultipartForm.Value["images"] {
		if url != "" {
			req.Images = append(req.Images, models.Image{URL: url})
		}
	}
	return req, nil
}

func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	reportID := chi.URLParam(r, "reportId")

	var req models.UpdateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	report, err := h.reports.Update(userID, h.isAdmin(userID), reportID, &req)
	if err != nil {
		if err == services.ErrReportNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
			return
		}
		if err == services.ErrUnauthorized {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to update this report"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update report"))
		return
	}

	writeJSON(w, http.StatusOK, models.ReportResponse{Success: true, Report: report})
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	reportID := chi.URLParam(r, "reportId")

	err := h.reports.Delete(userID, h.isAdmin(userID), reportID)
	if err != nil {
		if err == services.ErrReportNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
			return
		}
		if err == services.ErrUnauthorized {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to delete this report"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete report"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Report deleted successfully"}))
}

func (h *ReportHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	reportID := chi.URLParam(r, "reportId")

	added, count, err := h.reports.ToggleUpvote(reportID, userID)
	if err != nil {
		if err == services.ErrReportNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
			return
		}
		log.Printf("[Upvote] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update upvote"))
		return
	}

	writeJSON(w, http.StatusOK, models.UpvoteResponse{
		Success:     true,
		Added:       added,
		UpvoteCount: count,
	})
}

func (h *ReportHandler) Comment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	reportID := chi.URLParam(r, "reportId")

	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	comment, err := h.reports.AddComment(reportID, userID, req.Text)
	if err != nil {
		if err == services.ErrReportNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to add comment"))
		return
	}

	writeJSON(w, http.StatusOK, models.CommentResponse{Success: true, Comment: comment})
}

// isAdmin resolves the requester's role for ownership checks. Lookup failures
// fall back to non-admin, which only narrows permissions.
func (h *ReportHandler) isAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	user, err := h.users.GetByID(userID)
	if err != nil {
		return false
	}
	return user.Role == models.RoleAdmin
}
