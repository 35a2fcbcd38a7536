package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/urban-guardians/backend/internal/models"
	"github.com/urban-guardians/backend/internal/services"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Overview()
	if err != nil {
		log.Printf("[AnalyticsOverview] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to compute overview"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(stats))
}

func (h *AnalyticsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.ByCategory()
	if err != nil {
		log.Printf("[AnalyticsByCategory] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to compute category breakdown"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(stats))
}

func (h *AnalyticsHandler) ByLocation(w http.ResponseWriter, r *http.Request) {
	groupBy := r.URL.Query().Get("groupBy")
	if groupBy != "state" {
		groupBy = "city"
	}

	stats, err := h.analytics.ByLocation(groupBy)
	if err != nil {
		log.Printf("[AnalyticsByLocation] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to compute location breakdown"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(stats))
}

func (h *AnalyticsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	days := 30
	if s := r.URL.Query().Get("days"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 365 {
			days = n
		}
	}
	interval := r.URL.Query().Get("interval")
	switch interval {
	case "weekly", "monthly":
	default:
		interval = "daily"
	}

	buckets, err := h.analytics.Timeline(days, interval)
	if err != nil {
		log.Printf("[AnalyticsTimeline] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to compute timeline"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(buckets))
}

func (h *AnalyticsHandler) PriorityDistribution(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.PriorityDistribution()
	if err != nil {
		log.Printf("[AnalyticsPriority] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to compute priority distribution"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(stats))
}

func (h *AnalyticsHandler) Engagement(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.analytics.Engagement(limit)
	if err != nil {
		log.Printf("[AnalyticsEngagement] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to compute engagement ranking"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(entries))
}

func (h *AnalyticsHandler) ResolutionTimes(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.ResolutionTimes()
	if err != nil {
		log.Printf("[AnalyticsResolution] Service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to compute resolution times"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(stats))
}
