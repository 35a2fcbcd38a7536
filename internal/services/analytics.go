package services

import (
	"github.com/urban-guardians/backend/internal/models"
)

// AnalyticsService computes read-only derived views over the report and user
// collections. It holds no state of its own and never mutates.
type AnalyticsService interface {
	Overview() (*models.OverviewStats, error)
	ByCategory() ([]models.CategoryStats, error)
	// ByLocation groups by city or state.
	ByLocation(groupBy string) ([]models.LocationStats, error)
	// Timeline buckets submissions over the trailing window. Interval is
	// one of "daily", "weekly", "monthly"; anything else means daily.
	Timeline(days int, interval string) ([]models.TimeBucket, error)
	PriorityDistribution() ([]models.PriorityStats, error)
	// Engagement ranks reports by upvotes plus comments, highest first.
	Engagement(limit int) ([]models.EngagementEntry, error)
	ResolutionTimes() (*models.ResolutionStats, error)
}

func resolutionRate(resolved, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(resolved) / float64(total) * 100
}
