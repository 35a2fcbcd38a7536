package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/urban-guardians/backend/internal/models"
)

// FileAnalyticsService computes the same derived views as the Mongo
// implementation by grouping in memory over the file-backed stores.
type FileAnalyticsService struct {
	reports ReportStore
	users   UserStore
}

func NewFileAnalyticsService(reports ReportStore, users UserStore) *FileAnalyticsService {
	return &FileAnalyticsService{reports: reports, users: users}
}

func (s *FileAnalyticsService) Overview() (*models.OverviewStats, error) {
	users, err := s.users.ListAll()
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.ListAll()
	if err != nil {
		return nil, err
	}

	stats := &models.OverviewStats{
		TotalUsers:   int64(len(users)),
		TotalReports: int64(len(reports)),
	}
	for _, u := range users {
		switch u.Role {
		case models.RoleCitizen:
			stats.TotalCitizens++
		case models.RoleOfficial:
			stats.TotalOfficials++
		}
	}
	for _, r := range reports {
		switch r.Status {
		case models.StatusPending:
			stats.PendingReports++
		case models.StatusInProgress:
			stats.InProgressReports++
		case models.StatusResolved:
			stats.ResolvedReports++
		}
	}
	stats.ResolutionRate = resolutionRate(stats.ResolvedReports, stats.TotalReports)
	return stats, nil
}

func (s *FileAnalyticsService) ByCategory() ([]models.CategoryStats, error) {
	reports, err := s.reports.ListAll()
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*models.CategoryStats)
	for _, r := range reports {
		row, ok := byCategory[r.Category]
		if !ok {
			row = &models.CategoryStats{Category: r.Category}
			byCategory[r.Category] = row
		}
		row.Total++
		switch r.Status {
		case models.StatusPending:
			row.Pending++
		case models.StatusInProgress:
			row.InProgress++
		case models.StatusResolved:
			row.Resolved++
		}
	}

	out := make([]models.CategoryStats, 0, len(byCategory))
	for _, row := range byCategory {
		row.ResolutionRate = resolutionRate(row.Resolved, row.Total)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

func (s *FileAnalyticsService) ByLocation(groupBy string) ([]models.LocationStats, error) {
	reports, err := s.reports.ListAll()
	if err != nil {
		return nil, err
	}

	byLocation := make(map[string]*models.LocationStats)
	for _, r := range reports {
		key := r.Location.City
		if groupBy == "state" {
			key = r.Location.State
		}
		if key == "" {
			key = "Unknown"
		}
		row, ok := byLocation[key]
		if !ok {
			row = &models.LocationStats{Location: key}
			byLocation[key] = row
		}
		row.Total++
		switch r.Status {
		case models.StatusPending:
			row.Pending++
		case models.StatusInProgress:
			row.InProgress++
		case models.StatusResolved:
			row.Resolved++
		}
	}

	out := make([]models.LocationStats, 0, len(byLocation))
	for _, row := range byLocation {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

func timeBucketKey(t time.Time, interval string) string {
	t = t.UTC()
	switch interval {
	case "weekly":
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-%02d", year, week)
	case "monthly":
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

func (s *FileAnalyticsService) Timeline(days int, interval string) ([]models.TimeBucket, error) {
	reports, err := s.reports.ListAll()
	if err != nil {
		return nil, err
	}

	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	byBucket := make(map[string]*models.TimeBucket)
	for _, r := range reports {
		if r.CreatedAt.Before(since) {
			continue
		}
		key := timeBucketKey(r.CreatedAt, interval)
		row, ok := byBucket[key]
		if !ok {
			row = &models.TimeBucket{Bucket: key}
			byBucket[key] = row
		}
		row.Total++
		if r.Status == models.StatusResolved {
			row.Resolved++
		}
	}

	out := make([]models.TimeBucket, 0, len(byBucket))
	for _, row := range byBucket {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out, nil
}

func (s *FileAnalyticsService) PriorityDistribution() ([]models.PriorityStats, error) {
	reports, err := s.reports.ListAll()
	if err != nil {
		return nil, err
	}

	byPriority := make(map[string]int64)
	for _, r := range reports {
		byPriority[string(r.Priority)]++
	}

	out := make([]models.PriorityStats, 0, len(byPriority))
	for priority, total := range byPriority {
		out = append(out, models.PriorityStats{Priority: priority, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

func (s *FileAnalyticsService) Engagement(limit int) ([]models.EngagementEntry, error) {
	reports, err := s.reports.ListAll()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	out := make([]models.EngagementEntry, 0, len(reports))
	for _, r := range reports {
		out = append(out, models.EngagementEntry{
			ReportID:   r.ID,
			Title:      r.Title,
			Category:   r.Category,
			Upvotes:    r.UpvoteCount(),
			Comments:   r.CommentCount(),
			Engagement: r.UpvoteCount() + r.CommentCount(),
			ViewCount:  r.Metadata.ViewCount,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Engagement > out[j].Engagement })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *FileAnalyticsService) ResolutionTimes() (*models.ResolutionStats, error) {
	reports, err := s.reports.ListAll()
	if err != nil {
		return nil, err
	}

	durations := make([]time.Duration, 0)
	for _, r := range reports {
		if r.Status == models.StatusResolved && r.Resolution.ResolvedAt != nil {
			durations = append(durations, r.Resolution.ResolvedAt.Sub(r.CreatedAt))
		}
	}
	return summarizeDurations(durations), nil
}
