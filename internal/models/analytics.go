package models

import "time"

// OverviewStats is the platform-wide dashboard snapshot.
type OverviewStats struct {
	TotalUsers        int64   `json:"total_users"`
	TotalCitizens     int64   `json:"total_citizens"`
	TotalOfficials    int64   `json:"total_officials"`
	TotalReports      int64   `json:"total_reports"`
	PendingReports    int64   `json:"pending_reports"`
	InProgressReports int64   `json:"in_progress_reports"`
	ResolvedReports   int64   `json:"resolved_reports"`
	ResolutionRate    float64 `json:"resolution_rate"`
}

type CategoryStats struct {
	Category       string  `json:"category" bson:"category"`
	Total          int64   `json:"total" bson:"total"`
	Pending        int64   `json:"pending" bson:"pending"`
	InProgress     int64   `json:"in_progress" bson:"in_progress"`
	Resolved       int64   `json:"resolved" bson:"resolved"`
	ResolutionRate float64 `json:"resolution_rate" bson:"resolution_rate"`
}

type LocationStats struct {
	Location   string `json:"location" bson:"location"`
	Total      int64  `json:"total" bson:"total"`
	Pending    int64  `json:"pending" bson:"pending"`
	InProgress int64  `json:"in_progress" bson:"in_progress"`
	Resolved   int64  `json:"resolved" bson:"resolved"`
}

// TimeBucket is one interval of the submissions timeline.
type TimeBucket struct {
	Bucket   string `json:"bucket" bson:"bucket"`
	Total    int64  `json:"total" bson:"total"`
	Resolved int64  `json:"resolved" bson:"resolved"`
}

type PriorityStats struct {
	Priority string `json:"priority" bson:"priority"`
	Total    int64  `json:"total" bson:"total"`
}

// EngagementEntry ranks a report by community activity.
type EngagementEntry struct {
	ReportID   string `json:"report_id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Upvotes    int    `json:"upvotes"`
	Comments   int    `json:"comments"`
	Engagement int    `json:"engagement"`
	ViewCount  int    `json:"view_count"`
}

// ResolutionStats summarizes resolved-at minus created-at over all
// resolved reports.
type ResolutionStats struct {
	ResolvedCount int64         `json:"resolved_count"`
	AvgDuration   time.Duration `json:"avg_duration_ns"`
	MinDuration   time.Duration `json:"min_duration_ns"`
	MaxDuration   time.Duration `json:"max_duration_ns"`
	AvgHours      float64       `json:"avg_hours"`
}
