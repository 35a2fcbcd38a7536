package services

import (
	"github.com/urban-guardians/backend/internal/models"
)

// ReportFilter is the closed set of report query predicates: strict equality
// per field, plus an ID one-of-set matcher for bulk lookups. Zero values mean
// "no constraint".
type ReportFilter struct {
	Status     models.ReportStatus
	Category   string
	City       string
	Priority   models.ReportPriority
	UserID     string
	IDs        []string
	PublicOnly bool
}

// ReportStore is the report persistence contract. Two implementations exist,
// one backed by MongoDB and one by flat JSON files; the choice is made once
// at startup and injected into every dependent.
type ReportStore interface {
	// Create persists a new report with status forced to pending and the
	// status history seeded, and bumps the owner's cached report counters.
	Create(userID string, req *models.CreateReportRequest) (*models.Report, error)
	GetByID(id string) (*models.Report, error)
	// List returns a page of reports, newest first, plus the total match count.
	List(filter ReportFilter, page, limit int) ([]*models.Report, int64, error)
	ListByUser(userID string) ([]*models.Report, error)
	ListAll() ([]*models.Report, error)
	// Update overwrites owner-editable fields and restamps updatedAt.
	// Only the owning user or an admin may update.
	Update(userID string, admin bool, reportID string, req *models.UpdateReportRequest) (*models.Report, error)
	Delete(userID string, admin bool, reportID string) error
	// DeleteByUser removes every report owned by userID and returns the count.
	DeleteByUser(userID string) (int64, error)
	// ToggleUpvote adds the user's upvote if absent, removes it if present.
	ToggleUpvote(reportID, userID string) (added bool, count int, err error)
	AddComment(reportID, userID, text string) (*models.Comment, error)
	// UpdateStatus appends to the status history, stamps resolution when the
	// new status is resolved, applies assignment/priority changes, and
	// adjusts the owning user's cached stats and civic points.
	UpdateStatus(reportID, actorID string, req *models.StatusUpdateRequest) (*models.Report, error)
	Count() (int64, error)
}
