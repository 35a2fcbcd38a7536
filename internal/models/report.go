package models

import (
	"time"
)

type ReportStatus string

const (
	StatusPending      ReportStatus = "pending"
	StatusAcknowledged ReportStatus = "acknowledged"
	StatusInProgress   ReportStatus = "in-progress"
	StatusResolved     ReportStatus = "resolved"
	StatusClosed       ReportStatus = "closed"
	StatusRejected     ReportStatus = "rejected"
)

type ReportPriority string

const (
	PriorityLow    ReportPriority = "low"
	PriorityMedium ReportPriority = "medium"
	PriorityHigh   ReportPriority = "high"
	PriorityUrgent ReportPriority = "urgent"
)

// InitialSubmissionReason seeds the first status history entry of every report.
const InitialSubmissionReason = "Initial submission"

var Categories = []string{
	"Road Maintenance",
	"Waste Management",
	"Water & Utilities",
	"Lighting",
	"Vandalism",
	"Traffic",
	"Infrastructure",
	"Other",
}

func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func ValidStatus(s ReportStatus) bool {
	switch s {
	case StatusPending, StatusAcknowledged, StatusInProgress,
		StatusResolved, StatusClosed, StatusRejected:
		return true
	}
	return false
}

func ValidPriority(p ReportPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CanTransition reports whether to is a canonical next step from from.
// The lifecycle is pending -> acknowledged -> in-progress -> resolved/closed/rejected.
// Admin status updates may still apply non-canonical transitions (override);
// callers use this to log them, not to reject them.
func CanTransition(from, to ReportStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusAcknowledged || to == StatusInProgress || to == StatusRejected || to == StatusClosed
	case StatusAcknowledged:
		return to == StatusInProgress || to == StatusRejected || to == StatusClosed
	case StatusInProgress:
		return to == StatusResolved || to == StatusClosed || to == StatusRejected
	case StatusResolved, StatusClosed, StatusRejected:
		return false
	}
	return false
}

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type Location struct {
	Address     string       `json:"address" bson:"address"`
	Landmark    string       `json:"landmark,omitempty" bson:"landmark,omitempty"`
	City        string       `json:"city,omitempty" bson:"city,omitempty"`
	State       string       `json:"state,omitempty" bson:"state,omitempty"`
	Pincode     string       `json:"pincode,omitempty" bson:"pincode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

type Image struct {
	URL        string    `json:"url" bson:"url"`
	Caption    string    `json:"caption,omitempty" bson:"caption,omitempty"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

type Upvote struct {
	UserID    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type Comment struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type StatusChange struct {
	Status    ReportStatus `json:"status" bson:"status"`
	ChangedBy string       `json:"changed_by" bson:"changed_by"`
	Reason    string       `json:"reason" bson:"reason"`
	ChangedAt time.Time    `json:"changed_at" bson:"changed_at"`
}

type Resolution struct {
	ResolvedBy string     `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	Notes      string     `json:"notes,omitempty" bson:"notes,omitempty"`
}

type ReportMetadata struct {
	ViewCount      int  `json:"view_count" bson:"view_count"`
	ShareCount     int  `json:"share_count" bson:"share_count"`
	ReportedViaApp bool `json:"reported_via_app" bson:"reported_via_app"`
}

type Report struct {
	ID            string         `json:"id" bson:"_id"`
	Title         string         `json:"title" bson:"title"`
	Description   string         `json:"description" bson:"description"`
	Category      string         `json:"category" bson:"category"`
	Priority      ReportPriority `json:"priority" bson:"priority"`
	Status        ReportStatus   `json:"status" bson:"status"`
	Location      Location       `json:"location" bson:"location"`
	Images        []Image        `json:"images" bson:"images"`
	UserID        string         `json:"user_id" bson:"user_id"`
	AssignedTo    string         `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	Upvotes       []Upvote       `json:"upvotes" bson:"upvotes"`
	Comments      []Comment      `json:"comments" bson:"comments"`
	StatusHistory []StatusChange `json:"status_history" bson:"status_history"`
	Resolution    Resolution     `json:"resolution" bson:"resolution"`
	Metadata      ReportMetadata `json:"metadata" bson:"metadata"`
	Tags          []string       `json:"tags,omitempty" bson:"tags,omitempty"`
	IsPublic      bool           `json:"is_public" bson:"is_public"`
	IsAnonymous   bool           `json:"is_anonymous" bson:"is_anonymous"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" bson:"updated_at"`
}

func (r *Report) UpvoteCount() int {
	return len(r.Upvotes)
}

func (r *Report) CommentCount() int {
	return len(r.Comments)
}

// HasUpvoted reports whether userID currently holds an upvote entry.
func (r *Report) HasUpvoted(userID string) bool {
	for _, u := range r.Upvotes {
		if u.UserID == userID {
			return true
		}
	}
	return false
}

// ToggleUpvote removes the user's upvote if present, otherwise adds one.
// Returns true if an upvote was added. A user never holds more than one
// entry, so toggling twice restores the original membership.
func (r *Report) ToggleUpvote(userID string, now time.Time) bool {
	for i, u := range r.Upvotes {
		if u.UserID == userID {
			r.Upvotes = append(r.Upvotes[:i], r.Upvotes[i+1:]...)
			return false
		}
	}
	r.Upvotes = append(r.Upvotes, Upvote{UserID: userID, CreatedAt: now})
	return true
}

// ApplyStatus appends a status history entry, sets the new status and, only
// when the new status is resolved, stamps the resolution block.
func (r *Report) ApplyStatus(newStatus ReportStatus, actorID, reason string, now time.Time) {
	if reason == "" {
		reason = "Status changed to " + string(newStatus)
	}
	r.StatusHistory = append(r.StatusHistory, StatusChange{
		Status:    newStatus,
		ChangedBy: actorID,
		Reason:    reason,
		ChangedAt: now,
	})
	r.Status = newStatus

	if newStatus == StatusResolved {
		t := now
		r.Resolution.ResolvedAt = &t
		r.Resolution.ResolvedBy = actorID
	}
}

type CreateReportRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Priority    ReportPriority `json:"priority"`
	Location    Location       `json:"location"`
	Images      []Image        `json:"images"`
	Tags        []string       `json:"tags"`
	IsAnonymous bool           `json:"is_anonymous"`
}

func (r *CreateReportRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	} else if len(r.Title) < 5 {
		errors["title"] = "Title must be at least 5 characters"
	} else if len(r.Title) > 100 {
		errors["title"] = "Title cannot exceed 100 characters"
	}
	if r.Description == "" {
		errors["description"] = "Description is required"
	} else if len(r.Description) < 20 {
		errors["description"] = "Description must be at least 20 characters"
	} else if len(r.Description) > 2000 {
		errors["description"] = "Description cannot exceed 2000 characters"
	}
	if r.Category == "" {
		errors["category"] = "Category is required"
	} else if !ValidCategory(r.Category) {
		errors["category"] = "Unknown category"
	}
	if r.Priority != "" && !ValidPriority(r.Priority) {
		errors["priority"] = "Priority must be one of low, medium, high, urgent"
	}
	if r.Location.Address == "" {
		errors["location"] = "Location address is required"
	}

	return errors
}

// UpdateReportRequest carries the fields a report owner may overwrite.
// Status, assignment and priority changes go through the admin endpoint.
type UpdateReportRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Location    *Location `json:"location"`
	Images      []Image   `json:"images"`
	Tags        []string  `json:"tags"`
	IsPublic    *bool     `json:"is_public"`
}

func (r *UpdateReportRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title != nil && (len(*r.Title) < 5 || len(*r.Title) > 100) {
		errors["title"] = "Title must be between 5 and 100 characters"
	}
	if r.Description != nil && (len(*r.Description) < 20 || len(*r.Description) > 2000) {
		errors["description"] = "Description must be between 20 and 2000 characters"
	}
	if r.Category != nil && !ValidCategory(*r.Category) {
		errors["category"] = "Unknown category"
	}
	if r.Location != nil && r.Location.Address == "" {
		errors["location"] = "Location address is required"
	}

	return errors
}

type StatusUpdateRequest struct {
	Status     ReportStatus   `json:"status"`
	Reason     string         `json:"reason"`
	AssignedTo *string        `json:"assigned_to"`
	Priority   ReportPriority `json:"priority"`
}

func (r *StatusUpdateRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Status == "" {
		errors["status"] = "Status is required"
	} else if !ValidStatus(r.Status) {
		errors["status"] = "Unknown status"
	}
	if r.Priority != "" && !ValidPriority(r.Priority) {
		errors["priority"] = "Priority must be one of low, medium, high, urgent"
	}

	return errors
}

type CommentRequest struct {
	Text string `json:"text"`
}

func (r *CommentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Text == "" {
		errors["text"] = "Comment text is required"
	} else if len(r.Text) > 1000 {
		errors["text"] = "Comment cannot exceed 1000 characters"
	}

	return errors
}
