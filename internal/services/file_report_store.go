package services

import (
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/urban-guardians/backend/internal/models"
	"github.com/urban-guardians/backend/internal/storage"
)

// FileReportStore keeps all reports in a single JSON collection file.
// Read-modify-write cycles run under the store's lock, so two concurrent
// upvote toggles from different users are both preserved. Cross-collection
// stat updates go through the user store's own locked mutator.
type FileReportStore struct {
	mu    sync.RWMutex
	store *storage.JSONStore
	users *FileUserStore
}

func NewFileReportStore(dataDir string, users *FileUserStore) (*FileReportStore, error) {
	store, err := storage.NewJSONStore(dataDir, "reports")
	if err != nil {
		return nil, err
	}
	return &FileReportStore{store: store, users: users}, nil
}

func (s *FileReportStore) load() ([]*models.Report, error) {
	reports := []*models.Report{}
	if err := s.store.Load(&reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *FileReportStore) Create(userID string, req *models.CreateReportRequest) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	images := req.Images
	if images == nil {
		images = []models.Image{}
	}
	for i := range images {
		if images[i].UploadedAt.IsZero() {
			images[i].UploadedAt = now
		}
	}

	report := &models.Report{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    priority,
		Status:      models.StatusPending,
		Location:    req.Location,
		Images:      images,
		UserID:      userID,
		Upvotes:     []models.Upvote{},
		Comments:    []models.Comment{},
		StatusHistory: []models.StatusChange{{
			Status:    models.StatusPending,
			ChangedBy: userID,
			Reason:    models.InitialSubmissionReason,
			ChangedAt: now,
		}},
		Metadata:    models.ReportMetadata{ReportedViaApp: true},
		Tags:        req.Tags,
		IsPublic:    true,
		IsAnonymous: req.IsAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	reports = append(reports, report)
	if err := s.store.Save(reports); err != nil {
		return nil, err
	}

	if err := s.users.adjustStats(userID, models.UserStats{TotalReports: 1, PendingReports: 1}, 0); err != nil {
		// The report is already persisted; counters drift until the next
		// lifecycle event. See the consistency note in DESIGN.md.
		log.Printf("[FileReportStore.Create] stats update failed for user %s: %v", userID, err)
	}

	return report, nil
}

func (s *FileReportStore) GetByID(id string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		if r.ID == id {
			r.Metadata.ViewCount++
			if err := s.store.Save(reports); err != nil {
				return nil, err
			}
			return r, nil
		}
	}
	return nil, ErrReportNotFound
}

func matchesFilter(r *models.Report, filter ReportFilter) bool {
	if filter.PublicOnly && !r.IsPublic {
		return false
	}
	if filter.Status != "" && r.Status != filter.Status {
		return false
	}
	if filter.Category != "" && r.Category != filter.Category {
		return false
	}
	if filter.City != "" && !strings.EqualFold(r.Location.City, filter.City) {
		return false
	}
	if filter.Priority != "" && r.Priority != filter.Priority {
		return false
	}
	if filter.UserID != "" && r.UserID != filter.UserID {
		return false
	}
	if len(filter.IDs) > 0 {
		found := false
		for _, id := range filter.IDs {
			if r.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *FileReportStore) List(filter ReportFilter, page, limit int) ([]*models.Report, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports, err := s.load()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*models.Report, 0, len(reports))
	for _, r := range reports {
		if matchesFilter(r, filter) {
			matched = append(matched, r)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start, end := pageBounds(len(matched), page, limit)
	return matched[start:end], total, nil
}

func (s *FileReportStore) ListByUser(userID string) ([]*models.Report, error) {
	reports, _, err := s.List(ReportFilter{UserID: userID}, 1, 500)
	return reports, err
}

func (s *FileReportStore) ListAll() ([]*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileReportStore) Update(userID string, admin bool, reportID string, req *models.UpdateReportRequest) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, r := range reports {
		if r.ID != reportID {
			continue
		}
		if r.UserID != userID && !admin {
			return nil, ErrUnauthorized
		}
		if req.Title != nil {
			r.Title = *req.Title
		}
		if req.Description != nil {
			r.Description = *req.Description
		}
		if req.Category != nil {
			r.Category = *req.Category
		}
		if req.Location != nil {
			r.Location = *req.Location
		}
		if req.Images != nil {
			r.Images = req.Images
		}
		if req.Tags != nil {
			r.Tags = req.Tags
		}
		if req.IsPublic != nil {
			r.IsPublic = *req.IsPublic
		}
		r.UpdatedAt = time.Now().UTC()
		if err := s.store.Save(reports); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, ErrReportNotFound
}

func (s *FileReportStore) Delete(userID string, admin bool, reportID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return err
	}

	for i, r := range reports {
		if r.ID != reportID {
			continue
		}
		if r.UserID != userID && !admin {
			return ErrUnauthorized
		}
		reports = append(reports[:i], reports[i+1:]...)
		return s.store.Save(reports)
	}
	return ErrReportNotFound
}

func (s *FileReportStore) DeleteByUser(userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return 0, err
	}

	kept := reports[:0]
	var removed int64
	for _, r := range reports {
		if r.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.store.Save(kept)
}

func (s *FileReportStore) ToggleUpvote(reportID, userID string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return false, 0, err
	}

	for _, r := range reports {
		if r.ID != reportID {
			continue
		}
		now := time.Now().UTC()
		added := r.ToggleUpvote(userID, now)
		r.UpdatedAt = now
		if err := s.store.Save(reports); err != nil {
			return false, 0, err
		}

		delta := models.UserStats{UpvotesReceived: 1}
		if !added {
			delta.UpvotesReceived = -1
		}
		if err := s.users.adjustStats(r.UserID, delta, 0); err != nil {
			log.Printf("[FileReportStore.ToggleUpvote] stats update failed for user %s: %v", r.UserID, err)
		}

		return added, r.UpvoteCount(), nil
	}
	return false, 0, ErrReportNotFound
}

func (s *FileReportStore) AddComment(reportID, userID, text string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, r := range reports {
		if r.ID != reportID {
			continue
		}
		now := time.Now().UTC()
		comment := models.Comment{
			ID:        uuid.New().String(),
			UserID:    userID,
			Text:      text,
			CreatedAt: now,
		}
		r.Comments = append(r.Comments, comment)
		r.UpdatedAt = now
		if err := s.store.Save(reports); err != nil {
			return nil, err
		}
		return &comment, nil
	}
	return nil, ErrReportNotFound
}

func (s *FileReportStore) UpdateStatus(reportID, actorID string, req *models.StatusUpdateRequest) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, r := range reports {
		if r.ID != reportID {
			continue
		}

		now := time.Now().UTC()
		prev := r.Status
		statusChanged := req.Status != "" && req.Status != prev

		if statusChanged {
			if !models.CanTransition(prev, req.Status) {
				log.Printf("[FileReportStore.UpdateStatus] non-canonical transition %s -> %s on %s (admin override)", prev, req.Status, reportID)
			}
			r.ApplyStatus(req.Status, actorID, req.Reason, now)
			if req.Status == models.StatusResolved {
				r.Resolution.Notes = req.Reason
			}
		}
		if req.AssignedTo != nil {
			r.AssignedTo = *req.AssignedTo
		}
		if req.Priority != "" {
			r.Priority = req.Priority
		}
		r.UpdatedAt = now

		if err := s.store.Save(reports); err != nil {
			return nil, err
		}

		if statusChanged {
			if delta, civic, apply := statsForTransition(prev, req.Status); apply {
				if err := s.users.adjustStats(r.UserID, delta, civic); err != nil {
					log.Printf("[FileReportStore.UpdateStatus] stats update failed for user %s: %v", r.UserID, err)
				}
			}
		}

		return r, nil
	}
	return nil, ErrReportNotFound
}

func (s *FileReportStore) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports, err := s.load()
	if err != nil {
		return 0, err
	}
	return int64(len(reports)), nil
}

// statsForTransition maps a status change onto the owner's cached counter
// deltas. Resolution awards civic points.
func statsForTransition(prev, next models.ReportStatus) (models.UserStats, int, bool) {
	switch {
	case next == models.StatusResolved:
		return models.UserStats{ResolvedReports: 1, PendingReports: -1}, 10, true
	case next == models.StatusInProgress && prev == models.StatusPending:
		return models.UserStats{PendingReports: -1}, 0, true
	}
	return models.UserStats{}, 0, false
}
