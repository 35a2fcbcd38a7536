package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/urban-guardians/backend/internal/models"
)

// ExportSnapshot is the on-disk layout of a JSON export. Password hashes are
// never serialized (the model strips them).
type ExportSnapshot struct {
	ExportedAt time.Time        `json:"exported_at"`
	Database   string           `json:"database"`
	Statistics ExportStatistics `json:"statistics"`
	Users      []*models.User   `json:"users"`
	Reports    []*models.Report `json:"reports"`
}

type ExportStatistics struct {
	TotalUsers        int `json:"total_users"`
	TotalReports      int `json:"total_reports"`
	PendingReports    int `json:"pending_reports"`
	InProgressReports int `json:"in_progress_reports"`
	ResolvedReports   int `json:"resolved_reports"`
}

// ExportService writes timestamped snapshots of the live collections under
// <dataDir>/exports. It works over the injected store interfaces, so it is
// agnostic to which backend is active.
type ExportService struct {
	reports   ReportStore
	users     UserStore
	exportDir string
	dbName    string
}

func NewExportService(reports ReportStore, users UserStore, dataDir, dbName string) *ExportService {
	return &ExportService{
		reports:   reports,
		users:     users,
		exportDir: filepath.Join(dataDir, "exports"),
		dbName:    dbName,
	}
}

func (s *ExportService) snapshot() (*ExportSnapshot, error) {
	users, err := s.users.ListAll()
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.ListAll()
	if err != nil {
		return nil, err
	}

	snap := &ExportSnapshot{
		ExportedAt: time.Now().UTC(),
		Database:   s.dbName,
		Users:      users,
		Reports:    reports,
	}
	snap.Statistics.TotalUsers = len(users)
	snap.Statistics.TotalReports = len(reports)
	for _, r := range reports {
		switch r.Status {
		case models.StatusPending:
			snap.Statistics.PendingReports++
		case models.StatusInProgress:
			snap.Statistics.InProgressReports++
		case models.StatusResolved:
			snap.Statistics.ResolvedReports++
		}
	}
	return snap, nil
}

func (s *ExportService) timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15-04-05")
}

// ExportJSON writes the full snapshot and returns the file path.
func (s *ExportService) ExportJSON() (string, error) {
	snap, err := s.snapshot()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(s.exportDir, fmt.Sprintf("%s_export_%s.json", s.dbName, s.timestamp()))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return "", err
	}
	return path, nil
}

// ExportCSV writes a flat report summary and returns the file path.
func (s *ExportService) ExportCSV() (string, error) {
	reports, err := s.reports.ListAll()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(s.exportDir, fmt.Sprintf("reports_%s.csv", s.timestamp()))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := []string{"ID", "Title", "Category", "Status", "Priority", "Location", "Upvotes", "Comments", "Created Date", "Updated Date"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, r := range reports {
		row := []string{
			r.ID,
			r.Title,
			r.Category,
			string(r.Status),
			string(r.Priority),
			r.Location.Address,
			strconv.Itoa(r.UpvoteCount()),
			strconv.Itoa(r.CommentCount()),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}
