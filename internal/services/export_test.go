package services

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-guardians/backend/internal/models"
)

func TestExportService_ExportJSON(t *testing.T) {
	reports, users := newTestStores(t)
	owner := registerTestUser(t, users, "Asha", "asha@example.com")

	created, err := reports.Create(owner.ID, validCreateRequest())
	require.NoError(t, err)
	_, err = reports.UpdateStatus(created.ID, "admin1", &models.StatusUpdateRequest{
		Status: models.StatusInProgress,
	})
	require.NoError(t, err)
	_, err = reports.Create(owner.ID, validCreateRequest())
	require.NoError(t, err)

	svc := NewExportService(reports, users, t.TempDir(), "urban_guardians")
	path, err := svc.ExportJSON()
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap ExportSnapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "urban_guardians", snap.Database)
	assert.Equal(t, 1, snap.Statistics.TotalUsers)
	assert.Equal(t, 2, snap.Statistics.TotalReports)
	assert.Equal(t, 1, snap.Statistics.PendingReports)
	assert.Equal(t, 1, snap.Statistics.InProgressReports)
	assert.Len(t, snap.Users, 1)
	assert.Len(t, snap.Reports, 2)

	assert.NotContains(t, string(data), "password")
}

func TestExportService_ExportCSV(t *testing.T) {
	reports, users := newTestStores(t)
	owner := registerTestUser(t, users, "Asha", "asha@example.com")

	created, err := reports.Create(owner.ID, validCreateRequest())
	require.NoError(t, err)
	_, _, err = reports.ToggleUpvote(created.ID, owner.ID)
	require.NoError(t, err)

	svc := NewExportService(reports, users, t.TempDir(), "urban_guardians")
	path, err := svc.ExportCSV()
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, created.ID, rows[1][0])
	assert.Equal(t, "pending", rows[1][3])
	assert.Equal(t, "1", rows[1][6])
}
