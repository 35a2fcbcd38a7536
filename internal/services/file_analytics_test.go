package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-guardians/backend/internal/models"
)

func seedAnalyticsData(t *testing.T) (*FileAnalyticsService, *FileReportStore, *FileUserStore) {
	t.Helper()
	reports, users := newTestStores(t)
	owner := registerTestUser(t, users, "Asha", "asha@example.com")
	registerTestUser(t, users, "Ben", "ben@example.com")

	categories := []string{"Road Maintenance", "Road Maintenance", "Lighting", "Waste Management"}
	for i, category := range categories {
		req := validCreateRequest()
		req.Category = category
		if i == 3 {
			req.Location.City = "Mumbai"
		}
		created, err := reports.Create(owner.ID, req)
		require.NoError(t, err)
		if i == 0 {
			_, err = reports.UpdateStatus(created.ID, "admin1", &models.StatusUpdateRequest{
				Status: models.StatusInProgress,
			})
			require.NoError(t, err)
			_, err = reports.UpdateStatus(created.ID, "admin1", &models.StatusUpdateRequest{
				Status: models.StatusResolved,
				Reason: "Fixed",
			})
			require.NoError(t, err)
		}
	}

	return NewFileAnalyticsService(reports, users), reports, users
}

func TestFileAnalytics_Overview(t *testing.T) {
	svc, _, _ := seedAnalyticsData(t)

	stats, err := svc.Overview()
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalCitizens)
	assert.Equal(t, int64(4), stats.TotalReports)
	assert.Equal(t, int64(3), stats.PendingReports)
	assert.Equal(t, int64(1), stats.ResolvedReports)
	assert.InDelta(t, 25.0, stats.ResolutionRate, 0.01)
}

func TestFileAnalytics_ByCategory(t *testing.T) {
	svc, _, _ := seedAnalyticsData(t)

	rows, err := svc.ByCategory()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "Road Maintenance", rows[0].Category)
	assert.Equal(t, int64(2), rows[0].Total)
	assert.Equal(t, int64(1), rows[0].Resolved)
	assert.InDelta(t, 50.0, rows[0].ResolutionRate, 0.01)
}

func TestFileAnalytics_ByLocation(t *testing.T) {
	svc, _, _ := seedAnalyticsData(t)

	rows, err := svc.ByLocation("city")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Pune", rows[0].Location)
	assert.Equal(t, int64(3), rows[0].Total)
	assert.Equal(t, "Mumbai", rows[1].Location)
}

func TestFileAnalytics_Timeline(t *testing.T) {
	svc, _, _ := seedAnalyticsData(t)

	buckets, err := svc.Timeline(7, "daily")
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, int64(4), buckets[0].Total)
	assert.Equal(t, int64(1), buckets[0].Resolved)

	monthly, err := svc.Timeline(30, "monthly")
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Len(t, monthly[0].Bucket, len("2006-01"))
}

func TestFileAnalytics_Engagement(t *testing.T) {
	svc, reports, users := seedAnalyticsData(t)
	voter := registerTestUser(t, users, "Chen", "chen@example.com")

	all, err := reports.ListAll()
	require.NoError(t, err)
	target := all[1]
	_, _, err = reports.ToggleUpvote(target.ID, voter.ID)
	require.NoError(t, err)
	_, err = reports.AddComment(target.ID, voter.ID, "Seconded, this is bad")
	require.NoError(t, err)

	entries, err := svc.Engagement(2)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, target.ID, entries[0].ReportID)
	assert.Equal(t, 2, entries[0].Engagement)
}

func TestFileAnalytics_ResolutionTimes(t *testing.T) {
	svc, _, _ := seedAnalyticsData(t)

	stats, err := svc.ResolutionTimes()
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.ResolvedCount)
	assert.GreaterOrEqual(t, stats.AvgHours, 0.0)
}

func TestFileAnalytics_EmptyStores(t *testing.T) {
	reports, users := newTestStores(t)
	svc := NewFileAnalyticsService(reports, users)

	stats, err := svc.Overview()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalReports)
	assert.Equal(t, 0.0, stats.ResolutionRate)

	resolution, err := svc.ResolutionTimes()
	require.NoError(t, err)
	assert.Equal(t, int64(0), resolution.ResolvedCount)
}
