package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-guardians/backend/internal/models"
)

func newAdminEnv(t *testing.T) (*testEnv, string, string) {
	t.Helper()
	env := newTestEnv(t)
	adminID, adminToken := env.signup(t, "Admin", "admin@example.com")
	env.promote(t, adminID, models.RoleAdmin)
	return env, adminID, adminToken
}

func TestAdminHandler_RoleGate(t *testing.T) {
	env := newTestEnv(t)
	_, citizenToken := env.signup(t, "Asha", "asha@example.com")

	rec := env.do(t, http.MethodGet, "/api/admin/dashboard", citizenToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminHandler_Dashboard(t *testing.T) {
	env, _, adminToken := newAdminEnv(t)
	_, citizenToken := env.signup(t, "Asha", "asha@example.com")
	env.do(t, http.MethodPost, "/api/reports", citizenToken, testCreateBody())

	rec := env.do(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "overview")
	assert.Contains(t, data, "urgent_reports")
	assert.Contains(t, data, "recent_users")
}

func TestAdminHandler_UpdateReportStatus(t *testing.T) {
	env, adminID, adminToken := newAdminEnv(t)
	ownerID, citizenToken := env.signup(t, "Asha", "asha@example.com")

	create := env.do(t, http.MethodPost, "/api/reports", citizenToken, testCreateBody())
	var created models.ReportResponse
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &created))

	rec := env.do(t, http.MethodPut, "/api/admin/reports/"+created.Report.ID+"/status", adminToken,
		models.StatusUpdateRequest{Status: models.StatusInProgress, Reason: "Crew dispatched"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/reports/"+created.Report.ID+"/status", adminToken,
		models.StatusUpdateRequest{Status: models.StatusResolved, Reason: "Pothole filled"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusResolved, resp.Report.Status)
	require.NotNil(t, resp.Report.Resolution.ResolvedAt)
	assert.Equal(t, adminID, resp.Report.Resolution.ResolvedBy)
	assert.Len(t, resp.Report.StatusHistory, 3)

	owner, err := env.users.GetByID(ownerID)
	require.NoError(t, err)
	assert.Equal(t, 10, owner.CivicPoints)
	assert.Equal(t, 1, owner.Stats.ResolvedReports)
}

func TestAdminHandler_UpdateReportStatus_UnknownStatus(t *testing.T) {
	env, _, adminToken := newAdminEnv(t)
	_, citizenToken := env.signup(t, "Asha", "asha@example.com")

	create := env.do(t, http.MethodPost, "/api/reports", citizenToken, testCreateBody())
	var created models.ReportResponse
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &created))

	rec := env.do(t, http.MethodPut, "/api/admin/reports/"+created.Report.ID+"/status", adminToken,
		models.StatusUpdateRequest{Status: "escalated"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_ListUsers(t *testing.T) {
	env, _, adminToken := newAdminEnv(t)
	env.signup(t, "Asha", "asha@example.com")
	env.signup(t, "Ben", "ben@example.com")

	rec := env.do(t, http.MethodGet, "/api/admin/users?search=asha", adminToken, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.UserListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "asha@example.com", resp.Users[0].Email)
}

func TestAdminHandler_DeleteUser_Cascades(t *testing.T) {
	env, _, adminToken := newAdminEnv(t)
	targetID, citizenToken := env.signup(t, "Asha", "asha@example.com")
	env.do(t, http.MethodPost, "/api/reports", citizenToken, testCreateBody())
	env.do(t, http.MethodPost, "/api/reports", citizenToken, testCreateBody())

	rec := env.do(t, http.MethodDelete, "/api/admin/users/"+targetID, adminToken, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reports_removed":2`)

	remaining, err := env.reports.ListAll()
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestAdminHandler_DeleteUser_SelfForbidden(t *testing.T) {
	env, adminID, adminToken := newAdminEnv(t)

	rec := env.do(t, http.MethodDelete, "/api/admin/users/"+adminID, adminToken, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot delete your own account")
}

func TestAdminHandler_Export(t *testing.T) {
	env, _, adminToken := newAdminEnv(t)
	_, citizenToken := env.signup(t, "Asha", "asha@example.com")
	env.do(t, http.MethodPost, "/api/reports", citizenToken, testCreateBody())

	rec := env.do(t, http.MethodPost, "/api/admin/export?format=json", adminToken, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	path, _ := data["path"].(string)
	require.NotEmpty(t, path)

	_, err := os.Stat(path)
	assert.NoError(t, err)

	rec = env.do(t, http.MethodPost, "/api/admin/export?format=xml", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
