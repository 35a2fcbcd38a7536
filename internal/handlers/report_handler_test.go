package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/urban-guardians/backend/internal/middleware"
	"github.com/urban-guardians/backend/internal/models"
	"github.com/urban-guardians/backend/internal/services"
)

type testEnv struct {
	router  *chi.Mux
	reports *services.FileReportStore
	users   *services.FileUserStore
	dataDir string
}

// newTestEnv wires the file-backed stores behind the same routing as the
// server binary.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	users, err := services.NewFileUserStore(dir)
	require.NoError(t, err)
	reports, err := services.NewFileReportStore(dir, users)
	require.NoError(t, err)
	analytics := services.NewFileAnalyticsService(reports, users)
	exporter := services.NewExportService(reports, users, dir, "test_db")

	authHandler := NewAuthHandler(users, testSecret, time.Hour)
	reportHandler := NewReportHandler(reports, users)
	userHandler := NewUserHandler(users)
	analyticsHandler := NewAnalyticsHandler(analytics)
	adminHandler := NewAdminHandler(reports, users, analytics, exporter)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.Signup)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", reportHandler.List)
			r.Get("/{reportId}", reportHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.JWTAuth(testSecret))

				r.Post("/", reportHandler.Create)
				r.Get("/my", reportHandler.ListMine)
				r.Put("/{reportId}", reportHandler.Update)
				r.Delete("/{reportId}", reportHandler.Delete)
				r.Post("/{reportId}/upvote", reportHandler.Upvote)
				r.Post("/{reportId}/comment", reportHandler.Comment)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(testSecret))

			r.Get("/profile", userHandler.Profile)
			r.Put("/profile", userHandler.UpdateProfile)
			r.Get("/stats", userHandler.Stats)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(testSecret))
			r.Use(appMiddleware.RequireRole(users, models.RoleOfficial, models.RoleAdmin))

			r.Get("/overview", analyticsHandler.Overview)
			r.Get("/categories", analyticsHandler.ByCategory)
			r.Get("/locations", analyticsHandler.ByLocation)
			r.Get("/timeline", analyticsHandler.Timeline)
			r.Get("/priorities", analyticsHandler.PriorityDistribution)
			r.Get("/engagement", analyticsHandler.Engagement)
			r.Get("/resolution-times", analyticsHandler.ResolutionTimes)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(testSecret))
			r.Use(appMiddleware.RequireRole(users, models.RoleAdmin))

			r.Get("/dashboard", adminHandler.Dashboard)
			r.Put("/reports/{reportId}/status", adminHandler.UpdateReportStatus)
			r.Get("/users", adminHandler.ListUsers)
			r.Delete("/users/{userId}", adminHandler.DeleteUser)
			r.Post("/export", adminHandler.Export)
		})
	})

	return &testEnv{router: r, reports: reports, users: users, dataDir: dir}
}

// signup registers an account through the API and returns its ID and token.
func (e *testEnv) signup(t *testing.T, name, email string) (string, string) {
	t.Helper()
	rec := postJSON(t, e.router, "/api/auth/signup", models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.User.ID, resp.Token
}

// promote rewrites the user's role in the backing collection file. Signup
// only mints citizens; role changes are an operator action.
func (e *testEnv) promote(t *testing.T, userID string, role models.Role) {
	t.Helper()
	path := filepath.Join(e.dataDir, "users.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	for _, rec := range records {
		if rec["id"] == userID {
			rec["role"] = string(role)
		}
	}
	data, err = json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func testCreateBody() models.CreateReportRequest {
	return models.CreateReportRequest{
		Title:       "Pothole near the bus stop",
		Description: strings.Repeat("Deep pothole, two wheelers are swerving into traffic. ", 2),
		Category:    "Road Maintenance",
		Location:    models.Location{Address: "MG Road", City: "Pune", State: "MH"},
	}
}

func TestReportHandler_Create(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.signup(t, "Asha", "asha@example.com")

	rec := env.do(t, http.MethodPost, "/api/reports", token, testCreateBody())

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp models.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Report)
	assert.Equal(t, models.StatusPending, resp.Report.Status)
	assert.Equal(t, userID, resp.Report.UserID)
	require.Len(t, resp.Report.StatusHistory, 1)
	assert.Equal(t, models.InitialSubmissionReason, resp.Report.StatusHistory[0].Reason)
}

func TestReportHandler_Create_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/reports", "", testCreateBody())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportHandler_Create_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "Asha", "asha@example.com")

	body := testCreateBody()
	body.Category = "not-a-category"
	rec := env.do(t, http.MethodPost, "/api/reports", token, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "category")
}

func TestReportHandler_List_Public(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "Asha", "asha@example.com")
	env.do(t, http.MethodPost, "/api/reports", token, testCreateBody())
	env.do(t, http.MethodPost, "/api/reports", token, testCreateBody())

	rec := env.do(t, http.MethodGet, "/api/reports?limit=1", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ReportListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Reports, 1)
	assert.Equal(t, 2, resp.Pages)
}

func TestReportHandler_Upvote(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.signup(t, "Asha", "asha@example.com")
	_, voterToken := env.signup(t, "Ben", "ben@example.com")

	create := env.do(t, http.MethodPost, "/api/reports", ownerToken, testCreateBody())
	var created models.ReportResponse
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &created))

	rec := env.do(t, http.MethodPost, "/api/reports/"+created.Report.ID+"/upvote", voterToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var upvote models.UpvoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upvote))
	assert.True(t, upvote.Added)
	assert.Equal(t, 1, upvote.UpvoteCount)

	rec = env.do(t, http.MethodPost, "/api/reports/"+created.Report.ID+"/upvote", voterToken, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upvote))
	assert.False(t, upvote.Added)
	assert.Equal(t, 0, upvote.UpvoteCount)
}

func TestReportHandler_Comment(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "Asha", "asha@example.com")

	create := env.do(t, http.MethodPost, "/api/reports", token, testCreateBody())
	var created models.ReportResponse
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &created))

	rec := env.do(t, http.MethodPost, "/api/reports/"+created.Report.ID+"/comment", token,
		models.CommentRequest{Text: "Any update on this?"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.CommentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Comment)
	assert.Equal(t, "Any update on this?", resp.Comment.Text)
	assert.NotEmpty(t, resp.Comment.ID)
}

func TestReportHandler_Update_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.signup(t, "Asha", "asha@example.com")
	_, otherToken := env.signup(t, "Ben", "ben@example.com")

	create := env.do(t, http.MethodPost, "/api/reports", ownerToken, testCreateBody())
	var created models.ReportResponse
	require.NoError(t, json.Unmarshal(create.Body.Bytes(), &created))

	title := "Pothole grew over the weekend"
	update := models.UpdateReportRequest{Title: &title}

	rec := env.do(t, http.MethodPut, "/api/reports/"+created.Report.ID, otherToken, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/reports/"+created.Report.ID, ownerToken, update)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, title, resp.Report.Title)
}

func TestReportHandler_Delete_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "Asha", "asha@example.com")

	rec := env.do(t, http.MethodDelete, "/api/reports/no-such-id", token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportHandler_ListMine(t *testing.T) {
	env := newTestEnv(t)
	_, ashaToken := env.signup(t, "Asha", "asha@example.com")
	_, benToken := env.signup(t, "Ben", "ben@example.com")

	env.do(t, http.MethodPost, "/api/reports", ashaToken, testCreateBody())
	env.do(t, http.MethodPost, "/api/reports", ashaToken, testCreateBody())
	env.do(t, http.MethodPost, "/api/reports", benToken, testCreateBody())

	rec := env.do(t, http.MethodGet, "/api/reports/my", ashaToken, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ReportListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Reports, 2)
}
