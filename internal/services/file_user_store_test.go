package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urban-guardians/backend/internal/models"
)

func newTestUserStore(t *testing.T) *FileUserStore {
	t.Helper()
	store, err := NewFileUserStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func registerTestUser(t *testing.T, store *FileUserStore, name, email string) *models.User {
	t.Helper()
	user, err := store.Register(&models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "hunter22",
	})
	require.NoError(t, err)
	return user
}

func TestFileUserStore_Register_Success(t *testing.T) {
	store := newTestUserStore(t)

	user := registerTestUser(t, store, "Asha", "Asha@Example.com")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, models.RoleCitizen, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.Equal(t, 0, user.CivicPoints)
}

func TestFileUserStore_Register_DuplicateEmailCaseInsensitive(t *testing.T) {
	store := newTestUserStore(t)
	registerTestUser(t, store, "Asha", "asha@example.com")

	_, err := store.Register(&models.RegisterRequest{
		Name:     "Impostor",
		Email:    "ASHA@EXAMPLE.COM",
		Password: "different",
	})

	assert.Equal(t, ErrEmailExists, err)
}

func TestFileUserStore_Authenticate_Success(t *testing.T) {
	store := newTestUserStore(t)
	registered := registerTestUser(t, store, "Asha", "asha@example.com")

	user, err := store.Authenticate("asha@example.com", "hunter22")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotNil(t, user.LastLogin)
}

func TestFileUserStore_Authenticate_IndistinguishableFailures(t *testing.T) {
	store := newTestUserStore(t)
	registerTestUser(t, store, "Asha", "asha@example.com")

	_, wrongPassword := store.Authenticate("asha@example.com", "wrong")
	_, unknownEmail := store.Authenticate("nobody@example.com", "hunter22")

	assert.Equal(t, ErrInvalidCredentials, wrongPassword)
	assert.Equal(t, ErrInvalidCredentials, unknownEmail)
}

func TestFileUserStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileUserStore(dir)
	require.NoError(t, err)
	registered := registerTestUser(t, store, "Asha", "asha@example.com")

	reopened, err := NewFileUserStore(dir)
	require.NoError(t, err)

	user, err := reopened.Authenticate("asha@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestFileUserStore_List_Filters(t *testing.T) {
	store := newTestUserStore(t)
	registerTestUser(t, store, "Asha Verma", "asha@example.com")
	registerTestUser(t, store, "Ben Okafor", "ben@example.com")
	registerTestUser(t, store, "Chen Wei", "chen@example.com")

	all, total, err := store.List(UserFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	matched, total, err := store.List(UserFilter{Search: "okafor"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Ben Okafor", matched[0].Name)

	none, total, err := store.List(UserFilter{Role: models.RoleAdmin}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, none)
}

func TestFileUserStore_UpdateProfile(t *testing.T) {
	store := newTestUserStore(t)
	user := registerTestUser(t, store, "Asha", "asha@example.com")

	name := "Asha Verma"
	phone := "555-0100"
	updated, err := store.UpdateProfile(user.ID, &models.UpdateProfileRequest{
		Name:  &name,
		Phone: &phone,
	})

	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", updated.Name)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, models.RoleCitizen, updated.Role)
}

func TestFileUserStore_Delete(t *testing.T) {
	store := newTestUserStore(t)
	user := registerTestUser(t, store, "Asha", "asha@example.com")

	require.NoError(t, store.Delete(user.ID))

	_, err := store.GetByID(user.ID)
	assert.Equal(t, ErrUserNotFound, err)

	assert.Equal(t, ErrUserNotFound, store.Delete(user.ID))
}

func TestFileUserStore_AdjustStats(t *testing.T) {
	store := newTestUserStore(t)
	user := registerTestUser(t, store, "Asha", "asha@example.com")

	err := store.adjustStats(user.ID, models.UserStats{TotalReports: 1, PendingReports: 1}, 0)
	require.NoError(t, err)
	err = store.adjustStats(user.ID, models.UserStats{ResolvedReports: 1, PendingReports: -1}, 10)
	require.NoError(t, err)

	got, err := store.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats.TotalReports)
	assert.Equal(t, 1, got.Stats.ResolvedReports)
	assert.Equal(t, 0, got.Stats.PendingReports)
	assert.Equal(t, 10, got.CivicPoints)
}
