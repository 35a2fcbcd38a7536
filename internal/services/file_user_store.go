package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/urban-guardians/backend/internal/models"
	"github.com/urban-guardians/backend/internal/storage"
)

// FileUserStore keeps all users in a single JSON collection file. Every
// mutation is a read-modify-write cycle under the store's own lock, so
// concurrent requests cannot lose updates against each other in-process.
type FileUserStore struct {
	mu    sync.RWMutex
	store *storage.JSONStore
}

func NewFileUserStore(dataDir string) (*FileUserStore, error) {
	store, err := storage.NewJSONStore(dataDir, "users")
	if err != nil {
		return nil, err
	}
	return &FileUserStore{store: store}, nil
}

// userRecord is the on-disk shape. The API model excludes the password hash
// from JSON, so the store re-exposes it under its own tag for persistence.
type userRecord struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

func (s *FileUserStore) load() ([]*models.User, error) {
	records := []userRecord{}
	if err := s.store.Load(&records); err != nil {
		return nil, err
	}
	users := make([]*models.User, len(records))
	for i := range records {
		u := records[i].User
		u.PasswordHash = records[i].PasswordHash
		users[i] = &u
	}
	return users, nil
}

func (s *FileUserStore) save(users []*models.User) error {
	records := make([]userRecord, len(users))
	for i, u := range users {
		records[i] = userRecord{User: *u, PasswordHash: u.PasswordHash}
	}
	return s.store.Save(records)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *FileUserStore) Register(req *models.RegisterRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	for _, u := range users {
		if normalizeEmail(u.Email) == email {
			return nil, ErrEmailExists
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         models.RoleCitizen,
		Preferences:  models.DefaultPreferences(),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	users = append(users, user)
	if err := s.save(users); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *FileUserStore) Authenticate(email, password string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	var user *models.User
	for _, u := range users {
		if normalizeEmail(u.Email) == email {
			user = u
			break
		}
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := s.save(users); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *FileUserStore) GetByID(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *FileUserStore) List(filter UserFilter, page, limit int) ([]*models.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.load()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*models.User, 0, len(users))
	search := strings.ToLower(filter.Search)
	for _, u := range users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.City != "" && (u.Location == nil || !strings.EqualFold(u.Location.City, filter.City)) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		matched = append(matched, u)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start, end := pageBounds(len(matched), page, limit)
	return matched[start:end], total, nil
}

func (s *FileUserStore) ListAll() ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

func (s *FileUserStore) UpdateProfile(id string, req *models.UpdateProfileRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.ID != id {
			continue
		}
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Phone != nil {
			u.Phone = *req.Phone
		}
		if req.Avatar != nil {
			u.Avatar = *req.Avatar
		}
		if req.Location != nil {
			u.Location = req.Location
		}
		u.UpdatedAt = time.Now().UTC()
		if err := s.save(users); err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (s *FileUserStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	kept := users[:0]
	found := false
	for _, u := range users {
		if u.ID == id {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return ErrUserNotFound
	}
	return s.save(kept)
}

func (s *FileUserStore) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.load()
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}

// adjustStats applies cached-counter deltas for a report lifecycle event.
// Called by FileReportStore with its own lock held; lock ordering is always
// report store first, then user store.
func (s *FileUserStore) adjustStats(userID string, delta models.UserStats, civicDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	for _, u := range users {
		if u.ID != userID {
			continue
		}
		u.Stats.TotalReports += delta.TotalReports
		u.Stats.ResolvedReports += delta.ResolvedReports
		u.Stats.PendingReports += delta.PendingReports
		u.Stats.UpvotesReceived += delta.UpvotesReceived
		u.CivicPoints += civicDelta
		u.UpdatedAt = time.Now().UTC()
		return s.save(users)
	}
	return ErrUserNotFound
}

// pageBounds clamps a 1-based page window onto a slice of length n.
func pageBounds(n, page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start > n {
		start = n
	}
	end := start + limit
	if end > n {
		end = n
	}
	return start, end
}
