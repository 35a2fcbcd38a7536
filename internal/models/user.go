package models

import (
	"regexp"
	"time"
)

type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleOfficial Role = "official"
	RoleAdmin    Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleCitizen, RoleOfficial, RoleAdmin:
		return true
	}
	return false
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// UserStats is a cached snapshot of per-user report counters, updated
// incrementally by report lifecycle events rather than recomputed on read.
type UserStats struct {
	TotalReports    int `json:"total_reports" bson:"total_reports"`
	ResolvedReports int `json:"resolved_reports" bson:"resolved_reports"`
	PendingReports  int `json:"pending_reports" bson:"pending_reports"`
	UpvotesReceived int `json:"upvotes_received" bson:"upvotes_received"`
}

type NotificationPrefs struct {
	Email bool `json:"email" bson:"email"`
	Push  bool `json:"push" bson:"push"`
	SMS   bool `json:"sms" bson:"sms"`
}

type UserPreferences struct {
	Language      string            `json:"language" bson:"language"`
	Notifications NotificationPrefs `json:"notifications" bson:"notifications"`
}

type User struct {
	ID           string          `json:"id" bson:"_id"`
	Name         string          `json:"name" bson:"name"`
	Email        string          `json:"email" bson:"email"`
	PasswordHash string          `json:"-" bson:"password_hash"`
	Phone        string          `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         Role            `json:"role" bson:"role"`
	Avatar       string          `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Location     *Location       `json:"location,omitempty" bson:"location,omitempty"`
	CivicPoints  int             `json:"civic_points" bson:"civic_points"`
	Preferences  UserPreferences `json:"preferences" bson:"preferences"`
	Stats        UserStats       `json:"stats" bson:"stats"`
	IsActive     bool            `json:"is_active" bson:"is_active"`
	LastLogin    *time.Time      `json:"last_login,omitempty" bson:"last_login,omitempty"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" bson:"updated_at"`
}

// DefaultPreferences returns the preference block applied to new accounts.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Language: "en",
		Notifications: NotificationPrefs{
			Email: true,
			Push:  true,
			SMS:   false,
		},
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	} else if len(r.Name) < 2 || len(r.Name) > 50 {
		errors["name"] = "Name must be between 2 and 50 characters"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !emailPattern.MatchString(r.Email) {
		errors["email"] = "Please provide a valid email"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

// UpdateProfileRequest carries the fields a user may change on their own
// account. Role and stats are never settable through this path.
type UpdateProfileRequest struct {
	Name     *string   `json:"name"`
	Phone    *string   `json:"phone"`
	Avatar   *string   `json:"avatar"`
	Location *Location `json:"location"`
}

func (r *UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil && (len(*r.Name) < 2 || len(*r.Name) > 50) {
		errors["name"] = "Name must be between 2 and 50 characters"
	}

	return errors
}
