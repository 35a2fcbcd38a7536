package services

import (
	"github.com/urban-guardians/backend/internal/models"
)

// UserFilter is the closed set of user query predicates.
type UserFilter struct {
	Role   models.Role
	City   string
	Search string
}

// UserStore is the user persistence and credential contract.
type UserStore interface {
	// Register creates an account, rejecting duplicate emails
	// case-insensitively. The password is bcrypt-hashed before persisting.
	Register(req *models.RegisterRequest) (*models.User, error)
	// Authenticate verifies credentials and updates lastLogin. Unknown email
	// and wrong password both return ErrInvalidCredentials so callers cannot
	// enumerate accounts.
	Authenticate(email, password string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	List(filter UserFilter, page, limit int) ([]*models.User, int64, error)
	ListAll() ([]*models.User, error)
	UpdateProfile(id string, req *models.UpdateProfileRequest) (*models.User, error)
	Delete(id string) error
	Count() (int64, error)
}
