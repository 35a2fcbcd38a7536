package models

// APIResponse is a generic API response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
	}
}

// NewValidationErrorResponse creates a validation error response
func NewValidationErrorResponse(errors map[string]string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   "Validation failed",
		Errors:  errors,
	}
}

type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

type VerifyResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// ReportListResponse is the paginated list contract consumed by the client.
type ReportListResponse struct {
	Success bool      `json:"success"`
	Reports []*Report `json:"reports"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	Pages   int       `json:"pages"`
}

type ReportResponse struct {
	Success bool    `json:"success"`
	Report  *Report `json:"report"`
}

type UpvoteResponse struct {
	Success     bool `json:"success"`
	Added       bool `json:"added"`
	UpvoteCount int  `json:"upvoteCount"`
}

type CommentResponse struct {
	Success bool     `json:"success"`
	Comment *Comment `json:"comment"`
}

type UserListResponse struct {
	Success bool    `json:"success"`
	Users   []*User `json:"users"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	Pages   int     `json:"pages"`
}
