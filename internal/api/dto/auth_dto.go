package dto

import "github.com/opsdesk/helpdesk/internal/domain"

// RegisterRequest payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Username string `json:"username"`
}

// PasswordResetConfirm payload.
type PasswordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username, Role: user.Role}
}
