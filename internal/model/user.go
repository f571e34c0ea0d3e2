package model

import "time"

// User represents a user in the database.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserRequest represents a signup request.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,max=128"`
	Name     string `json:"name" validate:"max=255"`
}

// TokenRequest represents a request for an auth token.
type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries the opaque auth token for a user.
type TokenResponse struct {
	Token string `json:"token"`
}

// UpdateUserRequest represents a partial profile update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitnil,max=255"`
	Password *string `json:"password" validate:"omitnil,min=5,max=128"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthToken binds an opaque key to exactly one user.
type AuthToken struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}
