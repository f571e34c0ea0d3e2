package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/recipebox/recipe-api/internal/crypto"
	"github.com/recipebox/recipe-api/internal/model"
	"github.com/recipebox/recipe-api/internal/repository"
)

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// TokenStore binds one opaque token key to each user.
type TokenStore interface {
	GetOrCreate(ctx context.Context, userID int64, key string) (*model.AuthToken, error)
	GetUserIDByKey(ctx context.Context, key string) (int64, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// AuthService handles signup, token issuance, request authentication and profile updates.
type AuthService struct {
	users    UserStore
	tokens   TokenStore
	hasher   PasswordHasher
	validate *validator.Validate
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenStore, hasher PasswordHasher) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Register creates a regular, active user account.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.UserResponse, error) {
	user, err := s.createUser(ctx, req, false)
	if err != nil {
		return model.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// CreateSuperuser creates an active account with staff and superuser rights.
func (s *AuthService) CreateSuperuser(ctx context.Context, req model.CreateUserRequest) (model.UserResponse, error) {
	user, err := s.createUser(ctx, req, true)
	if err != nil {
		return model.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func (s *AuthService) createUser(ctx context.Context, req model.CreateUserRequest, superuser bool) (*model.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if verr := validateStruct(s.validate, req); verr != nil {
		return nil, verr
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, newValidationError("email", "user with this email already exists.")
		}
		return nil, err
	}

	return user, nil
}

// IssueToken checks the credentials and returns the user's token, creating it
// on first use. Repeated calls return the same token.
func (s *AuthService) IssueToken(ctx context.Context, req model.TokenRequest) (model.TokenResponse, error) {
	if verr := validateStruct(s.validate, req); verr != nil {
		return model.TokenResponse{}, verr
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.TokenResponse{}, ErrInvalidCredentials
		}
		return model.TokenResponse{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("verifying password: %w", err)
	}
	if !match || !user.IsActive {
		return model.TokenResponse{}, ErrInvalidCredentials
	}

	key, err := crypto.NewTokenKey()
	if err != nil {
		return model.TokenResponse{}, err
	}

	token, err := s.tokens.GetOrCreate(ctx, user.ID, key)
	if err != nil {
		return model.TokenResponse{}, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return model.TokenResponse{Token: token.Key}, nil
}

// Authenticate resolves a token key to an active user.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*model.User, error) {
	if !crypto.ValidTokenKey(key) {
		return nil, ErrUnauthenticated
	}

	userID, err := s.tokens.GetUserIDByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

// GetProfile returns the caller's public profile.
func (s *AuthService) GetProfile(user *model.User) model.UserResponse {
	return toUserResponse(user)
}

// UpdateProfile applies a partial update of name and password. The email
// address cannot be changed here.
func (s *AuthService) UpdateProfile(ctx context.Context, user *model.User, req model.UpdateUserRequest) (model.UserResponse, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	if verr := validateStruct(s.validate, req); verr != nil {
		return model.UserResponse{}, verr
	}

	updated := *user
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return model.UserResponse{}, fmt.Errorf("hashing password: %w", err)
		}
		updated.PasswordHash = hash
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	*user = updated
	return toUserResponse(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(user *model.User) model.UserResponse {
	return model.UserResponse{Email: user.Email, Name: user.Name}
}
