package service

import (
	"context"
	"testing"

	"github.com/recipebox/recipe-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f authFixture, email, password string) {
	t.Helper()
	_, err := f.svc.Register(context.Background(), model.CreateUserRequest{
		Email:    email,
		Password: password,
		Name:     "Test Name",
	})
	require.NoError(t, err)
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.svc.Register(context.Background(), model.CreateUserRequest{
		Email:    "  Test@Example.COM ",
		Password: "testpass123",
		Name:     " Test Name ",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserResponse{Email: "test@example.com", Name: "Test Name"}, resp)

	user, err := f.users.GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.NotEqual(t, "testpass123", user.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   model.CreateUserRequest
		field string
	}{
		{"missing email", model.CreateUserRequest{Password: "testpass123"}, "email"},
		{"bad email", model.CreateUserRequest{Email: "not-an-email", Password: "testpass123"}, "email"},
		{"missing password", model.CreateUserRequest{Email: "a@example.com"}, "password"},
		{"short password", model.CreateUserRequest{Email: "a@example.com", Password: "pw"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()

			_, err := f.svc.Register(context.Background(), tt.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	register(t, f, "test@example.com", "testpass123")

	_, err := f.svc.Register(context.Background(), model.CreateUserRequest{
		Email:    "TEST@example.com",
		Password: "otherpass123",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"user with this email already exists."}, verr.Fields["email"])
}

func TestCreateSuperuser(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.CreateSuperuser(context.Background(), model.CreateUserRequest{
		Email:    "admin@example.com",
		Password: "adminpass123",
	})
	require.NoError(t, err)

	user, err := f.users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
}

func TestIssueToken_StableAcrossCalls(t *testing.T) {
	f := newAuthFixture()
	register(t, f, "test@example.com", "testpass123")

	first, err := f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "test@example.com", Password: "testpass123"})
	require.NoError(t, err)
	assert.Len(t, first.Token, 40)

	second, err := f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "Test@Example.com", Password: "testpass123"})
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)

	user, err := f.users.GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)
}

func TestIssueToken_InvalidCredentials(t *testing.T) {
	f := newAuthFixture()
	register(t, f, "test@example.com", "testpass123")

	_, err := f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "test@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "nobody@example.com", Password: "testpass123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueToken_InactiveUser(t *testing.T) {
	f := newAuthFixture()
	register(t, f, "test@example.com", "testpass123")
	user, err := f.users.GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	f.users.SetActive(user.ID, false)

	_, err = f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "test@example.com", Password: "testpass123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueToken_BlankPassword(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "test@example.com"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{msgRequired}, verr.Fields["password"])
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture()
	register(t, f, "test@example.com", "testpass123")
	tok, err := f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "test@example.com", Password: "testpass123"})
	require.NoError(t, err)

	user, err := f.svc.Authenticate(context.Background(), tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)

	_, err = f.svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.Authenticate(context.Background(), "0123456789abcdef0123456789abcdef01234567")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	f.users.SetActive(user.ID, false)
	_, err = f.svc.Authenticate(context.Background(), tok.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture()
	register(t, f, "test@example.com", "testpass123")
	user, err := f.users.GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)

	resp, err := f.svc.UpdateProfile(context.Background(), user, model.UpdateUserRequest{
		Name:     ptr("Updated Name"),
		Password: ptr("newpassword123"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", resp.Name)
	assert.Equal(t, "test@example.com", resp.Email)

	_, err = f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "test@example.com", Password: "newpassword123"})
	assert.NoError(t, err)
	_, err = f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "test@example.com", Password: "testpass123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_PartialKeepsPassword(t *testing.T) {
	f := newAuthFixture()
	register(t, f, "test@example.com", "testpass123")
	user, err := f.users.GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)

	_, err = f.svc.UpdateProfile(context.Background(), user, model.UpdateUserRequest{Name: ptr("Only Name")})
	require.NoError(t, err)

	_, err = f.svc.IssueToken(context.Background(), model.TokenRequest{Email: "test@example.com", Password: "testpass123"})
	assert.NoError(t, err)
}

func TestUpdateProfile_ShortPassword(t *testing.T) {
	f := newAuthFixture()
	register(t, f, "test@example.com", "testpass123")
	user, err := f.users.GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)

	_, err = f.svc.UpdateProfile(context.Background(), user, model.UpdateUserRequest{Password: ptr("pw")})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
}
