package service

import (
	"testing"
	"time"

	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/app/repository"
	"github.com/ratehub/ratehub-backend/internal/db"
	"github.com/ratehub/ratehub-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testName = "Johnathan Michael Harrington"

func setupAuthServiceTest(t *testing.T) (AuthService, repository.UserRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(userRepo, "test-jwt-secret", 7*24*time.Hour)

	return authService, userRepo, testDB
}

func TestAuthService_Signup(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		address  string
		wantErr  error
	}{
		{
			name:     "Valid signup",
			email:    "rater@example.com",
			password: "Sup3rSecret!",
			userName: testName,
			address:  "12 Harbor Lane",
			wantErr:  nil,
		},
		{
			name:     "Duplicate email",
			email:    "rater@example.com",
			password: "An0therPass!",
			userName: testName,
			address:  "99 Elsewhere St",
			wantErr:  ErrEmailAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := authService.Signup(tt.email, tt.password, tt.userName, tt.address)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.NotEmpty(t, token)

				claims, err := util.ValidateToken(token, "test-jwt-secret")
				require.NoError(t, err)
				assert.Equal(t, user.ID, claims.UserID)
				assert.Equal(t, string(model.RoleUser), claims.Role)
			}
		})
	}
}

func TestAuthService_SignupNeverGrantsPrivilegedRole(t *testing.T) {
	authService, userRepo, _ := setupAuthServiceTest(t)

	user, _, err := authService.Signup("plain@example.com", "Sup3rSecret!", testName, "")
	require.NoError(t, err)

	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, stored.Role)
}

func TestAuthService_Login(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	email := "login@example.com"
	password := "Sup3rSecret!"
	_, _, err := authService.Signup(email, password, testName, "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"Valid credentials", email, password, nil},
		{"Wrong password", email, "WrongPass1!", ErrInvalidCredentials},
		{"Unknown email", "nobody@example.com", password, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, token, err := authService.Login(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, token)
			}
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	email := "change@example.com"
	user, _, err := authService.Signup(email, "Sup3rSecret!", testName, "")
	require.NoError(t, err)

	t.Run("Wrong current password", func(t *testing.T) {
		err := authService.ChangePassword(user.ID, "NotTheOne1!", "N3wSecret!!")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("Unknown user", func(t *testing.T) {
		err := authService.ChangePassword(99999, "Sup3rSecret!", "N3wSecret!!")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("Successful change", func(t *testing.T) {
		err := authService.ChangePassword(user.ID, "Sup3rSecret!", "N3wSecret!!")
		require.NoError(t, err)

		_, _, err = authService.Login(email, "Sup3rSecret!")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, _, err = authService.Login(email, "N3wSecret!!")
		assert.NoError(t, err)
	})
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService, _, _ := setupAuthServiceTest(t)

	user, _, err := authService.Signup("byid@example.com", "Sup3rSecret!", testName, "")
	require.NoError(t, err)

	found, err := authService.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = authService.GetUserByID(99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
