package service

import (
	"context"
	"testing"
	"time"

	"github.com/tourshop/internal/config"
	"github.com/tourshop/internal/models"
	"github.com/tourshop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthTest(t *testing.T) (*AuthService, *models.Admin) {
	t.Helper()
	db := openServiceTestDB(t, "auth_service_test")
	svc := NewAuthService(
		config.JWTConfig{SecretKey: "test-secret", ExpireHours: 2},
		config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true},
		repository.NewAdminRepository(db),
	)
	hash, err := svc.HashPassword("Manneken1")
	require.NoError(t, err)
	admin := &models.Admin{Username: "beheer", PasswordHash: hash}
	require.NoError(t, db.Create(admin).Error)
	return svc, admin
}

func TestAuthLoginAndAuthenticate(t *testing.T) {
	svc, admin := setupAuthTest(t)
	ctx := context.Background()

	_, _, _, err := svc.Login(ctx, "beheer", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, _, err = svc.Login(ctx, "nobody", "Manneken1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	logged, token, expiresAt, err := svc.Login(ctx, "beheer", "Manneken1")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expiresAt, time.Minute)

	claims, state, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "beheer", state.Username)

	_, _, err = svc.Authenticate(ctx, token+"x")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthChangePasswordRevokesTokens(t *testing.T) {
	svc, admin := setupAuthTest(t)
	ctx := context.Background()
	_, token, _, err := svc.Login(ctx, "beheer", "Manneken1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, admin.ID, "wrong", "Atomium58"), ErrPasswordMismatch)

	err = svc.ChangePassword(ctx, admin.ID, "Manneken1", "short")
	assert.ErrorIs(t, err, ErrPasswordWeak)
	var policyErr PasswordPolicyError
	require.ErrorAs(t, err, &policyErr)

	require.NoError(t, svc.ChangePassword(ctx, admin.ID, "Manneken1", "Atomium58"))
	_, _, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, fresh, _, err := svc.Login(ctx, "beheer", "Atomium58")
	require.NoError(t, err)
	_, _, err = svc.Authenticate(ctx, fresh)
	assert.NoError(t, err)

	_, err = svc.Me(admin.ID + 50)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}
