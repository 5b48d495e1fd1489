package auth

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/report-dashboard/internal/config"
	"github.com/cmlabs-hris/report-dashboard/internal/domain/auth"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/jwt"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp = "1h"
	testSecret    = "test-secret-key-for-jwt"
)

func newTestAuthService(t *testing.T) (auth.AuthService, jwt.Service) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	jwtService := jwt.NewJWTService(testSecret, testAccessExp)
	svc := NewAuthService(config.AdminConfig{Username: "admin", PasswordHash: string(hash)}, jwtService)
	return svc, jwtService
}

func TestLogin(t *testing.T) {
	svc, jwtService := newTestAuthService(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotZero(t, resp.AccessTokenExpiresIn)

		token, err := jwtService.JWTAuth().Decode(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", token.Subject())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "wrongpassword"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong username", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Username: "root", Password: "password123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
	})
}

func TestLogout(t *testing.T) {
	svc, jwtService := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, auth.LoginRequest{Username: "admin", Password: "password123"})
	require.NoError(t, err)

	req := auth.LogoutRequest{Token: resp.AccessToken, ExpiresAt: resp.AccessTokenExpiresIn}
	require.NoError(t, svc.Logout(ctx, req))
	assert.True(t, jwtService.IsTokenRevoked(resp.AccessToken))

	// Second logout is a no-op
	require.NoError(t, svc.Logout(ctx, req))

	assert.ErrorIs(t, svc.Logout(ctx, auth.LogoutRequest{}), auth.ErrInvalidToken)
}
