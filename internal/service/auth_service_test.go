package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rideboard/internal/jwt"
	"rideboard/internal/logger"
	"rideboard/internal/models"
	"rideboard/internal/repository/memory"
)

func newAuth(t *testing.T, admins ...string) (AuthService, *jwt.JWTService) {
	t.Helper()
	store := memory.NewStore()
	tokens := jwt.NewJWTService("test-secret", time.Hour)
	return NewAuthService(store.Users(), tokens, admins, logger.Nop()), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, tokens := newAuth(t)

	reg, err := auth.Register(ctx, &models.RegisterRequest{
		Email:    "Anna@Example.com ",
		Password: "correct horse",
		Name:     "Anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", reg.User.Email)
	assert.False(t, reg.User.IsAdmin)

	claims, err := tokens.ValidateToken(reg.User.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.UserID, claims.UserID)
	assert.False(t, claims.IsAdmin())

	login, err := auth.Login(ctx, &models.LoginRequest{Email: "ANNA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.UserID, login.UserID)

	_, err = auth.Login(ctx, &models.LoginRequest{Email: "anna@example.com", Password: "wrong password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth(t)
	req := &models.RegisterRequest{Email: "a@example.com", Password: "password1", Name: "A"}

	_, err := auth.Register(ctx, req)
	require.NoError(t, err)

	req.Email = "A@EXAMPLE.COM"
	_, err = auth.Register(ctx, req)
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterBlankName(t *testing.T) {
	auth, _ := newAuth(t)
	_, err := auth.Register(context.Background(), &models.RegisterRequest{Email: "a@example.com", Password: "password1", Name: "   "})
	requireValidation(t, err, "name")
}

func TestAdminRole(t *testing.T) {
	ctx := context.Background()
	auth, tokens := newAuth(t, " Root@Example.com")

	reg, err := auth.Register(ctx, &models.RegisterRequest{Email: "root@example.com", Password: "password1", Name: "Root"})
	require.NoError(t, err)
	assert.True(t, reg.User.IsAdmin)
	claims, err := tokens.ValidateToken(reg.User.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleAdmin, claims.Role)

	_, err = auth.Register(ctx, &models.RegisterRequest{Email: "mod@example.com", Password: "password1", Name: "Mod"})
	require.NoError(t, err)
	require.NoError(t, auth.GrantAdmin(ctx, "MOD@example.com"))

	login, err := auth.Login(ctx, &models.LoginRequest{Email: "mod@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.True(t, login.IsAdmin)

	err = auth.GrantAdmin(ctx, "ghost@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}
