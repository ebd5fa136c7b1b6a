package service

import (
	"lessonos_backend/internal/config"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/repository"
	"lessonos_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-test-secret-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	user := &model.User{Name: "Alice", Email: "alice@auth.test", Password: "password123"}
	require.NoError(t, svc.Register(user))

	// 明文密码不落库
	var stored model.User
	require.NoError(t, db.First(&stored, "email = ?", "alice@auth.test").Error)
	assert.NotEqual(t, "password123", stored.Password)

	token, err := svc.Login("alice@auth.test", "password123")
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, svc.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@auth.test", claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	require.NoError(t, svc.Register(&model.User{Name: "A", Email: "dup@auth.test", Password: "password123"}))
	err := svc.Register(&model.User{Name: "B", Email: "dup@auth.test", Password: "password456"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLoginInvalidCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(db)

	require.NoError(t, svc.Register(&model.User{Name: "A", Email: "login@auth.test", Password: "password123"}))

	_, err := svc.Login("login@auth.test", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = svc.Login("nobody@auth.test", "password123")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}
