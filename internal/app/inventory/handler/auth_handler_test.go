package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lavka/internal/app/inventory/config"
	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthHandler(t *testing.T) *AuthHandler {
	hash, err := util.HashPassword("admin-password")
	require.NoError(t, err)

	admin := config.AdminConfig{
		Email:        "admin@lavka.local",
		PasswordHash: hash,
	}

	jwtManager := util.NewJWTManager("test-secret-key", 15*time.Minute)
	return NewAuthHandler(admin, jwtManager)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	// Arrange
	handler := setupAuthHandler(t)

	reqBody := entity.LoginRequest{
		Email:    "admin@lavka.local",
		Password: "admin-password",
	}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Login(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.LoginResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, int64(900), response.ExpiresIn)

	// Выданный токен должен проходить валидацию
	jwtManager := util.NewJWTManager("test-secret-key", 15*time.Minute)
	claims, err := jwtManager.ValidateToken(response.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@lavka.local", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	// Arrange
	handler := setupAuthHandler(t)

	reqBody := entity.LoginRequest{
		Email:    "admin@lavka.local",
		Password: "wrong-password",
	}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Login(c)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_WrongEmail(t *testing.T) {
	// Arrange
	handler := setupAuthHandler(t)

	reqBody := entity.LoginRequest{
		Email:    "intruder@example.com",
		Password: "admin-password",
	}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Login(c)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_InvalidBody(t *testing.T) {
	// Arrange
	handler := setupAuthHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Login(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_MissingPassword(t *testing.T) {
	// Arrange
	handler := setupAuthHandler(t)

	reqBody := entity.LoginRequest{Email: "admin@lavka.local"}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.Login(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
