package handler

import (
	"net/http"

	"lavka/internal/app/inventory/config"
	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler обрабатывает вход администратора
// Учетные данные задаются конфигурацией, пароль хранится как bcrypt-хэш
type AuthHandler struct {
	admin      config.AdminConfig
	jwtManager *util.JWTManager
	validator  *validator.Validate
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(admin config.AdminConfig, jwtManager *util.JWTManager) *AuthHandler {
	return &AuthHandler{
		admin:      admin,
		jwtManager: jwtManager,
		validator:  validator.New(),
	}
}

// Login обрабатывает POST /auth/login
// При верных учетных данных выдает JWT access токен
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if req.Email != h.admin.Email || !util.CheckPassword(req.Password, h.admin.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(req.Email, "admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, entity.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwtManager.AccessTokenDuration().Seconds()),
	})
}
