package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lavka/internal/app/inventory/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupProtectedRouter(jwtManager *util.JWTManager) *gin.Engine {
	middleware := NewAuthMiddleware(jwtManager)

	router := gin.New()
	router.GET("/protected", middleware.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString("email")})
	})

	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("test-secret-key", 15*time.Minute)
	router := setupProtectedRouter(jwtManager)

	token, _ := jwtManager.GenerateAccessToken("admin@lavka.local", "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@lavka.local")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("test-secret-key", 15*time.Minute)
	router := setupProtectedRouter(jwtManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("test-secret-key", 15*time.Minute)
	router := setupProtectedRouter(jwtManager)

	testCases := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "some-token"},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"too many parts", "Bearer token extra"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", tc.header)

			// Act
			router.ServeHTTP(w, req)

			// Assert
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("test-secret-key", 15*time.Minute)
	router := setupProtectedRouter(jwtManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("test-secret-key", 1*time.Nanosecond)
	router := setupProtectedRouter(jwtManager)

	token, _ := jwtManager.GenerateAccessToken("admin@lavka.local", "admin")
	time.Sleep(10 * time.Millisecond)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_TokenFromDifferentSecret(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("test-secret-key", 15*time.Minute)
	otherManager := util.NewJWTManager("other-secret-key", 15*time.Minute)
	router := setupProtectedRouter(jwtManager)

	token, _ := otherManager.GenerateAccessToken("admin@lavka.local", "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	// Act
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
