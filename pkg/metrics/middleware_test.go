package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinPrometheusMiddleware_UsesRouteTemplateAsPathLabel(t *testing.T) {
	// Arrange
	router := gin.New()
	router.Use(GinPrometheusMiddleware("mw-template-test"))
	router.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Act
	req := httptest.NewRequest(http.MethodGet, "/products/9b2d8c1e-45a7-4f7b-9c3d-0a1b2c3d4e5f", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	// Assert
	counter := HttpRequestsTotal.WithLabelValues("mw-template-test", "GET", "/products/:id", "200")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}

func TestGinPrometheusMiddleware_SkipsServiceEndpoints(t *testing.T) {
	// Arrange
	router := gin.New()
	router.Use(GinPrometheusMiddleware("mw-skip-test"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Act
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	// Assert
	counter := HttpRequestsTotal.WithLabelValues("mw-skip-test", "GET", "/health", "200")
	assert.Equal(t, float64(0), testutil.ToFloat64(counter))
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "uuid segment replaced",
			path: "/products/9b2d8c1e-45a7-4f7b-9c3d-0a1b2c3d4e5f",
			want: "/products/:id",
		},
		{
			name: "uuid in the middle of path",
			path: "/categories/9b2d8c1e-45a7-4f7b-9c3d-0a1b2c3d4e5f/products",
			want: "/categories/:id/products",
		},
		{
			name: "plain path untouched",
			path: "/sales/dashboard_stats",
			want: "/sales/dashboard_stats",
		},
		{
			name: "short hex segment is not an id",
			path: "/products/abc123",
			want: "/products/abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.path))
		})
	}
}

func TestNormalizePath_TruncatesLongPaths(t *testing.T) {
	path := "/" + strings.Repeat("a", 200)

	got := normalizePath(path)

	assert.Len(t, got, 100)
}
