package metrics

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Служебные endpoints, которые не попадают в HTTP метрики
var skipPaths = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
}

// GinPrometheusMiddleware возвращает Gin middleware, который собирает
// http_requests_total, http_request_duration_seconds и http_requests_in_flight
func GinPrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := skipPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()

		HttpRequestsInFlight.WithLabelValues(serviceName).Inc()
		defer HttpRequestsInFlight.WithLabelValues(serviceName).Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		// В label идет шаблон маршрута (/products/:id), а не сырой путь:
		// UUID в URL раздувают кардинальность метрик
		path := c.FullPath()
		if path == "" {
			path = normalizePath(c.Request.URL.Path)
		}

		HttpRequestsTotal.WithLabelValues(serviceName, c.Request.Method, path, status).Inc()
		HttpRequestDuration.WithLabelValues(serviceName, c.Request.Method, path).Observe(duration)
	}
}

var uuidSegment = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// normalizePath приводит путь без шаблона маршрута (например 404) к виду
// с плейсхолдерами: UUID сегменты заменяются на :id, длина ограничена
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if uuidSegment.MatchString(segment) {
			segments[i] = ":id"
		}
	}

	path = strings.Join(segments, "/")
	if len(path) > 100 {
		path = path[:100]
	}

	return path
}
