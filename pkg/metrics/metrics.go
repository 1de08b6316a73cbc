package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

// DbQueryDuration - время выполнения SQL запросов
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

// DbConnectionsOpen - количество открытых соединений с БД
var DbConnectionsOpen = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_connections_open",
		Help: "Number of open database connections",
	},
	[]string{"service", "state"}, // state: idle, in_use
)

// DbErrors - счётчик ошибок базы данных
var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

// RedisCacheHits - попадания в кеш
var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

// RedisCacheMisses - промахи кеша
var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

// RedisOperationDuration - время операций Redis
var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"}, // operation: get, set, del
)

// RedisErrors - ошибки Redis
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - отправленные сообщения
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

// KafkaProduceDuration - время отправки сообщения
var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Business Метрики (специфичные для Lavka)
// =============================================================================

// SalesCreated - созданные продажи
var SalesCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "sales_created_total",
		Help: "Total number of sales created",
	},
)

// SalesTotalAmount - суммарная выручка созданных продаж
var SalesTotalAmount = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "sales_total_amount",
		Help: "Total amount of all created sales",
	},
)

// ProductsLowStock - количество товаров с остатком не выше порога
var ProductsLowStock = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "products_low_stock",
		Help: "Number of products at or below the low stock threshold",
	},
)
