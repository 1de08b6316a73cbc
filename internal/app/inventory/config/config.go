package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config содержит все настройки Inventory Service
// Включает конфигурацию для HTTP сервера, PostgreSQL, Redis, MongoDB, Kafka и JWT
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Jobs     JobsConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Используется для хранения каталога, покупателей и продаж
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки подключения к Redis для кеширования
// Кешируются список категорий и агрегаты дашборда
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MongoConfig - настройки подключения к MongoDB
// Используется для журнала изменений (audit log)
type MongoConfig struct {
	URI    string
	DBName string
}

// KafkaConfig - настройки Kafka для отправки событий
// События отправляются при продажах, смене цен и низких остатках
type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий SALE_CREATED, PRODUCT_UPDATED, LOW_STOCK
}

// JWTConfig - настройки для выпуска и проверки JWT токенов
type JWTConfig struct {
	Secret        string
	AccessTTLMins int // Время жизни access токена в минутах
}

// AdminConfig - учетные данные администратора для /auth/login
// Пароль хранится только в виде bcrypt-хэша
type AdminConfig struct {
	Email        string
	PasswordHash string
}

// JobsConfig - настройки фоновой проверки остатков
type JobsConfig struct {
	LowStockSchedule  string // cron-выражение для проверки остатков
	LowStockThreshold int    // Порог остатка, по умолчанию 10
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	accessTTL, err := strconv.Atoi(getEnv("JWT_ACCESS_TTL_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TTL_MINUTES value: %w", err)
	}

	lowStockThreshold, err := strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOW_STOCK_THRESHOLD value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "inventory"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DB", "inventory_audit"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "inventory_events"),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			AccessTTLMins: accessTTL,
		},
		Admin: AdminConfig{
			Email: getEnv("ADMIN_EMAIL", "admin@lavka.local"),
			// bcrypt-хэш пароля "secret" для локальной разработки
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
		},
		Jobs: JobsConfig{
			LowStockSchedule:  getEnv("LOW_STOCK_SCHEDULE", "0 * * * *"),
			LowStockThreshold: lowStockThreshold,
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL возвращает строку подключения к PostgreSQL для pgx pool
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port для HTTP сервера
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port для подключения
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
