package service

import (
	"context"
	"time"

	"lavka/internal/app/inventory/entity"
)

// Cache абстрагирует Redis для кеширования категорий и дашборда
type Cache interface {
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategories(ctx context.Context) error
	SetDashboardStats(ctx context.Context, stats *entity.DashboardStats, ttl time.Duration) error
	GetDashboardStats(ctx context.Context) (*entity.DashboardStats, error)
	DeleteDashboardStats(ctx context.Context) error
}

// MessagePublisher абстрагирует Kafka producer
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
}
