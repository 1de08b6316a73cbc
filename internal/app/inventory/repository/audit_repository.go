package repository

import (
	"context"
	"fmt"
	"time"

	"lavka/internal/app/inventory/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lavka/pkg/logger"
)

type auditRepository struct {
	collection *mongo.Collection
}

// NewAuditRepository создает репозиторий журнала изменений в MongoDB
// Автоматически создает индексы по entity и created_at
func NewAuditRepository(db *mongo.Database) AuditRepository {
	collection := db.Collection("audit_log")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}},
			Options: options.Index().SetName("entity_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		// Индексы могут уже существовать, работу не прерываем
		logger.Warn().Err(err).Msg("Failed to create audit_log indexes")
	}

	return &auditRepository{collection: collection}
}

// Record добавляет запись в журнал изменений
func (r *auditRepository) Record(ctx context.Context, record *entity.AuditRecord) error {
	record.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid
	}

	return nil
}

// GetRecent возвращает последние записи журнала, новые первыми
func (r *auditRepository) GetRecent(ctx context.Context, limit int64) ([]entity.AuditRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []entity.AuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}
