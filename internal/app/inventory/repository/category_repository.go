package repository

import (
	"context"
	"errors"

	"lavka/internal/app/inventory/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию
// Уникальность имени обеспечивается UNIQUE constraint
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Create(category)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrCategoryAlreadyExists
		}
		return result.Error
	}

	return nil
}

// GetByID получает категорию по ID
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, result.Error
	}

	return &category, nil
}

// GetAll получает все категории отсортированные по имени
// Непустой search фильтрует по подстроке имени без учета регистра
func (r *categoryRepository) GetAll(ctx context.Context, search string) ([]entity.Category, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var categories []entity.Category
	if result := query.Find(&categories); result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// Update обновляет категорию
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Model(category).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
		})

	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrCategoryAlreadyExists
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete удаляет категорию
// Категория с товарами не удаляется: это явный и безопасный подход
// вместо каскадного удаления всего каталога
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var productCount int64
	if err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("category_id = ?", id).
		Count(&productCount).Error; err != nil {
		return err
	}

	if productCount > 0 {
		return ErrCategoryHasProducts
	}

	result := r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return ErrCategoryHasProducts
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
