package repository

import (
	"context"
	"errors"

	"lavka/internal/app/inventory/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	return result.Error
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetAll получает все товары с именами категорий
// categoryID и search - опциональные фильтры; поиск идет по имени и описанию
func (r *productRepository) GetAll(ctx context.Context, categoryID uuid.UUID, search string) ([]entity.ProductWithCategory, error) {
	query := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC")
	if categoryID != uuid.Nil {
		query = query.Where("category_id = ?", categoryID)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var products []entity.Product
	if result := query.Find(&products); result.Error != nil {
		return nil, result.Error
	}

	result := make([]entity.ProductWithCategory, 0, len(products))
	for _, p := range products {
		pwc := entity.ProductWithCategory{Product: p}
		if p.Category != nil {
			pwc.CategoryName = p.Category.Name
		}
		result = append(result, pwc)
	}

	return result, nil
}

// GetByCategoryID получает все товары категории
func (r *productRepository) GetByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("name ASC").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// GetLowStock получает товары с остатком не выше порога
func (r *productRepository) GetLowStock(ctx context.Context, threshold int) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).
		Where("stock <= ?", threshold).
		Order("stock ASC").
		Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// Update обновляет товар
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(product).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"category_id": product.CategoryID,
			"price":       product.Price,
			"stock":       product.Stock,
			"image_url":   product.ImageURL,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete удаляет товар
// Товар, на который ссылаются позиции продаж, не удаляется,
// чтобы не терять историю продаж
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var itemCount int64
	if err := r.db.WithContext(ctx).Model(&entity.SaleItem{}).
		Where("product_id = ?", id).
		Count(&itemCount).Error; err != nil {
		return err
	}

	if itemCount > 0 {
		return ErrProductHasSales
	}

	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
