package repository

import (
	"context"
	"errors"
	"fmt"

	"lavka/internal/app/inventory/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository создает новый репозиторий продаж
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

// CreateWithItems создает продажу, ее позиции и списывает остатки товаров
// в одной транзакции. Любая ошибка откатывает все изменения целиком:
// частично примененная продажа не видна читателям.
//
// Списание выполняется условным UPDATE со сравнением остатка в самом запросе,
// поэтому две конкурентные продажи не могут обе пройти проверку
// и увести остаток в минус.
func (r *saleRepository) CreateWithItems(ctx context.Context, sale *entity.Sale, items []entity.SaleItemRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}

		var totalAmount float64
		saleItems := make([]entity.SaleItem, 0, len(items))

		for _, req := range items {
			// Цена за единицу фиксируется на момент продажи
			var product entity.Product
			if err := tx.First(&product, "id = ?", req.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return fmt.Errorf("failed to get product: %w", err)
			}

			item := entity.SaleItem{
				ID:         uuid.New(),
				SaleID:     sale.ID,
				ProductID:  req.ProductID,
				Quantity:   req.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: product.Price * float64(req.Quantity),
			}

			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create sale item: %w", err)
			}

			// Условие stock >= quantity в самом UPDATE: ноль затронутых строк
			// означает нехватку остатка, и транзакция откатывается
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND stock >= ?", req.ProductID, req.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", req.Quantity))

			if result.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrInsufficientStock
			}

			totalAmount += item.TotalPrice
			saleItems = append(saleItems, item)
		}

		if err := tx.Model(&entity.Sale{}).
			Where("id = ?", sale.ID).
			UpdateColumn("total_amount", totalAmount).Error; err != nil {
			return fmt.Errorf("failed to update sale total: %w", err)
		}

		sale.TotalAmount = totalAmount
		sale.Items = saleItems

		return nil
	})
}

// GetByID получает продажу по ID
func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	var sale entity.Sale
	result := r.db.WithContext(ctx).First(&sale, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, result.Error
	}

	return &sale, nil
}

// GetWithItems получает продажу с полным списком позиций
func (r *saleRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.SaleWithItems, error) {
	var sale entity.Sale
	result := r.db.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, result.Error
	}

	return &entity.SaleWithItems{
		Sale:  sale,
		Items: sale.Items,
	}, nil
}

// GetAll получает все продажи с опциональными фильтрами по статусу и покупателю
func (r *saleRepository) GetAll(ctx context.Context, status entity.SaleStatus, customerID uuid.UUID) ([]entity.Sale, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID != uuid.Nil {
		query = query.Where("customer_id = ?", customerID)
	}

	var sales []entity.Sale
	if result := query.Find(&sales); result.Error != nil {
		return nil, result.Error
	}

	return sales, nil
}

// GetByCustomerID получает все продажи покупателя, новые первыми
// Покупатель без продаж получает пустой список
func (r *saleRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]entity.Sale, error) {
	sales := make([]entity.Sale, 0)
	result := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&sales)

	if result.Error != nil {
		return nil, result.Error
	}

	return sales, nil
}

// UpdateStatus меняет статус продажи
// Остальные поля продажи после создания не изменяются
func (r *saleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SaleStatus) error {
	result := r.db.WithContext(ctx).Model(&entity.Sale{}).
		Where("id = ?", id).
		Update("status", status)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}

// Delete удаляет продажу
// Позиции удаляются автоматически через CASCADE
func (r *saleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Sale{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSaleNotFound
	}

	return nil
}
