package repository

import (
	"context"
	"errors"

	"lavka/internal/app/inventory/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository создает новый репозиторий покупателей
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create создает нового покупателя
// Уникальность email обеспечивается UNIQUE constraint
func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	result := r.db.WithContext(ctx).Create(customer)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrCustomerAlreadyExists
		}
		return result.Error
	}

	return nil
}

// GetByID получает покупателя по ID
func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	result := r.db.WithContext(ctx).First(&customer, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, result.Error
	}

	return &customer, nil
}

// GetAll получает всех покупателей
// Непустой search фильтрует по подстроке имени или email
func (r *customerRepository) GetAll(ctx context.Context, search string) ([]entity.Customer, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var customers []entity.Customer
	if result := query.Find(&customers); result.Error != nil {
		return nil, result.Error
	}

	return customers, nil
}

// Update обновляет покупателя
func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	result := r.db.WithContext(ctx).Model(customer).
		Where("id = ?", customer.ID).
		Updates(map[string]interface{}{
			"name":    customer.Name,
			"email":   customer.Email,
			"phone":   customer.Phone,
			"address": customer.Address,
		})

	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrCustomerAlreadyExists
		}
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

// Delete удаляет покупателя
// Продажи покупателя удаляются автоматически через CASCADE
func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}
