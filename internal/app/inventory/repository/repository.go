package repository

import (
	"context"
	"errors"
	"time"

	"lavka/internal/app/inventory/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrCategoryHasProducts   = errors.New("cannot delete category with existing products")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductHasSales       = errors.New("cannot delete product with existing sales")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerAlreadyExists = errors.New("customer with this email already exists")
	ErrSaleNotFound          = errors.New("sale not found")
	ErrInsufficientStock     = errors.New("insufficient stock for requested quantity")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAll(ctx context.Context, search string) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetAll(ctx context.Context, categoryID uuid.UUID, search string) ([]entity.ProductWithCategory, error)
	GetByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error)
	GetLowStock(ctx context.Context, threshold int) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	GetAll(ctx context.Context, search string) ([]entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SaleRepository interface {
	// CreateWithItems создает продажу вместе с позициями и списывает остатки
	// в одной транзакции: либо применяется все, либо ничего
	CreateWithItems(ctx context.Context, sale *entity.Sale, items []entity.SaleItemRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.SaleWithItems, error)
	GetAll(ctx context.Context, status entity.SaleStatus, customerID uuid.UUID) ([]entity.Sale, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]entity.Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SaleStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReportRepository выполняет агрегирующие запросы для отчетов
// Только чтение, без побочных эффектов
type ReportRepository interface {
	TotalCompletedSales(ctx context.Context, from, to *time.Time) (float64, error)
	SalesByDay(ctx context.Context, from, to *time.Time) ([]entity.DailySales, error)
	TopProducts(ctx context.Context, limit int) ([]entity.TopProduct, error)
	RecentCompletedSales(ctx context.Context, limit int) ([]entity.Sale, error)
	LowStockProducts(ctx context.Context, threshold int) ([]entity.LowStockProduct, error)
}

// AuditRepository хранит журнал изменений сущностей в MongoDB
type AuditRepository interface {
	Record(ctx context.Context, record *entity.AuditRecord) error
	GetRecent(ctx context.Context, limit int64) ([]entity.AuditRecord, error)
}
