package mocks

import (
	"context"
	"time"

	"lavka/internal/app/inventory/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCategoryRepository мок для CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAll(ctx context.Context, search string) ([]entity.Category, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetAll(ctx context.Context, categoryID uuid.UUID, search string) ([]entity.ProductWithCategory, error) {
	args := m.Called(ctx, categoryID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductWithCategory), args.Error(1)
}

func (m *MockProductRepository) GetByCategoryID(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetLowStock(ctx context.Context, threshold int) ([]entity.Product, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCustomerRepository мок для CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetAll(ctx context.Context, search string) ([]entity.Customer, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSaleRepository мок для SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) CreateWithItems(ctx context.Context, sale *entity.Sale, items []entity.SaleItemRequest) error {
	args := m.Called(ctx, sale, items)
	return args.Error(0)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Sale), args.Error(1)
}

func (m *MockSaleRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.SaleWithItems, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SaleWithItems), args.Error(1)
}

func (m *MockSaleRepository) GetAll(ctx context.Context, status entity.SaleStatus, customerID uuid.UUID) ([]entity.Sale, error) {
	args := m.Called(ctx, status, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Sale), args.Error(1)
}

func (m *MockSaleRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]entity.Sale, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Sale), args.Error(1)
}

func (m *MockSaleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SaleStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReportRepository мок для ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) TotalCompletedSales(ctx context.Context, from, to *time.Time) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockReportRepository) SalesByDay(ctx context.Context, from, to *time.Time) ([]entity.DailySales, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DailySales), args.Error(1)
}

func (m *MockReportRepository) TopProducts(ctx context.Context, limit int) ([]entity.TopProduct, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TopProduct), args.Error(1)
}

func (m *MockReportRepository) RecentCompletedSales(ctx context.Context, limit int) ([]entity.Sale, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Sale), args.Error(1)
}

func (m *MockReportRepository) LowStockProducts(ctx context.Context, threshold int) ([]entity.LowStockProduct, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LowStockProduct), args.Error(1)
}

// MockAuditRepository мок для AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, record *entity.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) GetRecent(ctx context.Context, limit int64) ([]entity.AuditRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AuditRecord), args.Error(1)
}

// MockCache мок для Cache (Redis)
type MockCache struct {
	mock.Mock
}

func (m *MockCache) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	args := m.Called(ctx, categories, ttl)
	return args.Error(0)
}

func (m *MockCache) GetCategories(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCache) DeleteCategories(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) SetDashboardStats(ctx context.Context, stats *entity.DashboardStats, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

func (m *MockCache) GetDashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DashboardStats), args.Error(1)
}

func (m *MockCache) DeleteDashboardStats(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessagePublisher мок для MessagePublisher (Kafka)
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}
